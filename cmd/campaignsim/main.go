// Command campaignsim is a local stand-in for the campaign backend. It
// accepts every notification the agent service sends, logs the payloads,
// and keeps simple per-endpoint counters so agent behavior can be
// inspected without a real backend running.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type simulator struct {
	mu     sync.Mutex
	counts map[string]int
	logger zerolog.Logger
}

func newSimulator(logger zerolog.Logger) *simulator {
	return &simulator{
		counts: make(map[string]int),
		logger: logger,
	}
}

// record logs the incoming payload under the endpoint name and bumps
// its counter
func (s *simulator) record(endpoint string, w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.counts[endpoint]++
	s.mu.Unlock()

	s.logger.Info().
		Str("endpoint", endpoint).
		Interface("payload", payload).
		Msg("backend notification received")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
}

func (s *simulator) saveConversationHandler(w http.ResponseWriter, r *http.Request) {
	s.record("saveConversation", w, r)
}

func (s *simulator) updateLeadStatusHandler(w http.ResponseWriter, r *http.Request) {
	s.record("updateLeadStatus", w, r)
}

func (s *simulator) realtimeUpdateHandler(w http.ResponseWriter, r *http.Request) {
	s.record("realtimeUpdate", w, r)
}

func (s *simulator) handleCallHangupHandler(w http.ResponseWriter, r *http.Request) {
	s.record("handleCallHangup", w, r)
}

func (s *simulator) updateLeadInCampaignHandler(w http.ResponseWriter, r *http.Request) {
	s.record("updateLeadInCampaign", w, r)
}

func (s *simulator) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *simulator) statsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	counts := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		counts[k] = v
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}

func (s *simulator) setupRoutes(router *mux.Router) {
	router.HandleFunc("/health", s.healthHandler).Methods("GET")
	router.HandleFunc("/stats", s.statsHandler).Methods("GET")

	router.HandleFunc("/api/trpc/campaign.saveConversation", s.saveConversationHandler).Methods("POST")
	router.HandleFunc("/api/trpc/campaign.updateLeadStatus", s.updateLeadStatusHandler).Methods("POST")
	router.HandleFunc("/api/trpc/campaign.realtimeUpdate", s.realtimeUpdateHandler).Methods("POST")
	router.HandleFunc("/api/trpc/campaign.handleCallHangup", s.handleCallHangupHandler).Methods("POST")
	router.HandleFunc("/api/campaign/updateLeadStatus", s.updateLeadInCampaignHandler).Methods("POST")
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3025"
	}

	sim := newSimulator(log.Logger)

	router := mux.NewRouter()
	sim.setupRoutes(router)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("campaign backend simulator started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start simulator")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down simulator")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
}
