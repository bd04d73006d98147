package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JustRK-07/Sip-advanced/internal/api"
	"github.com/JustRK-07/Sip-advanced/internal/auth"
	"github.com/JustRK-07/Sip-advanced/internal/config"
	"github.com/JustRK-07/Sip-advanced/internal/hub"
	"github.com/JustRK-07/Sip-advanced/internal/metrics"
	"github.com/JustRK-07/Sip-advanced/internal/report"
	"github.com/JustRK-07/Sip-advanced/internal/session"
	"github.com/JustRK-07/Sip-advanced/internal/storage"
	"github.com/JustRK-07/Sip-advanced/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Str("api_url", cfg.APIURL).
		Str("log_level", cfg.LogLevel).
		Msg("starting campaign agent service")

	// Create the monitor feed hub
	monitorHub := hub.NewHub(log.Logger)
	go monitorHub.Run()

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create WebSocket handler
	wsHandler := hub.NewHandler(monitorHub, cfg, log.Logger)

	// Create call record storage
	store, err := storage.NewStore(ctx, log.Logger)
	if err != nil {
		log.Warn().Err(err).Msg("call record storage unavailable, continuing without persistence")
		store = storage.NewNoopStore()
	}

	// Create the campaign backend reporter
	reporter := report.NewReporter(cfg.APIURL, cfg.BackendTimeout, log.Logger)

	// Create the session manager
	manager := session.NewManager(ctx, cfg, reporter, store, monitorHub, log.Logger)

	// Room token minting is optional; without credentials the control
	// API still runs but responses carry no token
	var minter *auth.Minter
	if cfg.HasTransportCredentials() {
		minter, err = auth.NewMinter(cfg.APIKey, cfg.APISecret)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create token minter")
		}
	} else {
		log.Warn().Msg("transport credentials not set, room tokens disabled")
	}

	controlAPI := api.NewAPI(manager, minter, store, cfg, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes
	r.Get("/health", controlAPI.HealthHandler)
	r.Get("/metrics", metrics.Get().Handler())
	r.Get("/ws", wsHandler.ServeHTTP)

	// Call control routes
	controlAPI.Routes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Cancel session contexts
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
