package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/JustRK-07/Sip-advanced/internal/auth"
	"github.com/JustRK-07/Sip-advanced/internal/config"
	"github.com/JustRK-07/Sip-advanced/internal/engine"
	"github.com/JustRK-07/Sip-advanced/internal/session"
	"github.com/JustRK-07/Sip-advanced/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// API exposes the call control endpoints
type API struct {
	manager *session.Manager
	minter  *auth.Minter // nil when transport credentials are absent
	store   storage.Store
	cfg     *config.Config
	logger  zerolog.Logger
}

// NewAPI creates the control API
func NewAPI(manager *session.Manager, minter *auth.Minter, store storage.Store, cfg *config.Config, logger zerolog.Logger) *API {
	return &API{
		manager: manager,
		minter:  minter,
		store:   store,
		cfg:     cfg,
		logger:  logger,
	}
}

// Routes registers the API routes on a chi router
func (a *API) Routes(r chi.Router) {
	r.Post("/calls/start", a.startCallHandler)
	r.Get("/calls", a.listCallsHandler)
	r.Get("/calls/history", a.callHistoryHandler)
	r.Get("/calls/{callID}", a.getCallHandler)
	r.Post("/calls/{callID}/transcript", a.injectTranscriptHandler)
	r.Post("/calls/{callID}/disconnect", a.disconnectHandler)
}

// StartCallRequest starts a new call session. Metadata may be omitted
// entirely for a test call with default values. Persona selects the
// simulated customer behavior; real transports attach their own engine
// through the session manager instead.
type StartCallRequest struct {
	Metadata json.RawMessage `json:"metadata,omitempty"`
	Persona  string          `json:"persona,omitempty"`
}

// StartCallResponse carries the identifiers the transport layer needs
type StartCallResponse struct {
	CallID     string `json:"callId"`
	CampaignID string `json:"campaignId"`
	LeadID     string `json:"leadId"`
	Token      string `json:"token,omitempty"`
}

func (a *API) startCallHandler(w http.ResponseWriter, r *http.Request) {
	var req StartCallRequest
	if r.Body != nil {
		// An empty body is a valid test call
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	persona := engine.Persona(req.Persona)
	if persona == "" {
		persona = engine.PersonaInterested
	}
	eng := engine.NewScriptedEngine(persona, 500*time.Millisecond, a.logger)

	sess, err := a.manager.StartSession(string(req.Metadata), eng)
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to start session")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	eng.SetSink(sess)

	resp := StartCallResponse{
		CallID:     sess.CallID(),
		CampaignID: sess.CampaignID,
		LeadID:     sess.LeadID,
	}

	if a.minter != nil {
		identity := "agent-" + uuid.New().String()
		token, err := a.minter.RoomToken(sess.CallID(), identity, time.Hour)
		if err != nil {
			a.logger.Error().Err(err).Msg("failed to mint room token")
		} else {
			resp.Token = token
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (a *API) listCallsHandler(w http.ResponseWriter, r *http.Request) {
	snapshots := a.manager.Snapshots()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count": len(snapshots),
		"calls": snapshots,
	})
}

// callHistoryHandler returns persisted call records for one day.
// Defaults to today when no date is given.
func (a *API) callHistoryHandler(w http.ResponseWriter, r *http.Request) {
	dateKey := r.URL.Query().Get("date")
	if dateKey == "" {
		dateKey = time.Now().Format("2006-01-02")
	}

	records, err := a.store.GetCallRecords(dateKey)
	if err != nil {
		a.logger.Error().Err(err).Str("date", dateKey).Msg("failed to load call records")
		http.Error(w, "failed to load call records", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"date":    dateKey,
		"count":   len(records),
		"records": records,
	})
}

func (a *API) getCallHandler(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	sess, ok := a.manager.Get(callID)
	if !ok {
		http.Error(w, "call not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"call":       sess.Snapshot(),
		"transcript": sess.Transcript(),
	})
}

func (a *API) injectTranscriptHandler(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	sess, ok := a.manager.Get(callID)
	if !ok {
		http.Error(w, "call not found", http.StatusNotFound)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		http.Error(w, "invalid transcript payload", http.StatusBadRequest)
		return
	}

	sess.OnTranscript(req.Text)
	w.WriteHeader(http.StatusOK)
}

func (a *API) disconnectHandler(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	sess, ok := a.manager.Get(callID)
	if !ok {
		http.Error(w, "call not found", http.StatusNotFound)
		return
	}

	var req struct {
		Identity string `json:"identity"`
		Reason   string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Identity == "" {
		http.Error(w, "invalid disconnect payload", http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		req.Reason = "participant_left"
	}

	sess.OnParticipantDisconnected(req.Identity, req.Reason)
	w.WriteHeader(http.StatusOK)
}
