package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JustRK-07/Sip-advanced/internal/config"
	"github.com/JustRK-07/Sip-advanced/internal/report"
	"github.com/JustRK-07/Sip-advanced/internal/session"
	"github.com/JustRK-07/Sip-advanced/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func testRouter(t *testing.T) (*chi.Mux, *session.Manager) {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(backend.Close)

	logger := zerolog.New(&bytes.Buffer{})
	cfg := &config.Config{
		BackendTimeout:    time.Second,
		TransferDelay:     10 * time.Millisecond,
		EndCallDelay:      10 * time.Millisecond,
		CallbackDelay:     10 * time.Millisecond,
		IdleCheckInterval: time.Minute,
		IdleThreshold:     time.Minute,
	}
	reporter := report.NewReporter(backend.URL, cfg.BackendTimeout, logger)
	manager := session.NewManager(context.Background(), cfg, reporter, storage.NewNoopStore(), nil, logger)

	a := NewAPI(manager, nil, storage.NewNoopStore(), cfg, logger)
	r := chi.NewRouter()
	r.Get("/health", a.HealthHandler)
	a.Routes(r)
	return r, manager
}

func startTestCall(t *testing.T, router *chi.Mux, body string) StartCallResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/calls/start", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("start call returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp StartCallResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode start response: %v", err)
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid health JSON: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
	if _, ok := body["activeCalls"]; !ok {
		t.Error("health response missing activeCalls")
	}
}

func TestStartCallWithDefaults(t *testing.T) {
	router, manager := testRouter(t)

	resp := startTestCall(t, router, `{"persona":"silent"}`)

	if resp.CampaignID != "test-campaign" {
		t.Errorf("campaign = %s, want test-campaign", resp.CampaignID)
	}
	if !strings.HasPrefix(resp.LeadID, "test-lead-") {
		t.Errorf("lead = %s, want test-lead- prefix", resp.LeadID)
	}
	if resp.Token != "" {
		t.Error("no credentials configured, token should be empty")
	}
	if manager.Count() != 1 {
		t.Errorf("active sessions = %d, want 1", manager.Count())
	}
}

func TestStartCallWithMetadata(t *testing.T) {
	router, _ := testRouter(t)

	resp := startTestCall(t, router,
		`{"persona":"silent","metadata":{"campaignId":"c9","leadId":"l3","script":"hi","leadData":{"name":"Kim"}}}`)

	if resp.CallID != "c9-l3" {
		t.Errorf("callId = %s, want c9-l3", resp.CallID)
	}
}

func TestStartCallRejectsBadMetadata(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/calls/start",
		strings.NewReader(`{"metadata":{"leadId":"l1"}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for incomplete metadata, got %d", rec.Code)
	}
}

func TestGetCallAndTranscript(t *testing.T) {
	router, _ := testRouter(t)
	resp := startTestCall(t, router, `{"persona":"silent"}`)

	// Inject a customer line through the control surface
	req := httptest.NewRequest(http.MethodPost, "/calls/"+resp.CallID+"/transcript",
		strings.NewReader(`{"text":"hello there"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("transcript injection returned %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/calls/"+resp.CallID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get call returned %d", rec.Code)
	}

	var body struct {
		Call       session.Snapshot `json:"call"`
		Transcript []struct {
			Speaker string `json:"speaker"`
			Text    string `json:"text"`
		} `json:"transcript"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode call response: %v", err)
	}
	if body.Call.CallStatus != "ANSWERED" {
		t.Errorf("status = %s, want ANSWERED", body.Call.CallStatus)
	}
	if len(body.Transcript) == 0 || body.Transcript[0].Text != "hello there" {
		t.Errorf("transcript missing injected utterance: %+v", body.Transcript)
	}
}

func TestGetCallNotFound(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/calls/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown call, got %d", rec.Code)
	}
}

func TestListCalls(t *testing.T) {
	router, _ := testRouter(t)
	startTestCall(t, router, `{"persona":"silent"}`)
	startTestCall(t, router, `{"persona":"silent"}`)

	req := httptest.NewRequest(http.MethodGet, "/calls", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body struct {
		Count int                `json:"count"`
		Calls []session.Snapshot `json:"calls"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if body.Count != 2 || len(body.Calls) != 2 {
		t.Errorf("expected 2 calls, got count=%d len=%d", body.Count, len(body.Calls))
	}
}

func TestCallHistoryDefaultsToToday(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/calls/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("history returned %d", rec.Code)
	}
	var body struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode history response: %v", err)
	}
	if body.Date != time.Now().Format("2006-01-02") {
		t.Errorf("date = %s, want today", body.Date)
	}
	if body.Count != 0 {
		t.Errorf("count = %d, want 0", body.Count)
	}
}

func TestDisconnectEndsCall(t *testing.T) {
	router, manager := testRouter(t)
	resp := startTestCall(t, router, `{"persona":"silent"}`)

	req := httptest.NewRequest(http.MethodPost, "/calls/"+resp.CallID+"/disconnect",
		strings.NewReader(`{"identity":"`+resp.LeadID+`","reason":"hung up"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("disconnect returned %d", rec.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if manager.Count() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("session never removed after customer disconnect")
}
