package report

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/JustRK-07/Sip-advanced/internal/types"
	"github.com/rs/zerolog"
)

func TestSaveConversationPayload(t *testing.T) {
	var (
		mu       sync.Mutex
		gotPath  string
		gotBody  map[string]any
		received = make(chan struct{}, 1)
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		mu.Unlock()
		received <- struct{}{}
	}))
	defer server.Close()

	r := NewReporter(server.URL, time.Second, zerolog.New(&bytes.Buffer{}))
	r.SaveConversation("camp-1", "lead-1", "IN_PROGRESS", map[string]any{"note": "snapshot"})

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("backend never received the notification")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/api/trpc/campaign.saveConversation" {
		t.Errorf("path = %s, want /api/trpc/campaign.saveConversation", gotPath)
	}
	if gotBody["campaignId"] != "camp-1" || gotBody["leadId"] != "lead-1" {
		t.Errorf("unexpected identifiers in payload: %v", gotBody)
	}
	if gotBody["status"] != "IN_PROGRESS" {
		t.Errorf("status = %v, want IN_PROGRESS", gotBody["status"])
	}
}

func TestReporterSwallowsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	r := NewReporter(server.URL, time.Second, zerolog.New(&bytes.Buffer{}))

	// Must not panic or surface an error
	r.UpdateLeadStatus("lead-1", "CONTACTED", "note", nil)
	r.HandleCallHangup("camp-1-lead-1", "network", "lead-1", 12)
	r.RealtimeUpdate(types.RealtimeEvent{EventType: types.EventCallStatus})
}

func TestReporterSwallowsUnreachableBackend(t *testing.T) {
	r := NewReporter("http://127.0.0.1:1", 100*time.Millisecond, zerolog.New(&bytes.Buffer{}))

	done := make(chan struct{})
	go func() {
		r.ReportLeadFailed("lead-9", "metadata invalid")
		r.UpdateLeadInCampaign("camp-1", "lead-9", "FAILED", nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reporter blocked on unreachable backend")
	}
}

func TestReportLeadFailedPayload(t *testing.T) {
	var (
		mu       sync.Mutex
		gotBody  map[string]any
		received = make(chan struct{}, 1)
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		json.NewDecoder(r.Body).Decode(&gotBody)
		mu.Unlock()
		received <- struct{}{}
	}))
	defer server.Close()

	r := NewReporter(server.URL, time.Second, zerolog.New(&bytes.Buffer{}))
	r.ReportLeadFailed("lead-5", "missing script in metadata")

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("backend never received the failure report")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotBody["status"] != "FAILED" {
		t.Errorf("status = %v, want FAILED", gotBody["status"])
	}
	if gotBody["errorReason"] != "missing script in metadata" {
		t.Errorf("errorReason = %v", gotBody["errorReason"])
	}
}
