package report

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/JustRK-07/Sip-advanced/internal/metrics"
	"github.com/JustRK-07/Sip-advanced/internal/types"
	"github.com/rs/zerolog"
)

// Reporter sends fire-and-forget notifications to the campaign
// backend. Every call logs its outcome and swallows failures: the
// backend view is advisory, and nothing here may block or fail the
// orchestration path.
type Reporter struct {
	apiURL     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewReporter creates a reporter for the given campaign backend URL
func NewReporter(apiURL string, timeout time.Duration, logger zerolog.Logger) *Reporter {
	return &Reporter{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SaveConversation pushes conversation results (running transcript
// snapshots or the final save) for a lead
func (r *Reporter) SaveConversation(campaignID, leadID, status string, results any) {
	payload := map[string]any{
		"campaignId": campaignID,
		"leadId":     leadID,
		"status":     status,
		"results":    results,
	}
	r.post("/api/trpc/campaign.saveConversation", payload)
}

// UpdateLeadStatus updates a lead's status record
func (r *Reporter) UpdateLeadStatus(leadID, status, notes string, conversationData map[string]any) {
	payload := map[string]any{
		"id":     leadID,
		"status": status,
		"notes":  notes,
	}
	if conversationData != nil {
		payload["conversationData"] = conversationData
	}
	r.post("/api/trpc/campaign.updateLeadStatus", payload)
}

// ReportLeadFailed marks a lead FAILED with the captured error reason
func (r *Reporter) ReportLeadFailed(leadID, errorReason string) {
	payload := map[string]any{
		"id":          leadID,
		"status":      "FAILED",
		"errorReason": errorReason,
	}
	r.post("/api/trpc/campaign.updateLeadStatus", payload)
}

// UpdateLeadInCampaign updates the lead's disposition within the
// campaign itself (separate endpoint from the lead status record)
func (r *Reporter) UpdateLeadInCampaign(campaignID, leadID, status string, data any) {
	payload := map[string]any{
		"leadId":     leadID,
		"campaignId": campaignID,
		"status":     status,
		"data":       data,
	}
	r.post("/api/campaign/updateLeadStatus", payload)
}

// RealtimeUpdate sends a dashboard event
func (r *Reporter) RealtimeUpdate(event types.RealtimeEvent) {
	r.post("/api/trpc/campaign.realtimeUpdate", event)
}

// HandleCallHangup notifies the backend that the customer hung up
func (r *Reporter) HandleCallHangup(callID, reason, participantIdentity string, duration int) {
	payload := map[string]any{
		"callId":              callID,
		"hangupReason":        reason,
		"participantIdentity": participantIdentity,
		"callDuration":        duration,
	}
	r.post("/api/trpc/campaign.handleCallHangup", payload)
}

// post sends a JSON payload to the backend. Non-200 responses and
// transport errors are logged and dropped; no retry queue is kept, so
// a persistently failing backend loses these notifications.
func (r *Reporter) post(path string, payload any) {
	m := metrics.Get()

	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error().Err(err).Str("path", path).Msg("failed to marshal backend payload")
		m.RecordReportFailed()
		return
	}

	resp, err := r.httpClient.Post(r.apiURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		r.logger.Warn().Err(err).Str("path", path).Msg("failed to reach campaign backend")
		m.RecordReportFailed()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("body", string(body)).
			Msg("campaign backend returned non-200 status")
		m.RecordReportFailed()
		return
	}

	m.RecordReportSent()
	r.logger.Debug().Str("path", path).Msg("backend notification sent")
}
