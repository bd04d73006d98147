package types

import "time"

// RealtimeEventType tags dashboard events
type RealtimeEventType string

const (
	EventCallStatus        RealtimeEventType = "call_status"
	EventLeadInterest      RealtimeEventType = "lead_interest"
	EventCallbackScheduled RealtimeEventType = "callback_scheduled"
	EventCallCompleted     RealtimeEventType = "call_completed"
)

// RealtimeEvent is a dashboard update for one call, fanned out to the
// campaign backend and to connected monitor clients
type RealtimeEvent struct {
	EventType  RealtimeEventType `json:"event_type"`
	CampaignID string            `json:"campaign_id"`
	LeadID     string            `json:"lead_id"`
	Timestamp  time.Time         `json:"timestamp"`
	Data       map[string]any    `json:"data"`
}

// ConversationResults is the final payload saved when a call ends
type ConversationResults struct {
	Outcome          string         `json:"outcome"`
	Summary          string         `json:"summary"`
	CallStatus       CallStatus     `json:"call_status"`
	InterestStatus   InterestStatus `json:"interest_status"`
	CallDuration     int            `json:"call_duration"` // seconds
	ConversationData map[string]any `json:"conversation_data"`
	FinalPhase       string         `json:"final_state"`
}

// TranscriptSync carries the running transcript snapshot pushed to the
// backend after every append
type TranscriptSync struct {
	Transcript     []TranscriptEntry `json:"transcript"`
	LastUpdated    time.Time         `json:"last_updated"`
	Phase          string            `json:"conversation_state"`
	InterestStatus InterestStatus    `json:"interest_status"`
	CallStatus     CallStatus        `json:"call_status"`
}
