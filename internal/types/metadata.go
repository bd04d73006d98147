package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RoomMetadata carries the call job parameters attached to a room at
// session start
type RoomMetadata struct {
	CampaignID string            `json:"campaignId"`
	LeadID     string            `json:"leadId"`
	Script     string            `json:"script"`
	LeadData   map[string]string `json:"leadData,omitempty"`
}

// DefaultTestScript is used for test calls placed without metadata
const DefaultTestScript = "Hi, this is a test call from our loan department. " +
	"I'm calling to see if you might be interested in learning about loan options we have available. " +
	"Are you currently looking for any type of loan or financial assistance?"

// TestCallMetadata returns the fixed defaults used when a room carries
// no metadata. Empty metadata marks a test call, not an error.
func TestCallMetadata() RoomMetadata {
	return RoomMetadata{
		CampaignID: "test-campaign",
		LeadID:     "test-lead-" + uuid.New().String(),
		Script:     DefaultTestScript,
		LeadData: map[string]string{
			"name":   "Test Lead",
			"email":  "test@example.com",
			"phone":  "+1234567890",
			"source": "test_campaign",
		},
	}
}

// ParseRoomMetadata decodes room metadata JSON. An empty or blank
// payload yields test-call defaults. A present but incomplete payload
// is a configuration error.
func ParseRoomMetadata(raw string) (RoomMetadata, error) {
	if trimmed := strings.TrimSpace(raw); trimmed == "" || trimmed == "null" {
		return TestCallMetadata(), nil
	}

	var meta RoomMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return RoomMetadata{}, fmt.Errorf("invalid metadata format: %w", err)
	}

	if meta.CampaignID == "" {
		return RoomMetadata{}, fmt.Errorf("missing campaignId in metadata")
	}
	if meta.LeadID == "" {
		return RoomMetadata{}, fmt.Errorf("missing leadId in metadata")
	}
	if meta.Script == "" {
		return RoomMetadata{}, fmt.Errorf("missing script in metadata")
	}
	if meta.LeadData == nil {
		meta.LeadData = map[string]string{}
	}

	return meta, nil
}

// LeadName returns the lead's name or a neutral fallback for greetings
func (m RoomMetadata) LeadName() string {
	if name := m.LeadData["name"]; name != "" {
		return name
	}
	return "there"
}
