package session

import (
	"fmt"
	"time"

	"github.com/JustRK-07/Sip-advanced/internal/metrics"
	"github.com/JustRK-07/Sip-advanced/internal/types"
)

// Tools is the fixed capability set exposed to the conversation
// engine's LLM layer. Each call takes structured arguments and returns
// a short confirmation string; internal failures are logged and
// reported in the confirmation, never raised into the caller.
type Tools interface {
	UpdateCallStatus(status, notes string) string
	MarkLeadInterest(interestLevel, notes string) string
	SaveConversationData(key, value string) string
	TransferToAgent(reason string) string
	ScheduleCallback(reason, preferredTime string) string
	HandleVoicemail(action string) string
	EndCall(outcome, summary string) string
	EndConversation(outcome, summary string) string
	CheckSilence(durationSeconds int) string
	CheckConversationFlow() string
}

var _ Tools = (*Session)(nil)

// UpdateCallStatus updates the call status for campaign tracking. A
// terminal status is immutable: updates against it are ignored.
func (s *Session) UpdateCallStatus(status, notes string) string {
	s.mu.Lock()
	if s.callStatus.IsTerminal() {
		current := s.callStatus
		s.mu.Unlock()
		s.logger.Debug().Str("requested", status).Str("current", string(current)).
			Msg("ignoring status update for terminal call")
		return fmt.Sprintf("Call already ended with status %s", current)
	}

	s.callStatus = types.CallStatus(status)
	duration := int(time.Since(s.callStartTime).Seconds())
	s.conversationData["call_status"] = status
	s.conversationData["call_duration"] = duration
	s.conversationData["status_notes"] = notes
	s.conversationData["status_timestamp"] = time.Now().Format(time.RFC3339)
	s.mu.Unlock()

	s.logger.Info().Str("status", status).Str("notes", notes).Msg("updated call status")

	s.publishRealtime(types.EventCallStatus, map[string]any{
		"status":   status,
		"duration": duration,
		"notes":    notes,
	})

	return "Call status updated: " + status
}

// MarkLeadInterest marks the lead's interest level. UNKNOWN never
// overwrites a previously established verdict; a non-UNKNOWN verdict
// may flip an earlier one when the caller changes their mind.
func (s *Session) MarkLeadInterest(interestLevel, notes string) string {
	level := types.InterestStatus(interestLevel)
	switch level {
	case types.InterestInterested, types.InterestNotInterested, types.InterestCallback:
	default:
		s.logger.Warn().Str("interest_level", interestLevel).Msg("ignoring invalid interest level")
		return "Interest level unchanged"
	}

	s.mu.Lock()
	if s.callStatus.IsTerminal() {
		s.mu.Unlock()
		return "Call already ended"
	}
	s.interestStatus = level
	s.conversationData["interest_level"] = interestLevel
	s.conversationData["interest_notes"] = notes
	s.conversationData["interest_timestamp"] = time.Now().Format(time.RFC3339)
	s.mu.Unlock()

	s.logger.Info().Str("interest", interestLevel).Str("notes", notes).Msg("marked lead interest")

	s.publishRealtime(types.EventLeadInterest, map[string]any{
		"interest_level": interestLevel,
		"notes":          notes,
	})

	return "Lead interest marked: " + interestLevel
}

// SaveConversationData saves one fact gathered during the call
func (s *Session) SaveConversationData(key, value string) string {
	s.mu.Lock()
	s.conversationData[key] = value
	s.mu.Unlock()

	s.logger.Info().Str("key", key).Str("value", value).Msg("saved conversation data")
	return fmt.Sprintf("Saved %s: %s", key, value)
}

// TransferToAgent hands the call to a human loan specialist. Guarded
// by qualificationComplete: at most one transfer per session.
func (s *Session) TransferToAgent(reason string) string {
	s.mu.Lock()
	if s.callStatus.IsTerminal() {
		s.mu.Unlock()
		return "Call already ended"
	}
	if s.qualificationComplete {
		s.mu.Unlock()
		s.logger.Debug().Msg("transfer already dispatched, ignoring")
		return "Transfer already in progress"
	}
	s.qualificationComplete = true
	s.conversationData["transfer_reason"] = reason
	s.conversationData["transfer_timestamp"] = time.Now().Format(time.RFC3339)
	interest := s.interestStatus
	data := s.snapshotDataLocked()
	s.mu.Unlock()

	s.logger.Info().Str("reason", reason).Msg("transferring call to human agent")
	metrics.Get().RecordTransfer()

	go s.reporter.UpdateLeadStatus(s.LeadID, "TRANSFERRED_TO_AGENT",
		"Interest level: "+string(interest), data)

	s.reply("Great! I can see you're interested in a loan. " +
		"I'm now connecting you with one of our loan specialists who can help you with the details. " +
		"Please hold for just a moment.")

	return "Call transferred to human agent: " + reason
}

// ScheduleCallback records a callback request for the lead
func (s *Session) ScheduleCallback(reason, preferredTime string) string {
	s.mu.Lock()
	if s.callStatus.IsTerminal() {
		s.mu.Unlock()
		return "Call already ended"
	}
	if _, exists := s.conversationData["callback_scheduled"]; exists {
		s.mu.Unlock()
		return "Callback already scheduled"
	}
	callbackData := map[string]any{
		"reason":              reason,
		"preferred_time":      preferredTime,
		"scheduled_timestamp": time.Now().Format(time.RFC3339),
		"lead_data":           s.LeadData,
	}
	s.conversationData["callback_scheduled"] = callbackData
	s.mu.Unlock()

	s.logger.Info().Str("reason", reason).Str("preferred_time", preferredTime).Msg("callback scheduled")
	metrics.Get().RecordCallback()

	s.publishRealtime(types.EventCallbackScheduled, callbackData)
	go s.reporter.UpdateLeadInCampaign(s.CampaignID, s.LeadID, types.OutcomeCallbackScheduled, callbackData)

	return "Callback scheduled: " + reason
}

// HandleVoicemail handles reaching an answering machine: optionally
// leave a message, then end the call with a VOICEMAIL outcome
func (s *Session) HandleVoicemail(action string) string {
	s.UpdateCallStatus(string(types.CallStatusVoicemail), "Reached voicemail")
	metrics.Get().RecordVoicemail()

	if action == "leave_message" {
		s.reply("Please leave a professional voicemail message about loan services. " +
			"Include callback information and keep it brief and professional.")
	}

	s.EndCall(types.OutcomeVoicemail, "Voicemail message left")
	return "Voicemail handled successfully"
}

// EndCall ends the call and updates campaign status. The ending flag
// is claimed under the lock so concurrent invocations (dispatcher
// delay firing alongside an engine tool call) emit the completion
// event and campaign update once.
func (s *Session) EndCall(outcome, summary string) string {
	s.mu.Lock()
	if s.finalized || s.ending {
		s.mu.Unlock()
		return "Call already ended"
	}
	s.ending = true
	s.mu.Unlock()

	s.UpdateCallStatus(string(types.CallStatusCompleted), "Call ended: "+outcome)

	s.mu.Lock()
	finalData := s.snapshotDataLocked()
	interest := s.interestStatus
	status := s.callStatus
	duration := int(time.Since(s.callStartTime).Seconds())
	s.mu.Unlock()

	finalResults := map[string]any{
		"outcome":           outcome,
		"summary":           summary,
		"call_status":       status,
		"interest_status":   interest,
		"call_duration":     duration,
		"conversation_data": finalData,
		"lead_data":         s.LeadData,
	}

	s.publishRealtime(types.EventCallCompleted, finalResults)
	go s.reporter.UpdateLeadInCampaign(s.CampaignID, s.LeadID, outcome, finalResults)

	s.finalize(outcome, summary)
	return "Call ended successfully: " + outcome
}

// EndConversation ends the conversation and saves final results
func (s *Session) EndConversation(outcome, summary string) string {
	s.finalize(outcome, summary)
	return "Conversation ended and data saved successfully."
}

// CheckSilence advises the engine on handling a silent stretch
func (s *Session) CheckSilence(durationSeconds int) string {
	if time.Duration(durationSeconds)*time.Second > s.cfg.IdleThreshold {
		s.logger.Info().Int("duration", durationSeconds).Msg("silence detected")
		return "Ask if the person is still there and if they have any questions."
	}
	return "Continue with the current conversation flow."
}

// CheckConversationFlow checks responsiveness and advises the engine
func (s *Session) CheckConversationFlow() string {
	s.mu.Lock()
	idle := time.Since(s.lastResponseTime)
	s.mu.Unlock()

	if idle > s.cfg.IdleThreshold/2 {
		s.logger.Info().Dur("idle", idle).Msg("no response detected")
		return "Ask an open-ended question to encourage response"
	}
	return "Continue with current conversation flow"
}
