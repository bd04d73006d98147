package types

import "time"

// CallStatus represents the lifecycle state of an outbound call
type CallStatus string

const (
	CallStatusInitiated CallStatus = "INITIATED" // Dial started, nobody picked up yet
	CallStatusAnswered  CallStatus = "ANSWERED"  // A live person answered
	CallStatusVoicemail CallStatus = "VOICEMAIL" // Reached an answering machine
	CallStatusBusy      CallStatus = "BUSY"      // Line busy
	CallStatusNoAnswer  CallStatus = "NO_ANSWER" // Rang out
	CallStatusHungUp    CallStatus = "HUNG_UP"   // Customer disconnected mid-call
	CallStatusCompleted CallStatus = "COMPLETED" // Call ended normally
	CallStatusFailed    CallStatus = "FAILED"    // Setup or transport failure
)

// IsTerminal reports whether the status ends the call lifecycle.
// A terminal status is immutable once committed.
func (s CallStatus) IsTerminal() bool {
	switch s {
	case CallStatusCompleted, CallStatusHungUp, CallStatusFailed:
		return true
	}
	return false
}

// InterestStatus represents the lead's classified loan interest
type InterestStatus string

const (
	InterestUnknown       InterestStatus = "UNKNOWN"
	InterestInterested    InterestStatus = "INTERESTED"
	InterestNotInterested InterestStatus = "NOT_INTERESTED"
	InterestCallback      InterestStatus = "CALLBACK_REQUESTED"
)

// ConversationPhase represents the stage of the scripted qualification flow.
// Phases only ever advance; they never regress.
type ConversationPhase int

const (
	PhaseGreeting ConversationPhase = iota
	PhaseLoanInquiry
	PhaseQualification
	PhaseTerminal
)

// String returns the wire representation of the phase
func (p ConversationPhase) String() string {
	switch p {
	case PhaseGreeting:
		return "greeting"
	case PhaseLoanInquiry:
		return "loan_inquiry"
	case PhaseQualification:
		return "qualification"
	case PhaseTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Speaker identifies which side of the call produced an utterance
type Speaker string

const (
	SpeakerCustomer Speaker = "Customer"
	SpeakerAgent    Speaker = "Agent"
)

// TranscriptEntry is one utterance in the ordered call transcript
type TranscriptEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	EntryType string    `json:"type"` // customer_message or agent_message
}

// EntryTypeFor derives the transcript entry type from the speaker
func EntryTypeFor(speaker Speaker) string {
	if speaker == SpeakerCustomer {
		return "customer_message"
	}
	return "agent_message"
}

// CallOutcome values used when finalizing a call
const (
	OutcomeInterested        = "INTERESTED"
	OutcomeNotInterested     = "NOT_INTERESTED"
	OutcomeVoicemail         = "VOICEMAIL"
	OutcomeCallbackScheduled = "CALLBACK_SCHEDULED"
	OutcomeHungUp            = "hung_up"
)
