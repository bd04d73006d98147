package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/JustRK-07/Sip-advanced/internal/classify"
	"github.com/JustRK-07/Sip-advanced/internal/config"
	"github.com/JustRK-07/Sip-advanced/internal/engine"
	"github.com/JustRK-07/Sip-advanced/internal/metrics"
	"github.com/JustRK-07/Sip-advanced/internal/report"
	"github.com/JustRK-07/Sip-advanced/internal/storage"
	"github.com/JustRK-07/Sip-advanced/internal/transcript"
	"github.com/JustRK-07/Sip-advanced/internal/types"
	"github.com/rs/zerolog"
)

// Feed receives marshaled realtime events for connected monitor clients
type Feed interface {
	Broadcast(message []byte)
}

// Deps carries the collaborators a session needs. No globals: every
// session gets its context explicitly at construction.
type Deps struct {
	Config   *config.Config
	Reporter *report.Reporter
	Store    storage.Store
	Feed     Feed
	Logger   zerolog.Logger
	OnEnd    func(*Session)
}

// Session owns all mutable state for one outbound qualification call.
// Utterances, tool invocations, the idle timer, and disconnect signals
// all mutate state under a single per-session mutex; once a terminal
// call status is committed every later signal is a no-op.
type Session struct {
	CampaignID string
	LeadID     string
	Script     string
	LeadData   map[string]string

	mu                    sync.Mutex
	callStatus            types.CallStatus
	interestStatus        types.InterestStatus
	phase                 types.ConversationPhase
	conversationData      map[string]any
	qualificationComplete bool
	ending                bool
	finalized             bool
	callStartTime         time.Time
	lastResponseTime      time.Time
	lastNudgeTime         time.Time

	transcript *transcript.Store
	engine     engine.Engine
	reporter   *report.Reporter
	store      storage.Store
	feed       Feed
	cfg        *config.Config
	logger     zerolog.Logger
	onEnd      func(*Session)

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a call session for the given room metadata
func New(ctx context.Context, meta types.RoomMetadata, eng engine.Engine, deps Deps) *Session {
	sessionCtx, cancel := context.WithCancel(ctx)

	s := &Session{
		CampaignID:       meta.CampaignID,
		LeadID:           meta.LeadID,
		Script:           meta.Script,
		LeadData:         meta.LeadData,
		callStatus:       types.CallStatusInitiated,
		interestStatus:   types.InterestUnknown,
		phase:            types.PhaseGreeting,
		conversationData: make(map[string]any),
		callStartTime:    time.Now(),
		lastResponseTime: time.Now(),
		engine:           eng,
		reporter:         deps.Reporter,
		store:            deps.Store,
		feed:             deps.Feed,
		cfg:              deps.Config,
		onEnd:            deps.OnEnd,
		ctx:              sessionCtx,
		cancel:           cancel,
		logger: deps.Logger.With().
			Str("campaign_id", meta.CampaignID).
			Str("lead_id", meta.LeadID).
			Logger(),
	}
	s.transcript = transcript.NewStore(s, s.logger)

	s.logger.Info().Interface("lead_data", meta.LeadData).Msg("session created")
	return s
}

// CallID returns the room naming convention identifier for this call
func (s *Session) CallID() string {
	return s.CampaignID + "-" + s.LeadID
}

// Start sends the initial greeting directive and begins idle
// monitoring. A greeting failure aborts setup before any call
// activity: the session context is canceled so nothing scoped to it
// outlives the failed session.
func (s *Session) Start() error {
	metrics.Get().RecordSessionStarted()

	name := "there"
	if n := s.LeadData["name"]; n != "" {
		name = n
	}
	instruction := fmt.Sprintf(
		"You are starting a new conversation with %s for a loan qualification campaign. "+
			"Introduce yourself as a loan specialist, address them by name if available, "+
			"explain that you're calling about loan options, and ask directly whether they are "+
			"currently looking for any type of loan or financial assistance. Keep it brief and professional.",
		name,
	)

	if err := s.engine.GenerateInitialReply(s.ctx, instruction); err != nil {
		s.cancel()
		metrics.Get().RecordSessionEnded(types.CallStatusFailed)
		return fmt.Errorf("failed to generate initial greeting: %w", err)
	}

	go s.runIdleMonitor()

	s.logger.Info().Msg("initial greeting requested")
	return nil
}

// OnTranscript processes one recognized customer utterance: append,
// classify, advance phase, reply, and decide the next step. Late
// utterances after a terminal status are logged and dropped.
func (s *Session) OnTranscript(text string) {
	s.mu.Lock()
	if s.callStatus.IsTerminal() {
		s.mu.Unlock()
		s.logger.Debug().Str("text", text).Msg("ignoring utterance for terminal call")
		return
	}

	s.lastResponseTime = time.Now()
	answeredNow := s.callStatus == types.CallStatusInitiated
	s.mu.Unlock()

	metrics.Get().RecordUtterance()
	s.logger.Info().Str("text", text).Msg("received transcript")

	// First utterance marks the call answered
	if answeredNow {
		s.UpdateCallStatus(string(types.CallStatusAnswered), "Call was answered by lead")
	}

	s.transcript.Append(types.SpeakerCustomer, text)

	verdict := classify.Classify(text)
	metrics.Get().RecordClassification(verdict)
	if verdict != types.InterestUnknown {
		s.MarkLeadInterest(string(verdict), classificationNotes(verdict, text))
	}

	s.advancePhase()
	s.reply(s.replyInstruction(text))
	s.handleNextSteps(text)
}

// advancePhase moves the conversation forward. Phases never regress:
// greeting advances on any utterance, loan inquiry advances once
// interest is known.
func (s *Session) advancePhase() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.phase == types.PhaseGreeting:
		s.phase = types.PhaseLoanInquiry
		s.logger.Info().Msg("moving to loan inquiry phase")
	case s.phase == types.PhaseLoanInquiry && s.interestStatus != types.InterestUnknown:
		s.phase = types.PhaseQualification
		s.logger.Info().Str("interest", string(s.interestStatus)).Msg("moving to qualification phase")
	}
}

// replyInstruction builds the directive for the engine from the
// current phase and interest status
func (s *Session) replyInstruction(userInput string) string {
	s.mu.Lock()
	phase := s.phase
	interest := s.interestStatus
	s.mu.Unlock()

	prefix := fmt.Sprintf("The user just said: %s\n", userInput)

	switch phase {
	case types.PhaseLoanInquiry:
		if interest == types.InterestUnknown {
			return prefix + "Acknowledge what they said and ask specifically about their interest " +
				"in loans or financial assistance. Try to determine if they need a loan or financial help."
		}
		return prefix + "They seem to have indicated their loan interest. " +
			"Ask follow-up questions to understand their specific needs and situation."
	case types.PhaseQualification:
		switch interest {
		case types.InterestInterested:
			return prefix + "They are interested in a loan. Gather basic qualification info like " +
				"loan amount needed, purpose, and timeframe. Then prepare to transfer to a human agent."
		case types.InterestCallback:
			return prefix + "They want a callback. Ask for their preferred time and confirm their contact information."
		default:
			return prefix + "They are not interested. Thank them politely and wrap up the conversation professionally."
		}
	default:
		return prefix + "Respond naturally and guide the conversation toward understanding their loan needs."
	}
}

// reply sends a directive to the engine and records the agent turn in
// the transcript
func (s *Session) reply(instruction string) {
	if err := s.engine.Reply(s.ctx, instruction); err != nil {
		s.logger.Error().Err(err).Msg("failed to send reply directive")
		return
	}
	s.transcript.Append(types.SpeakerAgent, agentPlaceholder(instruction))
}

// SyncTranscript pushes the running transcript snapshot plus current
// status fields to the backend. Called by the transcript store after
// every append; failures are logged inside the reporter and never
// block the call.
func (s *Session) SyncTranscript(entries []types.TranscriptEntry) {
	s.mu.Lock()
	sync := types.TranscriptSync{
		Transcript:     entries,
		LastUpdated:    time.Now(),
		Phase:          s.phase.String(),
		InterestStatus: s.interestStatus,
		CallStatus:     s.callStatus,
	}
	s.mu.Unlock()

	go s.reporter.SaveConversation(s.CampaignID, s.LeadID, "IN_PROGRESS", sync)
}

// publishRealtime fans a dashboard event out to the campaign backend
// and to connected monitor clients
func (s *Session) publishRealtime(eventType types.RealtimeEventType, data map[string]any) {
	event := types.RealtimeEvent{
		EventType:  eventType,
		CampaignID: s.CampaignID,
		LeadID:     s.LeadID,
		Timestamp:  time.Now(),
		Data:       data,
	}

	go s.reporter.RealtimeUpdate(event)

	if s.feed != nil {
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to marshal realtime event")
			return
		}
		s.feed.Broadcast(payload)
	}
}

// finalize commits the terminal state and reports the call exactly
// once. It cancels the idle monitor, persists the call record, and
// releases the session. Subsequent calls are no-ops.
func (s *Session) finalize(outcome, summary string) {
	s.mu.Lock()
	if s.finalized {
		s.mu.Unlock()
		return
	}
	s.finalized = true
	s.phase = types.PhaseTerminal
	if !s.callStatus.IsTerminal() {
		s.callStatus = types.CallStatusCompleted
	}
	status := s.callStatus
	interest := s.interestStatus
	duration := time.Since(s.callStartTime)
	data := s.snapshotDataLocked()
	transferred := s.qualificationComplete
	s.mu.Unlock()

	s.cancel()

	results := types.ConversationResults{
		Outcome:          outcome,
		Summary:          summary,
		CallStatus:       status,
		InterestStatus:   interest,
		CallDuration:     int(duration.Seconds()),
		ConversationData: data,
		FinalPhase:       types.PhaseTerminal.String(),
	}

	s.logger.Info().
		Str("outcome", outcome).
		Str("call_status", string(status)).
		Dur("duration", duration).
		Msg("finalizing call")

	go s.reporter.SaveConversation(s.CampaignID, s.LeadID, "COMPLETED", results)

	if s.store != nil {
		record := s.buildCallRecord(outcome, summary, status, interest, duration, transferred)
		go func() {
			if err := s.store.SaveCallRecord(record); err != nil {
				s.logger.Error().Err(err).Str("call_id", record.CallID).Msg("failed to save call record")
			}
		}()
	}

	metrics.Get().RecordSessionEnded(status)

	if s.onEnd != nil {
		s.onEnd(s)
	}
}

func (s *Session) buildCallRecord(outcome, summary string, status types.CallStatus, interest types.InterestStatus, duration time.Duration, transferred bool) types.CallRecord {
	now := time.Now()
	return types.CallRecord{
		DateKey:        now.Format("2006-01-02"),
		CallID:         s.CallID(),
		CampaignID:     s.CampaignID,
		LeadID:         s.LeadID,
		CallStatus:     string(status),
		InterestStatus: string(interest),
		Outcome:        outcome,
		Summary:        summary,
		FinalPhase:     types.PhaseTerminal.String(),
		StartTime:      s.callStartTime.Format(time.RFC3339),
		EndTime:        now.Format(time.RFC3339),
		Duration:       duration.Seconds(),
		Transferred:    transferred,
		TranscriptLen:  s.transcript.Len(),
	}
}

// snapshotDataLocked copies conversationData; callers must hold s.mu
func (s *Session) snapshotDataLocked() map[string]any {
	data := make(map[string]any, len(s.conversationData))
	for k, v := range s.conversationData {
		data[k] = v
	}
	return data
}

// Snapshot is a read-only view of session state for the control API
type Snapshot struct {
	CallID         string               `json:"callId"`
	CampaignID     string               `json:"campaignId"`
	LeadID         string               `json:"leadId"`
	CallStatus     types.CallStatus     `json:"callStatus"`
	InterestStatus types.InterestStatus `json:"interestStatus"`
	Phase          string               `json:"phase"`
	DurationSecs   float64              `json:"durationSecs"`
	TranscriptLen  int                  `json:"transcriptLen"`
}

// Snapshot returns the session's current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		CallID:         s.CallID(),
		CampaignID:     s.CampaignID,
		LeadID:         s.LeadID,
		CallStatus:     s.callStatus,
		InterestStatus: s.interestStatus,
		Phase:          s.phase.String(),
		DurationSecs:   time.Since(s.callStartTime).Seconds(),
		TranscriptLen:  s.transcript.Len(),
	}
}

// Status returns the current call status
func (s *Session) Status() types.CallStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callStatus
}

// Interest returns the current interest status
func (s *Session) Interest() types.InterestStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interestStatus
}

// Phase returns the current conversation phase
func (s *Session) Phase() types.ConversationPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Transcript returns a copy of the transcript log
func (s *Session) Transcript() []types.TranscriptEntry {
	return s.transcript.Snapshot()
}

func classificationNotes(verdict types.InterestStatus, text string) string {
	switch verdict {
	case types.InterestInterested:
		return "Expressed interest: " + text
	case types.InterestNotInterested:
		return "Expressed no interest: " + text
	default:
		return "Requested callback: " + text
	}
}

func agentPlaceholder(instruction string) string {
	// Cut on a rune boundary so the entry stays valid UTF-8
	if runes := []rune(instruction); len(runes) > 100 {
		instruction = string(runes[:100])
	}
	return "[Agent responding to: " + instruction + "...]"
}
