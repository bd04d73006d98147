package session

import (
	"time"

	"github.com/JustRK-07/Sip-advanced/internal/types"
)

// handleNextSteps inspects the interest status after a processed
// utterance and dispatches at most one terminal action. Each action
// fires after a short pause so the in-flight spoken reply can finish;
// the delay is pacing, not a correctness mechanism. The dispatched
// action re-checks terminal state when it fires, so a hangup landing
// during the pause wins.
func (s *Session) handleNextSteps(utterance string) {
	s.mu.Lock()
	interest := s.interestStatus
	qualified := s.qualificationComplete
	s.mu.Unlock()

	switch {
	case interest == types.InterestInterested && !qualified:
		s.dispatchAfter(s.cfg.TransferDelay, func() {
			s.TransferToAgent("Lead expressed interest in loan")
		})

	case interest == types.InterestNotInterested:
		s.dispatchAfter(s.cfg.EndCallDelay, func() {
			s.EndCall(types.OutcomeNotInterested, "Lead not interested in loan services")
		})

	case interest == types.InterestCallback:
		s.dispatchAfter(s.cfg.CallbackDelay, func() {
			s.ScheduleCallback("Lead requested callback: "+utterance, "")
		})
	}
}

// dispatchAfter runs the action after the pause unless the session
// reached a terminal state first
func (s *Session) dispatchAfter(delay time.Duration, action func()) {
	go func() {
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(delay):
		}

		s.mu.Lock()
		terminal := s.callStatus.IsTerminal() || s.ending || s.finalized
		s.mu.Unlock()
		if terminal {
			return
		}

		action()
	}()
}
