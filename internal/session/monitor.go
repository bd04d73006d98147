package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/JustRK-07/Sip-advanced/internal/metrics"
	"github.com/JustRK-07/Sip-advanced/internal/types"
)

// isCustomerIdentity filters participant identities by the room naming
// convention: the automated agent and silent listeners carry agent- or
// listener- prefixes, everyone else is the customer.
func isCustomerIdentity(identity string) bool {
	return !strings.HasPrefix(identity, "agent-") && !strings.HasPrefix(identity, "listener-")
}

// OnParticipantDisconnected handles a participant-left event. Only a
// customer disconnect triggers hangup handling; agent or listener
// identities leaving are logged and ignored.
func (s *Session) OnParticipantDisconnected(identity, reason string) {
	s.logger.Info().Str("identity", identity).Str("reason", reason).Msg("participant disconnected")

	if !isCustomerIdentity(identity) {
		return
	}

	s.mu.Lock()
	if s.callStatus.IsTerminal() {
		s.mu.Unlock()
		s.logger.Debug().Str("identity", identity).Msg("duplicate disconnect for terminal call")
		return
	}
	s.callStatus = types.CallStatusHungUp
	duration := int(time.Since(s.callStartTime).Seconds())
	phase := s.phase
	interest := s.interestStatus
	s.conversationData["call_status"] = string(types.CallStatusHungUp)
	s.conversationData["call_duration"] = duration
	s.conversationData["status_notes"] = fmt.Sprintf("Customer %s hung up after %d seconds", identity, duration)
	s.mu.Unlock()

	s.logger.Warn().
		Str("identity", identity).
		Int("duration", duration).
		Msg("customer hang-up detected")

	go s.reporter.HandleCallHangup(s.CallID(), reason, identity, duration)

	s.publishRealtime(types.EventCallStatus, map[string]any{
		"status":   string(types.CallStatusHungUp),
		"duration": duration,
		"notes":    reason,
	})

	summary := fmt.Sprintf("Customer hung up after %d seconds. Conversation state: %s, Interest: %s",
		duration, phase, interest)
	s.EndConversation(types.OutcomeHungUp, summary)
}

// OnRoomDisconnected handles a room-level disconnect. A user-initiated
// teardown is normal shutdown; anything else is treated as an unknown
// participant hanging up.
func (s *Session) OnRoomDisconnected(reason string) {
	s.logger.Info().Str("reason", reason).Msg("room disconnected")

	if reason == "" || reason == "user_initiated" {
		return
	}
	s.OnParticipantDisconnected("unknown_participant", "room_disconnected: "+reason)
}

// runIdleMonitor watches for conversational silence on a periodic
// timer scoped to the session lifetime. An idle stretch only nudges
// the engine to prompt the customer; it never finalizes the call. The
// ticker stops deterministically when the session reaches a terminal
// state.
func (s *Session) runIdleMonitor() {
	ticker := time.NewTicker(s.cfg.IdleCheckInterval)
	defer ticker.Stop()

	s.logger.Debug().
		Dur("interval", s.cfg.IdleCheckInterval).
		Dur("threshold", s.cfg.IdleThreshold).
		Msg("idle monitor started")

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debug().Msg("idle monitor stopped")
			return

		case <-ticker.C:
			s.mu.Lock()
			if s.callStatus.IsTerminal() {
				s.mu.Unlock()
				return
			}
			idle := time.Since(s.lastResponseTime)
			sinceNudge := time.Since(s.lastNudgeTime)
			shouldNudge := idle > s.cfg.IdleThreshold && sinceNudge > s.cfg.IdleThreshold
			if shouldNudge {
				s.lastNudgeTime = time.Now()
			}
			s.mu.Unlock()

			if shouldNudge {
				s.logger.Info().Dur("idle", idle).Msg("no response detected, nudging conversation")
				metrics.Get().RecordIdleNudge()
				s.reply("The customer has been silent for a while. " +
					"Ask if the person is still there and if they have any questions.")
			}
		}
	}
}
