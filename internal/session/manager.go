package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/JustRK-07/Sip-advanced/internal/config"
	"github.com/JustRK-07/Sip-advanced/internal/engine"
	"github.com/JustRK-07/Sip-advanced/internal/report"
	"github.com/JustRK-07/Sip-advanced/internal/storage"
	"github.com/JustRK-07/Sip-advanced/internal/types"
	"github.com/rs/zerolog"
)

// Manager creates and tracks concurrent call sessions. Sessions share
// nothing mutable with each other; the manager only guards its own
// registry map.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg      *config.Config
	reporter *report.Reporter
	store    storage.Store
	feed     Feed
	logger   zerolog.Logger
	ctx      context.Context
}

// NewManager creates a session manager
func NewManager(ctx context.Context, cfg *config.Config, reporter *report.Reporter, store storage.Store, feed Feed, logger zerolog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		reporter: reporter,
		store:    store,
		feed:     feed,
		logger:   logger,
		ctx:      ctx,
	}
}

// StartSession parses room metadata, creates a session wired to the
// given conversation engine, and kicks off the greeting. Invalid
// metadata is fatal to setup: the lead is reported FAILED with the
// error reason and no call activity happens.
func (m *Manager) StartSession(rawMetadata string, eng engine.Engine) (*Session, error) {
	meta, err := types.ParseRoomMetadata(rawMetadata)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to parse room metadata")
		if leadID := extractLeadID(rawMetadata); leadID != "" {
			m.reporter.ReportLeadFailed(leadID, err.Error())
		}
		return nil, err
	}

	sess := New(m.ctx, meta, eng, Deps{
		Config:   m.cfg,
		Reporter: m.reporter,
		Store:    m.store,
		Feed:     m.feed,
		Logger:   m.logger,
		OnEnd:    m.remove,
	})

	m.mu.Lock()
	if _, exists := m.sessions[sess.CallID()]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("session already active for call %s", sess.CallID())
	}
	m.sessions[sess.CallID()] = sess
	m.mu.Unlock()

	if err := sess.Start(); err != nil {
		m.remove(sess)
		m.reporter.ReportLeadFailed(sess.LeadID, err.Error())
		return nil, err
	}

	m.logger.Info().
		Str("call_id", sess.CallID()).
		Int("active_sessions", m.Count()).
		Msg("session started")

	return sess, nil
}

// Get returns the active session for a call ID
func (m *Manager) Get(callID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[callID]
	return sess, ok
}

// Snapshots returns the state of all active sessions
func (m *Manager) Snapshots() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(m.sessions))
	for _, sess := range m.sessions {
		snapshots = append(snapshots, sess.Snapshot())
	}
	return snapshots
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// remove drops a finished session from the registry
func (m *Manager) remove(sess *Session) {
	m.mu.Lock()
	delete(m.sessions, sess.CallID())
	m.mu.Unlock()

	m.logger.Debug().Str("call_id", sess.CallID()).Msg("session removed")
}

// extractLeadID pulls the lead ID out of metadata that failed full
// validation, for failure reporting
func extractLeadID(raw string) string {
	var partial struct {
		LeadID string `json:"leadId"`
	}
	if err := json.Unmarshal([]byte(raw), &partial); err != nil {
		return ""
	}
	return partial.LeadID
}
