package transcript

import (
	"sync"
	"time"

	"github.com/JustRK-07/Sip-advanced/internal/types"
	"github.com/rs/zerolog"
)

// Syncer pushes a transcript snapshot to the campaign backend after
// each append. Sync is best effort: failures are the syncer's problem
// and never fail the append.
type Syncer interface {
	SyncTranscript(entries []types.TranscriptEntry)
}

// Store is the append-only ordered utterance log for a single call.
// The in-memory log is authoritative; the backend copy is
// eventually consistent and may lag or miss entries when syncs fail.
type Store struct {
	mu      sync.RWMutex
	entries []types.TranscriptEntry
	syncer  Syncer
	logger  zerolog.Logger
}

// NewStore creates an empty transcript store
func NewStore(syncer Syncer, logger zerolog.Logger) *Store {
	return &Store{
		syncer: syncer,
		logger: logger,
	}
}

// Append adds an utterance to the log and triggers a best-effort
// backend sync with the full snapshot. Entries are never reordered or
// truncated.
func (s *Store) Append(speaker types.Speaker, text string) types.TranscriptEntry {
	entry := types.TranscriptEntry{
		Timestamp: time.Now(),
		Speaker:   speaker,
		Text:      text,
		EntryType: types.EntryTypeFor(speaker),
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	snapshot := make([]types.TranscriptEntry, len(s.entries))
	copy(snapshot, s.entries)
	s.mu.Unlock()

	s.logger.Debug().
		Str("speaker", string(speaker)).
		Str("text", truncate(text, 50)).
		Int("entries", len(snapshot)).
		Msg("transcript entry saved")

	if s.syncer != nil {
		s.syncer.SyncTranscript(snapshot)
	}

	return entry
}

// Snapshot returns a copy of the current transcript
func (s *Store) Snapshot() []types.TranscriptEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]types.TranscriptEntry, len(s.entries))
	copy(snapshot, s.entries)
	return snapshot
}

// Len returns the number of entries in the log
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// truncate shortens text to max runes, cutting on a rune boundary
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
