package transcript

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/JustRK-07/Sip-advanced/internal/types"
	"github.com/rs/zerolog"
)

type recordingSyncer struct {
	snapshots [][]types.TranscriptEntry
}

func (r *recordingSyncer) SyncTranscript(entries []types.TranscriptEntry) {
	r.snapshots = append(r.snapshots, entries)
}

func TestAppendOrdering(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	store := NewStore(nil, logger)

	store.Append(types.SpeakerAgent, "hello, am I speaking with John?")
	store.Append(types.SpeakerCustomer, "yes this is John")
	store.Append(types.SpeakerAgent, "great, I'm calling about loan options")

	snapshot := store.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(snapshot))
	}
	if snapshot[0].Speaker != types.SpeakerAgent {
		t.Errorf("expected first entry from agent, got %s", snapshot[0].Speaker)
	}
	if snapshot[1].Text != "yes this is John" {
		t.Errorf("unexpected second entry text: %s", snapshot[1].Text)
	}
}

func TestAppendEntryTypes(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	store := NewStore(nil, logger)

	customer := store.Append(types.SpeakerCustomer, "hi")
	agent := store.Append(types.SpeakerAgent, "hello")

	if customer.EntryType != "customer_message" {
		t.Errorf("expected customer_message, got %s", customer.EntryType)
	}
	if agent.EntryType != "agent_message" {
		t.Errorf("expected agent_message, got %s", agent.EntryType)
	}
}

func TestAppendTriggersSync(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	syncer := &recordingSyncer{}
	store := NewStore(syncer, logger)

	store.Append(types.SpeakerCustomer, "first")
	store.Append(types.SpeakerCustomer, "second")

	if len(syncer.snapshots) != 2 {
		t.Fatalf("expected 2 syncs, got %d", len(syncer.snapshots))
	}
	if len(syncer.snapshots[0]) != 1 || len(syncer.snapshots[1]) != 2 {
		t.Error("each sync should carry the full snapshot at append time")
	}
}

func TestSnapshotIsPrefixOfLater(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	store := NewStore(nil, logger)

	store.Append(types.SpeakerCustomer, "a")
	store.Append(types.SpeakerCustomer, "b")
	early := store.Snapshot()

	store.Append(types.SpeakerCustomer, "c")
	late := store.Snapshot()

	if len(late) < len(early) {
		t.Fatal("later snapshot shorter than earlier one")
	}
	for i := range early {
		if early[i].Text != late[i].Text {
			t.Errorf("entry %d changed: %q vs %q", i, early[i].Text, late[i].Text)
		}
	}
}

func TestTruncateKeepsValidUTF8(t *testing.T) {
	text := strings.Repeat("é", 60)

	got := truncate(text, 50)
	if !utf8.ValidString(got) {
		t.Errorf("truncated text is not valid UTF-8: %q", got)
	}
	if got != strings.Repeat("é", 50)+"..." {
		t.Errorf("expected a 50-rune cut with ellipsis, got %q", got)
	}

	if got := truncate("short", 50); got != "short" {
		t.Errorf("text under the limit must pass through, got %q", got)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	store := NewStore(nil, logger)
	store.Append(types.SpeakerCustomer, "original")

	snapshot := store.Snapshot()
	snapshot[0].Text = "mutated"

	if store.Snapshot()[0].Text != "original" {
		t.Error("snapshot mutation leaked into the store")
	}
}
