package engine

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type captureSink struct {
	mu         sync.Mutex
	utterances []string
}

func (c *captureSink) OnTranscript(text string) {
	c.mu.Lock()
	c.utterances = append(c.utterances, text)
	c.mu.Unlock()
}

func (c *captureSink) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.utterances))
	copy(out, c.utterances)
	return out
}

func TestScriptedEngineDeliversPersonaScript(t *testing.T) {
	eng := NewScriptedEngine(PersonaInterested, 5*time.Millisecond, zerolog.New(&bytes.Buffer{}))
	sink := &captureSink{}
	eng.SetSink(sink)

	ctx := context.Background()
	script := personaScripts[PersonaInterested]
	for range script {
		if err := eng.Reply(ctx, "directive"); err != nil {
			t.Fatalf("Reply returned error: %v", err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(sink.snapshot()) == len(script) {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}

	got := sink.snapshot()
	if len(got) != len(script) {
		t.Fatalf("delivered %d utterances, want %d", len(got), len(script))
	}
	for i, want := range script {
		if got[i] != want {
			t.Errorf("utterance %d = %q, want %q", i, got[i], want)
		}
	}
}

func TestScriptedEngineSinkAttachedAfterGreeting(t *testing.T) {
	eng := NewScriptedEngine(PersonaSilent, 20*time.Millisecond, zerolog.New(&bytes.Buffer{}))

	// Greeting is issued before the sink exists, as during session setup
	if err := eng.GenerateInitialReply(context.Background(), "greet"); err != nil {
		t.Fatalf("GenerateInitialReply returned error: %v", err)
	}
	sink := &captureSink{}
	eng.SetSink(sink)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(sink.snapshot()) == 1 {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("utterance scheduled before SetSink was never delivered")
}

func TestScriptedEngineStopsDelivery(t *testing.T) {
	eng := NewScriptedEngine(PersonaInterested, 10*time.Millisecond, zerolog.New(&bytes.Buffer{}))
	sink := &captureSink{}
	eng.SetSink(sink)

	if err := eng.Reply(context.Background(), "directive"); err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}
	eng.Stop()

	time.Sleep(50 * time.Millisecond)
	if got := sink.snapshot(); len(got) != 0 {
		t.Errorf("stopped engine delivered %d utterances", len(got))
	}
}

func TestScriptedEngineRespectsContext(t *testing.T) {
	eng := NewScriptedEngine(PersonaInterested, 20*time.Millisecond, zerolog.New(&bytes.Buffer{}))
	sink := &captureSink{}
	eng.SetSink(sink)

	ctx, cancel := context.WithCancel(context.Background())
	if err := eng.Reply(ctx, "directive"); err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}
	cancel()

	time.Sleep(60 * time.Millisecond)
	if got := sink.snapshot(); len(got) != 0 {
		t.Errorf("canceled context still delivered %d utterances", len(got))
	}
}

func TestScriptedEngineExhaustsScript(t *testing.T) {
	eng := NewScriptedEngine(PersonaSilent, time.Millisecond, zerolog.New(&bytes.Buffer{}))
	sink := &captureSink{}
	eng.SetSink(sink)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := eng.Reply(ctx, "directive"); err != nil {
			t.Fatalf("Reply returned error: %v", err)
		}
	}

	time.Sleep(30 * time.Millisecond)
	if got := sink.snapshot(); len(got) != 1 {
		t.Errorf("silent persona has 1 line, delivered %d", len(got))
	}
	if got := eng.Replies(); len(got) != 5 {
		t.Errorf("expected 5 recorded directives, got %d", len(got))
	}
}

func TestUnknownPersonaFallsBackToSilent(t *testing.T) {
	eng := NewScriptedEngine(Persona("nonsense"), time.Millisecond, zerolog.New(&bytes.Buffer{}))
	if len(eng.script) != len(personaScripts[PersonaSilent]) {
		t.Errorf("unknown persona should use the silent script")
	}
}
