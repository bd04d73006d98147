package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Persona names a canned customer behavior for simulated calls
type Persona string

const (
	PersonaInterested    Persona = "interested"
	PersonaNotInterested Persona = "not_interested"
	PersonaCallback      Persona = "callback"
	PersonaSilent        Persona = "silent"
)

// personaScripts holds the utterances each simulated customer speaks,
// one per agent reply
var personaScripts = map[Persona][]string{
	PersonaInterested: {
		"hello, who is this?",
		"yes I'm definitely interested in a loan",
		"how much can I borrow?",
	},
	PersonaNotInterested: {
		"hello?",
		"no thanks, please don't call me again",
	},
	PersonaCallback: {
		"hi, I'm in the middle of something",
		"can you call me back tomorrow",
	},
	PersonaSilent: {
		"hello?",
	},
}

// ScriptedEngine is a simulated conversation engine for local runs and
// tests. After each directive it waits a fixed turn delay, then feeds
// the persona's next utterance into the sink, mimicking the cadence of
// a real recognized-speech stream.
type ScriptedEngine struct {
	mu        sync.Mutex
	script    []string
	next      int
	turnDelay time.Duration
	sink      TranscriptSink
	replies   []string
	stopped   bool
	logger    zerolog.Logger
}

// NewScriptedEngine creates an engine that plays the given persona
func NewScriptedEngine(persona Persona, turnDelay time.Duration, logger zerolog.Logger) *ScriptedEngine {
	script, ok := personaScripts[persona]
	if !ok {
		script = personaScripts[PersonaSilent]
	}
	return &ScriptedEngine{
		script:    script,
		turnDelay: turnDelay,
		logger:    logger.With().Str("persona", string(persona)).Logger(),
	}
}

// SetSink attaches the session that receives simulated utterances.
// Must be called before the first directive.
func (e *ScriptedEngine) SetSink(sink TranscriptSink) {
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()
}

// GenerateInitialReply records the greeting directive and schedules
// the persona's first utterance
func (e *ScriptedEngine) GenerateInitialReply(ctx context.Context, instruction string) error {
	return e.Reply(ctx, instruction)
}

// Reply records the directive and schedules the next scripted utterance
func (e *ScriptedEngine) Reply(ctx context.Context, instruction string) error {
	e.mu.Lock()
	e.replies = append(e.replies, instruction)
	if e.stopped || e.next >= len(e.script) {
		e.mu.Unlock()
		return nil
	}
	utterance := e.script[e.next]
	e.next++
	e.mu.Unlock()

	e.logger.Debug().Str("utterance", utterance).Msg("scheduling scripted utterance")

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(e.turnDelay):
		}

		// The sink is read at delivery time: session setup attaches it
		// after the greeting directive has already been issued
		e.mu.Lock()
		stopped := e.stopped
		sink := e.sink
		e.mu.Unlock()
		if stopped || sink == nil {
			return
		}
		sink.OnTranscript(utterance)
	}()

	return nil
}

// Stop prevents any further scripted utterances from being delivered
func (e *ScriptedEngine) Stop() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
}

// Replies returns the directives received so far
func (e *ScriptedEngine) Replies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]string, len(e.replies))
	copy(out, e.replies)
	return out
}
