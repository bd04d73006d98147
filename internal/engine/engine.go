package engine

import "context"

// Engine is the conversation engine boundary. The core hands it short
// natural-language directives; speech recognition, synthesis, and
// reply generation happen on the other side. Recognized customer
// utterances come back through the session's transcript callback.
type Engine interface {
	// GenerateInitialReply requests the opening greeting, once at
	// session start
	GenerateInitialReply(ctx context.Context, instruction string) error

	// Reply requests a spoken response generated from the directive
	Reply(ctx context.Context, instruction string) error
}

// TranscriptSink receives recognized customer utterances from an engine
type TranscriptSink interface {
	OnTranscript(text string)
}
