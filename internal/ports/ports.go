package ports

import (
	"context"
	"io"
	"time"

	"handsfree/internal/domain"
)

// VADSensitivity selects how eagerly the engine ends an utterance.
type VADSensitivity string

const (
	VADNormal     VADSensitivity = "normal"
	VADAggressive VADSensitivity = "aggressive"
)

// ListenMode describes one STT invocation. Values are produced fresh for
// every request and never mutated in place.
type ListenMode struct {
	MaxDuration time.Duration
	Sensitivity VADSensitivity
	Streaming   bool
	Language    string
	Temperature float64
}

// Transcriber runs one listening pass and resolves to its transcript.
// Implementations may stream internally but must return before the driver
// selects the next mode.
type Transcriber interface {
	Transcribe(ctx context.Context, mode ListenMode) (string, error)
}

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
	// MaxDuration bounds the capture; zero means capture until stopped.
	MaxDuration time.Duration
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// RulesEngine transforms finalized transcripts using deterministic rules.
type RulesEngine interface {
	Apply(text string) (string, error)
}

// TranscriptSink receives the finalized transcript of a dictation.
type TranscriptSink interface {
	Deliver(ctx context.Context, transcript string) error
}

// EventSink surfaces loop progress to the embedding application.
type EventSink interface {
	SessionStateChanged(state domain.SessionState)
	UtteranceHeard(text string)
	FeedbackRequested(cue domain.FeedbackCue)
	TranscriptReady(raw string, transformed string)
}
