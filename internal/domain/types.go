package domain

import "errors"

// SessionState models the voice-command dictation lifecycle.
type SessionState string

const (
	SessionStateListening SessionState = "listening"
	SessionStatePaused    SessionState = "paused"
	SessionStateStopped   SessionState = "stopped"
)

// Command identifies a spoken control word detected while paused.
type Command string

const (
	CommandNone   Command = "none"
	CommandResume Command = "resume"
	CommandStop   Command = "stop"
)

// OutcomeKind tags the result of processing one transcription result.
type OutcomeKind string

const (
	// OutcomeContinue carries ongoing dictation text; whether it is
	// accumulated is the driver's policy, not the session's.
	OutcomeContinue OutcomeKind = "continue"
	// OutcomePaused means a trailing pause word was detected.
	OutcomePaused OutcomeKind = "paused"
	// OutcomeResumed carries residual text spoken after the resume word,
	// possibly empty.
	OutcomeResumed OutcomeKind = "resumed"
	// OutcomeStopped carries the finalized transcript.
	OutcomeStopped OutcomeKind = "stopped"
	// OutcomeWaiting means non-command speech was heard while paused and
	// discarded.
	OutcomeWaiting OutcomeKind = "waiting"
)

// Outcome is the tagged result of Session.Process.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`
	Text string      `json:"text,omitempty"`
}

// FeedbackCue tells the driver which confirmation sound to play.
// The session never plays audio itself.
type FeedbackCue struct {
	Sound   string `json:"sound"`
	Enabled bool   `json:"enabled"`
}

// DictationRecord is a finished dictation as persisted to history.
type DictationRecord struct {
	ID         int64  `json:"id"`
	StartedAt  string `json:"startedAt"`
	DurationMs int64  `json:"durationMs"`
	WordCount  int    `json:"wordCount"`
	Transcript string `json:"transcript"`
}

var (
	// ErrSessionStopped is returned when Process, Mode or AddPart is called
	// on a stopped session.
	ErrSessionStopped = errors.New("session is stopped")
	// ErrInvalidTransition is returned for a state change outside the legal
	// transition set. Session state is left unchanged.
	ErrInvalidTransition = errors.New("invalid session state transition")
	// ErrInvalidConfig is returned when voice command options fail validation.
	ErrInvalidConfig = errors.New("invalid voice command configuration")
)
