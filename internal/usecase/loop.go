package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"handsfree/internal/domain"
	"handsfree/internal/ports"
)

// Loop drives one dictation interaction: select the next listen mode, run
// the transcriber, feed the result into the session and act on the outcome.
// The loop is strictly request/response; it never overlaps STT calls.
type Loop struct {
	session     *Session
	transcriber ports.Transcriber
	rules       ports.RulesEngine
	sink        ports.TranscriptSink
	events      ports.EventSink
	log         *zap.Logger
}

func NewLoop(
	session *Session,
	transcriber ports.Transcriber,
	rules ports.RulesEngine,
	sink ports.TranscriptSink,
	events ports.EventSink,
	log *zap.Logger,
) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		session:     session,
		transcriber: transcriber,
		rules:       rules,
		sink:        sink,
		events:      events,
		log:         log,
	}
}

// Run blocks until the session stops or the context is cancelled. On a stop
// it returns the post-processed transcript; on cancellation it returns
// whatever was accumulated so far alongside the context error, so partial
// dictation survives a graceful abort.
//
// The loop accumulates every non-command listening utterance: the bundled
// transcriber only resolves finalized utterances, so Continue text is safe
// to store as-is.
func (l *Loop) Run(ctx context.Context) (string, error) {
	l.events.SessionStateChanged(l.session.State())

	for {
		if ctx.Err() != nil {
			return l.session.Finalize(), ctx.Err()
		}

		mode, err := l.session.Mode()
		if err != nil {
			return "", err
		}

		text, err := l.transcriber.Transcribe(ctx, mode)
		if err != nil {
			if ctx.Err() != nil {
				return l.session.Finalize(), ctx.Err()
			}
			return l.session.Finalize(), fmt.Errorf("transcription failed: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			// Silence. Short command bursts hit this constantly while the
			// user thinks; just listen again.
			continue
		}

		outcome, err := l.session.Process(text)
		if err != nil {
			return "", err
		}
		l.log.Debug("processed utterance",
			zap.String("state", string(l.session.State())),
			zap.String("outcome", string(outcome.Kind)),
		)

		switch outcome.Kind {
		case domain.OutcomeContinue:
			l.events.UtteranceHeard(outcome.Text)
			if err := l.session.AddPart(outcome.Text); err != nil {
				return "", err
			}
		case domain.OutcomePaused:
			l.announce(outcome.Kind)
		case domain.OutcomeResumed:
			l.announce(outcome.Kind)
			if outcome.Text != "" {
				l.events.UtteranceHeard(outcome.Text)
				if err := l.session.AddPart(outcome.Text); err != nil {
					return "", err
				}
			}
		case domain.OutcomeWaiting:
			l.log.Debug("discarded non-command speech while paused")
		case domain.OutcomeStopped:
			l.announce(outcome.Kind)
			return l.finish(ctx, outcome.Text)
		}
	}
}

func (l *Loop) announce(kind domain.OutcomeKind) {
	l.events.SessionStateChanged(l.session.State())
	if cue, ok := l.session.Feedback(kind); ok && cue.Enabled {
		l.events.FeedbackRequested(cue)
	}
}

func (l *Loop) finish(ctx context.Context, raw string) (string, error) {
	transformed, err := l.rules.Apply(raw)
	if err != nil {
		return raw, fmt.Errorf("transcript post-processing failed: %w", err)
	}

	l.events.TranscriptReady(raw, transformed)
	if err := l.sink.Deliver(ctx, transformed); err != nil {
		return transformed, fmt.Errorf("transcript handoff failed: %w", err)
	}
	return transformed, nil
}
