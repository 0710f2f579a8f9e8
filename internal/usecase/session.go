package usecase

import (
	"fmt"

	"handsfree/internal/command"
	"handsfree/internal/domain"
)

// Session tracks one voice-controlled dictation interaction. All state
// mutation is routed through Process; the session is synchronous and must
// not be shared between concurrent callers. Once stopped it is a dead value.
type Session struct {
	state       domain.SessionState
	matcher     command.Matcher
	accumulator *transcriptAccumulator
	opts        Options
}

// State returns the current session state.
func (s *Session) State() domain.SessionState {
	return s.state
}

// Process feeds one transcription result into the state machine and returns
// the resulting outcome. Calling Process on a stopped session fails with
// domain.ErrSessionStopped and leaves the transcript untouched.
func (s *Session) Process(text string) (domain.Outcome, error) {
	switch s.state {
	case domain.SessionStateListening:
		return s.processListening(text)
	case domain.SessionStatePaused:
		return s.processPaused(text)
	case domain.SessionStateStopped:
		return domain.Outcome{}, fmt.Errorf("%w: no further results may be processed", domain.ErrSessionStopped)
	default:
		return domain.Outcome{}, fmt.Errorf("%w: unknown state %q", domain.ErrInvalidTransition, s.state)
	}
}

func (s *Session) processListening(text string) (domain.Outcome, error) {
	matched, residual := s.matcher.MatchPauseWord(text)
	if !matched {
		return domain.Outcome{Kind: domain.OutcomeContinue, Text: text}, nil
	}

	if err := s.transition(domain.SessionStatePaused); err != nil {
		return domain.Outcome{}, err
	}
	s.accumulator.Add(residual)
	return domain.Outcome{Kind: domain.OutcomePaused}, nil
}

func (s *Session) processPaused(text string) (domain.Outcome, error) {
	cmd, residual := s.matcher.MatchLeadingCommand(text)
	switch cmd {
	case domain.CommandResume:
		if err := s.transition(domain.SessionStateListening); err != nil {
			return domain.Outcome{}, err
		}
		return domain.Outcome{Kind: domain.OutcomeResumed, Text: residual}, nil
	case domain.CommandStop:
		if err := s.transition(domain.SessionStateStopped); err != nil {
			return domain.Outcome{}, err
		}
		return domain.Outcome{Kind: domain.OutcomeStopped, Text: s.accumulator.Finalize()}, nil
	default:
		// Non-command speech while paused costs a short burst and is
		// discarded without touching state or transcript.
		return domain.Outcome{Kind: domain.OutcomeWaiting}, nil
	}
}

// legalTransitions is the closed transition set. Anything else, including
// self-transitions and transitions out of stopped, is a caller error.
var legalTransitions = map[domain.SessionState][]domain.SessionState{
	domain.SessionStateListening: {domain.SessionStatePaused, domain.SessionStateStopped},
	domain.SessionStatePaused:    {domain.SessionStateListening, domain.SessionStateStopped},
}

func (s *Session) transition(to domain.SessionState) error {
	for _, allowed := range legalTransitions[s.state] {
		if allowed == to {
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, s.state, to)
}

// AddPart appends caller-accumulated dictation text, the policy hook for
// Continue and Resumed outcomes. Fails once the session is stopped so a
// finalized transcript can never grow.
func (s *Session) AddPart(text string) error {
	if s.state == domain.SessionStateStopped {
		return fmt.Errorf("%w: transcript is finalized", domain.ErrSessionStopped)
	}
	s.accumulator.Add(text)
	return nil
}

// Finalize returns the space-joined transcript accumulated so far. It stays
// callable in any state so an aborting driver can salvage partial content.
func (s *Session) Finalize() string {
	return s.accumulator.Finalize()
}

// WordCount reports the accumulated word count for status display.
func (s *Session) WordCount() int {
	return s.accumulator.WordCount()
}

// PartCount reports how many fragments have been accumulated.
func (s *Session) PartCount() int {
	return s.accumulator.Len()
}

// Feedback looks up the confirmation cue for an outcome. Continue and
// Waiting outcomes have no cue.
func (s *Session) Feedback(kind domain.OutcomeKind) (domain.FeedbackCue, bool) {
	sounds := map[domain.OutcomeKind]string{
		domain.OutcomePaused:  "dictation-paused",
		domain.OutcomeResumed: "dictation-resumed",
		domain.OutcomeStopped: "dictation-stopped",
	}
	sound, ok := sounds[kind]
	if !ok {
		return domain.FeedbackCue{}, false
	}
	return domain.FeedbackCue{Sound: sound, Enabled: s.opts.ConfirmationSound}, true
}
