package usecase

import (
	"fmt"
	"strconv"
	"time"

	"handsfree/internal/command"
	"handsfree/internal/domain"
)

// Options are the recognized voice-command settings, resolved once at
// session creation and never mutated afterwards.
type Options struct {
	Enabled           bool
	PauseWord         string
	ResumeWord        string
	StopWord          string
	CommandTimeout    time.Duration
	ListenTimeout     time.Duration
	ConfirmationSound bool
	Language          string
	Temperature       float64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Enabled:           false,
		PauseWord:         "pause",
		ResumeWord:        "resume",
		StopWord:          "stop",
		CommandTimeout:    2 * time.Second,
		ListenTimeout:     30 * time.Second,
		ConfirmationSound: true,
		Language:          "en",
		Temperature:       0.2,
	}
}

// NewSession validates the options and builds a session in the listening
// state. Invalid command word sets fail here, never at match time.
func NewSession(opts Options) (*Session, error) {
	opts = withDefaults(opts)

	matcher, err := command.NewMatcher(opts.PauseWord, opts.ResumeWord, opts.StopWord)
	if err != nil {
		return nil, err
	}
	if opts.CommandTimeout <= 0 {
		return nil, fmt.Errorf("%w: command timeout must be positive, got %s", domain.ErrInvalidConfig, opts.CommandTimeout)
	}
	if opts.ListenTimeout <= 0 {
		return nil, fmt.Errorf("%w: listen timeout must be positive, got %s", domain.ErrInvalidConfig, opts.ListenTimeout)
	}
	if opts.Temperature < 0 || opts.Temperature > 1 {
		return nil, fmt.Errorf("%w: temperature must be within [0, 1], got %g", domain.ErrInvalidConfig, opts.Temperature)
	}

	return &Session{
		state:       domain.SessionStateListening,
		matcher:     matcher,
		accumulator: newTranscriptAccumulator(),
		opts:        opts,
	}, nil
}

func withDefaults(opts Options) Options {
	defaults := DefaultOptions()
	if opts.PauseWord == "" {
		opts.PauseWord = defaults.PauseWord
	}
	if opts.ResumeWord == "" {
		opts.ResumeWord = defaults.ResumeWord
	}
	if opts.StopWord == "" {
		opts.StopWord = defaults.StopWord
	}
	if opts.CommandTimeout == 0 {
		opts.CommandTimeout = defaults.CommandTimeout
	}
	if opts.ListenTimeout == 0 {
		opts.ListenTimeout = defaults.ListenTimeout
	}
	if opts.Language == "" {
		opts.Language = defaults.Language
	}
	return opts
}

// OptionsFromMap resolves options from a raw key/value mapping, for callers
// that carry settings outside the typed application config. Unknown keys are
// rejected rather than ignored.
func OptionsFromMap(raw map[string]any) (Options, error) {
	opts := DefaultOptions()
	for key, value := range raw {
		var err error
		switch key {
		case "enabled":
			opts.Enabled, err = asBool(value)
		case "pauseWord":
			opts.PauseWord, err = asString(value)
		case "resumeWord":
			opts.ResumeWord, err = asString(value)
		case "stopWord":
			opts.StopWord, err = asString(value)
		case "commandTimeout":
			opts.CommandTimeout, err = asSeconds(value)
		case "listenTimeout":
			opts.ListenTimeout, err = asSeconds(value)
		case "confirmationSound":
			opts.ConfirmationSound, err = asBool(value)
		case "language":
			opts.Language, err = asString(value)
		case "temperature":
			opts.Temperature, err = asFloat(value)
		default:
			return Options{}, fmt.Errorf("%w: unrecognized option %q", domain.ErrInvalidConfig, key)
		}
		if err != nil {
			return Options{}, fmt.Errorf("%w: option %q: %v", domain.ErrInvalidConfig, key, err)
		}
	}
	return opts, nil
}

func asString(value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", value)
	}
	return s, nil
}

func asBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("expected bool, got %q", v)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("expected bool, got %T", value)
	}
}

func asFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", v)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}

func asSeconds(value any) (time.Duration, error) {
	seconds, err := asFloat(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
