package usecase

import (
	"errors"
	"testing"
	"time"

	"handsfree/internal/domain"
)

func TestNewSessionAppliesDefaults(t *testing.T) {
	t.Parallel()

	session, err := NewSession(Options{ConfirmationSound: true})
	if err != nil {
		t.Fatalf("session creation failed: %v", err)
	}

	if session.opts.PauseWord != "pause" || session.opts.ResumeWord != "resume" || session.opts.StopWord != "stop" {
		t.Fatalf("unexpected default words: %+v", session.opts)
	}
	if session.opts.CommandTimeout != 2*time.Second {
		t.Fatalf("unexpected default command timeout: %s", session.opts.CommandTimeout)
	}
	if session.opts.ListenTimeout != 30*time.Second {
		t.Fatalf("unexpected default listen timeout: %s", session.opts.ListenTimeout)
	}
	if session.opts.Language != "en" {
		t.Fatalf("unexpected default language: %q", session.opts.Language)
	}
	if session.State() != domain.SessionStateListening {
		t.Fatalf("new sessions must start listening, got %s", session.State())
	}
}

func TestNewSessionRejectsIdenticalPauseAndStopWords(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.PauseWord = "halt"
	opts.StopWord = "HALT"

	_, err := NewSession(opts)
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestNewSessionRejectsNegativeTimeout(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.CommandTimeout = -time.Second

	_, err := NewSession(opts)
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestNewSessionRejectsOutOfRangeTemperature(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Temperature = 1.5

	_, err := NewSession(opts)
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestOptionsFromMapResolvesValues(t *testing.T) {
	t.Parallel()

	opts, err := OptionsFromMap(map[string]any{
		"enabled":           true,
		"pauseWord":         "hold",
		"resumeWord":        "continue",
		"stopWord":          "finish",
		"commandTimeout":    1.5,
		"confirmationSound": false,
		"language":          "de",
		"temperature":       0.0,
	})
	if err != nil {
		t.Fatalf("options from map failed: %v", err)
	}

	if !opts.Enabled || opts.PauseWord != "hold" || opts.ResumeWord != "continue" || opts.StopWord != "finish" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.CommandTimeout != 1500*time.Millisecond {
		t.Fatalf("unexpected command timeout: %s", opts.CommandTimeout)
	}
	if opts.ConfirmationSound {
		t.Fatalf("expected confirmation sound disabled")
	}
	if opts.Language != "de" || opts.Temperature != 0 {
		t.Fatalf("unexpected language/temperature: %+v", opts)
	}
	// Unset keys keep their defaults.
	if opts.ListenTimeout != 30*time.Second {
		t.Fatalf("unexpected listen timeout: %s", opts.ListenTimeout)
	}
}

func TestOptionsFromMapCoercesStringValues(t *testing.T) {
	t.Parallel()

	opts, err := OptionsFromMap(map[string]any{
		"enabled":        "true",
		"commandTimeout": "2.5",
	})
	if err != nil {
		t.Fatalf("options from map failed: %v", err)
	}
	if !opts.Enabled {
		t.Fatalf("expected enabled")
	}
	if opts.CommandTimeout != 2500*time.Millisecond {
		t.Fatalf("unexpected command timeout: %s", opts.CommandTimeout)
	}
}

func TestOptionsFromMapRejectsUnknownKey(t *testing.T) {
	t.Parallel()

	_, err := OptionsFromMap(map[string]any{"wakeWord": "hey"})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestOptionsFromMapRejectsWrongType(t *testing.T) {
	t.Parallel()

	_, err := OptionsFromMap(map[string]any{"pauseWord": 7})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}
