package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"handsfree/internal/config"
	"handsfree/internal/domain"
)

func TestBuildSuccess(t *testing.T) {
	cfg := config.Default()
	cfg.Voice.Enabled = true
	cfg.Deepgram.APIKey = "test-key"
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")

	services, err := Build(cfg, noopSink{}, noopEventSink{}, nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if services.Session == nil {
		t.Fatalf("expected session")
	}
	if services.Loop == nil {
		t.Fatalf("expected loop")
	}
	if services.Session.State() != domain.SessionStateListening {
		t.Fatalf("expected new session to listen, got %s", services.Session.State())
	}
}

func TestBuildFailsOnInvalidCommandWords(t *testing.T) {
	cfg := config.Default()
	cfg.Voice.PauseWord = "halt"
	cfg.Voice.StopWord = "halt"

	if _, err := Build(cfg, noopSink{}, noopEventSink{}, nil); err == nil {
		t.Fatalf("expected build error for duplicate command words")
	}
}

func TestBuildFailsOnInvalidRules(t *testing.T) {
	rulesFile := filepath.Join(t.TempDir(), "bad.rules")
	if err := os.WriteFile(rulesFile, []byte("not a valid rule\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg := config.Default()
	cfg.Rules.Path = rulesFile

	if _, err := Build(cfg, noopSink{}, noopEventSink{}, nil); err == nil {
		t.Fatalf("expected build error due to invalid rules")
	}
}

type noopSink struct{}

func (noopSink) Deliver(_ context.Context, _ string) error { return nil }

type noopEventSink struct{}

func (noopEventSink) SessionStateChanged(_ domain.SessionState) {}
func (noopEventSink) UtteranceHeard(_ string)                   {}
func (noopEventSink) FeedbackRequested(_ domain.FeedbackCue)    {}
func (noopEventSink) TranscriptReady(_ string, _ string)        {}
