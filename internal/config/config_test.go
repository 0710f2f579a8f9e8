package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	keys := []string{
		"HANDSFREE_PAUSE_WORD", "HANDSFREE_RESUME_WORD", "HANDSFREE_STOP_WORD",
		"HANDSFREE_LANGUAGE", "HANDSFREE_COMMAND_TIMEOUT_MS", "HANDSFREE_LISTEN_TIMEOUT_S",
		"HANDSFREE_VOICE_ENABLED", "HANDSFREE_CONFIRMATION_SOUND",
		"DEEPGRAM_API_KEY", "DEEPGRAM_API_BASE", "DEEPGRAM_MODEL", "DEEPGRAM_SMART_FORMAT",
		"HANDSFREE_FFMPEG_COMMAND", "HANDSFREE_AUDIO_INPUT_FORMAT", "HANDSFREE_AUDIO_INPUT_DEVICE",
		"HANDSFREE_SAMPLE_RATE", "HANDSFREE_CHANNELS", "HANDSFREE_RULES_FILE", "HANDSFREE_HISTORY_DB",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnvOverrides(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Voice.Enabled {
		t.Fatalf("voice commands must default to disabled")
	}
	if cfg.Voice.PauseWord != "pause" || cfg.Voice.ResumeWord != "resume" || cfg.Voice.StopWord != "stop" {
		t.Fatalf("unexpected default words: %+v", cfg.Voice)
	}
	if cfg.Voice.CommandTimeout() != 2*time.Second {
		t.Fatalf("unexpected command timeout: %s", cfg.Voice.CommandTimeout())
	}
	if cfg.Voice.ListenTimeout() != 30*time.Second {
		t.Fatalf("unexpected listen timeout: %s", cfg.Voice.ListenTimeout())
	}
	if !cfg.Voice.ConfirmationSound {
		t.Fatalf("confirmation sound must default to enabled")
	}
	if cfg.Voice.Language != "en" || cfg.Voice.Temperature != 0.2 {
		t.Fatalf("unexpected language/temperature: %+v", cfg.Voice)
	}
	if cfg.Deepgram.Model != "nova-2" || !cfg.Deepgram.SmartFormat {
		t.Fatalf("unexpected deepgram defaults: %+v", cfg.Deepgram)
	}
	if cfg.History.Path == "" {
		t.Fatalf("expected defaulted history path")
	}
}

func TestLoadReadsTOMLFile(t *testing.T) {
	clearEnvOverrides(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
[voice]
enabled = true
pause_word = "hold"
command_timeout_ms = 1500
confirmation_sound = false

[deepgram]
api_key = "file-key"
model = "nova-3"

[rules]
inline = ["comma => ,"]
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if !cfg.Voice.Enabled || cfg.Voice.PauseWord != "hold" {
		t.Fatalf("unexpected voice config: %+v", cfg.Voice)
	}
	if cfg.Voice.CommandTimeout() != 1500*time.Millisecond {
		t.Fatalf("unexpected command timeout: %s", cfg.Voice.CommandTimeout())
	}
	if cfg.Voice.ConfirmationSound {
		t.Fatalf("expected confirmation sound disabled")
	}
	// Unset keys keep defaults.
	if cfg.Voice.ResumeWord != "resume" || cfg.Voice.ListenTimeoutS != 30 {
		t.Fatalf("file must not clobber unset defaults: %+v", cfg.Voice)
	}
	if cfg.Deepgram.APIKey != "file-key" || cfg.Deepgram.Model != "nova-3" {
		t.Fatalf("unexpected deepgram config: %+v", cfg.Deepgram)
	}
	if len(cfg.Rules.Inline) != 1 || cfg.Rules.Inline[0] != "comma => ," {
		t.Fatalf("unexpected inline rules: %+v", cfg.Rules)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	clearEnvOverrides(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[voice]\npause_word = \"hold\"\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv("HANDSFREE_PAUSE_WORD", "freeze")
	t.Setenv("HANDSFREE_COMMAND_TIMEOUT_MS", "900")
	t.Setenv("HANDSFREE_VOICE_ENABLED", "yes")
	t.Setenv("DEEPGRAM_API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Voice.PauseWord != "freeze" {
		t.Fatalf("expected env override, got %q", cfg.Voice.PauseWord)
	}
	if cfg.Voice.CommandTimeoutMs != 900 || !cfg.Voice.Enabled {
		t.Fatalf("unexpected voice config: %+v", cfg.Voice)
	}
	if cfg.Deepgram.APIKey != "env-key" {
		t.Fatalf("unexpected api key: %q", cfg.Deepgram.APIKey)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	clearEnvOverrides(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatalf("expected error for explicitly named missing file")
	}
}

func TestLoadNormalizesInvalidNumericValues(t *testing.T) {
	clearEnvOverrides(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
[audio]
sample_rate = -1
channels = 0
chunk_size = 5

[rules]
iteration_limit = 0
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 || cfg.Audio.ChunkSize != 4096 {
		t.Fatalf("unexpected audio normalization: %+v", cfg.Audio)
	}
	if cfg.Rules.IterationLimit != 30 {
		t.Fatalf("unexpected iteration limit: %d", cfg.Rules.IterationLimit)
	}
}

func TestValidateRejectsBadVoiceSettings(t *testing.T) {
	clearEnvOverrides(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[voice]\ntemperature = 3.0\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for out-of-range temperature")
	}
}
