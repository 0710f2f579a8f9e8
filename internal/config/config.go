// Package config resolves runtime configuration from a TOML file layered
// with environment overrides. Values are passed explicitly to the components
// that need them; nothing reads ambient state after Load returns.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full application configuration.
type Config struct {
	Voice    VoiceConfig    `toml:"voice"`
	Deepgram DeepgramConfig `toml:"deepgram"`
	Audio    AudioConfig    `toml:"audio"`
	Rules    RulesConfig    `toml:"rules"`
	History  HistoryConfig  `toml:"history"`
}

// VoiceConfig controls the voice-command session machinery.
type VoiceConfig struct {
	Enabled           bool    `toml:"enabled"`
	PauseWord         string  `toml:"pause_word"`
	ResumeWord        string  `toml:"resume_word"`
	StopWord          string  `toml:"stop_word"`
	CommandTimeoutMs  int     `toml:"command_timeout_ms"`
	ListenTimeoutS    int     `toml:"listen_timeout_s"`
	ConfirmationSound bool    `toml:"confirmation_sound"`
	Language          string  `toml:"language"`
	Temperature       float64 `toml:"temperature"`
}

// CommandTimeout returns the paused-state burst deadline.
func (v VoiceConfig) CommandTimeout() time.Duration {
	return time.Duration(v.CommandTimeoutMs) * time.Millisecond
}

// ListenTimeout returns the listening-state duration limit.
func (v VoiceConfig) ListenTimeout() time.Duration {
	return time.Duration(v.ListenTimeoutS) * time.Second
}

// DeepgramConfig holds the STT provider settings.
type DeepgramConfig struct {
	APIKey      string `toml:"api_key"`
	APIBaseURL  string `toml:"api_base_url"`
	Model       string `toml:"model"`
	SmartFormat bool   `toml:"smart_format"`
}

// AudioConfig describes microphone capture.
type AudioConfig struct {
	RecorderCommand string `toml:"recorder_command"`
	InputFormat     string `toml:"input_format"`
	InputDevice     string `toml:"input_device"`
	SampleRate      int    `toml:"sample_rate"`
	Channels        int    `toml:"channels"`
	ChunkSize       int    `toml:"chunk_size"`
}

// RulesConfig locates transcript substitution rules.
type RulesConfig struct {
	Path           string   `toml:"path"`
	Inline         []string `toml:"inline"`
	IterationLimit int      `toml:"iteration_limit"`
}

// HistoryConfig controls dictation history persistence.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Default returns the documented defaults. File and environment values are
// layered on top of this.
func Default() Config {
	return Config{
		Voice: VoiceConfig{
			Enabled:           false,
			PauseWord:         "pause",
			ResumeWord:        "resume",
			StopWord:          "stop",
			CommandTimeoutMs:  2000,
			ListenTimeoutS:    30,
			ConfirmationSound: true,
			Language:          "en",
			Temperature:       0.2,
		},
		Deepgram: DeepgramConfig{
			APIBaseURL:  "https://api.deepgram.com/v1",
			Model:       "nova-2",
			SmartFormat: true,
		},
		Audio: AudioConfig{
			RecorderCommand: "ffmpeg",
			InputFormat:     "pulse",
			InputDevice:     "default",
			SampleRate:      16000,
			Channels:        1,
			ChunkSize:       4096,
		},
		Rules: RulesConfig{
			IterationLimit: 30,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// DefaultConfigPath returns ~/.config/handsfree/config.toml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "handsfree", "config.toml")
}

// DefaultHistoryPath returns ~/.local/share/handsfree/history.db.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "handsfree", "history.db")
}

// Load resolves configuration: defaults, then the TOML file (the given path
// or the default location), then environment overrides. A missing file at
// the default location is fine; an explicitly named missing file is not.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("failed to load config %q: %w", path, err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Voice.PauseWord, "HANDSFREE_PAUSE_WORD")
	overrideString(&cfg.Voice.ResumeWord, "HANDSFREE_RESUME_WORD")
	overrideString(&cfg.Voice.StopWord, "HANDSFREE_STOP_WORD")
	overrideString(&cfg.Voice.Language, "HANDSFREE_LANGUAGE")
	overrideInt(&cfg.Voice.CommandTimeoutMs, "HANDSFREE_COMMAND_TIMEOUT_MS")
	overrideInt(&cfg.Voice.ListenTimeoutS, "HANDSFREE_LISTEN_TIMEOUT_S")
	overrideBool(&cfg.Voice.Enabled, "HANDSFREE_VOICE_ENABLED")
	overrideBool(&cfg.Voice.ConfirmationSound, "HANDSFREE_CONFIRMATION_SOUND")

	overrideString(&cfg.Deepgram.APIKey, "DEEPGRAM_API_KEY")
	overrideString(&cfg.Deepgram.APIBaseURL, "DEEPGRAM_API_BASE")
	overrideString(&cfg.Deepgram.Model, "DEEPGRAM_MODEL")
	overrideBool(&cfg.Deepgram.SmartFormat, "DEEPGRAM_SMART_FORMAT")

	overrideString(&cfg.Audio.RecorderCommand, "HANDSFREE_FFMPEG_COMMAND")
	overrideString(&cfg.Audio.InputFormat, "HANDSFREE_AUDIO_INPUT_FORMAT")
	overrideString(&cfg.Audio.InputDevice, "HANDSFREE_AUDIO_INPUT_DEVICE")
	overrideInt(&cfg.Audio.SampleRate, "HANDSFREE_SAMPLE_RATE")
	overrideInt(&cfg.Audio.Channels, "HANDSFREE_CHANNELS")

	overrideString(&cfg.Rules.Path, "HANDSFREE_RULES_FILE")
	overrideString(&cfg.History.Path, "HANDSFREE_HISTORY_DB")
}

func normalize(cfg *Config) {
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.ChunkSize < 256 {
		cfg.Audio.ChunkSize = 4096
	}
	if cfg.Rules.IterationLimit <= 0 {
		cfg.Rules.IterationLimit = 30
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath()
	}
}

// Validate rejects settings that can never work. Command word validation
// happens in the session factory, where the word-set invariants live.
func (c Config) Validate() error {
	if c.Voice.CommandTimeoutMs <= 0 {
		return fmt.Errorf("voice.command_timeout_ms must be positive, got %d", c.Voice.CommandTimeoutMs)
	}
	if c.Voice.ListenTimeoutS <= 0 {
		return fmt.Errorf("voice.listen_timeout_s must be positive, got %d", c.Voice.ListenTimeoutS)
	}
	if c.Voice.Temperature < 0 || c.Voice.Temperature > 1 {
		return fmt.Errorf("voice.temperature must be within [0, 1], got %g", c.Voice.Temperature)
	}
	if c.Deepgram.APIBaseURL == "" {
		return fmt.Errorf("deepgram.api_base_url must not be empty")
	}
	return nil
}

func overrideString(target *string, key string) {
	value := strings.TrimSpace(os.Getenv(key))
	if value != "" {
		*target = value
	}
}

func overrideInt(target *int, key string) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return
	}
	*target = parsed
}

func overrideBool(target *bool, key string) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		*target = true
	case "0", "false", "no", "off":
		*target = false
	}
}
