// Package bootstrap assembles the runtime dependency graph.
package bootstrap

import (
	"go.uber.org/zap"

	"handsfree/internal/audio"
	"handsfree/internal/config"
	"handsfree/internal/ports"
	"handsfree/internal/providers/deepgram"
	"handsfree/internal/rules"
	"handsfree/internal/usecase"
)

// Services is the assembled runtime graph for one dictation run.
type Services struct {
	Session *usecase.Session
	Loop    *usecase.Loop
	Rules   *rules.Engine
	Config  config.Config
}

// Build wires a dictation loop from resolved configuration. The transcript
// sink and event sink come from the caller; everything else is constructed
// here.
func Build(cfg config.Config, sink ports.TranscriptSink, events ports.EventSink, log *zap.Logger) (Services, error) {
	if log == nil {
		log = zap.NewNop()
	}

	session, err := usecase.NewSession(usecase.Options{
		Enabled:           cfg.Voice.Enabled,
		PauseWord:         cfg.Voice.PauseWord,
		ResumeWord:        cfg.Voice.ResumeWord,
		StopWord:          cfg.Voice.StopWord,
		CommandTimeout:    cfg.Voice.CommandTimeout(),
		ListenTimeout:     cfg.Voice.ListenTimeout(),
		ConfirmationSound: cfg.Voice.ConfirmationSound,
		Language:          cfg.Voice.Language,
		Temperature:       cfg.Voice.Temperature,
	})
	if err != nil {
		return Services{}, err
	}

	rulesEngine, err := rules.NewEngine(cfg.Rules.Path, cfg.Rules.Inline, cfg.Rules.IterationLimit)
	if err != nil {
		return Services{}, err
	}

	transcriber := deepgram.NewTranscriber(deepgram.Config{
		APIKey:      cfg.Deepgram.APIKey,
		APIBaseURL:  cfg.Deepgram.APIBaseURL,
		Model:       cfg.Deepgram.Model,
		SmartFormat: cfg.Deepgram.SmartFormat,
		Audio: ports.AudioConfig{
			SampleRate:  cfg.Audio.SampleRate,
			Channels:    cfg.Audio.Channels,
			InputFormat: cfg.Audio.InputFormat,
			InputDevice: cfg.Audio.InputDevice,
		},
		ChunkSize: cfg.Audio.ChunkSize,
	}, audio.NewFFmpegCapture(cfg.Audio.RecorderCommand), log)

	loop := usecase.NewLoop(session, transcriber, rulesEngine, sink, events, log)

	return Services{
		Session: session,
		Loop:    loop,
		Rules:   rulesEngine,
		Config:  cfg,
	}, nil
}
