// Package deepgram implements ports.Transcriber over the Deepgram
// streaming websocket.
package deepgram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"handsfree/internal/ports"
)

// drainGrace bounds how long a pass may run past its mode deadline while
// the server flushes buffered results.
const drainGrace = 4 * time.Second

// Config controls the Deepgram connection and the microphone it listens to.
type Config struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	SmartFormat bool

	Audio     ports.AudioConfig
	ChunkSize int
}

// Transcriber runs one listening pass per Transcribe call, shaped by the
// listen mode: a long streaming pass collects every finalized utterance
// until the capture deadline; a burst pass returns at the first finished
// utterance.
type Transcriber struct {
	cfg     Config
	capture ports.AudioCapture
	log     *zap.Logger
}

func NewTranscriber(cfg Config, capture ports.AudioCapture, log *zap.Logger) *Transcriber {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Transcriber{cfg: cfg, capture: capture, log: log}
}

func (t *Transcriber) Transcribe(ctx context.Context, mode ports.ListenMode) (string, error) {
	if strings.TrimSpace(t.cfg.APIKey) == "" {
		return "", errors.New("DEEPGRAM_API_KEY is not configured")
	}

	wsURL, err := listenURL(t.cfg, mode)
	if err != nil {
		return "", err
	}

	passCtx := ctx
	if mode.MaxDuration > 0 {
		var cancel context.CancelFunc
		passCtx, cancel = context.WithTimeout(ctx, mode.MaxDuration+drainGrace)
		defer cancel()
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+t.cfg.APIKey)
	conn, _, err := websocket.DefaultDialer.DialContext(passCtx, wsURL, headers)
	if err != nil {
		return "", fmt.Errorf("failed to connect to Deepgram websocket: %w", err)
	}

	stream := newStream(conn)
	go func() {
		<-passCtx.Done()
		_ = stream.Close()
	}()

	audioCfg := t.cfg.Audio
	audioCfg.MaxDuration = mode.MaxDuration
	capture, err := t.capture.Start(passCtx, audioCfg)
	if err != nil {
		_ = stream.Close()
		return "", fmt.Errorf("failed to start audio capture: %w", err)
	}
	defer func() {
		_ = capture.Stop()
	}()

	go t.pump(capture, stream)

	t.log.Debug("listening pass started",
		zap.Bool("streaming", mode.Streaming),
		zap.Duration("maxDuration", mode.MaxDuration),
	)

	var finals []string
	for event := range stream.Events() {
		text := strings.TrimSpace(event.Text)
		if text == "" {
			continue
		}
		if event.Final {
			finals = append(finals, text)
		}
		if !mode.Streaming && event.SpeechFinal {
			// Burst pass: the first finished utterance is the answer.
			break
		}
	}

	_ = capture.Stop()
	_ = stream.Close()

	if len(finals) == 0 {
		if err := stream.Err(); err != nil && passCtx.Err() == nil {
			return "", err
		}
		return "", nil
	}
	return strings.Join(finals, " "), nil
}

// pump copies captured audio into the stream until the capture ends, then
// closes the send side so the server flushes remaining results.
func (t *Transcriber) pump(capture ports.AudioSession, stream *listenStream) {
	defer func() {
		_ = stream.CloseSend()
	}()

	buf := make([]byte, t.cfg.ChunkSize)
	for {
		n, err := capture.Read(buf)
		if n > 0 {
			if sendErr := stream.SendAudio(buf[:n]); sendErr != nil {
				t.log.Debug("audio send ended", zap.Error(sendErr))
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.log.Debug("audio capture ended", zap.Error(err))
			}
			return
		}
	}
}

func listenURL(cfg Config, mode ports.ListenMode) (string, error) {
	base := strings.TrimSpace(cfg.APIBaseURL)
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	endpoint, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram API base URL: %w", err)
	}

	sampleRate := cfg.Audio.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	channels := cfg.Audio.Channels
	if channels <= 0 {
		channels = 1
	}

	query := endpoint.Query()
	query.Set("model", cfg.Model)
	query.Set("encoding", "linear16")
	query.Set("sample_rate", fmt.Sprintf("%d", sampleRate))
	query.Set("channels", fmt.Sprintf("%d", channels))
	query.Set("interim_results", fmt.Sprintf("%t", mode.Streaming))
	query.Set("smart_format", fmt.Sprintf("%t", cfg.SmartFormat))
	query.Set("temperature", fmt.Sprintf("%g", mode.Temperature))
	if mode.Language != "" {
		query.Set("language", mode.Language)
	}
	if mode.Sensitivity == ports.VADAggressive {
		// Tight endpointing ends command utterances quickly.
		query.Set("endpointing", "200")
	}
	endpoint.RawQuery = query.Encode()
	return endpoint.String(), nil
}
