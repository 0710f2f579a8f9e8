// Package main provides the CLI entrypoint for handsfree.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"handsfree/internal/bootstrap"
	"handsfree/internal/config"
	"handsfree/internal/domain"
	"handsfree/internal/store"
)

var (
	configPath string
	verbose    bool

	historyLimit int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "handsfree",
		Short: "Voice-command dictation for the terminal",
		Long: `handsfree dictates into your terminal, controlled entirely by voice:
say the pause word to stop transcribing, the resume word to pick dictation
back up, and the stop word (while paused) to finish and print the transcript.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDictation,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/handsfree/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		RunE:  runShowConfig,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent dictations",
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum number of dictations to show")

	rootCmd.AddCommand(configCmd, historyCmd)
	return rootCmd
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func runDictation(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !cfg.Voice.Enabled {
		return errors.New("voice commands are disabled; set voice.enabled = true or HANDSFREE_VOICE_ENABLED=1")
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	services, err := bootstrap.Build(cfg, stdoutSink{}, &terminalEvents{log: log}, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startedAt := time.Now()
	transcript, runErr := services.Loop.Run(ctx)
	duration := time.Since(startedAt)

	if runErr != nil {
		// The loop surfaces whatever was accumulated before it failed or
		// was interrupted; that raw text still counts.
		if errors.Is(runErr, context.Canceled) {
			log.Info("dictation interrupted, keeping partial transcript")
		} else {
			log.Warn("dictation ended early, keeping partial transcript", zap.Error(runErr))
		}
		if transcript != "" {
			fmt.Println(transcript)
		}
	}

	if cfg.History.Enabled && transcript != "" {
		if err := saveDictation(cfg.History.Path, startedAt, duration, services.Session.WordCount(), transcript); err != nil {
			log.Warn("failed to save dictation history", zap.Error(err))
		}
	}
	return runError(runErr)
}

// runError maps the loop result to the command's exit error: cancellation is
// a graceful abort, anything else propagates after the partial transcript
// has been printed and persisted.
func runError(runErr error) error {
	if runErr == nil || errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func saveDictation(path string, startedAt time.Time, duration time.Duration, wordCount int, transcript string) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = s.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = s.InsertDictation(ctx, startedAt, duration, wordCount, transcript)
	return err
}

func runShowConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return toml.NewEncoder(os.Stdout).Encode(cfg)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = s.Close()
	}()

	records, err := s.RecentDictations(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no dictations recorded yet")
		return nil
	}

	for _, rec := range records {
		started := rec.StartedAt
		if parsed, err := time.Parse(time.RFC3339Nano, rec.StartedAt); err == nil {
			started = parsed.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("#%d  %s  %s  %d words\n  %s\n", rec.ID, started, (time.Duration(rec.DurationMs) * time.Millisecond).Round(time.Second), rec.WordCount, rec.Transcript)
	}
	return nil
}

// stdoutSink prints the finished transcript, which lets the command compose
// with pipes: handsfree | wl-copy.
type stdoutSink struct{}

func (stdoutSink) Deliver(_ context.Context, transcript string) error {
	_, err := fmt.Println(transcript)
	return err
}

// terminalEvents narrates session progress on stderr and rings the terminal
// bell for confirmation cues.
type terminalEvents struct {
	log *zap.Logger
}

func (t *terminalEvents) SessionStateChanged(state domain.SessionState) {
	switch state {
	case domain.SessionStateListening:
		fmt.Fprintln(os.Stderr, "listening...")
	case domain.SessionStatePaused:
		fmt.Fprintln(os.Stderr, "paused (say the resume or stop word)")
	case domain.SessionStateStopped:
		fmt.Fprintln(os.Stderr, "stopped")
	}
	t.log.Debug("session state changed", zap.String("state", string(state)))
}

func (t *terminalEvents) UtteranceHeard(text string) {
	t.log.Debug("utterance", zap.String("text", text))
}

func (t *terminalEvents) FeedbackRequested(cue domain.FeedbackCue) {
	if !cue.Enabled {
		return
	}
	fmt.Fprint(os.Stderr, "\a")
	t.log.Debug("feedback cue", zap.String("sound", cue.Sound))
}

func (t *terminalEvents) TranscriptReady(raw, transformed string) {
	t.log.Debug("transcript ready",
		zap.Int("rawLen", len(raw)),
		zap.Int("transformedLen", len(transformed)),
	)
}
