// Package main provides the CLI entrypoint for numlisten.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/numlisten/internal/config"
	"github.com/verte-zerg/numlisten/internal/generator"
	"github.com/verte-zerg/numlisten/internal/lang"
	applog "github.com/verte-zerg/numlisten/internal/log"
	"github.com/verte-zerg/numlisten/internal/model"
	"github.com/verte-zerg/numlisten/internal/round"
	"github.com/verte-zerg/numlisten/internal/score"
	"github.com/verte-zerg/numlisten/internal/speech"
	"github.com/verte-zerg/numlisten/internal/stats"
	"github.com/verte-zerg/numlisten/internal/store"
	"github.com/verte-zerg/numlisten/internal/tui"
)

const (
	defaultRoundMs       = 10000
	defaultTickMs        = 50
	defaultAdvanceMs     = 500
	defaultMissAdvanceMs = 1500
	defaultLogLevel      = "info"
)

var (
	playLang          string
	playRoundMs       int
	playTickMs        int
	playAdvanceMs     int
	playMissPolicy    string
	playMissAdvanceMs int
	playSpeech        string
	playSpeechCommand string
	playLogLevel      string

	statsLang string
	statsLast int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "numlisten",
		Short:         "Listen to a spoken number and type it before time runs out",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playLang, "lang", string(lang.Default), "language code ("+strings.Join(lang.Codes(), ", ")+")")
	rootCmd.Flags().IntVar(&playRoundMs, "round-ms", defaultRoundMs, "answer time per round in milliseconds")
	rootCmd.Flags().IntVar(&playTickMs, "tick-ms", defaultTickMs, "countdown sampling interval in milliseconds")
	rootCmd.Flags().IntVar(&playAdvanceMs, "advance-ms", defaultAdvanceMs, "delay before the next round after a correct answer")
	rootCmd.Flags().StringVar(&playMissPolicy, "miss-policy", string(model.MissHalt), "after a miss: halt or advance")
	rootCmd.Flags().IntVar(&playMissAdvanceMs, "miss-advance-ms", defaultMissAdvanceMs, "delay before the next round after a miss when miss-policy is advance")
	rootCmd.Flags().StringVar(&playSpeech, "speech", speech.EngineAuto, "speech engine (auto, none, "+strings.Join(speech.Engines(), ", ")+")")
	rootCmd.Flags().StringVar(&playSpeechCommand, "speech-cmd", "", "custom speech command with {text}, {lang} and {locale} placeholders")
	rootCmd.Flags().StringVar(&playLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lang", &playLang, fileCfg.Game.Lang)
	applyIntConfig(cmd, "round-ms", &playRoundMs, fileCfg.Game.RoundMs)
	applyIntConfig(cmd, "tick-ms", &playTickMs, fileCfg.Game.TickMs)
	applyIntConfig(cmd, "advance-ms", &playAdvanceMs, fileCfg.Game.AdvanceMs)
	applyStringConfig(cmd, "miss-policy", &playMissPolicy, fileCfg.Game.MissPolicy)
	applyIntConfig(cmd, "miss-advance-ms", &playMissAdvanceMs, fileCfg.Game.MissAdvanceMs)
	applyStringConfig(cmd, "speech", &playSpeech, fileCfg.Game.Speech)
	applyStringConfig(cmd, "speech-cmd", &playSpeechCommand, fileCfg.Game.SpeechCommand)
	applyStringConfig(cmd, "log-level", &playLogLevel, fileCfg.Game.LogLevel)

	cfg := model.Config{
		Lang:          playLang,
		Round:         time.Duration(playRoundMs) * time.Millisecond,
		Tick:          time.Duration(playTickMs) * time.Millisecond,
		Advance:       time.Duration(playAdvanceMs) * time.Millisecond,
		MissPolicy:    model.MissPolicy(strings.ToLower(strings.TrimSpace(playMissPolicy))),
		MissAdvance:   time.Duration(playMissAdvanceMs) * time.Millisecond,
		Speech:        playSpeech,
		SpeechCommand: playSpeechCommand,
		LogLevel:      playLogLevel,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, closeLog, err := applog.Open(config.DefaultLogPath(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	speaker, err := speech.New(cfg.Speech, cfg.SpeechCommand, logger)
	if err != nil {
		return err
	}
	defer speaker.Cancel()

	keeper := score.NewKeeper(st, st, logger)
	selected := resolveLanguage(cmd, cfg, st, keeper)
	sessionID := uuid.NewString()
	sessionLog := logger.With().Str("session", sessionID).Logger()
	sessionLog.Info().Str("lang", string(selected)).Str("miss_policy", string(cfg.MissPolicy)).Msg("session started")

	ctrl := round.New(round.Options{
		Timing: round.Timing{
			Round:       cfg.Round,
			Tick:        cfg.Tick,
			Advance:     cfg.Advance,
			MissPolicy:  cfg.MissPolicy,
			MissAdvance: cfg.MissAdvance,
		},
		Lang:      selected,
		SessionID: sessionID,
		Targets:   generator.New(),
		Speaker:   speaker,
		Scores:    keeper,
		Logger:    &sessionLog,
	})
	program := tea.NewProgram(tui.NewModel(ctrl, time.Now), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	ctrl.Reset(time.Now())
	sessionLog.Info().Msg("session ended")
	return nil
}

// resolveLanguage prefers an explicit --lang, then the saved selection, then
// the config file.
func resolveLanguage(cmd *cobra.Command, cfg model.Config, kv score.KV, keeper *score.Keeper) lang.Language {
	selected := lang.ParseOrDefault(cfg.Lang)
	if cmd.Flags().Changed("lang") {
		keeper.SaveLanguage(selected)
		return selected
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, ok, err := kv.Get(ctx, score.LanguageKey); err == nil && ok {
		return keeper.LoadLanguage()
	}
	return selected
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List supported languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	saved := lang.Default
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logErrf("failed to open db: %v\n", err)
	} else {
		saved = score.NewKeeper(st, nil, applog.New(os.Stderr, zerolog.WarnLevel)).LoadLanguage()
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	return writeLangs(cmd.OutOrStdout(), saved)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show high scores and round history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N rounds")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsLang != "" {
		if _, err := lang.Parse(statsLang); err != nil {
			return err
		}
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	cfg := model.StatsConfig{
		Lang:  statsLang,
		Last:  statsLast,
		Width: stats.TerminalWidth(os.Stdout),
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build stats: %w", err)
	}
	return stats.Render(cmd.OutOrStdout(), report, cfg.Width)
}
