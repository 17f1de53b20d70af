package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/numlisten/internal/lang"
	applog "github.com/verte-zerg/numlisten/internal/log"
	"github.com/verte-zerg/numlisten/internal/model"
	"github.com/verte-zerg/numlisten/internal/speech"
)

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# numlisten configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# lang = %q               # Language code used until one is picked in game
# round-ms = %d          # Answer time per round
# tick-ms = %d              # Countdown sampling interval
# advance-ms = %d          # Pause before the next round after a correct answer
# miss-policy = %q       # "halt" waits for Start after a miss, "advance" keeps going
# miss-advance-ms = %d    # Pause before the next round when miss-policy is "advance"
# speech = %q            # auto, none, espeak-ng, espeak, spd-say, say
# speech-cmd = "espeak-ng -v {lang} {text}"  # Custom command, overrides speech
# log-level = %q         # debug, info, warn, error
`,
		string(lang.Default),
		defaultRoundMs,
		defaultTickMs,
		defaultAdvanceMs,
		string(model.MissHalt),
		defaultMissAdvanceMs,
		speech.EngineAuto,
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if _, err := lang.Parse(cfg.Lang); err != nil {
		return err
	}
	if cfg.Round <= 0 {
		return fmt.Errorf("--round-ms must be > 0")
	}
	if cfg.Tick <= 0 {
		return fmt.Errorf("--tick-ms must be > 0")
	}
	if cfg.Tick > cfg.Round {
		return fmt.Errorf("--tick-ms must not exceed --round-ms")
	}
	if cfg.Advance < 0 {
		return fmt.Errorf("--advance-ms must be >= 0")
	}
	if cfg.MissAdvance < 0 {
		return fmt.Errorf("--miss-advance-ms must be >= 0")
	}
	switch cfg.MissPolicy {
	case model.MissHalt, model.MissAdvance:
	default:
		return fmt.Errorf("--miss-policy must be %q or %q", model.MissHalt, model.MissAdvance)
	}
	if _, err := applog.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

func writeLangs(w io.Writer, saved lang.Language) error {
	for _, l := range lang.All() {
		marker := " "
		if l == saved {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %s  %-5s  %s\n", marker, l, l.Locale(), l.Name()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
