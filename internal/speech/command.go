package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/numlisten/internal/lang"
)

var _ Speaker = (*Command)(nil)

// Command speaks by running an external process per utterance. Starting a new
// utterance kills the previous one.
type Command struct {
	template []string
	log      zerolog.Logger

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	running bool
}

// NewCommand returns a Command speaker for an argument template.
func NewCommand(template []string, log zerolog.Logger) *Command {
	return &Command{template: append([]string(nil), template...), log: log}
}

// Speak cancels the current utterance and starts a new one.
func (c *Command) Speak(text string, l lang.Language) error {
	if len(c.template) == 0 {
		return fmt.Errorf("speech command is empty")
	}
	args := expandArgs(c.template, text, l)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		cancel()
		c.log.Warn().Err(err).Str("cmd", args[0]).Msg("failed to start speech")
		return fmt.Errorf("failed to start %s: %w", args[0], err)
	}
	c.seq++
	seq := c.seq
	c.cancel = cancel
	c.running = true
	go c.wait(cmd, seq)
	return nil
}

func (c *Command) wait(cmd *exec.Cmd, seq uint64) {
	err := cmd.Wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return
	}
	c.running = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		c.log.Warn().Err(err).Msg("speech command failed")
	} else if err != nil {
		c.log.Debug().Err(err).Msg("speech command exited")
	}
}

// Cancel kills the current utterance.
func (c *Command) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Command) cancelLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.running = false
}

// Running reports whether an utterance process is in flight.
func (c *Command) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
