package speech

import (
	"github.com/rs/zerolog"

	"github.com/verte-zerg/numlisten/internal/lang"
)

var _ Speaker = (*NoOp)(nil)

// NoOp is a Speaker that does nothing. Used when speech is disabled or no
// engine is installed.
type NoOp struct {
	log zerolog.Logger
}

// NewNoOp creates a silent speaker.
func NewNoOp(log zerolog.Logger) *NoOp {
	return &NoOp{log: log}
}

// Speak logs the text it would have said.
func (n *NoOp) Speak(text string, l lang.Language) error {
	n.log.Debug().Str("text", text).Str("lang", string(l)).Msg("speech disabled")
	return nil
}

// Cancel does nothing.
func (n *NoOp) Cancel() {}
