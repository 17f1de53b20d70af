// Package speech vocalizes numbers through an external text-to-speech engine.
package speech

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/numlisten/internal/lang"
)

// Speaker says text in a language. Speak returns once the utterance has been
// started; it does not wait for it to finish.
type Speaker interface {
	Speak(text string, l lang.Language) error
	// Cancel stops the current utterance, if any.
	Cancel()
}

const (
	// EngineAuto picks the first engine found on PATH.
	EngineAuto = "auto"
	// EngineNone disables speech.
	EngineNone = "none"
)

// engines lists supported commands in detection order. {lang} is the language
// code, {locale} the locale tag and {text} the text to say.
var engines = []struct {
	name string
	args []string
}{
	{name: "espeak-ng", args: []string{"espeak-ng", "-v", "{lang}", "{text}"}},
	{name: "espeak", args: []string{"espeak", "-v", "{lang}", "{text}"}},
	{name: "spd-say", args: []string{"spd-say", "--wait", "-l", "{lang}", "{text}"}},
	{name: "say", args: []string{"say", "{text}"}},
}

// Engines returns the names of the known engines.
func Engines() []string {
	out := make([]string, 0, len(engines))
	for _, e := range engines {
		out = append(out, e.name)
	}
	return out
}

// New builds a Speaker. custom, when non-empty, is a command line with
// placeholders and takes precedence over engine.
func New(engine, custom string, log zerolog.Logger) (Speaker, error) {
	if custom = strings.TrimSpace(custom); custom != "" {
		return NewCommand(strings.Fields(custom), log), nil
	}
	switch engine {
	case "", EngineAuto:
		args, ok := Detect(exec.LookPath)
		if !ok {
			log.Warn().Msg("no speech engine found on PATH; playing silently")
			return NewNoOp(log), nil
		}
		return NewCommand(args, log), nil
	case EngineNone:
		return NewNoOp(log), nil
	}
	for _, e := range engines {
		if e.name == engine {
			return NewCommand(e.args, log), nil
		}
	}
	return nil, fmt.Errorf("unknown speech engine %q (available: %s, %s, %s)",
		engine, EngineAuto, EngineNone, strings.Join(Engines(), ", "))
}

// Detect returns the argument template of the first engine lookPath finds.
func Detect(lookPath func(string) (string, error)) ([]string, bool) {
	for _, e := range engines {
		if _, err := lookPath(e.name); err == nil {
			return append([]string(nil), e.args...), true
		}
	}
	return nil, false
}

func expandArgs(template []string, text string, l lang.Language) []string {
	r := strings.NewReplacer("{text}", text, "{lang}", string(l), "{locale}", l.Locale())
	out := make([]string, len(template))
	for i, arg := range template {
		out[i] = r.Replace(arg)
	}
	return out
}
