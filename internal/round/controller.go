// Package round implements the life cycle of a listening round: draw a
// number, speak it, count down, judge the answer and track the streak.
//
// The controller owns no timers. Every mutator returns the Tasks the caller's
// event loop must schedule; when a task's delay elapses the loop hands it back
// through Tick or Advance. Each task carries a token, and a token that is no
// longer current is ignored, so superseded timers can never touch a newer
// round.
package round

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/numlisten/internal/lang"
	"github.com/verte-zerg/numlisten/internal/model"
	"github.com/verte-zerg/numlisten/internal/speech"
)

const (
	msgPressStart      = "Press Start"
	msgListen          = "Listen for the number, time is running!"
	msgRepeat          = "Repeating the number, the clock is still ticking!"
	msgCorrect         = "Nice! Next number…"
	msgReset           = "Lost. Press Start to restart!"
	msgLanguageChanged = "Language changed. Press Start."

	labelCorrect   = "Correct ✓"
	labelIncorrect = "Incorrect ✗"
	labelTimeout   = "Time's up ✗"
)

// TargetSource draws round targets.
type TargetSource interface {
	Target() int
}

// Scores is the persistence boundary. Implementations swallow their own
// failures.
type Scores interface {
	LoadHighScore(l lang.Language) int
	SaveHighScore(l lang.Language, value int)
	SaveLanguage(l lang.Language)
	RecordRound(rec model.RoundRecord)
}

// Options configures a Controller.
type Options struct {
	Timing    Timing
	Lang      lang.Language
	SessionID string
	Targets   TargetSource
	Speaker   speech.Speaker
	Scores    Scores
	Logger    *zerolog.Logger
}

// Controller owns all state of the current round and session.
type Controller struct {
	timing    Timing
	sessionID string
	targets   TargetSource
	speaker   speech.Speaker
	scores    Scores
	log       zerolog.Logger

	lang      lang.Language
	state     State
	target    int
	startedAt time.Time
	streak    int
	highScore int

	lastToken    uint64
	tickToken    uint64
	advanceToken uint64

	message  string
	badge    Badge
	progress float64
	now      time.Time
}

// New returns an idle controller with the high score of opts.Lang loaded.
func New(opts Options) *Controller {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	if opts.Speaker == nil {
		opts.Speaker = speech.NewNoOp(log)
	}
	if opts.Scores == nil {
		opts.Scores = nopScores{}
	}
	if opts.Timing == (Timing{}) {
		opts.Timing = DefaultTiming()
	}
	c := &Controller{
		timing:    opts.Timing,
		sessionID: opts.SessionID,
		targets:   opts.Targets,
		speaker:   opts.Speaker,
		scores:    opts.Scores,
		log:       log,
		lang:      lang.ParseOrDefault(string(opts.Lang)),
		state:     Idle,
		message:   msgPressStart,
	}
	c.highScore = c.scores.LoadHighScore(c.lang)
	return c
}

// Start begins a new round from any state.
func (c *Controller) Start(now time.Time) []Task {
	c.cancelAdvance()
	if c.state == Active {
		c.record(model.OutcomeAbandoned, "", now)
	}
	c.target = c.targets.Target()
	c.startedAt = now
	c.now = now
	c.state = Active
	c.badge = Badge{}
	c.progress = 1
	c.message = msgListen
	c.speak()
	c.tickToken = c.issueToken()
	c.log.Debug().Int("target", c.target).Str("lang", string(c.lang)).Msg("round started")
	return []Task{{Kind: TaskTick, Token: c.tickToken, Delay: c.timing.Tick}}
}

// NewRound forces a new round. It only applies while a target exists.
func (c *Controller) NewRound(now time.Time) []Task {
	if c.target == 0 {
		return nil
	}
	return c.Start(now)
}

// Tick samples the countdown. Stale tokens are ignored.
func (c *Controller) Tick(token uint64, now time.Time) []Task {
	if c.state != Active || token == 0 || token != c.tickToken {
		return nil
	}
	c.now = now
	remaining := c.remaining(now)
	c.progress = float64(remaining) / float64(c.timing.Round)
	if remaining <= 0 {
		c.progress = 0
		return c.Submit("", true, now)
	}
	return []Task{{Kind: TaskTick, Token: token, Delay: c.timing.Tick}}
}

// Submit judges raw against the target. It is a no-op unless a round is active.
func (c *Controller) Submit(raw string, timeout bool, now time.Time) []Task {
	if c.state != Active {
		return nil
	}
	c.stopTicker()
	c.now = now

	typed := Normalize(raw)
	correct := strconv.Itoa(c.target)
	if !timeout && typed != "" && typed == correct {
		c.streak++
		if c.streak > c.highScore {
			c.highScore = c.streak
			c.scores.SaveHighScore(c.lang, c.highScore)
		}
		c.state = EndedPending
		c.badge = Badge{Kind: BadgePositive, Label: labelCorrect}
		c.message = msgCorrect
		c.record(model.OutcomeCorrect, typed, now)
		c.log.Debug().Int("streak", c.streak).Msg("correct answer")
		return []Task{c.scheduleAdvance(c.timing.Advance)}
	}

	outcome := model.OutcomeIncorrect
	label := labelIncorrect
	lead := "Incorrect."
	if timeout {
		outcome = model.OutcomeTimeout
		label = labelTimeout
		lead = "Time's up."
	}
	c.streak = 0
	c.record(outcome, typed, now)
	c.target = 0
	c.badge = Badge{Kind: BadgeNegative, Label: label}
	c.log.Debug().Str("outcome", string(outcome)).Str("correct", correct).Msg("round missed")

	if c.timing.MissPolicy == model.MissAdvance {
		c.state = EndedPending
		c.message = fmt.Sprintf("%s The correct answer was: %s. Next number coming up.", lead, correct)
		return []Task{c.scheduleAdvance(c.timing.MissAdvance)}
	}
	c.state = EndedHalted
	c.message = fmt.Sprintf("%s The correct answer was: %s. Press Start to try again.", lead, correct)
	return nil
}

// InputChanged submits early when the live input already matches the target.
func (c *Controller) InputChanged(raw string, now time.Time) []Task {
	if c.state != Active || c.target == 0 {
		return nil
	}
	if Normalize(raw) != strconv.Itoa(c.target) {
		return nil
	}
	return c.Submit(raw, false, now)
}

// Advance runs a scheduled auto-advance. Stale tokens are ignored.
func (c *Controller) Advance(token uint64, now time.Time) []Task {
	if token == 0 || token != c.advanceToken {
		return nil
	}
	c.advanceToken = 0
	return c.Start(now)
}

// Repeat says the current target again without touching the countdown.
// It reports whether anything was spoken.
func (c *Controller) Repeat() bool {
	if c.target == 0 {
		return false
	}
	c.speak()
	if c.state == Active {
		c.message = msgRepeat
	}
	return true
}

// Reset returns to Idle, dropping the streak and any scheduled work.
func (c *Controller) Reset(now time.Time) {
	if c.state == Active {
		c.record(model.OutcomeAbandoned, "", now)
	}
	c.cancelAdvance()
	c.stopTicker()
	c.streak = 0
	c.target = 0
	c.state = Idle
	c.badge = Badge{}
	c.message = msgReset
	c.log.Debug().Msg("game reset")
}

// SetLanguage switches language, halting any round and loading the new
// language's high score. Selecting the current language does nothing.
func (c *Controller) SetLanguage(l lang.Language, now time.Time) {
	if l == c.lang {
		return
	}
	if c.state == Active {
		c.record(model.OutcomeAbandoned, "", now)
	}
	c.lang = l
	c.scores.SaveLanguage(l)
	c.highScore = c.scores.LoadHighScore(l)

	c.cancelAdvance()
	c.speaker.Cancel()
	c.stopTicker()
	c.streak = 0
	c.target = 0
	if c.state != Idle {
		c.state = EndedHalted
	}
	c.badge = Badge{}
	c.message = msgLanguageChanged
	c.log.Debug().Str("lang", string(l)).Int("high_score", c.highScore).Msg("language changed")
}

// Lang returns the current language.
func (c *Controller) Lang() lang.Language {
	return c.lang
}

// View returns a snapshot for rendering.
func (c *Controller) View() View {
	v := View{
		State:     c.state,
		Lang:      c.lang,
		Streak:    c.streak,
		HighScore: c.highScore,
		Message:   c.message,
		Badge:     c.badge,
		Progress:  clamp01(c.progress),
		CanRepeat: c.target != 0,
	}
	if c.state == Active {
		v.Remaining = c.remaining(c.now)
	}
	return v
}

func (c *Controller) remaining(now time.Time) time.Duration {
	remaining := c.timing.Round - now.Sub(c.startedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *Controller) speak() {
	if err := c.speaker.Speak(strconv.Itoa(c.target), c.lang); err != nil {
		c.log.Debug().Err(err).Msg("speech unavailable")
	}
}

func (c *Controller) issueToken() uint64 {
	c.lastToken++
	return c.lastToken
}

func (c *Controller) scheduleAdvance(delay time.Duration) Task {
	c.advanceToken = c.issueToken()
	return Task{Kind: TaskAdvance, Token: c.advanceToken, Delay: delay}
}

func (c *Controller) cancelAdvance() {
	c.advanceToken = 0
}

func (c *Controller) stopTicker() {
	c.tickToken = 0
	c.progress = 0
}

func (c *Controller) record(outcome model.Outcome, answer string, now time.Time) {
	c.scores.RecordRound(model.RoundRecord{
		SessionID:  c.sessionID,
		Lang:       string(c.lang),
		Target:     c.target,
		Answer:     answer,
		Outcome:    outcome,
		Streak:     c.streak,
		StartedAt:  c.startedAt,
		EndedAt:    now,
		ResponseMs: now.Sub(c.startedAt).Milliseconds(),
	})
}

type nopScores struct{}

func (nopScores) LoadHighScore(lang.Language) int { return 0 }
func (nopScores) SaveHighScore(lang.Language, int) {}
func (nopScores) SaveLanguage(lang.Language) {}
func (nopScores) RecordRound(model.RoundRecord) {}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
