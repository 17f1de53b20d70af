package round

import (
	"time"

	"github.com/verte-zerg/numlisten/internal/lang"
	"github.com/verte-zerg/numlisten/internal/model"
)

// State is the round life-cycle state.
type State int

const (
	// Idle has no round and no target.
	Idle State = iota
	// Active has a running countdown.
	Active
	// EndedPending shows feedback while an auto-advance is scheduled.
	EndedPending
	// EndedHalted shows feedback and waits for an explicit start.
	EndedHalted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case EndedPending:
		return "pending"
	case EndedHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// BadgeKind classifies the result badge.
type BadgeKind int

const (
	BadgeNone BadgeKind = iota
	BadgePositive
	BadgeNegative
)

// Badge is the result indicator shown after a round.
type Badge struct {
	Kind  BadgeKind
	Label string
}

// TaskKind identifies what a scheduled task does when it fires.
type TaskKind int

const (
	// TaskTick samples the countdown; deliver through Controller.Tick.
	TaskTick TaskKind = iota
	// TaskAdvance starts the next round; deliver through Controller.Advance.
	TaskAdvance
)

// Task asks the event loop to call back after Delay with Token.
type Task struct {
	Kind  TaskKind
	Token uint64
	Delay time.Duration
}

// Timing holds the round durations and the miss policy.
type Timing struct {
	Round       time.Duration
	Tick        time.Duration
	Advance     time.Duration
	MissPolicy  model.MissPolicy
	MissAdvance time.Duration
}

// DefaultTiming returns the standard durations: a 10s round sampled every 50ms,
// 500ms auto-advance after a correct answer, halt after a miss.
func DefaultTiming() Timing {
	return Timing{
		Round:       10 * time.Second,
		Tick:        50 * time.Millisecond,
		Advance:     500 * time.Millisecond,
		MissPolicy:  model.MissHalt,
		MissAdvance: 1500 * time.Millisecond,
	}
}

// View is a rendering snapshot of the controller.
type View struct {
	State     State
	Lang      lang.Language
	Streak    int
	HighScore int
	Message   string
	Badge     Badge
	Progress  float64
	Remaining time.Duration
	CanRepeat bool
}
