// Package model defines shared data structures.
package model

import "time"

// MissPolicy selects what happens after an incorrect answer or a timeout.
type MissPolicy string

const (
	// MissHalt waits for the player to start the next round.
	MissHalt MissPolicy = "halt"
	// MissAdvance starts the next round automatically after a delay.
	MissAdvance MissPolicy = "advance"
)

// Config defines game settings.
type Config struct {
	Lang          string
	Round         time.Duration
	Tick          time.Duration
	Advance       time.Duration
	MissPolicy    MissPolicy
	MissAdvance   time.Duration
	Speech        string
	SpeechCommand string
	LogLevel      string
}

// StatsConfig defines filters for stats output.
type StatsConfig struct {
	Lang  string
	Last  int
	Width int
}

// Outcome is the result of a finished round.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeTimeout   Outcome = "timeout"
	// OutcomeAbandoned covers rounds cut short by reset, a forced new round or
	// a language change.
	OutcomeAbandoned Outcome = "abandoned"
)

// RoundRecord captures a finished round.
type RoundRecord struct {
	SessionID  string
	Lang       string
	Target     int
	Answer     string
	Outcome    Outcome
	Streak     int
	StartedAt  time.Time
	EndedAt    time.Time
	ResponseMs int64
}

// RoundAggregate summarizes one stored round for reporting.
type RoundAggregate struct {
	ID         int64
	SessionID  string
	Lang       string
	Outcome    Outcome
	EndedAt    time.Time
	ResponseMs int64
}

// LangAggregate summarizes rounds for one language. Rounds counts judged
// rounds only; abandoned ones are tallied separately. ResponseSumMs covers
// correct answers.
type LangAggregate struct {
	Lang          string
	HighScore     int
	Rounds        int
	Correct       int
	Timeouts      int
	Abandoned     int
	Sessions      int
	ResponseSumMs int64
}
