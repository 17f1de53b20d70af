// Package score persists high scores, the language selection and round
// history. Storage failures are logged and mapped to defaults; they never
// reach the caller.
package score

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/numlisten/internal/lang"
	"github.com/verte-zerg/numlisten/internal/model"
)

const (
	// LanguageKey stores the selected language code.
	LanguageKey = "number_game_language_v1"
	// HighScorePrefix is followed by a language code.
	HighScorePrefix = "number_game_high_score_v1_"
)

const opTimeout = 2 * time.Second

// KV is a fallible string key/value store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// RoundWriter stores finished rounds.
type RoundWriter interface {
	InsertRound(ctx context.Context, rec model.RoundRecord) (int64, error)
}

// Keeper is the best-effort persistence boundary used by the round controller.
type Keeper struct {
	kv     KV
	rounds RoundWriter
	log    zerolog.Logger
}

// NewKeeper returns a Keeper. rounds may be nil to skip history.
func NewKeeper(kv KV, rounds RoundWriter, log zerolog.Logger) *Keeper {
	return &Keeper{kv: kv, rounds: rounds, log: log}
}

// HighScoreKey returns the storage key for a language's high score.
func HighScoreKey(l lang.Language) string {
	return HighScorePrefix + string(l)
}

// ParseHighScore parses a stored value. Missing, malformed and non-positive
// values yield 0.
func ParseHighScore(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// LoadHighScore returns the stored high score for l, or 0.
func (k *Keeper) LoadHighScore(l lang.Language) int {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	raw, ok, err := k.kv.Get(ctx, HighScoreKey(l))
	if err != nil {
		k.log.Warn().Err(err).Str("lang", string(l)).Msg("failed to load high score")
		return 0
	}
	if !ok {
		return 0
	}
	return ParseHighScore(raw)
}

// SaveHighScore stores value as the high score for l.
func (k *Keeper) SaveHighScore(l lang.Language, value int) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := k.kv.Set(ctx, HighScoreKey(l), strconv.Itoa(value)); err != nil {
		k.log.Warn().Err(err).Str("lang", string(l)).Int("score", value).Msg("failed to save high score")
	}
}

// LoadLanguage returns the saved language selection, or lang.Default.
func (k *Keeper) LoadLanguage() lang.Language {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	raw, ok, err := k.kv.Get(ctx, LanguageKey)
	if err != nil {
		k.log.Warn().Err(err).Msg("failed to load language")
		return lang.Default
	}
	if !ok {
		return lang.Default
	}
	return lang.ParseOrDefault(raw)
}

// SaveLanguage stores the language selection.
func (k *Keeper) SaveLanguage(l lang.Language) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := k.kv.Set(ctx, LanguageKey, string(l)); err != nil {
		k.log.Warn().Err(err).Str("lang", string(l)).Msg("failed to save language")
	}
}

// RecordRound appends rec to the round history.
func (k *Keeper) RecordRound(rec model.RoundRecord) {
	if k.rounds == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if _, err := k.rounds.InsertRound(ctx, rec); err != nil {
		k.log.Warn().Err(err).Str("outcome", string(rec.Outcome)).Msg("failed to record round")
	}
}
