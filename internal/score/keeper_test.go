package score

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/numlisten/internal/lang"
	"github.com/verte-zerg/numlisten/internal/model"
	"github.com/verte-zerg/numlisten/internal/store"
)

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage denied")
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

type failingRounds struct{}

func (failingRounds) InsertRound(context.Context, model.RoundRecord) (int64, error) {
	return 0, errors.New("disk full")
}

func openKeeper(t *testing.T) (*Keeper, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "numlisten.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return NewKeeper(st, st, zerolog.Nop()), st
}

func TestParseHighScore(t *testing.T) {
	cases := map[string]int{
		"":    0,
		"abc": 0,
		"-3":  0,
		"0":   0,
		"12":  12,
		" 7 ": 7,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseHighScore(raw), "raw=%q", raw)
	}
}

func TestCorruptHighScoreLoadsAsZero(t *testing.T) {
	k, st := openKeeper(t)
	require.NoError(t, st.Set(context.Background(), HighScoreKey(lang.French), "abc"))
	assert.Equal(t, 0, k.LoadHighScore(lang.French))
}

func TestHighScoresAreScopedPerLanguage(t *testing.T) {
	k, st := openKeeper(t)
	k.SaveHighScore(lang.English, 5)

	assert.Equal(t, 5, k.LoadHighScore(lang.English))
	assert.Equal(t, 0, k.LoadHighScore(lang.German))

	raw, ok, err := st.Get(context.Background(), "number_game_high_score_v1_en")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "5", raw)
}

func TestLanguageSelection(t *testing.T) {
	k, st := openKeeper(t)
	assert.Equal(t, lang.English, k.LoadLanguage())

	k.SaveLanguage(lang.Russian)
	assert.Equal(t, lang.Russian, k.LoadLanguage())

	require.NoError(t, st.Set(context.Background(), LanguageKey, "klingon"))
	assert.Equal(t, lang.English, k.LoadLanguage())
}

func TestFailuresAreSwallowed(t *testing.T) {
	k := NewKeeper(failingKV{}, failingRounds{}, zerolog.Nop())
	assert.Equal(t, 0, k.LoadHighScore(lang.English))
	assert.Equal(t, lang.English, k.LoadLanguage())
	assert.NotPanics(t, func() {
		k.SaveHighScore(lang.English, 3)
		k.SaveLanguage(lang.French)
		k.RecordRound(model.RoundRecord{Outcome: model.OutcomeCorrect})
	})
}

func TestRecordRound(t *testing.T) {
	k, st := openKeeper(t)
	now := time.Now()
	k.RecordRound(model.RoundRecord{
		SessionID:  "abc",
		Lang:       "en",
		Target:     42,
		Answer:     "42",
		Outcome:    model.OutcomeCorrect,
		Streak:     1,
		StartedAt:  now,
		EndedAt:    now.Add(time.Second),
		ResponseMs: 1000,
	})
	rounds, err := st.ListRounds(context.Background(), model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, "abc", rounds[0].SessionID)
}

func TestNilRoundWriter(t *testing.T) {
	k := NewKeeper(failingKV{}, nil, zerolog.Nop())
	assert.NotPanics(t, func() {
		k.RecordRound(model.RoundRecord{})
	})
}
