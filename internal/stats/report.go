package stats

import (
	"context"
	"strings"

	"github.com/verte-zerg/numlisten/internal/lang"
	"github.com/verte-zerg/numlisten/internal/model"
	"github.com/verte-zerg/numlisten/internal/score"
)

// Source is the read side of the store used for reporting.
type Source interface {
	ListPrefix(ctx context.Context, prefix string) (map[string]string, error)
	ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.RoundAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Langs  []model.LangAggregate
	Rounds []model.RoundAggregate
}

// BuildReport loads and prepares data for stats rendering. Languages with
// neither a high score nor any rounds are left out.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	rounds, err := src.ListRounds(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	stored, err := src.ListPrefix(ctx, score.HighScorePrefix)
	if err != nil {
		return Report{}, err
	}

	highScores := map[string]int{}
	for key, raw := range stored {
		code := strings.TrimPrefix(key, score.HighScorePrefix)
		highScores[code] = score.ParseHighScore(raw)
	}

	byLang := map[string]*model.LangAggregate{}
	sessions := map[string]map[string]struct{}{}
	for _, r := range rounds {
		agg, ok := byLang[r.Lang]
		if !ok {
			agg = &model.LangAggregate{Lang: r.Lang}
			byLang[r.Lang] = agg
			sessions[r.Lang] = map[string]struct{}{}
		}
		if r.SessionID != "" {
			sessions[r.Lang][r.SessionID] = struct{}{}
		}
		switch r.Outcome {
		case model.OutcomeAbandoned:
			agg.Abandoned++
			continue
		case model.OutcomeCorrect:
			agg.Correct++
			agg.ResponseSumMs += r.ResponseMs
		case model.OutcomeTimeout:
			agg.Timeouts++
		}
		agg.Rounds++
	}

	var langs []model.LangAggregate
	for _, l := range lang.All() {
		code := string(l)
		if cfg.Lang != "" && cfg.Lang != code {
			continue
		}
		agg, ok := byLang[code]
		if !ok {
			if highScores[code] == 0 {
				continue
			}
			agg = &model.LangAggregate{Lang: code}
		}
		agg.HighScore = highScores[code]
		agg.Sessions = len(sessions[code])
		langs = append(langs, *agg)
	}

	return Report{Langs: langs, Rounds: rounds}, nil
}

// ResponseSeries returns the response times of correct answers in lang, oldest
// first.
func (r Report) ResponseSeries(code string) []float64 {
	var out []float64
	for _, round := range r.Rounds {
		if round.Lang != code || round.Outcome != model.OutcomeCorrect {
			continue
		}
		out = append(out, float64(round.ResponseMs))
	}
	return out
}
