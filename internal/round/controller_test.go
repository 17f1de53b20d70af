package round

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/numlisten/internal/lang"
	"github.com/verte-zerg/numlisten/internal/model"
)

type fixedTargets struct {
	values []int
	next   int
}

func (f *fixedTargets) Target() int {
	v := f.values[f.next%len(f.values)]
	f.next++
	return v
}

type fakeSpeaker struct {
	spoken  []string
	langs   []lang.Language
	cancels int
}

func (f *fakeSpeaker) Speak(text string, l lang.Language) error {
	f.spoken = append(f.spoken, text)
	f.langs = append(f.langs, l)
	return nil
}

func (f *fakeSpeaker) Cancel() {
	f.cancels++
}

type fakeScores struct {
	high    map[lang.Language]int
	saves   map[lang.Language]int
	lang    lang.Language
	records []model.RoundRecord
}

func newFakeScores() *fakeScores {
	return &fakeScores{high: map[lang.Language]int{}, saves: map[lang.Language]int{}}
}

func (f *fakeScores) LoadHighScore(l lang.Language) int { return f.high[l] }

func (f *fakeScores) SaveHighScore(l lang.Language, v int) {
	f.high[l] = v
	f.saves[l]++
}

func (f *fakeScores) SaveLanguage(l lang.Language) { f.lang = l }

func (f *fakeScores) RecordRound(rec model.RoundRecord) { f.records = append(f.records, rec) }

type harness struct {
	c       *Controller
	speaker *fakeSpeaker
	scores  *fakeScores
	now     time.Time
}

func newHarness(t *testing.T, targets ...int) *harness {
	t.Helper()
	h := &harness{
		speaker: &fakeSpeaker{},
		scores:  newFakeScores(),
		now:     time.Unix(1_700_000_000, 0),
	}
	h.c = New(Options{
		Lang:      lang.English,
		SessionID: "session",
		Targets:   &fixedTargets{values: targets},
		Speaker:   h.speaker,
		Scores:    h.scores,
	})
	return h
}

func (h *harness) after(d time.Duration) time.Time {
	h.now = h.now.Add(d)
	return h.now
}

func TestNewIsIdle(t *testing.T) {
	h := newHarness(t, 42)
	v := h.c.View()
	assert.Equal(t, Idle, v.State)
	assert.Equal(t, "Press Start", v.Message)
	assert.False(t, v.CanRepeat)
	assert.Equal(t, BadgeNone, v.Badge.Kind)
}

func TestStartSpeaksAndSchedulesTick(t *testing.T) {
	h := newHarness(t, 42)
	tasks := h.c.Start(h.now)

	require.Len(t, tasks, 1)
	assert.Equal(t, TaskTick, tasks[0].Kind)
	assert.Equal(t, 50*time.Millisecond, tasks[0].Delay)
	assert.Equal(t, []string{"42"}, h.speaker.spoken)
	assert.Equal(t, []lang.Language{lang.English}, h.speaker.langs)

	v := h.c.View()
	assert.Equal(t, Active, v.State)
	assert.True(t, v.CanRepeat)
	assert.Equal(t, 1.0, v.Progress)
	assert.Equal(t, 10*time.Second, v.Remaining)
}

func TestCorrectAnswer(t *testing.T) {
	h := newHarness(t, 42)
	h.c.Start(h.now)
	tasks := h.c.Submit("42", false, h.after(2*time.Second))

	require.Len(t, tasks, 1)
	assert.Equal(t, TaskAdvance, tasks[0].Kind)
	assert.Equal(t, 500*time.Millisecond, tasks[0].Delay)

	v := h.c.View()
	assert.Equal(t, EndedPending, v.State)
	assert.Equal(t, 1, v.Streak)
	assert.Equal(t, BadgePositive, v.Badge.Kind)
	assert.Equal(t, "Correct ✓", v.Badge.Label)

	require.Len(t, h.scores.records, 1)
	rec := h.scores.records[0]
	assert.Equal(t, model.OutcomeCorrect, rec.Outcome)
	assert.Equal(t, int64(2000), rec.ResponseMs)
	assert.Equal(t, "session", rec.SessionID)
}

func TestWhitespaceInAnswerIsTolerated(t *testing.T) {
	h := newHarness(t, 42)
	h.c.Start(h.now)
	tasks := h.c.Submit("4 2", false, h.after(time.Second))
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, h.c.View().Streak)
	assert.Equal(t, BadgePositive, h.c.View().Badge.Kind)
}

func TestNoisyAnswerMatchesAfterNormalization(t *testing.T) {
	h := newHarness(t, 1234567)
	h.c.Start(h.now)
	h.c.Submit("1,234,567!", false, h.after(time.Second))
	assert.Equal(t, 1, h.c.View().Streak)
}

func TestLeadingZeroDoesNotMatch(t *testing.T) {
	h := newHarness(t, 42)
	h.c.Start(h.now)
	h.c.Submit("042", false, h.after(time.Second))
	assert.Equal(t, EndedHalted, h.c.View().State)
}

func TestIncorrectAnswerHalts(t *testing.T) {
	h := newHarness(t, 42)
	h.c.Start(h.now)
	h.c.Submit("41", false, h.after(time.Second))
	tasks := h.c.Submit("42", false, h.after(time.Second))

	assert.Nil(t, tasks)
	v := h.c.View()
	assert.Equal(t, EndedHalted, v.State)
	assert.Equal(t, 0, v.Streak)
	assert.Equal(t, BadgeNegative, v.Badge.Kind)
	assert.Equal(t, "Incorrect ✗", v.Badge.Label)
	assert.Contains(t, v.Message, "42")
	assert.False(t, v.CanRepeat)
}

func TestEmptyAnswerIsIncorrect(t *testing.T) {
	h := newHarness(t, 42)
	h.c.Start(h.now)
	h.c.Submit(" - ", false, h.after(time.Second))
	assert.Equal(t, EndedHalted, h.c.View().State)
}

func TestTimeoutScenario(t *testing.T) {
	h := newHarness(t, 7, 7)
	h.c.Start(h.now)
	h.c.Submit("7", false, h.after(time.Second))
	h.c.Advance(h.c.advanceToken, h.after(500*time.Millisecond))
	require.Equal(t, 1, h.c.View().Streak)

	tasks := h.c.Submit("", true, h.after(10*time.Second))
	assert.Nil(t, tasks)
	v := h.c.View()
	assert.Equal(t, 0, v.Streak)
	assert.Equal(t, EndedHalted, v.State)
	assert.Equal(t, BadgeNegative, v.Badge.Kind)
	assert.Equal(t, "Time's up ✗", v.Badge.Label)
	assert.Contains(t, v.Message, "7")
	assert.True(t, strings.Contains(v.Message, "Press Start"))
}

func TestTimeoutIgnoresInput(t *testing.T) {
	h := newHarness(t, 42)
	h.c.Start(h.now)
	h.c.Submit("42", true, h.after(time.Second))
	assert.Equal(t, EndedHalted, h.c.View().State)
	assert.Equal(t, 0, h.c.View().Streak)
}

func TestTickRunsCountdownToTimeout(t *testing.T) {
	h := newHarness(t, 42)
	tasks := h.c.Start(h.now)
	token := tasks[0].Token

	tasks = h.c.Tick(token, h.after(5*time.Second))
	require.Len(t, tasks, 1)
	assert.Equal(t, token, tasks[0].Token)
	assert.InDelta(t, 0.5, h.c.View().Progress, 1e-9)
	assert.Equal(t, 5*time.Second, h.c.View().Remaining)

	tasks = h.c.Tick(token, h.after(5*time.Second))
	assert.Nil(t, tasks)
	v := h.c.View()
	assert.Equal(t, EndedHalted, v.State)
	assert.Equal(t, "Time's up ✗", v.Badge.Label)
	assert.Equal(t, 0.0, v.Progress)

	require.Len(t, h.scores.records, 1)
	assert.Equal(t, model.OutcomeTimeout, h.scores.records[0].Outcome)
}

func TestStaleTickIsIgnored(t *testing.T) {
	h := newHarness(t, 1, 2)
	old := h.c.Start(h.now)[0].Token
	h.c.Start(h.after(time.Second))

	assert.Nil(t, h.c.Tick(old, h.after(20*time.Second)))
	assert.Equal(t, Active, h.c.View().State)
}

func TestSubmitIsIdempotentAfterRoundEnds(t *testing.T) {
	h := newHarness(t, 42)
	h.c.Start(h.now)
	first := h.c.Submit("42", false, h.after(time.Second))
	second := h.c.Submit("42", false, h.after(time.Second))

	require.Len(t, first, 1)
	assert.Nil(t, second)
	assert.Equal(t, 1, h.c.View().Streak)
	assert.Len(t, h.scores.records, 1)
}

func TestAdvanceStartsNextRound(t *testing.T) {
	h := newHarness(t, 42, 43)
	h.c.Start(h.now)
	adv := h.c.Submit("42", false, h.after(time.Second))[0]

	tasks := h.c.Advance(adv.Token, h.after(adv.Delay))
	require.Len(t, tasks, 1)
	assert.Equal(t, TaskTick, tasks[0].Kind)
	assert.Equal(t, Active, h.c.View().State)
	assert.Equal(t, []string{"42", "43"}, h.speaker.spoken)
	assert.Equal(t, 1, h.c.View().Streak)
}

func TestStartCancelsPendingAdvance(t *testing.T) {
	h := newHarness(t, 42, 43, 44)
	h.c.Start(h.now)
	adv := h.c.Submit("42", false, h.after(time.Second))[0]

	h.c.Start(h.after(100 * time.Millisecond))
	assert.Nil(t, h.c.Advance(adv.Token, h.after(400*time.Millisecond)))
	assert.Equal(t, []string{"42", "43"}, h.speaker.spoken)
}

func TestResetCancelsPendingAdvance(t *testing.T) {
	h := newHarness(t, 42)
	h.c.Start(h.now)
	adv := h.c.Submit("42", false, h.after(time.Second))[0]

	h.c.Reset(h.after(100 * time.Millisecond))
	assert.Nil(t, h.c.Advance(adv.Token, h.after(400*time.Millisecond)))

	v := h.c.View()
	assert.Equal(t, Idle, v.State)
	assert.Equal(t, 0, v.Streak)
	assert.False(t, v.CanRepeat)
	assert.Equal(t, BadgeNone, v.Badge.Kind)
}

func TestResetAbandonsActiveRound(t *testing.T) {
	h := newHarness(t, 42)
	token := h.c.Start(h.now)[0].Token
	h.c.Reset(h.after(time.Second))

	assert.Nil(t, h.c.Tick(token, h.after(time.Second)))
	require.Len(t, h.scores.records, 1)
	assert.Equal(t, model.OutcomeAbandoned, h.scores.records[0].Outcome)
}

func TestRepeat(t *testing.T) {
	h := newHarness(t, 42)
	assert.False(t, h.c.Repeat())

	h.c.Start(h.now)
	h.c.Tick(h.c.tickToken, h.after(3*time.Second))
	assert.True(t, h.c.Repeat())
	assert.Equal(t, []string{"42", "42"}, h.speaker.spoken)
	assert.Equal(t, 7*time.Second, h.c.View().Remaining)
	assert.Contains(t, h.c.View().Message, "Repeating")
}

func TestNewRoundRequiresTarget(t *testing.T) {
	h := newHarness(t, 42, 43)
	assert.Nil(t, h.c.NewRound(h.now))
	assert.Equal(t, Idle, h.c.View().State)

	h.c.Start(h.now)
	tasks := h.c.NewRound(h.after(time.Second))
	require.Len(t, tasks, 1)
	assert.Equal(t, []string{"42", "43"}, h.speaker.spoken)
}

func TestInputChangedAutoSubmits(t *testing.T) {
	h := newHarness(t, 42)
	h.c.Start(h.now)

	assert.Nil(t, h.c.InputChanged("4", h.after(time.Second)))
	assert.Equal(t, Active, h.c.View().State)

	tasks := h.c.InputChanged("42", h.after(time.Second))
	require.Len(t, tasks, 1)
	assert.Equal(t, EndedPending, h.c.View().State)
}

func TestHighScoreUpdatesAndPersists(t *testing.T) {
	h := newHarness(t, 42)
	h.scores.high[lang.English] = 3
	h.c = New(Options{Lang: lang.English, Targets: &fixedTargets{values: []int{42}}, Speaker: h.speaker, Scores: h.scores})
	h.c.streak = 4

	h.c.Start(h.now)
	h.c.Submit("42", false, h.after(time.Second))

	assert.Equal(t, 5, h.c.View().Streak)
	assert.Equal(t, 5, h.c.View().HighScore)
	assert.Equal(t, 5, h.scores.high[lang.English])
	assert.Equal(t, map[lang.Language]int{lang.English: 1}, h.scores.saves)
}

func TestHighScoreNotLoweredByMiss(t *testing.T) {
	h := newHarness(t, 42)
	h.scores.high[lang.English] = 9
	h.c = New(Options{Lang: lang.English, Targets: &fixedTargets{values: []int{42}}, Scores: h.scores})
	h.c.Start(h.now)
	h.c.Submit("1", false, h.after(time.Second))
	assert.Equal(t, 9, h.c.View().HighScore)
	assert.Empty(t, h.scores.saves)
}

func TestSetLanguageHaltsRound(t *testing.T) {
	h := newHarness(t, 42, 43)
	h.scores.high[lang.French] = 8
	h.c.Start(h.now)
	h.c.Submit("42", false, h.after(time.Second))
	adv := h.c.advanceToken

	h.c.SetLanguage(lang.French, h.after(100*time.Millisecond))

	v := h.c.View()
	assert.Equal(t, EndedHalted, v.State)
	assert.Equal(t, lang.French, v.Lang)
	assert.Equal(t, 8, v.HighScore)
	assert.Equal(t, 0, v.Streak)
	assert.Equal(t, "Language changed. Press Start.", v.Message)
	assert.Equal(t, lang.French, h.scores.lang)
	assert.Equal(t, 1, h.speaker.cancels)
	assert.Nil(t, h.c.Advance(adv, h.after(time.Second)))

	h.c.Start(h.now)
	assert.Equal(t, lang.French, h.speaker.langs[len(h.speaker.langs)-1])
}

func TestSetLanguageWhileIdleStaysIdle(t *testing.T) {
	h := newHarness(t, 42)
	h.c.SetLanguage(lang.German, h.now)
	assert.Equal(t, Idle, h.c.View().State)
	assert.Equal(t, lang.German, h.c.Lang())
}

func TestSetSameLanguageIsNoop(t *testing.T) {
	h := newHarness(t, 42)
	h.c.Start(h.now)
	h.c.SetLanguage(lang.English, h.after(time.Second))
	assert.Equal(t, Active, h.c.View().State)
	assert.Equal(t, 0, h.speaker.cancels)
}

func TestMissAdvancePolicy(t *testing.T) {
	timing := DefaultTiming()
	timing.MissPolicy = model.MissAdvance
	timing.MissAdvance = 2 * time.Second
	c := New(Options{
		Timing:  timing,
		Lang:    lang.Russian,
		Targets: &fixedTargets{values: []int{5, 6}},
	})
	now := time.Unix(0, 0)
	c.Start(now)
	tasks := c.Submit("4", false, now.Add(time.Second))

	require.Len(t, tasks, 1)
	assert.Equal(t, TaskAdvance, tasks[0].Kind)
	assert.Equal(t, 2*time.Second, tasks[0].Delay)
	assert.Equal(t, EndedPending, c.View().State)
	assert.Equal(t, 0, c.View().Streak)
	assert.Contains(t, c.View().Message, "5")

	c.Advance(tasks[0].Token, now.Add(3*time.Second))
	assert.Equal(t, Active, c.View().State)
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"42":        "42",
		"4 2":       "42",
		"1,000,000": "1000000",
		"abc":       "",
		"٤٢":        "",
		" 0 7 ":     "07",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}
