// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/numlisten/internal/lang"
	"github.com/verte-zerg/numlisten/internal/model"
)

const (
	sparkChars      = " .:-=+*#%@"
	sparkWindow     = 5
	sparkLabelWidth = 12
)

// LangMetrics computes accuracy and average response time of correct answers
// for one language.
func LangMetrics(agg model.LangAggregate) (accuracy float64, avgResponseMs float64) {
	if agg.Rounds > 0 {
		accuracy = float64(agg.Correct) / float64(agg.Rounds)
	}
	if agg.Correct > 0 {
		avgResponseMs = float64(agg.ResponseSumMs) / float64(agg.Correct)
	}
	return accuracy, avgResponseMs
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Render prints the per-language table followed by response-time sparklines
// no wider than width.
func Render(w io.Writer, report Report, width int) error {
	if len(report.Langs) == 0 {
		_, err := fmt.Fprintln(w, "No rounds played yet.")
		return err
	}
	if err := RenderSummary(w, report); err != nil {
		return err
	}
	return RenderResponseCurves(w, report, width)
}

// RenderSummary prints one row per language.
func RenderSummary(w io.Writer, report Report) error {
	headers := []string{"Language", "Locale", "High", "Rounds", "Accuracy", "Avg Response", "Timeouts", "Sessions"}
	rows := make([][]string, 0, len(report.Langs))
	for _, agg := range report.Langs {
		l := lang.ParseOrDefault(agg.Lang)
		acc, avg := LangMetrics(agg)
		rows = append(rows, []string{
			l.Name(),
			l.Locale(),
			fmt.Sprintf("%d", agg.HighScore),
			fmt.Sprintf("%d", agg.Rounds),
			fmt.Sprintf("%.1f%%", acc*100),
			fmt.Sprintf("%.2fs", avg/1000),
			fmt.Sprintf("%d", agg.Timeouts),
			fmt.Sprintf("%d", agg.Sessions),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderResponseCurves prints a smoothed sparkline of correct-answer response
// times per language, keeping the most recent rounds that fit in width.
func RenderResponseCurves(w io.Writer, report Report, width int) error {
	printed := false
	for _, agg := range report.Langs {
		series := MovingAverage(report.ResponseSeries(agg.Lang), sparkWindow)
		if len(series) == 0 {
			continue
		}
		if !printed {
			if _, err := fmt.Fprintln(w, "Response time (older → newer, higher is slower)"); err != nil {
				return err
			}
			printed = true
		}
		room := width - sparkLabelWidth - 2
		if room < 1 {
			room = 1
		}
		if len(series) > room {
			series = series[len(series)-room:]
		}
		label := padCell(truncate(lang.ParseOrDefault(agg.Lang).Name(), sparkLabelWidth), sparkLabelWidth, false)
		if _, err := fmt.Fprintf(w, "%s  %s\n", label, Sparkline(series)); err != nil {
			return err
		}
	}
	return nil
}
