// Package stats contains history calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/lexdrill/internal/model"
)

const sparkChars = " .:-=+*#%@"

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

// Sparkline renders values on a fixed 0-100 scale as one line of ASCII.
func Sparkline(values []float64) string {
	var b strings.Builder
	for _, v := range values {
		pos := math.Max(0, math.Min(100, v)) / 100
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Resample stretches or squeezes values to width points by averaging buckets.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// Totals aggregates counters over history entries.
type Totals struct {
	Sessions  int
	Words     int
	Correct   int
	Incorrect int
	AvgScore  float64
	BestScore int
	LastScore int
	LastAt    time.Time
}

// Accuracy returns the share of correct answers across all sessions.
func (t Totals) Accuracy() float64 {
	if t.Words == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Words)
}

// Summarize computes totals over entries ordered newest first.
func Summarize(entries []model.HistoryEntry) Totals {
	var t Totals
	if len(entries) == 0 {
		return t
	}
	t.Sessions = len(entries)
	t.LastScore = entries[0].Percentage
	t.LastAt = entries[0].Timestamp
	var scoreSum int
	for _, e := range entries {
		t.Words += e.TotalWords
		t.Correct += e.CorrectAnswers
		t.Incorrect += e.IncorrectAnswers
		scoreSum += e.Percentage
		if e.Percentage > t.BestScore {
			t.BestScore = e.Percentage
		}
	}
	t.AvgScore = float64(scoreSum) / float64(len(entries))
	return t
}

// ScoreSeries returns percentages oldest first for plotting.
func ScoreSeries(entries []model.HistoryEntry) []float64 {
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = float64(e.Percentage)
	}
	return out
}

// RenderSummary prints a summary for entries ordered newest first.
func RenderSummary(w io.Writer, entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No quizzes yet.")
		return err
	}
	t := Summarize(entries)
	lines := []string{
		"Summary",
		fmt.Sprintf("Quizzes: %d", t.Sessions),
		fmt.Sprintf("Words answered: %d (%d correct, %d incorrect)", t.Words, t.Correct, t.Incorrect),
		fmt.Sprintf("Avg score: %.1f%%", t.AvgScore),
		fmt.Sprintf("Best score: %d%%", t.BestScore),
		fmt.Sprintf("Last score: %d%% (%s)", t.LastScore, t.LastAt.Local().Format("2006-01-02 15:04")),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderScoreCurve prints a smoothed score sparkline sized to width.
// A width of 0 uses the terminal width.
func RenderScoreCurve(w io.Writer, entries []model.HistoryEntry, window, width int) error {
	if len(entries) == 0 {
		return nil
	}
	if width <= 0 {
		width = terminalWidth()
	}
	series := Resample(MovingAverage(ScoreSeries(entries), window), width-2)
	lines := []string{
		fmt.Sprintf("Score curve (window %d, oldest → newest)", window),
		"|" + Sparkline(series) + "|",
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistoryTable prints one row per entry, newest first.
func RenderHistoryTable(w io.Writer, entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	headers := []string{"When", "Words", "Correct", "Incorrect", "Score"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, HistoryRow(e))
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// HistoryRow formats an entry as table cells.
func HistoryRow(e model.HistoryEntry) []string {
	return []string{
		e.Timestamp.Local().Format("2006-01-02 15:04"),
		fmt.Sprintf("%d", e.TotalWords),
		fmt.Sprintf("%d", e.CorrectAnswers),
		fmt.Sprintf("%d", e.IncorrectAnswers),
		fmt.Sprintf("%d%%", e.Percentage),
	}
}

// RenderMissedTable prints the most-missed words.
func RenderMissedTable(w io.Writer, aggs []model.WordAggregate, top int) error {
	weak := SelectWeakWords(aggs, top)
	if len(weak) == 0 {
		_, err := fmt.Fprintln(w, "No missed words.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Most missed"); err != nil {
		return err
	}
	headers := []string{"Word", "Translation", "Accuracy", "Correct", "Incorrect"}
	rows := make([][]string, 0, len(weak))
	for _, agg := range weak {
		rows = append(rows, MissedRow(agg))
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// MissedRow formats a word aggregate as table cells.
func MissedRow(agg model.WordAggregate) []string {
	return []string{
		agg.Source,
		agg.Target,
		fmt.Sprintf("%.0f%%", accuracy(agg)*100),
		fmt.Sprintf("%d", agg.Correct),
		fmt.Sprintf("%d", agg.Incorrect),
	}
}
