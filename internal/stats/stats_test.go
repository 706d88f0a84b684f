package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/lexdrill/internal/model"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{10, 20, 30, 40}, 2)
	assert.Equal(t, []float64{10, 15, 25, 35}, got)
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 1))
}

func TestSparklineScale(t *testing.T) {
	assert.Equal(t, " @", Sparkline([]float64{0, 100}))
	assert.Len(t, Sparkline([]float64{10, 50, 90}), 3)
	assert.Equal(t, "@", Sparkline([]float64{150}))
}

func TestResample(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3}, Resample([]float64{1, 2, 3}, 10))
	assert.Equal(t, []float64{1.5, 3.5}, Resample([]float64{1, 2, 3, 4}, 2))
}

func TestSummarizeTotals(t *testing.T) {
	now := time.Now()
	entries := []model.HistoryEntry{
		{Timestamp: now, TotalWords: 4, CorrectAnswers: 4, Percentage: 100},
		{Timestamp: now.Add(-time.Hour), TotalWords: 2, CorrectAnswers: 1, IncorrectAnswers: 1, Percentage: 50},
	}
	totals := Summarize(entries)
	assert.Equal(t, 2, totals.Sessions)
	assert.Equal(t, 6, totals.Words)
	assert.Equal(t, 5, totals.Correct)
	assert.Equal(t, 1, totals.Incorrect)
	assert.Equal(t, 75.0, totals.AvgScore)
	assert.Equal(t, 100, totals.BestScore)
	assert.Equal(t, 100, totals.LastScore)
	assert.InDelta(t, 5.0/6.0, totals.Accuracy(), 1e-9)
	assert.Equal(t, []float64{50, 100}, ScoreSeries(entries))
}

func TestSelectWeakWords(t *testing.T) {
	aggs := []model.WordAggregate{
		{Source: "book", Correct: 3, Incorrect: 1},
		{Source: "apple", Correct: 1, Incorrect: 3},
		{Source: "pen", Correct: 5, Incorrect: 0},
		{Source: "cat", Correct: 1, Incorrect: 3},
	}
	weak := SelectWeakWords(aggs, 2)
	if assert.Len(t, weak, 2) {
		assert.Equal(t, "apple", weak[0].Source)
		assert.Equal(t, "cat", weak[1].Source)
	}
	assert.Len(t, SelectWeakWords(aggs, 0), 3)
}
