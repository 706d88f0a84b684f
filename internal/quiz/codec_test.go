package quiz

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/lexdrill/internal/model"
)

func sampleEntry() model.HistoryEntry {
	return model.HistoryEntry{
		ID:               "h1",
		Timestamp:        time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		TotalWords:       2,
		CorrectAnswers:   1,
		IncorrectAnswers: 1,
		Percentage:       50,
		Results: []model.AnswerRecord{
			{Word: model.WordPair{Source: "apple", Target: "olma"}, UserAnswer: "aple", IsCorrect: false},
			{Word: model.WordPair{Source: "book", Target: "kitob"}, UserAnswer: "book", IsCorrect: true},
		},
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	in := []model.HistoryEntry{sampleEntry()}
	data, err := MarshalHistory(in)
	require.NoError(t, err)

	out, err := UnmarshalHistory(data)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].TotalWords, out[0].TotalWords)
	assert.Equal(t, in[0].CorrectAnswers, out[0].CorrectAnswers)
	assert.Equal(t, in[0].IncorrectAnswers, out[0].IncorrectAnswers)
	assert.Equal(t, in[0].Percentage, out[0].Percentage)
	assert.Len(t, out[0].Results, len(in[0].Results))
	assert.True(t, in[0].Timestamp.Equal(out[0].Timestamp))
}

func TestHistoryPersistedFieldNames(t *testing.T) {
	data, err := MarshalHistory([]model.HistoryEntry{sampleEntry()})
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	for _, key := range []string{"id", "timestamp", "totalWords", "correctAnswers", "incorrectAnswers", "percentage", "results"} {
		assert.Contains(t, raw[0], key)
	}
	assert.Equal(t, "2026-02-03T04:05:06Z", raw[0]["timestamp"])
	result := raw[0]["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "aple", result["userAnswer"])
	assert.Equal(t, false, result["isCorrect"])
	word := result["word"].(map[string]any)
	assert.Equal(t, "apple", word["source"])
	assert.Equal(t, "olma", word["target"])
	assert.NotContains(t, word, "id")
}

func TestUnmarshalHistoryRejectsBadCounters(t *testing.T) {
	bad := `[{"id":"x","timestamp":"2026-01-01T00:00:00Z","totalWords":2,"correctAnswers":2,"incorrectAnswers":1,"percentage":100,"results":[]}]`
	_, err := UnmarshalHistory([]byte(bad))
	require.ErrorIs(t, err, ErrMalformedHistory)

	badPct := `[{"id":"x","timestamp":"2026-01-01T00:00:00Z","totalWords":2,"correctAnswers":1,"incorrectAnswers":1,"percentage":40,"results":[]}]`
	_, err = UnmarshalHistory([]byte(badPct))
	require.ErrorIs(t, err, ErrMalformedHistory)
}

func TestMarshalEmptyHistory(t *testing.T) {
	data, err := MarshalHistory(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
