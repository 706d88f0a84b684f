package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/lexdrill/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "lexdrill.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func word(id, source, target string) model.WordPair {
	return model.WordPair{ID: id, Source: source, Target: target, CreatedAt: time.Unix(0, 0).UTC()}
}

func entry(id string, at time.Time, results ...model.AnswerRecord) model.HistoryEntry {
	correct := 0
	for _, r := range results {
		if r.IsCorrect {
			correct++
		}
	}
	total := len(results)
	return model.HistoryEntry{
		ID:               id,
		Timestamp:        at,
		Direction:        model.DirectionTargetToSource,
		TotalWords:       total,
		CorrectAnswers:   correct,
		IncorrectAnswers: total - correct,
		Percentage:       (200*correct + total) / (2 * total),
		Results:          results,
	}
}

func TestWordsCRUD(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	n, err := st.AddWords(ctx, []model.WordPair{
		word("aaa-1", "apple", "olma"),
		word("bbb-2", "book", "kitob"),
		word("ccc-3", "apple", "olma"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n, "exact duplicate pair is skipped")

	words, err := st.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, "apple", words[0].Source)
	assert.Equal(t, "kitob", words[1].Target)

	found, err := st.FindWords(ctx, "bbb")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "bbb-2", found[0].ID)

	require.NoError(t, st.DeleteWord(ctx, "bbb-2"))
	require.ErrorIs(t, st.DeleteWord(ctx, "bbb-2"), ErrNotFound)

	count, err := st.CountWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	cleared, err := st.ClearWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)
	words, err = st.ListWords(ctx)
	require.NoError(t, err)
	assert.Empty(t, words)
}

func TestPrependHistoryNewestFirst(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	first := entry("h1", base,
		model.AnswerRecord{Word: word("w1", "apple", "olma"), UserAnswer: "aple", IsCorrect: false},
		model.AnswerRecord{Word: word("w2", "book", "kitob"), UserAnswer: "book", IsCorrect: true},
	)
	second := entry("h2", base.Add(time.Hour),
		model.AnswerRecord{Word: word("w2", "book", "kitob"), UserAnswer: "book", IsCorrect: true},
	)
	require.NoError(t, st.PrependHistory(ctx, first))
	require.NoError(t, st.PrependHistory(ctx, second))

	entries, err := st.ListHistory(ctx, model.HistoryConfig{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "h2", entries[0].ID)
	assert.Equal(t, "h1", entries[1].ID)

	got := entries[1]
	assert.True(t, got.Timestamp.Equal(base))
	assert.Equal(t, 2, got.TotalWords)
	assert.Equal(t, 1, got.CorrectAnswers)
	assert.Equal(t, 50, got.Percentage)
	assert.Equal(t, model.DirectionTargetToSource, got.Direction)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "apple", got.Results[0].Word.Source)
	assert.Equal(t, "aple", got.Results[0].UserAnswer)
	assert.False(t, got.Results[0].IsCorrect)
	assert.True(t, got.Results[1].IsCorrect)
}

func TestPrependHistoryIsIdempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	e := entry("dup", time.Now(), model.AnswerRecord{Word: word("w1", "a", "b"), UserAnswer: "a", IsCorrect: true})

	require.NoError(t, st.PrependHistory(ctx, e))
	require.NoError(t, st.PrependHistory(ctx, e))

	entries, err := st.ListHistory(ctx, model.HistoryConfig{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Results, 1)
}

func TestHistorySurvivesWordDeletion(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	w := word("w1", "apple", "olma")
	_, err := st.AddWords(ctx, []model.WordPair{w})
	require.NoError(t, err)
	require.NoError(t, st.PrependHistory(ctx, entry("h1", time.Now(), model.AnswerRecord{Word: w, UserAnswer: "apple", IsCorrect: true})))
	require.NoError(t, st.DeleteWord(ctx, "w1"))

	entries, err := st.ListHistory(ctx, model.HistoryConfig{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "olma", entries[0].Results[0].Word.Target)
}

func TestListHistoryFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		e := entry(fmt.Sprintf("h%d", i), base.Add(time.Duration(i)*24*time.Hour),
			model.AnswerRecord{Word: word("w", "a", "b"), UserAnswer: "a", IsCorrect: true})
		require.NoError(t, st.PrependHistory(ctx, e))
	}

	last, err := st.ListHistory(ctx, model.HistoryConfig{Last: 2})
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "h3", last[0].ID)
	assert.Equal(t, "h2", last[1].ID)

	since := base.Add(36 * time.Hour)
	recent, err := st.ListHistory(ctx, model.HistoryConfig{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 2)
}

func TestClearAndTruncateHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		e := entry(fmt.Sprintf("h%d", i), time.Now(),
			model.AnswerRecord{Word: word("w", "a", "b"), UserAnswer: "a", IsCorrect: true})
		require.NoError(t, st.PrependHistory(ctx, e))
	}

	removed, err := st.TruncateHistory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	entries, err := st.ListHistory(ctx, model.HistoryConfig{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "h2", entries[0].ID)

	aggs, err := st.ListWordAggregates(ctx, []string{"h0", "h1"})
	require.NoError(t, err)
	assert.Empty(t, aggs, "truncated results are removed")

	removed, err = st.ClearHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	entries, err = st.ListHistory(ctx, model.HistoryConfig{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWordAggregatesAndMissedWords(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	apple := word("w1", "apple", "olma")
	book := word("w2", "book", "kitob")
	pen := word("w3", "pen", "ruchka")
	_, err := st.AddWords(ctx, []model.WordPair{apple, book, pen})
	require.NoError(t, err)

	require.NoError(t, st.PrependHistory(ctx, entry("old", time.Now(),
		model.AnswerRecord{Word: pen, UserAnswer: "pan", IsCorrect: false},
		model.AnswerRecord{Word: apple, UserAnswer: "apple", IsCorrect: true},
	)))
	require.NoError(t, st.PrependHistory(ctx, entry("new", time.Now(),
		model.AnswerRecord{Word: apple, UserAnswer: "aple", IsCorrect: false},
		model.AnswerRecord{Word: book, UserAnswer: "book", IsCorrect: true},
	)))

	aggs, err := st.ListWordAggregates(ctx, []string{"old", "new"})
	require.NoError(t, err)
	byID := map[string]model.WordAggregate{}
	for _, a := range aggs {
		byID[a.WordID] = a
	}
	assert.Equal(t, 1, byID["w1"].Correct)
	assert.Equal(t, 1, byID["w1"].Incorrect)
	assert.Equal(t, "pen", byID["w3"].Source)

	missed, err := NewMissedWordSource(st, 1).Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, missed, 1)
	assert.Equal(t, "apple", missed[0].Source)

	missed, err = st.MissedWords(ctx, 2)
	require.NoError(t, err)
	require.Len(t, missed, 2)
	assert.Equal(t, "apple", missed[0].Source)
	assert.Equal(t, "pen", missed[1].Source)

	missed, err = st.MissedWords(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, missed)
}
