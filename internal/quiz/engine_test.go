package quiz

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/lexdrill/internal/model"
)

type fakeWords struct {
	words []model.WordPair
	err   error
	calls int
}

func (f *fakeWords) Snapshot(context.Context) ([]model.WordPair, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.WordPair(nil), f.words...), nil
}

type fakeHistory struct {
	entries []model.HistoryEntry
	fail    int
}

func (f *fakeHistory) PrependHistory(_ context.Context, e model.HistoryEntry) error {
	if f.fail > 0 {
		f.fail--
		return errors.New("disk full")
	}
	for _, existing := range f.entries {
		if existing.ID == e.ID {
			return nil
		}
	}
	f.entries = append([]model.HistoryEntry{e}, f.entries...)
	return nil
}

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestEngine(words *fakeWords, hist *fakeHistory, ids ...string) *Engine {
	n := 0
	return NewEngine(words, hist,
		WithRand(rand.New(rand.NewSource(3))),
		WithClock(func() time.Time { return fixedNow }),
		WithIDFunc(func() string {
			id := ids[n%len(ids)]
			n++
			return id
		}),
	)
}

func sampleWords() []model.WordPair {
	return []model.WordPair{
		{ID: "1", Source: "apple", Target: "olma"},
		{ID: "2", Source: "book", Target: "kitob"},
	}
}

// answerAll answers each prompt from the map keyed by prompt text.
func answerAll(t *testing.T, e *Engine, s *Session, answers map[string]string) {
	t.Helper()
	for !s.Finished() {
		prompt := s.Prompt()
		ans, ok := answers[prompt]
		require.True(t, ok, "no answer for prompt %q", prompt)
		_, err := e.SubmitAnswer(s, ans)
		require.NoError(t, err)
	}
}

func TestFullSessionAllCorrect(t *testing.T) {
	hist := &fakeHistory{}
	e := newTestEngine(&fakeWords{words: sampleWords()}, hist, "h1")
	s, err := e.StartSession(context.Background())
	require.NoError(t, err)

	answerAll(t, e, s, map[string]string{"olma": "apple", "kitob": "book"})
	entry, err := e.Finalize(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, "h1", entry.ID)
	assert.Equal(t, fixedNow, entry.Timestamp)
	assert.Equal(t, 2, entry.TotalWords)
	assert.Equal(t, 2, entry.CorrectAnswers)
	assert.Equal(t, 0, entry.IncorrectAnswers)
	assert.Equal(t, 100, entry.Percentage)
	require.Len(t, hist.entries, 1)
	assert.Equal(t, entry, hist.entries[0])
}

func TestFullSessionOneMiss(t *testing.T) {
	hist := &fakeHistory{}
	e := newTestEngine(&fakeWords{words: sampleWords()}, hist, "h1")
	s, err := e.StartSession(context.Background())
	require.NoError(t, err)

	answerAll(t, e, s, map[string]string{"olma": "aple", "kitob": "book"})
	entry, err := e.Finalize(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 2, entry.TotalWords)
	assert.Equal(t, 1, entry.CorrectAnswers)
	assert.Equal(t, 1, entry.IncorrectAnswers)
	assert.Equal(t, 50, entry.Percentage)
	missed := entry.Missed()
	require.Len(t, missed, 1)
	assert.Equal(t, "apple", missed[0].Word.Source)
	assert.Equal(t, "aple", missed[0].UserAnswer)
}

func TestStartSessionWithEmptyWords(t *testing.T) {
	hist := &fakeHistory{}
	e := newTestEngine(&fakeWords{}, hist, "h1")
	_, err := e.StartSession(context.Background())
	require.ErrorIs(t, err, ErrPrecondition)

	_, err = e.StartSessionWith(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoWords)
	assert.Empty(t, hist.entries)
}

func TestStartSessionSnapshotError(t *testing.T) {
	e := newTestEngine(&fakeWords{err: errors.New("db closed")}, &fakeHistory{}, "h1")
	_, err := e.StartSession(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db closed")
}

func TestSessionIgnoresLaterStoreChanges(t *testing.T) {
	src := &fakeWords{words: sampleWords()}
	e := newTestEngine(src, &fakeHistory{}, "h1")
	s, err := e.StartSession(context.Background())
	require.NoError(t, err)
	src.words = append(src.words, model.WordPair{ID: "3", Source: "pen", Target: "ruchka"})

	_, total := s.Progress()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, src.calls)
}

func TestFinalizeBeforeFinish(t *testing.T) {
	hist := &fakeHistory{}
	e := newTestEngine(&fakeWords{words: sampleWords()}, hist, "h1")
	s, err := e.StartSession(context.Background())
	require.NoError(t, err)

	_, err = e.Finalize(context.Background(), s)
	require.ErrorIs(t, err, ErrPrecondition)
	require.ErrorIs(t, err, ErrNotFinished)
	_, err = e.Finalize(context.Background(), nil)
	require.ErrorIs(t, err, ErrNotFinished)
	assert.Empty(t, hist.entries)
}

func TestFinalizeTwiceIsRejected(t *testing.T) {
	hist := &fakeHistory{}
	e := newTestEngine(&fakeWords{words: sampleWords()}, hist, "h1", "h2")
	s, err := e.StartSession(context.Background())
	require.NoError(t, err)
	answerAll(t, e, s, map[string]string{"olma": "apple", "kitob": "book"})

	_, err = e.Finalize(context.Background(), s)
	require.NoError(t, err)
	_, err = e.Finalize(context.Background(), s)
	require.ErrorIs(t, err, ErrAlreadyRecorded)
	assert.Len(t, hist.entries, 1)
	assert.True(t, s.Recorded())
}

func TestFinalizeRetriesAfterStorageFailure(t *testing.T) {
	hist := &fakeHistory{fail: 1}
	e := newTestEngine(&fakeWords{words: sampleWords()}, hist, "h1", "h2")
	s, err := e.StartSession(context.Background())
	require.NoError(t, err)
	answerAll(t, e, s, map[string]string{"olma": "apple", "kitob": "bok"})
	recordsBefore := s.Records()

	_, err = e.Finalize(context.Background(), s)
	require.ErrorIs(t, err, ErrStorage)
	assert.False(t, s.Recorded())
	assert.Empty(t, hist.entries)

	entry, err := e.Finalize(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "h1", entry.ID, "retry must reuse the pending entry")
	assert.Equal(t, recordsBefore, entry.Results)
	assert.Len(t, hist.entries, 1)
}

func TestHistoryIsNewestFirst(t *testing.T) {
	hist := &fakeHistory{}
	e := newTestEngine(&fakeWords{words: sampleWords()}, hist, "first", "second")
	for i := 0; i < 2; i++ {
		s, err := e.StartSession(context.Background())
		require.NoError(t, err)
		answerAll(t, e, s, map[string]string{"olma": "apple", "kitob": "book"})
		_, err = e.Finalize(context.Background(), s)
		require.NoError(t, err)
	}
	require.Len(t, hist.entries, 2)
	assert.Equal(t, "second", hist.entries[0].ID)
	assert.Equal(t, "first", hist.entries[1].ID)
}

func TestIndependentSessions(t *testing.T) {
	e := newTestEngine(&fakeWords{words: sampleWords()}, &fakeHistory{}, "a", "b")
	s1, err := e.StartSession(context.Background())
	require.NoError(t, err)
	s2, err := e.StartSession(context.Background())
	require.NoError(t, err)

	_, err = e.SubmitAnswer(s1, "whatever")
	require.NoError(t, err)
	answered, _ := s2.Progress()
	assert.Equal(t, 0, answered)
}

func TestEntryDecoupledFromWordMutation(t *testing.T) {
	words := sampleWords()
	e := newTestEngine(&fakeWords{words: words}, &fakeHistory{}, "h1")
	s, err := e.StartSessionWith(context.Background(), words)
	require.NoError(t, err)
	words[0].Source = "changed"
	answerAll(t, e, s, map[string]string{"olma": "apple", "kitob": "book"})
	entry, err := e.Finalize(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 100, entry.Percentage)
}
