package quiz

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/lexdrill/internal/model"
)

// WordSource supplies the word list snapshot a session is built from.
type WordSource interface {
	Snapshot(ctx context.Context) ([]model.WordPair, error)
}

// HistoryWriter persists finished sessions, newest first.
// PrependHistory must be all-or-nothing and idempotent on entry ID.
type HistoryWriter interface {
	PrependHistory(ctx context.Context, entry model.HistoryEntry) error
}

// Engine starts sessions from a WordSource and records them to a HistoryWriter.
// It keeps no per-session state, so independent sessions can run side by side.
type Engine struct {
	words     WordSource
	history   HistoryWriter
	shuffler  *Shuffler
	direction model.Direction
	now       func() time.Time
	newID     func() string
	log       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the randomness source for shuffling.
func WithRand(rnd *rand.Rand) Option {
	return func(e *Engine) { e.shuffler = NewShuffler(rnd) }
}

// WithClock sets the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDFunc sets the history entry ID generator.
func WithIDFunc(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithDirection sets the prompt direction for new sessions.
func WithDirection(dir model.Direction) Option {
	return func(e *Engine) { e.direction = dir }
}

// NewEngine builds an Engine.
func NewEngine(words WordSource, history HistoryWriter, opts ...Option) *Engine {
	e := &Engine{
		words:     words,
		history:   history,
		direction: model.DirectionTargetToSource,
		now:       time.Now,
		newID:     uuid.NewString,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.shuffler == nil {
		e.shuffler = NewShuffler(nil)
	}
	e.log = e.log.With("component", "quiz")
	return e
}

// StartSession snapshots the word source once and starts a shuffled session.
func (e *Engine) StartSession(ctx context.Context) (*Session, error) {
	words, err := e.words.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot words: %w", err)
	}
	return e.StartSessionWith(ctx, words)
}

// StartSessionWith starts a shuffled session over words.
func (e *Engine) StartSessionWith(ctx context.Context, words []model.WordPair) (*Session, error) {
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	s, err := Start(e.shuffler.Shuffle(words), e.direction)
	if err != nil {
		return nil, err
	}
	s.startedAt = e.now()
	e.log.DebugContext(ctx, "session started",
		slog.Int("words", len(words)),
		slog.String("direction", string(s.direction)),
	)
	return s, nil
}

// SubmitAnswer grades text against the session's current word.
func (e *Engine) SubmitAnswer(s *Session, text string) (model.AnswerRecord, error) {
	return s.Submit(text)
}

// Finalize summarizes a finished session and prepends it to history.
// On a storage failure the session stays finished and unrecorded, and
// Finalize may be called again; the retry reuses the same entry.
func (e *Engine) Finalize(ctx context.Context, s *Session) (model.HistoryEntry, error) {
	if s == nil || !s.Finished() {
		return model.HistoryEntry{}, ErrNotFinished
	}
	if s.recorded {
		return model.HistoryEntry{}, ErrAlreadyRecorded
	}
	if s.pending == nil {
		entry := e.buildEntry(s)
		s.pending = &entry
	}
	entry := cloneEntry(*s.pending)
	if err := e.history.PrependHistory(ctx, entry); err != nil {
		e.log.WarnContext(ctx, "history write failed",
			slog.String("entry_id", entry.ID),
			slog.String("error", err.Error()),
		)
		return model.HistoryEntry{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.recorded = true
	e.log.InfoContext(ctx, "session recorded",
		slog.String("entry_id", entry.ID),
		slog.Int("total", entry.TotalWords),
		slog.Int("percentage", entry.Percentage),
	)
	return entry, nil
}

func (e *Engine) buildEntry(s *Session) model.HistoryEntry {
	records := s.Records()
	sum := Summarize(records)
	return model.HistoryEntry{
		ID:               e.newID(),
		Timestamp:        e.now().UTC(),
		Direction:        s.direction,
		TotalWords:       sum.Total,
		CorrectAnswers:   sum.Correct,
		IncorrectAnswers: sum.Incorrect,
		Percentage:       sum.Percentage,
		Results:          records,
	}
}

func cloneEntry(e model.HistoryEntry) model.HistoryEntry {
	e.Results = append([]model.AnswerRecord(nil), e.Results...)
	return e
}
