// Package quiz implements the vocabulary quiz session engine.
package quiz

import (
	"strings"
	"time"

	"github.com/verte-zerg/lexdrill/internal/model"
)

// Session walks one shuffled word order, grading one answer per word.
// A Session is driven by a single caller and is not safe for concurrent use.
type Session struct {
	order     []model.WordPair
	cursor    int
	records   []model.AnswerRecord
	direction model.Direction
	startedAt time.Time

	// pending is the history entry built on the first Finalize attempt.
	pending  *model.HistoryEntry
	recorded bool
}

// Start begins a session over order. The order must not be empty.
func Start(order []model.WordPair, dir model.Direction) (*Session, error) {
	if len(order) == 0 {
		return nil, ErrNoWords
	}
	if !dir.Valid() {
		dir = model.DirectionTargetToSource
	}
	own := make([]model.WordPair, len(order))
	copy(own, order)
	return &Session{
		order:     own,
		records:   make([]model.AnswerRecord, 0, len(own)),
		direction: dir,
	}, nil
}

// Current returns the word awaiting an answer.
func (s *Session) Current() (model.WordPair, error) {
	if s.Finished() {
		return model.WordPair{}, ErrSessionFinished
	}
	return s.order[s.cursor], nil
}

// Prompt returns the text shown for the current word.
func (s *Session) Prompt() string {
	w, err := s.Current()
	if err != nil {
		return ""
	}
	if s.direction == model.DirectionSourceToTarget {
		return w.Source
	}
	return w.Target
}

// Submit grades answer against the current word and advances.
// Rejected submissions leave the session unchanged.
func (s *Session) Submit(answer string) (model.AnswerRecord, error) {
	if s.Finished() {
		return model.AnswerRecord{}, ErrSessionFinished
	}
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return model.AnswerRecord{}, ErrEmptyAnswer
	}
	word := s.order[s.cursor]
	rec := model.AnswerRecord{
		Word:       word,
		UserAnswer: trimmed,
		IsCorrect:  Grade(expectedFor(word, s.direction), trimmed),
	}
	s.records = append(s.records, rec)
	s.cursor++
	return rec, nil
}

// Expected returns the answer expected for w in this session's direction.
func (s *Session) Expected(w model.WordPair) string {
	return expectedFor(w, s.direction)
}

func expectedFor(w model.WordPair, dir model.Direction) string {
	if dir == model.DirectionSourceToTarget {
		return w.Target
	}
	return w.Source
}

// Finished reports whether every word has been answered.
func (s *Session) Finished() bool {
	return s.cursor == len(s.order)
}

// Recorded reports whether the session has been written to history.
func (s *Session) Recorded() bool {
	return s.recorded
}

// Progress returns the number of answered words and the session length.
func (s *Session) Progress() (answered, total int) {
	return s.cursor, len(s.order)
}

// Score returns the number of correct answers so far.
func (s *Session) Score() int {
	n := 0
	for _, r := range s.records {
		if r.IsCorrect {
			n++
		}
	}
	return n
}

// Direction returns the prompt direction of the session.
func (s *Session) Direction() model.Direction {
	return s.direction
}

// StartedAt returns when the session was started by an Engine, or the zero time.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Records returns a copy of the answers so far.
func (s *Session) Records() []model.AnswerRecord {
	out := make([]model.AnswerRecord, len(s.records))
	copy(out, s.records)
	return out
}
