// Package model defines shared data structures.
package model

import "time"

// Direction selects which side of a word pair is shown and which is typed.
type Direction string

const (
	// DirectionTargetToSource shows the translation and expects the source term.
	DirectionTargetToSource Direction = "target-source"
	// DirectionSourceToTarget shows the source term and expects the translation.
	DirectionSourceToTarget Direction = "source-target"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionTargetToSource || d == DirectionSourceToTarget
}

// Config defines quiz settings.
type Config struct {
	Direction      Direction
	Mistakes       bool
	MistakesWindow int
	Seed           int64
}

// HistoryConfig defines filters and options for history output.
type HistoryConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
	MissedTop   int
}

// WordPair is one vocabulary entry.
type WordPair struct {
	ID        string    `json:"id,omitempty"`
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"-"`
}

// AnswerRecord is the graded answer to one question of a session.
type AnswerRecord struct {
	Word       WordPair `json:"word"`
	UserAnswer string   `json:"userAnswer"`
	IsCorrect  bool     `json:"isCorrect"`
}

// HistoryEntry summarizes one finished session.
type HistoryEntry struct {
	ID               string         `json:"id"`
	Timestamp        time.Time      `json:"timestamp"`
	Direction        Direction      `json:"direction,omitempty"`
	TotalWords       int            `json:"totalWords"`
	CorrectAnswers   int            `json:"correctAnswers"`
	IncorrectAnswers int            `json:"incorrectAnswers"`
	Percentage       int            `json:"percentage"`
	Results          []AnswerRecord `json:"results"`
}

// Missed returns the incorrect answers in presentation order.
func (e HistoryEntry) Missed() []AnswerRecord {
	var out []AnswerRecord
	for _, r := range e.Results {
		if !r.IsCorrect {
			out = append(out, r)
		}
	}
	return out
}

// WordAggregate aggregates answers for one word across sessions.
type WordAggregate struct {
	WordID    string
	Source    string
	Target    string
	Correct   int
	Incorrect int
}
