package quiz

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/verte-zerg/lexdrill/internal/model"
)

// ErrMalformedHistory is returned when decoded history violates its summary invariants.
var ErrMalformedHistory = errors.New("malformed history entry")

// MarshalHistory encodes entries, newest first, in the persisted JSON shape.
func MarshalHistory(entries []model.HistoryEntry) ([]byte, error) {
	out := make([]model.HistoryEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].Results == nil {
			out[i].Results = []model.AnswerRecord{}
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

// UnmarshalHistory decodes the persisted JSON shape and checks each entry.
func UnmarshalHistory(data []byte) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	for i, e := range entries {
		if err := CheckEntry(e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return entries, nil
}

// CheckEntry verifies the counters of e against each other.
func CheckEntry(e model.HistoryEntry) error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: missing id", ErrMalformedHistory)
	case e.TotalWords <= 0:
		return fmt.Errorf("%w: totalWords must be positive", ErrMalformedHistory)
	case e.CorrectAnswers < 0 || e.IncorrectAnswers < 0:
		return fmt.Errorf("%w: negative counters", ErrMalformedHistory)
	case e.CorrectAnswers+e.IncorrectAnswers != e.TotalWords:
		return fmt.Errorf("%w: correct+incorrect != total", ErrMalformedHistory)
	case e.Percentage != Percentage(e.CorrectAnswers, e.TotalWords):
		return fmt.Errorf("%w: percentage %d does not match counters", ErrMalformedHistory, e.Percentage)
	}
	return nil
}
