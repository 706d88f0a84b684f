package quiz

import "github.com/verte-zerg/lexdrill/internal/model"

// Summary holds the counters derived from a result set.
type Summary struct {
	Total      int
	Correct    int
	Incorrect  int
	Percentage int
}

// Summarize counts correct answers and computes the rounded percentage.
// An empty result set yields a zero Summary.
func Summarize(records []model.AnswerRecord) Summary {
	sum := Summary{Total: len(records)}
	for _, r := range records {
		if r.IsCorrect {
			sum.Correct++
		}
	}
	sum.Incorrect = sum.Total - sum.Correct
	sum.Percentage = Percentage(sum.Correct, sum.Total)
	return sum
}

// Percentage returns round(100*correct/total), rounding halves up.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}
