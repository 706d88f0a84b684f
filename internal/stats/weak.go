package stats

import (
	"sort"

	"github.com/verte-zerg/lexdrill/internal/model"
)

// SelectWeakWords returns up to top words with at least one miss, lowest accuracy first.
func SelectWeakWords(aggs []model.WordAggregate, top int) []model.WordAggregate {
	candidates := make([]model.WordAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Incorrect > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := accuracy(candidates[i])
		aj := accuracy(candidates[j])
		if ai == aj {
			if candidates[i].Incorrect != candidates[j].Incorrect {
				return candidates[i].Incorrect > candidates[j].Incorrect
			}
			return candidates[i].Source < candidates[j].Source
		}
		return ai < aj
	})
	if top > 0 && top < len(candidates) {
		candidates = candidates[:top]
	}
	return candidates
}

func accuracy(agg model.WordAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
