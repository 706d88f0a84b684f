package quiz

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/lexdrill/internal/model"
)

// Shuffler produces random presentation orders.
type Shuffler struct {
	rnd *rand.Rand
}

// NewShuffler returns a Shuffler drawing from rnd. A nil rnd is seeded with the current time.
func NewShuffler(rnd *rand.Rand) *Shuffler {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Shuffler{rnd: rnd}
}

// Shuffle returns a uniformly random permutation of words using Fisher-Yates.
// The input slice is left untouched.
func (s *Shuffler) Shuffle(words []model.WordPair) []model.WordPair {
	out := make([]model.WordPair, len(words))
	copy(out, words)
	for i := len(out) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
