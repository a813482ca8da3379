package surprise

import (
	"math"

	"github.com/jsphweid/surprisal/markov"
	"github.com/jsphweid/surprisal/sequence"
)

// FallbackProbability is charged for transitions the model never
// observed. It is used as-is rather than folded into the row, so every
// seen transition keeps its exact count/total probability and an
// unseen one costs about 19.93 bits.
const FallbackProbability = 1e-6

// Score computes the surprisal, in bits, of each transition in seq
// under m. The result holds len(seq)-1 entries; sequences with fewer
// than two notes have no transitions and yield nil.
func Score(seq sequence.NoteSequence, m markov.Model) []float64 {
	if len(seq) < 2 {
		return nil
	}
	scores := make([]float64, 0, len(seq)-1)
	for i := 0; i+1 < len(seq); i++ {
		p := m.ProbOr(seq[i], seq[i+1], FallbackProbability)
		s := -math.Log2(p)
		if s == 0 {
			s = 0 // a certain transition scores +0, not -0
		}
		scores = append(scores, s)
	}
	return scores
}
