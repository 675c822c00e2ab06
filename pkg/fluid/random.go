package fluid

import "math/rand/v2"

// Source is the random capability a run consumes. It is called only to pick
// seeds and, under TieRandom, to break ties.
type Source interface {
	// SampleDistinct returns k distinct integers from [0, n) in random order.
	SampleDistinct(k, n int) []int
	// ChooseUniform returns an integer from [0, n).
	ChooseUniform(n int) int
}

// NewSource returns a PCG-backed Source. Equal seeds yield equal streams.
func NewSource(seed uint64) Source {
	return &pcgSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type pcgSource struct {
	rng *rand.Rand
}

func (s *pcgSource) SampleDistinct(k, n int) []int {
	k = min(max(k, 0), n)
	// Partial Fisher-Yates over a sparse permutation.
	swapped := make(map[int]int, 2*k)
	at := func(i int) int {
		if v, ok := swapped[i]; ok {
			return v
		}
		return i
	}
	out := make([]int, k)
	for i := 0; i < k; i++ {
		j := i + s.rng.IntN(n-i)
		out[i] = at(j)
		swapped[j] = at(i)
	}
	return out
}

func (s *pcgSource) ChooseUniform(n int) int {
	return s.rng.IntN(n)
}

// sourceFor resolves the Source a run draws from.
func sourceFor(o Options) Source {
	switch {
	case o.Source != nil:
		return o.Source
	case o.Seed != nil:
		return NewSource(*o.Seed)
	default:
		return NewSource(rand.Uint64())
	}
}
