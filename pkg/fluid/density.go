package fluid

// Counts returns the number of nodes holding each label in [0,k).
// Unlabeled nodes and labels outside the range are not counted.
func Counts(labels []int, k int) []int {
	counts := make([]int, k)
	for _, l := range labels {
		if l >= 0 && l < k {
			counts[l]++
		}
	}
	return counts
}

// Densities returns 1/max(1,size) for every community, computed from scratch
// from the label vector.
func Densities(labels []int, k int) []float64 {
	return densitiesOf(Counts(labels, k))
}

func densitiesOf(counts []int) []float64 {
	d := make([]float64, len(counts))
	for c, n := range counts {
		d[c] = 1 / float64(max(1, n))
	}
	return d
}
