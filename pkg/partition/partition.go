package partition

import "slices"

// Groups returns the member positions of each label in [0,k), in position
// order. Negative labels are skipped.
func Groups(labels []int, k int) [][]int {
	out := make([][]int, k)
	for i, l := range labels {
		if l >= 0 && l < k {
			out[l] = append(out[l], i)
		}
	}
	return out
}

// NonEmpty drops empty groups, keeping order.
func NonEmpty(groups [][]int) [][]int {
	return slices.DeleteFunc(slices.Clone(groups), func(g []int) bool { return len(g) == 0 })
}

// Relabel renumbers labels by order of first appearance, so that two
// labelings describing the same partition compare equal. Negative labels are
// kept as they are.
func Relabel(labels []int) []int {
	next := 0
	seen := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		if l < 0 {
			out[i] = l
			continue
		}
		id, ok := seen[l]
		if !ok {
			id = next
			seen[l] = id
			next++
		}
		out[i] = id
	}
	return out
}

// Equivalent reports whether a and b describe the same partition up to a
// renaming of labels.
func Equivalent(a, b []int) bool {
	return len(a) == len(b) && slices.Equal(Relabel(a), Relabel(b))
}
