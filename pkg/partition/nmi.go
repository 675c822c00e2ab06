package partition

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// NMI returns the normalized mutual information between two labelings of the
// same nodes, normalized by the arithmetic mean of their entropies. The
// result lies in [0,1]; identical partitions score 1.
//
// Two labelings that each put every node in one cluster score 1. Labelings of
// different lengths, or empty ones, score 0.
func NMI(a, b []int) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0
	}

	ca, cb := compact(a), compact(b)
	ka, kb := maxOf(ca)+1, maxOf(cb)+1
	if ka == 1 && kb == 1 {
		return 1
	}

	joint := make([]float64, ka*kb)
	pa := make([]float64, ka)
	pb := make([]float64, kb)
	inv := 1 / float64(n)
	for i := range ca {
		joint[ca[i]*kb+cb[i]] += inv
		pa[ca[i]] += inv
		pb[cb[i]] += inv
	}

	var mi float64
	for x := 0; x < ka; x++ {
		for y := 0; y < kb; y++ {
			if p := joint[x*kb+y]; p > 0 {
				mi += p * math.Log(p/(pa[x]*pb[y]))
			}
		}
	}

	norm := (stat.Entropy(pa) + stat.Entropy(pb)) / 2
	if norm <= 0 {
		return 0
	}
	return math.Min(1, math.Max(0, mi/norm))
}

// compact maps arbitrary labels (negative ones included) onto 0..m-1.
func compact(labels []int) []int {
	ids := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		id, ok := ids[l]
		if !ok {
			id = len(ids)
			ids[l] = id
		}
		out[i] = id
	}
	return out
}

func maxOf(xs []int) int {
	m := 0
	for _, x := range xs {
		m = max(m, x)
	}
	return m
}
