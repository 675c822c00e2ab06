package graph

import (
	"slices"
	"strconv"

	"github.com/matzehuels/fluidc/pkg/errors"
)

// Built-in dataset names.
const (
	DatasetKarate    = "karate"
	DatasetTriangles = "triangles"
)

// karateAdjacency is Zachary's karate club, upper triangle only.
var karateAdjacency = [][]int{
	0:  {1, 2, 3, 4, 5, 6, 7, 8, 10, 11, 12, 13, 17, 19, 21, 31},
	1:  {2, 3, 7, 13, 17, 19, 21, 30},
	2:  {3, 7, 8, 9, 13, 27, 28, 32},
	3:  {7, 12, 13},
	4:  {6, 10},
	5:  {6, 10, 16},
	6:  {16},
	8:  {30, 32, 33},
	9:  {33},
	13: {33},
	14: {32, 33},
	15: {32, 33},
	18: {32, 33},
	19: {33},
	20: {32, 33},
	22: {32, 33},
	23: {25, 27, 29, 32, 33},
	24: {25, 27, 31},
	25: {31},
	26: {29, 33},
	27: {33},
	28: {31, 33},
	29: {32, 33},
	30: {32, 33},
	31: {32, 33},
	32: {33},
	33: nil,
}

// Datasets returns the names of the built-in datasets.
func Datasets() []string {
	return []string{DatasetKarate, DatasetTriangles}
}

// Dataset returns a built-in graph together with its conventional community
// count.
func Dataset(name string) (*Graph, int, error) {
	switch name {
	case DatasetKarate:
		return Karate(), 2, nil
	case DatasetTriangles:
		return Triangles(), 2, nil
	}
	return nil, 0, errors.New(errors.ErrCodeDatasetNotFound, "unknown dataset %q (available: %v)", name, Datasets())
}

// Karate returns Zachary's karate club graph (34 nodes, 78 edges) with node
// ids "0" through "33".
func Karate() *Graph {
	return fromAdjacency(karateAdjacency)
}

// Triangles returns two disjoint 3-cliques: 0-1-2 and 3-4-5.
func Triangles() *Graph {
	return fromAdjacency([][]int{
		0: {1, 2},
		1: {2},
		2: nil,
		3: {4, 5},
		4: {5},
		5: nil,
	})
}

func fromAdjacency(adj [][]int) *Graph {
	g := New()
	for i := range adj {
		g.ensure(strconv.Itoa(i))
	}
	for i, nbrs := range adj {
		for _, j := range slices.Sorted(slices.Values(nbrs)) {
			_ = g.AddEdge(strconv.Itoa(i), strconv.Itoa(j))
		}
	}
	return g
}
