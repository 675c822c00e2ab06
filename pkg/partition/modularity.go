package partition

import (
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/matzehuels/fluidc/pkg/graph"
)

// Modularity returns the Newman-Girvan modularity (resolution 1) of labels
// on g. labels is aligned with g.Nodes(); unlabeled nodes count as
// singleton communities. A graph without edges scores 0.
func Modularity(g *graph.Graph, labels []int) float64 {
	if g.EdgeCount() == 0 || len(labels) != g.Size() {
		return 0
	}

	byLabel := make(map[int][]gonum.Node)
	var order []int
	var communities [][]gonum.Node
	for i, l := range labels {
		node := simple.Node(int64(i))
		if l < 0 {
			communities = append(communities, []gonum.Node{node})
			continue
		}
		if _, ok := byLabel[l]; !ok {
			order = append(order, l)
		}
		byLabel[l] = append(byLabel[l], node)
	}
	for _, l := range order {
		communities = append(communities, byLabel[l])
	}

	return community.Q(g.Gonum(), communities, 1)
}
