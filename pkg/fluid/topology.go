package fluid

import (
	"cmp"
	"slices"

	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/graph"
)

// indexedView is implemented by views that can answer adjacency by position,
// such as *graph.Graph. It saves a map lookup per edge.
type indexedView interface {
	NeighborIndices(i int) ([]int, error)
}

// topology is the index-based snapshot of a View taken once per run.
type topology struct {
	nodes []string
	index map[string]int
	adj   [][]int
}

func newTopology(g graph.View) (*topology, error) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyGraph, "graph has no nodes")
	}
	if g.Size() != len(nodes) {
		return nil, errors.New(errors.ErrCodeInternal, "view reports %d nodes but lists %d", g.Size(), len(nodes))
	}

	t := &topology{
		nodes: nodes,
		index: make(map[string]int, len(nodes)),
		adj:   make([][]int, len(nodes)),
	}
	for i, id := range nodes {
		if _, dup := t.index[id]; dup {
			return nil, errors.New(errors.ErrCodeInvalidNode, "duplicate node %q in view", id)
		}
		t.index[id] = i
	}

	if iv, ok := g.(indexedView); ok {
		for i := range nodes {
			nbrs, err := iv.NeighborIndices(i)
			if err != nil {
				return nil, err
			}
			t.adj[i] = clean(i, nbrs)
		}
		return t, nil
	}

	for i, id := range nodes {
		nbrs, err := g.Neighbors(id)
		if err != nil {
			return nil, err
		}
		idx := make([]int, 0, len(nbrs))
		for _, nb := range nbrs {
			j, ok := t.index[nb]
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidNode, "neighbor %q of %q is not in the graph", nb, id)
			}
			idx = append(idx, j)
		}
		t.adj[i] = clean(i, idx)
	}
	return t, nil
}

// clean sorts, deduplicates and drops self-loops.
func clean(self int, nbrs []int) []int {
	out := slices.Clone(nbrs)
	slices.Sort(out)
	out = slices.Compact(out)
	if i, found := slices.BinarySearch(out, self); found {
		out = slices.Delete(out, i, i+1)
	}
	return out
}

func (t *topology) size() int { return len(t.nodes) }

// visitOrder returns node positions in the order rounds visit them.
func (t *topology) visitOrder(o Order) []int {
	order := make([]int, t.size())
	for i := range order {
		order[i] = i
	}
	if o == OrderDegree {
		slices.SortStableFunc(order, func(a, b int) int {
			return cmp.Compare(len(t.adj[b]), len(t.adj[a]))
		})
	}
	return order
}

// resolve maps node ids to positions, rejecting unknown and repeated ids.
func (t *topology) resolve(ids []string) ([]int, error) {
	out := make([]int, len(ids))
	seen := make(map[int]bool, len(ids))
	for i, id := range ids {
		j, ok := t.index[id]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidNode, "unknown node %q", id)
		}
		if seen[j] {
			return nil, errors.New(errors.ErrCodeInvalidNode, "node %q listed twice", id)
		}
		seen[j] = true
		out[i] = j
	}
	return out, nil
}
