package graph

import (
	"cmp"
	"slices"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/matzehuels/fluidc/pkg/errors"
)

// Graph is an undirected simple graph with string node ids and a stable
// insertion order. It is the default [View] implementation.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent mutation.
type Graph struct {
	g      *simple.UndirectedGraph
	ids    []string
	index  map[string]int64
	labels map[string]string
	meta   map[string]map[string]any
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		g:      simple.NewUndirectedGraph(),
		index:  make(map[string]int64),
		labels: make(map[string]string),
		meta:   make(map[string]map[string]any),
	}
}

// AddNode appends a node. It fails with INVALID_NODE for empty or duplicate ids.
func (g *Graph) AddNode(id string) error {
	if err := errors.ValidateNodeID(id); err != nil {
		return err
	}
	if _, ok := g.index[id]; ok {
		return errors.New(errors.ErrCodeInvalidNode, "duplicate node id %q", id)
	}
	g.ensure(id)
	return nil
}

// EnsureNode adds id if it is not already present.
func (g *Graph) EnsureNode(id string) error {
	if _, ok := g.index[id]; ok {
		return nil
	}
	return g.AddNode(id)
}

func (g *Graph) ensure(id string) int64 {
	if idx, ok := g.index[id]; ok {
		return idx
	}
	idx := int64(len(g.ids))
	g.ids = append(g.ids, id)
	g.index[id] = idx
	g.g.AddNode(simple.Node(idx))
	return idx
}

// SetLabel attaches a display label to an existing node.
func (g *Graph) SetLabel(id, label string) error {
	if _, ok := g.index[id]; !ok {
		return errors.New(errors.ErrCodeInvalidNode, "unknown node %q", id)
	}
	if label == "" {
		delete(g.labels, id)
		return nil
	}
	g.labels[id] = label
	return nil
}

// Label returns the display label of id, or id itself when none is set.
func (g *Graph) Label(id string) string {
	if l, ok := g.labels[id]; ok {
		return l
	}
	return id
}

// AddEdge connects two existing nodes. Self-loops are ignored and repeated
// edges are idempotent, so the result is always a simple graph.
func (g *Graph) AddEdge(a, b string) error {
	ia, ok := g.index[a]
	if !ok {
		return errors.New(errors.ErrCodeInvalidNode, "unknown node %q", a)
	}
	ib, ok := g.index[b]
	if !ok {
		return errors.New(errors.ErrCodeInvalidNode, "unknown node %q", b)
	}
	if ia == ib {
		return nil
	}
	g.g.SetEdge(simple.Edge{F: simple.Node(ia), T: simple.Node(ib)})
	return nil
}

// Nodes returns node ids in insertion order. The slice is a copy.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.ids)
}

// Size returns the number of nodes.
func (g *Graph) Size() int {
	return len(g.ids)
}

// Index returns the position of id in Nodes().
func (g *Graph) Index(id string) (int, bool) {
	idx, ok := g.index[id]
	return int(idx), ok
}

// Neighbors returns the neighbors of id ordered by their position in Nodes().
func (g *Graph) Neighbors(id string) ([]string, error) {
	idx, ok := g.index[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidNode, "unknown node %q", id)
	}
	nbrs := g.neighborIndices(idx)
	out := make([]string, len(nbrs))
	for i, n := range nbrs {
		out[i] = g.ids[n]
	}
	return out, nil
}

// NeighborIndices is Neighbors keyed by position rather than id.
func (g *Graph) NeighborIndices(i int) ([]int, error) {
	if i < 0 || i >= len(g.ids) {
		return nil, errors.New(errors.ErrCodeInvalidNode, "node index %d out of range", i)
	}
	return g.neighborIndices(int64(i)), nil
}

func (g *Graph) neighborIndices(idx int64) []int {
	it := g.g.From(idx)
	out := make([]int, 0, it.Len())
	for it.Next() {
		out = append(out, int(it.Node().ID()))
	}
	slices.Sort(out)
	return out
}

// Degree returns the number of neighbors of id.
func (g *Graph) Degree(id string) (int, error) {
	idx, ok := g.index[id]
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidNode, "unknown node %q", id)
	}
	return g.g.From(idx).Len(), nil
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return g.g.Edges().Len()
}

// Edges returns every edge once, with From before To in node order, sorted.
func (g *Graph) Edges() []Edge {
	type pair struct{ a, b int64 }
	pairs := make([]pair, 0, g.EdgeCount())
	it := g.g.Edges()
	for it.Next() {
		e := it.Edge()
		a, b := e.From().ID(), e.To().ID()
		if a > b {
			a, b = b, a
		}
		pairs = append(pairs, pair{a, b})
	}
	slices.SortFunc(pairs, func(x, y pair) int {
		if c := cmp.Compare(x.a, y.a); c != 0 {
			return c
		}
		return cmp.Compare(x.b, y.b)
	})
	out := make([]Edge, len(pairs))
	for i, p := range pairs {
		out[i] = Edge{From: g.ids[p.a], To: g.ids[p.b]}
	}
	return out
}

// Gonum exposes the underlying gonum graph. Gonum node ids are positions
// in Nodes().
func (g *Graph) Gonum() gonum.Undirected {
	return g.g
}

// Ensure Graph implements View.
var _ View = (*Graph)(nil)
