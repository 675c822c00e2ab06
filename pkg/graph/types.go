package graph

// Document is the canonical serialization format for undirected graphs.
// Used for input files, API request bodies, storage and cache keys.
type Document struct {
	Nodes []Node `json:"nodes" bson:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" bson:"edges" yaml:"edges"`
}

// Node is a serialized vertex.
type Node struct {
	ID    string         `json:"id" bson:"id" yaml:"id"`
	Label string         `json:"label,omitempty" bson:"label,omitempty" yaml:"label,omitempty"` // Display label (defaults to ID)
	Meta  map[string]any `json:"meta,omitempty" bson:"meta,omitempty" yaml:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is an undirected edge between two node ids.
type Edge struct {
	From string `json:"from" bson:"from" yaml:"from"`
	To   string `json:"to" bson:"to" yaml:"to"`
}

// View is the read-only graph access the propagator depends on.
//
// Nodes must return the same order on every call for the duration of a run:
// the order is the visiting order for node-sequential rounds and therefore
// part of the result.
type View interface {
	Nodes() []string
	Neighbors(id string) ([]string, error)
	Size() int
}
