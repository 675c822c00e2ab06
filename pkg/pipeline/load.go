package pipeline

import (
	"strings"

	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/graph"
)

// Input names a graph. Exactly one field must be set.
type Input struct {
	Path     string          `json:"-"`                   // node-link JSON or edge list file
	Dataset  string          `json:"dataset,omitempty"`   // built-in dataset name
	Graph    *graph.Document `json:"graph,omitempty"`     // inline node-link document
	EdgeList string          `json:"edge_list,omitempty"` // inline edge list
}

// Source describes the input for logs and history.
func (in Input) Source() string {
	switch {
	case in.Path != "":
		return in.Path
	case in.Dataset != "":
		return "dataset:" + in.Dataset
	case in.Graph != nil:
		return "inline:json"
	case in.EdgeList != "":
		return "inline:edgelist"
	}
	return ""
}

// Load reads the graph named by in.
func Load(in Input) (*graph.Graph, error) {
	set := 0
	for _, ok := range []bool{in.Path != "", in.Dataset != "", in.Graph != nil, in.EdgeList != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "exactly one of path, dataset, graph or edge_list is required")
	}

	switch {
	case in.Path != "":
		if err := errors.ValidatePath(in.Path); err != nil {
			return nil, err
		}
		return graph.ReadFile(in.Path)
	case in.Dataset != "":
		g, _, err := graph.Dataset(in.Dataset)
		return g, err
	case in.Graph != nil:
		g, err := graph.FromDocument(*in.Graph)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid graph document")
		}
		return g, nil
	default:
		return graph.ReadEdgeList(strings.NewReader(in.EdgeList))
	}
}

// DefaultK returns the conventional community count of a built-in dataset,
// or 0 for other inputs.
func (in Input) DefaultK() int {
	if in.Dataset == "" {
		return 0
	}
	_, k, err := graph.Dataset(in.Dataset)
	if err != nil {
		return 0
	}
	return k
}
