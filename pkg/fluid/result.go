package fluid

import "slices"

// StopReason records why a run ended.
type StopReason string

const (
	StopConverged StopReason = "converged" // a round produced no change
	StopBudget    StopReason = "budget"    // MaxRounds exhausted
	StopCancelled StopReason = "cancelled" // context cancelled between rounds
)

// Result is the outcome of one propagation run.
//
// Labels is aligned with Nodes, which is the View's Nodes() order. Every
// label is either in [0,K) or Unlabeled.
type Result struct {
	Nodes     []string   `json:"nodes" yaml:"nodes"`
	Labels    []int      `json:"labels" yaml:"labels"`
	K         int        `json:"k" yaml:"k"`
	Rounds    int        `json:"rounds" yaml:"rounds"`
	Converged bool       `json:"converged" yaml:"converged"`
	Stop      StopReason `json:"stop" yaml:"stop"`
	Variant   Variant    `json:"variant" yaml:"variant"`
	Seeds     []string   `json:"seeds,omitempty" yaml:"seeds,omitempty"` // seed node of each community, indexed by label
}

// Assignment maps every node id to its community, Unlabeled included.
func (r Result) Assignment() map[string]int {
	m := make(map[string]int, len(r.Nodes))
	for i, id := range r.Nodes {
		m[id] = r.Labels[i]
	}
	return m
}

// Communities groups node ids by label. Entry c lists the members of
// community c in node order; empty communities yield empty entries.
func (r Result) Communities() [][]string {
	out := make([][]string, r.K)
	for i, l := range r.Labels {
		if l >= 0 && l < r.K {
			out[l] = append(out[l], r.Nodes[i])
		}
	}
	return out
}

// Unlabeled returns the nodes in the no-community bucket.
func (r Result) Unlabeled() []string {
	var out []string
	for i, l := range r.Labels {
		if l == Unlabeled {
			out = append(out, r.Nodes[i])
		}
	}
	return out
}

// Sizes returns the member count of each community.
func (r Result) Sizes() []int {
	return Counts(r.Labels, r.K)
}

// NonEmpty returns the number of communities with at least one member.
func (r Result) NonEmpty() int {
	n := 0
	for _, s := range r.Sizes() {
		if s > 0 {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (r Result) Clone() Result {
	r.Nodes = slices.Clone(r.Nodes)
	r.Labels = slices.Clone(r.Labels)
	r.Seeds = slices.Clone(r.Seeds)
	return r
}
