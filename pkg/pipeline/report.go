package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/fluid"
)

// Report is the serialized form of a Result, shared by the CLI output and
// the API responses.
type Report struct {
	RunID       string             `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	GraphHash   string             `json:"graph_hash" yaml:"graph_hash"`
	Nodes       int                `json:"nodes" yaml:"nodes"`
	Edges       int                `json:"edges" yaml:"edges"`
	K           int                `json:"k" yaml:"k"`
	Seed        uint64             `json:"seed" yaml:"seed"`
	Variant     string             `json:"variant" yaml:"variant"`
	TieBreak    string             `json:"tie_break" yaml:"tie_break"`
	Order       string             `json:"order" yaml:"order"`
	Rounds      int                `json:"rounds" yaml:"rounds"`
	Converged   bool               `json:"converged" yaml:"converged"`
	Stop        string             `json:"stop" yaml:"stop"`
	Modularity  float64            `json:"modularity" yaml:"modularity"`
	Communities int                `json:"communities" yaml:"communities"` // non-empty communities
	Sizes       []int              `json:"sizes" yaml:"sizes"`
	Seeds       []string           `json:"seeds,omitempty" yaml:"seeds,omitempty"`
	Unlabeled   []string           `json:"unlabeled,omitempty" yaml:"unlabeled,omitempty"`
	Assignment  []Membership       `json:"assignment" yaml:"assignment"`
	Refine      *fluid.RefineStats `json:"refine,omitempty" yaml:"refine,omitempty"`
	CacheHit    bool               `json:"cache_hit" yaml:"cache_hit"`
	DurationMS  int64              `json:"duration_ms" yaml:"duration_ms"`
}

// Membership assigns a node to a community; Unlabeled nodes carry -1.
type Membership struct {
	Node      string `json:"node" yaml:"node"`
	Community int    `json:"community" yaml:"community"`
}

// NewReport builds the report of res.
func NewReport(res *Result) Report {
	p := res.Partition
	rep := Report{
		RunID:       res.RunID,
		GraphHash:   res.GraphHash,
		Nodes:       res.Stats.Nodes,
		Edges:       res.Stats.Edges,
		K:           p.K,
		Variant:     string(p.Variant),
		TieBreak:    res.Options.TieBreak,
		Order:       res.Options.Order,
		Rounds:      p.Rounds,
		Converged:   p.Converged,
		Stop:        string(p.Stop),
		Modularity:  res.Modularity,
		Communities: p.NonEmpty(),
		Sizes:       p.Sizes(),
		Seeds:       p.Seeds,
		Unlabeled:   p.Unlabeled(),
		Assignment:  make([]Membership, len(p.Nodes)),
		Refine:      res.Refine,
		CacheHit:    res.CacheHit,
		DurationMS:  res.Stats.Duration.Milliseconds(),
	}
	if res.Options.Seed != nil {
		rep.Seed = *res.Options.Seed
	}
	for i, id := range p.Nodes {
		rep.Assignment[i] = Membership{Node: id, Community: p.Labels[i]}
	}
	return rep
}

// Encode writes rep as json, yaml or csv. The CSV form lists the
// assignment only, one "node,community" row per node.
func (rep Report) Encode(w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"node", "community"}); err != nil {
			return err
		}
		for _, m := range rep.Assignment {
			if err := cw.Write([]string{m.Node, strconv.Itoa(m.Community)}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}
	return errors.New(errors.ErrCodeInvalidFormat, "format %q is not a report format", format)
}
