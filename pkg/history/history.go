// Package history records completed detection runs so they can be listed and
// inspected later by id.
//
// Backends:
//   - file: one JSON document per run, for the CLI
//   - memory: in-process, for tests and a server without persistence
//   - mongo: a MongoDB collection, for the API server
//
// # Usage
//
//	store, err := history.NewFileStore("") // ~/.config/fluidc/history/
//	run := history.NewRun("karate.json", graphHash)
//	run.Record(res, modularity)
//	err = store.Save(ctx, run)
//
//	runs, err := store.List(ctx, 20) // newest first
package history

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/fluid"
)

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Options are the run parameters worth recording.
type Options struct {
	K         int    `json:"k" bson:"k"`
	Seed      uint64 `json:"seed" bson:"seed"`
	MaxRounds int    `json:"max_rounds,omitempty" bson:"max_rounds,omitempty"`
	Variant   string `json:"variant" bson:"variant"`
	TieBreak  string `json:"tie_break" bson:"tie_break"`
	Order     string `json:"order" bson:"order"`
	Refine    bool   `json:"refine,omitempty" bson:"refine,omitempty"`
}

// Run is one recorded detection.
type Run struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Source    string    `json:"source" bson:"source"` // file path or dataset name
	GraphHash string    `json:"graph_hash" bson:"graph_hash"`
	Options   Options   `json:"options" bson:"options"`

	Rounds     int           `json:"rounds" bson:"rounds"`
	Converged  bool          `json:"converged" bson:"converged"`
	Stop       string        `json:"stop" bson:"stop"`
	Modularity float64       `json:"modularity" bson:"modularity"`
	Sizes      []int         `json:"sizes" bson:"sizes"`
	Nodes      []string      `json:"nodes" bson:"nodes"`
	Labels     []int         `json:"labels" bson:"labels"`
	Duration   time.Duration `json:"duration" bson:"duration"`
	CacheHit   bool          `json:"cache_hit,omitempty" bson:"cache_hit,omitempty"`
}

// NewRun creates a run with a fresh uuid and the current time.
func NewRun(source, graphHash string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		GraphHash: graphHash,
	}
}

// Record copies the outcome of res into the run.
func (r *Run) Record(res fluid.Result, modularity float64) {
	r.Rounds = res.Rounds
	r.Converged = res.Converged
	r.Stop = string(res.Stop)
	r.Modularity = modularity
	r.Sizes = res.Sizes()
	r.Nodes = slices.Clone(res.Nodes)
	r.Labels = slices.Clone(res.Labels)
}

// Result rebuilds the labeling recorded in the run.
func (r *Run) Result() fluid.Result {
	return fluid.Result{
		Nodes:     slices.Clone(r.Nodes),
		Labels:    slices.Clone(r.Labels),
		K:         r.Options.K,
		Rounds:    r.Rounds,
		Converged: r.Converged,
		Stop:      fluid.StopReason(r.Stop),
		Variant:   fluid.Variant(r.Options.Variant),
	}
}

// Communities returns the number of non-empty communities.
func (r *Run) Communities() int {
	n := 0
	for _, s := range r.Sizes {
		if s > 0 {
			n++
		}
	}
	return n
}

// Store persists runs.
type Store interface {
	// Save inserts or replaces run.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with id, or a RUN_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run. Missing runs are not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeRunNotFound, "run %q not found", id)
}

// newestFirst sorts runs by descending creation time, then id.
func newestFirst(runs []*Run) {
	slices.SortFunc(runs, func(a, b *Run) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
