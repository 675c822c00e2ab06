package fluid

import (
	"context"
	"slices"

	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/graph"
	"github.com/matzehuels/fluidc/pkg/observability"
	"github.com/matzehuels/fluidc/pkg/partition"
)

// Restart loop defaults.
const (
	DefaultMaxRestarts   = 10
	DefaultMaxIterations = 100
)

// Refiner repeats propagation with new seeds drawn from the communities of
// the previous run. Seeds whose partition moved away from its predecessor
// (NMI below the lowest value seen so far) are marked bad and never reused.
type Refiner struct {
	Propagator    *Propagator
	MaxRestarts   int // bad-seed restarts before stopping; 0 means DefaultMaxRestarts
	MaxIterations int // propagation runs before stopping; 0 means DefaultMaxIterations
}

// RefineStats summarizes a restart loop.
type RefineStats struct {
	Iterations int       `json:"iterations" yaml:"iterations"`
	Restarts   int       `json:"restarts" yaml:"restarts"`
	NMI        []float64 `json:"nmi,omitempty" yaml:"nmi,omitempty"` // NMI between consecutive partitions
	Exhausted  bool      `json:"exhausted,omitempty" yaml:"exhausted,omitempty"`
}

// NewRefiner wraps p with the default bounds.
func NewRefiner(p *Propagator) *Refiner {
	return &Refiner{Propagator: p}
}

// Refine runs the restart loop and returns the last partition found.
//
// The number of communities may shrink below k: a community that ends up
// empty contributes no seed to the next iteration.
func (rf *Refiner) Refine(ctx context.Context, g graph.View, k int) (Result, RefineStats, error) {
	var stats RefineStats
	if rf.Propagator == nil {
		return Result{}, stats, errors.New(errors.ErrCodeInternal, "refiner has no propagator")
	}
	p := rf.Propagator
	maxRestarts := rf.MaxRestarts
	if maxRestarts <= 0 {
		maxRestarts = DefaultMaxRestarts
	}
	maxIterations := rf.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	topo, err := newTopology(g)
	if err != nil {
		return Result{}, stats, err
	}
	if err := errors.ValidateCommunityCount(k, topo.size()); err != nil {
		return Result{}, stats, err
	}

	src := sourceFor(p.opts)
	seeds := src.SampleDistinct(k, topo.size())
	bad := make(map[int]bool, k)
	for _, s := range seeds {
		bad[s] = true
	}

	minNMI := 1.0
	var prev []int
	var res Result
	hooks := observability.Propagation()

	for stats.Restarts < maxRestarts && stats.Iterations < maxIterations {
		if ctx.Err() != nil {
			break
		}
		res, err = p.runSeeded(ctx, topo, seeds, src)
		if err != nil {
			return Result{}, stats, err
		}

		if stats.Iterations > 0 {
			nmi := partition.NMI(res.Labels, prev)
			stats.NMI = append(stats.NMI, nmi)
			hooks.OnRestart(ctx, stats.Iterations, nmi)
			if nmi < minNMI {
				for _, s := range seeds {
					bad[s] = true
				}
				stats.Restarts++
				minNMI = nmi
			}
		}
		prev = res.Labels
		stats.Iterations++

		next, ok := reseed(partition.NonEmpty(partition.Groups(res.Labels, res.K)), bad, src)
		if !ok {
			stats.Exhausted = true
			break
		}
		seeds = next
	}

	if stats.Iterations == 0 {
		// Cancelled before the first run: report the seeding alone.
		r := p.newRun(topo, len(seeds), src)
		for c, v := range seeds {
			r.labels[v] = c
		}
		res = Result{
			Nodes:   slices.Clone(topo.nodes),
			Labels:  r.labels,
			K:       len(seeds),
			Stop:    StopCancelled,
			Variant: p.opts.Variant,
		}
		res.Seeds = make([]string, len(seeds))
		for c, v := range seeds {
			res.Seeds[c] = topo.nodes[v]
		}
	}
	return res, stats, nil
}

// reseed picks one member of each community uniformly among those not marked
// bad. It reports false when some community has only bad members.
func reseed(groups [][]int, bad map[int]bool, src Source) ([]int, bool) {
	seeds := make([]int, 0, len(groups))
	for _, members := range groups {
		var good []int
		for _, v := range members {
			if !bad[v] {
				good = append(good, v)
			}
		}
		if len(good) == 0 {
			return nil, false
		}
		seeds = append(seeds, good[src.ChooseUniform(len(good))])
	}
	return seeds, true
}
