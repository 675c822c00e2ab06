package fluid

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/graph"
	"github.com/matzehuels/fluidc/pkg/observability"
)

// Propagator runs fluid propagation with a fixed configuration.
//
// It holds no per-run state and is safe for concurrent use, provided the
// configured Source (if any) is not shared between concurrent runs.
type Propagator struct {
	opts Options
}

// New creates a Propagator. It fails with a coded error when an enumerated
// option is unknown.
func New(opts Options) (*Propagator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Propagator{opts: opts.withDefaults()}, nil
}

// Detect is shorthand for New(opts) followed by Run.
func Detect(ctx context.Context, g graph.View, k int, opts Options) (Result, error) {
	p, err := New(opts)
	if err != nil {
		return Result{}, err
	}
	return p.Run(ctx, g, k)
}

// Options returns the effective configuration.
func (p *Propagator) Options() Options {
	return p.opts
}

// Run partitions g into at most k communities. It picks k distinct seed nodes
// uniformly at random, then propagates until a fixed point, the round budget
// or cancellation.
//
// Input errors (EMPTY_GRAPH, INVALID_COMMUNITY_COUNT, INVALID_NODE) are
// returned before any round runs. Non-convergence and cancellation are not
// errors; they are reported through Result.Converged and Result.Stop.
func (p *Propagator) Run(ctx context.Context, g graph.View, k int) (Result, error) {
	topo, err := newTopology(g)
	if err != nil {
		return Result{}, err
	}
	if err := errors.ValidateCommunityCount(k, topo.size()); err != nil {
		return Result{}, err
	}
	src := sourceFor(p.opts)
	return p.runSeeded(ctx, topo, src.SampleDistinct(k, topo.size()), src)
}

// RunSeeded is Run with caller-chosen seeds: seeds[i] starts community i.
func (p *Propagator) RunSeeded(ctx context.Context, g graph.View, seeds []string) (Result, error) {
	topo, err := newTopology(g)
	if err != nil {
		return Result{}, err
	}
	if err := errors.ValidateCommunityCount(len(seeds), topo.size()); err != nil {
		return Result{}, err
	}
	idx, err := topo.resolve(seeds)
	if err != nil {
		return Result{}, err
	}
	return p.runSeeded(ctx, topo, idx, sourceFor(p.opts))
}

// Resume continues propagation from a previous result on the same graph.
// Rounds in the returned result count only the resumed rounds.
func (p *Propagator) Resume(ctx context.Context, g graph.View, prev Result) (Result, error) {
	topo, err := newTopology(g)
	if err != nil {
		return Result{}, err
	}
	if !slices.Equal(topo.nodes, prev.Nodes) {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "result does not belong to this graph")
	}
	if err := errors.ValidateCommunityCount(prev.K, topo.size()); err != nil {
		return Result{}, err
	}
	for i, l := range prev.Labels {
		if l != Unlabeled && (l < 0 || l >= prev.K) {
			return Result{}, errors.New(errors.ErrCodeInvalidInput, "node %q has label %d outside [0,%d)", prev.Nodes[i], l, prev.K)
		}
	}

	r := p.newRun(topo, prev.K, sourceFor(p.opts))
	copy(r.labels, prev.Labels)
	res := p.execute(ctx, r)
	res.Seeds = slices.Clone(prev.Seeds)
	return res, nil
}

func (p *Propagator) runSeeded(ctx context.Context, topo *topology, seeds []int, src Source) (Result, error) {
	r := p.newRun(topo, len(seeds), src)
	for c, v := range seeds {
		r.labels[v] = c
	}
	res := p.execute(ctx, r)
	res.Seeds = make([]string, len(seeds))
	for c, v := range seeds {
		res.Seeds[c] = topo.nodes[v]
	}
	return res, nil
}

func (p *Propagator) newRun(topo *topology, k int, src Source) *run {
	scorer := p.opts.Scorer
	if scorer == nil {
		scorer = ScorerFor(p.opts.Variant)
	}
	labels := make([]int, topo.size())
	for i := range labels {
		labels[i] = Unlabeled
	}
	return &run{
		topo:   topo,
		order:  topo.visitOrder(p.opts.Order),
		labels: labels,
		k:      k,
		scorer: scorer,
		tie:    p.opts.TieBreak,
		src:    src,
		votes:  make([]int, k),
	}
}

func (p *Propagator) execute(ctx context.Context, r *run) Result {
	variant := string(p.opts.Variant)
	hooks := observability.Propagation()
	hooks.OnRunStart(ctx, variant, r.topo.size(), r.k)
	start := time.Now()

	maxRounds := p.opts.MaxRounds
	if maxRounds == 0 {
		maxRounds = DefaultMaxRounds(r.topo.size())
	}

	rounds, stop := r.propagate(ctx, maxRounds, func(s RoundStats) {
		hooks.OnRound(ctx, variant, s.Round, s.Moves, s.Labeled)
		if p.opts.OnRound != nil {
			p.opts.OnRound(s)
		}
	})

	converged := stop == StopConverged
	hooks.OnRunComplete(ctx, variant, rounds, converged, time.Since(start), nil)

	return Result{
		Nodes:     slices.Clone(r.topo.nodes),
		Labels:    r.labels,
		K:         r.k,
		Rounds:    rounds,
		Converged: converged,
		Stop:      stop,
		Variant:   p.opts.Variant,
	}
}

// run is the state of one propagation. It is owned by a single goroutine.
type run struct {
	topo   *topology
	order  []int
	labels []int
	k      int
	scorer Scorer
	tie    TieBreak
	src    Source

	// scratch, reused across nodes
	votes  []int
	cands  []int
	scores []float64
	tied   []int
}

func (r *run) propagate(ctx context.Context, maxRounds int, observe func(RoundStats)) (int, StopReason) {
	counts := Counts(r.labels, r.k)
	rounds := 0
	for rounds < maxRounds {
		if ctx.Err() != nil {
			return rounds, StopCancelled
		}
		rounds++
		moves := r.step(counts)
		counts = Counts(r.labels, r.k)

		labeled := 0
		for _, n := range counts {
			labeled += n
		}
		observe(RoundStats{Round: rounds, Moves: moves, Labeled: labeled, Sizes: slices.Clone(counts)})

		if moves == 0 {
			return rounds, StopConverged
		}
	}
	return rounds, StopBudget
}

// step performs one node-sequential round and returns the number of label
// changes. counts are the community sizes at round start.
func (r *run) step(counts []int) int {
	dens := densitiesOf(counts)
	moves := 0
	for _, v := range r.order {
		if next := r.choose(v, counts, dens); next != r.labels[v] {
			r.labels[v] = next
			moves++
		}
	}
	return moves
}

// choose returns the label v should hold after its update.
func (r *run) choose(v int, counts []int, dens []float64) int {
	own := r.labels[v]
	nbrs := r.topo.adj[v]

	cands := r.cands[:0]
	total := len(nbrs)
	if own != Unlabeled {
		r.votes[own]++
		cands = append(cands, own)
		total++
	}
	for _, u := range nbrs {
		l := r.labels[u]
		if l == Unlabeled {
			continue
		}
		if r.votes[l] == 0 {
			cands = append(cands, l)
		}
		r.votes[l]++
	}
	r.cands = cands
	if len(cands) == 0 {
		return own
	}

	scores := r.scores[:0]
	best := math.Inf(-1)
	for _, c := range cands {
		d := dens[c]
		if c == own {
			d = 1 / float64(max(1, counts[c]-1))
		}
		s := r.scorer.Score(Vote{Community: c, Density: d, Votes: r.votes[c], Total: total})
		scores = append(scores, s)
		best = max(best, s)
	}
	r.scores = scores

	tied := r.tied[:0]
	keep := false
	for i, c := range cands {
		r.votes[c] = 0
		if best-scores[i] <= tieTolerance*best {
			tied = append(tied, c)
			keep = keep || c == own
		}
	}
	r.tied = tied

	if keep {
		return own
	}
	return r.breakTie(tied, counts)
}

func (r *run) breakTie(tied []int, counts []int) int {
	if len(tied) == 1 {
		return tied[0]
	}
	slices.Sort(tied)
	if r.tie == TieLargest {
		best := tied[0]
		for _, c := range tied[1:] {
			if counts[c] > counts[best] {
				best = c
			}
		}
		return best
	}
	return tied[r.src.ChooseUniform(len(tied))]
}
