package pipeline

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/fluidc/pkg/cache"
	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/fluid"
	"github.com/matzehuels/fluidc/pkg/graph"
	"github.com/matzehuels/fluidc/pkg/history"
	"github.com/matzehuels/fluidc/pkg/observability"
	"github.com/matzehuels/fluidc/pkg/partition"
)

// Cache key types reported to the cache hooks.
const (
	keyTypePartition = "partition"
	keyTypeTrials    = "trials"
)

// Runner executes detection runs with caching and history.
// Both CLI and API use it.
//
// The Runner holds no per-run state; multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	History history.Store // nil disables history
	Logger  *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer means
// DefaultKeyer and a nil store disables history.
func NewRunner(c cache.Cache, keyer cache.Keyer, store history.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		History: store,
		Logger:  logger,
	}
}

// GraphHash returns the content hash used in cache keys. Node order is part
// of the hash because it changes the visiting order of a run.
func GraphHash(g *graph.Graph) (string, error) {
	data, err := graph.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("hash graph: %w", err)
	}
	return cache.Hash(data), nil
}

// Detect runs one detection on g.
//
// Seeded runs are served from the cache when possible. An unseeded run draws
// a seed first, so the recorded options always reproduce the result.
func (r *Runner) Detect(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()

	graphHash, err := GraphHash(g)
	if err != nil {
		return nil, err
	}

	cacheable := opts.Cacheable() && !opts.Refresh
	if opts.Seed == nil {
		opts.Seed = fluid.SeedPtr(rand.Uint64())
	}

	var res *Result
	key := r.Keyer.PartitionKey(graphHash, opts.PartitionKeyOpts())
	if cacheable {
		res = r.lookup(ctx, key, keyTypePartition)
	}
	if res != nil {
		res.CacheHit = true
		r.Logger.Debug("cache hit", "key", key)
	} else {
		res, err = r.compute(ctx, g, opts)
		if err != nil {
			return nil, err
		}
		res.GraphHash = graphHash
		if opts.Cacheable() && res.Partition.Stop != fluid.StopCancelled {
			r.store(ctx, key, keyTypePartition, res, cache.TTLPartition)
		}
	}
	res.Options = opts
	res.Stats.Nodes = g.Size()
	res.Stats.Edges = g.EdgeCount()
	res.Stats.Duration = time.Since(start)

	r.record(ctx, res)

	opts.Logger.Info("detected communities",
		"communities", res.Partition.NonEmpty(),
		"rounds", res.Partition.Rounds,
		"stop", res.Partition.Stop,
		"modularity", fmt.Sprintf("%.4f", res.Modularity),
		"cached", res.CacheHit,
		"duration", res.Stats.Duration)
	return res, nil
}

// compute runs propagation (or the refiner) and scores the partition.
func (r *Runner) compute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	p, err := fluid.New(opts.FluidOptions())
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("propagating", "nodes", g.Size(), "edges", g.EdgeCount(), "options", opts.String())

	res := &Result{}
	if opts.Refine {
		part, stats, err := fluid.NewRefiner(p).Refine(ctx, g, opts.K)
		if err != nil {
			return nil, err
		}
		res.Partition = part
		res.Refine = &stats
		opts.Logger.Debug("refined", "iterations", stats.Iterations, "restarts", stats.Restarts)
	} else {
		part, err := p.Run(ctx, g, opts.K)
		if err != nil {
			return nil, err
		}
		res.Partition = part
	}
	res.Modularity = partition.Modularity(g, res.Partition.Labels)
	return res, nil
}

// record saves the run in history. Failures are logged, not returned.
func (r *Runner) record(ctx context.Context, res *Result) {
	if r.History == nil {
		return
	}
	run := history.NewRun(res.Options.Source, res.GraphHash)
	run.Options = res.Options.HistoryOptions()
	run.Record(res.Partition, res.Modularity)
	run.Duration = res.Stats.Duration
	run.CacheHit = res.CacheHit
	if err := r.History.Save(ctx, run); err != nil {
		r.Logger.Warn("failed to record run", "error", err)
		return
	}
	res.RunID = run.ID
}

// cachedResult is the cache encoding of a Result.
type cachedResult struct {
	GraphHash  string             `json:"graph_hash"`
	Partition  fluid.Result       `json:"partition"`
	Modularity float64            `json:"modularity"`
	Refine     *fluid.RefineStats `json:"refine,omitempty"`
}

func (r *Runner) lookup(ctx context.Context, key, keyType string) *Result {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil
	}
	var c cachedResult
	if err := json.Unmarshal(data, &c); err != nil || len(c.Partition.Labels) != len(c.Partition.Nodes) {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return &Result{GraphHash: c.GraphHash, Partition: c.Partition, Modularity: c.Modularity, Refine: c.Refine}
}

func (r *Runner) store(ctx context.Context, key, keyType string, res *Result, ttl time.Duration) {
	data, err := json.Marshal(cachedResult{
		GraphHash:  res.GraphHash,
		Partition:  res.Partition,
		Modularity: res.Modularity,
		Refine:     res.Refine,
	})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// =============================================================================
// Trials
// =============================================================================

// TrialsOptions configures a batch of independent runs.
type TrialsOptions struct {
	Trials   int `json:"trials"`
	Parallel int `json:"parallel,omitempty"` // 0 means one worker per trial

	// OnTrial is called after each completed trial with the number done so
	// far. It may be called from several goroutines, never concurrently.
	OnTrial func(done, total int) `json:"-"`
}

// Trial is one run of a batch.
type Trial struct {
	Seed       uint64       `json:"seed"`
	Modularity float64      `json:"modularity"`
	Sizes      []int        `json:"sizes"`
	Partition  fluid.Result `json:"partition"`
}

// TrialsResult lists the trials of a batch, best modularity first.
type TrialsResult struct {
	GraphHash string        `json:"graph_hash"`
	Trials    []Trial       `json:"trials"`
	Duration  time.Duration `json:"duration"`
	CacheHit  bool          `json:"cache_hit"`
}

// Best returns the highest-modularity trial.
func (t *TrialsResult) Best() Trial {
	return t.Trials[0]
}

// Trials runs topts.Trials detections with consecutive seeds starting at
// opts.Seed (random when unset) and ranks them by modularity. Ties keep seed
// order. The best trial is recorded in history.
func (r *Runner) Trials(ctx context.Context, g *graph.Graph, opts Options, topts TrialsOptions) (*TrialsResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if topts.Trials < 1 || topts.Trials > MaxTrials {
		return nil, errors.New(errors.ErrCodeInvalidInput, "trials must be in [1,%d], got %d", MaxTrials, topts.Trials)
	}
	if topts.Parallel < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "parallel must be non-negative, got %d", topts.Parallel)
	}
	start := time.Now()

	graphHash, err := GraphHash(g)
	if err != nil {
		return nil, err
	}
	cacheable := opts.Cacheable() && !opts.Refresh
	if opts.Seed == nil {
		opts.Seed = fluid.SeedPtr(rand.Uint64())
	}
	key := r.Keyer.TrialsKey(graphHash, cache.TrialsKeyOpts{PartitionKeyOpts: opts.PartitionKeyOpts(), Trials: topts.Trials})

	if cacheable {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached TrialsResult
			if err := json.Unmarshal(data, &cached); err == nil && len(cached.Trials) == topts.Trials {
				observability.Cache().OnCacheHit(ctx, keyTypeTrials)
				cached.CacheHit = true
				cached.Duration = time.Since(start)
				return &cached, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeTrials)
	}

	trials := make([]Trial, topts.Trials)
	var (
		mu   sync.Mutex
		done int
	)
	eg, egCtx := errgroup.WithContext(ctx)
	if topts.Parallel > 0 {
		eg.SetLimit(topts.Parallel)
	}
	base := *opts.Seed
	for i := range trials {
		eg.Go(func() error {
			o := opts
			o.Seed = fluid.SeedPtr(base + uint64(i))
			o.OnRound = nil
			res, err := r.compute(egCtx, g, o)
			if err != nil {
				return err
			}
			trials[i] = Trial{
				Seed:       *o.Seed,
				Partition:  res.Partition,
				Modularity: res.Modularity,
				Sizes:      res.Partition.Sizes(),
			}
			if topts.OnTrial != nil {
				mu.Lock()
				done++
				topts.OnTrial(done, topts.Trials)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(trials, func(a, b Trial) int {
		return cmp.Compare(b.Modularity, a.Modularity)
	})
	out := &TrialsResult{GraphHash: graphHash, Trials: trials, Duration: time.Since(start)}

	if opts.Cacheable() && ctx.Err() == nil {
		if data, err := json.Marshal(out); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLTrials); err == nil {
				observability.Cache().OnCacheSet(ctx, keyTypeTrials, len(data))
			}
		}
	}

	best := trials[0]
	bestOpts := opts
	bestOpts.Seed = fluid.SeedPtr(best.Seed)
	r.record(ctx, &Result{
		GraphHash:  graphHash,
		Partition:  best.Partition,
		Modularity: best.Modularity,
		Options:    bestOpts,
		Stats:      Stats{Nodes: g.Size(), Edges: g.EdgeCount(), Duration: out.Duration},
	})

	opts.Logger.Info("ran trials",
		"trials", len(trials),
		"best_seed", best.Seed,
		"best_modularity", fmt.Sprintf("%.4f", best.Modularity),
		"duration", out.Duration)
	return out, nil
}

// Close releases the cache and history store.
func (r *Runner) Close() error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.History != nil {
		errs = append(errs, r.History.Close())
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
