// Package pipeline runs community detection end to end for the CLI and the
// API server.
//
// A run goes through four steps:
//
//  1. Load: read a graph file or a built-in dataset
//  2. Detect: look up the cache, otherwise propagate (optionally with the
//     restart refiner) and score the partition by modularity
//  3. Record: store the result in the cache and the run history
//  4. Render: encode the result as JSON, YAML, CSV, DOT, SVG, PNG or PDF
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, store, logger)
//	g, err := pipeline.Load(pipeline.Input{Dataset: "karate"})
//	res, err := runner.Detect(ctx, g, pipeline.Options{K: 2, Seed: fluid.SeedPtr(42)})
//	data, err := pipeline.Render(ctx, g, res, pipeline.FormatJSON)
//
// Independent trials run in parallel:
//
//	trials, err := runner.Trials(ctx, g, opts, pipeline.TrialsOptions{Trials: 16, Parallel: 4})
//	best := trials.Best()
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fluidc/pkg/cache"
	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/fluid"
	"github.com/matzehuels/fluidc/pkg/history"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultTrials is the number of independent runs of `fluidc trials`.
	DefaultTrials = 10

	// MaxTrials bounds a single trials request.
	MaxTrials = 1000
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatYAML: true,
	FormatCSV:  true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures a detection run. It supports JSON for API requests.
type Options struct {
	K         int     `json:"k"`
	Seed      *uint64 `json:"seed,omitempty"`
	MaxRounds int     `json:"max_rounds,omitempty"`
	Variant   string  `json:"variant,omitempty"`
	TieBreak  string  `json:"tie_break,omitempty"`
	Order     string  `json:"order,omitempty"`
	Refine    bool    `json:"refine,omitempty"`
	Refresh   bool    `json:"refresh,omitempty"` // skip the cache lookup

	// Runtime options (not serialized)
	Source  string                 `json:"-"` // recorded in history
	Logger  *log.Logger            `json:"-"`
	OnRound func(fluid.RoundStats) `json:"-"`

	validated bool
}

// Result is the outcome of a pipeline run.
type Result struct {
	RunID      string             `json:"run_id,omitempty"`
	GraphHash  string             `json:"graph_hash"`
	Partition  fluid.Result       `json:"partition"`
	Modularity float64            `json:"modularity"`
	Refine     *fluid.RefineStats `json:"refine,omitempty"`
	Options    Options            `json:"options"`
	Stats      Stats              `json:"stats"`
	CacheHit   bool               `json:"cache_hit"`
}

// Stats contains run statistics.
type Stats struct {
	Nodes    int           `json:"nodes"`
	Edges    int           `json:"edges"`
	Duration time.Duration `json:"duration"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, yaml, csv, dot, svg, png, pdf)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults normalizes the enumerated options and applies
// defaults. With Refine set, unset options default to the refiner's
// configuration: FluidC+, largest-community ties, degree order. The method is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.K < 1 {
		return errors.New(errors.ErrCodeInvalidCommunityCount, "k must be at least 1, got %d", o.K)
	}
	if o.MaxRounds < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_rounds must be non-negative, got %d", o.MaxRounds)
	}
	if o.Refine {
		if o.Variant == "" {
			o.Variant = string(fluid.VariantFluidCPlus)
		}
		if o.TieBreak == "" {
			o.TieBreak = string(fluid.TieLargest)
		}
		if o.Order == "" {
			o.Order = string(fluid.OrderDegree)
		}
	}

	variant, err := fluid.ParseVariant(o.Variant)
	if err != nil {
		return err
	}
	tie, err := fluid.ParseTieBreak(o.TieBreak)
	if err != nil {
		return err
	}
	order, err := fluid.ParseOrder(o.Order)
	if err != nil {
		return err
	}
	o.Variant, o.TieBreak, o.Order = string(variant), string(tie), string(order)

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Cacheable reports whether the run is reproducible and may use the cache.
func (o *Options) Cacheable() bool {
	return o.Seed != nil
}

// FluidOptions returns the propagator configuration.
func (o *Options) FluidOptions() fluid.Options {
	return fluid.Options{
		Variant:   fluid.Variant(o.Variant),
		TieBreak:  fluid.TieBreak(o.TieBreak),
		Order:     fluid.Order(o.Order),
		MaxRounds: o.MaxRounds,
		Seed:      o.Seed,
		OnRound:   o.OnRound,
	}
}

// PartitionKeyOpts returns cache key options. Only call it for cacheable
// runs.
func (o *Options) PartitionKeyOpts() cache.PartitionKeyOpts {
	var seed uint64
	if o.Seed != nil {
		seed = *o.Seed
	}
	return cache.PartitionKeyOpts{
		K:         o.K,
		Seed:      seed,
		MaxRounds: o.MaxRounds,
		Variant:   o.Variant,
		TieBreak:  o.TieBreak,
		Order:     o.Order,
		Refine:    o.Refine,
	}
}

// HistoryOptions returns the options recorded with a run.
func (o *Options) HistoryOptions() history.Options {
	hk := o.PartitionKeyOpts()
	return history.Options{
		K:         hk.K,
		Seed:      hk.Seed,
		MaxRounds: hk.MaxRounds,
		Variant:   hk.Variant,
		TieBreak:  hk.TieBreak,
		Order:     hk.Order,
		Refine:    hk.Refine,
	}
}

// String summarizes the options for logs.
func (o Options) String() string {
	seed := "random"
	if o.Seed != nil {
		seed = fmt.Sprint(*o.Seed)
	}
	return fmt.Sprintf("k=%d seed=%s variant=%s tie=%s order=%s refine=%v", o.K, seed, o.Variant, o.TieBreak, o.Order, o.Refine)
}
