package fluid

import (
	"fmt"
	"strings"

	"github.com/matzehuels/fluidc/pkg/errors"
)

// Variant selects the scoring strategy.
type Variant string

const (
	// VariantFluidC scores a candidate community by its density alone.
	VariantFluidC Variant = "fluidc"
	// VariantFluidCPlus weights density by neighborhood agreement.
	VariantFluidCPlus Variant = "fluidc_plus"
)

// TieBreak selects how tied candidates are resolved when the node's current
// label is not among them.
type TieBreak string

const (
	// TieRandom picks uniformly from the tied set using the run's Source.
	TieRandom TieBreak = "random"
	// TieLargest picks the tied community with the most members. Equal sizes
	// go to the lowest label, not to the first candidate encountered among
	// the node's own label and its neighbors.
	TieLargest TieBreak = "largest"
)

// Order selects the node visiting order.
type Order string

const (
	// OrderGraph visits nodes in View.Nodes() order.
	OrderGraph Order = "graph"
	// OrderDegree visits nodes by descending degree, ties in graph order.
	OrderDegree Order = "degree"
)

// Unlabeled marks a node that belongs to no community.
const Unlabeled = -1

// tieTolerance is the score difference, relative to the best score, under
// which two candidates are considered tied. Scores shrink as 1/size, so an
// absolute gap would merge distinct candidates in large communities.
const tieTolerance = 1e-9

// Options configures a Propagator.
type Options struct {
	// Variant selects the scorer. Empty means VariantFluidC.
	Variant Variant

	// TieBreak selects the tie policy. Empty means TieRandom.
	TieBreak TieBreak

	// Order selects the visiting order. Empty means OrderGraph.
	Order Order

	// MaxRounds bounds the number of rounds. Zero means DefaultMaxRounds(n).
	MaxRounds int

	// Seed makes runs reproducible. Nil draws a fresh seed per run.
	Seed *uint64

	// Source overrides Seed with an injected random source. A Source is
	// stateful; share one between runs only when that is intended.
	Source Source

	// Scorer overrides the variant's scorer.
	Scorer Scorer

	// OnRound is called after every round.
	OnRound func(RoundStats)
}

// RoundStats describes one completed round.
type RoundStats struct {
	Round   int   // 1-based round number
	Moves   int   // nodes whose label changed
	Labeled int   // nodes holding a real label after the round
	Sizes   []int // community sizes after the round, indexed by label
}

// DefaultMaxRounds is the round budget used when Options.MaxRounds is zero.
func DefaultMaxRounds(n int) int {
	return max(100, 10*n)
}

// SeedPtr returns a pointer to seed, for use in Options literals.
func SeedPtr(seed uint64) *uint64 {
	return &seed
}

// Validate checks the enumerated fields.
func (o Options) Validate() error {
	if _, err := ParseVariant(string(o.Variant)); err != nil {
		return err
	}
	if _, err := ParseTieBreak(string(o.TieBreak)); err != nil {
		return err
	}
	if _, err := ParseOrder(string(o.Order)); err != nil {
		return err
	}
	if o.MaxRounds < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max rounds must be non-negative, got %d", o.MaxRounds)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Variant == "" {
		o.Variant = VariantFluidC
	}
	if o.TieBreak == "" {
		o.TieBreak = TieRandom
	}
	if o.Order == "" {
		o.Order = OrderGraph
	}
	return o
}

// ParseVariant accepts "fluidc", "fluidc_plus" and the aliases "fluidc+",
// "plus" and "fluidc-plus". Empty input yields VariantFluidC.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(VariantFluidC), "baseline":
		return VariantFluidC, nil
	case string(VariantFluidCPlus), "fluidc+", "fluidc-plus", "plus":
		return VariantFluidCPlus, nil
	}
	return "", errors.New(errors.ErrCodeInvalidVariant, "unknown variant %q (want fluidc or fluidc_plus)", s)
}

// ParseTieBreak accepts "random" and "largest". Empty input yields TieRandom.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(strings.ToLower(strings.TrimSpace(s))) {
	case "", TieRandom:
		return TieRandom, nil
	case TieLargest:
		return TieLargest, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown tie-break %q (want random or largest)", s)
}

// ParseOrder accepts "graph" and "degree". Empty input yields OrderGraph.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderGraph:
		return OrderGraph, nil
	case OrderDegree:
		return OrderDegree, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown order %q (want graph or degree)", s)
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	switch v {
	case VariantFluidCPlus:
		return "FluidC+"
	case VariantFluidC, "":
		return "FluidC"
	}
	return fmt.Sprintf("Variant(%s)", string(v))
}
