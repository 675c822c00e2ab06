// Package cache stores detection results keyed by graph content and run
// options.
//
// A [Cache] is a byte store with TTLs. Three backends are provided:
// [FileCache] for the CLI, [RedisCache] for the API server and [NullCache]
// when caching is disabled. Keys come from a [Keyer], so callers never build
// key strings by hand.
//
// Only seeded runs are cacheable: an unseeded run is a fresh random draw
// every time and callers skip the cache for it.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for encoded results.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Entry lifetimes.
const (
	// TTLPartition applies to a single detection result. A result depends
	// only on the graph and the seeded options, so it stays valid until
	// evicted.
	TTLPartition = 30 * 24 * time.Hour

	// TTLTrials applies to a ranked batch of trials.
	TTLTrials = 7 * 24 * time.Hour
)

// Keyer derives cache keys.
type Keyer interface {
	// PartitionKey identifies one detection run on the graph with the given
	// content hash.
	PartitionKey(graphHash string, opts PartitionKeyOpts) string

	// TrialsKey identifies a batch of trials on the graph.
	TrialsKey(graphHash string, opts TrialsKeyOpts) string
}

// PartitionKeyOpts are the options that change a detection result.
type PartitionKeyOpts struct {
	K         int    `json:"k"`
	Seed      uint64 `json:"seed"`
	MaxRounds int    `json:"max_rounds"`
	Variant   string `json:"variant"`
	TieBreak  string `json:"tie_break"`
	Order     string `json:"order"`
	Refine    bool   `json:"refine"`
}

// TrialsKeyOpts are the options that change a trials batch.
type TrialsKeyOpts struct {
	PartitionKeyOpts
	Trials int `json:"trials"`
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PartitionKey returns "partition:<sha256>".
func (DefaultKeyer) PartitionKey(graphHash string, opts PartitionKeyOpts) string {
	return hashKey("partition", graphHash, opts)
}

// TrialsKey returns "trials:<sha256>".
func (DefaultKeyer) TrialsKey(graphHash string, opts TrialsKeyOpts) string {
	return hashKey("trials", graphHash, opts)
}
