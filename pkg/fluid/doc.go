// Package fluid implements fluid community detection (FluidC) and its
// density-weighted refinement (FluidC+).
//
// k "fluids" start on k seed nodes and spread over an undirected graph. Every
// community projects a density of 1/size onto its members, so small
// communities vote harder per member and expand until the partition
// stabilizes.
//
// # Algorithm
//
// A run is a sequence of node-sequential rounds over a visiting order fixed
// at initialization. For each node v:
//
//  1. v is excluded from its own community's size when that community's
//     density is computed for v's vote
//  2. v's neighbors' labels plus v's own label are collected as candidates
//  3. each candidate is scored by the run's [Scorer]
//  4. the best score wins; a tie keeps v's current label when it is tied,
//     otherwise the [TieBreak] policy decides
//
// Labels assigned earlier in a round are visible to later nodes in the same
// round. Densities are computed once per round from the label counts at
// round start. A round without any label change is a fixed point and ends
// the run; otherwise the run stops at the round budget or when the context
// is cancelled, reporting Converged=false.
//
// # Variants
//
//	VariantFluidC      score(c) = density(c)
//	VariantFluidCPlus  score(c) = density(c) × share of v's votes held by c
//
// Both share the round skeleton; only the [Scorer] differs.
//
// # Randomness
//
// Seeding and random tie-breaks draw from a [Source]. Given the same seed,
// graph, variant and k, two runs produce identical labels and round counts.
// Tests can inject a deterministic [Source] through [Options].
//
// # Restarts
//
// [Refiner] reproduces the restart loop of FluidC+: it reseeds one member of
// every community found, keeps track of seeds that produced unstable
// partitions (measured by NMI between consecutive partitions) and stops after
// a bounded number of restarts.
//
// # Concurrency
//
// A [Propagator] holds configuration only. Runs never share state, so
// independent runs on the same graph may execute in parallel.
package fluid
