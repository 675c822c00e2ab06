// Package pkg provides the core libraries for fluidc community detection.
//
// # Overview
//
// fluidc partitions undirected graphs into a requested number of communities
// using Fluid Communities label propagation (FluidC) and its agreement-weighted
// variant (FluidC+). The pkg directory is organized into these areas:
//
//  1. [graph] - Undirected graph model, node-link JSON and edge list input,
//     built-in datasets
//  2. [fluid] - The propagation engine, scorers and the seed refiner
//  3. [partition] - Partition quality: modularity and NMI
//  4. [pipeline] - Orchestration (load → detect → cache → record → render)
//  5. [cache], [history] - Result caching and run history backends
//  6. [render] - Node-link drawings of labeled graphs
//
// # Architecture
//
// The typical data flow through fluidc:
//
//	Edge list / graph JSON / dataset
//	         ↓
//	    [graph] package (load and validate)
//	         ↓
//	    [fluid] package (propagate labels until stable)
//	         ↓
//	    [partition] package (score the result)
//	         ↓
//	    JSON/YAML/CSV/DOT/SVG/PNG/PDF output
//
// # Quick Start
//
// Detect two communities in Zachary's karate club:
//
//	g := graph.Karate()
//	res, err := fluid.Detect(ctx, g, 2, fluid.Options{Seed: fluid.SeedPtr(42)})
//	if err != nil {
//	    return err
//	}
//	q := partition.Modularity(g, res.Labels)
//
// The [pipeline] package wraps the same call with caching, history and
// output encoding, and is shared by the CLI and the HTTP server:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), cache.NewDefaultKeyer(), nil, logger)
//	out, err := runner.Detect(ctx, g, pipeline.Options{K: 2})
//	data, err := pipeline.Render(ctx, g, out, "svg")
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/fluid/...              # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/fluidc/pkg/graph
// [fluid]: https://pkg.go.dev/github.com/matzehuels/fluidc/pkg/fluid
// [partition]: https://pkg.go.dev/github.com/matzehuels/fluidc/pkg/partition
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/fluidc/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/fluidc/pkg/cache
// [history]: https://pkg.go.dev/github.com/matzehuels/fluidc/pkg/history
// [render]: https://pkg.go.dev/github.com/matzehuels/fluidc/pkg/render
package pkg
