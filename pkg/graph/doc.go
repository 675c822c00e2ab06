// Package graph provides the read-only graph view consumed by the fluid
// propagator, plus the minimal readers the CLI and API need to obtain one.
//
// # Architecture
//
// The propagator never mutates topology. It only needs three operations,
// captured by [View]:
//
//	Nodes()        stable visiting order
//	Neighbors(id)  adjacency, fails with INVALID_NODE for unknown ids
//	Size()         node count
//
// [Graph] implements [View] on top of gonum's simple.UndirectedGraph. Node
// ids are strings; the gonum node id of a node is its position in Nodes(),
// so gonum algorithms (modularity, for example) can be run on [Graph.Gonum]
// and mapped back by index.
//
// # Serialization
//
// Graphs use the same node-link JSON format for files, API bodies and cache
// keys:
//
//	{
//	  "nodes": [{"id": "a"}, {"id": "b"}],
//	  "edges": [{"from": "a", "to": "b"}]
//	}
//
// Edges are undirected; "from" and "to" only name the endpoints. Whitespace
// separated edge lists are accepted as well:
//
//	# comment
//	a b
//	b c
//	d        # isolated node
//
// Common operations:
//
//	g, _ := graph.ReadFile("karate.txt")     // File → Graph
//	data, _ := graph.Marshal(g)              // Graph → canonical JSON
//	g, _ = graph.Unmarshal(data)             // JSON → Graph
//	g, k, _ := graph.Dataset("karate")       // built-in dataset + default k
//
// # Concurrency
//
// A [Graph] is safe for concurrent reads once construction is finished.
// Independent propagation runs may share one graph.
package graph
