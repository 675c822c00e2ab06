// Package nodelink draws a partitioned graph as a node-link diagram.
//
// Each community becomes a Graphviz cluster filled with its own color;
// unlabeled nodes are drawn dashed outside every cluster.
//
//	dot := nodelink.ToDOT(g, res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [ToDOT] output is plain DOT source and can also be saved and processed
// with external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering (Graphviz compiled to WebAssembly), so no system Graphviz install
// is needed.
package nodelink
