package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/fluidc/pkg/fluid"
	"github.com/matzehuels/fluidc/pkg/graph"
	"github.com/matzehuels/fluidc/pkg/render"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds node metadata to labels.
	Detailed bool

	// NoClusters colors nodes by community without drawing cluster boxes.
	NoClusters bool
}

// palette holds community fill colors; it wraps for k > len(palette).
var palette = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462",
	"#b3de69", "#fccde5", "#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f",
}

// Color returns the fill color of community c.
func Color(c int) string {
	if c < 0 {
		return "white"
	}
	return palette[c%len(palette)]
}

// ToDOT converts g and its labeling res to Graphviz DOT. res must come from
// a run on g.
func ToDOT(g *graph.Graph, res fluid.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontsize=14];\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	labels := res.Assignment()
	members := res.Communities()

	if opts.NoClusters {
		for _, id := range g.Nodes() {
			writeNode(&buf, "  ", g, id, labels[id], opts.Detailed)
		}
	} else {
		for c, ids := range members {
			if len(ids) == 0 {
				continue
			}
			fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", c)
			fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("community %d (%d)", c, len(ids)))
			buf.WriteString("    style=\"rounded,dashed\";\n")
			for _, id := range ids {
				writeNode(&buf, "    ", g, id, c, opts.Detailed)
			}
			buf.WriteString("  }\n")
		}
		for _, id := range res.Unlabeled() {
			writeNode(&buf, "  ", g, id, fluid.Unlabeled, opts.Detailed)
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, indent string, g *graph.Graph, id string, community int, detailed bool) {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(g, id, detailed)),
		fmt.Sprintf("fillcolor=%q", Color(community)),
	}
	if community == fluid.Unlabeled {
		attrs = append(attrs, "style=\"filled,dashed\"")
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, id, strings.Join(attrs, ", "))
}

func fmtLabel(g *graph.Graph, id string, detailed bool) string {
	label := g.Label(id)
	if label == "" {
		label = id
	}
	if !detailed {
		return label
	}
	meta := g.Meta(id)
	parts := []string{label}
	for _, k := range slices.Sorted(maps.Keys(meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, meta[k]))
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG with the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the SVG scales from its viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT source to PDF through SVG.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders DOT source to PNG through SVG at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
