package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/fluidc/pkg/graph"
	"github.com/matzehuels/fluidc/pkg/render/nodelink"
)

// Render encodes res in format. Report formats (json, yaml, csv) need only
// the result; diagram formats (dot, svg, png, pdf) also draw g.
func Render(ctx context.Context, g *graph.Graph, res *Result, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON, FormatYAML, FormatCSV:
		var buf bytes.Buffer
		if err := NewReport(res).Encode(&buf, format); err != nil {
			return nil, fmt.Errorf("encode %s: %w", format, err)
		}
		return buf.Bytes(), nil
	}

	dot := nodelink.ToDOT(g, res.Partition, nodelink.Options{})
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatDOT:
		data = []byte(dot)
	case FormatSVG:
		data, err = nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		data, err = nodelink.RenderPNG(ctx, dot, 2.0)
	case FormatPDF:
		data, err = nodelink.RenderPDF(ctx, dot)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}
