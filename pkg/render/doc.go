// Package render converts rendered SVG into other output formats.
//
// The [ToPDF] and [ToPNG] functions shell out to rsvg-convert (librsvg).
// Node-link rendering of labeled graphs lives in the [nodelink] subpackage:
//
//	dot := nodelink.ToDOT(g, res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(svg, 2.0)
//
// [nodelink]: github.com/matzehuels/fluidc/pkg/render/nodelink
package render
