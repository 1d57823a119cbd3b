package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/graphview"
	"github.com/fschmidt/virtualcv/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes secondary lines (title, company, date range) in
	// node labels. When false, only the label is shown.
	Detailed bool
}

// pointsPerPixel converts assembled screen coordinates to Graphviz points.
const pointsPerPixel = 72.0 / 96.0

// ToDOT converts an assembled CV graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Every node is pinned at its assembled position, so the diagram reproduces
// the radial layout rather than letting Graphviz re-layout the tree.
func ToDOT(nodes []graphview.RenderNode, edges []graphview.RenderEdge, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph CV {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		label := fmtLabel(n.Data, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", e.Source, e.Target, edgeColor(e.Class))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(d graphview.NodeData, detailed bool) string {
	label := d.Label
	if d.NodeType == cv.TypeProfile && d.Name != "" {
		label = d.Name
	}
	if !detailed {
		return label
	}

	var parts []string
	switch d.NodeType {
	case cv.TypeProfile:
		if d.Title != "" {
			parts = append(parts, d.Title)
		}
		if d.Location != "" {
			parts = append(parts, d.Location)
		}
	case cv.TypeItem:
		if d.Company != "" {
			parts = append(parts, d.Company)
		}
		if d.DateRange != "" {
			parts = append(parts, d.DateRange)
		}
	}

	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n graphview.RenderNode, label string) []string {
	// Graphviz points run bottom-up; screen coordinates run top-down.
	x := n.X * pointsPerPixel
	y := -n.Y * pointsPerPixel

	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%.1f,%.1f!\"", x, y),
	}

	style := "rounded,filled"
	if n.Data.IsDraft {
		style += ",dashed"
	}

	switch n.Data.State {
	case cv.StateDetailed:
		attrs = append(attrs,
			fmt.Sprintf("fillcolor=%q", fillColor(n.Data.NodeType)),
			"fontcolor=black", "penwidth=2")
	case cv.StateQuickview:
		attrs = append(attrs,
			fmt.Sprintf("fillcolor=%q", fillColor(n.Data.NodeType)),
			"fontcolor=black")
	default:
		attrs = append(attrs, "fillcolor=\"#eeeeee\"", "fontcolor=\"#999999\"", "color=\"#cccccc\"")
	}

	attrs = append(attrs, fmt.Sprintf("style=%q", style))
	return attrs
}

func fillColor(t cv.NodeType) string {
	switch t {
	case cv.TypeProfile:
		return "#dbeafe"
	case cv.TypeCategory:
		return "#fef3c7"
	case cv.TypeItem:
		return "#dcfce7"
	case cv.TypeSkillGroup:
		return "#fce7f3"
	case cv.TypeSkill:
		return "#ede9fe"
	default:
		return "white"
	}
}

func edgeColor(class string) string {
	switch class {
	case graphview.EdgeActive:
		return "#64748b"
	case graphview.EdgePartial:
		return "#b0b8c4"
	default:
		return "#e2e8f0"
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
