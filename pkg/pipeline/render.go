package pipeline

import (
	"fmt"

	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/graphview"
	"github.com/fschmidt/virtualcv/pkg/render/document"
	"github.com/fschmidt/virtualcv/pkg/render/nodelink"
)

// =============================================================================
// Rendering
// =============================================================================

// RenderView renders the assembled view into every requested format.
//
// Graph formats (dot, svg, png, pdf) share one DOT emission; json serializes
// the view itself; markdown flattens the underlying data into a document and
// ignores the graph entirely.
func RenderView(nodes []graphview.RenderNode, edges []graphview.RenderEdge, data cv.Data, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()

	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	needsDOT := false
	for _, f := range opts.Formats {
		switch f {
		case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
			needsDOT = true
		}
	}
	if needsDOT {
		dot = nodelink.ToDOT(nodes, edges, nodelink.Options{Detailed: opts.Detailed})
	}

	for _, format := range opts.Formats {
		out, err := renderFormat(format, dot, nodes, edges, data, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = out
	}

	return artifacts, nil
}

func renderFormat(format, dot string, nodes []graphview.RenderNode, edges []graphview.RenderEdge, data cv.Data, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return MarshalView(View{Nodes: nodes, Edges: edges})
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(dot)
	case FormatPNG:
		return nodelink.RenderPNG(dot, opts.Scale)
	case FormatPDF:
		return nodelink.RenderPDF(dot)
	case FormatMarkdown:
		doc := document.Render(data, document.Options{
			Content:       opts.Content,
			IncludeDrafts: opts.EditMode,
		})
		return []byte(doc), nil
	default:
		return nil, ValidateFormat(format)
	}
}
