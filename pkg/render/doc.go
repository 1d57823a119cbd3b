// Package render provides visualization rendering for CV graphs.
//
// # Overview
//
// This package contains the rendering surfaces that turn an assembled CV
// graph into shareable outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Node-link diagrams (in [nodelink] subpackage)
//   - Flat markdown documents (in [document] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the CV as a directed graph using
// Graphviz: the profile at the root, categories fanning out to items and
// skills. Node styling follows the visibility state computed by the
// assembler, so a selection renders with its context emphasized and the
// rest faded.
//
//	dot := nodelink.ToDOT(nodes, edges, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Documents
//
// The [document] subpackage flattens the CV tree into a traditional
// top-to-bottom markdown résumé, for export and for text-only consumers.
//
// [nodelink]: github.com/fschmidt/virtualcv/pkg/render/nodelink
// [document]: github.com/fschmidt/virtualcv/pkg/render/document
package render
