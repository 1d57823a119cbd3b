// Package nodelink renders the assembled CV graph as a node-link diagram.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz: the
// profile at the center, categories fanning out to items, skill groups and
// skills. It consumes the render descriptors produced by the graphview
// assembler, so node emphasis and edge fading match what an interactive
// surface would show.
//
// # Usage
//
// Convert assembled nodes and edges to DOT format, then render to SVG:
//
//	nodes := graphview.BuildNodes(data, opts)
//	edges := graphview.BuildEdges(data, selectedID, editMode)
//	dot := nodelink.ToDOT(nodes, edges, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Layout
//
// The emitted DOT pins every node at its assembled position (pos="x,y!")
// and selects the neato engine, so Graphviz draws the radial layout the
// assembler computed instead of re-laying-out the tree.
//
// # Styling
//
// Node fill follows the node type; emphasis follows the visibility state:
// detailed nodes render solid, quickview nodes lighter, dormant nodes grey.
// Draft nodes get a dashed outline. Edge color follows the visibility class
// so faded regions of the graph read as background.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
