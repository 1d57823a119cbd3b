// Package layout computes 2D positions for the CV graph.
//
// The engine is a fixed-template radial layout, not a general solver: the
// profile sits at a fixed center, the four known categories fan out along
// preconfigured directions, and items/skills stack outward from their
// parents. Spacing at every level is derived from each node's rendered size
// in its current visual state, so a detailed profile pushes its categories
// farther out than a dormant one.
//
// All computation is pure and deterministic: identical inputs produce
// byte-identical positions. The only "organic" element is a positional
// jitter derived from a stable hash of the node id.
package layout

import "github.com/fschmidt/virtualcv/pkg/cv"

// MinGap is the minimum edge-to-edge gap between a node and its children.
const MinGap = 40.0

// Size is a rendered node footprint in user units (pixels).
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// fallbackSize is used for unknown node types.
var fallbackSize = Size{Width: 80, Height: 80}

// nodeSizes maps (node type, state) to the footprint the render surface
// draws for that combination. The values mirror the rendered components;
// the engine never measures, it looks up.
var nodeSizes = map[cv.NodeType]map[cv.State]Size{
	cv.TypeProfile: {
		cv.StateDormant:   {Width: 10, Height: 10},
		cv.StateQuickview: {Width: 80, Height: 80},
		cv.StateDetailed:  {Width: 360, Height: 420},
	},
	cv.TypeCategory: {
		cv.StateDormant:   {Width: 10, Height: 10},
		cv.StateQuickview: {Width: 80, Height: 80},
		cv.StateDetailed:  {Width: 150, Height: 80},
	},
	cv.TypeItem: {
		cv.StateDormant:   {Width: 10, Height: 10},
		cv.StateQuickview: {Width: 80, Height: 80},
		cv.StateDetailed:  {Width: 420, Height: 300},
	},
	cv.TypeSkillGroup: {
		cv.StateDormant:   {Width: 10, Height: 10},
		cv.StateQuickview: {Width: 80, Height: 80},
		cv.StateDetailed:  {Width: 160, Height: 80},
	},
	cv.TypeSkill: {
		cv.StateDormant:   {Width: 10, Height: 10},
		cv.StateQuickview: {Width: 80, Height: 80},
		cv.StateDetailed:  {Width: 200, Height: 120},
	},
}

// NodeSize returns the rendered footprint for a node in the given state.
// Unknown node types fall back to an 80×80 square; unknown states fall back
// to the type's dormant size.
func NodeSize(node cv.Node, state cv.State) Size {
	typeSizes, ok := nodeSizes[node.Type]
	if !ok {
		return fallbackSize
	}
	if size, ok := typeSizes[state]; ok {
		return size
	}
	return typeSizes[cv.StateDormant]
}
