// Package graphview assembles the renderable graph: it merges the node
// model, the state classifier, and the layout engine into per-node render
// descriptors plus classified edges.
//
// The assembler is the last pure stage before a rendering surface takes
// over. It filters drafts, resolves each node's position (computed, pinned,
// or persisted), attaches long-form content, and classifies edge visibility
// from the states of both endpoints.
package graphview

import (
	"fmt"

	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/cv/content"
	"github.com/fschmidt/virtualcv/pkg/layout"
)

// =============================================================================
// Render Descriptors
// =============================================================================

// RenderNode is one positioned, stateful node ready for a rendering surface.
type RenderNode struct {
	ID        string   `json:"id" bson:"id"`
	X         float64  `json:"x" bson:"x"`
	Y         float64  `json:"y" bson:"y"`
	Draggable bool     `json:"draggable" bson:"draggable"`
	Data      NodeData `json:"data" bson:"data"`
}

// NodeData is the payload a rendering surface needs to draw one node.
// Profile fields are flattened; Content is empty in inspector mode, where
// the side panel owns the long-form text.
type NodeData struct {
	Label    string      `json:"label" bson:"label"`
	NodeType cv.NodeType `json:"nodeType" bson:"node_type"`
	State    cv.State    `json:"state" bson:"state"`

	// Profile fields
	Name       string `json:"name,omitempty" bson:"name,omitempty"`
	Title      string `json:"title,omitempty" bson:"title,omitempty"`
	Subtitle   string `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Experience string `json:"experience,omitempty" bson:"experience,omitempty"`
	Email      string `json:"email,omitempty" bson:"email,omitempty"`
	Location   string `json:"location,omitempty" bson:"location,omitempty"`
	PhotoURL   string `json:"photoUrl,omitempty" bson:"photo_url,omitempty"`

	// Item fields
	Company   string `json:"company,omitempty" bson:"company,omitempty"`
	DateRange string `json:"dateRange,omitempty" bson:"date_range,omitempty"`

	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Content     string `json:"content,omitempty" bson:"content,omitempty"`
	Icon        string `json:"icon,omitempty" bson:"icon,omitempty"`

	Selected bool `json:"selected" bson:"selected"`
	IsDraft  bool `json:"isDraft,omitempty" bson:"is_draft,omitempty"`
	EditMode bool `json:"editMode,omitempty" bson:"edit_mode,omitempty"`

	// OnAddChild is invoked with this node's id when the surface requests a
	// new child. Never serialized.
	OnAddChild func(parentID string) `json:"-" bson:"-"`
}

// Edge visibility classes, derived from the endpoint states.
const (
	EdgeActive  = "edge-active"  // both endpoints non-dormant
	EdgePartial = "edge-partial" // exactly one endpoint non-dormant
	EdgeDormant = "edge-dormant" // both endpoints dormant
)

// RenderEdge is one parent→child connection with its visibility class.
type RenderEdge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Class  string `json:"class" bson:"class"`
}

// =============================================================================
// Options
// =============================================================================

// Options configures a BuildNodes pass.
type Options struct {
	// SelectedID is the currently selected node id; empty means none.
	SelectedID string

	// Content supplies long-form markdown per node id.
	Content content.Map

	// AutoLayout computes positions with the layout engine. When false the
	// persisted positions in the CV data are used verbatim.
	AutoLayout bool

	// InspectorMode keeps nodes compact and content out of node payloads.
	InspectorMode bool

	// EditMode includes draft nodes and makes nodes draggable.
	EditMode bool

	// OnAddChild is forwarded into every node payload.
	OnAddChild func(parentID string)

	// Positions pins node coordinates, overriding both auto layout and
	// persisted positions. Supplied mid-drag so recomputation does not fight
	// the user's manual placement.
	Positions map[string]cv.Position
}

// DefaultOptions returns the standard viewing configuration: auto layout,
// no selection, published nodes only.
func DefaultOptions() Options {
	return Options{AutoLayout: true}
}

// =============================================================================
// Assembly
// =============================================================================

// BuildNodes assembles render nodes for the visible part of the CV.
//
// Draft nodes are dropped unless edit mode is on; the layout pass runs over
// the visible set only, so a filtered-out draft never influences spacing.
// Nodes without a resolvable position default to the origin.
func BuildNodes(data cv.Data, opts Options) []RenderNode {
	visible := data.Visible(opts.EditMode)
	states := cv.StateMap(visible, opts.SelectedID, opts.InspectorMode)
	positions := resolvePositions(data, visible, opts)

	out := make([]RenderNode, 0, len(visible))
	for _, node := range visible {
		pos := positions[node.ID] // zero value = origin fallback

		nodeData := buildNodeData(node, states[node.ID], opts)
		out = append(out, RenderNode{
			ID:        node.ID,
			X:         pos.X,
			Y:         pos.Y,
			Draggable: opts.EditMode,
			Data:      nodeData,
		})
	}
	return out
}

// BuildEdges assembles one edge per visible parent→child pair.
//
// Edges are only emitted when both endpoints survive draft filtering, and
// carry a visibility class derived from the endpoint states so the surface
// can fade unrelated connections without special-casing combinations.
func BuildEdges(data cv.Data, selectedID string, editMode bool) []RenderEdge {
	visible := data.Visible(editMode)
	states := cv.StateMap(visible, selectedID, false)

	visibleIDs := make(map[string]bool, len(visible))
	for _, n := range visible {
		visibleIDs[n.ID] = true
	}

	var edges []RenderEdge
	for _, node := range visible {
		if node.ParentID == "" || !visibleIDs[node.ParentID] {
			continue
		}

		sourceState := states[node.ParentID]
		targetState := states[node.ID]

		class := EdgeDormant
		switch {
		case sourceState != cv.StateDormant && targetState != cv.StateDormant:
			class = EdgeActive
		case sourceState != cv.StateDormant || targetState != cv.StateDormant:
			class = EdgePartial
		}

		edges = append(edges, RenderEdge{
			ID:     fmt.Sprintf("e-%s-%s", node.ParentID, node.ID),
			Source: node.ParentID,
			Target: node.ID,
			Class:  class,
		})
	}
	return edges
}

// =============================================================================
// Internal Helpers
// =============================================================================

// resolvePositions picks the position source: pinned > computed > persisted.
func resolvePositions(data cv.Data, visible []cv.Node, opts Options) map[string]cv.Position {
	if len(opts.Positions) > 0 {
		return opts.Positions
	}
	if opts.AutoLayout {
		computed := layout.Compute(visible, opts.SelectedID, opts.InspectorMode)
		m := make(map[string]cv.Position, len(computed))
		for _, p := range computed {
			m[p.NodeID] = p
		}
		return m
	}
	return data.PositionMap()
}

func buildNodeData(node cv.Node, state cv.State, opts Options) NodeData {
	d := NodeData{
		Label:       node.Label,
		NodeType:    node.Type,
		State:       state,
		Description: node.Description,
		Selected:    node.ID == opts.SelectedID,
		IsDraft:     node.IsDraft,
		EditMode:    opts.EditMode,
		OnAddChild:  opts.OnAddChild,
	}

	switch node.Type {
	case cv.TypeProfile:
		d.Name = node.Name
		d.Title = node.Title
		d.Subtitle = node.Subtitle
		d.Experience = node.Experience
		d.Email = node.Email
		d.Location = node.Location
		d.PhotoURL = node.PhotoURL
	case cv.TypeCategory:
		if section, ok := node.Section(); ok {
			d.Icon = section.Icon
		}
	case cv.TypeItem:
		d.Company = node.Company
		d.DateRange = node.DateRange
	}

	// Inspector mode defers long-form content to the side panel.
	if !opts.InspectorMode && opts.Content != nil {
		if body, ok := opts.Content.Get(node.ID); ok {
			d.Content = body
		}
	}

	return d
}
