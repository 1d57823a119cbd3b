package cv

import "slices"

// =============================================================================
// State - Visual Node States
// =============================================================================

// State is the ephemeral visual state of a node, derived from the current
// selection. States are never persisted and are recomputed on every
// selection change.
type State string

const (
	// StateDetailed is the fully expanded representation.
	StateDetailed State = "detailed"
	// StateQuickview is the compact representation (icon/photo only).
	StateQuickview State = "quickview"
	// StateDormant is the minimal representation for unrelated nodes.
	StateDormant State = "dormant"
)

// =============================================================================
// State Classifier
// =============================================================================

// ComputeNodeState classifies a node for the given selection.
//
// With no selection the profile is detailed and its direct children are
// quickview. With a selection the selected node is detailed, while its direct
// children and its full ancestor chain stay quickview. Everything else is
// dormant.
//
// Inspector mode caps the would-be-detailed node at quickview: the graph
// stays compact and full content is shown in a side panel instead.
//
// An id absent from nodes classifies as dormant rather than erroring, since
// draft filtering may have removed the node from the active set.
func ComputeNodeState(nodeID, selectedID string, nodes []Node, inspectorMode bool) State {
	node := FindNode(nodes, nodeID)
	if node == nil {
		return StateDormant
	}

	focused := StateDetailed
	if inspectorMode {
		focused = StateQuickview
	}

	if selectedID == "" {
		if node.Type == TypeProfile {
			return focused
		}
		if profile := FindNode(nodes, node.ParentID); profile != nil && profile.Type == TypeProfile {
			return StateQuickview
		}
		return StateDormant
	}

	if nodeID == selectedID {
		return focused
	}
	if node.ParentID == selectedID {
		return StateQuickview
	}
	if slices.Contains(AncestorIDs(selectedID, nodes), nodeID) {
		return StateQuickview
	}
	return StateDormant
}

// StateMap classifies every node in one pass. The selected node's ancestor
// chain is resolved once, so this is the preferred entry point when the
// layout engine or assembler needs all states for a selection change.
func StateMap(nodes []Node, selectedID string, inspectorMode bool) map[string]State {
	states := make(map[string]State, len(nodes))

	focused := StateDetailed
	if inspectorMode {
		focused = StateQuickview
	}

	if selectedID == "" {
		profileID := ""
		for i := range nodes {
			if nodes[i].Type == TypeProfile {
				profileID = nodes[i].ID
				break
			}
		}
		for _, n := range nodes {
			switch {
			case n.Type == TypeProfile:
				states[n.ID] = focused
			case n.ParentID == profileID && profileID != "":
				states[n.ID] = StateQuickview
			default:
				states[n.ID] = StateDormant
			}
		}
		return states
	}

	ancestors := AncestorIDs(selectedID, nodes)
	for _, n := range nodes {
		switch {
		case n.ID == selectedID:
			states[n.ID] = focused
		case n.ParentID == selectedID:
			states[n.ID] = StateQuickview
		case slices.Contains(ancestors, n.ID):
			states[n.ID] = StateQuickview
		default:
			states[n.ID] = StateDormant
		}
	}
	return states
}
