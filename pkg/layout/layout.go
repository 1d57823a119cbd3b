package layout

import "github.com/fschmidt/virtualcv/pkg/cv"

// Center coordinate for the profile node.
const (
	CenterX = 400.0
	CenterY = 300.0
)

// slot is the preconfigured placement for a category: horizontal direction
// away from the profile and a fixed vertical offset.
type slot struct {
	dirX    float64 // -1 left, +1 right
	offsetY float64
}

// categorySlots maps category node ids to their layout slots. The template
// supports exactly the four known section categories; a category with any
// other id is not laid out.
var categorySlots = map[string]slot{
	"work":      {dirX: -1, offsetY: -100},
	"skills":    {dirX: 1, offsetY: -150},
	"education": {dirX: 1, offsetY: 200},
	"languages": {dirX: -1, offsetY: 200},
}

// Jitter scales per level, x then y. Deeper levels wobble less.
const (
	categoryJitterX = 8.0
	categoryJitterY = 15.0
	itemJitterX     = 10.0
	itemJitterY     = 8.0
	skillJitterX    = 6.0
	skillJitterY    = 5.0
)

// skillSpacingFactor tightens vertical packing at the leaf level.
const skillSpacingFactor = 0.7

// Compute derives absolute positions for every reachable node.
//
// The profile is placed at the fixed center; categories fan out along their
// configured slots; items stack vertically beside their category, centered
// on its y coordinate; skills stack beside their item with tighter packing.
// Horizontal distance at every level is half parent width + MinGap + half
// child width, measured in each node's current state, so spacing follows
// the detail level of the selection.
//
// Nodes with no configured path to the profile (orphans, categories without
// a slot) are absent from the result; callers default them to a fallback
// coordinate. A collection without a profile yields an empty layout.
func Compute(nodes []cv.Node, selectedID string, inspectorMode bool) []cv.Position {
	var positions []cv.Position
	children := cv.ChildrenMap(nodes)
	states := cv.StateMap(nodes, selectedID, inspectorMode)

	var profile *cv.Node
	for i := range nodes {
		if nodes[i].Type == cv.TypeProfile {
			profile = &nodes[i]
			break
		}
	}
	if profile == nil {
		return positions
	}
	profileState := stateOf(states, profile.ID)

	positions = append(positions, cv.Position{NodeID: profile.ID, X: CenterX, Y: CenterY})

	for _, category := range children[profile.ID] {
		cfg, ok := categorySlots[category.ID]
		if !ok {
			continue
		}
		categoryState := stateOf(states, category.ID)

		categoryDistance := horizontalDistance(*profile, profileState, category, categoryState)
		catX := CenterX + cfg.dirX*categoryDistance + Jitter(category.ID, categoryJitterX)
		catY := CenterY + cfg.offsetY + Jitter(category.ID+"y", categoryJitterY)
		positions = append(positions, cv.Position{NodeID: category.ID, X: catX, Y: catY})

		items := children[category.ID]
		if len(items) == 0 {
			continue
		}

		itemSpacing := verticalSpacing(items, states)
		startY := catY - float64(len(items)-1)*itemSpacing/2

		for itemIndex, item := range items {
			itemState := stateOf(states, item.ID)

			itemDistance := horizontalDistance(category, categoryState, item, itemState)
			itemX := catX + cfg.dirX*itemDistance + Jitter(item.ID, itemJitterX)
			itemY := startY + float64(itemIndex)*itemSpacing + Jitter(item.ID+"y", itemJitterY)
			positions = append(positions, cv.Position{NodeID: item.ID, X: itemX, Y: itemY})

			skills := children[item.ID]
			if len(skills) == 0 {
				continue
			}

			skillSpacing := verticalSpacing(skills, states) * skillSpacingFactor
			skillStartY := itemY - float64(len(skills)-1)*skillSpacing/2

			for skillIndex, skill := range skills {
				skillState := stateOf(states, skill.ID)

				skillDistance := horizontalDistance(item, itemState, skill, skillState)
				skillX := itemX + cfg.dirX*skillDistance + Jitter(skill.ID, skillJitterX)
				skillY := skillStartY + float64(skillIndex)*skillSpacing + Jitter(skill.ID+"y", skillJitterY)
				positions = append(positions, cv.Position{NodeID: skill.ID, X: skillX, Y: skillY})
			}
		}
	}

	return positions
}

// horizontalDistance is the center-to-center distance between a parent and
// child: half parent width + gap + half child width, in current states.
func horizontalDistance(parent cv.Node, parentState cv.State, child cv.Node, childState cv.State) float64 {
	parentSize := NodeSize(parent, parentState)
	childSize := NodeSize(child, childState)
	return parentSize.Width/2 + MinGap + childSize.Width/2
}

// verticalSpacing derives stack spacing from the tallest sibling's current
// footprint plus half the minimum gap.
func verticalSpacing(nodes []cv.Node, states map[string]cv.State) float64 {
	maxHeight := 0.0
	for _, node := range nodes {
		size := NodeSize(node, stateOf(states, node.ID))
		if size.Height > maxHeight {
			maxHeight = size.Height
		}
	}
	return maxHeight + MinGap*0.5
}

func stateOf(states map[string]cv.State, id string) cv.State {
	if s, ok := states[id]; ok {
		return s
	}
	return cv.StateDormant
}
