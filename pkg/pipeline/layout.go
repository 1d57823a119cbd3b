package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/layout"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout computes positions for the visible nodes.
//
// Manual layout short-circuits to the persisted positions carried in the
// data; otherwise the radial layout engine runs over the visible set, so a
// filtered-out draft never influences spacing.
func GenerateLayout(data cv.Data, opts Options) []cv.Position {
	if opts.ManualLayout {
		return data.Positions
	}
	visible := data.Visible(opts.EditMode)
	return layout.Compute(visible, opts.SelectedID, opts.InspectorMode)
}

// =============================================================================
// Serialization
// =============================================================================

// MarshalPositions serializes computed positions for caching.
func MarshalPositions(positions []cv.Position) ([]byte, error) {
	return json.Marshal(positions)
}

// UnmarshalPositions deserializes cached positions.
func UnmarshalPositions(data []byte) ([]cv.Position, error) {
	var positions []cv.Position
	if err := json.Unmarshal(data, &positions); err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}
	return positions, nil
}
