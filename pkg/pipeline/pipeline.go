// Package pipeline provides the core rendering pipeline for the CV.
//
// This package implements the complete load → layout → assemble → render
// pipeline used by the CLI, the API server, and the interactive editor. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Fetch the CV node collection from a store, the API, or a file
//  2. Layout: Compute the radial positions for the visible nodes
//  3. Assemble: Build render nodes and classified edges for the view
//  4. Render: Generate output in various formats (SVG, PNG, DOT, markdown)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  pipeline.FileSource{Path: "cv.json"},
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load only
//	data, err := runner.Load(ctx, opts)
//
//	// Layout with existing data
//	positions, err := runner.ComputeLayout(ctx, data, opts)
//
//	// Assemble and render with existing data
//	nodes, edges := runner.Assemble(data, positions, opts)
//	artifacts, err := runner.Render(ctx, nodes, edges, data, opts)
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fschmidt/virtualcv/pkg/cache"
	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/cv/content"
	"github.com/fschmidt/virtualcv/pkg/graphview"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and TUI
// =============================================================================

const (
	// DefaultScale is the default PNG resolution multiplier.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatMarkdown = "markdown"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:     true,
	FormatDOT:      true,
	FormatSVG:      true,
	FormatPNG:      true,
	FormatPDF:      true,
	FormatMarkdown: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the rendering pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Source  Source `json:"-"`
	Refresh bool   `json:"refresh,omitempty"`

	// View options
	SelectedID    string `json:"selected_id,omitempty"`
	InspectorMode bool   `json:"inspector_mode,omitempty"`
	EditMode      bool   `json:"edit_mode,omitempty"`
	ManualLayout  bool   `json:"manual_layout,omitempty"` // Use persisted positions instead of computing

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Multi-line node labels
	Scale    float64  `json:"scale,omitempty"`    // PNG resolution multiplier

	// Runtime options (not serialized)
	Content content.Map `json:"-"`
	Logger  *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// View is the serializable assembled graph: what a rendering surface draws.
type View struct {
	Nodes []graphview.RenderNode `json:"nodes"`
	Edges []graphview.RenderEdge `json:"edges"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Data is the loaded CV collection.
	Data cv.Data

	// DataHash is the content hash of the loaded data.
	DataHash string

	// Positions are the resolved node coordinates.
	Positions []cv.Position

	// Nodes and Edges form the assembled view.
	Nodes []graphview.RenderNode
	Edges []graphview.RenderEdge

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	LoadTime     time.Duration
	LayoutTime   time.Duration
	AssembleTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg, png, pdf, markdown)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == nil {
		return fmt.Errorf("source is required")
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ViewOpts returns the assembly options for the graph view.
func (o *Options) ViewOpts() graphview.Options {
	return graphview.Options{
		SelectedID:    o.SelectedID,
		Content:       o.Content,
		AutoLayout:    !o.ManualLayout,
		InspectorMode: o.InspectorMode,
		EditMode:      o.EditMode,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		SelectedID:    o.SelectedID,
		InspectorMode: o.InspectorMode,
		EditMode:      o.EditMode,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	theme := "compact"
	if o.Detailed {
		theme = "detailed"
	}
	return cache.ArtifactKeyOpts{
		Format: format,
		Theme:  theme,
	}
}

// =============================================================================
// View Serialization
// =============================================================================

// MarshalView serializes an assembled view for caching and JSON output.
func MarshalView(v View) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// UnmarshalView deserializes a cached view.
func UnmarshalView(data []byte) (View, error) {
	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		return View{}, fmt.Errorf("unmarshal view: %w", err)
	}
	return v, nil
}
