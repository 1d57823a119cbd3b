package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fschmidt/virtualcv/pkg/cache"
	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/graphview"
	"github.com/fschmidt/virtualcv/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → assemble → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	data, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Data = data
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = len(data.Nodes)

	if raw, err := cv.Marshal(data); err == nil {
		result.DataHash = cache.Hash(raw)
	}

	r.Logger.Info("loaded cv data",
		"source", opts.Source.SourceName(),
		"nodes", len(data.Nodes),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	positions, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, data, result.DataHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Positions = positions
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"positions", len(positions),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Assemble
	assembleStart := time.Now()
	nodes, edges := r.Assemble(ctx, data, positions, opts)
	result.Nodes = nodes
	result.Edges = edges
	result.Stats.AssembleTime = time.Since(assembleStart)
	result.Stats.EdgeCount = len(edges)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, nodes, edges, data, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load fetches the CV data from the configured source.
func (r *Runner) Load(ctx context.Context, opts Options) (cv.Data, error) {
	if opts.Source == nil {
		return cv.Data{}, fmt.Errorf("source is required")
	}

	source := opts.Source.SourceName()
	observability.Pipeline().OnLoadStart(ctx, source)
	start := time.Now()

	data, err := opts.Source.GetData(ctx, opts.Refresh)
	observability.Pipeline().OnLoadComplete(ctx, source, len(data.Nodes), time.Since(start), err)
	if err != nil {
		return cv.Data{}, err
	}

	if err := data.Validate(); err != nil {
		return cv.Data{}, fmt.Errorf("invalid cv data: %w", err)
	}
	return data, nil
}

// ComputeLayoutWithCacheInfo computes positions with caching and reports
// whether the layout came from the cache. Manual layout bypasses the cache;
// the persisted positions are already at hand.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, data cv.Data, dataHash string, opts Options) ([]cv.Position, bool, error) {
	if opts.ManualLayout {
		return data.Positions, false, nil
	}

	visible := data.Visible(opts.EditMode)
	observability.Pipeline().OnLayoutStart(ctx, len(visible))
	start := time.Now()

	cacheKey := r.Keyer.LayoutKey(dataHash, opts.LayoutKeyOpts())
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if cached, err := UnmarshalPositions(data); err == nil {
			observability.Pipeline().OnLayoutComplete(ctx, len(cached), time.Since(start), nil)
			return cached, true, nil
		}
		// Deserialization failure falls through to recompute.
	}

	positions := GenerateLayout(data, opts)

	if raw, err := MarshalPositions(positions); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, raw, cache.ViewTTL)
	}

	observability.Pipeline().OnLayoutComplete(ctx, len(positions), time.Since(start), nil)
	return positions, false, nil
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, data cv.Data, opts Options) ([]cv.Position, error) {
	raw, err := cv.Marshal(data)
	if err != nil {
		return nil, err
	}
	positions, _, err := r.ComputeLayoutWithCacheInfo(ctx, data, cache.Hash(raw), opts)
	return positions, err
}

// Assemble builds the render nodes and edges for the view, pinning the
// supplied positions so the assembler does not recompute the layout.
func (r *Runner) Assemble(ctx context.Context, data cv.Data, positions []cv.Position, opts Options) ([]graphview.RenderNode, []graphview.RenderEdge) {
	observability.Pipeline().OnAssembleStart(ctx, len(data.Nodes))
	start := time.Now()

	viewOpts := opts.ViewOpts()
	if len(positions) > 0 {
		pinned := make(map[string]cv.Position, len(positions))
		for _, p := range positions {
			pinned[p.NodeID] = p
		}
		viewOpts.Positions = pinned
	}

	nodes := graphview.BuildNodes(data, viewOpts)
	edges := graphview.BuildEdges(data, opts.SelectedID, opts.EditMode)

	observability.Pipeline().OnAssembleComplete(ctx, len(nodes), len(edges), time.Since(start), nil)
	return nodes, edges
}

// RenderWithCacheInfo renders artifacts with caching and reports whether all
// of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, nodes []graphview.RenderNode, edges []graphview.RenderEdge, data cv.Data, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	viewData, err := MarshalView(View{Nodes: nodes, Edges: edges})
	if err != nil {
		return nil, false, fmt.Errorf("serialize view for cache key: %w", err)
	}
	viewHash := cache.Hash(viewData)

	// Try to get all formats from cache.
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(viewHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
		return artifacts, true, nil
	}

	rendered, err := RenderView(nodes, edges, data, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, artifact := range rendered {
		cacheKey := r.Keyer.ArtifactKey(viewHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, artifact, cache.ArtifactTTL)
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, nodes []graphview.RenderNode, edges []graphview.RenderEdge, data cv.Data, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, nodes, edges, data, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
