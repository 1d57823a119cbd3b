package pipeline

import (
	"context"

	"github.com/fschmidt/virtualcv/pkg/client"
	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/store"
)

// =============================================================================
// Data Sources
// =============================================================================

// Source supplies the CV node collection to the pipeline. The API client
// satisfies this interface directly; stores and files are adapted below.
type Source interface {
	// GetData fetches the full CV. When refresh is true, implementations
	// must bypass any internal caching.
	GetData(ctx context.Context, refresh bool) (cv.Data, error)

	// SourceName identifies the source kind for logging and hooks.
	SourceName() string
}

// APISource adapts the HTTP API client into a pipeline source.
type APISource struct {
	Client *client.Client
}

func (a APISource) GetData(ctx context.Context, refresh bool) (cv.Data, error) {
	return a.Client.GetData(ctx, refresh)
}

func (a APISource) SourceName() string { return "api" }

// StoreSource adapts a persistence backend into a pipeline source.
type StoreSource struct {
	Store store.Store
}

func (s StoreSource) GetData(ctx context.Context, _ bool) (cv.Data, error) {
	return s.Store.Load(ctx)
}

func (s StoreSource) SourceName() string { return "store" }

// FileSource reads the CV from a local JSON file.
type FileSource struct {
	Path string
}

func (f FileSource) GetData(_ context.Context, _ bool) (cv.Data, error) {
	return cv.ReadFile(f.Path)
}

func (f FileSource) SourceName() string { return "file:" + f.Path }

// StaticSource serves a fixed in-memory collection, mainly for tests and
// the interactive editor, which holds data it already fetched.
type StaticSource struct {
	Data cv.Data
}

func (s StaticSource) GetData(context.Context, bool) (cv.Data, error) {
	return s.Data, nil
}

func (s StaticSource) SourceName() string { return "static" }
