// Package cache provides caching for CV payloads, layouts, and rendered
// artifacts.
//
// The package defines a backend-agnostic Cache interface with file, Redis,
// and null implementations, plus a Keyer abstraction that derives stable
// cache keys from CV data hashes and view options.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached content kind.
const (
	// HTTPTTL bounds how long remote CV API responses are reused.
	HTTPTTL = 5 * time.Minute

	// ViewTTL bounds assembled graph views. Views depend on data and
	// selection, so they churn quickly.
	ViewTTL = time.Hour

	// ArtifactTTL bounds rendered artifacts (SVG, PNG). Artifacts are
	// content-addressed by their view hash, so long retention is safe.
	ArtifactTTL = 24 * time.Hour
)

// Cache is the storage interface for cached byte payloads.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// found; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// ViewKeyOpts captures the assembly options that change a graph view.
type ViewKeyOpts struct {
	SelectedID    string `json:"selected_id"`
	InspectorMode bool   `json:"inspector_mode"`
	EditMode      bool   `json:"edit_mode"`
	AutoLayout    bool   `json:"auto_layout"`
}

// LayoutKeyOpts captures the options that change a computed layout. Edit
// mode belongs here because it changes which nodes are laid out at all.
type LayoutKeyOpts struct {
	SelectedID    string `json:"selected_id"`
	InspectorMode bool   `json:"inspector_mode"`
	EditMode      bool   `json:"edit_mode"`
}

// ArtifactKeyOpts captures the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Theme  string `json:"theme"`
}

// Keyer generates cache keys for the different cached content kinds.
// Implementations must be deterministic: equal inputs yield equal keys.
type Keyer interface {
	// HTTPKey generates a key for a cached HTTP response.
	HTTPKey(namespace, key string) string

	// ViewKey generates a key for an assembled graph view.
	ViewKey(dataHash string, opts ViewKeyOpts) string

	// LayoutKey generates a key for a computed layout.
	LayoutKey(dataHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact.
	ArtifactKey(viewHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates keys by hashing inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
// HTTP keys embed the raw key for debuggability; the other kinds hash.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ViewKey generates a key for an assembled graph view.
func (k *DefaultKeyer) ViewKey(dataHash string, opts ViewKeyOpts) string {
	return hashKey("view", dataHash, opts)
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(dataHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", dataHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(viewHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", viewHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
