package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// Hosted deployments serve several CVs from one cache; scoping keys by
// owner keeps draft views from leaking across tenants.
//
// Example usage:
//
//	// Owner-specific keys for draft views
//	ownerKeyer := NewScopedKeyer(NewDefaultKeyer(), "owner:abc123:")
//
//	// Global keys for published views
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ViewKey generates a prefixed key for graph view caching.
func (k *ScopedKeyer) ViewKey(dataHash string, opts ViewKeyOpts) string {
	return k.prefix + k.inner.ViewKey(dataHash, opts)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(dataHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(dataHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(viewHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(viewHash, opts)
}
