// Package httputil provides HTTP utilities for the CV API client.
//
// # Overview
//
// This package provides infrastructure shared by remote data clients:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores HTTP responses in the filesystem (~/.cache/virtualcv/)
// with configurable TTL. This speeds up repeated renders of the same CV
// and keeps the editor responsive when the API is slow.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 5 * time.Minute)
//	ok, err := cache.Get("cvapi:nodes", &nodes)  // Check cache
//	if !ok {
//	    nodes = fetchFromAPI()
//	    cache.Set("cvapi:nodes", nodes)          // Store for later
//	}
//
// Cache keys should be namespaced by data source to avoid collisions.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// It uses exponential backoff to avoid hammering a recovering server:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchNodes()
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/virtualcv/
//   - Default TTL: 5 minutes
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `virtualcv cache clear` or by deleting
// the cache directory.
package httputil
