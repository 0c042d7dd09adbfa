// Package cache stores rendered artifacts keyed by a hash of their input.
//
// Rendering a graph to SVG runs Graphviz, which dominates the cost of the
// graph command for larger deployments. The DOT source fully determines the
// output, so the SVG can be reused until the connections change.
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.Key("svg", dot)
//	if svg, ok, _ := c.Get(ctx, key); ok {
//	    return svg
//	}
//
// [NullCache] disables caching without changing call sites.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// DefaultTTL is how long rendered artifacts are kept.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// DefaultDir returns the user cache directory for circuitry renders.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "circuitry", "render"), nil
}
