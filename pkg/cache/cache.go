// Package cache stores solved scenario frames and rendered artifacts.
//
// # Backends
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry under a directory (CLI default,
//     $XDG_CACHE_HOME/flexpos)
//   - [RedisCache]: shared cache for `flexpos serve` deployments
//
// # Keys
//
// A [Keyer] derives keys from content hashes so identical inputs share
// entries across runs:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.FramesKey(cache.Hash(scenarioJSON))
//	data, hit, err := c.Get(ctx, key)
//
// Wrap any backend with [Instrument] to report hits, misses and writes to
// the registered [observability.CacheHooks].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with per-entry TTL.
type Cache interface {
	// Get returns the cached data and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs.
const (
	// FramesTTL bounds how long solved frames are reused.
	FramesTTL = 7 * 24 * time.Hour

	// ArtifactTTL bounds how long rendered outputs are reused.
	ArtifactTTL = 7 * 24 * time.Hour
)
