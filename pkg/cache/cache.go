// Package cache provides storage for rendered artifacts.
//
// # Overview
//
// Rendering a large fabric through Graphviz is the slowest step of the
// pipeline. Artifacts are cached under a key derived from the DOT source,
// the output format and the layout engine, so re-running an unchanged dump
// (or the same dump with different log verbosity) reuses earlier output.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (serve mode, --redis-url)
//   - [NullCache]: stores nothing (--no-cache)
//
// # Keys
//
// A [Keyer] builds keys from content hashes. [RedisCache] additionally
// prefixes every key it writes, so it can share a Redis database.
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{Format: "svg", Layout: "dot"})
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long rendered artifacts stay cached.
const TTLArtifact = 7 * 24 * time.Hour

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
