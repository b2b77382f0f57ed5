// Package cache provides caching for pipeline stages.
//
// Layout is a pure function of (canonical tree, expanded set, options),
// so every stage result can be memoized: normalized trees by input
// hash, diagrams by tree hash plus the expanded-set snapshot, rendered
// artifacts by diagram hash plus render options. The [Keyer] interface
// builds those keys; the [Cache] interface stores the bytes.
//
// Backends:
//   - [NewFileCache]: on-disk cache for CLI usage
//   - [NewMemoryCache]: in-process cache for hosts and tests
//   - [NewNullCache]: disabled caching
//
// All backends report hits and misses through pkg/observability.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by helpers that require a cached value.
// Cache.Get itself reports misses via its ok result, not an error.
var ErrCacheMiss = errors.New("cache miss")

// Default TTLs per stage. Trees and layouts are cheap to recompute, so
// they expire faster than rendered artifacts.
const (
	TTLTree     = 24 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface for cache backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second result reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a time-to-live. A non-positive ttl means
	// the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TreeKeyOpts distinguishes normalized-tree cache entries.
type TreeKeyOpts struct {
	// Format is the input format the tree was decoded from.
	Format string
}

// LayoutKeyOpts distinguishes layout cache entries. Every option that
// affects positioning must appear here, or stale diagrams get served.
type LayoutKeyOpts struct {
	// Expanded is the sorted expanded-set snapshot.
	Expanded []string

	LevelGap        float64
	SiblingGap      float64
	Padding         float64
	MaxTextWidth    float64
	FontFamily      string
	FontSize        float64
	LineHeight      float64
	ConnectorRadius float64
}

// ArtifactKeyOpts distinguishes rendered-artifact cache entries.
type ArtifactKeyOpts struct {
	Format string
	Style  string
}

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// TreeKey keys a normalized tree by the hash of its raw input.
	TreeKey(inputHash string, opts TreeKeyOpts) string

	// LayoutKey keys a diagram by the canonical tree hash and the
	// options that shaped the pass.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the diagram hash and
	// render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TreeKey implements Keyer.
func (DefaultKeyer) TreeKey(inputHash string, opts TreeKeyOpts) string {
	return hashKey("tree", inputHash, opts)
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so multiple documents or
// hosts can share one backend without key collisions.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// TreeKey implements Keyer.
func (k *ScopedKeyer) TreeKey(inputHash string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(inputHash, opts)
}

// LayoutKey implements Keyer.
func (k *ScopedKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(treeHash, opts)
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
