package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/treelinehq/treeline/pkg/cache"
	"github.com/treelinehq/treeline/pkg/errors"
	treeio "github.com/treelinehq/treeline/pkg/io"
	"github.com/treelinehq/treeline/pkg/layout"
	"github.com/treelinehq/treeline/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and embedding hosts can use this to avoid duplicating
// caching logic.
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

// Execute runs the complete normalize → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Normalize
	normalizeStart := time.Now()
	root, treeHit, err := r.NormalizeWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Tree = root
	result.Stats.NormalizeTime = time.Since(normalizeStart)
	result.Stats.NodeCount = root.Count()
	result.CacheInfo.TreeHit = treeHit

	// Content hash for cache keys and host responses
	if treeData, err := tree.Marshal(root); err == nil {
		result.TreeHash = cache.Hash(treeData)
	}

	r.Logger.Info("normalized tree",
		"nodes", result.Stats.NodeCount,
		"duration", result.Stats.NormalizeTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	d, layoutHit, err := r.ComputeDiagramWithCacheInfo(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.VisibleCount = len(d.Nodes)
	result.Stats.EdgeCount = len(d.Edges)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"visible", result.Stats.VisibleCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// NormalizeWithCacheInfo builds the canonical tree with caching and
// returns cache hit info.
//
// Only file inputs are cached: the key is the content hash of the raw
// file bytes, so editing the file invalidates the entry naturally.
// Stdin and pre-decoded documents are normalized directly.
func (r *Runner) NormalizeWithCacheInfo(ctx context.Context, opts Options) (*tree.Node, bool, error) {
	if err := opts.ValidateForNormalize(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheable := opts.Input != "" && opts.Input != "-" && opts.Document == nil
	var cacheKey string

	if cacheable {
		data, err := os.ReadFile(opts.Input)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", opts.Input)
		}
		if opts.InputFormat == "" {
			opts.InputFormat = treeio.DetectFormat(opts.Input)
		}
		cacheKey = r.Keyer.TreeKey(cache.Hash(data), opts.TreeKeyOpts())

		if !opts.Refresh {
			if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				if root, err := tree.Unmarshal(cached); err == nil {
					return root, true, nil // Cache hit
				}
			}
		}

		doc, err := treeio.ReadDocument(bytes.NewReader(data), opts.InputFormat)
		if err != nil {
			return nil, false, err
		}
		opts.Document = doc
	}

	root, err := Normalize(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	if cacheable {
		if data, err := tree.Marshal(root); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLTree)
		}
	}

	return root, false, nil // Cache miss
}

// Normalize is a convenience wrapper that calls NormalizeWithCacheInfo
// and discards the cache hit info.
func (r *Runner) Normalize(ctx context.Context, opts Options) (*tree.Node, error) {
	root, _, err := r.NormalizeWithCacheInfo(ctx, opts)
	return root, err
}

// ComputeDiagramWithCacheInfo computes a diagram with caching and
// returns cache hit info.
func (r *Runner) ComputeDiagramWithCacheInfo(ctx context.Context, root *tree.Node, opts Options) (layout.Diagram, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Diagram{}, false, err
	}
	r.applyLogger(&opts)

	// The key covers the tree content, the resolved expanded snapshot,
	// and every option that moves a coordinate.
	treeData, _ := tree.Marshal(root)
	treeHash := cache.Hash(treeData)
	expanded := opts.expandedSet(root)
	cacheKey := r.Keyer.LayoutKey(treeHash, opts.LayoutKeyOpts(expanded.IDs()))

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var cached layout.Diagram
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}

	d, err := ComputeDiagram(ctx, root, opts)
	if err != nil {
		return layout.Diagram{}, false, err
	}

	if data, err := json.Marshal(d); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return d, false, nil // Cache miss
}

// ComputeDiagram is a convenience wrapper that calls
// ComputeDiagramWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeDiagram(ctx context.Context, root *tree.Node, opts Options) (layout.Diagram, error) {
	d, _, err := r.ComputeDiagramWithCacheInfo(ctx, root, opts)
	return d, err
}

// RenderWithCacheInfo generates artifacts with caching and returns
// cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d layout.Diagram, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	diagramData, err := json.Marshal(d)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize diagram for cache key")
	}
	diagramHash := cache.Hash(diagramData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(diagramHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	// Render all formats
	rendered, err := RenderDiagram(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(diagramHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, d layout.Diagram, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
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
