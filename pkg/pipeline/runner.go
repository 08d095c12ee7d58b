package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/document"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the lifetime of cached layouts and artifacts when
	// positive. Stored documents always use cache.TTLDocument.
	TTL time.Duration
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
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

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	items, title, probed, err := LoadItems(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	opts.Title = title
	result.Items = items
	result.Stats.Items = len(items)
	result.Stats.Probed = probed
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Info("loaded items",
		"source", opts.describe(),
		"items", len(items),
		"probed", probed)

	// Stage 2: Layout
	layoutStart := time.Now()
	doc, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, items, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = doc
	result.Stats.Rows = len(doc.Rows)
	result.Stats.Hidden = doc.Hidden()
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"rows", len(doc.Rows),
		"hidden", doc.Hidden(),
		"fallback", doc.Fallback,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, doc, opts)
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

// ComputeLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, items []mosaic.Item, opts Options) (document.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return document.Layout{}, false, err
	}
	r.applyLogger(&opts)

	itemsHash, err := cache.HashJSON(items)
	if err != nil {
		return document.Layout{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(itemsHash, opts.LayoutKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := document.Unmarshal(data); err == nil {
				hooks.OnCacheHit(ctx, "layout")
				cached.Title = opts.Title
				return cached, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("layout cache read failed", "err", err)
		}
		hooks.OnCacheMiss(ctx, "layout")
	}

	doc, err := ComputeLayout(ctx, items, opts)
	if err != nil {
		return document.Layout{}, false, err
	}

	if data, err := document.Marshal(doc); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLLayout)); err != nil {
			r.Logger.Warn("layout cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, "layout", len(data))
		}
	}
	return doc, false, nil
}

// ComputeLayout is a convenience wrapper that calls
// ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, items []mosaic.Item, opts Options) (document.Layout, error) {
	doc, _, err := r.ComputeLayoutWithCacheInfo(ctx, items, opts)
	return doc, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc document.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutData, err := document.Marshal(doc)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)
	hooks := observability.Layout()

	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderDocument(doc, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLArtifact)); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, doc document.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, doc, opts)
	return artifacts, err
}

// SaveDocument stores doc under its ID.
func (r *Runner) SaveDocument(ctx context.Context, doc document.Layout) error {
	if doc.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "document has no id")
	}
	data, err := document.Marshal(doc)
	if err != nil {
		return err
	}
	if err := r.Cache.Set(ctx, r.Keyer.DocumentKey(doc.ID), data, cache.TTLDocument); err != nil {
		return fmt.Errorf("store document %s: %w", doc.ID, err)
	}
	observability.Cache().OnCacheSet(ctx, "document", len(data))
	return nil
}

// LoadDocument fetches a stored document. A missing document yields a
// NOT_FOUND error.
func (r *Runner) LoadDocument(ctx context.Context, id string) (document.Layout, error) {
	data, hit, err := r.Cache.Get(ctx, r.Keyer.DocumentKey(id))
	if err != nil {
		return document.Layout{}, fmt.Errorf("load document %s: %w", id, err)
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "document")
		return document.Layout{}, errors.New(errors.ErrCodeNotFound, "layout %s not found", id)
	}
	observability.Cache().OnCacheHit(ctx, "document")
	return document.Unmarshal(data)
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
