// Package cache stores computed layouts and rendered artifacts.
//
// Three backends implement [Cache]:
//
//   - [NullCache]: stores nothing, for --no-cache runs and tests
//   - [FileCache]: JSON entries under a directory, the CLI default
//   - [RedisCache]: shared storage for the HTTP server
//
// Keys are built by a [Keyer] so that every backend sees the same
// namespace layout:
//
//	layout:<sha256 of items hash + geometry options>
//	layout:doc:<document id>
//	artifact:<sha256 of layout hash + render options>
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
	TTLDocument = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Keyer builds cache keys.
type Keyer interface {
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string
	DocumentKey(id string) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs besides the items that change a layout.
type LayoutKeyOpts struct {
	Width                 float64 `json:"width"`
	MaxRowHeight          float64 `json:"max_row_height"`
	OverflowPolicy        string  `json:"overflow_policy"`
	DefaultAspectRatio    float64 `json:"default_aspect_ratio"`
	HighResWidthThreshold float64 `json:"high_res_width_threshold"`

	// The refit settings do not move tiles but are stored in the document,
	// so they are part of the key.
	RefitOnResize bool          `json:"refit_on_resize,omitempty"`
	RefitDelay    time.Duration `json:"refit_delay,omitempty"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
	Gap    float64 `json:"gap,omitempty"`
	Images bool    `json:"images,omitempty"`
	Labels bool    `json:"labels,omitempty"`
}

// DefaultKeyer builds unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey generates a key for a computed layout.
func (DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}

// DocumentKey generates the key under which a stored document lives.
func (DefaultKeyer) DocumentKey(id string) string {
	return "layout:doc:" + id
}

// ArtifactKey generates a key for a rendered artifact.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
