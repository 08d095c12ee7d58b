package mosaic

import (
	"math"
	"time"

	"github.com/matzehuels/mosaic/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMaxRowHeight is the default maximum row height in layout units.
	DefaultMaxRowHeight = 400.0

	// DefaultAspectRatio is the ratio used when an item's own ratio is unknown.
	DefaultAspectRatio = 1.0

	// DefaultHighResWidthThreshold is the placement width above which
	// presentation layers switch to high-resolution assets.
	DefaultHighResWidthThreshold = 350.0

	// DefaultOverflowPolicy is the default policy for rows that cannot meet
	// MaxRowHeight.
	DefaultOverflowPolicy = PolicySkip
)

// =============================================================================
// Overflow Policy
// =============================================================================

// OverflowPolicy decides what happens to a row whose natural height exceeds
// MaxRowHeight.
type OverflowPolicy string

const (
	// PolicySkip hides every item of the row.
	PolicySkip OverflowPolicy = "skip"

	// PolicyCrop caps the row height at MaxRowHeight. Items in the row no
	// longer keep their exact aspect ratio.
	PolicyCrop OverflowPolicy = "crop"

	// PolicyOversize keeps the natural height even though it exceeds
	// MaxRowHeight.
	PolicyOversize OverflowPolicy = "oversize"
)

// Policies lists the recognized overflow policies.
var Policies = []OverflowPolicy{PolicySkip, PolicyCrop, PolicyOversize}

// Valid reports whether p is a recognized policy.
func (p OverflowPolicy) Valid() bool {
	switch p {
	case PolicySkip, PolicyCrop, PolicyOversize:
		return true
	}
	return false
}

// String returns the policy name.
func (p OverflowPolicy) String() string { return string(p) }

// ParseOverflowPolicy converts a policy name into an OverflowPolicy.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	p := OverflowPolicy(s)
	if !p.Valid() {
		return "", errors.Field(errors.ErrCodeInvalidConfig, "overflow_policy",
			"unknown policy %q (must be one of: skip, crop, oversize)", s)
	}
	return p, nil
}

// =============================================================================
// Config
// =============================================================================

// Config holds the layout options recognized by the engine.
//
// Only MaxRowHeight, OverflowPolicy and DefaultAspectRatio influence
// geometry. The refit and high-res fields are carried for the hosts that
// schedule refits and swap assets.
type Config struct {
	MaxRowHeight       float64        `json:"max_row_height" toml:"max_row_height"`
	OverflowPolicy     OverflowPolicy `json:"overflow_policy" toml:"overflow_policy"`
	DefaultAspectRatio float64        `json:"default_aspect_ratio" toml:"default_aspect_ratio"`

	// RefitOnResize tells the host to call Fit again when the container
	// is resized.
	RefitOnResize bool `json:"refit_on_resize" toml:"refit_on_resize"`

	// RefitDelay debounces resize-triggered refits. Zero refits immediately.
	RefitDelay time.Duration `json:"refit_delay,omitempty" toml:"refit_delay"`

	// HighResWidthThreshold is the width above which a presentation layer
	// should use a high-resolution asset. Zero disables swapping.
	HighResWidthThreshold float64 `json:"high_res_width_threshold,omitempty" toml:"high_res_width_threshold"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxRowHeight:          DefaultMaxRowHeight,
		OverflowPolicy:        DefaultOverflowPolicy,
		DefaultAspectRatio:    DefaultAspectRatio,
		RefitOnResize:         true,
		HighResWidthThreshold: DefaultHighResWidthThreshold,
	}
}

// SetDefaults fills zero-valued geometry fields with defaults.
// Boolean and threshold fields are left alone because their zero values
// are meaningful.
func (c *Config) SetDefaults() {
	if c.MaxRowHeight == 0 {
		c.MaxRowHeight = DefaultMaxRowHeight
	}
	if c.OverflowPolicy == "" {
		c.OverflowPolicy = DefaultOverflowPolicy
	}
	if c.DefaultAspectRatio == 0 {
		c.DefaultAspectRatio = DefaultAspectRatio
	}
}

// Validate checks every field and returns an INVALID_CONFIG error naming
// the first offending field.
func (c Config) Validate() error {
	if !positive(c.MaxRowHeight) {
		return errors.Field(errors.ErrCodeInvalidConfig, "max_row_height",
			"must be a positive number, got %v", c.MaxRowHeight)
	}
	if !c.OverflowPolicy.Valid() {
		return errors.Field(errors.ErrCodeInvalidConfig, "overflow_policy",
			"unknown policy %q (must be one of: skip, crop, oversize)", c.OverflowPolicy)
	}
	if !usableRatio(c.DefaultAspectRatio) {
		return errors.Field(errors.ErrCodeInvalidConfig, "default_aspect_ratio",
			"must be a positive number, got %v", c.DefaultAspectRatio)
	}
	if c.RefitDelay < 0 {
		return errors.Field(errors.ErrCodeInvalidConfig, "refit_delay",
			"must not be negative, got %s", c.RefitDelay)
	}
	if c.HighResWidthThreshold < 0 || math.IsNaN(c.HighResWidthThreshold) || math.IsInf(c.HighResWidthThreshold, 0) {
		return errors.Field(errors.ErrCodeInvalidConfig, "high_res_width_threshold",
			"must be zero or a positive number, got %v", c.HighResWidthThreshold)
	}
	return nil
}

// positive reports whether v is a finite number greater than zero.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
