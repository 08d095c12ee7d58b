// Package pipeline runs the load → layout → render pipeline for mosaics.
//
// The CLI, the HTTP server and the interactive preview all go through a
// [Runner] so that caching, asset swapping and rendering behave the same
// everywhere.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Manifest: "photos.yaml",
//	    Width:    1200,
//	    Formats:  []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	items, title, err := runner.LoadItems(opts)
//	doc, err := runner.ComputeLayout(ctx, items, opts)
//	artifacts, err := runner.Render(ctx, doc, opts)
package pipeline

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/document"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default container width in layout units.
	DefaultWidth = 960.0

	// DefaultColumns is the terminal width used for text output.
	DefaultColumns = 80

	// DefaultScale is the PNG scale factor.
	DefaultScale = 1.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatText = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatText: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input options. Items take precedence over Manifest.
	Manifest string        `json:"manifest,omitempty"`
	Items    []mosaic.Item `json:"items,omitempty"`
	Title    string        `json:"title,omitempty"`
	Probe    bool          `json:"probe,omitempty"` // Read image headers for missing dimensions
	Refresh  bool          `json:"refresh,omitempty"`

	// Layout options
	Width  float64       `json:"width,omitempty"`
	Config mosaic.Config `json:"config"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Gap     float64  `json:"gap,omitempty"`
	Images  bool     `json:"images,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Columns int      `json:"columns,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Items are the loaded items after ID assignment and probing.
	Items []mosaic.Item

	// Layout is the computed document.
	Layout document.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Items      int
	Rows       int
	Hidden     int
	Probed     int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg, png, txt)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateWidth checks that a container width is a positive finite number.
func ValidateWidth(w float64) error {
	if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return errors.Field(errors.ErrCodeInvalidInput, "width", "must be a positive number, got %v", w)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForLoad checks that an input source is present.
func (o *Options) ValidateForLoad() error {
	if len(o.Items) == 0 && o.Manifest == "" {
		return errors.New(errors.ErrCodeInvalidInput, "items or manifest is required")
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
// Only zero-valued geometry fields of Config are filled in.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	o.Config.SetDefaults()
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateWidth(o.Width); err != nil {
		return err
	}
	return o.Config.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Columns == 0 {
		o.Columns = DefaultColumns
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errors.Field(errors.ErrCodeInvalidInput, "scale", "must be positive, got %v", o.Scale)
	}
	if o.Gap < 0 {
		return errors.Field(errors.ErrCodeInvalidInput, "gap", "must not be negative, got %v", o.Gap)
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:                 o.Width,
		MaxRowHeight:          o.Config.MaxRowHeight,
		OverflowPolicy:        string(o.Config.OverflowPolicy),
		DefaultAspectRatio:    o.Config.DefaultAspectRatio,
		HighResWidthThreshold: o.Config.HighResWidthThreshold,
		RefitOnResize:         o.Config.RefitOnResize,
		RefitDelay:            o.Config.RefitDelay,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Gap: o.Gap, Images: o.Images, Labels: o.Labels}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
	case FormatText:
		k.Scale = float64(o.Columns)
	}
	return k
}

// describe is used in log lines.
func (o *Options) describe() string {
	if len(o.Items) > 0 {
		return fmt.Sprintf("%d inline items", len(o.Items))
	}
	return o.Manifest
}
