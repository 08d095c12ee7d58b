// Package document defines the serialized form of a mosaic layout.
//
// A [Layout] is what the pipeline caches, the HTTP API returns and the
// sinks render. It flattens the engine result together with the resolved
// presentation assets so a consumer needs nothing else to draw the mosaic.
//
//	doc := document.Build(result, items, assets, cfg)
//	document.WriteFile(doc, "mosaic.json")
package document

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/present"
)

// Version is the document format version written by this package.
const Version = 1

// =============================================================================
// Layout - Serialized Mosaic
// =============================================================================

// Layout is a complete, self-contained mosaic.
type Layout struct {
	Version int    `json:"version" bson:"version"`
	ID      string `json:"id,omitempty" bson:"_id,omitempty"`
	Title   string `json:"title,omitempty" bson:"title,omitempty"`

	// Frame dimensions
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Config   mosaic.Config `json:"config" bson:"config"`
	Fallback bool          `json:"fallback,omitempty" bson:"fallback,omitempty"`

	Tiles []Tile       `json:"tiles" bson:"tiles"`
	Rows  []mosaic.Row `json:"rows" bson:"rows"`

	// Items are the inputs the layout was computed from, kept so a stored
	// document can be fitted again at another width.
	Items []mosaic.Item `json:"items,omitempty" bson:"items,omitempty"`
}

// Tile is a positioned item.
type Tile struct {
	ID          string  `json:"id" bson:"id"`
	Row         int     `json:"row" bson:"row"`
	X           float64 `json:"x" bson:"x"`
	Y           float64 `json:"y" bson:"y"`
	Width       float64 `json:"width" bson:"width"`
	Height      float64 `json:"height" bson:"height"`
	AspectRatio float64 `json:"aspect_ratio" bson:"aspect_ratio"`
	Visible     bool    `json:"visible" bson:"visible"`

	// Presentation
	Src        string `json:"src,omitempty" bson:"src,omitempty"`
	Background string `json:"background,omitempty" bson:"background,omitempty"`
	HighRes    bool   `json:"high_res,omitempty" bson:"high_res,omitempty"`
}

// Hidden returns the number of tiles that are not visible.
func (l *Layout) Hidden() int {
	n := 0
	for _, t := range l.Tiles {
		if !t.Visible {
			n++
		}
	}
	return n
}

// Visible returns the visible tiles in order.
func (l *Layout) Visible() []Tile {
	out := make([]Tile, 0, len(l.Tiles))
	for _, t := range l.Tiles {
		if t.Visible {
			out = append(out, t)
		}
	}
	return out
}

// Build assembles a document from an engine result. assets may be nil, in
// which case each tile shows the item's low-resolution sources.
func Build(result mosaic.Layout, items []mosaic.Item, assets []present.Asset, cfg mosaic.Config) Layout {
	doc := Layout{
		Version:  Version,
		Width:    result.ContainerWidth,
		Height:   result.Height,
		Config:   cfg,
		Fallback: result.Fallback,
		Tiles:    make([]Tile, len(result.Placements)),
		Rows:     result.Rows,
		Items:    items,
	}
	for i, p := range result.Placements {
		t := Tile{
			ID:          p.ID,
			Row:         p.Row,
			X:           p.X,
			Y:           p.Y,
			Width:       p.Width,
			Height:      p.Height,
			AspectRatio: p.AspectRatio,
			Visible:     p.Visible,
		}
		switch {
		case i < len(assets):
			t.Src = assets[i].Src
			t.Background = assets[i].Background
			t.HighRes = assets[i].HighRes
		case i < len(items):
			t.Src = items[i].Src
			t.Background = items[i].Background
		}
		doc.Tiles[i] = t
	}
	if doc.Rows == nil {
		doc.Rows = []mosaic.Row{}
	}
	return doc
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal serializes a Layout to pretty-printed JSON bytes.
func Marshal(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Layout and checks that the
// tiles are consistent with the frame.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Version == 0 {
		l.Version = Version
	}
	if l.Version > Version {
		return Layout{}, fmt.Errorf("layout version %d is newer than supported version %d", l.Version, Version)
	}
	if l.Width <= 0 && len(l.Tiles) > 0 {
		return Layout{}, fmt.Errorf("layout with tiles must have a positive width")
	}
	for _, r := range l.Rows {
		if r.Start < 0 || r.Count < 0 || r.Start+r.Count > len(l.Tiles) {
			return Layout{}, fmt.Errorf("row %d references tiles [%d, %d) outside %d tiles",
				r.Index, r.Start, r.Start+r.Count, len(l.Tiles))
		}
	}
	return l, nil
}

// WriteFile writes a Layout to a JSON file.
func WriteFile(l Layout, path string) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Layout from a JSON file.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
