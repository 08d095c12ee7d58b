package sink

import (
	"bytes"
	"image"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/mosaic/pkg/document"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	gap        float64
	background string
	labels     bool
	loadImage  func(path string) (image.Image, error)
}

// WithScale sets the PNG scale factor (default 1.0).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithPNGGap insets every tile by g/2 on each side, in layout units.
func WithPNGGap(g float64) PNGOption { return func(r *pngRenderer) { r.gap = g } }

// WithPNGBackground sets the frame color as "#RRGGBB" (default white).
func WithPNGBackground(hex string) PNGOption { return func(r *pngRenderer) { r.background = hex } }

// WithPNGImages draws local tile sources into their tiles. Tiles whose
// source cannot be loaded fall back to a flat color.
func WithPNGImages() PNGOption {
	return func(r *pngRenderer) { r.loadImage = gg.LoadImage }
}

// WithPNGLabels prints each tile's ID in its top-left corner using gg's
// built-in bitmap face.
func WithPNGLabels() PNGOption { return func(r *pngRenderer) { r.labels = true } }

// RenderPNG rasterizes the layout.
func RenderPNG(l document.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1.0, background: "#FFFFFF"}
	for _, opt := range opts {
		opt(&r)
	}

	w := max(1, int(math.Ceil(l.Width*r.scale)))
	h := max(1, int(math.Ceil(l.Height*r.scale)))
	dc := gg.NewContext(w, h)

	dc.SetRGB(hexRGB(r.background))
	dc.Clear()
	dc.Scale(r.scale, r.scale)

	for _, t := range l.Tiles {
		if !t.Visible {
			continue
		}
		r.drawTile(dc, t)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *pngRenderer) drawTile(dc *gg.Context, t document.Tile) {
	x, y, w, h := inset(t, r.gap)
	if w <= 0 || h <= 0 {
		return
	}

	drawn := false
	if r.loadImage != nil && t.Src != "" {
		if img, err := r.loadImage(t.Src); err == nil {
			drawCover(dc, img, x, y, w, h)
			drawn = true
		}
	}
	if !drawn {
		dc.SetRGB(hexRGB(tileColor(t.ID)))
		dc.DrawRectangle(x, y, w, h)
		dc.Fill()
	}

	if r.labels {
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(t.ID, x+4, y+4, 0, 1)
	}
}

// drawCover scales img to cover the box and clips the overflow.
func drawCover(dc *gg.Context, img image.Image, x, y, w, h float64) {
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw == 0 || ih == 0 {
		return
	}
	s := math.Max(w/iw, h/ih)

	dc.Push()
	defer dc.Pop()
	dc.DrawRectangle(x, y, w, h)
	dc.Clip()
	dc.Translate(x+(w-iw*s)/2, y+(h-ih*s)/2)
	dc.Scale(s, s)
	dc.DrawImage(img, 0, 0)
	dc.ResetClip()
}
