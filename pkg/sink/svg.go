package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/mosaic/pkg/document"
)

const tileCSS = `
    .tile { transition: opacity 0.2s ease; }
    .tile:hover { opacity: 0.85; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	gap        float64
	background string
	images     bool
	labels     bool
}

// WithGap insets every tile by g/2 on each side.
func WithGap(g float64) SVGOption { return func(r *svgRenderer) { r.gap = g } }

// WithBackground fills the frame with a CSS color before drawing tiles.
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithImages draws each tile's source as an <image> instead of a flat rectangle.
func WithImages() SVGOption { return func(r *svgRenderer) { r.images = true } }

// WithLabels writes each tile's ID at its center.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

func RenderSVG(l document.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", tileCSS)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(r.background))
	}

	for _, t := range l.Tiles {
		if !t.Visible {
			continue
		}
		r.renderTile(&buf, t)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderTile(buf *bytes.Buffer, t document.Tile) {
	x, y, w, h := inset(t, r.gap)
	id := html.EscapeString(t.ID)

	if r.images && t.Src != "" {
		fmt.Fprintf(buf, `  <image id="tile-%s" class="tile" x="%.2f" y="%.2f" width="%.2f" height="%.2f" href="%s" preserveAspectRatio="xMidYMid slice"/>`+"\n",
			id, x, y, w, h, html.EscapeString(t.Src))
	} else {
		fmt.Fprintf(buf, `  <rect id="tile-%s" class="tile" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			id, x, y, w, h, tileColor(t.ID))
	}

	if r.labels {
		fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="12" fill="#fff">%s</text>`+"\n",
			x+w/2, y+h/2, id)
	}
}

// inset shrinks a tile by half the gap on every side, never below zero size.
func inset(t document.Tile, gap float64) (x, y, w, h float64) {
	half := gap / 2
	x, y = t.X+half, t.Y+half
	w, h = max(0, t.Width-gap), max(0, t.Height-gap)
	return x, y, w, h
}
