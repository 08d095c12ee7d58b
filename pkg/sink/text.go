package sink

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mosaic/pkg/document"
)

// cellAspect is how much taller a terminal cell is than it is wide.
const cellAspect = 2.0

// TextOption configures terminal rendering.
type TextOption func(*textRenderer)

type textRenderer struct {
	labels bool
	plain  bool
}

// WithTextLabels prints each tile's ID in its top-left cell.
func WithTextLabels() TextOption { return func(r *textRenderer) { r.labels = true } }

// WithPlain draws tiles with characters instead of background colors.
func WithPlain() TextOption { return func(r *textRenderer) { r.plain = true } }

// RenderText draws the layout scaled to cols terminal columns.
func RenderText(l document.Layout, cols int, opts ...TextOption) string {
	r := textRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if cols <= 0 || l.Width <= 0 {
		return ""
	}
	scale := float64(cols) / l.Width

	var lines []string
	for _, row := range l.Rows {
		if row.Hidden || row.Count == 0 {
			continue
		}
		tiles := l.Tiles[row.Start : row.Start+row.Count]
		height := max(1, int(math.Round(row.Height*scale/cellAspect)))
		lines = append(lines, r.renderRow(tiles, scale, cols, height)...)
	}
	return strings.Join(lines, "\n")
}

func (r *textRenderer) renderRow(tiles []document.Tile, scale float64, cols, height int) []string {
	cells := make([]string, height)
	for i, t := range tiles {
		if !t.Visible {
			continue
		}
		left := int(math.Round(t.X * scale))
		right := int(math.Round((t.X + t.Width) * scale))
		if i == len(tiles)-1 {
			right = cols
		}
		width := right - left
		if width <= 0 {
			continue
		}

		style := lipgloss.NewStyle().Width(width).MaxWidth(width)
		fill := " "
		if r.plain {
			fill = string(rune('░' + i%3))
		} else {
			style = style.Background(lipgloss.Color(tileColor(t.ID))).Foreground(lipgloss.Color("#FFFFFF"))
		}

		for line := range cells {
			content := strings.Repeat(fill, width)
			if r.labels && line == 0 {
				content = label(t.ID, fill, width)
			}
			cells[line] += style.Render(content)
		}
	}
	return cells
}

// label left-aligns id in a field of width cells padded with fill.
func label(id, fill string, width int) string {
	runes := []rune(id)
	if len(runes) > width {
		runes = runes[:width]
	}
	return string(runes) + strings.Repeat(fill, width-len(runes))
}
