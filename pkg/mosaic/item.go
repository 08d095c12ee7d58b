package mosaic

import "sync"

// Item is one element of the sequence to lay out.
//
// The engine reads only the identity and the aspect-ratio hints. The asset
// fields are passed through untouched for presentation layers.
type Item struct {
	ID string `json:"id" yaml:"id" toml:"id"`

	// AspectRatio is an explicit width/height override. Non-positive values
	// are ignored.
	AspectRatio float64 `json:"aspect_ratio,omitempty" yaml:"aspect_ratio,omitempty" toml:"aspect_ratio"`

	// Width and Height are intrinsic dimension hints, e.g. the pixel size of
	// the image the item displays.
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty" toml:"width"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty" toml:"height"`

	Src               string `json:"src,omitempty" yaml:"src,omitempty" toml:"src"`
	HighResSrc        string `json:"high_res_src,omitempty" yaml:"high_res_src,omitempty" toml:"high_res_src"`
	Background        string `json:"background,omitempty" yaml:"background,omitempty" toml:"background"`
	HighResBackground string `json:"high_res_background,omitempty" yaml:"high_res_background,omitempty" toml:"high_res_background"`
}

// Placement is the geometry assigned to one item by a layout pass.
type Placement struct {
	Index       int     `json:"index"`
	ID          string  `json:"id"`
	Row         int     `json:"row"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Visible     bool    `json:"visible"`
}

// Row describes one contiguous run of items sharing a height.
type Row struct {
	Index int `json:"index"`
	Start int `json:"start"`
	Count int `json:"count"`

	// NaturalHeight is container width divided by the row's ratio sum.
	NaturalHeight float64 `json:"natural_height"`

	// Height is the height actually assigned (zero for hidden rows).
	Height float64 `json:"height"`

	// Overflow is set when NaturalHeight exceeded MaxRowHeight.
	Overflow bool `json:"overflow,omitempty"`

	// Hidden is set when the skip policy hid the row.
	Hidden bool `json:"hidden,omitempty"`

	// Terminal marks the leftover items at the end of the sequence.
	Terminal bool `json:"terminal,omitempty"`
}

// Layout is the result of one pass.
type Layout struct {
	ContainerWidth float64     `json:"container_width"`
	Height         float64     `json:"height"`
	Placements     []Placement `json:"placements"`
	Rows           []Row       `json:"rows"`

	// Fallback is set when no row met MaxRowHeight and the whole sequence
	// was rendered as a single row.
	Fallback bool `json:"fallback,omitempty"`
}

// Hidden returns the number of placements that are not visible.
func (l Layout) Hidden() int {
	n := 0
	for _, p := range l.Placements {
		if !p.Visible {
			n++
		}
	}
	return n
}

// RowWidth returns the summed width of the visible placements in row r.
func (l Layout) RowWidth(r int) float64 {
	var sum float64
	for _, p := range l.Placements {
		if p.Row == r && p.Visible {
			sum += p.Width
		}
	}
	return sum
}

// =============================================================================
// Container
// =============================================================================

// Container supplies the width to fill and the items to lay out.
// Both are sampled once at the start of every pass.
type Container interface {
	Width() float64
	Items() []Item
}

// Box is an in-memory Container. It is safe for concurrent use, so a
// resize handler may call SetWidth while another goroutine runs Fit.
type Box struct {
	mu    sync.RWMutex
	width float64
	items []Item
}

// NewBox creates a Box with the given width and items.
func NewBox(width float64, items []Item) *Box {
	return &Box{width: width, items: items}
}

// Width returns the current width.
func (b *Box) Width() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.width
}

// Items returns the current items.
func (b *Box) Items() []Item {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.items
}

// SetWidth updates the width.
func (b *Box) SetWidth(w float64) {
	b.mu.Lock()
	b.width = w
	b.mu.Unlock()
}

// SetItems replaces the items.
func (b *Box) SetItems(items []Item) {
	b.mu.Lock()
	b.items = items
	b.mu.Unlock()
}

var _ Container = (*Box)(nil)
