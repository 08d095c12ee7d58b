package mosaic

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Fit lays out items in a container of the given width.
//
// It returns false, and an empty layout, when the width is not a positive
// finite number; callers should keep any previous geometry and retry once a
// valid width is available. An empty item sequence yields an empty layout
// and true.
func Fit(items []Item, width float64, cfg Config) (Layout, bool) {
	if !positive(width) {
		return Layout{}, false
	}
	l := Layout{ContainerWidth: width}
	if len(items) == 0 {
		return l, true
	}

	ratios := ResolveAspectRatios(items, cfg.DefaultAspectRatio)
	placements := make([]Placement, 0, len(items))

	anyFitted := false
	for start := 0; start < len(items); {
		count, terminal := Partition(ratios, start, width, cfg.MaxRowHeight)
		ps, row := RenderRow(ratios[start:start+count], width, cfg.MaxRowHeight, cfg.OverflowPolicy)
		row.Start = start
		row.Terminal = terminal
		l.Rows = append(l.Rows, row)
		placements = append(placements, ps...)
		if terminal {
			break
		}
		anyFitted = true
		start += count
	}

	if !anyFitted {
		// No row ever met MaxRowHeight. Render everything as one row; skip
		// would hide the entire sequence, so it degrades to oversize here.
		policy := cfg.OverflowPolicy
		if policy == PolicySkip {
			policy = PolicyOversize
		}
		ps, row := RenderRow(ratios, width, cfg.MaxRowHeight, policy)
		l.Rows = []Row{row}
		l.Fallback = true
		placements = ps
	}

	l.Placements = placements
	finalize(&l, items)
	return l, true
}

// finalize numbers rows and fills in identity, row index and vertical offsets.
func finalize(l *Layout, items []Item) {
	var y float64
	for r := range l.Rows {
		row := &l.Rows[r]
		row.Index = r
		for i := row.Start; i < row.Start+row.Count; i++ {
			p := &l.Placements[i]
			p.Index = i
			p.ID = items[i].ID
			p.Row = r
			if p.Visible {
				p.Y = y
			}
		}
		if !row.Hidden {
			y += row.Height
		}
	}
	l.Height = y
}

// =============================================================================
// Engine
// =============================================================================

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used to report layout passes.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine lays out the items of a Container and retains the most recent
// result for the accessors.
//
// Fit is synchronous and runs to completion. Accessors may be called from
// other goroutines; they observe either the previous or the new layout,
// never a partial one.
type Engine struct {
	container Container
	cfg       Config
	logger    *log.Logger

	mu     sync.RWMutex
	layout Layout
	passes int
}

// New creates an engine for container. The configuration is validated and
// an INVALID_CONFIG error naming the offending field is returned if it is
// unusable.
func New(container Container, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		container: container,
		cfg:       cfg,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Fit recomputes the layout from the container's current width and items
// and returns it. When the width is unusable the pass is deferred and the
// previous layout is returned unchanged.
func (e *Engine) Fit() Layout {
	start := time.Now()
	width := e.container.Width()
	items := e.container.Items()

	l, ok := Fit(items, width, e.cfg)
	if !ok {
		e.logger.Debug("layout deferred", "width", width)
		return e.Layout()
	}

	e.mu.Lock()
	e.layout = l
	e.passes++
	e.mu.Unlock()

	e.logger.Debug("layout pass",
		"items", len(items),
		"rows", len(l.Rows),
		"hidden", l.Hidden(),
		"fallback", l.Fallback,
		"width", width,
		"duration", time.Since(start))
	return l
}

// Layout returns the most recent layout.
func (e *Engine) Layout() Layout {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.layout
}

// Placements returns a copy of the most recent per-item geometry.
func (e *Engine) Placements() []Placement {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Placement, len(e.layout.Placements))
	copy(out, e.layout.Placements)
	return out
}

// Placement returns the geometry of the item at index i.
func (e *Engine) Placement(i int) (Placement, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if i < 0 || i >= len(e.layout.Placements) {
		return Placement{}, false
	}
	return e.layout.Placements[i], true
}

// Rows returns a copy of the most recent row partition.
func (e *Engine) Rows() []Row {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Row, len(e.layout.Rows))
	copy(out, e.layout.Rows)
	return out
}

// Passes returns the number of completed (non-deferred) layout passes.
func (e *Engine) Passes() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.passes
}

// reset drops the retained layout.
func (e *Engine) reset() {
	e.mu.Lock()
	e.layout = Layout{}
	e.mu.Unlock()
}
