// Package present turns layout placements into presentation decisions.
//
// The layout engine only assigns geometry. Hosts that display images use a
// [Swapper] to decide, per item, whether the assigned width warrants the
// high-resolution variant of its image or background.
package present

import (
	"sync"

	"github.com/matzehuels/mosaic/pkg/mosaic"
)

// Asset is the resolved presentation state of one item.
type Asset struct {
	ID         string `json:"id"`
	Src        string `json:"src,omitempty"`
	Background string `json:"background,omitempty"`
	HighRes    bool   `json:"high_res,omitempty"`

	// Changed is set when this Apply switched the item to or from its
	// high-resolution variant.
	Changed bool `json:"-"`
}

// swapState remembers what an item displayed before it was upgraded.
type swapState struct {
	srcSwapped bool
	bgSwapped  bool
}

// Swapper tracks which items currently display high-resolution assets.
// It is safe for concurrent use.
type Swapper struct {
	threshold float64

	mu    sync.Mutex
	state map[string]*swapState
}

// NewSwapper creates a swapper that upgrades items whose assigned width
// exceeds threshold. A zero threshold never upgrades.
func NewSwapper(threshold float64) *Swapper {
	return &Swapper{threshold: threshold, state: make(map[string]*swapState)}
}

// Threshold returns the configured width threshold.
func (s *Swapper) Threshold() float64 { return s.threshold }

// Apply updates the swap state from a layout and returns the asset every
// item should display. items and placements are matched by index.
//
// Visible items wider than the threshold switch to HighResSrc and
// HighResBackground where those exist. Items at or below the threshold go
// back to their original assets. Hidden items keep whatever they showed
// before.
func (s *Swapper) Apply(items []mosaic.Item, placements []mosaic.Placement) []Asset {
	s.mu.Lock()
	defer s.mu.Unlock()

	assets := make([]Asset, len(items))
	for i, it := range items {
		st := s.state[it.ID]
		if st == nil {
			st = &swapState{}
			s.state[it.ID] = st
		}

		if i < len(placements) && placements[i].Visible {
			wasHigh := st.srcSwapped || st.bgSwapped
			if s.threshold > 0 && placements[i].Width > s.threshold {
				if it.HighResSrc != "" {
					st.srcSwapped = true
				}
				if it.HighResBackground != "" {
					st.bgSwapped = true
				}
			} else {
				st.srcSwapped = false
				st.bgSwapped = false
			}
			assets[i].Changed = wasHigh != (st.srcSwapped || st.bgSwapped)
		}

		assets[i].ID = it.ID
		assets[i].Src = it.Src
		assets[i].Background = it.Background
		if st.srcSwapped {
			assets[i].Src = it.HighResSrc
		}
		if st.bgSwapped {
			assets[i].Background = it.HighResBackground
		}
		assets[i].HighRes = st.srcSwapped || st.bgSwapped
	}
	return assets
}

// Reset forgets all swap state.
func (s *Swapper) Reset() {
	s.mu.Lock()
	s.state = make(map[string]*swapState)
	s.mu.Unlock()
}

// Changed counts the assets whose resolution changed.
func Changed(assets []Asset) int {
	n := 0
	for _, a := range assets {
		if a.Changed {
			n++
		}
	}
	return n
}
