// Package dirty tracks which parts of a drawing need repainting.
// Regions are kept in drawing coordinates; overlapping regions are
// coalesced and a long list collapses into one bounding region.
package dirty

import (
	"sync"

	"github.com/dshills/vecstorm/internal/engine/geom"
)

// MaxRegions is the number of separate regions kept before they are
// merged into their union.
const MaxRegions = 16

// Tracker accumulates dirty regions between frames.
type Tracker struct {
	mu      sync.Mutex
	regions []geom.Box
	full    bool
}

// NewTracker creates a tracker that starts with a full redraw pending.
func NewTracker() *Tracker {
	return &Tracker{full: true}
}

// Add marks box dirty. Empty boxes are ignored.
func (t *Tracker) Add(box geom.Box) {
	if box.IsEmpty() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.full {
		return
	}
	// absorb every region the new one touches, repeating while the
	// grown box reaches further
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(t.regions); i++ {
			if t.regions[i].Intersects(box) {
				box = box.Union(t.regions[i])
				t.regions = append(t.regions[:i], t.regions[i+1:]...)
				merged = true
				i--
			}
		}
	}
	t.regions = append(t.regions, box)

	if len(t.regions) > MaxRegions {
		u := geom.EmptyBox()
		for _, r := range t.regions {
			u = u.Union(r)
		}
		t.regions = append(t.regions[:0], u)
	}
}

// MarkFull requests a full redraw.
func (t *Tracker) MarkFull() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.full = true
	t.regions = t.regions[:0]
}

// Pending reports whether anything needs drawing.
func (t *Tracker) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.full || len(t.regions) > 0
}

// Take returns the pending regions and whether a full redraw was
// requested, and resets the tracker.
func (t *Tracker) Take() (regions []geom.Box, full bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	regions, full = t.regions, t.full
	t.regions = nil
	t.full = false
	if full {
		regions = nil
	}
	return regions, full
}
