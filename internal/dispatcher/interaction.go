package dispatcher

import (
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

// The interaction operations change only view flags. They edit the store
// directly and never write history.

func (m *Manager) hitBox(p geom.Point) geom.Box {
	return geom.BoxAround(p, m.cfg.HoverTolerance)
}

// HoverAt moves the pointer to p. The entity under it, if any and not
// already selected, becomes the single hovered entity. The active
// command's preview is refreshed.
func (m *Manager) HoverAt(p geom.Point) {
	m.cursor = p
	if m.active != nil {
		m.preview = m.active.Preview(m.ctx, p)
	}

	prev, hadPrev := m.store.Hovered()
	hit, ok := m.store.CursorHitTest(m.hitBox(p))
	if ok && hadPrev && hit.ID == prev.ID {
		return
	}

	var batch []*entity.Entity
	if hadPrev {
		prev.Flags.Hovered = false
		batch = append(batch, prev)
	}
	if ok && !hit.Flags.BoxSelected {
		hit.Flags.Hovered = true
		batch = append(batch, hit)
	}
	m.store.Edit(batch)
}

// SelectAt toggles the selection of the entity under p. Unless additive,
// every other entity is deselected first.
func (m *Manager) SelectAt(p geom.Point, additive bool) {
	m.cursor = p
	hit, ok := m.store.CursorHitTest(m.hitBox(p))
	var found []*entity.Entity
	if ok {
		found = append(found, hit)
	}
	m.applySelection(found, additive)
}

// SelectBox selects with the rectangle spanned by p1 and p2. Dragged left
// to right it picks entities lying wholly inside; right to left it picks
// every entity whose outline crosses the rectangle.
func (m *Manager) SelectBox(p1, p2 geom.Point, additive bool) {
	box := geom.BoxOf(p1, p2)
	var found []*entity.Entity
	if p1.X <= p2.X {
		found = m.store.QueryContained(box)
	} else {
		found = m.store.QueryTouching(box, true)
	}
	m.applySelection(found, additive)
}

// ClearSelection deselects everything.
func (m *Manager) ClearSelection() {
	m.applySelection(nil, false)
}

// applySelection toggles found. Unless additive, the current selection is
// cleared first, so found ends up selected.
func (m *Manager) applySelection(found []*entity.Entity, additive bool) {
	batch := make(map[string]*entity.Entity)
	var order []string
	put := func(e *entity.Entity) {
		if _, seen := batch[e.ID]; !seen {
			order = append(order, e.ID)
		}
		batch[e.ID] = e
	}

	if !additive {
		for _, e := range m.store.Selection() {
			e.Flags.BoxSelected = false
			put(e)
		}
	}
	for _, e := range found {
		if prior, ok := batch[e.ID]; ok {
			e = prior
		}
		e.Flags.BoxSelected = !e.Flags.BoxSelected
		e.Flags.Hovered = false
		put(e)
	}

	edits := make([]*entity.Entity, len(order))
	for i, id := range order {
		edits[i] = batch[id]
	}
	m.store.Edit(edits)
}
