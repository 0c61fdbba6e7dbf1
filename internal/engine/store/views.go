package store

import "github.com/dshills/vecstorm/internal/engine/entity"

// updateViews brings the selection and hover views in line with a batch
// that was just applied. Large batches or large selections are handled by
// rescanning every entity; small ones are patched.
func (s *Store) updateViews(kind EventKind, batch []*entity.Entity) {
	if len(batch) > s.threshold || len(s.selection) > s.threshold {
		s.rescanSelection()
	} else {
		for _, e := range batch {
			if kind == EventDelete || !e.Flags.BoxSelected {
				delete(s.selection, e.ID)
			} else {
				s.selection[e.ID] = struct{}{}
			}
		}
	}
	s.updateHovered(kind, batch)
}

func (s *Store) rescanSelection() {
	clear(s.selection)
	for id, r := range s.records {
		if r.entity.Flags.BoxSelected {
			s.selection[id] = struct{}{}
		}
	}
}

// updateHovered takes the first hovered entity of the batch. When the batch
// has none, the view is cleared only if it named an entity in the batch.
func (s *Store) updateHovered(kind EventKind, batch []*entity.Entity) {
	if kind != EventDelete {
		for _, e := range batch {
			if e.Flags.Hovered {
				s.hovered = e.ID
				return
			}
		}
	}
	for _, e := range batch {
		if e.ID == s.hovered {
			s.hovered = ""
			return
		}
	}
}

// unhoverOthers keeps at most one entity hovered once batch has been
// stored. The first hovered entity of the batch wins; later ones in the
// batch lose the flag, and so does the entity the view named before. It
// returns the stored entities outside batch whose flag it cleared.
func (s *Store) unhoverOthers(batch []*entity.Entity) []*entity.Entity {
	in := make(map[string]bool, len(batch))
	winner := ""
	for _, e := range batch {
		in[e.ID] = true
		if !e.Flags.Hovered {
			continue
		}
		if winner == "" {
			winner = e.ID
		} else {
			e.Flags.Hovered = false
		}
	}
	if winner == "" || s.hovered == "" || s.hovered == winner || in[s.hovered] {
		return nil
	}
	r, ok := s.records[s.hovered]
	if !ok || !r.entity.Flags.Hovered {
		return nil
	}
	e := r.entity.Clone()
	e.Flags.Hovered = false
	r.entity = e
	return []*entity.Entity{e}
}

// Selection returns copies of the selected entities in insertion order.
func (s *Store) Selection() []*entity.Entity {
	recs := make([]*record, 0, len(s.selection))
	for id := range s.selection {
		if r, ok := s.records[id]; ok {
			recs = append(recs, r)
		}
	}
	return s.copies(recs)
}

// SelectionLen returns the number of selected entities.
func (s *Store) SelectionLen() int { return len(s.selection) }

// Hovered returns a copy of the entity under the cursor, if any.
func (s *Store) Hovered() (*entity.Entity, bool) {
	if s.hovered == "" {
		return nil, false
	}
	return s.Get(s.hovered)
}
