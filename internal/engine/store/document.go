package store

import (
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
	"github.com/dshills/vecstorm/internal/engine/spatial"
)

// Document is the persisted form of a store: the entities plus the raw
// node graph of the index, which reloads without a bulk rebuild.
type Document struct {
	Entities []*entity.Entity      `json:"entities"`
	Tree     *spatial.Node[Handle] `json:"tree,omitempty"`
}

// Document captures the store's current contents.
func (s *Store) Document() Document {
	return Document{
		Entities: s.All(),
		Tree:     s.tree.ToSerializable(),
	}
}

// LoadDocument replaces the store's contents with doc. The index is taken
// from doc.Tree when it matches the entities; otherwise it is rebuilt. One
// EventDelete for the old contents and one EventAdd for the new are
// published. Entities without an id or usable geometry are skipped, and
// no loaded entity is hovered.
func (s *Store) LoadDocument(doc Document) {
	s.Clear()

	for _, in := range doc.Entities {
		e := in.Clone()
		e.Flags.Hovered = false
		if e.AABB == nil {
			box, ok := s.kernel.ComputeAABB(e)
			if !ok {
				s.logger.Warn("store: load skipped %s %s without geometry", e.Kind, e.ID)
				continue
			}
			e.AABB = &box
		}
		if _, dup := s.records[e.ID]; dup || e.ID == "" || !e.Kind.Valid() {
			s.logger.Warn("store: load skipped bad entity %q", e.ID)
			continue
		}
		s.seq++
		s.records[e.ID] = &record{entity: e, seq: s.seq}
	}

	if !s.adoptTree(doc.Tree) {
		handles := make([]Handle, 0, len(s.records))
		for id, r := range s.records {
			handles = append(handles, Handle{ID: id, Box: *r.entity.AABB})
		}
		s.tree.Clear()
		s.tree.Load(handles)
	}

	all := s.All()
	s.hovered = ""
	s.rescanSelection()
	if len(all) > 0 {
		s.bus.Publish(Event{
			Kind:        EventAdd,
			Entities:    all,
			PreviousBox: geom.EmptyBox(),
			Box:         entity.UnionBox(all),
		})
	}
}

// adoptTree installs a serialised index if every handle matches a loaded
// entity and every entity is indexed exactly once.
func (s *Store) adoptTree(root *spatial.Node[Handle]) bool {
	if root == nil {
		return false
	}
	if err := s.tree.FromSerializable(root); err != nil {
		s.logger.Warn("store: rebuilding index: %v", err)
		return false
	}
	seen := make(map[string]bool, len(s.records))
	for _, h := range s.tree.All() {
		r, ok := s.records[h.ID]
		if !ok || seen[h.ID] || *r.entity.AABB != h.Box {
			s.logger.Warn("store: rebuilding index: handle %s does not match", h.ID)
			return false
		}
		seen[h.ID] = true
	}
	if len(seen) != len(s.records) {
		s.logger.Warn("store: rebuilding index: %d of %d entities indexed", len(seen), len(s.records))
		return false
	}
	return true
}
