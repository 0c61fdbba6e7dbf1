// Package store owns the entities of a drawing. It keeps them in a spatial
// index, maintains the selection and hover views, and publishes an Event
// for every mutation.
//
// The store is the only owner of entity data. The index holds Handles
// (id plus indexed box) and every read returns a deep copy, so callers can
// never alias stored state. The store is not safe for concurrent use.
package store

import (
	"cmp"
	"slices"

	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
	"github.com/dshills/vecstorm/internal/engine/layer"
	"github.com/dshills/vecstorm/internal/engine/spatial"
	"github.com/dshills/vecstorm/internal/event"
)

// Kernel computes entity geometry.
type Kernel interface {
	ComputeAABB(e *entity.Entity) (geom.Box, bool)
	PreciseIntersects(box geom.Box, e *entity.Entity) bool
}

// LayerSource supplies the layer new entities are stamped with.
type LayerSource interface {
	Current() layer.Layer
}

// Logger is the logging the store needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Handle is what the spatial index stores for an entity.
type Handle struct {
	ID  string   `json:"id"`
	Box geom.Box `json:"box"`
}

// DefaultSelectionThreshold is the batch size above which the selection
// view is rebuilt by a full scan instead of being patched.
const DefaultSelectionThreshold = 10

// Config tunes a Store.
type Config struct {
	// MaxEntries is the spatial index node capacity.
	MaxEntries int
	// SelectionThreshold is the batch or selection size above which the
	// selection view is rebuilt from scratch.
	SelectionThreshold int
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		MaxEntries:         spatial.DefaultMaxEntries,
		SelectionThreshold: DefaultSelectionThreshold,
	}
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithBus makes the store publish on an existing bus.
func WithBus(b *event.Bus[Event]) Option {
	return func(s *Store) { s.bus = b }
}

type record struct {
	entity *entity.Entity
	seq    uint64
}

// Store is the authoritative entity store.
type Store struct {
	records map[string]*record
	tree    *spatial.Tree[Handle]
	seq     uint64

	kernel Kernel
	layers LayerSource
	bus    *event.Bus[Event]
	logger Logger

	threshold int
	selection map[string]struct{}
	hovered   string
}

// New creates an empty store.
func New(cfg Config, kernel Kernel, layers LayerSource, opts ...Option) *Store {
	if cfg.SelectionThreshold <= 0 {
		cfg.SelectionThreshold = DefaultSelectionThreshold
	}
	s := &Store{
		records:   make(map[string]*record),
		kernel:    kernel,
		layers:    layers,
		logger:    nopLogger{},
		threshold: cfg.SelectionThreshold,
		selection: make(map[string]struct{}),
	}
	s.tree = spatial.New(spatial.Options[Handle]{
		MaxEntries: cfg.MaxEntries,
		BBox:       func(h Handle) geom.Box { return h.Box },
		Precise:    s.precise,
		Equal:      func(a, b Handle) bool { return a.ID == b.ID },
	})
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = event.NewBus[Event]("store")
	}
	return s
}

func (s *Store) precise(box geom.Box, h Handle) bool {
	r, ok := s.records[h.ID]
	return ok && s.kernel.PreciseIntersects(box, r.entity)
}

// Events returns the bus mutations are published on.
func (s *Store) Events() *event.Bus[Event] { return s.bus }

// SetSelectionThreshold changes the selection rebuild threshold.
func (s *Store) SetSelectionThreshold(n int) {
	if n > 0 {
		s.threshold = n
	}
}

// Add computes each entity's box, stamps it with the current layer and
// indexes the batch in one bulk load. Entities without usable geometry or
// with an id already present are skipped. It returns copies of what was
// stored.
func (s *Store) Add(entities []*entity.Entity) []*entity.Entity {
	return s.add(entities, false)
}

// RestoreAdd re-inserts snapshots exactly as given: box and layer are taken
// from the snapshot, not recomputed. It is used to replay history.
func (s *Store) RestoreAdd(entities []*entity.Entity) []*entity.Entity {
	return s.add(entities, true)
}

func (s *Store) add(entities []*entity.Entity, restore bool) []*entity.Entity {
	if len(entities) == 0 {
		return nil
	}
	stored := make([]*entity.Entity, 0, len(entities))
	handles := make([]Handle, 0, len(entities))
	for _, in := range entities {
		if in.ID == "" {
			s.logger.Warn("store: add skipped entity without id")
			continue
		}
		if _, exists := s.records[in.ID]; exists {
			s.logger.Warn("store: add skipped duplicate id %s", in.ID)
			continue
		}
		e := in.Clone()
		if !restore || e.AABB == nil {
			box, ok := s.kernel.ComputeAABB(e)
			if !ok {
				s.logger.Warn("store: add skipped %s %s without geometry", e.Kind, e.ID)
				continue
			}
			e.AABB = &box
		}
		if !restore {
			e.Layer = s.layers.Current()
		}
		s.seq++
		s.records[e.ID] = &record{entity: e, seq: s.seq}
		handles = append(handles, Handle{ID: e.ID, Box: *e.AABB})
		stored = append(stored, e)
	}
	if len(stored) == 0 {
		return nil
	}
	s.tree.Load(handles)
	unhovered := s.unhoverOthers(stored)
	s.updateViews(EventAdd, stored)

	out := entity.CloneAll(stored)
	s.bus.Publish(Event{
		Kind:        EventAdd,
		Entities:    entity.CloneAll(stored),
		PreviousBox: geom.EmptyBox(),
		Box:         entity.UnionBox(stored),
	})
	if len(unhovered) > 0 {
		box := entity.UnionBox(unhovered)
		s.bus.Publish(Event{
			Kind:        EventEdit,
			Entities:    entity.CloneAll(unhovered),
			PreviousBox: box,
			Box:         box,
		})
	}
	return out
}

// Edit replaces the data of stored entities, matched by id. Each box is
// recomputed and the entity is re-indexed only when its box changed.
// Unknown ids are skipped. It returns copies of what was stored.
func (s *Store) Edit(entities []*entity.Entity) []*entity.Entity {
	return s.edit(entities, false)
}

// RestoreEdit is Edit with boxes taken from the snapshots. It is used to
// replay history.
func (s *Store) RestoreEdit(entities []*entity.Entity) []*entity.Entity {
	return s.edit(entities, true)
}

func (s *Store) edit(entities []*entity.Entity, restore bool) []*entity.Entity {
	if len(entities) == 0 {
		return nil
	}
	previous := geom.EmptyBox()
	stored := make([]*entity.Entity, 0, len(entities))
	for _, in := range entities {
		r, ok := s.records[in.ID]
		if !ok {
			s.logger.Warn("store: edit skipped unknown id %s", in.ID)
			continue
		}
		e := in.Clone()
		if !restore || e.AABB == nil {
			box, ok := s.kernel.ComputeAABB(e)
			if !ok {
				s.logger.Warn("store: edit skipped %s %s without geometry", e.Kind, e.ID)
				continue
			}
			e.AABB = &box
		}
		if e.Layer.ID == "" {
			e.Layer = r.entity.Layer
		}

		old := *r.entity.AABB
		previous = previous.Union(old)
		if old != *e.AABB {
			s.tree.Remove(Handle{ID: e.ID, Box: old})
			s.tree.Insert(Handle{ID: e.ID, Box: *e.AABB})
		}
		r.entity = e
		stored = append(stored, e)
	}
	if len(stored) == 0 {
		return nil
	}
	unhovered := s.unhoverOthers(stored)
	s.updateViews(EventEdit, stored)

	out := entity.CloneAll(stored)
	if len(unhovered) > 0 {
		// the event also carries the entities that lost the hover
		previous = previous.Union(entity.UnionBox(unhovered))
		stored = append(stored, unhovered...)
	}
	s.bus.Publish(Event{
		Kind:        EventEdit,
		Entities:    entity.CloneAll(stored),
		PreviousBox: previous,
		Box:         entity.UnionBox(stored),
	})
	return out
}

// Delete removes entities, matched by id. Unknown ids are skipped. It
// returns copies of what was removed.
func (s *Store) Delete(entities []*entity.Entity) []*entity.Entity {
	if len(entities) == 0 {
		return nil
	}
	removed := make([]*entity.Entity, 0, len(entities))
	for _, in := range entities {
		r, ok := s.records[in.ID]
		if !ok {
			continue
		}
		s.tree.Remove(Handle{ID: in.ID, Box: *r.entity.AABB})
		delete(s.records, in.ID)
		removed = append(removed, r.entity)
	}
	if len(removed) == 0 {
		return nil
	}
	s.updateViews(EventDelete, removed)

	out := entity.CloneAll(removed)
	s.bus.Publish(Event{
		Kind:        EventDelete,
		Entities:    entity.CloneAll(removed),
		PreviousBox: entity.UnionBox(removed),
		Box:         geom.EmptyBox(),
	})
	return out
}

// Clear deletes every entity.
func (s *Store) Clear() []*entity.Entity {
	return s.Delete(s.All())
}

// Len returns the number of stored entities.
func (s *Store) Len() int { return len(s.records) }

// Get returns a copy of the entity with the given id.
func (s *Store) Get(id string) (*entity.Entity, bool) {
	r, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return r.entity.Clone(), true
}

// All returns copies of every entity in insertion order.
func (s *Store) All() []*entity.Entity {
	recs := make([]*record, 0, len(s.records))
	for _, r := range s.records {
		recs = append(recs, r)
	}
	return s.copies(recs)
}

// CursorHitTest returns the first entity whose outline touches box.
func (s *Store) CursorHitTest(box geom.Box) (*entity.Entity, bool) {
	h, ok := s.tree.Collide(box)
	if !ok {
		return nil, false
	}
	return s.Get(h.ID)
}

// QueryTouching returns entities whose boxes intersect box. With exact
// set, entities only partly inside box must also touch it with their
// outline.
func (s *Store) QueryTouching(box geom.Box, exact bool) []*entity.Entity {
	return s.resolve(s.tree.Search(box, exact))
}

// QueryContained returns entities lying entirely inside box.
func (s *Store) QueryContained(box geom.Box) []*entity.Entity {
	return s.resolve(s.tree.SearchAllIn(box))
}

// IndexStats describes the spatial index.
func (s *Store) IndexStats() spatial.Stats { return s.tree.Stats() }

// WalkIndex visits the nodes of the spatial index top-down.
func (s *Store) WalkIndex(fn func(box geom.Box, height int, leaf bool) bool) {
	s.tree.Walk(fn)
}

// Bounds returns the union of every entity's box.
func (s *Store) Bounds() geom.Box {
	if len(s.records) == 0 {
		return geom.EmptyBox()
	}
	return s.tree.Bounds()
}

func (s *Store) resolve(handles []Handle) []*entity.Entity {
	recs := make([]*record, 0, len(handles))
	for _, h := range handles {
		if r, ok := s.records[h.ID]; ok {
			recs = append(recs, r)
		}
	}
	return s.copies(recs)
}

// copies sorts records by insertion order and deep copies their entities.
func (s *Store) copies(recs []*record) []*entity.Entity {
	slices.SortFunc(recs, func(a, b *record) int { return cmp.Compare(a.seq, b.seq) })
	out := make([]*entity.Entity, len(recs))
	for i, r := range recs {
		out[i] = r.entity.Clone()
	}
	return out
}
