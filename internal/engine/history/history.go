package history

import (
	"time"

	"github.com/dshills/vecstorm/internal/engine/entity"
)

// Applier replays snapshots into the entity store. The Restore methods
// must keep each snapshot's bounding box and layer as given.
type Applier interface {
	RestoreAdd(entities []*entity.Entity) []*entity.Entity
	RestoreEdit(entities []*entity.Entity) []*entity.Entity
	Delete(entities []*entity.Entity) []*entity.Entity
}

// Logger is the logging the engine needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(h *Engine) { h.logger = l }
}

// WithClock sets the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Engine) { h.now = now }
}

// Engine records store changes and replays them for undo and redo.
// It is not safe for concurrent use.
type Engine struct {
	applier Applier
	logger  Logger
	now     func() time.Time

	log     []Record
	pointer int
	stacks  map[string]*versionStack
}

// New creates an empty history that replays into a.
func New(a Applier, opts ...Option) *Engine {
	h := &Engine{
		applier: a,
		logger:  nopLogger{},
		now:     time.Now,
		stacks:  make(map[string]*versionStack),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Record logs a change and snapshots every entity in it. Any redo tail is
// discarded. An empty batch is not logged.
func (h *Engine) Record(kind ChangeKind, entities []*entity.Entity) {
	if len(entities) == 0 {
		return
	}
	h.log = append(h.log[:h.pointer], Record{
		Kind:      kind,
		IDs:       entity.IDs(entities),
		Timestamp: h.now(),
	})
	h.pointer = len(h.log)

	for _, e := range entities {
		h.stack(e.ID).push(e)
	}
}

// Baseline snapshots entities that have no applied history yet, without
// logging a change. It gives entities that entered the store outside the
// history (a loaded document, for instance) a prior state to restore.
func (h *Engine) Baseline(entities []*entity.Entity) {
	for _, e := range entities {
		if s := h.stack(e.ID); s.pointer == 0 {
			s.push(e)
		}
	}
}

func (h *Engine) stack(id string) *versionStack {
	s, ok := h.stacks[id]
	if !ok {
		s = &versionStack{}
		h.stacks[id] = s
	}
	return s
}

// Undo reverts the most recent applied record.
func (h *Engine) Undo() error { return h.Revert(h.pointer - 1) }

// Redo re-applies the most recently undone record.
func (h *Engine) Redo() error { return h.Revert(h.pointer + 1) }

// Revert moves the history so that exactly target records are applied,
// undoing newest first or redoing oldest first.
func (h *Engine) Revert(target int) error {
	switch {
	case target == h.pointer:
		return nil
	case target < 0:
		return ErrNothingToUndo
	case target > len(h.log):
		return ErrNothingToRedo
	}

	for h.pointer > target {
		h.pointer--
		h.undo(h.log[h.pointer])
	}
	for h.pointer < target {
		h.redo(h.log[h.pointer])
		h.pointer++
	}
	return nil
}

func (h *Engine) undo(r Record) {
	batch := make([]*entity.Entity, 0, len(r.IDs))
	for _, id := range r.IDs {
		s := h.stacks[id]
		if s == nil || s.pointer == 0 {
			h.logger.Warn("history: no snapshot to undo for %s", id)
			continue
		}
		s.pointer--
		// created and deleted replay the snapshot the record pushed; an edit
		// restores the one before it
		idx := s.pointer
		if r.Kind == Edited {
			idx--
		}
		if e := s.at(idx); e != nil {
			batch = append(batch, e)
		} else {
			h.logger.Warn("history: %s has no state before %s", id, r.Kind)
		}
	}

	switch r.Kind {
	case Created:
		h.applier.Delete(batch)
	case Edited:
		h.applier.RestoreEdit(batch)
	case Deleted:
		h.applier.RestoreAdd(batch)
	}
	h.logger.Debug("history: undid %s of %d entities", r.Kind, len(batch))
}

func (h *Engine) redo(r Record) {
	batch := make([]*entity.Entity, 0, len(r.IDs))
	for _, id := range r.IDs {
		s := h.stacks[id]
		if s == nil || s.pointer >= len(s.snapshots) {
			h.logger.Warn("history: no snapshot to redo for %s", id)
			continue
		}
		s.pointer++
		batch = append(batch, s.at(s.pointer-1))
	}

	switch r.Kind {
	case Created:
		h.applier.RestoreAdd(batch)
	case Edited:
		h.applier.RestoreEdit(batch)
	case Deleted:
		h.applier.Delete(batch)
	}
	h.logger.Debug("history: redid %s of %d entities", r.Kind, len(batch))
}

// CanUndo reports whether a record is applied.
func (h *Engine) CanUndo() bool { return h.pointer > 0 }

// CanRedo reports whether an undone record can be re-applied.
func (h *Engine) CanRedo() bool { return h.pointer < len(h.log) }

// Len returns the number of logged records, undone ones included.
func (h *Engine) Len() int { return len(h.log) }

// Pointer returns the number of applied records.
func (h *Engine) Pointer() int { return h.pointer }

// Log returns a copy of the logged records.
func (h *Engine) Log() []Record {
	out := make([]Record, len(h.log))
	for i, r := range h.log {
		r.IDs = append([]string(nil), r.IDs...)
		out[i] = r
	}
	return out
}

// Peek returns the record the next Undo would revert.
func (h *Engine) Peek() (Record, bool) {
	if h.pointer == 0 {
		return Record{}, false
	}
	return h.log[h.pointer-1], true
}

// Clear drops all history.
func (h *Engine) Clear() {
	h.log = nil
	h.pointer = 0
	clear(h.stacks)
}
