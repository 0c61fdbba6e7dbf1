package store

import (
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

// EventKind identifies a store mutation.
type EventKind int

const (
	// EventAdd reports entities that entered the store.
	EventAdd EventKind = iota
	// EventEdit reports entities whose data changed.
	EventEdit
	// EventDelete reports entities that left the store.
	EventDelete
)

// String returns the kind's wire name.
func (k EventKind) String() string {
	switch k {
	case EventAdd:
		return "ADD"
	case EventEdit:
		return "EDIT"
	case EventDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Event is published after every mutation. Entities are copies taken at
// publication time, so observers that run later never read live state.
type Event struct {
	Kind EventKind

	// Entities holds the batch as it is after the mutation; for a delete,
	// as it was just before removal.
	Entities []*entity.Entity

	// PreviousBox is the union of the batch's boxes before an edit or
	// delete. It is empty for an add.
	PreviousBox geom.Box

	// Box is the union of the batch's boxes after an add or edit. It is
	// empty for a delete.
	Box geom.Box
}

// Dirty returns the region an observer has to repaint.
func (e Event) Dirty() geom.Box {
	return e.PreviousBox.Union(e.Box)
}
