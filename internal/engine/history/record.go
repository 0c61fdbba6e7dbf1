package history

import (
	"time"

	"github.com/dshills/vecstorm/internal/engine/entity"
)

// ChangeKind is the kind of structural change a Record logs.
type ChangeKind int

const (
	// Created logs entities entering the store.
	Created ChangeKind = iota
	// Edited logs entities whose data changed.
	Edited
	// Deleted logs entities leaving the store.
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "Created"
	case Edited:
		return "Edited"
	case Deleted:
		return "Deleted"
	default:
		return "Unknown"
	}
}

// Record is one logged change.
type Record struct {
	Kind      ChangeKind
	IDs       []string
	Timestamp time.Time
}

// versionStack holds the snapshots of one entity. Entries below pointer
// are applied; the entry at pointer-1 is the entity's current state.
type versionStack struct {
	snapshots []*entity.Entity
	pointer   int
}

// push truncates any redo tail and appends a snapshot. Hover follows the
// pointer, not the drawing, so snapshots never carry it.
func (s *versionStack) push(e *entity.Entity) {
	c := e.Clone()
	c.Flags.Hovered = false
	s.snapshots = append(s.snapshots[:s.pointer], c)
	s.pointer = len(s.snapshots)
}

func (s *versionStack) at(i int) *entity.Entity {
	if i < 0 || i >= len(s.snapshots) {
		return nil
	}
	return s.snapshots[i].Clone()
}
