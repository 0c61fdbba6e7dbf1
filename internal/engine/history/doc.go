// Package history provides undo/redo for the entity store.
//
// The history is kept in two parts:
//
// # Log
//
// An ordered list of Records, one per committed change. Each record names
// its ChangeKind (Created, Edited or Deleted) and the ids it touched. A log
// pointer marks how many records are currently applied.
//
// # Version stacks
//
// Every entity id owns a stack of full snapshots plus its own pointer. A
// record pushes one snapshot per entity; undo and redo move the pointers
// and replay the snapshot now pointed at:
//
//	Created  undo: delete          redo: re-add
//	Edited   undo: restore prior   redo: restore next
//	Deleted  undo: re-add          redo: delete
//
// Replay goes through an Applier that takes snapshots verbatim, bounding
// box included, so an undone and redone entity is identical to the
// original.
//
// Usage:
//
//	h := history.New(st)
//	created := st.Add(batch)
//	h.Record(history.Created, created)
//
//	h.Undo() // created entities leave the store
//	h.Redo() // and come back
//
// Recording after an undo discards the redo tail.
package history
