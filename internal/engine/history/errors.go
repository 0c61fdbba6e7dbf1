package history

import "errors"

// Boundary errors. They are reported, not fatal: the history is unchanged.
var (
	ErrNothingToUndo = errors.New("history: nothing to undo")
	ErrNothingToRedo = errors.New("history: nothing to redo")
)
