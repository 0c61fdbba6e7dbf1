// Package dispatcher runs interactive drawing commands.
//
// A command is a Graph: a root Rule and named sub-rules, each with an
// optional Action and the list of states allowed to follow it. Graphs are
// plain data. Everything a run accumulates lives in a scratch value of
// the graph's type parameter, created fresh for every run:
//
//	type lineState struct{ first geom.Point }
//
//	var line = &dispatcher.Graph[lineState]{
//		Name: "LINE",
//		Root: dispatcher.Rule[lineState]{Next: []string{"POINT1"}},
//		Sub: map[string]dispatcher.Rule[lineState]{
//			"POINT1": {Action: first, Next: []string{"POINT2"}},
//			"POINT2": {Action: second},
//		},
//	}
//
// # Running
//
// The Manager feeds input to one command at a time. Run with a command
// name starts it; while it runs, Run with an allowed state name switches
// to that state, the empty name runs the current state, and Escape aborts
// from anywhere. After each step the Outcome decides what happens:
//
//   - Normal advances to the first allowed state, or ends the command
//     when the rule has none.
//   - Retry stays in the current state.
//   - Over ends the command with data.
//   - ResumeAfter steps back, for commands that undo their own input.
//
// # Events
//
// Lifecycle events are published synchronously on Manager.Events():
// CommandStart once, MetaCommandEnd after every step, and CommandEnd or
// CommandFailed exactly once per run.
//
// # Commits
//
// Actions change the drawing only through Context.CommitCreate,
// CommitEdit and CommitDelete, which update the store and record the
// change in history together. Manager.Undo and Manager.Redo walk that
// history.
//
// # Interaction
//
// HoverAt, SelectAt, SelectBox and ClearSelection change hover and
// selection flags directly. They are view state and are not recorded in
// history.
package dispatcher
