// Package modify provides the commands that change existing entities:
// ERASE, MOVE, COPY, KEYNODESDRAG and SELECTALL. Except for SELECTALL they
// work on the current selection and end at once, asking for one, when it
// is empty.
package modify

import (
	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
)

// Command names.
const (
	CommandErase       = "ERASE"
	CommandMove        = "MOVE"
	CommandCopy        = "COPY"
	CommandSelectAll   = "SELECTALL"
	CommandKeyNodeDrag = "KEYNODESDRAG"
)

// EventSelect is the data event a guarded command ends with when there is
// nothing selected.
const EventSelect = "CommandSelect"

// Commands returns the modify commands.
func Commands() []dispatcher.Definition {
	return []dispatcher.Definition{
		Erase(),
		Move(),
		Copy(),
		KeyNodeDrag(),
		SelectAll(),
	}
}

// guard ends the command when the selection is empty.
func guard(ctx *dispatcher.Context) (dispatcher.Outcome, bool) {
	if ctx.SelectionLen() > 0 {
		return dispatcher.Outcome{}, false
	}
	return dispatcher.Over(map[string]any{"event": EventSelect}), true
}

// translated returns copies of es moved by v with the selection flag
// cleared.
func translated(es []*entity.Entity, v geom.Point) []*entity.Entity {
	out := make([]*entity.Entity, len(es))
	for i, e := range es {
		out[i] = e.Translate(v)
		out[i].Flags.BoxSelected = false
		out[i].Flags.Hovered = false
	}
	return out
}

// Erase returns the ERASE command.
func Erase() *dispatcher.Graph[struct{}] {
	return &dispatcher.Graph[struct{}]{
		Name:        CommandErase,
		Description: "Erase the selected entities",
		Root: dispatcher.Rule[struct{}]{
			Msg: "Erase",
			Action: func(ctx *dispatcher.Context, _ *struct{}, _ any) (dispatcher.Outcome, error) {
				if out, stop := guard(ctx); stop {
					return out, nil
				}
				ctx.CommitDelete(ctx.Selection())
				return dispatcher.Normal(), nil
			},
		},
	}
}

// SelectAll returns the SELECTALL command.
func SelectAll() *dispatcher.Graph[struct{}] {
	return &dispatcher.Graph[struct{}]{
		Name:        CommandSelectAll,
		Description: "Select every entity",
		Root: dispatcher.Rule[struct{}]{
			Msg: "Select all",
			Action: func(ctx *dispatcher.Context, _ *struct{}, _ any) (dispatcher.Outcome, error) {
				var batch []*entity.Entity
				for _, e := range ctx.All() {
					if e.Flags.BoxSelected {
						continue
					}
					e.Flags.BoxSelected = true
					e.Flags.Hovered = false
					batch = append(batch, e)
				}
				ctx.CommitEdit(batch)
				return dispatcher.Normal(), nil
			},
		},
	}
}
