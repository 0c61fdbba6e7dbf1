// Package system provides the commands that do not draw: ESCAPE, HELP,
// RTV and the drawing storage commands SAVE and OPEN.
package system

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/store"
)

// Command names.
const (
	CommandEscape = dispatcher.Escape
	CommandHelp   = "HELP"
	CommandIndex  = "RTV"
	CommandSave   = "SAVE"
	CommandOpen   = "OPEN"
)

// Data events the commands end with.
const (
	EventHelp  = "HELP"
	EventIndex = "RTV"
	EventSave  = "SAVE"
	EventOpen  = "OPEN"
)

// DefaultDrawing is the name SAVE and OPEN use when none is given.
const DefaultDrawing = "default"

// DefaultIOTimeout bounds a single SAVE or OPEN.
const DefaultIOTimeout = 5 * time.Second

// ErrNotFound is what Drawings.Load returns, possibly wrapped, for an
// unknown name.
var ErrNotFound = errors.New("system: drawing not found")

// Drawings stores named drawings.
type Drawings interface {
	Save(ctx context.Context, name string, doc store.Document) error
	Load(ctx context.Context, name string) (store.Document, error)
}

// Options configures the system commands.
type Options struct {
	// Drawings backs SAVE and OPEN. Without it those commands are not
	// provided.
	Drawings Drawings
	// NotFound reports whether a Load error means the name is unknown.
	NotFound func(error) bool
	// IOTimeout bounds each storage call.
	IOTimeout time.Duration
}

// Commands returns the system commands.
func Commands(opts Options) []dispatcher.Definition {
	defs := []dispatcher.Definition{
		Escape(),
		Help(),
		Index(),
	}
	if opts.Drawings != nil {
		if opts.IOTimeout <= 0 {
			opts.IOTimeout = DefaultIOTimeout
		}
		if opts.NotFound == nil {
			opts.NotFound = func(err error) bool { return errors.Is(err, ErrNotFound) }
		}
		defs = append(defs, Save(opts), Open(opts))
	}
	return defs
}

// Escape returns the ESCAPE command. While another command runs, ESCAPE
// never reaches the registry; started on its own it does nothing.
func Escape() *dispatcher.Graph[struct{}] {
	return &dispatcher.Graph[struct{}]{
		Name:        CommandEscape,
		Description: "Cancel the running command",
		Root:        dispatcher.Rule[struct{}]{Msg: "Cancel"},
	}
}

// Help returns the HELP command. It ends with the list of commands.
func Help() *dispatcher.Graph[struct{}] {
	return &dispatcher.Graph[struct{}]{
		Name:        CommandHelp,
		Description: "List the available commands",
		Root: dispatcher.Rule[struct{}]{
			Msg: "Help",
			Action: func(ctx *dispatcher.Context, _ *struct{}, _ any) (dispatcher.Outcome, error) {
				names := ctx.Commands()
				descriptions := make(map[string]string, len(names))
				for _, n := range names {
					descriptions[n] = ctx.Describe(n)
				}
				return dispatcher.Over(map[string]any{
					"event":        EventHelp,
					"commands":     names,
					"descriptions": descriptions,
				}), nil
			},
		},
	}
}

// Index returns the RTV command. It ends with statistics of the spatial
// index; a renderer toggles its index overlay on it.
func Index() *dispatcher.Graph[struct{}] {
	return &dispatcher.Graph[struct{}]{
		Name:        CommandIndex,
		Description: "Show the spatial index",
		Root: dispatcher.Rule[struct{}]{
			Msg: "Index",
			Action: func(ctx *dispatcher.Context, _ *struct{}, _ any) (dispatcher.Outcome, error) {
				st := ctx.IndexStats()
				return dispatcher.Over(map[string]any{
					"event":  EventIndex,
					"height": st.Height,
					"nodes":  st.Nodes,
					"leaves": st.Leaves,
					"items":  st.Items,
				}), nil
			},
		},
	}
}

func drawingName(params any) string {
	if s, ok := dispatcher.AsText(params); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return DefaultDrawing
}

// Save returns the SAVE command. Its input is the drawing name.
func Save(opts Options) *dispatcher.Graph[struct{}] {
	return &dispatcher.Graph[struct{}]{
		Name:        CommandSave,
		Description: "Save the drawing",
		Root: dispatcher.Rule[struct{}]{
			Msg: "Save drawing",
			Action: func(ctx *dispatcher.Context, _ *struct{}, params any) (dispatcher.Outcome, error) {
				name := drawingName(params)
				doc := ctx.Document()

				c, cancel := context.WithTimeout(context.Background(), opts.IOTimeout)
				defer cancel()
				if err := opts.Drawings.Save(c, name, doc); err != nil {
					return dispatcher.Outcome{}, err
				}
				ctx.Logger().Info("system: saved %d entities as %q", len(doc.Entities), name)
				return dispatcher.Over(map[string]any{
					"event": EventSave,
					"name":  name,
					"count": len(doc.Entities),
				}), nil
			},
		},
	}
}

// Open returns the OPEN command. The loaded entities are added to the
// drawing as one undoable creation. An unknown name keeps the command
// waiting for another.
func Open(opts Options) *dispatcher.Graph[struct{}] {
	return &dispatcher.Graph[struct{}]{
		Name:        CommandOpen,
		Description: "Open a saved drawing",
		Root: dispatcher.Rule[struct{}]{
			Msg: "Open drawing",
			Action: func(ctx *dispatcher.Context, _ *struct{}, params any) (dispatcher.Outcome, error) {
				name := drawingName(params)

				c, cancel := context.WithTimeout(context.Background(), opts.IOTimeout)
				defer cancel()
				doc, err := opts.Drawings.Load(c, name)
				if err != nil {
					if opts.NotFound(err) {
						ctx.Logger().Warn("system: open %q: %v", name, err)
						return dispatcher.Retry(), nil
					}
					return dispatcher.Outcome{}, err
				}

				loaded := make([]*entity.Entity, len(doc.Entities))
				for i, e := range doc.Entities {
					loaded[i] = e.Clone()
					loaded[i].Flags.Hovered = false
					loaded[i].Flags.BoxSelected = false
				}
				added := ctx.CommitCreate(loaded)
				return dispatcher.Over(map[string]any{
					"event": EventOpen,
					"name":  name,
					"count": len(added),
				}), nil
			},
		},
	}
}
