package app

import (
	"slices"
	"strings"

	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/renderer/backend"
)

// View navigation steps.
const (
	panStep    = 4
	zoomFactor = 1.25
)

// handleBackendEvent dispatches a backend event to the appropriate handler.
func (app *Application) handleBackendEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		app.metrics.RecordInput("resize")
		return app.handleResize(ev)
	case backend.EventKey:
		app.metrics.RecordInput("key")
		return app.handleKeyEvent(ev)
	case backend.EventMouse:
		app.metrics.RecordInput("mouse")
		return app.handleMouseEvent(ev)
	default:
		return nil
	}
}

// handleResize handles terminal resize events.
func (app *Application) handleResize(ev backend.Event) error {
	app.renderer.Resize(ev.Width, ev.Height)
	return nil
}

// handleKeyEvent edits the command line and maps control keys to manager
// operations.
func (app *Application) handleKeyEvent(ev backend.Event) error {
	switch ev.Key {
	case backend.KeyCtrlC:
		return ErrQuit
	case backend.KeyCtrlZ:
		app.message = ""
		app.manager.Undo()
	case backend.KeyCtrlY:
		app.message = ""
		app.manager.Redo()
	case backend.KeyEscape:
		app.line = app.line[:0]
		app.message = ""
		app.manager.Run(dispatcher.Escape, nil)
	case backend.KeyEnter:
		app.submitLine()
	case backend.KeyBackspace:
		if n := len(app.line); n > 0 {
			app.line = app.line[:n-1]
		}
	case backend.KeyUp:
		app.renderer.Pan(0, -panStep)
	case backend.KeyDown:
		app.renderer.Pan(0, panStep)
	case backend.KeyLeft:
		app.renderer.Pan(-panStep, 0)
	case backend.KeyRight:
		app.renderer.Pan(panStep, 0)
	case backend.KeyRune:
		if ev.Mod.Has(backend.ModAlt) {
			app.handleViewKey(ev.Rune)
			return nil
		}
		app.line = append(app.line, ev.Rune)
	}
	return nil
}

// handleViewKey handles Alt shortcuts that only change the view.
func (app *Application) handleViewKey(r rune) {
	switch r {
	case 'f':
		app.renderer.Fit()
	case 'o':
		app.renderer.ToggleOverlay()
	case '+', '=':
		w, h := app.backend.Size()
		app.renderer.Zoom(1/zoomFactor, w/2, h/2)
	case '-':
		w, h := app.backend.Size()
		app.renderer.Zoom(zoomFactor, w/2, h/2)
	}
}

// submitLine sends the typed command line to the manager.
//
// Idle, the first word names a command and the rest is its input; an
// empty line repeats the previous command. While a command runs, a word
// naming an allowed state switches to it and anything else is input to
// the current state.
func (app *Application) submitLine() {
	raw := string(app.line)
	app.line = app.line[:0]
	app.message = ""
	text := strings.TrimSpace(raw)

	if _, running := app.manager.Running(); !running {
		if text == "" {
			app.manager.Run(" ", nil)
			return
		}
		name, rest, _ := strings.Cut(text, " ")
		if rest = strings.TrimSpace(rest); rest != "" {
			app.manager.Run(name, rest)
			return
		}
		app.manager.Run(name, nil)
		return
	}

	if text == "" {
		app.manager.Run("", nil)
		return
	}
	if _, allowed := app.manager.State(); slices.Contains(allowed, strings.ToUpper(text)) {
		app.manager.Run(text, nil)
		return
	}
	app.manager.Run("", text)
}

// handleMouseEvent turns clicks into points or selections, motion into
// hover, and the wheel into zoom.
func (app *Application) handleMouseEvent(ev backend.Event) error {
	pressed := ev.MouseButton != app.buttons
	app.buttons = ev.MouseButton

	if _, h := app.backend.Size(); ev.MouseY >= h-1 {
		// status line
		return nil
	}
	p := app.renderer.ToWorld(ev.MouseX, ev.MouseY)

	switch ev.MouseButton {
	case backend.MouseNone:
		app.manager.HoverAt(p)
	case backend.MouseLeft:
		if !pressed {
			return nil
		}
		app.message = ""
		if _, running := app.manager.Running(); running {
			app.manager.Run("", p)
			return nil
		}
		app.manager.SelectAt(p, ev.Mod.Has(backend.ModShift))
	case backend.MouseRight:
		if pressed {
			app.submitLine()
		}
	case backend.MouseWheelUp:
		app.renderer.Zoom(1/zoomFactor, ev.MouseX, ev.MouseY)
	case backend.MouseWheelDown:
		app.renderer.Zoom(zoomFactor, ev.MouseX, ev.MouseY)
	}
	return nil
}

// statusText is the bottom line: the running command and its prompt, the
// typed line, and the last result or error.
func (app *Application) statusText() string {
	var b strings.Builder
	if cmd, ok := app.manager.Running(); ok {
		b.WriteString(cmd)
		if prompt := app.manager.Prompt(); prompt != "" {
			b.WriteString(": ")
			b.WriteString(prompt)
		}
		b.WriteByte(' ')
	}
	b.WriteString("> ")
	b.WriteString(string(app.line))
	if app.message != "" {
		b.WriteString("  [")
		b.WriteString(app.message)
		b.WriteByte(']')
	}
	return b.String()
}

// startInputPolling starts a goroutine that polls for input events.
// Events are sent to the returned channel.
//
// PollEvent is blocking. Run unblocks it on exit by posting an empty
// event; the terminal backend also returns once it is shut down.
func (app *Application) startInputPolling() <-chan backend.Event {
	events := make(chan backend.Event, 100)

	go func() {
		defer close(events)
		for {
			ev := app.backend.PollEvent()
			if app.quitting.Load() {
				return
			}
			select {
			case events <- ev:
			case <-app.done:
				return
			}
		}
	}()

	return events
}
