package app

import (
	"bytes"
	"context"
	"strings"

	"github.com/dshills/vecstorm/internal/plugin/lua"
)

// RunScript runs the Lua macro at path against the drawing. Each script
// gets a fresh state with the vec module installed. Call it on the event
// loop, or before Run.
func (app *Application) RunScript(ctx context.Context, path string) error {
	state := lua.NewState(lua.WithOutput(app.scriptOutput))
	defer state.Close()

	app.macros.Install(state)
	app.logger.Debug("app: running script %s", path)
	if err := state.DoFile(ctx, path); err != nil {
		return &OperationError{Op: "script", Target: path, Err: err}
	}
	app.logger.Info("app: script %s done, %d entities", path, app.store.Len())
	return nil
}

// statusWriter shows script output on the status line when the terminal
// owns stdout.
type statusWriter struct {
	app *Application
}

func (w statusWriter) Write(p []byte) (int, error) {
	lines := strings.Split(string(bytes.TrimRight(p, "\n")), "\n")
	w.app.message = lines[len(lines)-1]
	return len(p), nil
}
