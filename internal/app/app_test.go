package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/vecstorm/internal/config"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/geom"
	"github.com/dshills/vecstorm/internal/renderer/backend"
)

const (
	testWidth  = 40
	testHeight = 12
)

func newTestApp(t *testing.T, opts Options) (*Application, *backend.MemoryBackend) {
	t.Helper()
	mem := backend.NewMemoryBackend(testWidth, testHeight)
	if opts.Backend == nil && !opts.Headless {
		opts.Backend = mem
	}
	if opts.DBPath == "" {
		opts.NoStorage = true
	}
	if opts.LogOutput == nil {
		opts.LogOutput = io.Discard
	}
	opts.ConfigOptions = append(opts.ConfigOptions, config.WithoutEnv())

	app, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(app.Close)
	return app, mem
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func key(k backend.Key) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: k}
}

func (app *Application) typeLine(t *testing.T, s string) {
	t.Helper()
	for _, r := range s {
		if err := app.handleBackendEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: r}); err != nil {
			t.Fatalf("key %q: %v", r, err)
		}
	}
	if err := app.handleBackendEvent(key(backend.KeyEnter)); err != nil {
		t.Fatalf("enter: %v", err)
	}
}

func TestNewWiresComponents(t *testing.T) {
	app, _ := newTestApp(t, Options{})

	if app.Store() == nil || app.Manager() == nil || app.Renderer() == nil {
		t.Fatal("component missing")
	}
	if app.Drawings() != nil {
		t.Error("storage enabled with NoStorage")
	}
	if app.SessionID() == "" {
		t.Error("no session id")
	}
	if got := app.Config().Index.MaxEntries; got != config.Default().Index.MaxEntries {
		t.Errorf("MaxEntries = %d", got)
	}
	if !app.Manager().Registry().Has("LINE") || app.Manager().Registry().Has("SAVE") {
		t.Error("unexpected command set without storage")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	path := writeFile(t, "vecstorm.toml", "[index]\nmaxEntries = 2\n")
	_, err := New(Options{
		ConfigPath:    path,
		ConfigOptions: []config.LoadOption{config.WithoutEnv()},
		NoStorage:     true,
		Backend:       backend.NewNullBackend(10, 10),
		LogOutput:     io.Discard,
	})
	var ie *InitError
	if !errors.As(err, &ie) || ie.Component != "config" {
		t.Fatalf("New() error = %v, want config InitError", err)
	}
}

func TestOptionsOverrideConfig(t *testing.T) {
	path := writeFile(t, "vecstorm.toml", "[log]\nlevel = \"error\"\n")
	app, _ := newTestApp(t, Options{ConfigPath: path, LogLevel: "debug"})
	if app.Config().Log.Level != "debug" {
		t.Errorf("level = %q", app.Config().Log.Level)
	}
	if app.Logger().Level() != LogLevelDebug {
		t.Errorf("logger level = %v", app.Logger().Level())
	}
}

func TestCommandLineDrawsAndUndoes(t *testing.T) {
	app, _ := newTestApp(t, Options{})

	app.typeLine(t, "line")
	if cmd, ok := app.Manager().Running(); !ok || cmd != "LINE" {
		t.Fatalf("Running() = %q, %v", cmd, ok)
	}
	app.typeLine(t, "0,0")
	app.typeLine(t, "10, 0")
	app.typeLine(t, "10,10")
	if err := app.handleBackendEvent(key(backend.KeyEscape)); err != nil {
		t.Fatal(err)
	}
	if app.Store().Len() != 2 {
		t.Fatalf("Len() = %d, want 2", app.Store().Len())
	}

	_ = app.handleBackendEvent(key(backend.KeyCtrlZ))
	if app.Store().Len() != 1 {
		t.Errorf("Len() after undo = %d", app.Store().Len())
	}
	_ = app.handleBackendEvent(key(backend.KeyCtrlY))
	if app.Store().Len() != 2 {
		t.Errorf("Len() after redo = %d", app.Store().Len())
	}

	// an empty line repeats LINE
	app.typeLine(t, "")
	if cmd, _ := app.Manager().Running(); cmd != "LINE" {
		t.Errorf("repeat started %q", cmd)
	}
}

func TestCommandLineParamsAndStates(t *testing.T) {
	app, _ := newTestApp(t, Options{})

	app.typeLine(t, "circle")
	if _, ok := app.Manager().Running(); !ok {
		t.Fatal("CIRCLE not running")
	}
	app.typeLine(t, "5,5")
	app.typeLine(t, "d")
	if state, _ := app.Manager().State(); state != "D" {
		t.Fatalf("State() = %q, want D", state)
	}
	app.typeLine(t, "8")

	all := app.Store().All()
	if len(all) != 1 || all[0].Kind != entity.KindCircle || all[0].Shapes[0].Radius != 4 {
		t.Fatalf("store = %+v", all)
	}
}

func TestBackspaceAndStatus(t *testing.T) {
	app, _ := newTestApp(t, Options{})

	for _, r := range "LINX" {
		_ = app.handleBackendEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: r})
	}
	_ = app.handleBackendEvent(key(backend.KeyBackspace))
	if got := app.statusText(); got != "> LIN" {
		t.Errorf("statusText() = %q", got)
	}

	app.line = app.line[:0]
	app.typeLine(t, "NOPE")
	if got := app.statusText(); !strings.Contains(got, "NOPE") {
		t.Errorf("error not shown: %q", got)
	}

	app.typeLine(t, "LINE")
	if got := app.statusText(); !strings.HasPrefix(got, "LINE: Specify first point > ") {
		t.Errorf("statusText() = %q", got)
	}
}

func TestMouse(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	r := app.Renderer()

	click := func(x, y int, mod backend.ModMask) {
		_ = app.handleBackendEvent(backend.Event{Type: backend.EventMouse, MouseX: x, MouseY: y, MouseButton: backend.MouseLeft, Mod: mod})
		_ = app.handleBackendEvent(backend.Event{Type: backend.EventMouse, MouseX: x, MouseY: y})
	}

	app.typeLine(t, "LINE")
	click(2, 3, 0)
	click(12, 3, 0)
	_ = app.handleBackendEvent(key(backend.KeyEscape))

	all := app.Store().All()
	if len(all) != 1 {
		t.Fatalf("Len() = %d", len(all))
	}
	if got, want := all[0].Shapes[0].Points[0], r.ToWorld(2, 3); got != want {
		t.Errorf("first point = %v, want %v", got, want)
	}

	// hover then select the line by clicking on it
	mid := geom.Pt((r.ToWorld(2, 3).X+r.ToWorld(12, 3).X)/2, r.ToWorld(2, 3).Y)
	app.Manager().HoverAt(mid)
	if _, ok := app.Store().Hovered(); !ok {
		t.Fatal("nothing hovered on the line")
	}
	click(7, 3, 0)
	if app.Store().SelectionLen() != 1 {
		t.Errorf("SelectionLen() = %d after click", app.Store().SelectionLen())
	}

	// clicks on the status line are ignored
	click(7, testHeight-1, backend.ModShift)
	if app.Store().SelectionLen() != 1 {
		t.Error("status line click changed the selection")
	}

	// the wheel zooms around the pointer
	before := r.Viewport().Scale
	_ = app.handleBackendEvent(backend.Event{Type: backend.EventMouse, MouseX: 5, MouseY: 5, MouseButton: backend.MouseWheelDown})
	if r.Viewport().Scale <= before {
		t.Errorf("scale %v after wheel down, was %v", r.Viewport().Scale, before)
	}
}

func TestCtrlCQuits(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	if err := app.handleBackendEvent(key(backend.KeyCtrlC)); !errors.Is(err, ErrQuit) {
		t.Errorf("error = %v, want ErrQuit", err)
	}
}

func TestDrawFrame(t *testing.T) {
	app, mem := newTestApp(t, Options{})

	app.typeLine(t, "LINE")
	app.typeLine(t, "0,0")
	app.requestFrame()
	app.drawFrame()

	if mem.Shows() == 0 {
		t.Fatal("nothing drawn")
	}
	if row := mem.Row(testHeight - 1); !strings.HasPrefix(row, "LINE: Specify next point > ") {
		t.Errorf("status row = %q", row)
	}
	if got := gathered(t, app.Gatherer(), "vecstorm_frames_total", map[string]string{"result": "drawn"}); got != 1 {
		t.Errorf("drawn frames = %v", got)
	}

	// a second frame with nothing pending is not taken
	app.drawFrame()
	if got := gathered(t, app.Gatherer(), "vecstorm_frames_total", map[string]string{"result": "drawn"}); got != 1 {
		t.Errorf("drawn frames = %v after empty frame", got)
	}
}

func TestApplyReload(t *testing.T) {
	var logs bytes.Buffer
	app, _ := newTestApp(t, Options{LogOutput: &logs})

	cfg := config.Default()
	cfg.Log.Level = "debug"
	cfg.Store.SelectionThreshold = 3
	app.applyReload(cfg, nil)

	if app.Logger().Level() != LogLevelDebug {
		t.Errorf("level = %v", app.Logger().Level())
	}
	if app.Config().Store.SelectionThreshold != 3 {
		t.Errorf("threshold = %d", app.Config().Store.SelectionThreshold)
	}

	app.applyReload(config.Config{}, errors.New("bad file"))
	if app.Logger().Level() != LogLevelDebug {
		t.Error("failed reload changed the level")
	}
	if !strings.Contains(logs.String(), "bad file") {
		t.Errorf("reload failure not logged: %q", logs.String())
	}
}

func TestRunScript(t *testing.T) {
	var out bytes.Buffer
	app, _ := newTestApp(t, Options{ScriptOutput: &out})

	path := writeFile(t, "square.lua", `
		vec.run("RECTANGLE")
		vec.point(0, 0)
		vec.point(10, 10)
		print("count", vec.count())
	`)
	if err := app.RunScript(context.Background(), path); err != nil {
		t.Fatalf("RunScript() error = %v", err)
	}
	if out.String() != "count\t1\n" {
		t.Errorf("output = %q", out.String())
	}

	err := app.RunScript(context.Background(), writeFile(t, "bad.lua", `error("broken")`))
	var oe *OperationError
	if !errors.As(err, &oe) || oe.Op != "script" {
		t.Errorf("RunScript() error = %v, want script OperationError", err)
	}
}

func TestRunHeadlessScript(t *testing.T) {
	var out bytes.Buffer
	path := writeFile(t, "lines.lua", `
		vec.run("LINE")
		vec.point(0, 0)
		vec.point(10, 0)
		vec.escape()
		print(vec.count())
	`)
	app, _ := newTestApp(t, Options{Headless: true, Script: path, ScriptOutput: &out})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("Run() only returned on timeout")
	}
	if out.String() != "1\n" {
		t.Errorf("output = %q", out.String())
	}
	if app.IsRunning() {
		t.Error("still running")
	}
}

func TestRunHeadlessScriptError(t *testing.T) {
	path := writeFile(t, "bad.lua", `vec.point("x", 1)`)
	app, _ := newTestApp(t, Options{Headless: true, Script: path, ScriptOutput: io.Discard})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := app.Run(ctx)
	var oe *OperationError
	if !errors.As(err, &oe) || oe.Target != path {
		t.Fatalf("Run() error = %v, want script OperationError", err)
	}
}

func TestRunInteractiveQuit(t *testing.T) {
	app, mem := newTestApp(t, Options{})

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	for _, r := range "RTV" {
		mem.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: r})
	}
	mem.PostEvent(key(backend.KeyEnter))
	mem.PostEvent(key(backend.KeyCtrlC))

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run() did not return after Ctrl-C")
	}
	if !app.Renderer().Overlay() {
		t.Error("RTV did not toggle the overlay")
	}
}

func TestSaveAndOpenAcrossSessions(t *testing.T) {
	db := filepath.Join(t.TempDir(), "drawings", "vecstorm.db")

	first, _ := newTestApp(t, Options{DBPath: db})
	if first.Drawings() == nil {
		t.Fatal("storage not enabled")
	}
	first.typeLine(t, "LINE")
	first.typeLine(t, "0,0")
	first.typeLine(t, "5,5")
	_ = first.handleBackendEvent(key(backend.KeyEscape))
	first.typeLine(t, "SAVE plan")
	if !strings.Contains(first.message, `Saved 1 entities as "plan"`) {
		t.Errorf("message = %q", first.message)
	}
	first.Close()

	second, _ := newTestApp(t, Options{DBPath: db})
	second.typeLine(t, "OPEN plan")
	if second.Store().Len() != 1 {
		t.Fatalf("Len() = %d after OPEN", second.Store().Len())
	}
	_ = second.handleBackendEvent(key(backend.KeyCtrlZ))
	if second.Store().Len() != 0 {
		t.Errorf("OPEN was not undoable: Len() = %d", second.Store().Len())
	}
}
