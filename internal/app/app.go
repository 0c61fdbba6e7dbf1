// Package app provides the main application structure and coordination
// for the vecstorm editor. It wires the entity store, its history, the
// command manager, persistence, the renderer and Lua macros together and
// runs the single event loop all of them are driven from.
package app

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/vecstorm/internal/config"
	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/engine/history"
	"github.com/dshills/vecstorm/internal/engine/idpool"
	"github.com/dshills/vecstorm/internal/engine/layer"
	"github.com/dshills/vecstorm/internal/engine/store"
	"github.com/dshills/vecstorm/internal/event"
	"github.com/dshills/vecstorm/internal/persist"
	"github.com/dshills/vecstorm/internal/plugin/lua"
	"github.com/dshills/vecstorm/internal/renderer"
	"github.com/dshills/vecstorm/internal/renderer/backend"
)

// Application is the central coordinator for all vecstorm components.
// Everything that touches the store or the manager runs on the goroutine
// executing Run; other goroutines hand work over with Post.
type Application struct {
	mu sync.RWMutex

	opts      Options
	cfg       config.Config
	logger    *Logger
	sessionID string

	// Drawing engine
	layers   *layer.Registry
	ids      *idpool.Pool
	store    *store.Store
	history  *history.Engine
	registry *dispatcher.Registry
	manager  *dispatcher.Manager

	// Metrics
	promRegistry *prometheus.Registry
	metrics      *Metrics

	// Persistence; nil when storage is disabled
	db       *sql.DB
	drawings *persist.Repository

	// Display
	backend  backend.Backend
	renderer *renderer.Renderer

	// Macros
	macros       *lua.VecModule
	scriptOutput io.Writer

	subs *subscriptionManager

	// Interactive state, owned by the loop
	line    []rune
	message string
	buttons backend.MouseButton

	posted      chan func() error
	frames      *event.Latest[struct{}]
	lastDropped uint64

	running   atomic.Bool
	quitting  atomic.Bool
	done      chan struct{}
	closeDone sync.Once
	cleanups  []func()
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses the
	// defaults and the environment only.
	ConfigPath string

	// ConfigOptions are passed to every config load.
	ConfigOptions []config.LoadOption

	// LogLevel overrides log.level from the configuration.
	LogLevel string

	// LogOutput receives log output. Defaults to os.Stderr.
	LogOutput io.Writer

	// DBPath overrides storage.path from the configuration.
	DBPath string

	// NoStorage disables drawing persistence.
	NoStorage bool

	// Script is a Lua macro run once the loop starts.
	Script string

	// ScriptOutput receives print output of headless scripts.
	// Defaults to os.Stdout.
	ScriptOutput io.Writer

	// Headless replaces the terminal with a null display. A headless
	// session with a Script exits when the script finishes.
	Headless bool

	// Backend overrides the display chosen by the configuration.
	Backend backend.Backend

	// Registry receives the application metrics. A fresh registry is
	// created when nil.
	Registry *prometheus.Registry
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:   opts,
		done:   make(chan struct{}),
		posted: make(chan func() error, 64),
		frames: event.NewLatest[struct{}](),
	}

	if err := newBootstrapper(app, opts).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Run starts the application main loop.
// Blocks until ctx is done, Shutdown is called or the user quits.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Shutdown()

	w, h := app.backend.Size()
	app.renderer.Resize(w, h)
	app.renderer.Fit()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if app.opts.ConfigPath != "" {
		if err := app.WatchConfig(ctx); err != nil {
			app.logger.Warn("app: config watch: %v", err)
		}
	}

	if app.opts.Script != "" {
		path := app.opts.Script
		app.Post(func() error {
			if err := app.RunScript(ctx, path); err != nil {
				return err
			}
			if app.opts.Headless {
				return ErrQuit
			}
			return nil
		})
	}

	app.logger.Info("app: session %s started", app.sessionID)
	app.requestFrame()
	err := app.eventLoop(ctx)

	app.quitting.Store(true)
	app.backend.PostEvent(backend.Event{Type: backend.EventNone})
	app.Shutdown()
	app.logger.Info("app: session %s ended", app.sessionID)
	return err
}

// eventLoop is the main application loop.
func (app *Application) eventLoop(ctx context.Context) error {
	events := app.startInputPolling()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-app.done:
			return nil

		case fn := <-app.posted:
			if err := app.safely(fn); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				if app.opts.Headless {
					return err
				}
				app.logger.Error("app: %v", err)
				app.message = err.Error()
			}
			app.requestFrame()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			err := app.safely(func() error { return app.handleBackendEvent(ev) })
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil {
				app.logger.Error("app: %v", err)
			}
			app.requestFrame()

		case <-app.frames.Ready():
			app.drawFrame()
		}
	}
}

// safely runs fn, turning a panic into an error so one bad handler does
// not take the session down.
func (app *Application) safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RecoveredPanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return fn()
}

// Post queues fn to run on the event loop. It may be called from any
// goroutine; after shutdown fn is dropped.
func (app *Application) Post(fn func() error) {
	select {
	case app.posted <- fn:
	case <-app.done:
	}
}

func (app *Application) requestFrame() {
	app.frames.Put(struct{}{})
}

// drawFrame brings the renderer in line with the manager and draws.
func (app *Application) drawFrame() {
	if _, ok := app.frames.Take(); !ok {
		return
	}
	if dropped := app.frames.Dropped(); dropped > app.lastDropped {
		app.metrics.RecordDroppedFrames(dropped - app.lastDropped)
		app.lastDropped = dropped
	}

	app.renderer.SetPreview(app.manager.Preview())
	app.renderer.SetStatus(app.statusText())

	timer := StartTimer()
	drawn := app.renderer.Render()
	app.metrics.RecordFrame(timer.Elapsed(), drawn)
	if drawn {
		app.metrics.UpdateDrawing(app.store.Len(), app.store.IndexStats())
	}
}

// Shutdown stops the event loop. It is safe to call more than once and
// from any goroutine.
func (app *Application) Shutdown() {
	app.closeDone.Do(func() { close(app.done) })
}

// Close releases every component in reverse initialization order.
// Call it after Run has returned.
func (app *Application) Close() {
	app.Shutdown()
	app.mu.Lock()
	cleanups := app.cleanups
	app.cleanups = nil
	app.mu.Unlock()
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// IsRunning reports whether Run is executing.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the configuration in effect.
func (app *Application) Config() config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger { return app.logger }

// SessionID identifies this run in the logs.
func (app *Application) SessionID() string { return app.sessionID }

// Store returns the entity store.
func (app *Application) Store() *store.Store { return app.store }

// Manager returns the command manager.
func (app *Application) Manager() *dispatcher.Manager { return app.manager }

// Renderer returns the renderer.
func (app *Application) Renderer() *renderer.Renderer { return app.renderer }

// Drawings returns the drawing repository, or nil when storage is disabled.
func (app *Application) Drawings() *persist.Repository { return app.drawings }

// Gatherer exposes the application metrics.
func (app *Application) Gatherer() prometheus.Gatherer { return app.promRegistry }
