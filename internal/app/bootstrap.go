package app

import (
	"context"
	"errors"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/vecstorm/internal/config"
	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/dispatcher/handlers"
	"github.com/dshills/vecstorm/internal/dispatcher/handlers/system"
	"github.com/dshills/vecstorm/internal/engine/entity"
	"github.com/dshills/vecstorm/internal/engine/history"
	"github.com/dshills/vecstorm/internal/engine/idpool"
	"github.com/dshills/vecstorm/internal/engine/layer"
	"github.com/dshills/vecstorm/internal/engine/store"
	"github.com/dshills/vecstorm/internal/persist"
	"github.com/dshills/vecstorm/internal/plugin/lua"
	"github.com/dshills/vecstorm/internal/renderer"
	"github.com/dshills/vecstorm/internal/renderer/backend"
)

// Headless display size. Scripts see the same viewport every run.
const (
	headlessWidth  = 120
	headlessHeight = 40
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 8),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"config", b.initConfig},
		{"engine", b.initEngine},
		{"storage", b.initStorage},
		{"dispatcher", b.initDispatcher},
		{"display", b.initDisplay},
		{"macros", b.initMacros},
		{"subscriptions", b.initSubscriptions},
	}
	for _, s := range steps {
		if err := s.init(); err != nil {
			b.cleanup()
			var ie *InitError
			if errors.As(err, &ie) {
				return err
			}
			return &InitError{Component: s.name, Err: err}
		}
		b.initOrder = append(b.initOrder, s.name)
	}

	b.app.cleanups = make([]func(), 0, len(b.initOrder))
	for _, name := range b.initOrder {
		b.app.cleanups = append(b.app.cleanups, func() { b.cleanupComponent(name) })
	}
	b.app.logger.Debug("app: initialized %v", b.initOrder)
	return nil
}

// initConfig loads the configuration and builds the logger from it.
func (b *bootstrapper) initConfig() error {
	cfg, err := config.Load(b.opts.ConfigPath, b.opts.ConfigOptions...)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if b.opts.LogLevel != "" {
		cfg.Log.Level = b.opts.LogLevel
	}
	if b.opts.DBPath != "" {
		cfg.Storage.Path = b.opts.DBPath
	}
	if b.opts.NoStorage {
		cfg.Storage.Path = ""
	}
	b.app.cfg = cfg

	b.app.sessionID = uuid.NewString()
	b.app.logger = NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.Log.Level),
		Output: b.opts.LogOutput,
		Format: cfg.Log.Format,
		Prefix: "vecstorm",
	}).WithField("session", b.app.sessionID)
	return nil
}

// initEngine creates the layer table, the store and its history.
func (b *bootstrapper) initEngine() error {
	cfg := b.app.cfg
	b.app.layers = layer.NewRegistry(func() string { return idpool.New(idpool.PrefixLayer) })
	b.app.ids = idpool.NewPool(idpool.PrefixEntity)
	b.app.store = store.New(
		store.Config{
			MaxEntries:         cfg.Index.MaxEntries,
			SelectionThreshold: cfg.Store.SelectionThreshold,
		},
		entity.Geometry{Padding: cfg.Geometry.Padding},
		b.app.layers,
		store.WithLogger(b.app.logger.WithComponent("store")),
	)
	b.app.history = history.New(b.app.store, history.WithLogger(b.app.logger.WithComponent("history")))
	return nil
}

// initStorage opens the drawing database when a path is configured.
func (b *bootstrapper) initStorage() error {
	path := b.app.cfg.Storage.Path
	if path == "" {
		b.app.logger.Info("app: drawing storage disabled")
		return nil
	}
	db, err := persist.Open(path, persist.WithMkdirAll())
	if err != nil {
		return &InitError{Component: "storage", Err: err}
	}
	repo, err := persist.NewRepository(context.Background(), db)
	if err != nil {
		db.Close()
		return &InitError{Component: "storage", Err: err}
	}
	b.app.db = db
	b.app.drawings = repo
	b.app.logger.Info("app: drawings stored in %s", path)
	return nil
}

// initDispatcher registers the commands and creates the manager.
func (b *bootstrapper) initDispatcher() error {
	cfg := b.app.cfg
	b.app.registry = dispatcher.NewRegistry(cfg.Commands.CacheSize)

	sys := system.Options{IOTimeout: system.DefaultIOTimeout}
	if b.app.drawings != nil {
		sys.Drawings = b.app.drawings
		sys.NotFound = func(err error) bool { return errors.Is(err, persist.ErrNotFound) }
	}
	handlers.Register(b.app.registry, sys)

	b.app.promRegistry = b.opts.Registry
	if b.app.promRegistry == nil {
		b.app.promRegistry = prometheus.NewRegistry()
	}
	b.app.metrics = NewMetrics(b.app.promRegistry)

	b.app.manager = dispatcher.NewManager(
		b.app.store, b.app.history, b.app.ids, b.app.registry,
		dispatcher.WithLogger(b.app.logger.WithComponent("dispatcher")),
		dispatcher.WithMetrics(dispatcher.NewMetrics(b.app.promRegistry)),
		dispatcher.WithConfig(dispatcher.Config{
			HoverTolerance: cfg.Geometry.HoverTolerance,
			RepeatEnabled:  cfg.Commands.RepeatEnabled,
		}),
	)
	return nil
}

// initDisplay picks the backend and creates the renderer.
func (b *bootstrapper) initDisplay() error {
	out := b.opts.Backend
	if out == nil {
		kind := b.app.cfg.Render.Backend
		if b.opts.Headless {
			kind = config.BackendNull
		}
		switch kind {
		case config.BackendNull:
			out = backend.NewNullBackend(headlessWidth, headlessHeight)
		case config.BackendMemory:
			out = backend.NewMemoryBackend(headlessWidth, headlessHeight)
		default:
			t, err := backend.NewTerminal()
			if err != nil {
				return &InitError{Component: "display", Err: err}
			}
			out = t
		}
	}
	b.app.backend = out

	opts := renderer.DefaultOptions()
	opts.Scale = b.app.cfg.Render.Scale
	b.app.renderer = renderer.New(out, b.app.store, opts)
	b.app.renderer.SetLogger(b.app.logger.WithComponent("renderer"))
	return nil
}

// initMacros prepares the vec module scripts are given.
func (b *bootstrapper) initMacros() error {
	b.app.macros = lua.NewVecModule(b.app.manager, b.app.store)
	b.app.scriptOutput = b.opts.ScriptOutput
	if b.app.scriptOutput == nil {
		if b.opts.Headless {
			b.app.scriptOutput = os.Stdout
		} else {
			b.app.scriptOutput = statusWriter{app: b.app}
		}
	}
	return nil
}

// initSubscriptions connects the components' event buses.
func (b *bootstrapper) initSubscriptions() error {
	b.app.subs = newSubscriptionManager(b.app)
	return b.app.subs.setupSubscriptions()
}

// cleanup performs cleanup in reverse initialization order.
// Called when bootstrap fails partway through.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
}

// cleanupComponent cleans up a single component.
func (b *bootstrapper) cleanupComponent(component string) {
	switch component {
	case "subscriptions":
		if b.app.subs != nil {
			b.app.subs.cancelAll()
		}
	case "display":
		if b.app.renderer != nil {
			b.app.renderer.Close()
		}
	case "storage":
		if b.app.db != nil {
			if err := b.app.db.Close(); err != nil {
				b.app.logger.Warn("app: close storage: %v", err)
			}
			b.app.db = nil
			b.app.drawings = nil
		}
	}
}
