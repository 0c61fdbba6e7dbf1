package app

import (
	"context"

	"github.com/dshills/vecstorm/internal/config"
)

// WatchConfig reloads the configuration file whenever it changes until
// ctx is done. Reloads are applied on the event loop.
func (app *Application) WatchConfig(ctx context.Context) error {
	path := app.opts.ConfigPath
	return config.Watch(ctx, path, func(cfg config.Config, err error) {
		app.Post(func() error {
			app.applyReload(cfg, err)
			return nil
		})
	}, app.opts.ConfigOptions...)
}

// applyReload takes a reloaded configuration. A file that fails to load
// or validate leaves the running settings alone.
func (app *Application) applyReload(cfg config.Config, err error) {
	if err != nil {
		app.logger.Warn("app: config reload: %v", &OperationError{Op: "reload", Target: app.opts.ConfigPath, Err: err})
		return
	}
	if app.opts.LogLevel != "" {
		cfg.Log.Level = app.opts.LogLevel
	}

	app.mu.Lock()
	prev := app.cfg
	app.cfg.Log.Level = cfg.Log.Level
	app.cfg.Store.SelectionThreshold = cfg.Store.SelectionThreshold
	app.mu.Unlock()

	app.Apply(cfg.Reloadable())
	if prev.Reloadable() != cfg.Reloadable() {
		app.logger.Info("app: config reloaded: level %s, selection threshold %d",
			cfg.Log.Level, cfg.Store.SelectionThreshold)
	}
}

// Apply puts the hot-reloadable settings into effect. Settings that shape
// the index or the display take effect on the next start.
func (app *Application) Apply(r config.Reloadable) {
	app.logger.SetLevel(ParseLogLevel(r.LogLevel))
	app.store.SetSelectionThreshold(r.SelectionThreshold)
}
