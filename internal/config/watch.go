package config

import (
	"context"
	"time"

	"github.com/dshills/vecstorm/internal/config/watcher"
)

// Watch reloads the config at path whenever it changes until ctx is done.
// onReload receives either a validated Config or the error that stopped
// it from loading; a broken file never replaces a good one silently.
func Watch(ctx context.Context, path string, onReload func(Config, error), opts ...LoadOption) error {
	w, err := watcher.New(watcher.WithDebounce(150 * time.Millisecond))
	if err != nil {
		return err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return err
	}
	w.OnChange(func(watcher.Event) {
		onReload(Load(path, opts...))
	})
	w.Start()

	go func() {
		<-ctx.Done()
		_ = w.Stop()
	}()
	return nil
}
