package config

import (
	"errors"
	"slices"
	"strings"
)

// Config is the full set of vecstorm settings.
type Config struct {
	Index    IndexConfig    `toml:"index" yaml:"index"`
	Store    StoreConfig    `toml:"store" yaml:"store"`
	Geometry GeometryConfig `toml:"geometry" yaml:"geometry"`
	Commands CommandsConfig `toml:"commands" yaml:"commands"`
	Log      LogConfig      `toml:"log" yaml:"log"`
	Storage  StorageConfig  `toml:"storage" yaml:"storage"`
	Render   RenderConfig   `toml:"render" yaml:"render"`
}

// IndexConfig tunes the spatial index.
type IndexConfig struct {
	// MaxEntries is the node capacity of the R-tree.
	MaxEntries int `toml:"maxEntries" yaml:"maxEntries" split_words:"true"`
}

// StoreConfig tunes the entity store.
type StoreConfig struct {
	// SelectionThreshold is the batch size above which the selection view
	// is rebuilt instead of patched.
	SelectionThreshold int `toml:"selectionThreshold" yaml:"selectionThreshold" split_words:"true"`
}

// GeometryConfig tunes the geometry kernel and hit testing.
type GeometryConfig struct {
	Padding        float64 `toml:"padding" yaml:"padding"`
	HoverTolerance float64 `toml:"hoverTolerance" yaml:"hoverTolerance" split_words:"true"`
}

// CommandsConfig tunes the command dispatcher.
type CommandsConfig struct {
	// RepeatEnabled lets an empty command line repeat the last command.
	RepeatEnabled bool `toml:"repeatEnabled" yaml:"repeatEnabled" split_words:"true"`
	// CacheSize is the number of command instances kept for reuse.
	CacheSize int `toml:"cacheSize" yaml:"cacheSize" split_words:"true"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// StorageConfig configures drawing persistence.
type StorageConfig struct {
	// Path is the SQLite database file. Empty disables persistence.
	Path string `toml:"path" yaml:"path"`
}

// RenderConfig configures the renderer.
type RenderConfig struct {
	// Backend is "terminal", "memory" or "null".
	Backend string `toml:"backend" yaml:"backend"`
	// Scale is drawing units per terminal cell.
	Scale float64 `toml:"scale" yaml:"scale"`
}

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Render backends.
const (
	BackendTerminal = "terminal"
	BackendMemory   = "memory"
	BackendNull     = "null"
)

// MinMaxEntries is the smallest usable index node capacity.
const MinMaxEntries = 4

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Index:    IndexConfig{MaxEntries: 9},
		Store:    StoreConfig{SelectionThreshold: 10},
		Geometry: GeometryConfig{Padding: 0, HoverTolerance: 2},
		Commands: CommandsConfig{RepeatEnabled: true, CacheSize: 10},
		Log:      LogConfig{Level: "info", Format: FormatText},
		Storage:  StorageConfig{Path: "vecstorm.db"},
		Render:   RenderConfig{Backend: BackendTerminal, Scale: 1},
	}
}

// Validate checks every setting and joins all failures.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, path string, value any, msg string) {
		if !ok {
			errs = append(errs, &ValidationError{Path: path, Value: value, Message: msg})
		}
	}

	check(c.Index.MaxEntries >= MinMaxEntries, "index.maxEntries", c.Index.MaxEntries, "must be at least 4")
	check(c.Store.SelectionThreshold >= 0, "store.selectionThreshold", c.Store.SelectionThreshold, "must not be negative")
	check(c.Geometry.Padding >= 0, "geometry.padding", c.Geometry.Padding, "must not be negative")
	check(c.Geometry.HoverTolerance >= 0, "geometry.hoverTolerance", c.Geometry.HoverTolerance, "must not be negative")
	check(c.Commands.CacheSize >= 0, "commands.cacheSize", c.Commands.CacheSize, "must not be negative")
	check(slices.Contains(logLevels, strings.ToLower(c.Log.Level)), "log.level", c.Log.Level, "unknown level")
	check(c.Log.Format == "" || c.Log.Format == FormatText || c.Log.Format == FormatJSON, "log.format", c.Log.Format, "must be text or json")
	switch c.Render.Backend {
	case "", BackendTerminal, BackendMemory, BackendNull:
	default:
		check(false, "render.backend", c.Render.Backend, "unknown backend")
	}
	check(c.Render.Scale > 0, "render.scale", c.Render.Scale, "must be positive")

	return errors.Join(errs...)
}

// Reloadable is the part of a Config a running editor applies on reload.
type Reloadable struct {
	LogLevel           string
	SelectionThreshold int
}

// Reloadable extracts the hot-reloadable settings.
func (c Config) Reloadable() Reloadable {
	return Reloadable{
		LogLevel:           c.Log.Level,
		SelectionThreshold: c.Store.SelectionThreshold,
	}
}
