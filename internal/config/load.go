package config

import (
	"bytes"
	"fmt"

	"github.com/dshills/vecstorm/internal/config/loader"
	"github.com/pelletier/go-toml/v2"
)

type loadOptions struct {
	fs        loader.FileSystem
	envPrefix string
	skipEnv   bool
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithFS reads config files through fs instead of the OS.
func WithFS(fs loader.FileSystem) LoadOption {
	return func(o *loadOptions) { o.fs = fs }
}

// WithEnvPrefix changes the environment variable prefix.
func WithEnvPrefix(prefix string) LoadOption {
	return func(o *loadOptions) { o.envPrefix = prefix }
}

// WithoutEnv skips environment overrides.
func WithoutEnv() LoadOption {
	return func(o *loadOptions) { o.skipEnv = true }
}

// Load builds a Config from the defaults, the file at path and the
// environment, then validates it. An empty path or a missing file leaves
// the defaults in place.
func Load(path string, opts ...LoadOption) (Config, error) {
	o := loadOptions{fs: loader.DefaultFS()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Default()
	if path != "" {
		fl, err := loader.ForPath(o.fs, path)
		if err != nil {
			return Config{}, err
		}
		values, err := fl.Load()
		if err != nil {
			return Config{}, err
		}
		if err := Decode(path, values, &cfg); err != nil {
			return Config{}, err
		}
	}

	if !o.skipEnv {
		if err := loader.NewEnvLoader(o.envPrefix).Apply(&cfg); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode binds a loaded settings map onto cfg. Keys absent from values
// keep their current value; unknown keys are an error.
func Decode(source string, values map[string]any, cfg *Config) error {
	if len(values) == 0 {
		return nil
	}
	data, err := toml.Marshal(values)
	if err != nil {
		return &loader.ParseError{Path: source, Message: err.Error(), Err: err}
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return &loader.ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return nil
}
