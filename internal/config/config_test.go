package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/vecstorm/internal/config/loader"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Index.MaxEntries != 9 || cfg.Store.SelectionThreshold != 10 {
		t.Errorf("index/store defaults = %+v %+v", cfg.Index, cfg.Store)
	}
	if cfg.Geometry.Padding != 0 || cfg.Geometry.HoverTolerance != 2 {
		t.Errorf("geometry defaults = %+v", cfg.Geometry)
	}
	if cfg.Log.Level != "info" || cfg.Storage.Path != "vecstorm.db" {
		t.Errorf("log/storage defaults = %+v %+v", cfg.Log, cfg.Storage)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"small node", func(c *Config) { c.Index.MaxEntries = 3 }, "index.maxEntries"},
		{"negative threshold", func(c *Config) { c.Store.SelectionThreshold = -1 }, "store.selectionThreshold"},
		{"negative padding", func(c *Config) { c.Geometry.Padding = -0.5 }, "geometry.padding"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"backend", func(c *Config) { c.Render.Backend = "opengl" }, "render.backend"},
		{"scale", func(c *Config) { c.Render.Scale = 0 }, "render.scale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidValue) {
				t.Fatalf("Validate() = %v, want ErrInvalidValue", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Path != tt.path {
				t.Errorf("ValidationError = %+v, want path %s", ve, tt.path)
			}
		})
	}

	cfg := Default()
	cfg.Store.SelectionThreshold = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero threshold rejected: %v", err)
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadLayers(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"toml", "vecstorm.toml", "[index]\nmaxEntries = 16\n[geometry]\npadding = 1\n[log]\nlevel = \"debug\"\n"},
		{"yaml", "vecstorm.yaml", "index:\n  maxEntries: 16\ngeometry:\n  padding: 1\nlog:\n  level: debug\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.body)
			t.Setenv("VECSTORM_LOG_LEVEL", "warn")

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Index.MaxEntries != 16 || cfg.Geometry.Padding != 1 {
				t.Errorf("file values not applied: %+v %+v", cfg.Index, cfg.Geometry)
			}
			if cfg.Log.Level != "warn" {
				t.Errorf("Log.Level = %q, environment should win", cfg.Log.Level)
			}
			if cfg.Store.SelectionThreshold != 10 {
				t.Errorf("unset value lost its default: %d", cfg.Store.SelectionThreshold)
			}
		})
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("", WithoutEnv())
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}

	cfg, err = Load(filepath.Join(t.TempDir(), "absent.toml"), WithoutEnv())
	if err != nil || cfg != Default() {
		t.Errorf("missing file: %+v, %v", cfg, err)
	}
}

func TestLoadErrors(t *testing.T) {
	var pe *loader.ParseError

	if _, err := Load(writeFile(t, "v.toml", "[index]\nmaxEntrys = 4\n"), WithoutEnv()); !errors.As(err, &pe) {
		t.Errorf("unknown key: error = %v, want *ParseError", err)
	}
	if _, err := Load(writeFile(t, "v.toml", "[index]\nmaxEntries = 2\n"), WithoutEnv()); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("invalid value: error = %v, want ErrInvalidValue", err)
	}
	if _, err := Load("vecstorm.json", WithoutEnv()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("json: error = %v, want ErrUnsupportedFormat", err)
	}

	t.Setenv("VTEST_INDEX_MAX_ENTRIES", "x")
	if _, err := Load("", WithEnvPrefix("VTEST")); err == nil {
		t.Error("bad environment value accepted")
	}
}

func TestReloadable(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "debug"
	cfg.Store.SelectionThreshold = 3
	if got := cfg.Reloadable(); got != (Reloadable{LogLevel: "debug", SelectionThreshold: 3}) {
		t.Errorf("Reloadable() = %+v", got)
	}
}

func TestWatch(t *testing.T) {
	path := writeFile(t, "vecstorm.toml", "[store]\nselectionThreshold = 4\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		cfg Config
		err error
	}
	got := make(chan result, 8)
	if err := Watch(ctx, path, func(c Config, err error) { got <- result{c, err} }, WithoutEnv()); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("[store]\nselectionThreshold = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-got:
		if r.err != nil || r.cfg.Store.SelectionThreshold != 7 {
			t.Errorf("reload = %+v, %v", r.cfg.Store, r.err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload within 3s")
	}

	if err := os.WriteFile(path, []byte("[store\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-got:
		if r.err == nil {
			t.Error("broken file reloaded without error")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload within 3s")
	}
}
