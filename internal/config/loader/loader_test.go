package loader

import (
	"errors"
	"testing"
	"testing/fstest"
)

func newMemFS(files map[string]string) fstest.MapFS {
	m := fstest.MapFS{}
	for name, body := range files {
		m[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return m
}

func TestTOMLLoader(t *testing.T) {
	fsys := newMemFS(map[string]string{
		"vecstorm.toml": "[index]\nmaxEntries = 16\n\n[log]\nlevel = \"debug\"\n",
	})
	got, err := NewTOMLLoaderWithFS(fsys, "vecstorm.toml").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	index, ok := got["index"].(map[string]any)
	if !ok || index["maxEntries"] != int64(16) {
		t.Errorf("index = %#v", got["index"])
	}
}

func TestMissingFileIsEmpty(t *testing.T) {
	fsys := newMemFS(nil)
	for _, path := range []string{"none.toml", "none.yaml"} {
		fl, err := ForPath(fsys, path)
		if err != nil {
			t.Fatalf("ForPath(%s) error = %v", path, err)
		}
		got, err := fl.Load()
		if err != nil || got != nil {
			t.Errorf("%s: Load() = %v, %v; want nil, nil", path, got, err)
		}
	}
}

func TestTOMLParseErrorPosition(t *testing.T) {
	fsys := newMemFS(map[string]string{"bad.toml": "[index]\nmaxEntries = = 3\n"})
	_, err := NewTOMLLoaderWithFS(fsys, "bad.toml").Load()

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if pe.Path != "bad.toml" || pe.Line != 2 {
		t.Errorf("ParseError = %+v, want bad.toml line 2", pe)
	}
}

func TestTOMLIncludes(t *testing.T) {
	fsys := newMemFS(map[string]string{
		"conf/main.toml": "\"@include\" = [\"base.toml\"]\n[log]\nlevel = \"warn\"\n",
		"conf/base.toml": "[log]\nlevel = \"debug\"\nformat = \"json\"\n",
		"conf/loop.toml": "\"@include\" = \"loop.toml\"\n",
	})

	got, err := NewTOMLLoaderWithFS(fsys, "conf/main.toml").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	log := got["log"].(map[string]any)
	if log["level"] != "warn" || log["format"] != "json" {
		t.Errorf("log = %v, want level from main and format from base", log)
	}
	if _, ok := got["@include"]; ok {
		t.Error("@include key leaked into result")
	}

	if _, err := NewTOMLLoaderWithFS(fsys, "conf/loop.toml").Load(); err == nil {
		t.Error("self include did not fail")
	}
}

func TestYAMLLoader(t *testing.T) {
	fsys := newMemFS(map[string]string{
		"vecstorm.yml": "store:\n  selectionThreshold: 4\ngeometry:\n  padding: 0.5\n",
		"empty.yaml":   "",
		"bad.yaml":     "store: [1, 2\n",
	})

	got, err := NewYAMLLoaderWithFS(fsys, "vecstorm.yml").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s := got["store"].(map[string]any); s["selectionThreshold"] != 4 {
		t.Errorf("store = %v", s)
	}
	if g := got["geometry"].(map[string]any); g["padding"] != 0.5 {
		t.Errorf("geometry = %v", g)
	}

	empty, err := NewYAMLLoaderWithFS(fsys, "empty.yaml").Load()
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("empty file: %v, %v", empty, err)
	}

	var pe *ParseError
	if _, err := NewYAMLLoaderWithFS(fsys, "bad.yaml").Load(); !errors.As(err, &pe) {
		t.Errorf("bad yaml error = %v, want *ParseError", err)
	}
}

func TestForPathUnsupported(t *testing.T) {
	_, err := ForPath(nil, "vecstorm.ini")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ForPath(.ini) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"log":   map[string]any{"level": "info", "format": "text"},
		"index": map[string]any{"maxEntries": 9},
	}
	src := map[string]any{
		"log":     map[string]any{"level": "debug"},
		"index":   "replaced",
		"storage": map[string]any{"path": "x.db"},
	}
	got := DeepMerge(dst, src)

	log := got["log"].(map[string]any)
	if log["level"] != "debug" || log["format"] != "text" {
		t.Errorf("log = %v", log)
	}
	if got["index"] != "replaced" {
		t.Errorf("index = %v", got["index"])
	}
	if _, ok := got["storage"]; !ok {
		t.Error("storage not added")
	}
	if DeepMerge(nil, nil) == nil {
		t.Error("DeepMerge(nil, nil) = nil")
	}
}

func TestEnvLoader(t *testing.T) {
	type target struct {
		Index struct {
			MaxEntries int `split_words:"true"`
		}
		Log struct {
			Level string
		}
	}
	t.Setenv("VTEST_INDEX_MAX_ENTRIES", "12")

	var got target
	got.Log.Level = "info"
	if err := NewEnvLoader("VTEST").Apply(&got); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got.Index.MaxEntries != 12 {
		t.Errorf("MaxEntries = %d, want 12", got.Index.MaxEntries)
	}
	if got.Log.Level != "info" {
		t.Errorf("unset variable changed Level to %q", got.Log.Level)
	}

	t.Setenv("VTEST_INDEX_MAX_ENTRIES", "many")
	if err := NewEnvLoader("VTEST").Apply(&got); err == nil {
		t.Error("Apply() accepted a non-numeric value")
	}
	if p := NewEnvLoader("").Prefix(); p != DefaultEnvPrefix {
		t.Errorf("default prefix = %q", p)
	}
}
