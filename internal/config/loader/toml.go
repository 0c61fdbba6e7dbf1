package loader

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// MaxIncludeDepth bounds nested @include directives.
const MaxIncludeDepth = 8

// TOMLLoader loads configuration from TOML files.
type TOMLLoader struct {
	fs   FileSystem
	path string
}

// NewTOMLLoader creates a new TOML loader for the given path.
func NewTOMLLoader(path string) *TOMLLoader {
	return NewTOMLLoaderWithFS(DefaultFS(), path)
}

// NewTOMLLoaderWithFS creates a TOML loader with a custom file system.
func NewTOMLLoaderWithFS(fs FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{fs: fs, path: path}
}

// Load reads configuration from the configured path, following @include
// directives.
func (l *TOMLLoader) Load() (map[string]any, error) {
	return l.LoadWithIncludes(l.path, MaxIncludeDepth)
}

// LoadFrom reads a single file without processing includes.
func (l *TOMLLoader) LoadFrom(path string) (map[string]any, error) {
	data, ok, err := readOptional(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if !ok {
		return nil, nil
	}

	var config map[string]any
	if err := toml.Unmarshal(data, &config); err != nil {
		pe := &ParseError{Path: path, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		return nil, pe
	}
	return config, nil
}

// LoadWithIncludes loads a TOML file and merges the files named by its
// @include key underneath it. The main file wins over its includes.
func (l *TOMLLoader) LoadWithIncludes(path string, maxDepth int) (map[string]any, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("include depth exceeded for %s", path)
	}

	config, err := l.LoadFrom(path)
	if err != nil || config == nil {
		return config, err
	}

	includes, ok := config["@include"]
	if !ok {
		return config, nil
	}
	delete(config, "@include")

	var list []string
	switch v := includes.(type) {
	case string:
		list = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &ParseError{Path: path, Message: "@include must be string or array of strings"}
			}
			list = append(list, s)
		}
	default:
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("@include must be string or array of strings, got %T", includes)}
	}

	merged := map[string]any{}
	for _, inc := range list {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		sub, err := l.LoadWithIncludes(inc, maxDepth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", inc, err)
		}
		merged = DeepMerge(merged, sub)
	}
	return DeepMerge(merged, config), nil
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DeepMerge recursively merges src into dst.
// Values in src override values in dst.
// Maps are merged recursively; other types are replaced.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = srcVal
	}
	return dst
}
