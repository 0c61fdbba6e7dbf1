package config

import (
	"errors"
	"fmt"

	"github.com/dshills/vecstorm/internal/config/loader"
)

// Errors returned by configuration operations.
var (
	// ErrInvalidValue indicates a setting outside its allowed range.
	ErrInvalidValue = errors.New("invalid config value")

	// ErrUnsupportedFormat indicates a config file with an unknown extension.
	ErrUnsupportedFormat = loader.ErrUnsupportedFormat
)

// ValidationError describes a setting that failed validation.
type ValidationError struct {
	// Path is the dotted setting path, e.g. "index.maxEntries".
	Path string
	// Value is the rejected value.
	Value any
	// Message describes the constraint.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s = %v: %s", e.Path, e.Value, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidValue.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidValue
}
