package loader

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// DefaultEnvPrefix prefixes every environment override.
const DefaultEnvPrefix = "VECSTORM"

// EnvLoader overlays environment variables onto a bound config struct.
// Fields are named by their envconfig tags below the prefix, so
// Index.MaxEntries tagged MAX_ENTRIES reads VECSTORM_INDEX_MAX_ENTRIES.
// Unset variables leave the field untouched.
type EnvLoader struct {
	prefix string
}

// NewEnvLoader creates an environment loader. An empty prefix selects
// DefaultEnvPrefix.
func NewEnvLoader(prefix string) *EnvLoader {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	return &EnvLoader{prefix: prefix}
}

// Prefix returns the variable prefix.
func (l *EnvLoader) Prefix() string {
	return l.prefix
}

// Apply overlays the environment onto target, which must be a pointer
// to a struct.
func (l *EnvLoader) Apply(target any) error {
	if err := envconfig.Process(l.prefix, target); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}
