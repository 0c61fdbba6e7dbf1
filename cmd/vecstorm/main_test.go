package main

import (
	"testing"

	"github.com/dshills/vecstorm/internal/app"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		check    func(t *testing.T, opts app.Options)
	}{
		{"defaults", nil, -1, func(t *testing.T, o app.Options) {
			if o.ConfigPath != "" || o.Headless || o.LogLevel != "" {
				t.Errorf("opts = %+v", o)
			}
		}},
		{"all", []string{"-c", "v.toml", "-log-level", "debug", "-db", "x.db", "-script", "m.lua", "-headless"}, -1, func(t *testing.T, o app.Options) {
			if o.ConfigPath != "v.toml" || o.LogLevel != "debug" || o.DBPath != "x.db" || o.Script != "m.lua" || !o.Headless {
				t.Errorf("opts = %+v", o)
			}
		}},
		{"no db", []string{"-no-db"}, -1, func(t *testing.T, o app.Options) {
			if !o.NoStorage {
				t.Error("NoStorage not set")
			}
		}},
		{"bad level", []string{"-log-level", "loud"}, 1, nil},
		{"headless without script", []string{"-headless"}, 1, nil},
		{"stray args", []string{"a.dwg"}, 2, nil},
		{"unknown flag", []string{"-nope"}, 2, nil},
		{"help", []string{"-h"}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, _, code := parseFlags(tt.args)
			if code != tt.wantCode {
				t.Fatalf("code = %d, want %d", code, tt.wantCode)
			}
			if tt.check != nil {
				tt.check(t, opts)
			}
		})
	}
}
