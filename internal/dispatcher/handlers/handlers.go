// Package handlers assembles the built-in commands.
package handlers

import (
	"github.com/dshills/vecstorm/internal/dispatcher"
	"github.com/dshills/vecstorm/internal/dispatcher/handlers/draw"
	"github.com/dshills/vecstorm/internal/dispatcher/handlers/modify"
	"github.com/dshills/vecstorm/internal/dispatcher/handlers/system"
)

// Builtin returns every built-in command.
func Builtin(opts system.Options) []dispatcher.Definition {
	var defs []dispatcher.Definition
	defs = append(defs, draw.Commands()...)
	defs = append(defs, modify.Commands()...)
	defs = append(defs, system.Commands(opts)...)
	return defs
}

// Register adds the built-in commands to reg.
func Register(reg *dispatcher.Registry, opts system.Options) {
	reg.Register(Builtin(opts)...)
}
