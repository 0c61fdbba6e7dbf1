// Package config loads vecstorm settings.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. VECSTORM_* environment variables
//
// A file looks like:
//
//	[index]
//	maxEntries = 16
//
//	[log]
//	level = "debug"
//
// Load returns a validated Config. Watch reloads the file when it changes
// and hands every successfully loaded Config to a callback; only some
// fields (see Reloadable) are meant to be applied to a running editor.
package config
