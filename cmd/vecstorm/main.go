// Package main is the entry point for the vecstorm drawing editor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/vecstorm/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, logFile, code := parseFlags(os.Args[1:])
	if code >= 0 {
		return code
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		opts.LogOutput = f
	} else if !opts.Headless {
		// the terminal owns stderr while the editor runs
		opts.LogOutput = io.Discard
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseFlags returns the options, the log file and an exit code, which is
// negative when the editor should start.
func parseFlags(args []string) (app.Options, string, int) {
	var (
		opts        app.Options
		logFile     string
		showVersion bool
	)

	fs := flag.NewFlagSet("vecstorm", flag.ContinueOnError)
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml or .yaml)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	fs.StringVar(&logFile, "log-file", "", "Append logs to this file")
	fs.StringVar(&opts.Script, "script", "", "Lua macro to run at startup")
	fs.StringVar(&opts.DBPath, "db", "", "Drawing database; overrides storage.path")
	fs.BoolVar(&opts.NoStorage, "no-db", false, "Disable drawing storage")
	fs.BoolVar(&opts.Headless, "headless", false, "Run without a terminal; exits after -script")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "vecstorm - terminal vector drawing editor\n\n")
		fmt.Fprintf(out, "Usage: vecstorm [options]\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  vecstorm                               Start the editor\n")
		fmt.Fprintf(out, "  vecstorm -db plans.db                  Use another drawing database\n")
		fmt.Fprintf(out, "  vecstorm -headless -script house.lua   Run a macro and exit\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, "", 0
		}
		return opts, "", 2
	}

	if showVersion {
		fmt.Printf("vecstorm %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return opts, "", 0
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		return opts, "", 1
	}

	if opts.Headless && opts.Script == "" {
		fmt.Fprintf(os.Stderr, "Error: -headless needs -script\n")
		return opts, "", 1
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments %v\n", fs.Args())
		return opts, "", 2
	}
	return opts, logFile, -1
}
