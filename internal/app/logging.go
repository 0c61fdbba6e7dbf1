package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LogLevelDebug is for detailed debugging information.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for warning messages.
	LogLevelWarn
	// LogLevelError is for error messages.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) slog() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLogLevel parses a string into a LogLevel. Unknown names are info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger is the application logger. Messages are printf-style, which is
// what the engine and dispatcher packages expect; fields travel as slog
// attributes. Loggers derived with WithField share their parent's level.
type Logger struct {
	h        slog.Handler
	level    *slog.LevelVar
	disabled *atomic.Bool
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	// Level is the minimum log level to output.
	Level LogLevel
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Format is "text" or "json". Defaults to text.
	Format string
	// Prefix is recorded as the "app" attribute of every message.
	Prefix string
}

// DefaultLoggerConfig returns the default logger configuration.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  LogLevelInfo,
		Output: os.Stderr,
		Format: "text",
		Prefix: "vecstorm",
	}
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(cfg LoggerConfig) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	level := new(slog.LevelVar)
	level.Set(cfg.Level.slog())

	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(cfg.Output, hopts)
	} else {
		h = slog.NewTextHandler(cfg.Output, hopts)
	}
	if cfg.Prefix != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("app", cfg.Prefix)})
	}
	return &Logger{h: h, level: level, disabled: new(atomic.Bool)}
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.with([]slog.Attr{slog.Any(key, value)})
}

// WithFields returns a new logger with the given fields added.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return l.with(attrs)
}

// WithComponent returns a new logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

func (l *Logger) with(attrs []slog.Attr) *Logger {
	return &Logger{h: l.h.WithAttrs(attrs), level: l.level, disabled: l.disabled}
}

// SetLevel changes the minimum level for this logger and all loggers
// derived from the same root.
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Set(level.slog())
}

// Level returns the current minimum level.
func (l *Logger) Level() LogLevel {
	switch l.level.Level() {
	case slog.LevelDebug:
		return LogLevelDebug
	case slog.LevelWarn:
		return LogLevelWarn
	case slog.LevelError:
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Disable silences the logger and its relatives.
func (l *Logger) Disable() { l.disabled.Store(true) }

// Enable undoes Disable.
func (l *Logger) Enable() { l.disabled.Store(false) }

// Slog exposes the logger as a *slog.Logger.
func (l *Logger) Slog() *slog.Logger { return slog.New(l.h) }

func (l *Logger) log(level LogLevel, format string, args []any) {
	if l.disabled.Load() {
		return
	}
	ctx := context.Background()
	if !l.h.Enabled(ctx, level.slog()) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	_ = l.h.Handle(ctx, slog.NewRecord(time.Now(), level.slog(), msg, 0))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) { l.log(LogLevelDebug, format, args) }

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) { l.log(LogLevelInfo, format, args) }

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) { l.log(LogLevelWarn, format, args) }

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) { l.log(LogLevelError, format, args) }

// NullLogger returns a logger that discards everything.
func NullLogger() *Logger {
	l := NewLogger(LoggerConfig{Output: io.Discard, Level: LogLevelError})
	l.Disable()
	return l
}
