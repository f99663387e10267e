// Package logging provides the leveled, field-carrying logger shared by the
// history manager, the command session and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the severity level of a log message.
type Level int

const (
	// LevelDebug is for detailed tracing such as history transitions.
	LevelDebug Level = iota
	// LevelInfo is for general informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level.
// The second return value is false for unrecognized input, in which case
// LevelInfo is returned.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// Config configures a Logger.
type Config struct {
	// Level is the minimum level written.
	Level Level
	// Output defaults to os.Stderr.
	Output io.Writer
	// Prefix is prepended to every line.
	Prefix string
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
		Prefix: "undotree",
	}
}

// Logger writes leveled lines with optional key/value fields.
// Loggers derived with WithField share the parent's output and lock.
type Logger struct {
	mu       *sync.Mutex
	level    Level
	output   io.Writer
	prefix   string
	fields   map[string]any
	disabled bool
	now      func() time.Time
}

// New creates a logger from cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return &Logger{
		mu:     &sync.Mutex{},
		level:  cfg.Level,
		output: cfg.Output,
		prefix: cfg.Prefix,
		fields: make(map[string]any),
		now:    time.Now,
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{mu: &sync.Mutex{}, output: io.Discard, disabled: true, now: time.Now}
}

// WithField returns a derived logger carrying key=value in addition to the
// receiver's fields.
func (l *Logger) WithField(key string, value any) *Logger {
	merged := make(map[string]any, len(l.fields)+1)
	for k, v := range l.fields {
		merged[k] = v
	}
	merged[key] = value

	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		mu:       l.mu,
		level:    l.level,
		output:   l.output,
		prefix:   l.prefix,
		fields:   merged,
		disabled: l.disabled,
		now:      l.now,
	}
}

// WithComponent returns a derived logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// Level returns the minimum level.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.disabled && level >= l.level
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(LevelError, msg, args...)
}

func (l *Logger) log(level Level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.disabled || level < l.level {
		return
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var b strings.Builder
	b.WriteString(l.now().Format("2006-01-02T15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteString(": ")
	}
	b.WriteString(msg)

	// Sorted so lines are stable across runs.
	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, l.fields[k])
		}
		b.WriteString("}")
	}
	b.WriteByte('\n')

	_, _ = io.WriteString(l.output, b.String())
}
