// Package logger provides leveled diagnostic logging for vhostprov.
//
// Log lines go to stderr so they never mix with the operator-facing
// messages printed by the output package. The format is
//
//	[LEVEL] YYYY-MM-DD HH:MM:SS message key=value ...
//
// Only Warn and Error are shown by default; --verbose enables Debug.
// Fields are printed sorted by key.
//
// A Logger derived with With carries fields that are appended to every
// line it writes, which the provisioning pipeline uses to tag lines with
// the domain and step:
//
//	log := logger.With(logger.Fields{"domain": "example.com"})
//	log.Info("writing %s", path)
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents a logging severity level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
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

// ParseLevel converts a level name (case-insensitive) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelWarn, fmt.Errorf("unknown log level %q", s)
	}
}

// Fields are structured key/value pairs attached to a log line.
type Fields map[string]interface{}

// sink is the shared destination of a logger and all loggers derived from it.
type sink struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
}

// Logger writes leveled lines to a shared sink.
type Logger struct {
	sink   *sink
	fields Fields
}

var std = &Logger{sink: &sink{level: LevelWarn, output: os.Stderr}}

// Init sets the global verbosity. Verbose enables Debug and Info.
func Init(verbose bool) {
	if verbose {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// SetLevel sets the minimum log level for the global logger.
func SetLevel(level Level) {
	std.sink.mu.Lock()
	defer std.sink.mu.Unlock()
	std.sink.level = level
}

// GetLevel returns the current log level.
func GetLevel() Level {
	std.sink.mu.Lock()
	defer std.sink.mu.Unlock()
	return std.sink.level
}

// SetOutput redirects the global logger. A nil writer restores os.Stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	std.sink.mu.Lock()
	defer std.sink.mu.Unlock()
	std.sink.output = w
}

// With returns a logger that appends fields to every line.
func With(fields Fields) *Logger {
	return std.With(fields)
}

// With returns a child logger carrying the union of l's fields and fields.
func (l *Logger) With(fields Fields) *Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{sink: l.sink, fields: merged}
}

func (l *Logger) write(level Level, msg string, fields Fields) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if level < l.sink.level {
		return
	}

	all := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, all[k])
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(l.sink.output, "[%s] %s %s\n", level, timestamp, b.String())
}

// Debug logs a formatted debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, fmt.Sprintf(format, args...), nil)
}

// Info logs a formatted informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, fmt.Sprintf(format, args...), nil)
}

// Warn logs a formatted warning.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, fmt.Sprintf(format, args...), nil)
}

// Error logs a formatted error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, fmt.Sprintf(format, args...), nil)
}

// Fields logs msg at level with additional fields.
func (l *Logger) Fields(level Level, msg string, fields Fields) {
	l.write(level, msg, fields)
}

// Debug logs a debug message on the global logger.
func Debug(format string, args ...interface{}) { std.Debug(format, args...) }

// Info logs an informational message on the global logger.
func Info(format string, args ...interface{}) { std.Info(format, args...) }

// Warn logs a warning on the global logger.
func Warn(format string, args ...interface{}) { std.Warn(format, args...) }

// Error logs an error on the global logger.
func Error(format string, args ...interface{}) { std.Error(format, args...) }

// DebugFields logs a debug message with structured fields.
func DebugFields(msg string, fields Fields) { std.write(LevelDebug, msg, fields) }

// InfoFields logs an informational message with structured fields.
func InfoFields(msg string, fields Fields) { std.write(LevelInfo, msg, fields) }

// WarnFields logs a warning with structured fields.
func WarnFields(msg string, fields Fields) { std.write(LevelWarn, msg, fields) }
