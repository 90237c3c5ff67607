// Package logger provides verbose pipeline logging for reportgen.
// Messages are suppressed unless verbose mode is enabled via the
// --verbose flag, in which case they go to stderr. Long-running report
// generations can obtain a run-scoped logger with ForRun so that
// interleaved output from concurrent runs stays attributable.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// Logger emits verbose messages with an optional scope prefix.
// The zero value logs without a prefix.
type Logger struct {
	prefix string
}

var root = &Logger{}

// SetVerbose enables or disables verbose logging for all loggers.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// ForRun returns a logger whose messages carry the run identifier.
// Identifiers longer than eight characters are truncated to keep
// lines readable.
func ForRun(runID string) *Logger {
	if len(runID) > 8 {
		runID = runID[:8]
	}
	return &Logger{prefix: "run " + runID}
}

func (l *Logger) emit(level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	if l.prefix != "" {
		fmt.Fprintf(output, "["+level+"] ("+l.prefix+") "+format+"\n", args...)
		return
	}
	fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	l.emit("DEBUG", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	l.emit("INFO", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func (l *Logger) Warn(format string, args ...any) {
	l.emit("WARN", format, args...)
}

// Section prints a section header if verbose mode is enabled.
// The scope prefix, if any, is appended to the header.
func (l *Logger) Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	if l.prefix != "" {
		fmt.Fprintf(output, "\n=== %s (%s) ===\n", name, l.prefix)
		return
	}
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}

// Debug prints an unscoped message if verbose mode is enabled.
func Debug(format string, args ...any) { root.Debug(format, args...) }

// Info prints an unscoped informational message if verbose mode is enabled.
func Info(format string, args ...any) { root.Info(format, args...) }

// Warn prints an unscoped warning message if verbose mode is enabled.
func Warn(format string, args ...any) { root.Warn(format, args...) }

// Section prints an unscoped section header if verbose mode is enabled.
func Section(name string) { root.Section(name) }
