// Package logger provides verbose logging for the retrieval core.
// When verbose mode is enabled, pipeline diagnostics are printed to
// stderr to help operators understand the embedding and search flow.
//
// The Logger type satisfies the driven.Logger port, so services receive
// it by injection rather than writing to a global console.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger is a leveled printf-style sink.
type Logger struct {
	mu      sync.RWMutex
	verbose bool
	output  io.Writer
}

// New creates a logger writing to stderr with verbose mode disabled.
func New() *Logger {
	return &Logger{output: os.Stderr}
}

// SetVerbose enables or disables verbose logging.
func (l *Logger) SetVerbose(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func (l *Logger) IsVerbose() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// Debug prints a message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	l.print("[DEBUG] ", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	l.print("[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func (l *Logger) Warn(format string, args ...any) {
	l.print("[WARN] ", format, args...)
}

func (l *Logger) print(prefix, format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.verbose {
		fmt.Fprintf(l.output, prefix+format+"\n", args...)
	}
}
