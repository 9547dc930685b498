// Package obslog provides a small, dependency-free logger for the
// diff core's anchoring decisions: which strategy resolved each hunk
// and why an anchor search failed.
package obslog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes timestamped, append-only log lines to a file. It is
// safe for concurrent use. A zero-value Logger with no backing file
// silently discards writes; New never fails the caller.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	enabled bool
}

// New opens (creating parent directories as needed) a logger appending
// to path. If path cannot be opened the returned Logger discards
// writes rather than erroring, mirroring config.NewLogger.
func New(path string) *Logger {
	l := &Logger{}
	if path == "" {
		return l
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return l
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return l
	}
	l.file = f
	l.enabled = true
	return l
}

// Debugf writes a timestamped debug line recording an anchoring
// decision (estimated offset, fuzzy step used, or fallback to a full
// scan). No-op when the logger has no backing file.
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || l.file == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	fmt.Fprintf(l.file, ts+" DEBUG "+format+"\n", args...)
}

// Enabled reports whether this logger has a backing file.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Close closes the backing file, if any.
func (l *Logger) Close() {
	if l != nil && l.file != nil {
		l.file.Close()
	}
}
