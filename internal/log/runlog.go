package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// RunLogger is an explicitly constructed logger for a single scrape run.
// It writes timestamped, severity-tagged lines to an execution log file
// and optionally mirrors them to another writer (typically stderr).
//
// Design decision: RunLogger is constructed and torn down per run rather
// than installed as a process-wide default. Each invocation owns its log
// file, and Close releases it deterministically when the run ends.
type RunLogger struct {
	// Logger is the slog.Logger to use for the run.
	Logger *slog.Logger

	// file is the execution log file, nil if file logging is disabled.
	file *os.File
}

// NewRunLogger creates a logger for one scrape run.
//
// Log lines go to w (pass io.Discard to silence console output) and, if
// path is non-empty, to the execution log file at path. The file's parent
// directory is created if needed, and an existing file is appended to so
// repeated runs accumulate a history.
func NewRunLogger(w io.Writer, path string, verbose bool) (*RunLogger, error) {
	if path == "" {
		return &RunLogger{Logger: NewSecureLogger(w, verbose)}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open execution log: %w", err)
	}

	return &RunLogger{
		Logger: NewSecureLogger(io.MultiWriter(w, file), verbose),
		file:   file,
	}, nil
}

// Close flushes and releases the execution log file, if any.
func (r *RunLogger) Close() error {
	if r.file == nil {
		return nil
	}
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close execution log: %w", err)
	}
	r.file = nil
	return nil
}
