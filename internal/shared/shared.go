// package shared holds the configuration, errors, logging and database setup used by every tastemaker command
package shared

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger returns the logger handed to the runner, the pipeline engine and the Spotify client.
//
// Lines carry a timestamp and the calling file. A nil w logs to [os.Stderr] so stdout stays free for
// recommendation output.
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger appends log lines to path, creating parent directories as needed.
//
// The TUI logs here so log lines never interleave with rendered frames.
func NewFileLogger(path string) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return NewLogger(f), nil
}

// WithLogger returns a child of l that tags every line with kv, such as the run id of a recorded pipeline run.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel changes the level of l; --verbose lowers it to debug.
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID returns a random v4 [uuid.UUID] string, used as the primary key of runs and stored
// recommendations.
func GenerateID() string {
	return uuid.New().String()
}
