// Package log builds the zerolog loggers handed to every component.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Mode selects where log output goes.
type Mode int

const (
	// ModeFile writes JSON lines to a file; the terminal belongs to the TUI.
	ModeFile Mode = iota
	// ModeConsole writes human-readable lines to stderr.
	ModeConsole
)

// New returns a timestamped logger at level. In ModeFile the returned closer
// closes the log file; it is a no-op otherwise.
func New(mode Mode, path string, level zerolog.Level) (zerolog.Logger, io.Closer, error) {
	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)

	switch mode {
	case ModeConsole:
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	default:
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closer = f
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

// NewWriter is New for an arbitrary writer, used by tests and embedding code.
func NewWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
