package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns the root application logger writing human-readable
// output to stderr.
func New(level zerolog.Level) zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewWriter returns a logger emitting JSON lines to the given writer.
func NewWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Component tags a child logger with the component name so log lines
// can be traced back to the emitting subsystem.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
