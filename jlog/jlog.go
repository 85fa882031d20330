// Package jlog is the structured-logging entry point shared by every core
// subsystem. All core packages log through this instead of fmt/log so that
// an embedding application gets one consistent, leveled, field-tagged stream.
package jlog

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. Subsystems pull component-scoped
// loggers from it via For, rather than writing to it directly.
var Log zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}

// For returns a logger tagged with the given component name, e.g.
// jlog.For("scheduler") or jlog.For("tlsf").
func For(component string) zerolog.Logger {
	return Log.With().Str("component", component).Logger()
}

// SetLevel adjusts the global minimum log level (default: info).
func SetLevel(level zerolog.Level) {
	Log = Log.Level(level)
}
