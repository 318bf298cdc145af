package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a component logger with console output. Every log line
// carries the component name so the three binaries (server, ingest CLI,
// sync job) can be told apart when they share a log stream.
func New(component, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	SetLevel(level)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// SetLevel sets the global logging level from a config string.
func SetLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "", "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
