// Package logger builds the root zerolog logger. Local runs get the console
// writer; everything else emits JSON lines.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

func New(level, env string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if env == "local" {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "safepost").
		Logger()
}
