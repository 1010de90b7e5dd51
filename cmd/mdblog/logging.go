package main

import (
	"io"

	"github.com/rs/zerolog"
)

// newLogger returns a human-readable logger on w. Info by default, debug
// with --verbose, errors only with --quiet. Colors are off with --no-color
// or when NO_COLOR is set.
func newLogger(w io.Writer, f commonFlags, getenv func(string) string) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    f.noColor || getenv("NO_COLOR") != "",
	}

	level := zerolog.InfoLevel
	switch {
	case f.quiet:
		level = zerolog.ErrorLevel
	case f.verbose:
		level = zerolog.DebugLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
