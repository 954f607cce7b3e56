package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "hotel-pms"

// NewLogger returns the process logger. APP_ENV=dev (or development) writes
// human-friendly console lines; anything else writes JSON. An unknown level
// falls back to info.
func NewLogger(env, level string) zerolog.Logger {
	return newLogger(os.Stdout, env, level)
}

func newLogger(out io.Writer, env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if env == "dev" || env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", serviceName).Logger()
}
