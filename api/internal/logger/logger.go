package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger and returns it.
// format "console" gives human-readable output; anything else is JSON.
func Init(level, format string) zerolog.Logger {
	return InitWithWriter(os.Stdout, level, format)
}

func InitWithWriter(out io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	// Force all timestamps to be in UTC.
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05"}
	}

	log.Logger = zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return log.Logger
}

// WithComponent tags every event with the emitting subsystem.
func WithComponent(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
