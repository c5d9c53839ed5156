package ctxlog

import (
	"github.com/rs/zerolog"
)

// Component tags every line of logger with the subsystem that wrote it.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

func Op(logger zerolog.Logger, op string) zerolog.Logger {
	return logger.With().Str("op", op).Logger()
}
