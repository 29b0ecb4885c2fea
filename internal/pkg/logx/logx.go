/*
Package logx provides a structured logging wrapper based on zerolog.

It initializes the global logger, picks the output format (console in
development, JSON otherwise), and exposes small level helpers used where a
contextual child logger would be overkill.
*/
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger initializes the global zerolog instance.
// Development gets Debug level with a human-readable console writer;
// everything else gets Info level JSON. All logs carry a Unix timestamp
// and caller information.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if isDevelopment {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	log.Logger = logger.With().Caller().Logger()
}

// Logger returns a pointer to the global zerolog.Logger instance, for
// callers that derive contextual child loggers from it.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// fields validates that the variadic key-value list has even length.
// An odd list is dropped with a warning instead of panicking inside zerolog.
func fields(level string, kv []any) []any {
	if len(kv)%2 != 0 {
		Logger().Warn().
			Int("fields_count", len(kv)).
			Str("log_level", level).
			Msg("Odd number of log fields; fields ignored")
		return nil
	}
	return kv
}

// Info records a message at the Info level with optional key-value fields.
func Info(msg string, kv ...any) {
	Logger().Info().Fields(fields("Info", kv)).CallerSkipFrame(1).Msg(msg)
}

// Warn records a message at the Warn level with optional key-value fields.
func Warn(msg string, kv ...any) {
	Logger().Warn().Fields(fields("Warn", kv)).CallerSkipFrame(1).Msg(msg)
}

// Error records an error and message at the Error level with optional
// key-value fields.
func Error(err error, msg string, kv ...any) {
	Logger().Error().Err(err).Fields(fields("Error", kv)).CallerSkipFrame(1).Msg(msg)
}

// Fatal records an error and message at the Fatal level, then exits.
func Fatal(err error, msg string, kv ...any) {
	Logger().Fatal().Err(err).Fields(fields("Fatal", kv)).CallerSkipFrame(1).Msg(msg)
}
