package adapters

import (
	"github.com/rs/zerolog"

	"grafik/pkg/logger"
)

// zerologLogger :
// Forwards the records to a zerolog logger. Critical records are
// emitted with `WithLevel(FatalLevel)` which, unlike `Fatal`, does
// not terminate the program.
type zerologLogger struct {
	log zerolog.Logger
}

// NewZerolog wraps the input zerolog logger.
func NewZerolog(l zerolog.Logger) logger.Logger {
	return &zerologLogger{log: l}
}

// ZerologLevel :
// Converts a severity into the zerolog level used to emit it.
func ZerologLevel(s logger.Severity) zerolog.Level {
	switch s {
	case logger.TraceLevel:
		return zerolog.TraceLevel
	case logger.DebugLevel:
		return zerolog.DebugLevel
	case logger.InfoLevel:
		return zerolog.InfoLevel
	case logger.WarningLevel:
		return zerolog.WarnLevel
	case logger.ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.FatalLevel
	}
}

func (z *zerologLogger) Trace(format string, args ...interface{}) {
	z.log.Trace().Msgf(format, args...)
}

func (z *zerologLogger) Debug(format string, args ...interface{}) {
	z.log.Debug().Msgf(format, args...)
}

func (z *zerologLogger) Info(format string, args ...interface{}) {
	z.log.Info().Msgf(format, args...)
}

func (z *zerologLogger) Warn(format string, args ...interface{}) {
	z.log.Warn().Msgf(format, args...)
}

func (z *zerologLogger) Critical(format string, args ...interface{}) {
	z.log.WithLevel(zerolog.FatalLevel).Msgf(format, args...)
}

func (z *zerologLogger) Error(format string, args ...interface{}) {
	z.log.Error().Msgf(format, args...)
}
