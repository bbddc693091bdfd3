package adapters

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"grafik/pkg/logger"
)

// ZapTraceLevel is the level used for trace records: zap stops at
// debug so trace sits one step below it.
const ZapTraceLevel = zapcore.DebugLevel - 1

// zapLogger :
// Forwards the records to a zap logger. Zap has no critical level
// which does not panic or exit: critical records are emitted at the
// error level from a child logger carrying a `severity` field.
//
// The `base` is the logger used for all severities but critical.
//
// The `critical` is derived from `base` once at creation.
type zapLogger struct {
	base     *zap.Logger
	critical *zap.Logger
}

// zapOwnFrames is the number of frames of this adapter between
// the caller of a method and the call to `Check`.
const zapOwnFrames = 2

// NewZap :
// Wraps the input zap logger. When the logger reports callers,
// the reported caller is the code calling the returned logger.
// Use `WithCallerSkip` when it is reached through wrappers.
func NewZap(l *zap.Logger) logger.Logger {
	return newZapLogger(l.WithOptions(zap.AddCallerSkip(zapOwnFrames)))
}

func newZapLogger(l *zap.Logger) *zapLogger {
	return &zapLogger{
		base:     l,
		critical: l.With(zap.String("severity", logger.CriticalLevel.Name())),
	}
}

// withCallerSkip returns an adapter over the same core reporting
// the caller `skip` frames further up.
func (z *zapLogger) withCallerSkip(skip int) *zapLogger {
	return newZapLogger(z.base.WithOptions(zap.AddCallerSkip(skip)))
}

// ZapLevel :
// Converts a severity into the zap level used to emit it.
func ZapLevel(s logger.Severity) zapcore.Level {
	switch s {
	case logger.TraceLevel:
		return ZapTraceLevel
	case logger.DebugLevel:
		return zapcore.DebugLevel
	case logger.InfoLevel:
		return zapcore.InfoLevel
	case logger.WarningLevel:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// zapLevelEncoder prints the trace level by its name instead of
// the `Level(-2)` zap would produce.
func zapLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == ZapTraceLevel {
		enc.AppendString("trace")
		return
	}
	zapcore.LowercaseLevelEncoder(l, enc)
}

// emit :
// Formats the message only when the level is enabled.
func (z *zapLogger) emit(l *zap.Logger, level zapcore.Level, format string, args []interface{}) {
	if !l.Core().Enabled(level) {
		return
	}

	if ce := l.Check(level, fmt.Sprintf(format, args...)); ce != nil {
		ce.Write()
	}
}

func (z *zapLogger) Trace(format string, args ...interface{}) {
	z.emit(z.base, ZapTraceLevel, format, args)
}

func (z *zapLogger) Debug(format string, args ...interface{}) {
	z.emit(z.base, zapcore.DebugLevel, format, args)
}

func (z *zapLogger) Info(format string, args ...interface{}) {
	z.emit(z.base, zapcore.InfoLevel, format, args)
}

func (z *zapLogger) Warn(format string, args ...interface{}) {
	z.emit(z.base, zapcore.WarnLevel, format, args)
}

func (z *zapLogger) Critical(format string, args ...interface{}) {
	z.emit(z.critical, zapcore.ErrorLevel, format, args)
}

func (z *zapLogger) Error(format string, args ...interface{}) {
	z.emit(z.base, zapcore.ErrorLevel, format, args)
}

// Release flushes the buffered entries of the zap core.
func (z *zapLogger) Release() {
	_ = z.base.Sync()
}
