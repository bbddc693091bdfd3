package adapters

import (
	"github.com/sirupsen/logrus"

	"grafik/pkg/logger"
)

// logrusLogger :
// Forwards the records to a logrus entry. The `Fatal` and `Panic`
// levels of logrus stop the program so critical records use the
// error level with a `severity` field instead.
type logrusLogger struct {
	entry    *logrus.Entry
	critical *logrus.Entry
}

// NewLogrus :
// Wraps the input logrus entry. Use `logrus.NewEntry` to wrap a
// bare `*logrus.Logger`.
func NewLogrus(entry *logrus.Entry) logger.Logger {
	return &logrusLogger{
		entry:    entry,
		critical: entry.WithField("severity", logger.CriticalLevel.Name()),
	}
}

// LogrusLevel :
// Converts a severity into the logrus level used to emit it.
func LogrusLevel(s logger.Severity) logrus.Level {
	switch s {
	case logger.TraceLevel:
		return logrus.TraceLevel
	case logger.DebugLevel:
		return logrus.DebugLevel
	case logger.InfoLevel:
		return logrus.InfoLevel
	case logger.WarningLevel:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

func (l *logrusLogger) Trace(format string, args ...interface{}) {
	l.entry.Logf(logrus.TraceLevel, format, args...)
}

func (l *logrusLogger) Debug(format string, args ...interface{}) {
	l.entry.Logf(logrus.DebugLevel, format, args...)
}

func (l *logrusLogger) Info(format string, args ...interface{}) {
	l.entry.Logf(logrus.InfoLevel, format, args...)
}

func (l *logrusLogger) Warn(format string, args ...interface{}) {
	l.entry.Logf(logrus.WarnLevel, format, args...)
}

func (l *logrusLogger) Critical(format string, args ...interface{}) {
	l.critical.Logf(logrus.ErrorLevel, format, args...)
}

func (l *logrusLogger) Error(format string, args ...interface{}) {
	l.entry.Logf(logrus.ErrorLevel, format, args...)
}
