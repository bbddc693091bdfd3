package logger

import (
	"io"
	"strings"
	"sync/atomic"
)

// multiLogger :
// Forwards each record to a list of loggers, in order.
type multiLogger struct {
	loggers []Logger
}

// NewMultiLogger :
// Creates a logger which forwards every call to each of the
// input loggers with the same format and arguments. The `nil`
// loggers are ignored.
func NewMultiLogger(loggers ...Logger) Logger {
	m := &multiLogger{
		loggers: make([]Logger, 0, len(loggers)),
	}

	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}

	return m
}

func (m *multiLogger) Trace(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Trace(format, args...)
	}
}

func (m *multiLogger) Debug(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Debug(format, args...)
	}
}

func (m *multiLogger) Info(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Info(format, args...)
	}
}

func (m *multiLogger) Warn(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Warn(format, args...)
	}
}

func (m *multiLogger) Critical(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Critical(format, args...)
	}
}

func (m *multiLogger) Error(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Error(format, args...)
	}
}

// Leveler :
// Implemented by the loggers whose minimum severity can be
// changed while they are in use.
type Leveler interface {
	Level() Severity
	SetLevel(level Severity)
}

// LevelFilter :
// Drops the records below a minimum severity. The minimum can
// be changed concurrently with the logging calls.
//
// The `next` receives the records which pass the filter.
//
// The `min` holds the minimum severity, shared with the filters
// created by `Redirect`.
type LevelFilter struct {
	next Logger
	min  *atomic.Int32
}

// NewFilter :
// Creates a logger forwarding to `next` only the records with
// a severity at least equal to `min`.
func NewFilter(next Logger, min Severity) *LevelFilter {
	f := &LevelFilter{
		next: next,
		min:  new(atomic.Int32),
	}
	f.min.Store(int32(min))

	return f
}

// Redirect :
// Creates a filter forwarding to `next` which shares its minimum
// severity with this filter: changing the level of one changes
// the level of both.
func (f *LevelFilter) Redirect(next Logger) *LevelFilter {
	return &LevelFilter{
		next: next,
		min:  f.min,
	}
}

// Level returns the current minimum severity.
func (f *LevelFilter) Level() Severity {
	return Severity(f.min.Load())
}

// SetLevel changes the minimum severity.
func (f *LevelFilter) SetLevel(level Severity) {
	f.min.Store(int32(level))
}

func (f *LevelFilter) enabled(level Severity) bool {
	return f.Level() <= level
}

func (f *LevelFilter) Trace(format string, args ...interface{}) {
	if f.enabled(TraceLevel) {
		f.next.Trace(format, args...)
	}
}

func (f *LevelFilter) Debug(format string, args ...interface{}) {
	if f.enabled(DebugLevel) {
		f.next.Debug(format, args...)
	}
}

func (f *LevelFilter) Info(format string, args ...interface{}) {
	if f.enabled(InfoLevel) {
		f.next.Info(format, args...)
	}
}

func (f *LevelFilter) Warn(format string, args ...interface{}) {
	if f.enabled(WarningLevel) {
		f.next.Warn(format, args...)
	}
}

func (f *LevelFilter) Critical(format string, args ...interface{}) {
	if f.enabled(CriticalLevel) {
		f.next.Critical(format, args...)
	}
}

func (f *LevelFilter) Error(format string, args ...interface{}) {
	if f.enabled(ErrorLevel) {
		f.next.Error(format, args...)
	}
}

// lineWriter :
// Adapts the default logger to an `io.Writer`.
type lineWriter struct {
	level Severity
}

// Writer :
// Returns a writer logging each line written to it at the
// input severity through the default logger. Empty lines
// are skipped. This is meant for components which can only
// report to a writer (access logs, standard library logs).
func Writer(level Severity) io.Writer {
	return lineWriter{level}
}

func (w lineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) == 0 {
			continue
		}

		Log(w.level, "%s", line)
	}

	return len(p), nil
}
