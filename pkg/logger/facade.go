package logger

import (
	"os"
	"sync"
)

// current holds the process-wide logger used by the package
// level functions. It is guarded by `lock` so that a backend
// can be swapped while other routines are logging.
var (
	lock    sync.RWMutex
	current Logger = NewStdLoggerWithConfig(
		Config{
			AppName:     "Unknown app",
			Environment: "development",
			Level:       TraceLevel,
			Buffer:      0,
			Color:       true,
			Output:      os.Stdout,
		},
		"",
	)
)

// SetDefault :
// Installs `log` as the logger used by the package level
// functions. A `nil` logger installs `Discard`.
//
// Returns the previously installed logger so that callers
// can restore or release it.
func SetDefault(log Logger) Logger {
	if log == nil {
		log = Discard
	}

	lock.Lock()
	defer lock.Unlock()

	prev := current
	current = log

	return prev
}

// Default :
// Returns the logger used by the package level functions.
func Default() Logger {
	lock.RLock()
	defer lock.RUnlock()
	return current
}

// Trace logs at trace severity through the default logger.
func Trace(format string, args ...interface{}) {
	Default().Trace(format, args...)
}

// Debug logs at debug severity through the default logger.
func Debug(format string, args ...interface{}) {
	Default().Debug(format, args...)
}

// Info logs at info severity through the default logger.
func Info(format string, args ...interface{}) {
	Default().Info(format, args...)
}

// Warn logs at warning severity through the default logger.
func Warn(format string, args ...interface{}) {
	Default().Warn(format, args...)
}

// Critical logs at critical severity through the default logger.
func Critical(format string, args ...interface{}) {
	Default().Critical(format, args...)
}

// Error logs at error severity through the default logger.
func Error(format string, args ...interface{}) {
	Default().Error(format, args...)
}

// Log :
// Logs at a severity only known at runtime through the
// default logger.
func Log(level Severity, format string, args ...interface{}) {
	Dispatch(Default(), level, format, args...)
}
