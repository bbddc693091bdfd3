package logger

// Logger :
// Describes a common interface used for logging purposes.
// Each method logs a record at the severity it is named
// after. The `format` and `args` follow the conventions
// of `fmt.Printf` but it is up to the implementation to
// decide when (and whether) the message is rendered: an
// implementation which filters the record out is free to
// never format it.
type Logger interface {
	Trace(format string, args ...interface{})
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Critical(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Dispatch :
// Calls the method of `log` matching `level`. This is the
// only place where a runtime severity is converted into a
// call to one of the six methods of the interface. Values
// that are not a known severity are ignored.
func Dispatch(log Logger, level Severity, format string, args ...interface{}) {
	switch level {
	case TraceLevel:
		log.Trace(format, args...)
	case DebugLevel:
		log.Debug(format, args...)
	case InfoLevel:
		log.Info(format, args...)
	case WarningLevel:
		log.Warn(format, args...)
	case ErrorLevel:
		log.Error(format, args...)
	case CriticalLevel:
		log.Critical(format, args...)
	}
}

type discard struct{}

func (discard) Trace(string, ...interface{})    {}
func (discard) Debug(string, ...interface{})    {}
func (discard) Info(string, ...interface{})     {}
func (discard) Warn(string, ...interface{})     {}
func (discard) Critical(string, ...interface{}) {}
func (discard) Error(string, ...interface{})    {}

// Discard is a logger dropping every record.
var Discard Logger = discard{}
