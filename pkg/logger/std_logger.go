package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/viper"
)

// Config :
// Provides a way to configure the way logs are displayed both in terms of
// level and in terms of the machine executing the logger.
// This logger uses a display to the standard output as a logging strategy
// with some coloring based on the severity of the logs to display. The
// logger is initialized with default name for the application and with a
// local configuration but information are retrieved from the configuration
// file to modify it.
//
// The `AppName` describes a string for the name of the application using
// the logger.
// The default value is "Unknown app".
//
// The `Environment` allows to specify which configuration is used by the
// application executing the logger. Typical values include `production`
// and `development` but others can be set if needed.
// The default value is "development".
//
// The `ForceLocal` allows to make sure that the instance ID assigned to
// this logger will be "local" no matter what the value provided by the
// runtime is. This allows to make logs in development environment clearer
// by ignoring the automatically generated name.
// The default value is `false`.
//
// The `Level` is the minimum severity of a log message in order for it to
// be displayed. It allows to filter debug messages from production or to
// suppress info messages so that important messages get their deserved
// visibility.
// The default value is `InfoLevel`.
//
// The `Buffer` allows to specify the size of the buffer to handle log
// messages. The logger does not directly output messages to the device:
// it stores them in an internal buffer which is almost instantaneous and
// dumps them from a dedicated routine. This absorbs bursts of messages.
// A value of `0` (or less) disables the buffer: messages are then written
// synchronously by the caller.
// The default value is 500.
//
// The `Color` defines whether escape sequences are used to color the
// header of each line.
// The default value is `true`.
//
// The `Output` is the device where lines are written.
// The default value is the standard output.
type Config struct {
	AppName     string
	Environment string
	ForceLocal  bool
	Level       Severity
	Buffer      int
	Color       bool
	Output      io.Writer
}

// traceMessage :
// Describes a message enqueued by the logger. The content is already
// rendered: the arguments provided by the caller might be modified as
// soon as the logging call returns so they cannot be kept around.
type traceMessage struct {
	level   Severity
	date    time.Time
	content string
}

// StdLogger :
// Describes the logger structure used to perform logging to a text
// device (usually the standard output).
// This logger handles a buffer mechanism so that anyone can post a log
// message and not be blocked while the underlying device is performing
// the write.
//
// The `config` holds the settings of the logger.
//
// The `instanceID` represents the name of the instance of the application
// running the logger. It is updated each time the application restarts
// which allows to detect crashes or several apps running on one machine.
//
// The `level` is the current minimum severity. It is kept apart from the
// configuration so that it can be changed at runtime.
//
// The `logChannel` is used to receive the trace messages from callers
// before sending them to the logging device. It is `nil` when the logger
// works synchronously.
//
// The `closed` value indicates whether the logger has been released. It
// is protected by the `locker`.
//
// The `writeLock` serializes writes to the output device.
//
// The `waiter` allows to wait for the proper termination of the logging
// routine in order to allow the display of the last posted messages.
type StdLogger struct {
	config     Config
	instanceID string
	level      atomic.Int32
	logChannel chan traceMessage
	closed     bool
	locker     sync.Mutex
	writeLock  sync.Mutex
	waiter     sync.WaitGroup
}

// DefaultConfig :
// Returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		AppName:     "Unknown app",
		Environment: "development",
		ForceLocal:  false,
		Level:       InfoLevel,
		Buffer:      500,
		Color:       true,
		Output:      os.Stdout,
	}
}

// ParseConfiguration :
// Used to retrieve the parameters to apply to the logger from the
// configuration file. A default configuration is provided to work
// in most cases but one can modify some settings at runtime.
//
// Returns the arguments parsed from the configuration file.
func ParseConfiguration() Config {
	config := DefaultConfig()

	if viper.IsSet("Logger.Name") {
		config.AppName = viper.GetString("Logger.Name")
	}
	if viper.IsSet("Logger.Environment") {
		config.Environment = viper.GetString("Logger.Environment")
	}
	if viper.IsSet("Logger.ForceLocal") {
		config.ForceLocal = viper.GetBool("Logger.ForceLocal")
	}
	if viper.IsSet("Logger.Level") {
		config.Level = fromString(viper.GetString("Logger.Level"), config.Level)
	}
	if viper.IsSet("Logger.Buffer") {
		config.Buffer = viper.GetInt("Logger.Buffer")
	}
	if viper.IsSet("Logger.Color") {
		config.Color = viper.GetBool("Logger.Color")
	}

	return config
}

// NewStdLogger :
// Used to create a new logger with the specified instance name. The
// created logger will parse the configuration file provided by the env
// and adapt its configuration right away.
//
// The `instanceID` string might be empty if no instance ID is provided
// by the application's properties, in which case "local" is used.
//
// The return value represents the produced logger.
func NewStdLogger(instanceID string) *StdLogger {
	return NewStdLoggerWithConfig(ParseConfiguration(), instanceID)
}

// NewStdLoggerWithConfig :
// Similar to `NewStdLogger` but uses the provided configuration
// instead of reading it from the configuration file.
func NewStdLoggerWithConfig(config Config, instanceID string) *StdLogger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	log := &StdLogger{
		config:     config,
		instanceID: instanceID,
	}
	log.level.Store(int32(config.Level))

	if len(log.instanceID) == 0 || config.ForceLocal {
		log.instanceID = "local"
	}

	if config.Buffer > 0 {
		log.logChannel = make(chan traceMessage, config.Buffer)

		log.waiter.Add(1)
		go log.performLogging()
	}

	return log
}

// InstanceID :
// Returns the identifier displayed in each line.
func (log *StdLogger) InstanceID() string {
	return log.instanceID
}

// Level returns the current minimum severity.
func (log *StdLogger) Level() Severity {
	return Severity(log.level.Load())
}

// SetLevel :
// Changes the minimum severity of the messages displayed by this
// logger. Messages already enqueued are not affected.
func (log *StdLogger) SetLevel(level Severity) {
	log.level.Store(int32(level))
}

// Release :
// Used to perform the stopping of the active loop meant to handle logging
// to the underlying device. It will block until the messages posted so far
// have been dumped. Calling it several times is harmless.
func (log *StdLogger) Release() {
	log.locker.Lock()
	if log.closed {
		log.locker.Unlock()
		return
	}

	log.closed = true
	if log.logChannel != nil {
		close(log.logChannel)
	}
	log.locker.Unlock()

	log.waiter.Wait()
}

func (log *StdLogger) Trace(format string, args ...interface{}) {
	log.trace(TraceLevel, format, args...)
}

func (log *StdLogger) Debug(format string, args ...interface{}) {
	log.trace(DebugLevel, format, args...)
}

func (log *StdLogger) Info(format string, args ...interface{}) {
	log.trace(InfoLevel, format, args...)
}

func (log *StdLogger) Warn(format string, args ...interface{}) {
	log.trace(WarningLevel, format, args...)
}

func (log *StdLogger) Critical(format string, args ...interface{}) {
	log.trace(CriticalLevel, format, args...)
}

func (log *StdLogger) Error(format string, args ...interface{}) {
	log.trace(ErrorLevel, format, args...)
}

// trace :
// Used to perform the log of the input message with the specified level.
// The log message is not directly transmitted to the logging device but
// placed in the internal buffer so that it can be processed by the active
// logger loop.
// Note that this function does not block the caller if the channel is not
// full. Otherwise the caller will be blocked until a slot is available in
// the internal buffer.
func (log *StdLogger) trace(level Severity, format string, args ...interface{}) {
	if level < log.Level() {
		return
	}

	// Format now: the arguments may change once the caller returns.
	trace := traceMessage{
		level,
		time.Now(),
		fmt.Sprintf(format, args...),
	}

	log.locker.Lock()
	defer log.locker.Unlock()

	if log.closed {
		return
	}

	// Unbuffered loggers write from the caller's go routine.
	if log.logChannel == nil {
		log.performSingleLog(trace)
		return
	}

	log.logChannel <- trace
}

// performLogging :
// Used to perform logging. This method is meant to be launched as a go
// routine and drains the internal trace channel until it is closed.
func (log *StdLogger) performLogging() {
	defer log.waiter.Done()

	for trace := range log.logChannel {
		log.performSingleLog(trace)
	}
}

// performSingleLog :
// Used to convert the input trace into a line and write it to the
// output device, prefixed by some information about the instance
// producing it.
func (log *StdLogger) performSingleLog(trace traceMessage) {
	colored := log.config.Color

	out := format(log.config.AppName, Magenta, true, colored)
	out += " " + format(log.instanceID, Magenta, true, colored)
	out += " " + format(trace.date.Format("2006-01-02 15:04:05"), Magenta, false, colored)
	out += " " + format(trace.level.Name(), trace.level.Color(), true, colored)
	out += " " + trace.content

	log.writeLock.Lock()
	defer log.writeLock.Unlock()

	fmt.Fprintln(log.config.Output, out)
}
