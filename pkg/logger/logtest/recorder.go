// Package logtest provides a logger recording the calls it
// receives, to be used in tests of components which log.
package logtest

import (
	"sync"

	"grafik/pkg/logger"
)

// Call describes one invocation of a logging method.
type Call struct {
	Level  logger.Severity
	Format string
	Args   []interface{}
}

// Recorder :
// Implementation of `logger.Logger` keeping track of all the
// calls it received. The arguments slice is stored as it was
// received so that tests can check that it was not copied or
// reordered on the way.
type Recorder struct {
	lock  sync.Mutex
	calls []Call
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(level logger.Severity, format string, args []interface{}) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.calls = append(r.calls, Call{level, format, args})
}

func (r *Recorder) Trace(format string, args ...interface{}) {
	r.record(logger.TraceLevel, format, args)
}

func (r *Recorder) Debug(format string, args ...interface{}) {
	r.record(logger.DebugLevel, format, args)
}

func (r *Recorder) Info(format string, args ...interface{}) {
	r.record(logger.InfoLevel, format, args)
}

func (r *Recorder) Warn(format string, args ...interface{}) {
	r.record(logger.WarningLevel, format, args)
}

func (r *Recorder) Critical(format string, args ...interface{}) {
	r.record(logger.CriticalLevel, format, args)
}

func (r *Recorder) Error(format string, args ...interface{}) {
	r.record(logger.ErrorLevel, format, args)
}

// Calls returns a copy of the calls recorded so far.
func (r *Recorder) Calls() []Call {
	r.lock.Lock()
	defer r.lock.Unlock()

	out := make([]Call, len(r.calls))
	copy(out, r.calls)

	return out
}

// Reset forgets the recorded calls.
func (r *Recorder) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.calls = nil
}
