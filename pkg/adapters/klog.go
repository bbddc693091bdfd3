package adapters

import (
	"k8s.io/klog/v2"

	"grafik/pkg/logger"
)

// klogLogger :
// Forwards the records to the global klog logger. Trace and debug
// records are emitted at info severity behind a verbosity check;
// klog only knows `Fatal` above error, which exits, so critical
// records are emitted as errors with a `CRITICAL` prefix.
//
// The `traceV` and `debugV` are the verbosities required for the
// trace and debug records to be displayed.
type klogLogger struct {
	traceV klog.Level
	debugV klog.Level
}

// NewKlog :
// Creates a logger writing to klog. Typical values for the two
// verbosities are 2 and 1.
func NewKlog(traceV klog.Level, debugV klog.Level) logger.Logger {
	return &klogLogger{
		traceV: traceV,
		debugV: debugV,
	}
}

func (k *klogLogger) Trace(format string, args ...interface{}) {
	klog.V(k.traceV).Infof(format, args...)
}

func (k *klogLogger) Debug(format string, args ...interface{}) {
	klog.V(k.debugV).Infof(format, args...)
}

func (k *klogLogger) Info(format string, args ...interface{}) {
	klog.Infof(format, args...)
}

func (k *klogLogger) Warn(format string, args ...interface{}) {
	klog.Warningf(format, args...)
}

func (k *klogLogger) Critical(format string, args ...interface{}) {
	klog.Errorf("CRITICAL "+format, args...)
}

func (k *klogLogger) Error(format string, args ...interface{}) {
	klog.Errorf(format, args...)
}

// Release flushes the pending klog data.
func (k *klogLogger) Release() {
	klog.Flush()
}
