package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grafik/pkg/logger"
)

const (
	namespace = "grafik"
	subsystem = "logger"
)

// newRecordsCounter :
// Creates the counter of records per severity. One series per
// severity is created right away so that dashboards show zero
// instead of no data.
func newRecordsCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "records_total",
		Help:      "The number of log records emitted through the facade, per severity",
	}, []string{"severity"})
}

// registerCounter :
// Registers the counter, or reuses the one already registered
// with the same description (which happens when several loggers
// share a registry).
func registerCounter(reg prometheus.Registerer, counter *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(counter); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}

		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		counter = existing
	}

	for _, s := range logger.Severities() {
		counter.WithLabelValues(s.Name()).Add(0)
	}

	return counter, nil
}

// CountingLogger :
// Decorates a logger by counting the records per severity
// before forwarding them unchanged.
//
// The `next` is the decorated logger.
//
// The `counters` holds one counter per severity, resolved at
// creation so that logging does not look up labels.
type CountingLogger struct {
	next     logger.Logger
	counters [6]prometheus.Counter
}

// NewCountingLogger :
// Creates a counting logger registering its metrics in `reg`.
// A `nil` registry means the default prometheus registry.
//
// Returns the created logger along with any registration error.
func NewCountingLogger(next logger.Logger, reg prometheus.Registerer) (*CountingLogger, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	counter, err := registerCounter(reg, newRecordsCounter())
	if err != nil {
		return nil, err
	}

	c := &CountingLogger{
		next: next,
	}
	for _, s := range logger.Severities() {
		c.counters[s] = counter.WithLabelValues(s.Name())
	}

	return c, nil
}

func (c *CountingLogger) Trace(format string, args ...interface{}) {
	c.counters[logger.TraceLevel].Inc()
	c.next.Trace(format, args...)
}

func (c *CountingLogger) Debug(format string, args ...interface{}) {
	c.counters[logger.DebugLevel].Inc()
	c.next.Debug(format, args...)
}

func (c *CountingLogger) Info(format string, args ...interface{}) {
	c.counters[logger.InfoLevel].Inc()
	c.next.Info(format, args...)
}

func (c *CountingLogger) Warn(format string, args ...interface{}) {
	c.counters[logger.WarningLevel].Inc()
	c.next.Warn(format, args...)
}

func (c *CountingLogger) Critical(format string, args ...interface{}) {
	c.counters[logger.CriticalLevel].Inc()
	c.next.Critical(format, args...)
}

func (c *CountingLogger) Error(format string, args ...interface{}) {
	c.counters[logger.ErrorLevel].Inc()
	c.next.Error(format, args...)
}

// Unwrap returns the decorated logger.
func (c *CountingLogger) Unwrap() logger.Logger {
	return c.next
}

// Handler :
// Returns the handler exposing the metrics gathered by `gatherer`
// (the default registry when `nil`).
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
