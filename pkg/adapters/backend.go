// Package adapters implements the logger interface on top of the
// common third-party logging libraries, so that the facade can be
// plugged on whichever one the application already uses.
package adapters

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/klog/v2"

	"grafik/pkg/logger"
)

// ErrUnknownBackend :
// Indicates that the name of the backend requested in the
// configuration does not correspond to any known library.
var ErrUnknownBackend = fmt.Errorf("unknown logging backend")

// Backends lists the names accepted by `New`.
var Backends = []string{"std", "zap", "zerolog", "logrus", "klog"}

// Releaser :
// Implemented by the loggers which hold some resources or
// buffered data that must be flushed before exiting.
type Releaser interface {
	Release()
}

// Release :
// Flushes the input logger if it needs to, does nothing
// otherwise.
func Release(log logger.Logger) {
	if r, ok := log.(Releaser); ok {
		r.Release()
	}
}

// New :
// Builds the backend identified by `name` from the common logger
// configuration. All backends write to `config.Output`, tag their
// records with the application name and the instance identifier
// and drop the records below `config.Level`.
//
// The `name` is one of the values of `Backends`.
//
// The `config` defines the output and the minimum severity.
//
// The `instanceID` identifies the running instance.
//
// Returns the created logger along with any error.
func New(name string, config logger.Config, instanceID string) (logger.Logger, error) {
	if len(instanceID) == 0 || config.ForceLocal {
		instanceID = "local"
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}

	switch name {
	case "", "std":
		return logger.NewStdLoggerWithConfig(config, instanceID), nil
	case "zap":
		return newZapBackend(config, instanceID), nil
	case "zerolog":
		return newZerologBackend(config, instanceID), nil
	case "logrus":
		return newLogrusBackend(config, instanceID), nil
	case "klog":
		return newKlogBackend(config)
	}

	return nil, fmt.Errorf("%w: \"%s\"", ErrUnknownBackend, name)
}

// releasingFilter keeps the `Release` of the wrapped backend
// reachable through the level filter. The library itself is
// configured to accept every record so that the filter is the
// only place deciding the minimum severity.
type releasingFilter struct {
	*logger.LevelFilter
	backend logger.Logger
}

func (f releasingFilter) Release() {
	Release(f.backend)
}

// filterFrames accounts for the `LevelFilter` method between the
// caller and the backend.
const filterFrames = 1

// WithCallerSkip :
// Returns a logger writing to the same backend as `log` and sharing
// its level, but reporting the caller `skip` frames further up. This
// is needed when the logger is reached through wrappers such as the
// facade functions. Backends which do not report callers are
// returned as is.
func WithCallerSkip(log logger.Logger, skip int) logger.Logger {
	f, ok := log.(releasingFilter)
	if !ok {
		return log
	}
	z, ok := f.backend.(*zapLogger)
	if !ok {
		return log
	}

	skipped := z.withCallerSkip(skip)
	return releasingFilter{
		LevelFilter: f.LevelFilter.Redirect(skipped),
		backend:     skipped,
	}
}

func filtered(backend logger.Logger, min logger.Severity) logger.Logger {
	return releasingFilter{
		LevelFilter: logger.NewFilter(backend, min),
		backend:     backend,
	}
}

func newZapBackend(config logger.Config, instanceID string) logger.Logger {
	encoder := zap.NewProductionEncoderConfig()
	encoder.EncodeLevel = zapLevelEncoder
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoder),
		zapcore.AddSync(config.Output),
		ZapTraceLevel,
	)

	base := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(filterFrames)).With(
		zap.String("app", config.AppName),
		zap.String("instance", instanceID),
	)

	return filtered(NewZap(base), config.Level)
}

func newZerologBackend(config logger.Config, instanceID string) logger.Logger {
	base := zerolog.New(config.Output).
		Level(zerolog.TraceLevel).
		With().
		Timestamp().
		Str("app", config.AppName).
		Str("instance", instanceID).
		Logger()

	return filtered(NewZerolog(base), config.Level)
}

func newLogrusBackend(config logger.Config, instanceID string) logger.Logger {
	base := logrus.New()
	base.SetOutput(config.Output)
	base.SetLevel(logrus.TraceLevel)
	base.SetFormatter(&logrus.TextFormatter{
		DisableColors: !config.Color,
		FullTimestamp: true,
	})

	entry := base.WithFields(logrus.Fields{
		"app":      config.AppName,
		"instance": instanceID,
	})

	return filtered(NewLogrus(entry), config.Level)
}

// Verbosities used by klog for the trace and debug records.
const (
	klogTraceV = 2
	klogDebugV = 1
)

// newKlogBackend :
// Configures the global klog state: klog does not support
// independent instances.
func newKlogBackend(config logger.Config) (logger.Logger, error) {
	flags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(flags)

	settings := map[string]string{
		"logtostderr":     "false",
		"alsologtostderr": "false",
		"one_output":      "true",
		"stderrthreshold": "FATAL",
		"v":               strconv.Itoa(klogTraceV),
	}
	for key, value := range settings {
		if err := flags.Set(key, value); err != nil {
			return nil, fmt.Errorf("could not configure klog (key: %s, err: %w)", key, err)
		}
	}

	klog.SetOutput(config.Output)

	return filtered(NewKlog(klogTraceV, klogDebugV), config.Level), nil
}
