package adapters

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"grafik/pkg/logger"
)

// emitAll logs one record per severity, each tagged with its name.
func emitAll(log logger.Logger) {
	log.Trace("record %s %d", "trace", 0)
	log.Debug("record %s %d", "debug", 1)
	log.Info("record %s %d", "info", 2)
	log.Warn("record %s %d", "warning", 3)
	log.Error("record %s %d", "error", 4)
	log.Critical("record %s %d", "critical", 5)
}

func TestZapAdapter(t *testing.T) {
	core, observed := observer.New(ZapTraceLevel)
	emitAll(NewZap(zap.New(core)))

	entries := observed.All()
	require.Len(t, entries, 6)

	wantLevels := []zapcore.Level{ZapTraceLevel, zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel, zapcore.ErrorLevel}
	for i, entry := range entries {
		assert.Equal(t, wantLevels[i], entry.Level)
	}
	assert.Equal(t, "record info 2", entries[2].Message)
	assert.Equal(t, "record critical 5", entries[5].Message)

	assert.Empty(t, entries[4].Context)
	assert.Equal(t, "critical", entries[5].ContextMap()["severity"])
}

func TestZapAdapterSkipsDisabledLevels(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	emitAll(NewZap(zap.New(core)))

	assert.Equal(t, 3, observed.Len())
}

func TestZapReportsCaller(t *testing.T) {
	core, observed := observer.New(ZapTraceLevel)

	NewZap(zap.New(core, zap.AddCaller())).Info("direct")

	// Facade function and multi logger.
	viaFacade := NewZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)))
	previous := logger.SetDefault(logger.NewMultiLogger(viaFacade))
	defer logger.SetDefault(previous)
	logger.Warn("through the facade")

	entries := observed.All()
	require.Len(t, entries, 2)
	for _, entry := range entries {
		require.True(t, entry.Caller.Defined, entry.Message)
		assert.True(t, strings.HasSuffix(entry.Caller.File, "adapters_test.go"), "%s: %s", entry.Message, entry.Caller.File)
	}
}

func TestNewZapCallerSkip(t *testing.T) {
	out := &lockedBuffer{}
	log, err := New("zap", logger.Config{AppName: "grafik", Level: logger.InfoLevel, Output: out}, "id")
	require.NoError(t, err)

	log.Info("direct")

	skipped := WithCallerSkip(log, 2)
	previous := logger.SetDefault(logger.NewMultiLogger(skipped))
	defer logger.SetDefault(previous)
	logger.Warn("through the facade")

	log.(logger.Leveler).SetLevel(logger.ErrorLevel)
	logger.Warn("hidden")
	Release(log)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var record map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		assert.Contains(t, record["caller"], "adapters/adapters_test.go", record["msg"])
	}
}

func TestWithCallerSkipKeepsOtherBackends(t *testing.T) {
	std := logger.NewStdLoggerWithConfig(logger.DefaultConfig(), "id")
	assert.Same(t, std, WithCallerSkip(std, 2))

	log, err := New("logrus", logger.Config{Output: &lockedBuffer{}}, "id")
	require.NoError(t, err)
	assert.Equal(t, log, WithCallerSkip(log, 2))
	Release(std)
}

func TestZerologAdapter(t *testing.T) {
	var out bytes.Buffer
	emitAll(NewZerolog(zerolog.New(&out).Level(zerolog.TraceLevel)))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)

	var levels []string
	for _, line := range lines {
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &payload))
		levels = append(levels, payload["level"].(string))
	}
	assert.Equal(t, []string{"trace", "debug", "info", "warn", "error", "fatal"}, levels)
	assert.Contains(t, lines[3], `"message":"record warning 3"`)
}

func TestLogrusAdapter(t *testing.T) {
	base, hook := logrustest.NewNullLogger()
	base.SetLevel(logrus.TraceLevel)

	emitAll(NewLogrus(logrus.NewEntry(base)))

	entries := hook.AllEntries()
	require.Len(t, entries, 6)

	wantLevels := []logrus.Level{logrus.TraceLevel, logrus.DebugLevel, logrus.InfoLevel, logrus.WarnLevel, logrus.ErrorLevel, logrus.ErrorLevel}
	for i, entry := range entries {
		assert.Equal(t, wantLevels[i], entry.Level)
	}
	assert.Equal(t, "record debug 1", entries[1].Message)
	assert.Equal(t, "critical", entries[5].Data["severity"])
	assert.NotContains(t, entries[4].Data, "severity")
}

func TestLevelMappings(t *testing.T) {
	for _, tc := range []struct {
		severity logger.Severity
		zap      zapcore.Level
		zerolog  zerolog.Level
		logrus   logrus.Level
	}{
		{logger.TraceLevel, ZapTraceLevel, zerolog.TraceLevel, logrus.TraceLevel},
		{logger.DebugLevel, zapcore.DebugLevel, zerolog.DebugLevel, logrus.DebugLevel},
		{logger.InfoLevel, zapcore.InfoLevel, zerolog.InfoLevel, logrus.InfoLevel},
		{logger.WarningLevel, zapcore.WarnLevel, zerolog.WarnLevel, logrus.WarnLevel},
		{logger.ErrorLevel, zapcore.ErrorLevel, zerolog.ErrorLevel, logrus.ErrorLevel},
		{logger.CriticalLevel, zapcore.ErrorLevel, zerolog.FatalLevel, logrus.ErrorLevel},
	} {
		assert.Equal(t, tc.zap, ZapLevel(tc.severity), tc.severity.Name())
		assert.Equal(t, tc.zerolog, ZerologLevel(tc.severity), tc.severity.Name())
		assert.Equal(t, tc.logrus, LogrusLevel(tc.severity), tc.severity.Name())
	}
}

// lockedBuffer is written by klog from its own lock.
type lockedBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

func TestNewBackends(t *testing.T) {
	for _, name := range []string{"zap", "zerolog", "logrus", "klog"} {
		t.Run(name, func(t *testing.T) {
			out := &lockedBuffer{}
			log, err := New(name, logger.Config{
				AppName: "grafik",
				Level:   logger.WarningLevel,
				Output:  out,
			}, "instance-1")
			require.NoError(t, err)

			log.Info("hidden %d", 1)
			log.Warn("shown %d", 2)
			log.Critical("shown %d", 3)

			leveler, ok := log.(logger.Leveler)
			require.True(t, ok)
			leveler.SetLevel(logger.InfoLevel)
			log.Info("late %d", 4)
			Release(log)

			text := out.String()
			assert.NotContains(t, text, "hidden 1")
			assert.Contains(t, text, "shown 2")
			assert.Contains(t, text, "shown 3")
			assert.Contains(t, text, "late 4")
			if name != "klog" {
				assert.Contains(t, text, "instance-1")
			}
		})
	}
}

func TestNewStdBackend(t *testing.T) {
	var out bytes.Buffer
	log, err := New("std", logger.Config{AppName: "grafik", Output: &out, ForceLocal: true}, "ignored")
	require.NoError(t, err)

	std, ok := log.(*logger.StdLogger)
	require.True(t, ok)
	assert.Equal(t, "local", std.InstanceID())
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("syslog", logger.DefaultConfig(), "")
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestKlogCriticalPrefix(t *testing.T) {
	out := &lockedBuffer{}
	log, err := New("klog", logger.Config{Level: logger.TraceLevel, Output: out}, "")
	require.NoError(t, err)

	log.Trace("deep %s", "details")
	log.Critical("%d%% full", 100)
	Release(log)

	text := out.String()
	assert.Contains(t, text, "deep details")
	assert.Contains(t, text, "CRITICAL 100% full")
}
