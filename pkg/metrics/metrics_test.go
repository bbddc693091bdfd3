package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grafik/pkg/logger"
	"grafik/pkg/logger/logtest"
)

func TestCountingLoggerCountsAndForwards(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := logtest.NewRecorder()

	log, err := NewCountingLogger(rec, reg)
	require.NoError(t, err)

	args := []interface{}{"a", 1}
	log.Error("%s %d", args...)
	log.Error("again")
	log.Trace("t")

	calls := rec.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, logger.ErrorLevel, calls[0].Level)
	assert.Same(t, &args[0], &calls[0].Args[0])

	expected := `
# HELP grafik_logger_records_total The number of log records emitted through the facade, per severity
# TYPE grafik_logger_records_total counter
grafik_logger_records_total{severity="critical"} 0
grafik_logger_records_total{severity="debug"} 0
grafik_logger_records_total{severity="error"} 2
grafik_logger_records_total{severity="info"} 0
grafik_logger_records_total{severity="trace"} 1
grafik_logger_records_total{severity="warning"} 0
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "grafik_logger_records_total"))
	assert.Same(t, rec, log.Unwrap())
}

func TestCountingLoggersShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewCountingLogger(logger.Discard, reg)
	require.NoError(t, err)
	second, err := NewCountingLogger(logger.Discard, reg)
	require.NoError(t, err)

	first.Warn("w")
	second.Warn("w")

	count, err := testutil.GatherAndCount(reg, "grafik_logger_records_total")
	require.NoError(t, err)
	assert.Equal(t, 6, count)
	assert.Equal(t, float64(2), testutil.ToFloat64(second.counters[logger.WarningLevel]))
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	log, err := NewCountingLogger(logger.Discard, reg)
	require.NoError(t, err)
	log.Info("i")

	server := httptest.NewServer(Handler(reg))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `grafik_logger_records_total{severity="info"} 1`)
}
