package logger

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{in: "trace", want: TraceLevel},
		{in: "Verbose", want: TraceLevel},
		{in: "DeBug", want: DebugLevel},
		{in: " info ", want: InfoLevel},
		{in: "warn", want: WarningLevel},
		{in: "WARNING", want: WarningLevel},
		{in: "error", want: ErrorLevel},
		{in: "critical", want: CriticalLevel},
		{in: "fatal", want: CriticalLevel},
		{in: "", wantErr: true},
		{in: "notice", wantErr: true},
	} {
		got, err := ParseSeverity(tc.in)
		if tc.wantErr {
			assert.True(t, errors.Is(err, ErrInvalidSeverity), "ParseSeverity(%q) = %v", tc.in, err)
			continue
		}
		require.NoError(t, err, "ParseSeverity(%q)", tc.in)
		assert.Equal(t, tc.want, got, "ParseSeverity(%q)", tc.in)
	}
}

func TestSeverityOrdering(t *testing.T) {
	all := Severities()
	require.Len(t, all, 6)

	for i := 1; i < len(all); i++ {
		assert.Less(t, int(all[i-1]), int(all[i]))
	}
	assert.Equal(t, CriticalLevel, all[len(all)-1])
}

func TestSeverityNames(t *testing.T) {
	var names []string
	for _, s := range Severities() {
		names = append(names, s.Name())

		back, err := ParseSeverity(s.Name())
		require.NoError(t, err)
		assert.Equal(t, s, back)
	}

	assert.Equal(t, []string{"trace", "debug", "info", "warning", "error", "critical"}, names)
	assert.Equal(t, "unknown", Severity(-1).Name())
	assert.False(t, Severity(6).Valid())
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "\033[1;33m[warning]\033[0m", WarningLevel.String())
	assert.Equal(t, "\033[1;90m[trace]\033[0m", TraceLevel.String())
}

func TestSeverityText(t *testing.T) {
	raw, err := json.Marshal(struct {
		Level Severity `json:"level"`
	}{ErrorLevel})
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":"error"}`, string(raw))

	var payload struct {
		Level Severity `json:"level"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"level":"Debug"}`), &payload))
	assert.Equal(t, DebugLevel, payload.Level)

	assert.Error(t, json.Unmarshal([]byte(`{"level":"loud"}`), &payload))
}

func TestFromStringFallback(t *testing.T) {
	assert.Equal(t, WarningLevel, fromString("bogus", WarningLevel))
	assert.Equal(t, ErrorLevel, fromString("error", WarningLevel))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "[app]", format("app", Magenta, true, false))
	assert.Equal(t, "app", format("app", Magenta, false, false))
	assert.Equal(t, "\033[1;35m[app]\033[0m", FormatWithBrackets("app", Magenta))
	assert.Equal(t, "\033[1;32mok\033[0m", FormatWithNoBrackets("ok", Green))
}
