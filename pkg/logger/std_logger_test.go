package logger

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// safeBuffer allows the logging routine and the test to share
// the output buffer.
type safeBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) lines() []string {
	b.lock.Lock()
	defer b.lock.Unlock()

	out := strings.TrimRight(b.buf.String(), "\n")
	if len(out) == 0 {
		return nil
	}
	return strings.Split(out, "\n")
}

func TestStdLoggerLineLayout(t *testing.T) {
	out := &safeBuffer{}
	log := NewStdLoggerWithConfig(Config{
		AppName: "grafik",
		Level:   TraceLevel,
		Output:  out,
	}, "1234")

	log.Info("hello %s", "world")

	lines := out.lines()
	require.Len(t, lines, 1)
	assert.Regexp(t, regexp.MustCompile(`^\[grafik\] \[1234\] \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \[info\] hello world$`), lines[0])
}

func TestStdLoggerColoredHeader(t *testing.T) {
	out := &safeBuffer{}
	log := NewStdLoggerWithConfig(Config{
		AppName: "grafik",
		Level:   TraceLevel,
		Color:   true,
		Output:  out,
	}, "")

	log.Critical("boom")

	lines := out.lines()
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], FormatWithBrackets("grafik", Magenta)+" "+FormatWithBrackets("local", Magenta)))
	assert.Contains(t, lines[0], CriticalLevel.String()+" boom")
}

func TestStdLoggerLevelFiltering(t *testing.T) {
	out := &safeBuffer{}
	log := NewStdLoggerWithConfig(Config{
		Level:  WarningLevel,
		Output: out,
	}, "id")

	log.Trace("t")
	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")
	log.Critical("c")

	lines := out.lines()
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "[warning] w"))
	assert.True(t, strings.HasSuffix(lines[1], "[error] e"))
	assert.True(t, strings.HasSuffix(lines[2], "[critical] c"))

	log.SetLevel(TraceLevel)
	assert.Equal(t, TraceLevel, log.Level())
	log.Trace("now visible")
	assert.Len(t, out.lines(), 4)
}

func TestStdLoggerBufferedReleaseDrains(t *testing.T) {
	out := &safeBuffer{}
	log := NewStdLoggerWithConfig(Config{
		Level:  TraceLevel,
		Buffer: 4,
		Output: out,
	}, "id")

	for i := 0; i < 100; i++ {
		log.Debug("message %d", i)
	}
	log.Release()

	lines := out.lines()
	require.Len(t, lines, 100)
	for i, line := range lines {
		assert.True(t, strings.HasSuffix(line, "[debug] message "+strconv.Itoa(i)), line)
	}

	// Posting after the release is silently dropped.
	log.Error("late")
	log.Release()
	assert.Len(t, out.lines(), 100)
}

func TestStdLoggerFormatsAtCallTime(t *testing.T) {
	out := &safeBuffer{}
	log := NewStdLoggerWithConfig(Config{
		Level:  TraceLevel,
		Buffer: 10,
		Output: out,
	}, "id")

	values := []int{1, 2}
	log.Info("%v", values)
	values[0] = 42
	log.Release()

	lines := out.lines()
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], "[1 2]"))
}

func TestStdLoggerForceLocal(t *testing.T) {
	log := NewStdLoggerWithConfig(Config{ForceLocal: true, Output: &safeBuffer{}}, "abcd")
	assert.Equal(t, "local", log.InstanceID())

	log = NewStdLoggerWithConfig(Config{Output: &safeBuffer{}}, "abcd")
	assert.Equal(t, "abcd", log.InstanceID())
}

func TestParseConfiguration(t *testing.T) {
	defer viper.Reset()

	config := ParseConfiguration()
	assert.Equal(t, "Unknown app", config.AppName)
	assert.Equal(t, InfoLevel, config.Level)
	assert.Equal(t, 500, config.Buffer)
	assert.True(t, config.Color)

	viper.Set("Logger.Name", "grafik")
	viper.Set("Logger.Environment", "production")
	viper.Set("Logger.ForceLocal", true)
	viper.Set("Logger.Level", "error")
	viper.Set("Logger.Buffer", 12)
	viper.Set("Logger.Color", false)

	config = ParseConfiguration()
	assert.Equal(t, "grafik", config.AppName)
	assert.Equal(t, "production", config.Environment)
	assert.True(t, config.ForceLocal)
	assert.Equal(t, ErrorLevel, config.Level)
	assert.Equal(t, 12, config.Buffer)
	assert.False(t, config.Color)

	viper.Set("Logger.Level", "unheard of")
	assert.Equal(t, InfoLevel, ParseConfiguration().Level)
}
