package journal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grafik/pkg/logger"
)

// memoryStore keeps the stored batches and fails on demand.
type memoryStore struct {
	lock    sync.Mutex
	records []Record
	batches int
	fail    error
}

func (m *memoryStore) Store(ctx context.Context, records []Record) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.fail != nil {
		return m.fail
	}

	m.batches++
	m.records = append(m.records, records...)
	return nil
}

func (m *memoryStore) setFail(err error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.fail = err
}

func (m *memoryStore) stored() []Record {
	m.lock.Lock()
	defer m.lock.Unlock()

	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

func newTestJournal(t *testing.T, store Store, config Config) *Journal {
	t.Helper()

	j, err := New(store, config, Source{AppName: "grafik", InstanceID: "id-1"}, nil)
	require.NoError(t, err)
	t.Cleanup(j.Release)

	return j
}

func TestJournalFlushesRecords(t *testing.T) {
	store := &memoryStore{}
	j := newTestJournal(t, store, Config{Interval: time.Hour, Capacity: 10, Level: logger.DebugLevel})

	j.Trace("dropped by level")
	j.Debug("value %d", 1)
	j.Critical("down %s", "now")
	assert.Equal(t, 2, j.Pending())

	require.NoError(t, j.Flush(context.Background()))
	assert.Equal(t, 0, j.Pending())

	records := store.stored()
	require.Len(t, records, 2)
	assert.Equal(t, logger.DebugLevel, records[0].Level)
	assert.Equal(t, "value 1", records[0].Message)
	assert.Equal(t, logger.CriticalLevel, records[1].Level)
	assert.Equal(t, "down now", records[1].Message)
	assert.Equal(t, "grafik", records[1].AppName)
	assert.Equal(t, "id-1", records[1].InstanceID)
	assert.False(t, records[1].Time.IsZero())

	// Nothing to do for an empty buffer.
	require.NoError(t, j.Flush(context.Background()))
	assert.Equal(t, 1, store.batches)
}

func TestJournalDropsOldestWhenFull(t *testing.T) {
	store := &memoryStore{}
	j := newTestJournal(t, store, Config{Interval: time.Hour, Capacity: 3})

	for i := 0; i < 5; i++ {
		j.Error("record %d", i)
	}

	assert.Equal(t, uint64(2), j.Dropped())
	require.NoError(t, j.Flush(context.Background()))

	var messages []string
	for _, r := range store.stored() {
		messages = append(messages, r.Message)
	}
	assert.Equal(t, []string{"record 2", "record 3", "record 4"}, messages)
}

func TestJournalRequeuesFailedBatch(t *testing.T) {
	store := &memoryStore{fail: errors.New("unavailable")}
	j := newTestJournal(t, store, Config{Interval: time.Hour, Capacity: 4})

	j.Info("a")
	j.Info("b")

	err := j.Flush(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.fail))
	assert.Equal(t, 2, j.Pending())

	j.Warn("c")
	j.Warn("d")
	j.Warn("e")
	assert.Equal(t, uint64(1), j.Dropped())

	store.setFail(nil)
	require.NoError(t, j.Flush(context.Background()))

	var messages []string
	for _, r := range store.stored() {
		messages = append(messages, r.Message)
	}
	assert.Equal(t, []string{"b", "c", "d", "e"}, messages)
}

func TestJournalBackgroundFlush(t *testing.T) {
	store := &memoryStore{}
	j := newTestJournal(t, store, Config{Interval: 5 * time.Millisecond, Capacity: 10})

	j.Info("shipped in the background")

	assert.Eventually(t, func() bool {
		return len(store.stored()) == 1
	}, time.Second, time.Millisecond)
}

func TestJournalCloseFlushesAndRejects(t *testing.T) {
	store := &memoryStore{}
	j, err := New(store, Config{Interval: time.Hour, Capacity: 10}, Source{}, nil)
	require.NoError(t, err)

	j.Error("last words")
	require.NoError(t, j.Close())
	assert.Len(t, store.stored(), 1)

	j.Error("ignored")
	assert.Equal(t, 0, j.Pending())
	assert.Equal(t, ErrClosed, j.Close())
}

func TestJournalValidation(t *testing.T) {
	_, err := New(nil, DefaultConfig(), Source{}, nil)
	assert.Error(t, err)

	_, err = New(&memoryStore{}, Config{Interval: time.Second}, Source{}, nil)
	assert.Error(t, err)
}

func TestJournalParseConfiguration(t *testing.T) {
	defer viper.Reset()

	assert.Equal(t, DefaultConfig(), ParseConfiguration())

	viper.Set("Journal.Interval", "250ms")
	viper.Set("Journal.Capacity", 42)
	viper.Set("Journal.Level", "warn")
	viper.Set("Journal.Timeout", "1s")

	config := ParseConfiguration()
	assert.Equal(t, 250*time.Millisecond, config.Interval)
	assert.Equal(t, 42, config.Capacity)
	assert.Equal(t, logger.WarningLevel, config.Level)
	assert.Equal(t, time.Second, config.Timeout)

	viper.Set("Journal.Capacity", -1)
	viper.Set("Journal.Level", "shout")
	config = ParseConfiguration()
	assert.Equal(t, 1000, config.Capacity)
	assert.Equal(t, logger.InfoLevel, config.Level)
}
