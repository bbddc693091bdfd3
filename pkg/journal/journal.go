package journal

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/viper"

	"grafik/pkg/background"
	"grafik/pkg/logger"
)

// Record :
// Describes a log record once rendered, as it is handed to
// the stores.
type Record struct {
	Time       time.Time       `json:"time"`
	Level      logger.Severity `json:"level"`
	Message    string          `json:"message"`
	AppName    string          `json:"app"`
	InstanceID string          `json:"instance"`
}

// Store :
// Describes a destination for batches of records. It is
// called from a single routine at a time. A store should
// either persist the whole batch or return an error, in
// which case the batch is retried later.
type Store interface {
	Store(ctx context.Context, records []Record) error
}

// ErrClosed indicates that the journal has been closed.
var ErrClosed = fmt.Errorf("journal is closed")

// Config :
// Defines the behavior of the journal.
//
// The `Interval` is the time between two flushes.
// The default value is 2 seconds.
//
// The `Capacity` is the maximum number of records kept in
// memory while waiting to be flushed. When it is reached
// the oldest records are dropped.
// The default value is 1000.
//
// The `Level` is the minimum severity of the records kept.
// The default value is `info`.
//
// The `Timeout` bounds the duration of a single flush.
// The default value is 5 seconds.
type Config struct {
	Interval time.Duration
	Capacity int
	Level    logger.Severity
	Timeout  time.Duration
}

// Source :
// Identifies the application producing the records.
type Source struct {
	AppName    string
	InstanceID string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Interval: 2 * time.Second,
		Capacity: 1000,
		Level:    logger.InfoLevel,
		Timeout:  5 * time.Second,
	}
}

// ParseConfiguration :
// Reads the `Journal.*` keys of the configuration, keeping the
// default value of each key which is missing or invalid.
func ParseConfiguration() Config {
	config := DefaultConfig()

	if viper.IsSet("Journal.Interval") {
		if d := viper.GetDuration("Journal.Interval"); d > 0 {
			config.Interval = d
		}
	}
	if viper.IsSet("Journal.Capacity") {
		if c := viper.GetInt("Journal.Capacity"); c > 0 {
			config.Capacity = c
		}
	}
	if viper.IsSet("Journal.Level") {
		if level, err := logger.ParseSeverity(viper.GetString("Journal.Level")); err == nil {
			config.Level = level
		}
	}
	if viper.IsSet("Journal.Timeout") {
		if d := viper.GetDuration("Journal.Timeout"); d > 0 {
			config.Timeout = d
		}
	}

	return config
}

// Journal :
// A logger accumulating the records in memory and shipping
// them periodically to a store from a background process.
// Logging never blocks on the store: when the store is too
// slow or unavailable the buffer fills up and the oldest
// records are dropped.
//
// The `store` receives the batches of records.
//
// The `config` defines the flushing behavior.
//
// The `source` is attached to each record.
//
// The `log` is used to report failures of the journal itself.
// It must not be a logger feeding this journal.
//
// The `lock` protects the `buffer` and `closed` values.
//
// The `flushLock` serializes the flushes.
//
// The `dropped` counts the records lost because the buffer
// was full.
//
// The `process` triggers the periodic flushes.
type Journal struct {
	store  Store
	config Config
	source Source
	log    logger.Logger

	lock      sync.Mutex
	buffer    []Record
	closed    bool
	flushLock sync.Mutex
	dropped   atomic.Uint64

	process *background.Process
}

// New :
// Creates a journal shipping records to `store` and starts
// its flushing process.
//
// The `store` is the destination of the records.
//
// The `config` defines the flush interval and capacity.
//
// The `source` identifies the application in the records.
//
// The `log` reports the failures of the journal, `nil` to
// ignore them.
//
// Returns the created journal along with any error.
func New(store Store, config Config, source Source, log logger.Logger) (*Journal, error) {
	if store == nil {
		return nil, fmt.Errorf("cannot create journal from nil store")
	}
	if config.Capacity <= 0 {
		return nil, fmt.Errorf("invalid journal capacity %d", config.Capacity)
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if log == nil {
		log = logger.Discard
	}

	j := &Journal{
		store:  store,
		config: config,
		source: source,
		log:    log,
		buffer: make([]Record, 0, config.Capacity),
	}

	j.process = background.NewProcess(config.Interval, log).
		WithModule("journal").
		WithOperation(func(ctx context.Context) (bool, error) {
			err := j.Flush(ctx)
			return err == nil, err
		})

	if err := j.process.Start(); err != nil {
		return nil, err
	}

	return j, nil
}

func (j *Journal) Trace(format string, args ...interface{}) {
	j.append(logger.TraceLevel, format, args)
}

func (j *Journal) Debug(format string, args ...interface{}) {
	j.append(logger.DebugLevel, format, args)
}

func (j *Journal) Info(format string, args ...interface{}) {
	j.append(logger.InfoLevel, format, args)
}

func (j *Journal) Warn(format string, args ...interface{}) {
	j.append(logger.WarningLevel, format, args)
}

func (j *Journal) Critical(format string, args ...interface{}) {
	j.append(logger.CriticalLevel, format, args)
}

func (j *Journal) Error(format string, args ...interface{}) {
	j.append(logger.ErrorLevel, format, args)
}

// append :
// Renders the record and pushes it at the end of the buffer,
// dropping the oldest one if needed.
func (j *Journal) append(level logger.Severity, format string, args []interface{}) {
	if level < j.config.Level {
		return
	}

	record := Record{
		Time:       time.Now().UTC(),
		Level:      level,
		Message:    fmt.Sprintf(format, args...),
		AppName:    j.source.AppName,
		InstanceID: j.source.InstanceID,
	}

	j.lock.Lock()
	defer j.lock.Unlock()

	if j.closed {
		return
	}

	// Make room by dropping the oldest record.
	if len(j.buffer) >= j.config.Capacity {
		j.buffer = j.buffer[1:]
		j.dropped.Add(1)
	}
	j.buffer = append(j.buffer, record)
}

// requeue :
// Puts back a batch which could not be stored in front of the
// records received in the meantime. Only the most recent records
// are kept if the capacity is exceeded.
func (j *Journal) requeue(batch []Record) {
	j.lock.Lock()
	defer j.lock.Unlock()

	// The failed batch is older than what was received meanwhile.
	merged := append(batch, j.buffer...)
	if excess := len(merged) - j.config.Capacity; excess > 0 {
		merged = merged[excess:]
		j.dropped.Add(uint64(excess))
	}

	j.buffer = merged
}

// Flush :
// Hands the buffered records to the store. In case the store
// fails the records are kept for the next attempt.
//
// Returns any error returned by the store.
func (j *Journal) Flush(ctx context.Context) error {
	j.flushLock.Lock()
	defer j.flushLock.Unlock()

	// Swap the buffer so that logging is not blocked while the
	// store is writing.
	j.lock.Lock()
	batch := j.buffer
	j.buffer = make([]Record, 0, j.config.Capacity)
	j.lock.Unlock()

	if len(batch) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if err := j.store.Store(ctx, batch); err != nil {
		// Keep the records for the next flush.
		j.requeue(batch)
		return fmt.Errorf("could not store %d record(s) (err: %w)", len(batch), err)
	}

	return nil
}

// Pending returns the number of records waiting to be flushed.
func (j *Journal) Pending() int {
	j.lock.Lock()
	defer j.lock.Unlock()

	return len(j.buffer)
}

// Dropped returns the number of records lost so far.
func (j *Journal) Dropped() uint64 {
	return j.dropped.Load()
}

// Close :
// Stops the flushing process and performs a last flush. The
// records logged afterwards are ignored.
//
// Returns any error raised by the last flush.
func (j *Journal) Close() error {
	j.process.Stop()

	j.lock.Lock()
	if j.closed {
		j.lock.Unlock()
		return ErrClosed
	}
	j.closed = true
	j.lock.Unlock()

	err := j.Flush(context.Background())
	if err != nil {
		j.log.Warn("Lost %d record(s) while closing journal (err: %v)", j.Pending(), err)
	}

	return err
}

// Release closes the journal, ignoring the error.
func (j *Journal) Release() {
	_ = j.Close()
}
