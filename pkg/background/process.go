package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"grafik/pkg/logger"
)

// Process :
// Runs an operation periodically in a dedicated go routine
// until it is stopped. A failed run can either wait for the
// next tick or be attempted again after a short delay.
//
// The `interval` is the period between two runs.
//
// The `retryInterval` is the delay before attempting a
// failed run again. Defaults to one second.
//
// The `operation` is the periodic work.
//
// The `retry` enables the attempts after a failure.
//
// The `log` receives the failures of the operation.
//
// The `module` prefixes the messages of this process.
//
// The `lock` protects the fields below along with the
// settings changed by the `With*` methods.
//
// The `running` is set while the loop is active.
//
// The `cancel` terminates the loop.
//
// The `waiter` lets `Stop` wait for the loop to exit.
type Process struct {
	interval      time.Duration
	retryInterval time.Duration
	operation     OperationFunc
	retry         bool
	log           logger.Logger
	module        string

	lock    sync.Mutex
	running bool
	cancel  context.CancelFunc
	waiter  sync.WaitGroup
}

// OperationFunc :
// The work run by a process. The context is cancelled when
// the process stops. The boolean reports a successful run,
// which is what stops the retries.
type OperationFunc func(ctx context.Context) (bool, error)

// ErrAlreadyRunning is returned when starting a process twice.
var ErrAlreadyRunning = fmt.Errorf("unable to start already running process")

// ErrInvalidOperation is returned when no operation is set.
var ErrInvalidOperation = fmt.Errorf("invalid operation to start process")

// ErrInvalidInterval is returned for a non positive period.
var ErrInvalidInterval = fmt.Errorf("invalid interval to start process")

// NewProcess :
// Creates a stopped process running every `interval`. The
// operation must be set with `WithOperation` before calling
// `Start`. A `nil` log discards the messages.
func NewProcess(interval time.Duration, log logger.Logger) *Process {
	if log == nil {
		log = logger.Discard
	}

	return &Process{
		interval:      interval,
		retryInterval: 1 * time.Second,
		log:           log,
		module:        "process",
	}
}

// WithModule sets the prefix of the messages of this process.
func (p *Process) WithModule(module string) *Process {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.module = module

	return p
}

// WithRetry :
// Makes the process attempt a failed run again until it
// succeeds or the process is stopped.
func (p *Process) WithRetry() *Process {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.retry = true

	return p
}

// WithRetryInterval sets the delay between two attempts.
func (p *Process) WithRetryInterval(interval time.Duration) *Process {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.retryInterval = interval

	return p
}

// WithOperation sets the periodic work.
func (p *Process) WithOperation(operation OperationFunc) *Process {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.operation = operation

	return p
}

// Running returns whether the main loop is active.
func (p *Process) Running() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.running
}

// Start :
// Launches the loop. The first run happens one interval
// after the call.
func (p *Process) Start() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}
	if p.operation == nil {
		return ErrInvalidOperation
	}
	if p.interval <= 0 {
		return ErrInvalidInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	p.running = true
	p.cancel = cancel
	p.waiter.Add(1)

	go p.activeLoop(ctx)

	return nil
}

// Stop :
// Terminates the loop and waits for an ongoing run to
// complete. Stopping a stopped process does nothing.
func (p *Process) Stop() {
	p.lock.Lock()
	if !p.running {
		p.lock.Unlock()
		return
	}

	p.cancel()
	p.lock.Unlock()

	p.waiter.Wait()
}

// activeLoop :
// Runs the operation at each tick. A panic of the operation
// is reported and ends the loop.
func (p *Process) activeLoop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)

	defer func() {
		ticker.Stop()

		if err := recover(); err != nil {
			p.log.Critical("[%s] Recovered from error in process (err: %v)", p.module, err)
		}

		p.lock.Lock()
		p.running = false
		p.lock.Unlock()

		p.waiter.Done()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.execute(ctx); err != nil {
				p.log.Error("[%s] Caught error while executing process (err: %v)", p.module, err)
			}
		}
	}
}

// execute :
// Performs one run, with the attempts after a failure when
// they are enabled.
func (p *Process) execute(ctx context.Context) error {
	// Copy the settings: they can be changed while running.
	p.lock.Lock()
	operation, retry, wait, module := p.operation, p.retry, p.retryInterval, p.module
	p.lock.Unlock()

	for {
		p.log.Trace("[%s] Executing process", module)

		success, err := operation(ctx)
		if success || !retry {
			return err
		}

		p.log.Debug("[%s] Failed to execute process, retrying in %v (err: %v)", module, wait, err)

		// Wait before the next attempt unless the process stops.
		select {
		case <-ctx.Done():
			return err
		case <-time.After(wait):
		}
	}
}
