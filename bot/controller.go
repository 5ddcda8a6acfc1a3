package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Nehilsa2/twitter_automation/settings"
	"github.com/Nehilsa2/twitter_automation/stealth"
)

// State is the lifecycle state of the automation loop.
type State int

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return "unknown"
}

// Status is a side-effect-free view of the controller.
type Status struct {
	State     State
	StartedAt time.Time // zero unless the loop is active
	LastError string    // set when the loop last terminated abnormally
	Counters  []stealth.Stats
}

// DriverFactory builds the browser driver for one bot run from a
// configuration snapshot.
type DriverFactory func(cfg settings.Config) (Driver, error)

// Controller owns the running/stopped state of the automation loop. At most
// one loop instance exists at a time; all transitions go through one mutex.
type Controller struct {
	store     *settings.Store
	newDriver DriverFactory
	log       *zap.Logger

	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	done      chan struct{}
	loop      *loop
	startedAt time.Time
	lastErr   error
}

// NewController wires a controller to its settings store and driver factory.
func NewController(store *settings.Store, factory DriverFactory, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{store: store, newDriver: factory, log: log}
}

// Start snapshots the current configuration, initializes the driver and
// launches the automation loop on a background goroutine. It returns once the
// loop has signalled its first iteration, with the state at Running. Fails
// with ErrAlreadyRunning unless the controller is Stopped. A driver
// initialization failure leaves the controller Stopped with the failure
// recorded as the last error.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.state != Stopped {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.state = Starting
	c.lastErr = nil
	c.startedAt = time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	cfg := c.store.Snapshot()
	c.mu.Unlock()

	driver, err := c.newDriver(cfg)
	if err != nil {
		err = fmt.Errorf("initialize browser driver: %w", err)
		cancel()
		close(done)
		c.mu.Lock()
		c.state = Stopped
		c.cancel = nil
		c.startedAt = time.Time{}
		if !errors.Is(err, context.Canceled) {
			c.lastErr = err
		}
		c.mu.Unlock()
		return err
	}

	l := newLoop(cfg, c.store, driver, c.log)
	ready := make(chan struct{})

	c.mu.Lock()
	c.loop = l
	c.mu.Unlock()

	go func() {
		defer close(done)
		runErr := l.run(ctx, ready)
		if closeErr := driver.Close(); closeErr != nil {
			c.log.Warn("closing browser driver failed", zap.Error(closeErr))
		}
		c.finish(runErr)
	}()

	<-ready

	c.mu.Lock()
	if c.state == Starting {
		c.state = Running
	}
	c.mu.Unlock()

	c.log.Info("bot started", zap.String("query", cfg.SearchQuery))
	return nil
}

// Stop requests cooperative cancellation and transitions to Stopping. It does
// not wait for the loop to exit; the goroutine moves the state to Stopped once
// it has fully unwound, so Status never reports Stopped while the loop still
// runs. Fails with ErrNotRunning when the controller is already Stopped.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Stopped {
		return ErrNotRunning
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.state = Stopping
	c.log.Info("bot stop requested")
	return nil
}

// Wait blocks until the current loop goroutine (if any) has exited.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Status returns the current lifecycle state, the start time while active,
// the last abnormal-termination error, and live action counters.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{State: c.state}
	if c.state != Stopped {
		st.StartedAt = c.startedAt
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	if c.loop != nil && c.state != Stopped {
		for _, kind := range stealth.Kinds {
			st.Counters = append(st.Counters, c.loop.limiter.Stats(kind))
		}
	}
	return st
}

// finish records how the loop ended and completes the transition to Stopped.
// Cancellation is a clean exit; anything else is surfaced via Status.
func (c *Controller) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		c.lastErr = err
		c.log.Error("automation loop terminated", zap.Error(err))
	} else {
		c.log.Info("automation loop exited")
	}
	c.state = Stopped
	c.cancel = nil
	c.loop = nil
	c.startedAt = time.Time{}
}
