// Package lifecycle coordinates startup hooks, interrupt-driven cancellation,
// and bounded shutdown for a long-running run.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator owns two contexts. The run context is cancelled by Interrupt
// so dispatchers stop handing out new work. The root context is cancelled
// only by Shutdown, which releases the cleanup hooks; resources such as
// database connections stay open while in-flight work finishes.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelCauseFunc
	runCtx     context.Context
	runCancel  context.CancelCauseFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup

	mu          sync.Mutex
	startupErrs []error
	ready       bool
}

// ErrInterrupted is the cancellation cause recorded when a signal arrives.
var ErrInterrupted = errors.New("interrupted")

// New creates a Coordinator whose context derives from parent.
func New(parent context.Context) *Coordinator {
	ctx, cancel := context.WithCancelCause(parent)
	runCtx, runCancel := context.WithCancelCause(ctx)
	return &Coordinator{
		ctx:       ctx,
		cancel:    cancel,
		runCtx:    runCtx,
		runCancel: runCancel,
	}
}

// Context returns the root context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// RunContext returns the context for dispatching work, cancelled on
// interrupt or shutdown.
func (c *Coordinator) RunContext() context.Context {
	return c.runCtx
}

// OnStartup registers a function to run concurrently during startup.
// Errors from all hooks are joined and reported by WaitForStartup.
func (c *Coordinator) OnStartup(fn func() error) {
	c.startupWg.Go(func() {
		if err := fn(); err != nil {
			c.mu.Lock()
			c.startupErrs = append(c.startupErrs, err)
			c.mu.Unlock()
		}
	})
}

// OnShutdown registers a function to run concurrently during shutdown.
// Hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// Ready reports whether startup completed without error.
func (c *Coordinator) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// WaitForStartup blocks until all startup hooks return.
func (c *Coordinator) WaitForStartup() error {
	c.startupWg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := errors.Join(c.startupErrs...); err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	c.ready = true
	return nil
}

// Interrupt cancels the run context with ErrInterrupted as the cause.
// The root context and shutdown hooks are unaffected.
func (c *Coordinator) Interrupt() {
	c.runCancel(ErrInterrupted)
}

// Interrupted reports whether the run context was cancelled by Interrupt.
func (c *Coordinator) Interrupted() bool {
	return errors.Is(context.Cause(c.runCtx), ErrInterrupted)
}

// NotifyOnSignal interrupts the coordinator on SIGINT or SIGTERM.
// The returned function stops signal delivery.
func (c *Coordinator) NotifyOnSignal() (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			c.Interrupt()
		case <-done:
		case <-c.runCtx.Done():
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(done)
		})
	}
}

// Shutdown cancels the context and waits for shutdown hooks to complete
// within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.runCancel(context.Canceled)
	c.cancel(context.Canceled)

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
