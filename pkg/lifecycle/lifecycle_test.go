package lifecycle_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/screener/pkg/lifecycle"
)

func TestNotReadyBeforeStartup(t *testing.T) {
	lc := lifecycle.New(context.Background())
	if lc.Ready() {
		t.Error("should not be ready before WaitForStartup")
	}
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New(context.Background())

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() error {
			count.Add(1)
			return nil
		})
	}

	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup: %v", err)
	}
	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
	if !lc.Ready() {
		t.Error("should be ready after successful startup")
	}
}

func TestStartupErrorsAggregate(t *testing.T) {
	lc := lifecycle.New(context.Background())

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	lc.OnStartup(func() error { return errA })
	lc.OnStartup(func() error { return errB })
	lc.OnStartup(func() error { return nil })

	err := lc.WaitForStartup()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("err = %v, want both hook errors", err)
	}
	if lc.Ready() {
		t.Error("should not be ready after failed startup")
	}
}

func TestInterrupt(t *testing.T) {
	lc := lifecycle.New(context.Background())
	lc.Interrupt()

	select {
	case <-lc.RunContext().Done():
	default:
		t.Fatal("run context should be cancelled after Interrupt")
	}
	if lc.Context().Err() != nil {
		t.Error("root context should survive Interrupt")
	}
	if !lc.Interrupted() {
		t.Error("Interrupted should report true")
	}
}

func TestShutdownIsNotInterrupt(t *testing.T) {
	lc := lifecycle.New(context.Background())

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if lc.Interrupted() {
		t.Error("plain shutdown should not count as interrupt")
	}
	if lc.RunContext().Err() == nil {
		t.Error("shutdown should cancel the run context")
	}
}

func TestShutdownHooksExecute(t *testing.T) {
	lc := lifecycle.New(context.Background())

	var cleaned atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		cleaned.Store(true)
	})

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !cleaned.Load() {
		t.Error("shutdown hook did not execute")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New(context.Background())

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})

	if err := lc.Shutdown(50 * time.Millisecond); err == nil {
		t.Error("expected timeout error, got nil")
	}
}

func TestNotifyOnSignalStop(t *testing.T) {
	lc := lifecycle.New(context.Background())
	stop := lc.NotifyOnSignal()
	stop()
	stop()

	if lc.Interrupted() {
		t.Error("stopping signal delivery should not interrupt")
	}
}
