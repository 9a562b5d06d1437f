package shutdown

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestWithSignals_CancelsOnSignal(t *testing.T) {
	var ch chan<- os.Signal
	stopped := make(chan struct{})
	ctx, cancel := withNotify(context.Background(), func(c chan<- os.Signal) func() {
		ch = c
		return func() { close(stopped) }
	})
	defer cancel()

	ch <- syscall.SIGTERM

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("notify not stopped")
	}
}

func TestWithSignals_ParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := WithSignals(parent)
	defer cancel()

	cancelParent()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled by parent")
	}
}

func TestDrain(t *testing.T) {
	t.Run("stop in time", func(t *testing.T) {
		forced := false
		if !Drain(time.Second, func() {}, func() { forced = true }) {
			t.Fatal("expected graceful stop")
		}
		if forced {
			t.Fatal("force should not run")
		}
	})

	t.Run("timeout forces", func(t *testing.T) {
		release := make(chan struct{})
		forced := false
		ok := Drain(10*time.Millisecond, func() { <-release }, func() { forced = true; close(release) })
		if ok || !forced {
			t.Fatalf("expected forced stop, ok=%v forced=%v", ok, forced)
		}
	})
}
