package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return withNotify(parent, func(ch chan<- os.Signal) func() {
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		return func() { signal.Stop(ch) }
	})
}

func withNotify(parent context.Context, notify func(ch chan<- os.Signal) (stop func())) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 1)
	stop := notify(ch)

	go func() {
		defer stop()
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			slog.Info("signal received", slog.String("signal", sig.String()))
			cancel()
		}
	}()

	return ctx, cancel
}

// Drain runs stop and gives it until timeout to return. It reports whether
// stop finished in time; force runs otherwise.
func Drain(timeout time.Duration, stop func(), force func()) bool {
	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		if force != nil {
			force()
		}
		return false
	}
}
