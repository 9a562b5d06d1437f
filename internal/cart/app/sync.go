package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrSessionChanged marks remote work dropped because the signed-in user changed
// before it could run.
var ErrSessionChanged = errors.New("cart session changed")

// SyncError describes a failed background sync. It never reverts local state.
type SyncError struct {
	Op        string
	UserID    string
	ProductID string
	Err       error

	// Retryable reports a transient failure, such as a timeout or a 5xx answer.
	Retryable bool
}

func (e *SyncError) Error() string {
	if e.ProductID == "" {
		return fmt.Sprintf("cart %s for user %s: %v", e.Op, e.UserID, e.Err)
	}
	return fmt.Sprintf("cart %s %s for user %s: %v", e.Op, e.ProductID, e.UserID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Sync is the background outcome of a cart mutation. Callers that do not care
// about remote persistence can ignore it. Mutations of an anonymous cart return
// a Sync that is already done with a nil Err, as no remote write takes place.
type Sync struct {
	done chan struct{}
	err  error
}

func newSync() *Sync {
	return &Sync{done: make(chan struct{})}
}

func settled(err error) *Sync {
	s := newSync()
	s.finish(err)
	return s
}

func (s *Sync) finish(err error) {
	s.err = err
	close(s.done)
}

func (s *Sync) Done() <-chan struct{} { return s.done }

// Err is nil until Done is closed.
func (s *Sync) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

func (s *Sync) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// serialQueue runs tasks one at a time in push order. The drain goroutine
// exits when the queue is empty.
type serialQueue struct {
	mu      sync.Mutex
	tasks   []func()
	running bool
}

func (q *serialQueue) push(task func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	go q.drain()
}

func (q *serialQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		task()
	}
}
