// Package camerathread provides the dedicated camera thread. Every piece of capture session state
// is confined to one Thread and every platform callback is delivered through it, so the session
// needs no locks.
package camerathread

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/camsession/logging"
	"go.viam.com/camsession/utils"
)

var (
	// ErrWrongThread is the panic value of CheckIsOnThread when called from another thread.
	ErrWrongThread = errors.New("wrong thread")
	// ErrClosed is returned when a task is submitted to a closed Thread.
	ErrClosed = errors.New("camera thread is closed")
)

// Thread is a single goroutine, locked to its own OS thread, that runs posted tasks in order.
type Thread struct {
	name   string
	logger logging.Logger

	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}

	threadID atomic.Int64
	workers  utils.StoppableWorkers
}

// New starts a Thread. It returns once the thread is ready to accept work.
func New(name string, logger logging.Logger) *Thread {
	t := &Thread{
		name:   name,
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
	t.threadID.Store(-1)

	ready := make(chan struct{})
	t.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
		t.loop(ctx, ready)
	})
	<-ready
	return t
}

// Name returns the name given to New.
func (t *Thread) Name() string {
	return t.name
}

func (t *Thread) loop(ctx context.Context, ready chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	t.threadID.Store(currentThreadID())
	close(ready)
	defer t.threadID.Store(-1)

	for {
		select {
		case <-ctx.Done():
			t.mu.Lock()
			t.closed = true
			t.mu.Unlock()
			// Tasks posted before Close still run so that callers blocked in Run are released.
			t.drain()
			return
		case <-t.wake:
			t.drain()
		}
	}
}

func (t *Thread) drain() {
	for {
		t.mu.Lock()
		if len(t.queue) == 0 {
			t.mu.Unlock()
			return
		}
		task := t.queue[0]
		t.queue[0] = nil
		t.queue = t.queue[1:]
		t.mu.Unlock()

		task()
	}
}

// Post enqueues task to run on the thread. It reports false if the thread has been closed, in
// which case the task is dropped.
func (t *Thread) Post(task func()) bool {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.logger.Debugw("dropping task posted to closed thread", "thread", t.name)
		return false
	}
	t.queue = append(t.queue, task)
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
	return true
}

// Run executes task on the thread and waits for it to finish. Called from the thread itself, the
// task runs inline.
func (t *Thread) Run(task func()) error {
	if t.IsCurrent() {
		task()
		return nil
	}
	done := make(chan struct{})
	if !t.Post(func() {
		defer close(done)
		task()
	}) {
		return ErrClosed
	}
	<-done
	return nil
}

// IsCurrent reports whether the caller is running on this thread.
func (t *Thread) IsCurrent() bool {
	return t.threadID.Load() == currentThreadID()
}

// CheckIsOnThread panics with ErrWrongThread unless the caller is running on this thread.
// Touching camera state from another thread is a programming error, not a runtime condition.
func (t *Thread) CheckIsOnThread() {
	if !t.IsCurrent() {
		panic(errors.Wrapf(ErrWrongThread, "expected to run on %q", t.name))
	}
}

// Close stops the thread after running every task that was already posted.
func (t *Thread) Close() {
	t.workers.Stop()
}
