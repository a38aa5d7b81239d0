// Package utils contains small helpers shared by the camera session packages.
package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers is a group of goroutines sharing one context that is canceled by Stop.
type StoppableWorkers interface {
	AddWorkers(...func(context.Context))
	Stop()
	Context() context.Context
}

// stoppableWorkers is only handed out through the StoppableWorkers interface so the WaitGroup is
// never copied.
type stoppableWorkers struct {
	mu      sync.Mutex
	ctx     context.Context
	cancel  func()
	workers sync.WaitGroup
}

// NewStoppableWorkers starts each function in its own goroutine.
func NewStoppableWorkers(funcs ...func(context.Context)) StoppableWorkers {
	ctx, cancel := context.WithCancel(context.Background())
	sw := &stoppableWorkers{ctx: ctx, cancel: cancel}
	sw.AddWorkers(funcs...)
	return sw
}

// AddWorkers starts more goroutines. It does nothing once Stop has been called.
func (sw *stoppableWorkers) AddWorkers(funcs ...func(context.Context)) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.ctx.Err() != nil {
		return
	}
	sw.workers.Add(len(funcs))
	for _, f := range funcs {
		goutils.PanicCapturingGo(func() {
			defer sw.workers.Done()
			f(sw.ctx)
		})
	}
}

// Stop cancels the shared context and waits for every goroutine to return. It may be called more
// than once.
func (sw *stoppableWorkers) Stop() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.cancel()
	sw.workers.Wait()
}

// Context returns the context canceled by Stop.
func (sw *stoppableWorkers) Context() context.Context {
	return sw.ctx
}
