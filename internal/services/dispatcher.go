package services

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Dispatcher runs each inbound event on its own goroutine, detached from the
// HTTP request that delivered it. Events are not ordered relative to each other.
type Dispatcher struct {
	wg     sync.WaitGroup
	logger *slog.Logger
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

// Go starts fn. The context keeps the request's values but not its deadline
// or cancellation.
func (d *Dispatcher) Go(ctx context.Context, name string, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				d.logger.Error("event handler panicked",
					"component", "dispatcher",
					"task", name,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn(ctx)
	}()
}

// Wait blocks until every started task has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
