// Package worker drains the mutation queue and hands each mutation to a
// dispatcher, one at a time and in queue order.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/agenda/internal/adapters/mq/queue"
	"github.com/okian/agenda/pkg/logger"
	"github.com/okian/agenda/pkg/metrics"
)

// Mutation abstracts what workers read off the queue.
type Mutation = queue.Mutation

// Dispatcher delivers one mutation to its destination.
type Dispatcher interface {
	Dispatch(ctx context.Context, m Mutation) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, m Mutation) error

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, m Mutation) error { //nolint:gocritic // hugeParam: mirrors the queue payload
	return f(ctx, m)
}

// Queue defines how workers receive mutations.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Mutation
}

// Worker processes mutations until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after the mutation in flight.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker with a single consumer, which keeps
// mutations of the same event in the order they were made.
type InMemoryWorker struct {
	queue      Queue
	dispatcher Dispatcher
	name       string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, d Dispatcher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      q,
		dispatcher: d,
		name:       "worker",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	mutations := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case m, ok := <-mutations:
			if !ok {
				return
			}
			if err := w.process(ctx, m); err != nil {
				w.logger.Warn(ctx, "mutation dispatch failed", logger.Error(err))
			}
		}
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// Shutdown stops the worker and waits for Run to return or ctx to end.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, m Mutation) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	err := w.dispatcher.Dispatch(ctx, m)
	metrics.RecordDispatchLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordErrorByComponent("worker", "dispatch_failed")
		return fmt.Errorf("dispatch %s %s: %w", m.Kind, m.EventID, err)
	}
	return nil
}
