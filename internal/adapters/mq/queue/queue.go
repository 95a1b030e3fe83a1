// Package queue holds client mutations between their optimistic apply and
// their dispatch to the server.
package queue

import (
	"context"
	"sync"

	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Mutation is the payload flowing through the queue.
type Mutation = model.Mutation

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a mutation. It never blocks; a full or closed queue
	// returns an error.
	Enqueue(ctx context.Context, m Mutation) error

	// Dequeue returns a channel delivering mutations in enqueue order. The
	// channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Mutation

	// Len returns the current number of queued mutations.
	Len(ctx context.Context) int

	// Close stops accepting mutations.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	mutations chan Mutation
	capacity  int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.mutations = make(chan Mutation, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a mutation to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, m Mutation) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return ctx.Err()
	default:
	}

	select {
	case q.mutations <- m:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.mutations))
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that will receive mutations as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Mutation {
	out := make(chan Mutation)
	go func() {
		defer close(out)
		for m := range q.mutations {
			select {
			case out <- m:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.mutations))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued mutations.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.mutations)
	metrics.UpdateQueueSize(size)
	return size
}

// Close stops accepting mutations. Queued mutations remain readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.mutations)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
