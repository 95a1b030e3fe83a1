package queue

import "errors"

// ErrClosed is returned when enqueueing on a closed queue.
var ErrClosed = errors.New("queue closed")

// ErrFull is returned when the queue is at capacity.
var ErrFull = errors.New("queue full")
