// Package queue carries generated candidates from the producer to the
// scoring workers.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Candidate represents the payload type flowing through the queue.
type Candidate = model.Candidate

// Queue provides blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a candidate, waiting while the queue is full.
	// Returns ErrClosed after Close and the context error on cancellation.
	Enqueue(ctx context.Context, c Candidate) error

	// Dequeue returns the channel consumers drain. It is closed by Close
	// once every queued candidate has been received.
	Dequeue() <-chan Candidate

	// Len returns the current number of queued candidates.
	Len() int

	// Close stops accepting candidates.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel. Candidates are
// never dropped; a full queue applies backpressure to the producer.
type InMemoryQueue struct {
	candidates chan Candidate
	capacity   int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.candidates = make(chan Candidate, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueDepth(0)

	return q
}

// Enqueue adds a candidate to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Candidate) error { //nolint:gocritic // hugeParam: candidates are passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}

	select {
	case q.candidates <- c:
		metrics.UpdateQueueDepth(len(q.candidates))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue candidate %d: %w", c.Seq, ctx.Err())
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue) Dequeue() <-chan Candidate {
	return q.candidates
}

// Len returns the current number of queued candidates.
func (q *InMemoryQueue) Len() int {
	size := len(q.candidates)
	metrics.UpdateQueueDepth(size)
	return size
}

// Capacity returns the buffer size.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close gracefully shuts down the queue. Queued candidates remain readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.candidates)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
