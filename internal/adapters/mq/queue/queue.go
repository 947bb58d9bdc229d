// Package queue moves accepted session samples from ingest to the
// processing pipeline.
//
// The only implementation is an in-memory bounded channel. A full queue
// rejects the enqueue; ingest surfaces that as backpressure to clients.
package queue

import (
	"context"
	"sync"

	"github.com/okian/pelota/internal/domain/model"
	"github.com/okian/pelota/pkg/metrics"
)

// defaultCapacity bounds the queue when no option overrides it.
const defaultCapacity = 10_000

// Sample is the payload type flowing through the queue.
type Sample = model.Sample

// Queue hands accepted samples from the ingest handler to the worker pool.
type Queue interface {
	// Enqueue offers s to the pipeline without blocking.
	// Returns false if the queue is full or closed and the sample was dropped.
	Enqueue(ctx context.Context, s Sample) bool

	// Dequeue returns a channel that receives samples as they become
	// available. The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Sample

	// Len reports how many samples are waiting.
	Len(ctx context.Context) int

	// Close stops intake. Consumers drain what remains.
	Close() error

	// IsClosed reports whether Close has been called.
	IsClosed() bool
}

// InMemoryQueue is a bounded channel-backed Queue.
type InMemoryQueue struct {
	samples  chan Sample
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue builds a queue, applying any options over the defaults.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.samples = make(chan Sample, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue offers s to the pipeline without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Sample) bool { //nolint:gocritic // hugeParam: Sample must be passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDrop()
		return false
	}

	select {
	case q.samples <- s:
		metrics.RecordQueueEnqueue()
		q.publishGauges()
		return true
	case <-ctx.Done():
		metrics.RecordQueueDrop()
		return false
	default:
		// Queue is full.
		metrics.RecordQueueDrop()
		return false
	}
}

// Dequeue returns a channel that receives samples as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Sample {
	out := make(chan Sample)
	go func() {
		defer close(out)
		for s := range q.samples {
			select {
			case out <- s:
				metrics.RecordQueueDequeue()
				q.publishGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len reports how many samples are waiting.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	q.publishGauges()
	return len(q.samples)
}

// Close stops intake. Idempotent.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.samples)
	q.closed = true

	return nil
}

// IsClosed reports whether the queue stopped accepting samples.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) publishGauges() {
	size := len(q.samples)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
