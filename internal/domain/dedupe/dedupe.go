// Package dedupe tracks seen sample IDs so the ingest path stays
// idempotent: resubmitting a session must never count it twice.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Deduper records seen sample IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set so the client can retry a
	// submit that was recorded but never reached the queue.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper keeps the seen set in memory. A doubly-linked list holds
// IDs in arrival order; when the set is full the oldest ID is forgotten
// first. With maxSize <= 0 nothing is ever evicted.
type inMemoryDeduper struct {
	mu      sync.RWMutex
	index   map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates an in-memory deduper. The default capacity
// suits a single-node deployment; tune it with WithMaxSize.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		index:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: 50_000,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.index[id]; ok {
		return true
	}

	if d.maxSize > 0 {
		for len(d.index) >= d.maxSize {
			oldest := d.order.Back()
			if oldest == nil {
				break
			}
			delete(d.index, oldest.Value.(string))
			d.order.Remove(oldest)
		}
	}

	d.index[id] = d.order.PushFront(id)
	return false
}

func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if elem, ok := d.index[id]; ok {
		delete(d.index, id)
		d.order.Remove(elem)
	}
}

// Size returns the number of IDs currently tracked.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return int64(len(d.index))
}
