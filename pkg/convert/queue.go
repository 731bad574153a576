package convert

import (
	"context"
	"sync"

	"github.com/PhantomInTheWire/image-toolbox/pkg/codec"
)

// Queue holds the files waiting for, or done with, conversion. Its methods may
// be called from several goroutines; Convert holds the lock until the batch is
// done, so Add, Remove and the listings wait for it. Items handed out by the
// queue must not be read while a Convert is running.
type Queue struct {
	mu    sync.Mutex
	items []*Item
}

func NewQueue() *Queue {
	return &Queue{}
}

// Add queues a file and returns its item.
func (q *Queue) Add(name string, data []byte) *Item {
	it := &Item{ID: newID(), Name: name, Data: data}
	q.mu.Lock()
	q.items = append(q.items, it)
	q.mu.Unlock()
	return it
}

// Remove drops the item with the given id and releases its buffers.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, it := range q.items {
		if it.ID == id {
			release(it)
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a snapshot of the queued items.
func (q *Queue) Items() []*Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*Item(nil), q.items...)
}

// Converted returns the items holding an output, in queue order.
func (q *Queue) Converted() []*Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*Item
	for _, it := range q.items {
		if it.Done() {
			out = append(out, it)
		}
	}
	return out
}

// Failed returns the items whose last conversion failed.
func (q *Queue) Failed() []*Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*Item
	for _, it := range q.items {
		if it.Err != nil {
			out = append(out, it)
		}
	}
	return out
}

// Convert runs All over the queued items.
func (q *Queue) Convert(ctx context.Context, f codec.Format) {
	q.mu.Lock()
	defer q.mu.Unlock()
	All(ctx, q.items, f)
}

// Release empties the queue and drops every buffer it held.
func (q *Queue) Release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, it := range q.items {
		release(it)
	}
	q.items = nil
}

func release(it *Item) {
	it.Data = nil
	it.Converted = nil
}
