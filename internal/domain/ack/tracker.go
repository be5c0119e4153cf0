// Package ack remembers which chat messages the bot has already
// acknowledged, so replaying channel history does not process them twice.
package ack

import (
	"container/list"
	"context"
	"sync"
)

// Tracker is a bounded set of acknowledged message ids.
type Tracker struct {
	mu       sync.Mutex
	index    map[string]*list.Element
	order    *list.List // front is the newest id
	capacity int
}

// NewTracker returns an empty Tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		index:    make(map[string]*list.Element),
		order:    list.New(),
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Acknowledge marks id as acknowledged. It reports whether id was already
// acknowledged, in which case nothing changes.
func (t *Tracker) Acknowledge(_ context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.index[id]; ok {
		return true
	}
	if t.capacity > 0 && t.order.Len() >= t.capacity {
		oldest := t.order.Back()
		t.order.Remove(oldest)
		delete(t.index, oldest.Value.(string))
	}
	t.index[id] = t.order.PushFront(id)
	return false
}

// Acknowledged reports whether id is currently remembered.
func (t *Tracker) Acknowledged(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.index[id]
	return ok
}

// Forget drops id, for a message whose acknowledgement was withdrawn or
// whose processing failed after it was marked.
func (t *Tracker) Forget(_ context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.index[id]; ok {
		t.order.Remove(e)
		delete(t.index, id)
	}
}

// Len returns how many ids are remembered.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}
