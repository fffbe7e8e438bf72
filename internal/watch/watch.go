// Package watch provides a latest-value observable with snapshot-replace
// semantics: writers publish whole immutable snapshots, readers either poll
// the latest or subscribe to change notifications. Observers can never see a
// torn or partially-updated value.
package watch

import "sync"

// Value holds the latest snapshot of T and notifies subscribers on change.
// Subscriber channels have a buffer of one and are latest-wins: a slow
// subscriber misses intermediate snapshots but always eventually observes
// the newest.
type Value[T any] struct {
	mu     sync.Mutex
	cur    T
	subs   map[int]chan T
	nextID int
}

// New creates a Value seeded with an initial snapshot.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		cur:  initial,
		subs: make(map[int]chan T),
	}
}

// Load returns the latest snapshot.
func (v *Value[T]) Load() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Store replaces the snapshot and notifies all subscribers.
func (v *Value[T]) Store(snapshot T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = snapshot
	for _, ch := range v.subs {
		// Drop the stale buffered snapshot, if any, then publish.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// Watch subscribes to snapshot changes. The returned cancel func must be
// called to release the subscription; the channel is closed on cancel.
func (v *Value[T]) Watch() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextID
	v.nextID++
	ch := make(chan T, 1)
	v.subs[id] = ch

	cancel := func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if _, ok := v.subs[id]; ok {
			delete(v.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
