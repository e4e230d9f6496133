// Package observable provides a replaying publish/subscribe value.
package observable

import (
	"sort"
	"sync"
)

// Value holds the latest value of T and pushes every change to subscribers.
// New subscribers receive the current value immediately.
//
// Callbacks run synchronously on the publishing goroutine, outside the value
// lock, in publication order. A callback must not call Set on the same Value.
type Value[T any] struct {
	pubMu sync.Mutex // serialises delivery

	mu     sync.Mutex
	value  T
	nextID uint64
	subs   map[uint64]func(T)
}

// New creates a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		value: initial,
		subs:  make(map[uint64]func(T)),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set stores val and delivers it to all subscribers.
func (v *Value[T]) Set(val T) {
	v.pubMu.Lock()
	defer v.pubMu.Unlock()

	v.mu.Lock()
	v.value = val
	subs := v.snapshot()
	v.mu.Unlock()

	for _, fn := range subs {
		fn(val)
	}
}

// Update applies fn to the current value and publishes the result.
func (v *Value[T]) Update(fn func(T) T) {
	v.pubMu.Lock()
	defer v.pubMu.Unlock()

	v.mu.Lock()
	v.value = fn(v.value)
	val := v.value
	subs := v.snapshot()
	v.mu.Unlock()

	for _, sub := range subs {
		sub(val)
	}
}

// Subscribe registers fn and replays the current value to it.
// The returned func removes the subscription; it is safe to call more than once.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	v.pubMu.Lock()
	defer v.pubMu.Unlock()

	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	val := v.value
	v.mu.Unlock()

	fn(val)

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
		})
	}
}

// Len returns the number of active subscriptions.
func (v *Value[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// snapshot returns subscribers in registration order. Caller holds mu.
func (v *Value[T]) snapshot() []func(T) {
	ids := make([]uint64, 0, len(v.subs))
	for id := range v.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	subs := make([]func(T), len(ids))
	for i, id := range ids {
		subs[i] = v.subs[id]
	}
	return subs
}

// Signal is a revision counter used to notify observers that something changed.
type Signal struct {
	*Value[uint64]
}

// NewSignal creates a Signal at revision 0.
func NewSignal() Signal {
	return Signal{Value: New[uint64](0)}
}

// Notify bumps the revision and wakes all subscribers.
func (s Signal) Notify() {
	s.Update(func(rev uint64) uint64 { return rev + 1 })
}
