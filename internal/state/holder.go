// Package state provides a minimal observable state holder: a mutable value
// plus a subscribe-to-changes interface. It stands in for the reactive state
// primitive of a UI framework without pulling one in.
package state

import "sync"

// Holder owns one value of type T and notifies subscribers on every Set.
// Subscribers are invoked synchronously, in no particular order, outside the
// holder's lock; a subscriber may read or unsubscribe without deadlocking.
type Holder[T any] struct {
	mu     sync.Mutex
	value  T
	nextID int
	subs   map[int]func(T)
}

// NewHolder creates a holder seeded with initial.
func NewHolder[T any](initial T) *Holder[T] {
	return &Holder[T]{
		value: initial,
		subs:  make(map[int]func(T)),
	}
}

// Get returns the current value.
func (h *Holder[T]) Get() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value
}

// Set replaces the value and notifies all subscribers with the new value.
func (h *Holder[T]) Set(v T) {
	h.mu.Lock()
	h.value = v
	subs := make([]func(T), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Update applies fn to the current value under the lock and notifies
// subscribers with the result.
func (h *Holder[T]) Update(fn func(T) T) {
	h.mu.Lock()
	h.value = fn(h.value)
	v := h.value
	subs := make([]func(T), 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s(v)
	}
}

// Subscribe registers fn to run after every change. The returned func
// unsubscribes; it is safe to call more than once.
func (h *Holder[T]) Subscribe(fn func(T)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}
