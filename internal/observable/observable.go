// Package observable provides a small reactive value that pushes every change
// to its subscribers.
package observable

import "sync"

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Value holds a T and notifies subscribers whenever it is set.
// The zero Value is not usable; construct one with New.
//
// Deliveries are serialised: every subscriber sees changes in the order they
// were applied, and its last delivered value is always the current one.
// A subscriber must not call Set, Update or Subscribe on the Value that is
// notifying it.
type Value[T any] struct {
	// deliver is held from applying a change until every subscriber has seen it.
	deliver sync.Mutex

	mu     sync.Mutex
	v      T
	nextID uint64
	subs   []subscriber[T] // registration order
}

// New returns a Value initialised to v.
func New[T any](v T) *Value[T] {
	return &Value[T]{v: v}
}

// Get returns the current value.
func (o *Value[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.v
}

// Set stores v and notifies every subscriber, even when v equals the
// previous value.
func (o *Value[T]) Set(v T) {
	o.Update(func(T) T { return v })
}

// Update replaces the value with fn(current) and notifies subscribers.
// Subscribers run synchronously on the caller's goroutine, in registration
// order. Concurrent updates wait for the previous delivery to finish.
func (o *Value[T]) Update(fn func(T) T) {
	o.deliver.Lock()
	defer o.deliver.Unlock()

	o.mu.Lock()
	o.v = fn(o.v)
	v := o.v
	subs := o.snapshot()
	o.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Subscribe registers fn, calls it once with the current value, and returns
// a function that removes it.
func (o *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	o.deliver.Lock()
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs = append(o.subs, subscriber[T]{id: id, fn: fn})
	v := o.v
	o.mu.Unlock()

	fn(v)
	o.deliver.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { o.remove(id) })
	}
}

// Len returns the number of live subscribers.
func (o *Value[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

func (o *Value[T]) remove(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, s := range o.subs {
		if s.id == id {
			o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
			return
		}
	}
}

// snapshot copies subscribers in registration order. Callers must hold o.mu.
func (o *Value[T]) snapshot() []func(T) {
	out := make([]func(T), len(o.subs))
	for i, s := range o.subs {
		out[i] = s.fn
	}
	return out
}
