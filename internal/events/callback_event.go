package events

import (
	"slices"
	"sync"
)

// CallbackEvent calls registered callbacks synchronously, in registration order, on the
// notifying goroutine. Callbacks run outside the lock so they may register or deregister.
type CallbackEvent[T any] struct {
	mu        sync.RWMutex
	listeners map[uint64]func(T)
	nextID    uint64
	last      replay[T]
}

// NewCallbackEvent creates a new CallbackEvent.
// replayLast: new listeners are called immediately with the most recent value, if any.
func NewCallbackEvent[T any](replayLast bool) *CallbackEvent[T] {
	return &CallbackEvent[T]{
		listeners: make(map[uint64]func(T)),
		last:      replay[T]{enabled: replayLast},
	}
}

// Listen registers a callback and returns its deregistration function
func (e *CallbackEvent[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("callback cannot be nil")
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = callback
	latest, ok := e.last.latest()
	e.mu.Unlock()

	if ok {
		callback(latest)
	}

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// Notify calls every listener with value
func (e *CallbackEvent[T]) Notify(value T) {
	e.mu.Lock()
	e.last.store(value)
	ids := make([]uint64, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	callbacks := make([]func(T), 0, len(ids))
	for _, id := range ids {
		callbacks = append(callbacks, e.listeners[id])
	}
	e.mu.Unlock()

	for _, callback := range callbacks {
		callback(value)
	}
}

// ListenerCount returns the current number of registered listeners
func (e *CallbackEvent[T]) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}
