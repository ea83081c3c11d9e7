package events

import (
	"sync"
)

// ChannelEvent fans a value out to registered channels.
// Sends never block: a listener whose channel is full misses that value.
// T is the type of the value sent to channels
type ChannelEvent[T any] struct {
	mu       sync.RWMutex
	channels map[uint64]chan<- T
	nextID   uint64
	last     replay[T]
}

// NewChannelEvent creates a new ChannelEvent.
// replayLast: new listeners immediately receive the most recent value, if one was notified.
func NewChannelEvent[T any](replayLast bool) *ChannelEvent[T] {
	return &ChannelEvent[T]{
		channels: make(map[uint64]chan<- T),
		last:     replay[T]{enabled: replayLast},
	}
}

// Listen registers a channel and returns its deregistration function
func (e *ChannelEvent[T]) Listen(ch chan<- T) func() {
	if ch == nil {
		panic("channel cannot be nil")
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.channels[id] = ch
	latest, ok := e.last.latest()
	e.mu.Unlock()

	if ok {
		select {
		case ch <- latest:
		default:
		}
	}

	return func() {
		e.mu.Lock()
		delete(e.channels, id)
		e.mu.Unlock()
	}
}

// Notify sends value to every registered channel
func (e *ChannelEvent[T]) Notify(value T) {
	e.mu.Lock()
	e.last.store(value)
	targets := make([]chan<- T, 0, len(e.channels))
	for _, ch := range e.channels {
		targets = append(targets, ch)
	}
	e.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- value:
		default:
		}
	}
}

// Latest returns the most recent value when replay is enabled
func (e *ChannelEvent[T]) Latest() (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last.latest()
}

// ListenerCount returns the current number of registered listeners
func (e *ChannelEvent[T]) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.channels)
}
