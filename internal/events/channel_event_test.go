package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
	var zero T
	return zero
}

func assertNothing[T any](t *testing.T, ch chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Errorf("Unexpected value received: %v", v)
	default:
	}
}

func TestNewChannelEvent(t *testing.T) {
	event := NewChannelEvent[string](false)
	require.NotNil(t, event)
	assert.Equal(t, 0, event.ListenerCount())

	_, ok := event.Latest()
	assert.False(t, ok)
}

func TestChannelEvent_Listen_Notify_Basic(t *testing.T) {
	event := NewChannelEvent[string](false)

	ch := make(chan string, 10)
	unregister := event.Listen(ch)
	assert.Equal(t, 1, event.ListenerCount())

	event.Notify("play")
	event.Notify("pause")
	assert.Equal(t, "play", receive(t, ch))
	assert.Equal(t, "pause", receive(t, ch))

	unregister()
	assert.Equal(t, 0, event.ListenerCount())

	event.Notify("reset")
	assertNothing(t, ch)
}

func TestChannelEvent_MultipleListeners(t *testing.T) {
	event := NewChannelEvent[int](false)

	ch1 := make(chan int, 10)
	ch2 := make(chan int, 10)
	unregister1 := event.Listen(ch1)
	unregister2 := event.Listen(ch2)
	assert.Equal(t, 2, event.ListenerCount())

	event.Notify(42)
	assert.Equal(t, 42, receive(t, ch1))
	assert.Equal(t, 42, receive(t, ch2))

	unregister1()
	unregister2()
	assert.Equal(t, 0, event.ListenerCount())
}

func TestChannelEvent_ReplayLast(t *testing.T) {
	event := NewChannelEvent[string](true)

	early := make(chan string, 1)
	event.Listen(early)
	assertNothing(t, early)

	event.Notify("first")
	event.Notify("second")
	latest, ok := event.Latest()
	require.True(t, ok)
	assert.Equal(t, "second", latest)

	late := make(chan string, 1)
	event.Listen(late)
	assert.Equal(t, "second", receive(t, late))
}

func TestChannelEvent_NoReplayWhenDisabled(t *testing.T) {
	event := NewChannelEvent[string](false)
	event.Notify("missed")

	ch := make(chan string, 1)
	event.Listen(ch)
	assertNothing(t, ch)
}

func TestChannelEvent_FullChannelDoesNotBlock(t *testing.T) {
	event := NewChannelEvent[int](false)
	ch := make(chan int, 1)
	event.Listen(ch)

	done := make(chan struct{})
	go func() {
		event.Notify(1)
		event.Notify(2)
		event.Notify(3)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full channel")
	}
	assert.Equal(t, 1, receive(t, ch))
	assertNothing(t, ch)
}

func TestChannelEvent_NilChannelPanics(t *testing.T) {
	event := NewChannelEvent[int](false)
	assert.Panics(t, func() { event.Listen(nil) })
}

func TestChannelEvent_ConcurrentNotify(t *testing.T) {
	event := NewChannelEvent[int](true)
	ch := make(chan int, 1000)
	event.Listen(ch)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				event.Notify(base*100 + j)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, ch, 500)
	_, ok := event.Latest()
	assert.True(t, ok)
}
