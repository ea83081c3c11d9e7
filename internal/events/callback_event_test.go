package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallbackEvent(t *testing.T) {
	event := NewCallbackEvent[string](false)
	require.NotNil(t, event)
	assert.Equal(t, 0, event.ListenerCount())
}

func TestCallbackEvent_CallsInRegistrationOrder(t *testing.T) {
	event := NewCallbackEvent[string](false)

	var calls []string
	for _, name := range []string{"speech", "log", "view"} {
		name := name
		event.Listen(func(text string) {
			calls = append(calls, name+":"+text)
		})
	}

	event.Notify("go")
	event.Notify("3")
	assert.Equal(t, []string{
		"speech:go", "log:go", "view:go",
		"speech:3", "log:3", "view:3",
	}, calls)
}

func TestCallbackEvent_Unregister(t *testing.T) {
	event := NewCallbackEvent[int](false)

	var received []int
	unregister := event.Listen(func(v int) { received = append(received, v) })
	event.Notify(1)
	unregister()
	assert.Equal(t, 0, event.ListenerCount())
	event.Notify(2)

	assert.Equal(t, []int{1}, received)
}

func TestCallbackEvent_ReplayLast(t *testing.T) {
	event := NewCallbackEvent[string](true)
	event.Notify("switch")

	var got []string
	event.Listen(func(v string) { got = append(got, v) })
	assert.Equal(t, []string{"switch"}, got)
}

func TestCallbackEvent_ListenerMayUnregisterItself(t *testing.T) {
	event := NewCallbackEvent[int](false)

	count := 0
	var unregister func()
	unregister = event.Listen(func(int) {
		count++
		unregister()
	})

	event.Notify(1)
	event.Notify(2)
	assert.Equal(t, 1, count)
}

func TestCallbackEvent_NilCallbackPanics(t *testing.T) {
	event := NewCallbackEvent[int](false)
	assert.Panics(t, func() { event.Listen(nil) })
}
