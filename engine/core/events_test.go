package core

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	SetLogOutput(io.Discard)
}

func TestEventBusFireOrderAndHandled(t *testing.T) {
	bus := NewEventBus()
	var calls []string
	first := func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, "first")
		return false
	}
	second := func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, "second")
		return data.Data.(*KeyEvent).KeyCode == KEY_ESCAPE
	}
	third := func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, "third")
		return false
	}
	require.True(t, bus.Register(EVENT_CODE_KEY_PRESSED, "a", first))
	require.True(t, bus.Register(EVENT_CODE_KEY_PRESSED, "b", second))
	require.True(t, bus.Register(EVENT_CODE_KEY_PRESSED, "c", third))

	assert.False(t, bus.Fire(EVENT_CODE_KEY_PRESSED, nil, EventContext{Data: &KeyEvent{KeyCode: KEY_W}}))
	assert.Equal(t, []string{"first", "second", "third"}, calls)

	calls = nil
	assert.True(t, bus.Fire(EVENT_CODE_KEY_PRESSED, nil, EventContext{Data: &KeyEvent{KeyCode: KEY_ESCAPE}}))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestEventBusRegistration(t *testing.T) {
	bus := NewEventBus()
	var got EventContext
	handler := func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		got = data
		return true
	}

	assert.False(t, bus.Register(EVENT_CODE_RESIZED, nil, nil))
	assert.True(t, bus.Register(EVENT_CODE_RESIZED, "l", handler))
	assert.False(t, bus.Register(EVENT_CODE_RESIZED, "l", handler), "duplicate")

	assert.True(t, bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{Data: &ResizeEvent{Width: 3, Height: 2}}))
	assert.Equal(t, EVENT_CODE_RESIZED, got.Type)
	assert.Equal(t, &ResizeEvent{Width: 3, Height: 2}, got.Data)

	assert.True(t, bus.Unregister(EVENT_CODE_RESIZED, "l", handler))
	assert.False(t, bus.Unregister(EVENT_CODE_RESIZED, "l", handler))
	assert.False(t, bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{}))

	bus.Register(EVENT_CODE_APPLICATION_QUIT, nil, handler)
	bus.Shutdown()
	assert.False(t, bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}))
}
