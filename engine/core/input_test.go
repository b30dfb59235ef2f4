package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputKeyHit(t *testing.T) {
	s := NewInputState(nil)
	s.ProcessKey(KEY_W, true)
	assert.True(t, s.IsKeyDown(KEY_W))
	assert.True(t, s.IsKeyHit(KEY_W))

	s.Update(0)
	assert.True(t, s.IsKeyDown(KEY_W))
	assert.False(t, s.IsKeyHit(KEY_W), "held keys are not hits")

	s.ProcessKey(KEY_W, false)
	assert.True(t, s.IsKeyUp(KEY_W))
	assert.True(t, s.WasKeyDown(KEY_W))

	s.ProcessKey(KEYS_MAX_KEYS, true)
	assert.False(t, s.IsKeyDown(KEYS_MAX_KEYS))
}

func TestInputFiresEvents(t *testing.T) {
	bus := NewEventBus()
	s := NewInputState(bus)
	var codes []SystemEventCode
	bus.Register(EVENT_CODE_KEY_PRESSED, nil, record(&codes))
	bus.Register(EVENT_CODE_KEY_RELEASED, nil, record(&codes))
	bus.Register(EVENT_CODE_MOUSE_MOVED, nil, record(&codes))
	bus.Register(EVENT_CODE_MOUSE_WHEEL, nil, record(&codes))
	bus.Register(EVENT_CODE_BUTTON_PRESSED, nil, record(&codes))

	s.ProcessKey(KEY_1, true)
	s.ProcessKey(KEY_1, true)
	s.ProcessKey(KEY_1, false)
	s.ProcessMouseMove(4, 5)
	s.ProcessMouseMove(4, 5)
	s.ProcessButton(BUTTON_LEFT, true)
	s.ProcessMouseWheel(-1.5)

	assert.Equal(t, []SystemEventCode{
		EVENT_CODE_KEY_PRESSED,
		EVENT_CODE_KEY_RELEASED,
		EVENT_CODE_MOUSE_MOVED,
		EVENT_CODE_BUTTON_PRESSED,
		EVENT_CODE_MOUSE_WHEEL,
	}, codes)
}

func record(codes *[]SystemEventCode) FnOnEvent {
	return func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		*codes = append(*codes, code)
		return false
	}
}

func TestInputMouse(t *testing.T) {
	s := NewInputState(nil)
	s.ProcessMouseMove(10, 20)
	s.Update(0)
	s.ProcessMouseMove(13, 16)
	s.ProcessButton(BUTTON_RIGHT, true)
	s.ProcessMouseWheel(1)
	s.ProcessMouseWheel(0.5)

	dx, dy := s.MouseDelta()
	assert.Equal(t, int32(3), dx)
	assert.Equal(t, int32(-4), dy)
	assert.True(t, s.IsButtonDown(BUTTON_RIGHT))
	assert.False(t, s.WasButtonDown(BUTTON_RIGHT))
	assert.Equal(t, 1.5, s.Scroll)

	s.Update(0)
	assert.Zero(t, s.Scroll)
	assert.True(t, s.WasButtonDown(BUTTON_RIGHT))
	x, y := s.PreviousMousePosition()
	assert.Equal(t, int32(13), x)
	assert.Equal(t, int32(16), y)
}
