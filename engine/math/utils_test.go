package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, Clamp(7, 0, 3))
	assert.Equal(t, float32(-1), Clamp(float32(-4), -1, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}

func TestStep(t *testing.T) {
	assert.Equal(t, 10, Step(9, 5, 0, 10))
	assert.Equal(t, float32(0), Step(float32(0.05), -0.1, 0, 1))
}

func TestRound(t *testing.T) {
	v := float32(0)
	for i := 0; i < 7; i++ {
		v = Round(v+0.1, 2)
	}
	assert.Equal(t, float32(0.7), v)
	assert.Equal(t, float32(1.24), Round(1.2449, 2))
}
