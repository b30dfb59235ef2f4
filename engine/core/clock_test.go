package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock(t *testing.T) {
	now := time.Unix(100, 0)
	c := NewClock()
	c.now = func() time.Time { return now }

	c.Update()
	assert.Zero(t, c.Elapsed(), "not started")

	c.Start()
	now = now.Add(1500 * time.Millisecond)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)

	c.Stop()
	now = now.Add(time.Second)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.03125)
	}
	assert.Equal(t, 31.25, m.FrameTime())
	assert.Zero(t, m.FPS())

	m.Update(0.03125)
	m.Update(0.03125)
	assert.Zero(t, m.FPS(), "exactly one second is not over it")
	m.Update(0.03125)
	fps, ms := m.Frame()
	assert.Equal(t, float64(33), fps)
	assert.Equal(t, 31.25, ms)
}
