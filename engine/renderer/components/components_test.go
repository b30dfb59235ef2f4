package components

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec3(t *testing.T, expected, actual mgl32.Vec3) {
	t.Helper()
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], 1e-4, "component %d of %v", i, actual)
	}
}

func TestCameraDefaults(t *testing.T) {
	c := NewCamera(1280, 720, 0.1, 100)
	assert.InDelta(t, 1280.0/720.0, c.Ratio(), 1e-6)
	assert.Equal(t, float32(3), c.Distance)
	assertVec3(t, mgl32.Vec3{0, 0, -3}, c.Position())

	// the target sits on the view axis
	p := c.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, p[0], 1e-4)
	assert.InDelta(t, 0, p[1], 1e-4)
	assert.InDelta(t, -3, p[2], 1e-4)

	id := c.View().Mul4(c.InverseView())
	assert.True(t, id.ApproxEqualThreshold(mgl32.Ident4(), 1e-4))
}

func TestCameraOrbitClamps(t *testing.T) {
	c := NewCamera(4, 4, 0.1, 100)

	c.Orbit(mgl32.Vec2{0, 10}, 0)
	assert.Equal(t, MaxPolar, c.Rotation[1])
	c.Orbit(mgl32.Vec2{0, -20}, 0)
	assert.Equal(t, MinPolar, c.Rotation[1])

	c.Orbit(mgl32.Vec2{}, 100)
	assert.Equal(t, MinDistance, c.Distance)
	c.Orbit(mgl32.Vec2{}, -100)
	assert.Equal(t, MaxDistance, c.Distance)
	assert.InDelta(t, MaxDistance, c.Position().Len(), 1e-4)
}

func TestCameraFollowsTargetAndViewport(t *testing.T) {
	c := NewCamera(4, 4, 0.1, 100)
	c.SetTarget(mgl32.Vec3{0, 0.3, 0})
	p := c.View().Mul4x1(mgl32.Vec4{0, 0.3, 0, 1})
	assert.InDelta(t, 0, p[0], 1e-4)
	assert.InDelta(t, 0, p[1], 1e-4)

	c.SetViewport(800, 0)
	assert.Equal(t, float32(800), c.Ratio())
	assert.InDelta(t, 1/(800*math.Tan(float64(c.FOV)/2)), c.Projection()[0], 1e-6)
}

func TestSpotlightFrame(t *testing.T) {
	s := NewSpotlight(mgl32.Vec3{0, 0, -2}, mgl32.Vec3{0, 0, 0})
	assertVec3(t, mgl32.Vec3{0, 0, 1}, s.Direction())
	assertVec3(t, mgl32.Vec3{1, 1, 1}, s.Radiance())
	assert.Equal(t, mgl32.Vec2{0.1, 10}, s.NearFar())

	s.Lumen = 3
	s.Color = mgl32.Vec3{1, 0.5, 0}
	assertVec3(t, mgl32.Vec3{3, 1.5, 0}, s.Radiance())

	c := s.TextureMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	c = c.Mul(1 / c[3])
	assert.InDelta(t, 0.5, c[0], 1e-5)
	assert.InDelta(t, 0.5, c[1], 1e-5)
	assert.True(t, c[2] > 0 && c[2] < 1)
}

func TestSpotlightStraightDown(t *testing.T) {
	s := NewSpotlight(mgl32.Vec3{0, 3, 0}, mgl32.Vec3{0, 0, 0})
	v := s.View()
	for _, f := range v {
		assert.False(t, math.IsNaN(float64(f)), "view matrix has NaN")
	}
	p := v.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -3, p[2], 1e-4)
}

func TestSpotlightDegenerateDirection(t *testing.T) {
	s := NewSpotlight(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1})
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, s.Direction())
}
