package components

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/math"
)

/**
 * @brief A perspective camera that orbits a target point. Position is given
 * by spherical angles around the origin and the camera always faces Target.
 */
type Camera struct {
	/** @brief Azimuth (x) and polar angle (y) in radians. */
	Rotation mgl32.Vec2
	/** @brief Distance from the origin. */
	Distance float32
	/** @brief The point the camera looks at. */
	Target mgl32.Vec3
	/** @brief Vertical field of view in radians. */
	FOV  float32
	Near float32
	Far  float32

	width  uint32
	height uint32

	position    mgl32.Vec3
	view        mgl32.Mat4
	inverseView mgl32.Mat4
	projection  mgl32.Mat4
	isDirty     bool
}

/** @brief Orbit limits: polar angle in [MinPolar, MaxPolar], distance in [MinDistance, MaxDistance]. */
var (
	MinPolar    = float32(0.02 * gomath.Pi)
	MaxPolar    = float32(0.98 * gomath.Pi)
	MinDistance = float32(0.6)
	MaxDistance = float32(10.0)
)

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera(width, height uint32, near, far float32) *Camera {
	c := &Camera{
		Rotation: mgl32.Vec2{gomath.Pi, 0.5 * gomath.Pi},
		Distance: 3,
		FOV:      mgl32.DegToRad(45),
		Near:     near,
		Far:      far,
		width:    max(width, 1),
		height:   max(height, 1),
		isDirty:  true,
	}
	return c
}

// Orbit applies a mouse drag (rotate) and scroll (zoom) and clamps the result.
func (c *Camera) Orbit(rotate mgl32.Vec2, zoom float32) {
	c.Rotation = c.Rotation.Add(rotate)
	c.Rotation[1] = math.Clamp(c.Rotation[1], MinPolar, MaxPolar)
	c.Distance = math.Clamp(c.Distance-zoom, MinDistance, MaxDistance)
	c.isDirty = true
}

func (c *Camera) SetTarget(target mgl32.Vec3) {
	c.Target = target
	c.isDirty = true
}

func (c *Camera) SetViewport(width, height uint32) {
	c.width = max(width, 1)
	c.height = max(height, 1)
	c.isDirty = true
}

// Ratio is the aspect ratio width/height.
func (c *Camera) Ratio() float32 {
	return float32(c.width) / float32(c.height)
}

func (c *Camera) Position() mgl32.Vec3 {
	c.update()
	return c.position
}

func (c *Camera) View() mgl32.Mat4 {
	c.update()
	return c.view
}

func (c *Camera) InverseView() mgl32.Mat4 {
	c.update()
	return c.inverseView
}

func (c *Camera) Projection() mgl32.Mat4 {
	c.update()
	return c.projection
}

func (c *Camera) update() {
	if !c.isDirty {
		return
	}
	theta := float64(c.Rotation[1])
	phi := -float64(c.Rotation[0])
	d := float64(c.Distance)
	c.position = mgl32.Vec3{
		float32(d * gomath.Sin(theta) * gomath.Sin(phi)),
		float32(d * gomath.Cos(theta)),
		float32(d * gomath.Sin(theta) * gomath.Cos(phi)),
	}
	c.view = mgl32.LookAtV(c.position, c.Target, mgl32.Vec3{0, 1, 0})
	c.inverseView = c.view.Inv()
	c.projection = mgl32.Perspective(c.FOV, c.Ratio(), c.Near, c.Far)
	c.isDirty = false
}
