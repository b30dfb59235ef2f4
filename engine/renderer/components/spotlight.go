package components

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// shadowBias maps clip space [-1,1] to texture space [0,1].
var shadowBias = mgl32.Mat4{
	0.5, 0, 0, 0,
	0, 0.5, 0, 0,
	0, 0, 0.5, 0,
	0.5, 0.5, 0.5, 1,
}

/**
 * @brief A shadow-casting cone light. The cone opens by OuterAngle around the
 * direction from Position towards LookAt.
 */
type Spotlight struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Color    mgl32.Vec3
	/** @brief Intensity multiplier applied to Color. */
	Lumen float32
	/** @brief Half-angle of the cone in radians. */
	OuterAngle float32
	Near       float32
	Far        float32
}

func NewSpotlight(position, lookAt mgl32.Vec3) *Spotlight {
	return &Spotlight{
		Position:   position,
		LookAt:     lookAt,
		Color:      mgl32.Vec3{1, 1, 1},
		Lumen:      1,
		OuterAngle: mgl32.DegToRad(40),
		Near:       0.1,
		Far:        10,
	}
}

// Direction is the unit vector the light points along.
func (s *Spotlight) Direction() mgl32.Vec3 {
	d := s.LookAt.Sub(s.Position)
	if d.Len() == 0 {
		return mgl32.Vec3{0, 0, -1}
	}
	return d.Normalize()
}

func (s *Spotlight) View() mgl32.Mat4 {
	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(s.Direction().Dot(up)) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	return mgl32.LookAtV(s.Position, s.LookAt, up)
}

// Projection covers the whole cone with a square frustum.
func (s *Spotlight) Projection() mgl32.Mat4 {
	return mgl32.Perspective(2*s.OuterAngle, 1, s.Near, s.Far)
}

// TextureMatrix maps world space to shadow-map texture space (xy in [0,1],
// z the depth to compare).
func (s *Spotlight) TextureMatrix() mgl32.Mat4 {
	return shadowBias.Mul4(s.Projection()).Mul4(s.View())
}

// NearFar packs the clip planes for the shader.
func (s *Spotlight) NearFar() mgl32.Vec2 {
	return mgl32.Vec2{s.Near, s.Far}
}

// Radiance is Color scaled by Lumen.
func (s *Spotlight) Radiance() mgl32.Vec3 {
	return s.Color.Mul(s.Lumen)
}
