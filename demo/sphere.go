package demo

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

// Sphere builds a UV sphere centred at the origin. It stands in for the head
// mesh when no model file is available.
func Sphere(radius float32, segments, rings int) metadata.Geometry {
	segments = max(segments, 3)
	rings = max(rings, 2)

	var g metadata.Geometry
	for r := 0; r <= rings; r++ {
		v := float32(r) / float32(rings)
		theta := float64(v) * gomath.Pi
		for s := 0; s <= segments; s++ {
			u := float32(s) / float32(segments)
			phi := float64(u) * 2 * gomath.Pi
			n := mgl32.Vec3{
				float32(gomath.Sin(theta) * gomath.Sin(phi)),
				float32(gomath.Cos(theta)),
				float32(gomath.Sin(theta) * gomath.Cos(phi)),
			}
			g.AddVertex(metadata.Vertex3D{
				Position: n.Mul(radius),
				Normal:   n,
				Texcoord: mgl32.Vec2{u, 1 - v},
				Tangent:  mgl32.Vec4{float32(gomath.Cos(phi)), 0, float32(-gomath.Sin(phi)), 1},
			})
		}
	}
	stride := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			a := r*stride + s
			b := a + stride
			g.AddTriangle(a, b, a+1)
			g.AddTriangle(a+1, b, b+1)
		}
	}
	return g
}
