package software

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

// subpixel snapping keeps edge functions exact for shared edges
const subpixel = 256.0

type screenVertex struct {
	x, y, z float64
	invW    float64
	vary    Varyings
}

func snap(v float64) float64 {
	return gomath.Round(v*subpixel) / subpixel
}

// edge is twice the signed area of (a, b, p); positive when p is left of a->b.
func edge(a, b *screenVertex, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// owns decides which of two triangles sharing edge a->b covers samples lying
// exactly on it. Reversing the edge flips the answer.
func owns(a, b *screenVertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return dy < 0 || (dy == 0 && dx > 0)
}

func covered(w float64, a, b *screenVertex) bool {
	return w > 0 || (w == 0 && owns(a, b))
}

func (b *Backend) targetSize(fb *framebuffer) (int, int) {
	for _, h := range fb.attachments {
		if t, ok := b.textures[h]; ok {
			return t.width(), t.height()
		}
	}
	return 0, 0
}

func (b *Backend) rasterize(g *geometry, stage Stage, fb *framebuffer, sampler *Sampler) {
	width, height := b.targetSize(fb)
	if width == 0 || height == 0 {
		return
	}
	vp := b.viewport
	minX, minY := max(int(vp.X), 0), max(int(vp.Y), 0)
	maxX, maxY := min(int(vp.X+vp.Width), width), min(int(vp.Y+vp.Height), height)
	if minX >= maxX || minY >= maxY {
		return
	}

	var depth *texture
	if b.state.DepthTest || b.state.DepthWrite {
		depth = b.textures[fb.attachments[metadata.AttachmentPointDepth]]
	}
	var colors []*texture
	if b.state.ColorWrite {
		colors = make([]*texture, len(fb.drawBuffers))
		for i, p := range fb.drawBuffers {
			colors[i] = b.textures[fb.attachments[p]]
		}
	}

	verts := make([]screenVertex, len(g.vertices))
	clipped := make([]bool, len(g.vertices))
	for i := range g.vertices {
		clip, vary := stage.Vertex(&g.vertices[i])
		w := float64(clip[3])
		if w <= 1e-6 {
			clipped[i] = true
			continue
		}
		ndcX, ndcY, ndcZ := float64(clip[0])/w, float64(clip[1])/w, float64(clip[2])/w
		verts[i] = screenVertex{
			x:    snap(float64(vp.X) + (ndcX+1)*0.5*float64(vp.Width)),
			y:    snap(float64(vp.Y) + (ndcY+1)*0.5*float64(vp.Height)),
			z:    ndcZ*0.5 + 0.5,
			invW: 1 / w,
			vary: vary,
		}
	}

	for _, tri := range g.triangles {
		if clipped[tri[0]] || clipped[tri[1]] || clipped[tri[2]] {
			continue
		}
		v0, v1, v2 := &verts[tri[0]], &verts[tri[1]], &verts[tri[2]]
		area := edge(v0, v1, v2.x, v2.y)
		if area == 0 {
			continue
		}
		if area < 0 {
			v1, v2 = v2, v1
			area = -area
		}

		x0 := max(minX, int(gomath.Floor(min(v0.x, v1.x, v2.x))))
		x1 := min(maxX-1, int(gomath.Ceil(max(v0.x, v1.x, v2.x))))
		y0 := max(minY, int(gomath.Floor(min(v0.y, v1.y, v2.y))))
		y1 := min(maxY-1, int(gomath.Ceil(max(v0.y, v1.y, v2.y))))

		for y := y0; y <= y1; y++ {
			py := float64(y) + 0.5
			for x := x0; x <= x1; x++ {
				px := float64(x) + 0.5
				w0 := edge(v1, v2, px, py)
				w1 := edge(v2, v0, px, py)
				w2 := edge(v0, v1, px, py)
				if !covered(w0, v1, v2) || !covered(w1, v2, v0) || !covered(w2, v0, v1) {
					continue
				}
				l0, l1, l2 := w0/area, w1/area, w2/area
				z := float32(l0*v0.z + l1*v1.z + l2*v2.z)

				if depth != nil && b.state.DepthTest && z >= depth.load(x, y)[0] {
					continue
				}

				var vary Varyings
				p0, p1, p2 := l0*v0.invW, l1*v1.invW, l2*v2.invW
				norm := 1 / (p0 + p1 + p2)
				for k := range vary {
					vary[k] = float32((p0*float64(v0.vary[k]) + p1*float64(v1.vary[k]) + p2*float64(v2.vary[k])) * norm)
				}

				out, discard := stage.Fragment(&vary, sampler)
				if discard {
					continue
				}
				if depth != nil && b.state.DepthWrite {
					depth.store(x, y, mgl32.Vec4{z, 0, 0, 1})
				}
				for i, t := range colors {
					if t == nil || i >= out.Count {
						continue
					}
					c := out.Colors[i]
					if b.state.Blend == metadata.BLEND_MODE_ADDITIVE {
						c = t.load(x, y).Add(c)
					}
					t.store(x, y, c)
				}
			}
		}
	}
}
