package metadata

import (
	"github.com/go-gl/mathgl/mgl32"
)

/** @brief Opaque handle of uploaded vertex/index buffers. */
type GeometryHandle uint32

/** @brief Returned when no buffers have been created. */
const InvalidGeometry GeometryHandle = 0

/**
 * @brief Represents a single vertex in 3D space with everything the material
 * pass needs for tangent-space normal mapping.
 */
type Vertex3D struct {
	/** @brief The Position of the vertex */
	Position mgl32.Vec3
	/** @brief The Normal of the vertex. */
	Normal mgl32.Vec3
	/** @brief The texture coordinate of the vertex. */
	Texcoord mgl32.Vec2
	/** @brief The Tangent of the vertex; w holds the bitangent handedness. */
	Tangent mgl32.Vec4
}

/** @brief Number of float32 values in one interleaved vertex. */
const Vertex3DFloats = 3 + 3 + 2 + 4

/** @brief Triangle is three indices into the owning geometry's vertices. */
type Triangle [3]uint32

/**
 * @brief CPU-side vertex/triangle data of one mesh. Buffers are built from it
 * with the backend's GeometryCreate.
 */
type Geometry struct {
	Vertices  []Vertex3D
	Triangles []Triangle
}

/** @brief AddVertex appends v and returns its index. */
func (g *Geometry) AddVertex(v Vertex3D) uint32 {
	g.Vertices = append(g.Vertices, v)
	return uint32(len(g.Vertices) - 1)
}

func (g *Geometry) AddTriangle(a, b, c uint32) {
	g.Triangles = append(g.Triangles, Triangle{a, b, c})
}

/** @brief AddGeometry appends other, offsetting its indices past the current vertices. */
func (g *Geometry) AddGeometry(other *Geometry) {
	offset := uint32(len(g.Vertices))
	g.Vertices = append(g.Vertices, other.Vertices...)
	for _, t := range other.Triangles {
		g.Triangles = append(g.Triangles, Triangle{t[0] + offset, t[1] + offset, t[2] + offset})
	}
}

func (g *Geometry) Clear() {
	g.Vertices = g.Vertices[:0]
	g.Triangles = g.Triangles[:0]
}

/** @brief Indices flattens the triangle list for index buffer upload. */
func (g *Geometry) Indices() []uint32 {
	out := make([]uint32, 0, len(g.Triangles)*3)
	for _, t := range g.Triangles {
		out = append(out, t[0], t[1], t[2])
	}
	return out
}

/** @brief Interleaved flattens the vertices as position, normal, texcoord, tangent. */
func (g *Geometry) Interleaved() []float32 {
	out := make([]float32, 0, len(g.Vertices)*Vertex3DFloats)
	for _, v := range g.Vertices {
		out = append(out, v.Position[:]...)
		out = append(out, v.Normal[:]...)
		out = append(out, v.Texcoord[:]...)
		out = append(out, v.Tangent[:]...)
	}
	return out
}

/** @brief Extents returns the axis-aligned bounds of the vertices. */
func (g *Geometry) Extents() (min, max mgl32.Vec3) {
	if len(g.Vertices) == 0 {
		return
	}
	min = g.Vertices[0].Position
	max = min
	for _, v := range g.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Position[i] < min[i] {
				min[i] = v.Position[i]
			}
			if v.Position[i] > max[i] {
				max[i] = v.Position[i]
			}
		}
	}
	return
}

/** @brief Transform applies m to every position and the normal matrix to normals/tangents. */
func (g *Geometry) Transform(m mgl32.Mat4) {
	n := m.Mat3().Inv().Transpose()
	for i := range g.Vertices {
		v := &g.Vertices[i]
		v.Position = m.Mul4x1(v.Position.Vec4(1)).Vec3()
		if l := n.Mul3x1(v.Normal); l.Len() > 0 {
			v.Normal = l.Normalize()
		}
		t := m.Mat3().Mul3x1(v.Tangent.Vec3())
		if t.Len() > 0 {
			t = t.Normalize()
		}
		v.Tangent = t.Vec4(v.Tangent[3])
	}
}
