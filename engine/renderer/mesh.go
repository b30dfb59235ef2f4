package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

// Mesh pairs CPU geometry with its uploaded buffers.
type Mesh struct {
	Name     string
	Geometry metadata.Geometry
	handle   metadata.GeometryHandle
	backend  RendererBackend
}

func NewMesh(name string, geometry metadata.Geometry) *Mesh {
	return &Mesh{Name: name, Geometry: geometry}
}

// CreateStaticBuffers uploads the geometry. Calling it again replaces the buffers.
func (m *Mesh) CreateStaticBuffers(backend RendererBackend) error {
	handle, err := backend.GeometryCreate(&m.Geometry)
	if err != nil {
		return fmt.Errorf("mesh %s: %w", m.Name, err)
	}
	if m.handle != metadata.InvalidGeometry {
		m.backend.GeometryDestroy(m.handle)
	}
	m.backend = backend
	m.handle = handle
	return nil
}

// Draw issues the indexed draw. Meshes without buffers draw nothing.
func (m *Mesh) Draw() {
	if m.handle == metadata.InvalidGeometry {
		return
	}
	m.backend.GeometryDraw(m.handle)
}

func (m *Mesh) Uploaded() bool {
	return m.handle != metadata.InvalidGeometry
}

func (m *Mesh) Destroy() {
	if m.handle == metadata.InvalidGeometry {
		return
	}
	m.backend.GeometryDestroy(m.handle)
	m.handle = metadata.InvalidGeometry
}

// FullScreenQuad builds the two-triangle quad covering normalized device
// coordinates, with texcoords from (0,0) to (1,1).
func FullScreenQuad() metadata.Geometry {
	var g metadata.Geometry
	corners := []struct{ pos, uv mgl32.Vec2 }{
		{mgl32.Vec2{-1, -1}, mgl32.Vec2{0, 0}},
		{mgl32.Vec2{1, -1}, mgl32.Vec2{1, 0}},
		{mgl32.Vec2{1, 1}, mgl32.Vec2{1, 1}},
		{mgl32.Vec2{-1, 1}, mgl32.Vec2{0, 1}},
	}
	for _, c := range corners {
		g.AddVertex(metadata.Vertex3D{
			Position: mgl32.Vec3{c.pos.X(), c.pos.Y(), 0},
			Normal:   mgl32.Vec3{0, 0, 1},
			Texcoord: c.uv,
			Tangent:  mgl32.Vec4{1, 0, 0, 1},
		})
	}
	g.AddTriangle(0, 1, 2)
	g.AddTriangle(0, 2, 3)
	return g
}
