package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

const floatSize = 4

// vertex attribute layout shared with the GLSL sources
var attributes = []struct {
	location   uint32
	components int32
	offset     int
}{
	{0, 3, 0}, // position
	{1, 3, 3}, // normal
	{2, 2, 6}, // texcoord
	{3, 4, 8}, // tangent
}

func (b *Backend) GeometryCreate(g *metadata.Geometry) (metadata.GeometryHandle, error) {
	if g == nil || len(g.Vertices) == 0 || len(g.Triangles) == 0 {
		return metadata.InvalidGeometry, fmt.Errorf("empty geometry")
	}
	vertices := g.Interleaved()
	indices := g.Indices()

	geo := &geometry{indexCount: int32(len(indices))}
	gl.GenVertexArrays(1, &geo.vao)
	gl.BindVertexArray(geo.vao)

	gl.GenBuffers(1, &geo.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, geo.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*floatSize, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &geo.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, geo.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	stride := int32(metadata.Vertex3DFloats * floatSize)
	for _, a := range attributes {
		gl.EnableVertexAttribArray(a.location)
		gl.VertexAttribPointer(a.location, a.components, gl.FLOAT, false, stride, gl.PtrOffset(a.offset*floatSize))
	}
	gl.BindVertexArray(0)

	b.nextGeometry++
	h := metadata.GeometryHandle(b.nextGeometry)
	b.geometries[h] = geo
	return h, nil
}

func (b *Backend) GeometryDestroy(h metadata.GeometryHandle) {
	geo, ok := b.geometries[h]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &geo.vbo)
	gl.DeleteBuffers(1, &geo.ebo)
	gl.DeleteVertexArrays(1, &geo.vao)
	delete(b.geometries, h)
}

func (b *Backend) GeometryDraw(h metadata.GeometryHandle) {
	geo, ok := b.geometries[h]
	if !ok {
		return
	}
	gl.BindVertexArray(geo.vao)
	gl.DrawElements(gl.TRIANGLES, geo.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}
