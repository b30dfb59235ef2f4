package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

// RendererBackend is the narrow set of GPU commands the render targets and the
// pass sequencer issue. Every call happens on the render thread.
type RendererBackend interface {
	Initialize(config metadata.RendererBackendConfig) error
	Shutdown() error
	// Resized records the new size of the display framebuffer.
	Resized(width, height uint32)
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error

	TextureCreate(desc metadata.AttachmentDescriptor, width, height uint32) (metadata.TextureHandle, error)
	TextureUpload(image *metadata.ImageData, sampler metadata.SamplerState) (metadata.TextureHandle, error)
	TextureDestroy(texture metadata.TextureHandle)
	TextureGenerateMipmap(texture metadata.TextureHandle)
	TextureBind(unit uint32, texture metadata.TextureHandle)

	FramebufferCreate() (metadata.FramebufferHandle, error)
	FramebufferDestroy(fb metadata.FramebufferHandle)
	FramebufferBind(fb metadata.FramebufferHandle)
	BoundFramebuffer() metadata.FramebufferHandle
	// FramebufferAttach binds texture at point on fb. A zero texture detaches.
	FramebufferAttach(fb metadata.FramebufferHandle, point metadata.AttachmentPoint, texture metadata.TextureHandle)
	// FramebufferComplete reports whether fb can be drawn to.
	FramebufferComplete(fb metadata.FramebufferHandle) bool
	// DrawBuffers routes fragment outputs 0..n-1 of the bound framebuffer to
	// the given colour points. An empty list disables colour output.
	DrawBuffers(points []metadata.AttachmentPoint)

	Viewport(vp metadata.Viewport)
	Clear(flags metadata.ClearFlag, value metadata.ClearValue)
	SetState(state metadata.PipelineState)

	ProgramCreate(source metadata.ShaderSource) (metadata.ProgramHandle, error)
	ProgramDestroy(program metadata.ProgramHandle)
	ProgramUse(program metadata.ProgramHandle)
	UniformLocation(program metadata.ProgramHandle, name string) metadata.UniformLocation
	Uniform1i(loc metadata.UniformLocation, v int32)
	Uniform1f(loc metadata.UniformLocation, v float32)
	Uniform2f(loc metadata.UniformLocation, v mgl32.Vec2)
	Uniform3f(loc metadata.UniformLocation, v mgl32.Vec3)
	UniformMatrix4f(loc metadata.UniformLocation, m mgl32.Mat4)

	GeometryCreate(geometry *metadata.Geometry) (metadata.GeometryHandle, error)
	GeometryDestroy(geometry metadata.GeometryHandle)
	GeometryDraw(geometry metadata.GeometryHandle)

	// ReadPixels returns RGBA float texels of the colour image at point on fb,
	// bottom row first.
	ReadPixels(fb metadata.FramebufferHandle, point metadata.AttachmentPoint, width, height uint32) ([]float32, error)
}
