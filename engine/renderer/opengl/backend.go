// Package opengl implements the renderer backend on an OpenGL 4.1 core context.
package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

type geometry struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// Backend issues GL calls. The context must be current on the calling thread.
type Backend struct {
	width, height uint32
	bound         metadata.FramebufferHandle
	geometries    map[metadata.GeometryHandle]*geometry
	nextGeometry  uint32
}

func New() *Backend {
	return &Backend{geometries: make(map[metadata.GeometryHandle]*geometry)}
}

func (b *Backend) Initialize(config metadata.RendererBackendConfig) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	core.LogInfo("OpenGL %s, GLSL %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))
	core.LogDebug("renderer %s", gl.GoStr(gl.GetString(gl.RENDERER)))

	gl.DepthFunc(gl.LESS)
	gl.CullFace(gl.BACK)
	gl.Disable(gl.CULL_FACE)
	gl.ClearColor(0, 0, 0, 0)
	gl.ClearDepth(1)
	b.Resized(config.Width, config.Height)
	return nil
}

func (b *Backend) Shutdown() error {
	for h := range b.geometries {
		b.GeometryDestroy(h)
	}
	return nil
}

func (b *Backend) Resized(width, height uint32) {
	b.width, b.height = width, height
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", code)
	}
	return nil
}

func (b *Backend) TextureCreate(desc metadata.AttachmentDescriptor, width, height uint32) (metadata.TextureHandle, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	// drain stale errors so the check below is about this allocation
	for gl.GetError() != gl.NO_ERROR {
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat(desc.InternalFormat), int32(width), int32(height), 0,
		uploadFormat(desc.UploadFormat), componentType(desc.ComponentType), nil)
	applySampler(desc.Sampler)
	if desc.GenerateMipmap {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return metadata.InvalidTexture, fmt.Errorf("glTexImage2D %s %dx%d: error 0x%x", desc.InternalFormat, width, height, code)
	}
	return metadata.TextureHandle(tex), nil
}

func (b *Backend) TextureUpload(image *metadata.ImageData, sampler metadata.SamplerState) (metadata.TextureHandle, error) {
	if image == nil || image.Width <= 0 || image.Height <= 0 || len(image.Pixels) == 0 {
		return metadata.InvalidTexture, fmt.Errorf("empty image")
	}
	var internal int32 = gl.RGBA8
	var format uint32 = gl.RGBA
	if image.Channels == 3 {
		internal, format = gl.RGB8, gl.RGB
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, image.Width, image.Height, 0, format, gl.UNSIGNED_BYTE, gl.Ptr(image.Pixels))
	applySampler(sampler)
	if sampler.MinFilter.UsesMipmaps() {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return metadata.TextureHandle(tex), nil
}

func (b *Backend) TextureDestroy(texture metadata.TextureHandle) {
	tex := uint32(texture)
	if tex != 0 {
		gl.DeleteTextures(1, &tex)
	}
}

func (b *Backend) TextureGenerateMipmap(texture metadata.TextureHandle) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (b *Backend) TextureBind(unit uint32, texture metadata.TextureHandle) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
}

func (b *Backend) FramebufferCreate() (metadata.FramebufferHandle, error) {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	if fbo == 0 {
		return metadata.DefaultFramebuffer, fmt.Errorf("glGenFramebuffers returned 0")
	}
	return metadata.FramebufferHandle(fbo), nil
}

func (b *Backend) FramebufferDestroy(fb metadata.FramebufferHandle) {
	fbo := uint32(fb)
	if fbo == 0 {
		return
	}
	if b.bound == fb {
		b.FramebufferBind(metadata.DefaultFramebuffer)
	}
	gl.DeleteFramebuffers(1, &fbo)
}

func (b *Backend) FramebufferBind(fb metadata.FramebufferHandle) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	b.bound = fb
}

func (b *Backend) BoundFramebuffer() metadata.FramebufferHandle {
	return b.bound
}

func (b *Backend) FramebufferAttach(fb metadata.FramebufferHandle, point metadata.AttachmentPoint, texture metadata.TextureHandle) {
	previous := b.bound
	b.FramebufferBind(fb)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachmentPoint(point), gl.TEXTURE_2D, uint32(texture), 0)
	b.FramebufferBind(previous)
}

func (b *Backend) FramebufferComplete(fb metadata.FramebufferHandle) bool {
	previous := b.bound
	b.FramebufferBind(fb)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	b.FramebufferBind(previous)
	if status != gl.FRAMEBUFFER_COMPLETE {
		core.LogWarn("framebuffer %d incomplete: 0x%x", fb, status)
		return false
	}
	return true
}

func (b *Backend) DrawBuffers(points []metadata.AttachmentPoint) {
	if len(points) == 0 {
		gl.DrawBuffer(gl.NONE)
		return
	}
	if b.bound == metadata.DefaultFramebuffer {
		gl.DrawBuffer(gl.BACK)
		return
	}
	bufs := make([]uint32, len(points))
	for i, p := range points {
		bufs[i] = attachmentPoint(p)
	}
	gl.DrawBuffers(int32(len(bufs)), &bufs[0])
}

func (b *Backend) Viewport(vp metadata.Viewport) {
	gl.Viewport(vp.X, vp.Y, vp.Width, vp.Height)
}

func (b *Backend) Clear(flags metadata.ClearFlag, value metadata.ClearValue) {
	var mask uint32
	if flags&metadata.CLEAR_COLOR != 0 {
		gl.ClearColor(value.Color[0], value.Color[1], value.Color[2], value.Color[3])
		mask |= gl.COLOR_BUFFER_BIT
	}
	if flags&metadata.CLEAR_DEPTH != 0 {
		gl.ClearDepth(float64(value.Depth))
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (b *Backend) SetState(state metadata.PipelineState) {
	if state.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(state.DepthWrite)
	gl.ColorMask(state.ColorWrite, state.ColorWrite, state.ColorWrite, state.ColorWrite)
	switch state.Blend {
	case metadata.BLEND_MODE_ADDITIVE:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.ONE, gl.ONE)
	default:
		gl.Disable(gl.BLEND)
	}
}

func (b *Backend) Uniform1i(loc metadata.UniformLocation, v int32) {
	gl.Uniform1i(int32(loc), v)
}

func (b *Backend) Uniform1f(loc metadata.UniformLocation, v float32) {
	gl.Uniform1f(int32(loc), v)
}

func (b *Backend) Uniform2f(loc metadata.UniformLocation, v mgl32.Vec2) {
	gl.Uniform2f(int32(loc), v[0], v[1])
}

func (b *Backend) Uniform3f(loc metadata.UniformLocation, v mgl32.Vec3) {
	gl.Uniform3f(int32(loc), v[0], v[1], v[2])
}

func (b *Backend) UniformMatrix4f(loc metadata.UniformLocation, m mgl32.Mat4) {
	gl.UniformMatrix4fv(int32(loc), 1, false, &m[0])
}

func (b *Backend) ReadPixels(fb metadata.FramebufferHandle, point metadata.AttachmentPoint, width, height uint32) ([]float32, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty read region")
	}
	previous := b.bound
	defer b.FramebufferBind(previous)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(fb))
	if fb == metadata.DefaultFramebuffer {
		gl.ReadBuffer(gl.BACK)
	} else {
		gl.ReadBuffer(attachmentPoint(point))
	}
	out := make([]float32, int(width)*int(height)*4)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.FLOAT, gl.Ptr(&out[0]))
	if code := gl.GetError(); code != gl.NO_ERROR {
		return nil, fmt.Errorf("glReadPixels: error 0x%x", code)
	}
	return out, nil
}
