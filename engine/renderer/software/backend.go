// Package software is a CPU implementation of the renderer backend. Each GPU
// program is replaced by a Go kernel registered under the program name.
package software

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

var (
	ErrUnknownKernel     = errors.New("no kernel registered for program")
	ErrEmptySource       = errors.New("empty shader source")
	ErrUnknownHandle     = errors.New("unknown handle")
	ErrInvalidDimensions = errors.New("invalid texture dimensions")
)

const maxTextureUnits = 16

type framebuffer struct {
	attachments [metadata.AttachmentPointDepth + 1]metadata.TextureHandle
	drawBuffers []metadata.AttachmentPoint
}

type program struct {
	name     string
	kernel   Kernel
	uniforms *Uniforms
}

type geometry struct {
	vertices  []metadata.Vertex3D
	triangles []metadata.Triangle
}

// DrawCall records one GeometryDraw.
type DrawCall struct {
	Program     string
	Framebuffer metadata.FramebufferHandle
	DrawBuffers []metadata.AttachmentPoint
	State       metadata.PipelineState
	Triangles   int
}

// Backend renders into memory. It is not safe for concurrent use.
type Backend struct {
	// TextureFault, when set, is consulted before every texture allocation
	// and its error is returned instead.
	TextureFault func(desc metadata.AttachmentDescriptor, width, height uint32) error

	kernels    map[string]Kernel
	textures   map[metadata.TextureHandle]*texture
	fbs        map[metadata.FramebufferHandle]*framebuffer
	programs   map[metadata.ProgramHandle]*program
	geometries map[metadata.GeometryHandle]*geometry
	nextHandle uint32

	bound    metadata.FramebufferHandle
	current  metadata.ProgramHandle
	units    [maxTextureUnits]metadata.TextureHandle
	viewport metadata.Viewport
	state    metadata.PipelineState

	width, height uint32

	draws      []DrawCall
	outOfRange map[string]int
}

// New returns a backend with the built-in kernels registered.
func New() *Backend {
	b := &Backend{
		kernels:    make(map[string]Kernel),
		textures:   make(map[metadata.TextureHandle]*texture),
		fbs:        make(map[metadata.FramebufferHandle]*framebuffer),
		programs:   make(map[metadata.ProgramHandle]*program),
		geometries: make(map[metadata.GeometryHandle]*geometry),
		outOfRange: make(map[string]int),
		state:      metadata.OpaqueState,
	}
	for name, k := range builtinKernels() {
		b.kernels[name] = k
	}
	return b
}

// RegisterKernel installs k for programs named name, replacing any existing one.
func (b *Backend) RegisterKernel(name string, k Kernel) {
	b.kernels[name] = k
}

func (b *Backend) handle() uint32 {
	b.nextHandle++
	return b.nextHandle
}

func (b *Backend) Initialize(config metadata.RendererBackendConfig) error {
	b.fbs[metadata.DefaultFramebuffer] = &framebuffer{drawBuffers: []metadata.AttachmentPoint{metadata.AttachmentPointColor0}}
	b.Resized(config.Width, config.Height)
	core.LogInfo("software renderer initialized (%dx%d)", b.width, b.height)
	return nil
}

func (b *Backend) Shutdown() error {
	for h := range b.programs {
		b.ProgramDestroy(h)
	}
	for h := range b.geometries {
		b.GeometryDestroy(h)
	}
	for h := range b.fbs {
		if h != metadata.DefaultFramebuffer {
			b.FramebufferDestroy(h)
		}
	}
	b.textures = make(map[metadata.TextureHandle]*texture)
	return nil
}

// Resized reallocates the display images.
func (b *Backend) Resized(width, height uint32) {
	b.width, b.height = max(width, 1), max(height, 1)
	fb, ok := b.fbs[metadata.DefaultFramebuffer]
	if !ok {
		fb = &framebuffer{drawBuffers: []metadata.AttachmentPoint{metadata.AttachmentPointColor0}}
		b.fbs[metadata.DefaultFramebuffer] = fb
	}
	for _, h := range fb.attachments {
		delete(b.textures, h)
	}
	color := metadata.ColorAttachment(metadata.InternalFormatRGBA8)
	depth := metadata.DepthAttachment(metadata.InternalFormatDepth24)
	fb.attachments[metadata.AttachmentPointColor0] = b.allocate(color, b.width, b.height)
	fb.attachments[metadata.AttachmentPointDepth] = b.allocate(depth, b.width, b.height)
	b.textures[fb.attachments[metadata.AttachmentPointDepth]].fill(mgl32.Vec4{1, 0, 0, 1})
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	b.draws = b.draws[:0]
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	return nil
}

func (b *Backend) allocate(desc metadata.AttachmentDescriptor, width, height uint32) metadata.TextureHandle {
	h := metadata.TextureHandle(b.handle())
	b.textures[h] = newTexture(desc.InternalFormat, desc.Sampler, desc.GenerateMipmap, int(width), int(height))
	return h
}

func (b *Backend) TextureCreate(desc metadata.AttachmentDescriptor, width, height uint32) (metadata.TextureHandle, error) {
	if width == 0 || height == 0 {
		return metadata.InvalidTexture, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if b.TextureFault != nil {
		if err := b.TextureFault(desc, width, height); err != nil {
			return metadata.InvalidTexture, err
		}
	}
	return b.allocate(desc, width, height), nil
}

func (b *Backend) TextureUpload(image *metadata.ImageData, sampler metadata.SamplerState) (metadata.TextureHandle, error) {
	if image == nil || image.Width <= 0 || image.Height <= 0 {
		return metadata.InvalidTexture, ErrInvalidDimensions
	}
	desc := metadata.ColorAttachment(metadata.InternalFormatRGBA8)
	desc.Sampler = sampler
	h, err := b.TextureCreate(desc, uint32(image.Width), uint32(image.Height))
	if err != nil {
		return h, err
	}
	t := b.textures[h]
	ch := image.Channels
	for y := 0; y < int(image.Height); y++ {
		for x := 0; x < int(image.Width); x++ {
			i := (y*int(image.Width) + x) * ch
			c := mgl32.Vec4{0, 0, 0, 1}
			for k := 0; k < ch && k < 4 && i+k < len(image.Pixels); k++ {
				c[k] = float32(image.Pixels[i+k]) / 255
			}
			if ch == 1 {
				c[1], c[2] = c[0], c[0]
			}
			t.store(x, y, c)
		}
	}
	return h, nil
}

func (b *Backend) TextureDestroy(h metadata.TextureHandle) {
	delete(b.textures, h)
	for i, u := range b.units {
		if u == h {
			b.units[i] = metadata.InvalidTexture
		}
	}
}

func (b *Backend) TextureGenerateMipmap(h metadata.TextureHandle) {
	if t, ok := b.textures[h]; ok {
		t.generateMipmap()
	}
}

func (b *Backend) TextureBind(unit uint32, h metadata.TextureHandle) {
	if unit < maxTextureUnits {
		b.units[unit] = h
	}
}

// TextureLive reports whether h refers to an allocated texture.
func (b *Backend) TextureLive(h metadata.TextureHandle) bool {
	_, ok := b.textures[h]
	return ok
}

// TextureCount is the number of live textures, display images included.
func (b *Backend) TextureCount() int {
	return len(b.textures)
}

// TextureInfo returns the format, sampling and size h was created with.
func (b *Backend) TextureInfo(h metadata.TextureHandle) (metadata.InternalFormat, metadata.SamplerState, bool, uint32, uint32, bool) {
	t, ok := b.textures[h]
	if !ok {
		return 0, metadata.SamplerState{}, false, 0, 0, false
	}
	return t.format, t.sampler, t.mipmap, uint32(t.width()), uint32(t.height()), true
}

// MipLevels returns the number of levels allocated for h.
func (b *Backend) MipLevels(h metadata.TextureHandle) int {
	if t, ok := b.textures[h]; ok {
		return len(t.levels)
	}
	return 0
}

func (b *Backend) FramebufferCreate() (metadata.FramebufferHandle, error) {
	h := metadata.FramebufferHandle(b.handle())
	b.fbs[h] = &framebuffer{}
	return h, nil
}

func (b *Backend) FramebufferDestroy(h metadata.FramebufferHandle) {
	if h == metadata.DefaultFramebuffer {
		return
	}
	delete(b.fbs, h)
	if b.bound == h {
		b.bound = metadata.DefaultFramebuffer
	}
}

func (b *Backend) FramebufferBind(h metadata.FramebufferHandle) {
	if _, ok := b.fbs[h]; !ok {
		core.LogWarn("software: bind of unknown framebuffer %d", h)
		return
	}
	b.bound = h
}

func (b *Backend) BoundFramebuffer() metadata.FramebufferHandle {
	return b.bound
}

func (b *Backend) FramebufferAttach(h metadata.FramebufferHandle, point metadata.AttachmentPoint, tex metadata.TextureHandle) {
	fb, ok := b.fbs[h]
	if !ok || h == metadata.DefaultFramebuffer || point > metadata.AttachmentPointDepth {
		return
	}
	fb.attachments[point] = tex
}

func (b *Backend) FramebufferComplete(h metadata.FramebufferHandle) bool {
	fb, ok := b.fbs[h]
	if !ok {
		return false
	}
	w, hgt, seen := -1, -1, false
	for point, th := range fb.attachments {
		if th == metadata.InvalidTexture {
			continue
		}
		t, ok := b.textures[th]
		if !ok {
			return false
		}
		if (metadata.AttachmentPoint(point) == metadata.AttachmentPointDepth) != t.format.IsDepth() {
			return false
		}
		if seen && (t.width() != w || t.height() != hgt) {
			return false
		}
		w, hgt, seen = t.width(), t.height(), true
	}
	return seen
}

func (b *Backend) DrawBuffers(points []metadata.AttachmentPoint) {
	if fb, ok := b.fbs[b.bound]; ok {
		fb.drawBuffers = append(fb.drawBuffers[:0:0], points...)
	}
}

// DrawBufferList returns the draw buffers configured on h.
func (b *Backend) DrawBufferList(h metadata.FramebufferHandle) []metadata.AttachmentPoint {
	if fb, ok := b.fbs[h]; ok {
		return append([]metadata.AttachmentPoint(nil), fb.drawBuffers...)
	}
	return nil
}

func (b *Backend) Viewport(vp metadata.Viewport) {
	b.viewport = vp
}

func (b *Backend) SetState(state metadata.PipelineState) {
	b.state = state
}

// Clear fills the bound framebuffer's draw buffers and depth image. Colour
// clears honour the colour write mask.
func (b *Backend) Clear(flags metadata.ClearFlag, value metadata.ClearValue) {
	fb, ok := b.fbs[b.bound]
	if !ok {
		return
	}
	if flags&metadata.CLEAR_COLOR != 0 && b.state.ColorWrite {
		for _, p := range fb.drawBuffers {
			if t, ok := b.textures[fb.attachments[p]]; ok {
				t.fill(value.Color)
			}
		}
	}
	if flags&metadata.CLEAR_DEPTH != 0 && b.state.DepthWrite {
		if t, ok := b.textures[fb.attachments[metadata.AttachmentPointDepth]]; ok {
			t.fill(mgl32.Vec4{value.Depth, 0, 0, 1})
		}
	}
}

func (b *Backend) ProgramCreate(source metadata.ShaderSource) (metadata.ProgramHandle, error) {
	if strings.TrimSpace(source.Vertex) == "" || strings.TrimSpace(source.Fragment) == "" {
		return metadata.InvalidProgram, fmt.Errorf("%s: %w", source.Name, ErrEmptySource)
	}
	k, ok := b.kernels[source.Name]
	if !ok {
		return metadata.InvalidProgram, fmt.Errorf("%w %q", ErrUnknownKernel, source.Name)
	}
	h := metadata.ProgramHandle(b.handle())
	b.programs[h] = &program{name: source.Name, kernel: k, uniforms: newUniforms(k.Uniforms())}
	return h, nil
}

func (b *Backend) ProgramDestroy(h metadata.ProgramHandle) {
	delete(b.programs, h)
	if b.current == h {
		b.current = metadata.InvalidProgram
	}
}

func (b *Backend) ProgramUse(h metadata.ProgramHandle) {
	b.current = h
}

func (b *Backend) UniformLocation(h metadata.ProgramHandle, name string) metadata.UniformLocation {
	p, ok := b.programs[h]
	if !ok {
		return metadata.InvalidUniformLocation
	}
	return p.uniforms.location(name)
}

func (b *Backend) setUniform(loc metadata.UniformLocation, v interface{}) {
	if p, ok := b.programs[b.current]; ok {
		p.uniforms.set(loc, v)
	}
}

func (b *Backend) Uniform1i(loc metadata.UniformLocation, v int32)            { b.setUniform(loc, v) }
func (b *Backend) Uniform1f(loc metadata.UniformLocation, v float32)          { b.setUniform(loc, v) }
func (b *Backend) Uniform2f(loc metadata.UniformLocation, v mgl32.Vec2)       { b.setUniform(loc, v) }
func (b *Backend) Uniform3f(loc metadata.UniformLocation, v mgl32.Vec3)       { b.setUniform(loc, v) }
func (b *Backend) UniformMatrix4f(loc metadata.UniformLocation, m mgl32.Mat4) { b.setUniform(loc, m) }

// ProgramUniforms exposes the values set on h, for inspection.
func (b *Backend) ProgramUniforms(h metadata.ProgramHandle) *Uniforms {
	if p, ok := b.programs[h]; ok {
		return p.uniforms
	}
	return nil
}

func (b *Backend) GeometryCreate(g *metadata.Geometry) (metadata.GeometryHandle, error) {
	if g == nil {
		return metadata.InvalidGeometry, ErrUnknownHandle
	}
	for _, t := range g.Triangles {
		for _, i := range t {
			if int(i) >= len(g.Vertices) {
				return metadata.InvalidGeometry, fmt.Errorf("triangle index %d out of range (%d vertices)", i, len(g.Vertices))
			}
		}
	}
	h := metadata.GeometryHandle(b.handle())
	b.geometries[h] = &geometry{
		vertices:  append([]metadata.Vertex3D(nil), g.Vertices...),
		triangles: append([]metadata.Triangle(nil), g.Triangles...),
	}
	return h, nil
}

func (b *Backend) GeometryDestroy(h metadata.GeometryHandle) {
	delete(b.geometries, h)
}

func (b *Backend) GeometryDraw(h metadata.GeometryHandle) {
	g, ok := b.geometries[h]
	if !ok {
		return
	}
	p, ok := b.programs[b.current]
	if !ok {
		core.LogWarn("software: draw without a program")
		return
	}
	fb := b.fbs[b.bound]
	b.draws = append(b.draws, DrawCall{
		Program:     p.name,
		Framebuffer: b.bound,
		DrawBuffers: append([]metadata.AttachmentPoint(nil), fb.drawBuffers...),
		State:       b.state,
		Triangles:   len(g.triangles),
	})
	sampler := &Sampler{backend: b}
	b.rasterize(g, p.kernel.Prepare(p.uniforms), fb, sampler)
	b.outOfRange[p.name] += sampler.outOfRange
}

// Draws returns the draw calls issued since the last BeginFrame.
func (b *Backend) Draws() []DrawCall {
	return append([]DrawCall(nil), b.draws...)
}

// OutOfRangeSamples counts texture reads outside [0,1] made by the named program.
func (b *Backend) OutOfRangeSamples(program string) int {
	return b.outOfRange[program]
}

func (b *Backend) ReadPixels(h metadata.FramebufferHandle, point metadata.AttachmentPoint, width, height uint32) ([]float32, error) {
	fb, ok := b.fbs[h]
	if !ok || point > metadata.AttachmentPointDepth {
		return nil, fmt.Errorf("%w: framebuffer %d", ErrUnknownHandle, h)
	}
	t, ok := b.textures[fb.attachments[point]]
	if !ok {
		return nil, fmt.Errorf("%w: nothing attached at %d", ErrUnknownHandle, point)
	}
	w, hgt := min(int(width), t.width()), min(int(height), t.height())
	out := make([]float32, 0, w*hgt*4)
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			c := t.load(x, y)
			out = append(out, c[:]...)
		}
	}
	return out, nil
}

// DisplaySize is the size of the default framebuffer.
func (b *Backend) DisplaySize() (uint32, uint32) {
	return b.width, b.height
}
