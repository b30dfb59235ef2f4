package software

import (
	"io"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

func init() {
	core.SetLogOutput(io.Discard)
}

const flatProgram = "flat"

// flatKernel draws geometry as given, at depth "depth", in colour "color".
func flatKernel() Kernel {
	return NewKernel([]string{"color", "depth"}, func(u *Uniforms) Stage {
		color := u.Vec3("color").Vec4(1)
		z := u.Float("depth")
		return Stage{
			Vertex: func(v *metadata.Vertex3D) (mgl32.Vec4, Varyings) {
				return mgl32.Vec4{v.Position[0], v.Position[1], z, 1}, Varyings{}
			},
			Fragment: func(*Varyings, *Sampler) (Outputs, bool) {
				return single(color), false
			},
		}
	})
}

func quad() *metadata.Geometry {
	g := &metadata.Geometry{}
	for _, c := range []mgl32.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		g.AddVertex(metadata.Vertex3D{Position: mgl32.Vec3{c[0], c[1], 0}, Texcoord: mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2}})
	}
	g.AddTriangle(0, 1, 2)
	g.AddTriangle(0, 2, 3)
	return g
}

func source(name string) metadata.ShaderSource {
	return metadata.ShaderSource{Name: name, Vertex: "void main() {}", Fragment: "void main() {}"}
}

type fixture struct {
	b       *Backend
	fb      metadata.FramebufferHandle
	color   metadata.TextureHandle
	depth   metadata.TextureHandle
	program metadata.ProgramHandle
	quad    metadata.GeometryHandle
}

func newFixture(t *testing.T, format metadata.InternalFormat) *fixture {
	t.Helper()
	b := New()
	b.RegisterKernel(flatProgram, flatKernel())
	require.NoError(t, b.Initialize(metadata.RendererBackendConfig{Width: 4, Height: 4}))

	f := &fixture{b: b}
	var err error
	f.fb, err = b.FramebufferCreate()
	require.NoError(t, err)
	f.color, err = b.TextureCreate(metadata.ColorAttachment(format), 4, 4)
	require.NoError(t, err)
	f.depth, err = b.TextureCreate(metadata.DepthAttachment(metadata.InternalFormatDepth32F), 4, 4)
	require.NoError(t, err)
	b.FramebufferAttach(f.fb, metadata.AttachmentPointColor0, f.color)
	b.FramebufferAttach(f.fb, metadata.AttachmentPointDepth, f.depth)
	require.True(t, b.FramebufferComplete(f.fb))

	f.program, err = b.ProgramCreate(source(flatProgram))
	require.NoError(t, err)
	f.quad, err = b.GeometryCreate(quad())
	require.NoError(t, err)

	b.FramebufferBind(f.fb)
	b.DrawBuffers([]metadata.AttachmentPoint{metadata.AttachmentPointColor0})
	b.Viewport(metadata.Viewport{Width: 4, Height: 4})
	b.SetState(metadata.OpaqueState)
	b.Clear(metadata.CLEAR_COLOR_DEPTH, metadata.ClearValue{Depth: 1})
	return f
}

func (f *fixture) draw(color mgl32.Vec3, depth float32) {
	f.b.ProgramUse(f.program)
	f.b.Uniform3f(f.b.UniformLocation(f.program, "color"), color)
	f.b.Uniform1f(f.b.UniformLocation(f.program, "depth"), depth)
	f.b.GeometryDraw(f.quad)
}

func (f *fixture) pixel(t *testing.T, x, y int) mgl32.Vec4 {
	t.Helper()
	px, err := f.b.ReadPixels(f.fb, metadata.AttachmentPointColor0, 4, 4)
	require.NoError(t, err)
	i := (y*4 + x) * 4
	return mgl32.Vec4{px[i], px[i+1], px[i+2], px[i+3]}
}

func TestInitializeDisplay(t *testing.T) {
	b := New()
	require.NoError(t, b.Initialize(metadata.RendererBackendConfig{Width: 3, Height: 2}))
	w, h := b.DisplaySize()
	assert.Equal(t, uint32(3), w)
	assert.Equal(t, uint32(2), h)
	assert.Equal(t, 2, b.TextureCount())
	assert.True(t, b.FramebufferComplete(metadata.DefaultFramebuffer))
	assert.Equal(t, []metadata.AttachmentPoint{metadata.AttachmentPointColor0}, b.DrawBufferList(metadata.DefaultFramebuffer))

	depth, err := b.ReadPixels(metadata.DefaultFramebuffer, metadata.AttachmentPointDepth, 3, 2)
	require.NoError(t, err)
	for i := 0; i < len(depth); i += 4 {
		assert.Equal(t, float32(1), depth[i])
	}

	b.Resized(5, 0)
	w, h = b.DisplaySize()
	assert.Equal(t, uint32(5), w)
	assert.Equal(t, uint32(1), h)
	assert.Equal(t, 2, b.TextureCount())
}

func TestFramebufferComplete(t *testing.T) {
	b := New()
	require.NoError(t, b.Initialize(metadata.RendererBackendConfig{Width: 4, Height: 4}))
	fb, err := b.FramebufferCreate()
	require.NoError(t, err)
	assert.False(t, b.FramebufferComplete(fb), "no attachments")

	small, err := b.TextureCreate(metadata.ColorAttachment(metadata.InternalFormatRGBA8), 2, 2)
	require.NoError(t, err)
	big, err := b.TextureCreate(metadata.ColorAttachment(metadata.InternalFormatRGBA8), 4, 4)
	require.NoError(t, err)
	depth, err := b.TextureCreate(metadata.DepthAttachment(metadata.InternalFormatDepth24), 4, 4)
	require.NoError(t, err)

	b.FramebufferAttach(fb, metadata.AttachmentPointColor0, big)
	assert.True(t, b.FramebufferComplete(fb))
	b.FramebufferAttach(fb, metadata.AttachmentPointColor1, small)
	assert.False(t, b.FramebufferComplete(fb), "mixed sizes")
	b.FramebufferAttach(fb, metadata.AttachmentPointColor1, metadata.InvalidTexture)
	b.FramebufferAttach(fb, metadata.AttachmentPointColor2, depth)
	assert.False(t, b.FramebufferComplete(fb), "depth format on a colour point")
	b.FramebufferAttach(fb, metadata.AttachmentPointColor2, metadata.InvalidTexture)
	b.FramebufferAttach(fb, metadata.AttachmentPointDepth, depth)
	assert.True(t, b.FramebufferComplete(fb))

	b.TextureDestroy(depth)
	assert.False(t, b.FramebufferComplete(fb), "dangling texture")
	assert.False(t, b.FramebufferComplete(metadata.FramebufferHandle(999)))
}

func TestTextureCreateErrors(t *testing.T) {
	b := New()
	_, err := b.TextureCreate(metadata.ColorAttachment(metadata.InternalFormatRGBA8), 0, 4)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = b.TextureUpload(nil, metadata.LinearClamp)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestProgramCreate(t *testing.T) {
	b := New()
	_, err := b.ProgramCreate(metadata.ShaderSource{Name: metadata.ShaderLight, Vertex: " ", Fragment: "x"})
	assert.ErrorIs(t, err, ErrEmptySource)
	_, err = b.ProgramCreate(source("missing"))
	assert.ErrorIs(t, err, ErrUnknownKernel)

	for _, name := range metadata.ShaderNames {
		h, err := b.ProgramCreate(source(name))
		require.NoError(t, err, name)
		assert.NotEqual(t, metadata.InvalidProgram, h)
	}

	h, err := b.ProgramCreate(source(metadata.ShaderTonemap))
	require.NoError(t, err)
	assert.True(t, b.UniformLocation(h, "exposure").Valid())
	assert.False(t, b.UniformLocation(h, "camRatio").Valid())
	assert.False(t, b.UniformLocation(metadata.ProgramHandle(999), "exposure").Valid())
}

func TestUniformDefaults(t *testing.T) {
	u := newUniforms([]string{"m", "f"})
	assert.Equal(t, mgl32.Ident4(), u.Mat4("m"))
	assert.Zero(t, u.Float("f"))
	assert.False(t, u.IsSet("f"))
	assert.False(t, u.set(metadata.InvalidUniformLocation, float32(1)))
	assert.False(t, u.set(metadata.UniformLocation(5), float32(1)))
	assert.True(t, u.set(u.location("f"), float32(2)))
	assert.Equal(t, float32(2), u.Float("f"))
	assert.Zero(t, u.Int("f"), "type mismatch reads the default")
}

func TestClearHonoursWriteMasks(t *testing.T) {
	f := newFixture(t, metadata.InternalFormatRGBA16F)

	f.b.SetState(metadata.DepthOnlyState)
	f.b.Clear(metadata.CLEAR_COLOR_DEPTH, metadata.ClearValue{Color: mgl32.Vec4{1, 1, 1, 1}, Depth: 0.5})
	assert.Equal(t, mgl32.Vec4{}, f.pixel(t, 0, 0))
	depth, err := f.b.ReadPixels(f.fb, metadata.AttachmentPointDepth, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), depth[0])

	f.b.SetState(metadata.AdditiveState)
	f.b.Clear(metadata.CLEAR_COLOR_DEPTH, metadata.ClearValue{Color: mgl32.Vec4{1, 2, 3, 1}, Depth: 1})
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, f.pixel(t, 3, 3))
	depth, err = f.b.ReadPixels(f.fb, metadata.AttachmentPointDepth, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), depth[0])
}

func TestFormatPrecision(t *testing.T) {
	f := newFixture(t, metadata.InternalFormatRGBA8)
	f.b.SetState(metadata.OverlayState)
	f.b.Clear(metadata.CLEAR_COLOR, metadata.ClearValue{Color: mgl32.Vec4{2, -1, 0.5, 1}})
	c := f.pixel(t, 1, 1)
	assert.Equal(t, float32(1), c[0])
	assert.Equal(t, float32(0), c[1])
	assert.InDelta(t, 128.0/255, c[2], 1e-6)
}

func TestDrawCoversEveryPixelOnce(t *testing.T) {
	f := newFixture(t, metadata.InternalFormatRGBA16F)
	f.b.SetState(metadata.AdditiveState)
	f.draw(mgl32.Vec3{0.25, 0.5, 1}, 0)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, mgl32.Vec4{0.25, 0.5, 1, 1}, f.pixel(t, x, y), "pixel %d,%d", x, y)
		}
	}
	draws := f.b.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, flatProgram, draws[0].Program)
	assert.Equal(t, 2, draws[0].Triangles)
	assert.Equal(t, f.fb, draws[0].Framebuffer)
}

func TestAdditiveBlending(t *testing.T) {
	f := newFixture(t, metadata.InternalFormatRGBA16F)
	f.b.SetState(metadata.AdditiveState)
	f.draw(mgl32.Vec3{0.25, 0, 0}, 0)
	f.draw(mgl32.Vec3{0, 0.5, 0}, 0)
	f.draw(mgl32.Vec3{1, 0, 0}, 0)

	assert.Equal(t, mgl32.Vec4{1.25, 0.5, 0, 3}, f.pixel(t, 2, 1))
}

func TestDepthTest(t *testing.T) {
	f := newFixture(t, metadata.InternalFormatRGBA16F)
	f.draw(mgl32.Vec3{1, 0, 0}, 0.5)
	f.draw(mgl32.Vec3{0, 1, 0}, 0.8)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, f.pixel(t, 0, 0), "farther draw is rejected")

	f.draw(mgl32.Vec3{0, 0, 1}, -0.5)
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 1}, f.pixel(t, 0, 0), "nearer draw passes")

	depth, err := f.b.ReadPixels(f.fb, metadata.AttachmentPointDepth, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, depth[0], 1e-6)
}

func TestDepthOnlyLeavesColour(t *testing.T) {
	f := newFixture(t, metadata.InternalFormatRGBA16F)
	f.b.SetState(metadata.DepthOnlyState)
	f.draw(mgl32.Vec3{1, 1, 1}, 0)
	assert.Equal(t, mgl32.Vec4{}, f.pixel(t, 0, 0))
	depth, err := f.b.ReadPixels(f.fb, metadata.AttachmentPointDepth, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, depth[0], 1e-6)
}

func TestEmptyDrawBuffersDisableColour(t *testing.T) {
	f := newFixture(t, metadata.InternalFormatRGBA16F)
	f.b.DrawBuffers(nil)
	f.draw(mgl32.Vec3{1, 1, 1}, 0)
	assert.Equal(t, mgl32.Vec4{}, f.pixel(t, 0, 0))
}

func TestReadPixelsBottomRowFirst(t *testing.T) {
	b := New()
	require.NoError(t, b.Initialize(metadata.RendererBackendConfig{Width: 1, Height: 1}))
	h, err := b.TextureUpload(&metadata.ImageData{
		Width: 2, Height: 2, Channels: 3,
		Pixels: []uint8{255, 0, 0, 0, 255, 0, 0, 0, 255, 255, 255, 255},
	}, metadata.LinearClamp)
	require.NoError(t, err)
	fb, err := b.FramebufferCreate()
	require.NoError(t, err)
	b.FramebufferAttach(fb, metadata.AttachmentPointColor0, h)

	px, err := b.ReadPixels(fb, metadata.AttachmentPointColor0, 8, 8)
	require.NoError(t, err)
	require.Len(t, px, 16)
	assert.Equal(t, []float32{1, 0, 0, 1}, px[0:4])
	assert.Equal(t, []float32{0, 1, 0, 1}, px[4:8])
	assert.Equal(t, []float32{0, 0, 1, 1}, px[8:12])
	assert.Equal(t, []float32{1, 1, 1, 1}, px[12:16])

	_, err = b.ReadPixels(fb, metadata.AttachmentPointColor3, 1, 1)
	assert.ErrorIs(t, err, ErrUnknownHandle)
	_, err = b.ReadPixels(metadata.FramebufferHandle(999), metadata.AttachmentPointColor0, 1, 1)
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestGeometryCreateValidatesIndices(t *testing.T) {
	b := New()
	_, err := b.GeometryCreate(nil)
	assert.Error(t, err)
	_, err = b.GeometryCreate(&metadata.Geometry{
		Vertices:  []metadata.Vertex3D{{}, {}},
		Triangles: []metadata.Triangle{{0, 1, 2}},
	})
	assert.Error(t, err)
}
