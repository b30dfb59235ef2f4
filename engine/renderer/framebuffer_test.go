package renderer

import (
	"errors"
	"io"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
	"github.com/spaghettifunk/fakesss/engine/renderer/software"
)

func init() {
	core.SetLogOutput(io.Discard)
}

func newBackend(t *testing.T, width, height uint32) *software.Backend {
	t.Helper()
	b := software.New()
	require.NoError(t, b.Initialize(metadata.RendererBackendConfig{ApplicationName: "test", Width: width, Height: height}))
	t.Cleanup(func() { _ = b.Shutdown() })
	return b
}

func newTarget(t *testing.T, b RendererBackend, width, height uint32) *RenderTarget {
	t.Helper()
	rt, err := NewRenderTarget(b, "test", width, height)
	require.NoError(t, err)
	return rt
}

func TestRenderTargetAttach(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt := newTarget(t, b, 4, 4)

	require.NoError(t, rt.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA8)))
	require.NoError(t, rt.Attach(metadata.SlotDepth, metadata.DepthAttachment(metadata.InternalFormatDepth32F)))

	assert.NotEqual(t, metadata.InvalidTexture, rt.BufferHandle(metadata.SlotAux0))
	assert.NotEqual(t, metadata.InvalidTexture, rt.BufferHandle(metadata.SlotDepth))
	assert.Equal(t, metadata.InvalidTexture, rt.BufferHandle(metadata.SlotAux1))
	assert.Equal(t, metadata.BitAux0|metadata.BitDepth, rt.Attached())
	assert.True(t, b.TextureLive(rt.BufferHandle(metadata.SlotAux0)))
}

func TestRenderTargetAttachRestoresBinding(t *testing.T) {
	b := newBackend(t, 4, 4)
	other := newTarget(t, b, 4, 4)
	require.NoError(t, other.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA8)))
	require.NoError(t, other.Bind())

	rt := newTarget(t, b, 4, 4)
	require.NoError(t, rt.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA8)))
	assert.Equal(t, other.Handle(), b.BoundFramebuffer())
}

func TestRenderTargetAttachInvalidSlot(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt := newTarget(t, b, 4, 4)

	err := rt.Attach(metadata.SlotCount, metadata.ColorAttachment(metadata.InternalFormatRGBA8))
	assert.ErrorIs(t, err, ErrInvalidSlot)

	err = rt.Attach(metadata.SlotDepth, metadata.ColorAttachment(metadata.InternalFormatRGBA8))
	assert.ErrorIs(t, err, ErrInvalidSlot)

	err = rt.Attach(metadata.SlotAux0, metadata.DepthAttachment(metadata.InternalFormatDepth24))
	assert.ErrorIs(t, err, ErrInvalidSlot)

	assert.Equal(t, metadata.SlotMask(0), rt.Attached())
	assert.Equal(t, 2, b.TextureCount(), "only the display images exist")
}

func TestRenderTargetAttachTextureFault(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt := newTarget(t, b, 4, 4)
	b.TextureFault = func(metadata.AttachmentDescriptor, uint32, uint32) error {
		return errors.New("out of memory")
	}

	err := rt.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA16F))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTextureAllocation)
	assert.Equal(t, metadata.InvalidTexture, rt.BufferHandle(metadata.SlotAux0))
}

func TestRenderTargetAttachReplaces(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt := newTarget(t, b, 4, 4)

	require.NoError(t, rt.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA8)))
	first := rt.BufferHandle(metadata.SlotAux0)
	require.NoError(t, rt.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA16F)))

	assert.False(t, b.TextureLive(first))
	assert.NotEqual(t, first, rt.BufferHandle(metadata.SlotAux0))
	desc, ok := rt.Descriptor(metadata.SlotAux0)
	require.True(t, ok)
	assert.Equal(t, metadata.InternalFormatRGBA16F, desc.InternalFormat)
}

func TestRenderTargetDestroyIsIdempotent(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt := newTarget(t, b, 4, 4)
	require.NoError(t, rt.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA8)))
	require.NoError(t, rt.Attach(metadata.SlotAux1, metadata.ColorAttachment(metadata.InternalFormatRGBA8)))
	aux0 := rt.BufferHandle(metadata.SlotAux0)
	before := b.TextureCount()

	rt.Destroy(metadata.BitAux0)
	assert.False(t, b.TextureLive(aux0))
	assert.Equal(t, before-1, b.TextureCount())
	assert.Equal(t, metadata.InvalidTexture, rt.BufferHandle(metadata.SlotAux0))

	rt.Destroy(metadata.BitAux0)
	rt.Destroy(metadata.BitAux3 | metadata.BitDepth)
	assert.Equal(t, before-1, b.TextureCount())
	assert.Equal(t, metadata.BitAux1, rt.Attached())
	assert.Equal(t, []metadata.AttachmentPoint{metadata.AttachmentPointColor1}, rt.DrawBuffers())
}

func TestRenderTargetDestroyAux3(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt := newTarget(t, b, 4, 4)
	require.NoError(t, rt.Attach(metadata.SlotAux3, metadata.ColorAttachment(metadata.InternalFormatRGBA8)))
	aux3 := rt.BufferHandle(metadata.SlotAux3)
	require.NotEqual(t, metadata.InvalidTexture, aux3)

	// 0x04 is AUX2, which was never attached
	rt.Destroy(metadata.BitAux2)
	assert.Equal(t, aux3, rt.BufferHandle(metadata.SlotAux3))
	assert.True(t, b.TextureLive(aux3))

	rt.Destroy(metadata.SlotAux3.Bit())
	assert.Equal(t, metadata.InvalidTexture, rt.BufferHandle(metadata.SlotAux3))
	assert.False(t, b.TextureLive(aux3))
	assert.Zero(t, rt.Attached())

	count := b.TextureCount()
	rt.Destroy(metadata.SlotAux3.Bit())
	assert.Equal(t, count, b.TextureCount())
	assert.Equal(t, metadata.InvalidTexture, rt.BufferHandle(metadata.SlotAux3))
}

func TestRenderTargetResizeKeepsDescriptors(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt := newTarget(t, b, 4, 4)
	mip := metadata.ColorAttachment(metadata.InternalFormatRGBA16F).Mipmapped()
	require.NoError(t, rt.Attach(metadata.SlotAux2, mip))
	require.NoError(t, rt.Attach(metadata.SlotDepth, metadata.DepthAttachment(metadata.InternalFormatDepth32F)))
	old := rt.BufferHandle(metadata.SlotAux2)

	require.NoError(t, rt.Resize(metadata.BitAll, 8, 2))

	w, h := rt.Size()
	assert.Equal(t, uint32(8), w)
	assert.Equal(t, uint32(2), h)
	assert.False(t, b.TextureLive(old))

	format, sampler, mipmap, tw, th, ok := b.TextureInfo(rt.BufferHandle(metadata.SlotAux2))
	require.True(t, ok)
	assert.Equal(t, metadata.InternalFormatRGBA16F, format)
	assert.Equal(t, mip.Sampler, sampler)
	assert.True(t, mipmap)
	assert.Equal(t, uint32(8), tw)
	assert.Equal(t, uint32(2), th)
	assert.Equal(t, 4, b.MipLevels(rt.BufferHandle(metadata.SlotAux2)))

	desc, ok := rt.Descriptor(metadata.SlotAux2)
	require.True(t, ok)
	assert.Equal(t, mip, desc)
	assert.Equal(t, metadata.BitAux2|metadata.BitDepth, rt.Attached())
}

func TestRenderTargetResizeSkipsUnattached(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt := newTarget(t, b, 4, 4)
	require.NoError(t, rt.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA8)))

	require.NoError(t, rt.Resize(metadata.BitAll, 2, 2))
	assert.Equal(t, metadata.BitAux0, rt.Attached())
}

func TestRenderTargetBindEmpty(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt := newTarget(t, b, 4, 4)

	assert.ErrorIs(t, rt.Bind(), ErrNoAttachments)
	assert.ErrorIs(t, rt.DrawTo(metadata.SlotAux0), ErrNoAttachments)
}

func TestRenderTargetReleased(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt := newTarget(t, b, 4, 4)
	require.NoError(t, rt.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA8)))
	require.NoError(t, rt.Bind())

	rt.Release()
	assert.Equal(t, metadata.DefaultFramebuffer, b.BoundFramebuffer())
	assert.Equal(t, 2, b.TextureCount())
	assert.ErrorIs(t, rt.Bind(), ErrTargetReleased)
	assert.ErrorIs(t, rt.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA8)), ErrTargetReleased)
	rt.Release()
}

func TestRenderTargetDrawBuffers(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt := newTarget(t, b, 4, 4)
	require.NoError(t, rt.Attach(metadata.SlotAux2, metadata.ColorAttachment(metadata.InternalFormatRGBA8)))
	require.NoError(t, rt.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA8)))
	require.NoError(t, rt.Attach(metadata.SlotDepth, metadata.DepthAttachment(metadata.InternalFormatDepth32F)))

	require.NoError(t, rt.Bind())
	assert.Equal(t, []metadata.AttachmentPoint{metadata.AttachmentPointColor0, metadata.AttachmentPointColor2}, b.DrawBufferList(rt.Handle()))

	require.NoError(t, rt.DrawTo(metadata.SlotAux2))
	assert.Equal(t, []metadata.AttachmentPoint{metadata.AttachmentPointColor2}, b.DrawBufferList(rt.Handle()))

	assert.ErrorIs(t, rt.DrawTo(metadata.SlotAux1), ErrSlotNotAttached)
	assert.ErrorIs(t, rt.DrawTo(metadata.SlotDepth), ErrInvalidSlot)
}

func TestRenderTargetClearReadback(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt := newTarget(t, b, 4, 4)
	require.NoError(t, rt.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA16F)))
	require.NoError(t, rt.Attach(metadata.SlotAux1, metadata.ColorAttachment(metadata.InternalFormatRGBA16F)))

	b.SetState(metadata.OverlayState)
	require.NoError(t, rt.DrawTo(metadata.SlotAux1))
	b.Clear(metadata.CLEAR_COLOR, metadata.ClearValue{Color: mgl32.Vec4{0.25, 0.5, 0.75, 1}})

	px, err := b.ReadPixels(rt.Handle(), metadata.AttachmentPointColor1, 4, 4)
	require.NoError(t, err)
	require.Len(t, px, 4*4*4)
	for i := 0; i < len(px); i += 4 {
		assert.Equal(t, []float32{0.25, 0.5, 0.75, 1}, px[i:i+4])
	}

	px, err = b.ReadPixels(rt.Handle(), metadata.AttachmentPointColor0, 4, 4)
	require.NoError(t, err)
	for _, v := range px {
		assert.Zero(t, v)
	}
}

func TestRenderTargetBindClearUnbind(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt := newTarget(t, b, 4, 4)
	require.NoError(t, rt.Attach(metadata.SlotDepth, metadata.DepthAttachment(metadata.InternalFormatDepth32F)))
	require.NoError(t, rt.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA16F)))

	require.NoError(t, rt.Bind())
	b.SetState(metadata.OpaqueState)
	b.Clear(metadata.CLEAR_COLOR_DEPTH, metadata.ClearValue{Color: mgl32.Vec4{0.25, 0.5, 0.75, 1}, Depth: 1})
	rt.Unbind()
	assert.Equal(t, metadata.DefaultFramebuffer, b.BoundFramebuffer())

	px, err := b.ReadPixels(rt.Handle(), metadata.AttachmentPointColor0, 4, 4)
	require.NoError(t, err)
	require.Len(t, px, 4*4*4)
	for i := 0; i < len(px); i += 4 {
		assert.Equal(t, []float32{0.25, 0.5, 0.75, 1}, px[i:i+4], "texel %d", i/4)
	}
}

func TestRenderTargetGeneratedName(t *testing.T) {
	b := newBackend(t, 4, 4)
	rt, err := NewRenderTarget(b, "", 0, 0)
	require.NoError(t, err)
	assert.Contains(t, rt.Name, "target-")
	w, h := rt.Size()
	assert.Equal(t, uint32(1), w)
	assert.Equal(t, uint32(1), h)
}
