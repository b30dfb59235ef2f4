package renderer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

type attachment struct {
	texture metadata.TextureHandle
	desc    metadata.AttachmentDescriptor
}

// RenderTarget is a framebuffer plus the textures it owns: up to four colour
// attachments and one depth attachment, each created and destroyed on its own.
type RenderTarget struct {
	Name string

	backend     RendererBackend
	handle      metadata.FramebufferHandle
	width       uint32
	height      uint32
	attachments [metadata.SlotCount]*attachment
	// colour attachment points of the live aux slots, lowest slot first
	drawBuffers []metadata.AttachmentPoint
}

// NewRenderTarget creates an empty target of the given size. An empty name is
// replaced with a generated one.
func NewRenderTarget(backend RendererBackend, name string, width, height uint32) (*RenderTarget, error) {
	if name == "" {
		name = "target-" + uuid.NewString()[:8]
	}
	handle, err := backend.FramebufferCreate()
	if err != nil {
		return nil, fmt.Errorf("render target %s: %w", name, err)
	}
	core.LogDebug("render target %s created (%dx%d)", name, width, height)
	return &RenderTarget{
		Name:    name,
		backend: backend,
		handle:  handle,
		width:   max(width, 1),
		height:  max(height, 1),
	}, nil
}

// Attach allocates a texture with desc at slot, replacing any texture already
// there. The previously bound framebuffer is bound again before returning.
func (rt *RenderTarget) Attach(slot metadata.AttachmentSlot, desc metadata.AttachmentDescriptor) error {
	if !slot.Valid() {
		return fmt.Errorf("render target %s: %w: %d", rt.Name, ErrInvalidSlot, slot)
	}
	if rt.handle == metadata.DefaultFramebuffer {
		return fmt.Errorf("render target %s: %w", rt.Name, ErrTargetReleased)
	}
	if slot.IsDepth() != desc.InternalFormat.IsDepth() {
		return fmt.Errorf("render target %s: %w: %s cannot hold %s", rt.Name, ErrInvalidSlot, slot, desc.InternalFormat)
	}

	texture, err := rt.backend.TextureCreate(desc, rt.width, rt.height)
	if err != nil {
		return fmt.Errorf("render target %s %s: %w: %w", rt.Name, slot, ErrTextureAllocation, err)
	}

	previous := rt.backend.BoundFramebuffer()
	rt.backend.FramebufferBind(rt.handle)
	defer rt.backend.FramebufferBind(previous)

	if old := rt.attachments[slot]; old != nil {
		rt.backend.TextureDestroy(old.texture)
	}
	rt.backend.FramebufferAttach(rt.handle, slot.AttachmentPoint(), texture)
	rt.attachments[slot] = &attachment{texture: texture, desc: desc}
	rt.updateDrawBuffers()
	rt.backend.DrawBuffers(rt.drawBuffers)

	core.LogDebug("render target %s: attached %s %s", rt.Name, slot, desc.InternalFormat)
	if !rt.backend.FramebufferComplete(rt.handle) {
		return fmt.Errorf("render target %s after attaching %s: %w", rt.Name, slot, ErrIncompleteTarget)
	}
	return nil
}

// Destroy releases the attachments selected by mask. Slots that hold nothing
// are skipped, so destroying twice is harmless.
func (rt *RenderTarget) Destroy(mask metadata.SlotMask) {
	changed := false
	for _, slot := range mask.Slots() {
		a := rt.attachments[slot]
		if a == nil {
			continue
		}
		if rt.handle != metadata.DefaultFramebuffer {
			rt.backend.FramebufferAttach(rt.handle, slot.AttachmentPoint(), metadata.InvalidTexture)
		}
		rt.backend.TextureDestroy(a.texture)
		rt.attachments[slot] = nil
		changed = true
		core.LogDebug("render target %s: destroyed %s", rt.Name, slot)
	}
	if changed {
		rt.updateDrawBuffers()
	}
}

// Resize changes the target size and recreates the live attachments selected
// by mask with their original descriptors. Attachments outside mask keep
// their old size.
func (rt *RenderTarget) Resize(mask metadata.SlotMask, width, height uint32) error {
	rt.width = max(width, 1)
	rt.height = max(height, 1)

	// every selected slot goes first so no attach sees mixed sizes
	var live []metadata.AttachmentSlot
	var descs []metadata.AttachmentDescriptor
	for _, slot := range mask.Slots() {
		if a := rt.attachments[slot]; a != nil {
			live = append(live, slot)
			descs = append(descs, a.desc)
		}
	}
	rt.Destroy(mask)

	var errs []error
	for i, slot := range live {
		if err := rt.Attach(slot, descs[i]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Bind makes the target the draw destination with every live colour
// attachment enabled and the viewport covering the whole target.
func (rt *RenderTarget) Bind() error {
	if err := rt.bindable(); err != nil {
		return err
	}
	rt.backend.FramebufferBind(rt.handle)
	rt.backend.Viewport(rt.viewport())
	rt.backend.DrawBuffers(rt.drawBuffers)
	return nil
}

// DrawTo binds the target and routes fragment outputs to the given aux slots
// only, in the given order.
func (rt *RenderTarget) DrawTo(slots ...metadata.AttachmentSlot) error {
	if err := rt.bindable(); err != nil {
		return err
	}
	points := make([]metadata.AttachmentPoint, 0, len(slots))
	for _, s := range slots {
		if !s.IsAux() {
			return fmt.Errorf("render target %s: %w: %s is not a colour slot", rt.Name, ErrInvalidSlot, s)
		}
		if rt.attachments[s] == nil {
			return fmt.Errorf("render target %s: %w: %s", rt.Name, ErrSlotNotAttached, s)
		}
		points = append(points, s.AttachmentPoint())
	}
	rt.backend.FramebufferBind(rt.handle)
	rt.backend.Viewport(rt.viewport())
	rt.backend.DrawBuffers(points)
	return nil
}

// Unbind makes the display framebuffer the draw destination again.
func (rt *RenderTarget) Unbind() {
	rt.backend.FramebufferBind(metadata.DefaultFramebuffer)
}

// BufferHandle returns the texture at slot, or InvalidTexture when the slot is
// not attached.
func (rt *RenderTarget) BufferHandle(slot metadata.AttachmentSlot) metadata.TextureHandle {
	if !slot.Valid() || rt.attachments[slot] == nil {
		return metadata.InvalidTexture
	}
	return rt.attachments[slot].texture
}

// Descriptor returns the configuration slot was attached with.
func (rt *RenderTarget) Descriptor(slot metadata.AttachmentSlot) (metadata.AttachmentDescriptor, bool) {
	if !slot.Valid() || rt.attachments[slot] == nil {
		return metadata.AttachmentDescriptor{}, false
	}
	return rt.attachments[slot].desc, true
}

// Attached returns the mask of live slots.
func (rt *RenderTarget) Attached() metadata.SlotMask {
	var m metadata.SlotMask
	for s, a := range rt.attachments {
		if a != nil {
			m |= metadata.AttachmentSlot(s).Bit()
		}
	}
	return m
}

// DrawBuffers returns a copy of the draw-buffer list Bind installs.
func (rt *RenderTarget) DrawBuffers() []metadata.AttachmentPoint {
	return append([]metadata.AttachmentPoint(nil), rt.drawBuffers...)
}

func (rt *RenderTarget) Size() (uint32, uint32) {
	return rt.width, rt.height
}

func (rt *RenderTarget) Handle() metadata.FramebufferHandle {
	return rt.handle
}

// GenerateMipmap rebuilds the mip chain of slot when it was attached with one.
func (rt *RenderTarget) GenerateMipmap(slot metadata.AttachmentSlot) {
	if !slot.Valid() || rt.attachments[slot] == nil || !rt.attachments[slot].desc.GenerateMipmap {
		return
	}
	rt.backend.TextureGenerateMipmap(rt.attachments[slot].texture)
}

// Release destroys every attachment and the framebuffer itself.
func (rt *RenderTarget) Release() {
	rt.Destroy(metadata.BitAll)
	if rt.handle != metadata.DefaultFramebuffer {
		if rt.backend.BoundFramebuffer() == rt.handle {
			rt.backend.FramebufferBind(metadata.DefaultFramebuffer)
		}
		rt.backend.FramebufferDestroy(rt.handle)
		core.LogDebug("render target %s released", rt.Name)
	}
	rt.handle = metadata.DefaultFramebuffer
}

func (rt *RenderTarget) bindable() error {
	if rt.handle == metadata.DefaultFramebuffer {
		return fmt.Errorf("render target %s: %w", rt.Name, ErrTargetReleased)
	}
	if rt.Attached() == 0 {
		return fmt.Errorf("render target %s: %w", rt.Name, ErrNoAttachments)
	}
	return nil
}

func (rt *RenderTarget) viewport() metadata.Viewport {
	return metadata.Viewport{Width: int32(rt.width), Height: int32(rt.height)}
}

func (rt *RenderTarget) updateDrawBuffers() {
	rt.drawBuffers = rt.drawBuffers[:0]
	for s := metadata.SlotAux0; s < metadata.SlotDepth; s++ {
		if rt.attachments[s] != nil {
			rt.drawBuffers = append(rt.drawBuffers, s.AttachmentPoint())
		}
	}
}
