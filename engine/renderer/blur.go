package renderer

import (
	"fmt"

	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

// DefaultBlurPasses is the number of horizontal+vertical pass pairs.
const DefaultBlurPasses = 2

// BlurStage runs a separable blur between two colour slots of one target:
// horizontal into Scratch, then vertical into Result, repeated Passes times.
type BlurStage struct {
	Passes  int
	Scratch metadata.AttachmentSlot
	Result  metadata.AttachmentSlot

	horizontal *Shader
	vertical   *Shader
	quad       *Mesh
	width      uint32
	height     uint32
}

func NewBlurStage(horizontal, vertical *Shader, quad *Mesh, passes int) *BlurStage {
	if passes < 1 {
		passes = DefaultBlurPasses
	}
	return &BlurStage{
		Passes:     passes,
		Scratch:    metadata.SlotAux1,
		Result:     metadata.SlotAux2,
		horizontal: horizontal,
		vertical:   vertical,
		quad:       quad,
	}
}

// SetResolution writes the kernel size uniforms of both programs. They are
// not touched again until the next resize.
func (b *BlurStage) SetResolution(width, height uint32) {
	b.width, b.height = width, height
	for _, s := range []*Shader{b.horizontal, b.vertical} {
		s.Bind()
		s.SetInt("width", int32(width))
		s.SetInt("height", int32(height))
		s.SetInt("source", 0)
		s.Unbind()
	}
}

func (b *BlurStage) Resolution() (uint32, uint32) {
	return b.width, b.height
}

// SetShaders swaps the programs, e.g. after a reload, and reapplies the resolution.
func (b *BlurStage) SetShaders(horizontal, vertical *Shader) {
	b.horizontal, b.vertical = horizontal, vertical
	b.SetResolution(b.width, b.height)
}

// Run blurs source into target's Result slot and rebuilds its mip chain. The
// first pass reads source; later passes read the previous result.
func (b *BlurStage) Run(target *RenderTarget, source metadata.TextureHandle) error {
	if source == metadata.InvalidTexture {
		return fmt.Errorf("blur: %w: source", ErrSlotNotAttached)
	}
	backend := target.backend
	backend.SetState(metadata.OverlayState)

	for i := 0; i < b.Passes; i++ {
		input := source
		if i > 0 {
			input = target.BufferHandle(b.Result)
		}

		if err := target.DrawTo(b.Scratch); err != nil {
			return fmt.Errorf("blur pass %d horizontal: %w", i, err)
		}
		b.horizontal.Bind()
		backend.TextureBind(0, input)
		b.quad.Draw()

		if err := target.DrawTo(b.Result); err != nil {
			return fmt.Errorf("blur pass %d vertical: %w", i, err)
		}
		b.vertical.Bind()
		backend.TextureBind(0, target.BufferHandle(b.Scratch))
		b.quad.Draw()
	}
	b.vertical.Unbind()
	target.GenerateMipmap(b.Result)
	return nil
}
