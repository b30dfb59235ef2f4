package metadata

import (
	"fmt"
	"math/bits"
	"strings"
)

/** @brief Opaque handle of a GPU framebuffer. */
type FramebufferHandle uint32

/** @brief The display (window) framebuffer. */
const DefaultFramebuffer FramebufferHandle = 0

/**
 * @brief Identifies one attachment slot of a render target: four auxiliary
 * colour slots followed by the depth slot.
 */
type AttachmentSlot uint8

const (
	SlotAux0 AttachmentSlot = iota
	SlotAux1
	SlotAux2
	SlotAux3
	SlotDepth
	/** @brief Number of recognised slots. Not a slot itself. */
	SlotCount
)

/** @brief Number of auxiliary colour slots. */
const AuxSlotCount = int(SlotDepth)

/** @brief Valid reports whether the slot is one of the recognised identifiers. */
func (s AttachmentSlot) Valid() bool {
	return s < SlotCount
}

/** @brief IsAux reports whether the slot is a colour slot. */
func (s AttachmentSlot) IsAux() bool {
	return s < SlotDepth
}

/** @brief IsDepth reports whether the slot is the depth slot. */
func (s AttachmentSlot) IsDepth() bool {
	return s == SlotDepth
}

/**
 * @brief Bit returns the mask bit selecting this slot in batch operations.
 * Every slot uses 1 << index; there is no second numbering scheme.
 */
func (s AttachmentSlot) Bit() SlotMask {
	if !s.Valid() {
		return 0
	}
	return SlotMask(1) << s
}

/** @brief AttachmentPoint returns where the slot is bound on the framebuffer. */
func (s AttachmentSlot) AttachmentPoint() AttachmentPoint {
	if s.IsDepth() {
		return AttachmentPointDepth
	}
	return AttachmentPointColor0 + AttachmentPoint(s)
}

func (s AttachmentSlot) String() string {
	switch s {
	case SlotAux0, SlotAux1, SlotAux2, SlotAux3:
		return fmt.Sprintf("AUX%d", s)
	case SlotDepth:
		return "DEPTH"
	default:
		return fmt.Sprintf("slot(%d)", uint8(s))
	}
}

/** @brief Bit set of attachment slots used by destroy and resize. */
type SlotMask uint8

const (
	BitAux0  = SlotMask(1) << SlotAux0
	BitAux1  = SlotMask(1) << SlotAux1
	BitAux2  = SlotMask(1) << SlotAux2
	BitAux3  = SlotMask(1) << SlotAux3
	BitDepth = SlotMask(1) << SlotDepth
	/** @brief Selects every aux slot. */
	BitAllAux = BitAux0 | BitAux1 | BitAux2 | BitAux3
	/** @brief Selects every slot. */
	BitAll = BitAllAux | BitDepth
)

/** @brief MaskOf builds a mask from slot identifiers, ignoring invalid ones. */
func MaskOf(slots ...AttachmentSlot) SlotMask {
	var m SlotMask
	for _, s := range slots {
		m |= s.Bit()
	}
	return m
}

/** @brief Has reports whether the slot's bit is set. */
func (m SlotMask) Has(s AttachmentSlot) bool {
	b := s.Bit()
	return b != 0 && m&b != 0
}

/** @brief Slots lists the selected slots in index order. */
func (m SlotMask) Slots() []AttachmentSlot {
	out := make([]AttachmentSlot, 0, bits.OnesCount8(uint8(m&BitAll)))
	for s := SlotAux0; s < SlotCount; s++ {
		if m.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

func (m SlotMask) String() string {
	slots := m.Slots()
	if len(slots) == 0 {
		return "none"
	}
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = s.String()
	}
	return strings.Join(names, "|")
}

/** @brief Binding point of an image on a framebuffer. */
type AttachmentPoint uint8

const (
	AttachmentPointColor0 AttachmentPoint = iota
	AttachmentPointColor1
	AttachmentPointColor2
	AttachmentPointColor3
	AttachmentPointDepth
)

/**
 * @brief Per-attachment configuration. Fixed at attach time and replayed
 * verbatim by resize.
 */
type AttachmentDescriptor struct {
	/** @brief How the GPU stores the texels. */
	InternalFormat InternalFormat
	/** @brief Layout of upload data. */
	UploadFormat UploadFormat
	/** @brief Component type of upload data. */
	ComponentType ComponentType
	/** @brief Filtering and wrap modes. */
	Sampler SamplerState
	/** @brief Whether a mip chain is allocated and may be generated. */
	GenerateMipmap bool
}

/** @brief ColorAttachment returns a nearest/clamp descriptor for a colour format. */
func ColorAttachment(format InternalFormat) AttachmentDescriptor {
	return AttachmentDescriptor{
		InternalFormat: format,
		UploadFormat:   UploadFormatRGBA,
		ComponentType:  ComponentTypeFloat,
		Sampler: SamplerState{
			MinFilter: TextureFilterModeNearest,
			MagFilter: TextureFilterModeNearest,
			WrapS:     TextureRepeatClampToEdge,
			WrapT:     TextureRepeatClampToEdge,
		},
	}
}

/** @brief DepthAttachment returns a nearest/clamp descriptor for a depth format. */
func DepthAttachment(format InternalFormat) AttachmentDescriptor {
	d := ColorAttachment(format)
	d.UploadFormat = UploadFormatDepth
	return d
}

/** @brief Mipmapped returns a copy with trilinear minification and mip generation. */
func (d AttachmentDescriptor) Mipmapped() AttachmentDescriptor {
	d.Sampler.MinFilter = TextureFilterModeLinearMipmapLinear
	d.Sampler.MagFilter = TextureFilterModeLinear
	d.GenerateMipmap = true
	return d
}

/** @brief Linear returns a copy with bilinear filtering. */
func (d AttachmentDescriptor) Linear() AttachmentDescriptor {
	d.Sampler.MinFilter = TextureFilterModeLinear
	d.Sampler.MagFilter = TextureFilterModeLinear
	return d
}
