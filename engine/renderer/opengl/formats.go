package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

func internalFormat(f metadata.InternalFormat) int32 {
	switch f {
	case metadata.InternalFormatRGB8:
		return gl.RGB8
	case metadata.InternalFormatRGBA16F:
		return gl.RGBA16F
	case metadata.InternalFormatRGBA32F:
		return gl.RGBA32F
	case metadata.InternalFormatDepth24:
		return gl.DEPTH_COMPONENT24
	case metadata.InternalFormatDepth32:
		return gl.DEPTH_COMPONENT32
	case metadata.InternalFormatDepth32F:
		return gl.DEPTH_COMPONENT32F
	default:
		return gl.RGBA8
	}
}

func uploadFormat(f metadata.UploadFormat) uint32 {
	switch f {
	case metadata.UploadFormatRGB:
		return gl.RGB
	case metadata.UploadFormatDepth:
		return gl.DEPTH_COMPONENT
	default:
		return gl.RGBA
	}
}

func componentType(t metadata.ComponentType) uint32 {
	switch t {
	case metadata.ComponentTypeUnsignedByte:
		return gl.UNSIGNED_BYTE
	case metadata.ComponentTypeUnsignedInt:
		return gl.UNSIGNED_INT
	default:
		return gl.FLOAT
	}
}

func filter(f metadata.TextureFilter) int32 {
	switch f {
	case metadata.TextureFilterModeLinear:
		return gl.LINEAR
	case metadata.TextureFilterModeLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	default:
		return gl.NEAREST
	}
}

func wrap(r metadata.TextureRepeat) int32 {
	switch r {
	case metadata.TextureRepeatRepeat:
		return gl.REPEAT
	case metadata.TextureRepeatMirroredRepeat:
		return gl.MIRRORED_REPEAT
	default:
		return gl.CLAMP_TO_EDGE
	}
}

func applySampler(s metadata.SamplerState) {
	mag := s.MagFilter
	if mag == metadata.TextureFilterModeLinearMipmapLinear {
		mag = metadata.TextureFilterModeLinear
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter(s.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter(mag))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap(s.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap(s.WrapT))
}

func attachmentPoint(p metadata.AttachmentPoint) uint32 {
	if p == metadata.AttachmentPointDepth {
		return gl.DEPTH_ATTACHMENT
	}
	return gl.COLOR_ATTACHMENT0 + uint32(p)
}
