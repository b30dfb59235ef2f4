package metadata

/** @brief Opaque handle of a GPU texture. Zero is never a live texture. */
type TextureHandle uint32

/** @brief The sentinel returned for slots that hold no texture. */
const InvalidTexture TextureHandle = 0

/**
 * @brief Internal storage format of a texture, i.e. how the GPU keeps the texels.
 */
type InternalFormat int

const (
	InternalFormatRGBA8 InternalFormat = iota
	InternalFormatRGB8
	InternalFormatRGBA16F
	InternalFormatRGBA32F
	InternalFormatDepth24
	InternalFormatDepth32
	InternalFormatDepth32F
)

/** @brief IsDepth reports whether the format stores depth rather than colour. */
func (f InternalFormat) IsDepth() bool {
	return f == InternalFormatDepth24 || f == InternalFormatDepth32 || f == InternalFormatDepth32F
}

/** @brief IsFloat reports whether the format keeps values outside [0,1]. */
func (f InternalFormat) IsFloat() bool {
	return f == InternalFormatRGBA16F || f == InternalFormatRGBA32F || f == InternalFormatDepth32F
}

func (f InternalFormat) String() string {
	switch f {
	case InternalFormatRGBA8:
		return "RGBA8"
	case InternalFormatRGB8:
		return "RGB8"
	case InternalFormatRGBA16F:
		return "RGBA16F"
	case InternalFormatRGBA32F:
		return "RGBA32F"
	case InternalFormatDepth24:
		return "DEPTH24"
	case InternalFormatDepth32:
		return "DEPTH32"
	case InternalFormatDepth32F:
		return "DEPTH32F"
	default:
		return "unknown"
	}
}

/** @brief The layout of the data handed to the upload call. */
type UploadFormat int

const (
	UploadFormatRGBA UploadFormat = iota
	UploadFormatRGB
	UploadFormatDepth
)

/** @brief Channels returns the component count of one uploaded texel. */
func (f UploadFormat) Channels() int {
	switch f {
	case UploadFormatRGB:
		return 3
	case UploadFormatDepth:
		return 1
	default:
		return 4
	}
}

/** @brief Component type of uploaded data. */
type ComponentType int

const (
	ComponentTypeUnsignedByte ComponentType = iota
	ComponentTypeFloat
	ComponentTypeUnsignedInt
)

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = iota
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear
	/** @brief Trilinear filtering across the mip chain. Minification only. */
	TextureFilterModeLinearMipmapLinear
)

/** @brief UsesMipmaps reports whether sampling with this filter reads lower mip levels. */
func (f TextureFilter) UsesMipmaps() bool {
	return f == TextureFilterModeLinearMipmapLinear
}

type TextureRepeat int

const (
	TextureRepeatClampToEdge TextureRepeat = iota
	TextureRepeatRepeat
	TextureRepeatMirroredRepeat
)

/**
 * @brief Sampling state shared by attachments and material textures.
 */
type SamplerState struct {
	MinFilter TextureFilter
	MagFilter TextureFilter
	WrapS     TextureRepeat
	WrapT     TextureRepeat
}

/** @brief LinearClamp is the sampling used for material maps. */
var LinearClamp = SamplerState{
	MinFilter: TextureFilterModeLinear,
	MagFilter: TextureFilterModeLinear,
	WrapS:     TextureRepeatClampToEdge,
	WrapT:     TextureRepeatClampToEdge,
}

/**
 * @brief CPU-side image handed to the backend for upload: tightly packed,
 * bottom row first, 8 bits per channel.
 */
type ImageData struct {
	Width    int32
	Height   int32
	Channels int
	Pixels   []uint8
}
