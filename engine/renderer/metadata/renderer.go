package metadata

import "github.com/go-gl/mathgl/mgl32"

type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/** @brief Size of the display framebuffer in pixels. */
	Width  uint32
	Height uint32
}

/** @brief Which backend executes the render commands. */
type RendererType uint8

const (
	RENDERER_TYPE_OPENGL RendererType = iota
	RENDERER_TYPE_SOFTWARE
)

func (t RendererType) String() string {
	switch t {
	case RENDERER_TYPE_OPENGL:
		return "opengl"
	case RENDERER_TYPE_SOFTWARE:
		return "software"
	default:
		return "unknown"
	}
}

/** @brief Flags for which buffers a clear touches. */
type ClearFlag uint32

const (
	CLEAR_NONE        ClearFlag = 0x0
	CLEAR_COLOR       ClearFlag = 0x1
	CLEAR_DEPTH       ClearFlag = 0x2
	CLEAR_COLOR_DEPTH           = CLEAR_COLOR | CLEAR_DEPTH
)

/** @brief Blend equation applied to colour writes. */
type BlendMode int

const (
	/** @brief Source replaces destination. */
	BLEND_MODE_NONE BlendMode = iota
	/** @brief dst = src + dst (ONE, ONE). */
	BLEND_MODE_ADDITIVE
)

/**
 * @brief Fixed-function state a pass establishes before drawing.
 */
type PipelineState struct {
	DepthTest  bool
	DepthWrite bool
	ColorWrite bool
	Blend      BlendMode
}

/** @brief The state used by geometry passes. */
var OpaqueState = PipelineState{DepthTest: true, DepthWrite: true, ColorWrite: true, Blend: BLEND_MODE_NONE}

/** @brief Depth-only state used by shadow passes. */
var DepthOnlyState = PipelineState{DepthTest: true, DepthWrite: true, ColorWrite: false, Blend: BLEND_MODE_NONE}

/** @brief Full-screen accumulation state. */
var AdditiveState = PipelineState{DepthTest: false, DepthWrite: false, ColorWrite: true, Blend: BLEND_MODE_ADDITIVE}

/** @brief Full-screen replace state used by blur and tonemap. */
var OverlayState = PipelineState{DepthTest: false, DepthWrite: false, ColorWrite: true, Blend: BLEND_MODE_NONE}

/** @brief Viewport rectangle in pixels. */
type Viewport struct {
	X, Y          int32
	Width, Height int32
}

/** @brief The colour a clear writes into every bound draw buffer. */
type ClearValue struct {
	Color mgl32.Vec4
	Depth float32
}
