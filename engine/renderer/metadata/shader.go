package metadata

import "fmt"

/** @brief Opaque handle of a linked GPU program. */
type ProgramHandle uint32

const InvalidProgram ProgramHandle = 0

/**
 * @brief Location of a uniform inside a program. A negative value means the
 * program has no such uniform; writes through it are skipped.
 */
type UniformLocation int32

const InvalidUniformLocation UniformLocation = -1

/** @brief Valid reports whether the location refers to a live uniform. */
func (l UniformLocation) Valid() bool {
	return l >= 0
}

/**
 * @brief Represents the current state of a given shader.
 */
type ShaderState int

const (
	/** @brief The shader has not yet gone through the creation process, and is unusable.*/
	SHADER_STATE_NOT_CREATED ShaderState = iota
	/** @brief The shader is compiled, linked and ready for use.*/
	SHADER_STATE_INITIALIZED
	/** @brief The program was destroyed. */
	SHADER_STATE_DESTROYED
)

type ShaderStage int

const (
	SHADER_STAGE_VERTEX ShaderStage = iota
	SHADER_STAGE_FRAGMENT
)

func (s ShaderStage) String() string {
	switch s {
	case SHADER_STAGE_VERTEX:
		return "vert"
	case SHADER_STAGE_FRAGMENT:
		return "frag"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

/**
 * @brief GLSL sources of one program, keyed by the program name. The name also
 * selects the CPU kernel of the software backend.
 */
type ShaderSource struct {
	Name     string
	Vertex   string
	Fragment string
}

/** @brief Names of the programs the pipeline links. */
const (
	ShaderDepth   = "depth"
	ShaderFront   = "front"
	ShaderLight   = "light"
	ShaderHBlur   = "hblur"
	ShaderVBlur   = "vblur"
	ShaderTonemap = "tonemap"
)

/** @brief ShaderNames lists every pipeline program in link order. */
var ShaderNames = []string{ShaderDepth, ShaderFront, ShaderLight, ShaderHBlur, ShaderVBlur, ShaderTonemap}
