package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	ResourceTypeNone ResourceType = iota
	/** @brief Text resource type. */
	ResourceTypeText
	/** @brief Image resource type, decoded to ImageData. */
	ResourceTypeImage
	/** @brief Shader resource type: the two GLSL stages of a program. */
	ResourceTypeShader
	/** @brief Mesh resource type, parsed to Geometry. */
	ResourceTypeMesh
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeText:
		return "text"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeMesh:
		return "mesh"
	default:
		return "none"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data: *ImageData, ShaderSource, *Geometry or []byte. */
	Data interface{}
}

/** @brief Parameters used when loading a mesh. */
type MeshResourceParams struct {
	/** @brief The largest extent of the mesh after loading. Zero keeps the file's units. */
	Scale float32
	/** @brief Offset applied after scaling. */
	Translation [3]float32
}

/** @brief Parameters used when loading a texture image. */
type ImageResourceParams struct {
	/** @brief Flip rows so the first row is the bottom of the image, as GL samples it. */
	FlipY bool
}
