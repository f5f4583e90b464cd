package glbimport

// GLB container layout.
const GLB_SIGNATURE uint32 = 0x46546C67 // "glTF"
const GLB_VERSION uint32 = 2
const GLB_HEADER_SIZE = 12
const GLB_CHUNK_HEADER_SIZE = 8
const GLB_CHUNK_ALIGN = 4

const (
	CHUNK_TYPE_JSON uint32 = 0x4E4F534A // "JSON"
	CHUNK_TYPE_BIN  uint32 = 0x004E4942 // "BIN\0"
)

// Accessor component types, as encoded in the glTF JSON.
const (
	COMPONENT_UBYTE  uint32 = 5121
	COMPONENT_USHORT uint32 = 5123
	COMPONENT_UINT   uint32 = 5125
	COMPONENT_FLOAT  uint32 = 5126
)

// Persisted mesh index widths. Meshes above INDEX_WIDTH_THRESHOLD vertices
// are stored with 32 bit indices, smaller ones with 16 bit.
const (
	INDEX_WIDTH_16 uint16 = 16
	INDEX_WIDTH_32 uint16 = 32
)

const INDEX_WIDTH_THRESHOLD = 65535

// Texture color space classification recorded on persisted images.
const (
	COLOR_SPACE_SRGB   = "srgb"
	COLOR_SPACE_LINEAR = "linear"
)

// Rendering techniques the material builder can target, in preference order.
const (
	TECHNIQUE_PBR    = "pbr/metallic-roughness"
	TECHNIQUE_LEGACY = "legacy/diffuse"
)

// Material feature flags.
const (
	FEATURE_METALLIC_GLOSS_MAP = "METALLIC_GLOSS_MAP"
	FEATURE_NORMAL_MAP         = "NORMAL_MAP"
	FEATURE_EMISSION           = "EMISSION"
)

// FormatError reports a malformed or unsupported container, chunk layout or
// accessor encoding. Fatal.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return "glb: " + e.Msg
}

// GeometryError reports missing mandatory mesh data. Fatal.
type GeometryError struct {
	Msg string
}

func (e *GeometryError) Error() string {
	return "glb geometry: " + e.Msg
}

// MaterialError reports that no usable rendering technique is available. Fatal.
type MaterialError struct {
	Msg string
}

func (e *MaterialError) Error() string {
	return "glb material: " + e.Msg
}

// IOError reports a missing source file or an unwritable output location. Fatal.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return "glb io: " + e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}
