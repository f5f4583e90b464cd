package glbimport

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

// Tightly packed element sizes per shape when the buffer view declares no
// stride. Vertex attributes are always float32 components.
const (
	SIZE_FLOAT       = 4
	SIZE_VEC2_PACKED = 2 * SIZE_FLOAT
	SIZE_VEC3_PACKED = 3 * SIZE_FLOAT
)

func componentSize(componentType uint32) int {
	switch componentType {
	case COMPONENT_UBYTE:
		return 1
	case COMPONENT_USHORT:
		return 2
	case COMPONENT_UINT, COMPONENT_FLOAT:
		return 4
	}
	return 0
}

// accessorReader decodes typed arrays out of the binary chunk. Every read is
// bounds checked against the chunk before slicing, so a truncated or hostile
// file surfaces as a FormatError instead of an out-of-range panic.
type accessorReader struct {
	doc *Document
	bin []byte
}

// span resolves an accessor to its absolute base offset and effective stride
// and verifies the full run of count elements fits in the binary chunk.
func (r *accessorReader) span(acc *Accessor, elemSize int) (base, stride int, err error) {
	if acc.BufferView == nil {
		return 0, 0, &FormatError{Msg: "accessor without bufferView"}
	}
	view := &r.doc.BufferViews[*acc.BufferView]
	base = int(view.ByteOffset) + int(acc.ByteOffset)
	stride = elemSize
	if view.ByteStride != nil && *view.ByteStride > 0 {
		stride = int(*view.ByteStride)
	}
	if acc.Count == 0 {
		return base, stride, nil
	}
	last := base + stride*(int(acc.Count)-1) + elemSize
	if last > len(r.bin) {
		return 0, 0, &FormatError{Msg: fmt.Sprintf("accessor out of bounds (%d > %d)", last, len(r.bin))}
	}
	return base, stride, nil
}

func (r *accessorReader) float32At(off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(r.bin[off : off+4]))
}

// ReadVec3 reads a float32 3-vector attribute such as POSITION or NORMAL.
func (r *accessorReader) ReadVec3(accessor uint32) ([]vec3.T, error) {
	acc := &r.doc.Accessors[accessor]
	if acc.ComponentType != COMPONENT_FLOAT {
		return nil, &FormatError{Msg: "unsupported component type"}
	}
	base, stride, err := r.span(acc, SIZE_VEC3_PACKED)
	if err != nil {
		return nil, err
	}
	out := make([]vec3.T, acc.Count)
	for i := range out {
		p := base + i*stride
		out[i] = vec3.T{r.float32At(p), r.float32At(p + 4), r.float32At(p + 8)}
	}
	return out, nil
}

// ReadVec2 reads a float32 2-vector attribute such as TEXCOORD_0.
func (r *accessorReader) ReadVec2(accessor uint32) ([]vec2.T, error) {
	acc := &r.doc.Accessors[accessor]
	if acc.ComponentType != COMPONENT_FLOAT {
		return nil, &FormatError{Msg: "unsupported component type"}
	}
	base, stride, err := r.span(acc, SIZE_VEC2_PACKED)
	if err != nil {
		return nil, err
	}
	out := make([]vec2.T, acc.Count)
	for i := range out {
		p := base + i*stride
		out[i] = vec2.T{r.float32At(p), r.float32At(p + 4)}
	}
	return out, nil
}

// ReadIndices reads an index accessor and normalizes unsigned 8/16/32 bit
// components to uint32.
func (r *accessorReader) ReadIndices(accessor uint32) ([]uint32, error) {
	acc := &r.doc.Accessors[accessor]
	size := componentSize(acc.ComponentType)
	if size == 0 || acc.ComponentType == COMPONENT_FLOAT {
		return nil, &FormatError{Msg: "unsupported component type"}
	}
	base, stride, err := r.span(acc, size)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, acc.Count)
	for i := range out {
		p := base + i*stride
		switch acc.ComponentType {
		case COMPONENT_UBYTE:
			out[i] = uint32(r.bin[p])
		case COMPONENT_USHORT:
			out[i] = uint32(binary.LittleEndian.Uint16(r.bin[p : p+2]))
		case COMPONENT_UINT:
			out[i] = binary.LittleEndian.Uint32(r.bin[p : p+4])
		}
	}
	return out, nil
}
