package glbimport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/flywave/go3d/vec3"
)

func uint32Ptr(v uint32) *uint32 {
	return &v
}

func littleBytes(t *testing.T, vs ...interface{}) []byte {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	for _, v := range vs {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("pack: %v", err)
		}
	}
	return buf.Bytes()
}

func TestReadIndicesUshort(t *testing.T) {
	bin := littleBytes(t, []uint16{0, 1, 2, 1, 2, 3})
	doc := &Document{
		BufferViews: []BufferView{{ByteOffset: 0, ByteLength: uint32(len(bin))}},
		Accessors:   []Accessor{{BufferView: uint32Ptr(0), ComponentType: COMPONENT_USHORT, Count: 6}},
	}
	rd := &accessorReader{doc: doc, bin: bin}

	got, err := rd.ReadIndices(0)
	if err != nil {
		t.Fatalf("ReadIndices failed: %v", err)
	}
	want := []uint32{0, 1, 2, 1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d indices, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestReadIndicesUbyteAndUint(t *testing.T) {
	bin := append([]byte{7, 8, 9, 0}, littleBytes(t, []uint32{70000, 80000, 90000})...)
	doc := &Document{
		BufferViews: []BufferView{
			{ByteOffset: 0, ByteLength: 3},
			{ByteOffset: 4, ByteLength: 12},
		},
		Accessors: []Accessor{
			{BufferView: uint32Ptr(0), ComponentType: COMPONENT_UBYTE, Count: 3},
			{BufferView: uint32Ptr(1), ComponentType: COMPONENT_UINT, Count: 3},
		},
	}
	rd := &accessorReader{doc: doc, bin: bin}

	small, err := rd.ReadIndices(0)
	if err != nil {
		t.Fatalf("ubyte read failed: %v", err)
	}
	if small[0] != 7 || small[2] != 9 {
		t.Errorf("unexpected ubyte indices %v", small)
	}

	wide, err := rd.ReadIndices(1)
	if err != nil {
		t.Fatalf("uint read failed: %v", err)
	}
	if wide[0] != 70000 || wide[2] != 90000 {
		t.Errorf("unexpected uint indices %v", wide)
	}
}

func TestReadVec3Tight(t *testing.T) {
	bin := littleBytes(t, []float32{1, 2, 3, 4, 5, 6})
	doc := &Document{
		BufferViews: []BufferView{{ByteOffset: 0, ByteLength: uint32(len(bin))}},
		Accessors:   []Accessor{{BufferView: uint32Ptr(0), ComponentType: COMPONENT_FLOAT, Count: 2}},
	}
	rd := &accessorReader{doc: doc, bin: bin}

	got, err := rd.ReadVec3(0)
	if err != nil {
		t.Fatalf("ReadVec3 failed: %v", err)
	}
	if got[0] != (vec3.T{1, 2, 3}) || got[1] != (vec3.T{4, 5, 6}) {
		t.Errorf("unexpected vectors %v", got)
	}
}

// Interleaved vertex data: the view stride covers position plus extra
// attribute bytes per vertex.
func TestReadVec3Strided(t *testing.T) {
	stride := uint32(16)
	bin := littleBytes(t, []float32{1, 2, 3, 99, 4, 5, 6, 99})
	doc := &Document{
		BufferViews: []BufferView{{ByteOffset: 0, ByteLength: uint32(len(bin)), ByteStride: &stride}},
		Accessors:   []Accessor{{BufferView: uint32Ptr(0), ComponentType: COMPONENT_FLOAT, Count: 2}},
	}
	rd := &accessorReader{doc: doc, bin: bin}

	got, err := rd.ReadVec3(0)
	if err != nil {
		t.Fatalf("ReadVec3 failed: %v", err)
	}
	if got[0] != (vec3.T{1, 2, 3}) || got[1] != (vec3.T{4, 5, 6}) {
		t.Errorf("unexpected strided vectors %v", got)
	}
}

func TestReadVec2AccessorByteOffset(t *testing.T) {
	bin := littleBytes(t, []float32{99, 0.5, 0.25})
	doc := &Document{
		BufferViews: []BufferView{{ByteOffset: 0, ByteLength: uint32(len(bin))}},
		Accessors:   []Accessor{{BufferView: uint32Ptr(0), ByteOffset: 4, ComponentType: COMPONENT_FLOAT, Count: 1}},
	}
	rd := &accessorReader{doc: doc, bin: bin}

	got, err := rd.ReadVec2(0)
	if err != nil {
		t.Fatalf("ReadVec2 failed: %v", err)
	}
	if got[0][0] != 0.5 || got[0][1] != 0.25 {
		t.Errorf("unexpected uv %v", got[0])
	}
}

func TestReadUnsupportedComponentType(t *testing.T) {
	bin := make([]byte, 64)
	doc := &Document{
		BufferViews: []BufferView{{ByteOffset: 0, ByteLength: 64}},
		Accessors: []Accessor{
			{BufferView: uint32Ptr(0), ComponentType: 5122, Count: 1}, // signed short
			{BufferView: uint32Ptr(0), ComponentType: COMPONENT_FLOAT, Count: 1},
			{BufferView: uint32Ptr(0), ComponentType: COMPONENT_USHORT, Count: 1},
		},
	}
	rd := &accessorReader{doc: doc, bin: bin}

	var fe *FormatError
	if _, err := rd.ReadIndices(0); !errors.As(err, &fe) {
		t.Errorf("expected FormatError for signed short indices, got %v", err)
	}
	if _, err := rd.ReadIndices(1); !errors.As(err, &fe) {
		t.Errorf("expected FormatError for float indices, got %v", err)
	}
	if _, err := rd.ReadVec3(2); !errors.As(err, &fe) {
		t.Errorf("expected FormatError for ushort positions, got %v", err)
	}
}

// A count running past the binary chunk must fail instead of panicking.
func TestReadAccessorOutOfBounds(t *testing.T) {
	bin := make([]byte, 16)
	doc := &Document{
		BufferViews: []BufferView{{ByteOffset: 0, ByteLength: 16}},
		Accessors:   []Accessor{{BufferView: uint32Ptr(0), ComponentType: COMPONENT_FLOAT, Count: 100}},
	}
	rd := &accessorReader{doc: doc, bin: bin}

	var fe *FormatError
	if _, err := rd.ReadVec3(0); !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestReadAccessorWithoutBufferView(t *testing.T) {
	doc := &Document{
		Accessors: []Accessor{{ComponentType: COMPONENT_FLOAT, Count: 1}},
	}
	rd := &accessorReader{doc: doc, bin: nil}

	var fe *FormatError
	if _, err := rd.ReadVec3(0); !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}
