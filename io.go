package glbimport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

// Persisted artifact formats.
const MESH_SIGNATURE string = "glbm"
const MESH_VERSION uint32 = 1
const MESH_EXT string = ".mesh"
const MATERIAL_SIGNATURE string = "glbt"
const MATERIAL_VERSION uint32 = 1
const MATERIAL_EXT string = ".material"

func toLittleByteOrder(v interface{}) []byte {
	var buf []byte
	b := bytes.NewBuffer(buf)
	e := binary.Write(b, binary.LittleEndian, v)
	if e != nil {
		return nil
	}
	return b.Bytes()
}

func writeLittleByte(wt io.Writer, v interface{}) {
	buf := toLittleByteOrder(v)
	if buf != nil {
		wt.Write(buf)
	}
}

func readLittleByte(rd io.Reader, v interface{}) error {
	return binary.Read(rd, binary.LittleEndian, v)
}

func writeString(wt io.Writer, s string) {
	writeLittleByte(wt, uint32(len(s)))
	wt.Write([]byte(s))
}

func readString(rd io.Reader) (string, error) {
	var size uint32
	if err := readLittleByte(rd, &size); err != nil {
		return "", err
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(rd, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// MeshMarshal writes the geometry in the persisted mesh layout: signature,
// version, index width, vertex arrays, index buffer, bounding box. Indices
// are stored at the width selected by IndexWidth.
func MeshMarshal(wt io.Writer, g *GeometryBuffers) {
	wt.Write([]byte(MESH_SIGNATURE))
	writeLittleByte(wt, MESH_VERSION)

	width := g.IndexWidth()
	writeLittleByte(wt, width)

	writeLittleByte(wt, uint32(len(g.Positions)))
	writeLittleByte(wt, g.Positions)
	writeLittleByte(wt, uint32(len(g.Normals)))
	writeLittleByte(wt, g.Normals)
	writeLittleByte(wt, uint32(len(g.UVs)))
	writeLittleByte(wt, g.UVs)
	writeLittleByte(wt, uint32(len(g.Tangents)))
	writeLittleByte(wt, g.Tangents)

	writeLittleByte(wt, uint32(len(g.Indices)))
	if width == INDEX_WIDTH_16 {
		for _, idx := range g.Indices {
			writeLittleByte(wt, uint16(idx))
		}
	} else {
		writeLittleByte(wt, g.Indices)
	}

	box := g.ComputeBBox()
	writeLittleByte(wt, [6]float64{box.Min[0], box.Min[1], box.Min[2], box.Max[0], box.Max[1], box.Max[2]})
}

// MeshUnMarshal reads back a persisted mesh.
func MeshUnMarshal(rd io.Reader) (*GeometryBuffers, error) {
	sig := make([]byte, 4)
	if _, err := io.ReadFull(rd, sig); err != nil {
		return nil, err
	}
	if string(sig) != MESH_SIGNATURE {
		return nil, errors.New("invalid mesh signature")
	}
	var version uint32
	if err := readLittleByte(rd, &version); err != nil {
		return nil, err
	}
	if version != MESH_VERSION {
		return nil, errors.New("unsupported mesh version")
	}
	var width uint16
	if err := readLittleByte(rd, &width); err != nil {
		return nil, err
	}

	g := &GeometryBuffers{}
	var count uint32

	if err := readLittleByte(rd, &count); err != nil {
		return nil, err
	}
	g.Positions = make([]vec3.T, count)
	if err := readLittleByte(rd, g.Positions); err != nil {
		return nil, err
	}

	if err := readLittleByte(rd, &count); err != nil {
		return nil, err
	}
	g.Normals = make([]vec3.T, count)
	if err := readLittleByte(rd, g.Normals); err != nil {
		return nil, err
	}

	if err := readLittleByte(rd, &count); err != nil {
		return nil, err
	}
	g.UVs = make([]vec2.T, count)
	if err := readLittleByte(rd, g.UVs); err != nil {
		return nil, err
	}

	if err := readLittleByte(rd, &count); err != nil {
		return nil, err
	}
	g.Tangents = make([][4]float32, count)
	if err := readLittleByte(rd, g.Tangents); err != nil {
		return nil, err
	}

	if err := readLittleByte(rd, &count); err != nil {
		return nil, err
	}
	g.Indices = make([]uint32, count)
	if width == INDEX_WIDTH_16 {
		for i := range g.Indices {
			var v uint16
			if err := readLittleByte(rd, &v); err != nil {
				return nil, err
			}
			g.Indices[i] = uint32(v)
		}
	} else {
		if err := readLittleByte(rd, g.Indices); err != nil {
			return nil, err
		}
	}

	var box [6]float64
	if err := readLittleByte(rd, &box); err != nil {
		return nil, err
	}
	return g, nil
}

func writeBinding(wt io.Writer, tb *TextureBinding) {
	if tb == nil {
		writeLittleByte(wt, uint16(0))
		return
	}
	writeLittleByte(wt, uint16(1))
	writeLittleByte(wt, tb.Image)
	writeString(wt, tb.Path)
}

func readBinding(rd io.Reader) (*TextureBinding, error) {
	var present uint16
	if err := readLittleByte(rd, &present); err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	tb := &TextureBinding{}
	if err := readLittleByte(rd, &tb.Image); err != nil {
		return nil, err
	}
	path, err := readString(rd)
	if err != nil {
		return nil, err
	}
	tb.Path = path
	return tb, nil
}

// MaterialMarshal writes the material descriptor: technique, scalar factors,
// optional channel bindings, feature flags.
func MaterialMarshal(wt io.Writer, m *MaterialDescriptor) {
	wt.Write([]byte(MATERIAL_SIGNATURE))
	writeLittleByte(wt, MATERIAL_VERSION)
	writeString(wt, m.Name)
	writeString(wt, m.Technique)

	writeLittleByte(wt, &m.BaseColor)
	writeLittleByte(wt, &m.DiffuseColor)
	writeLittleByte(wt, &m.Metallic)
	writeLittleByte(wt, &m.Smoothness)
	writeLittleByte(wt, &m.Emissive)

	writeBinding(wt, m.BaseColorMap)
	writeBinding(wt, m.DiffuseMap)
	writeBinding(wt, m.MetallicRoughnessMap)
	writeBinding(wt, m.NormalMap)
	writeBinding(wt, m.OcclusionMap)
	writeBinding(wt, m.EmissiveMap)

	writeLittleByte(wt, uint32(len(m.Features)))
	for _, f := range m.Features {
		writeString(wt, f)
	}
}

// MaterialUnMarshal reads back a persisted material descriptor.
func MaterialUnMarshal(rd io.Reader) (*MaterialDescriptor, error) {
	sig := make([]byte, 4)
	if _, err := io.ReadFull(rd, sig); err != nil {
		return nil, err
	}
	if string(sig) != MATERIAL_SIGNATURE {
		return nil, errors.New("invalid material signature")
	}
	var version uint32
	if err := readLittleByte(rd, &version); err != nil {
		return nil, err
	}
	if version != MATERIAL_VERSION {
		return nil, errors.New("unsupported material version")
	}

	m := &MaterialDescriptor{}
	var err error
	if m.Name, err = readString(rd); err != nil {
		return nil, err
	}
	if m.Technique, err = readString(rd); err != nil {
		return nil, err
	}

	if err = readLittleByte(rd, &m.BaseColor); err != nil {
		return nil, err
	}
	if err = readLittleByte(rd, &m.DiffuseColor); err != nil {
		return nil, err
	}
	if err = readLittleByte(rd, &m.Metallic); err != nil {
		return nil, err
	}
	if err = readLittleByte(rd, &m.Smoothness); err != nil {
		return nil, err
	}
	if err = readLittleByte(rd, &m.Emissive); err != nil {
		return nil, err
	}

	for _, dst := range []**TextureBinding{
		&m.BaseColorMap, &m.DiffuseMap, &m.MetallicRoughnessMap,
		&m.NormalMap, &m.OcclusionMap, &m.EmissiveMap,
	} {
		if *dst, err = readBinding(rd); err != nil {
			return nil, err
		}
	}

	var count uint32
	if err = readLittleByte(rd, &count); err != nil {
		return nil, err
	}
	for i := uint32(0); i < count; i++ {
		f, err := readString(rd)
		if err != nil {
			return nil, err
		}
		m.Features = append(m.Features, f)
	}
	return m, nil
}
