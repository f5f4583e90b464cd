package glbimport

import (
	"math"

	dvec3 "github.com/flywave/go3d/float64/vec3"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

// GeometryBuffers holds one primitive's decoded vertex and index arrays
// after conversion to the renderer's left-handed convention.
type GeometryBuffers struct {
	Positions []vec3.T
	Normals   []vec3.T
	UVs       []vec2.T
	Tangents  [][4]float32
	Indices   []uint32
}

func (g *GeometryBuffers) VertexCount() int {
	return len(g.Positions)
}

func (g *GeometryBuffers) TriangleCount() int {
	return len(g.Indices) / 3
}

// IndexWidth returns the storage width for the persisted index buffer.
// Purely a storage optimization, no semantic effect.
func (g *GeometryBuffers) IndexWidth() uint16 {
	if g.VertexCount() > INDEX_WIDTH_THRESHOLD {
		return INDEX_WIDTH_32
	}
	return INDEX_WIDTH_16
}

// FlipHandedness negates the Z component of every vector, converting between
// right-handed and left-handed axes. The input is not modified; applying the
// conversion twice returns the original values.
func FlipHandedness(in []vec3.T) []vec3.T {
	out := make([]vec3.T, len(in))
	for i, v := range in {
		out[i] = vec3.T{v[0], v[1], -v[2]}
	}
	return out
}

// FlipUVs converts texture coordinates from a top-left to a bottom-left
// origin: (u,v) -> (u, 1-v). Pure, involutive.
func FlipUVs(in []vec2.T) []vec2.T {
	out := make([]vec2.T, len(in))
	for i, v := range in {
		out[i] = vec2.T{v[0], 1 - v[1]}
	}
	return out
}

// ReverseWinding swaps the first and third index of every consecutive
// triangle: (a,b,c) -> (c,b,a). Pure, involutive. A trailing partial group
// is carried over unchanged.
func ReverseWinding(in []uint32) []uint32 {
	out := make([]uint32, len(in))
	copy(out, in)
	for i := 0; i+2 < len(out); i += 3 {
		out[i], out[i+2] = out[i+2], out[i]
	}
	return out
}

// identityIndices synthesizes 0..n-1 for an unindexed triangle list.
func identityIndices(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i)
	}
	return out
}

// BuildGeometry decodes the first primitive of the first mesh and applies
// the axis, UV and winding conversions exactly once each.
func BuildGeometry(doc *Document, bin []byte) (*GeometryBuffers, error) {
	if len(doc.Meshes) == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return nil, &GeometryError{Msg: "no meshes/primitives/positions"}
	}
	if len(doc.Meshes) > 1 {
		warnf("file declares %d meshes, only the first is consumed", len(doc.Meshes))
	}
	prim := &doc.Meshes[0].Primitives[0]
	if len(doc.Meshes[0].Primitives) > 1 {
		warnf("mesh declares %d primitives, only the first is consumed", len(doc.Meshes[0].Primitives))
	}

	posAcc, ok := prim.Attributes[ATTR_POSITION]
	if !ok {
		return nil, &GeometryError{Msg: "no meshes/primitives/positions"}
	}

	rd := &accessorReader{doc: doc, bin: bin}

	positions, err := rd.ReadVec3(posAcc)
	if err != nil {
		return nil, err
	}

	// NORMAL and TEXCOORD_0 are optional; an undecodable accessor on them is
	// a warning and the attribute is treated as absent.
	var normals []vec3.T
	if idx, ok := prim.Attributes[ATTR_NORMAL]; ok {
		if normals, err = rd.ReadVec3(idx); err != nil {
			warnf("NORMAL accessor unusable: %v, recomputing from topology", err)
			normals = nil
		}
	}

	var uvs []vec2.T
	if idx, ok := prim.Attributes[ATTR_TEXCOORD]; ok {
		if uvs, err = rd.ReadVec2(idx); err != nil {
			warnf("TEXCOORD_0 accessor unusable: %v, skipped", err)
			uvs = nil
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = rd.ReadIndices(*prim.Indices); err != nil {
			return nil, err
		}
	} else {
		indices = identityIndices(len(positions))
	}

	g := &GeometryBuffers{
		Positions: FlipHandedness(positions),
		UVs:       FlipUVs(uvs),
		Indices:   ReverseWinding(indices),
	}
	if normals != nil {
		g.Normals = FlipHandedness(normals)
	} else {
		g.Normals = ComputeNormals(g.Positions, g.Indices)
	}
	g.Tangents = ComputeTangents(g.Positions, g.Normals, g.UVs, g.Indices)

	return g, nil
}

// ComputeNormals derives smooth per-vertex normals from triangle topology by
// accumulating area-weighted face normals.
func ComputeNormals(vertices []vec3.T, indices []uint32) []vec3.T {
	normals := make([]vec3.T, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		pt1 := vertices[indices[i]]
		pt2 := vertices[indices[i+1]]
		pt3 := vertices[indices[i+2]]

		sub1 := vec3.Sub(&pt3, &pt2)
		sub2 := vec3.Sub(&pt1, &pt2)

		cro := vec3.Cross(&sub1, &sub2)
		l := cro.Length()
		if l == 0 {
			continue
		}
		weighted := cro.Scale(1 / l)

		normals[indices[i]].Add(weighted)
		normals[indices[i+1]].Add(weighted)
		normals[indices[i+2]].Add(weighted)
	}

	for i := range normals {
		normals[i].Normalize()
	}
	return normals
}

// ComputeTangents derives per-vertex tangents from UVs and normals. The
// fourth component carries the bitangent handedness. Without UVs every
// tangent degenerates to +X.
func ComputeTangents(vertices, normals []vec3.T, uvs []vec2.T, indices []uint32) [][4]float32 {
	tangents := make([][4]float32, len(vertices))
	if len(uvs) < len(vertices) {
		for i := range tangents {
			tangents[i] = [4]float32{1, 0, 0, 1}
		}
		return tangents
	}

	tan1 := make([]vec3.T, len(vertices))
	tan2 := make([]vec3.T, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i1, i2, i3 := indices[i], indices[i+1], indices[i+2]

		e1 := vec3.Sub(&vertices[i2], &vertices[i1])
		e2 := vec3.Sub(&vertices[i3], &vertices[i1])

		du1 := uvs[i2][0] - uvs[i1][0]
		dv1 := uvs[i2][1] - uvs[i1][1]
		du2 := uvs[i3][0] - uvs[i1][0]
		dv2 := uvs[i3][1] - uvs[i1][1]

		det := du1*dv2 - du2*dv1
		if det == 0 {
			continue
		}
		r := 1 / det

		sdir := vec3.T{
			(dv2*e1[0] - dv1*e2[0]) * r,
			(dv2*e1[1] - dv1*e2[1]) * r,
			(dv2*e1[2] - dv1*e2[2]) * r,
		}
		tdir := vec3.T{
			(du1*e2[0] - du2*e1[0]) * r,
			(du1*e2[1] - du2*e1[1]) * r,
			(du1*e2[2] - du2*e1[2]) * r,
		}

		tan1[i1].Add(&sdir)
		tan1[i2].Add(&sdir)
		tan1[i3].Add(&sdir)
		tan2[i1].Add(&tdir)
		tan2[i2].Add(&tdir)
		tan2[i3].Add(&tdir)
	}

	for i := range tangents {
		n := normals[i]
		t := tan1[i]

		// Gram-Schmidt orthogonalize against the normal.
		d := vec3.Dot(&n, &t)
		scaled := n
		scaled.Scale(d)
		ortho := vec3.Sub(&t, &scaled)
		if ortho.Length() == 0 {
			tangents[i] = [4]float32{1, 0, 0, 1}
			continue
		}
		ortho.Normalize()

		w := float32(1)
		cross := vec3.Cross(&n, &t)
		if vec3.Dot(&cross, &tan2[i]) < 0 {
			w = -1
		}
		tangents[i] = [4]float32{ortho[0], ortho[1], ortho[2], w}
	}
	return tangents
}

// ComputeBBox returns the axis-aligned bounding box of the positions.
func (g *GeometryBuffers) ComputeBBox() dvec3.Box {
	if len(g.Positions) == 0 {
		return dvec3.Box{}
	}
	minX, minY, minZ := math.MaxFloat64, math.MaxFloat64, math.MaxFloat64
	maxX, maxY, maxZ := -math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64
	for i := range g.Positions {
		minX = math.Min(minX, float64(g.Positions[i][0]))
		minY = math.Min(minY, float64(g.Positions[i][1]))
		minZ = math.Min(minZ, float64(g.Positions[i][2]))

		maxX = math.Max(maxX, float64(g.Positions[i][0]))
		maxY = math.Max(maxY, float64(g.Positions[i][1]))
		maxZ = math.Max(maxZ, float64(g.Positions[i][2]))
	}
	return dvec3.Box{
		Min: dvec3.T{minX, minY, minZ},
		Max: dvec3.T{maxX, maxY, maxZ},
	}
}
