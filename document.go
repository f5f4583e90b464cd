package glbimport

import (
	"encoding/json"
	"fmt"
)

// Document is the consumed subset of the glTF JSON tree, decoded and
// validated once at parse time. Optional fields are pointers so that
// "absent" and "zero" stay distinct.
type Document struct {
	Asset       Asset        `json:"asset"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Accessors   []Accessor   `json:"accessors,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Textures    []TextureDef `json:"textures,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Meshes      []MeshDef    `json:"meshes,omitempty"`
}

type Asset struct {
	Version string `json:"version"`
}

// BufferView is a byte range into the binary chunk.
type BufferView struct {
	ByteOffset uint32  `json:"byteOffset"`
	ByteLength uint32  `json:"byteLength"`
	ByteStride *uint32 `json:"byteStride,omitempty"`
}

// Accessor describes how to read count fixed-size elements out of a buffer
// view. The element shape is supplied by the caller, not stored here.
type Accessor struct {
	BufferView    *uint32 `json:"bufferView,omitempty"`
	ByteOffset    uint32  `json:"byteOffset"`
	ComponentType uint32  `json:"componentType"`
	Count         uint32  `json:"count"`
}

type Image struct {
	Name       string  `json:"name,omitempty"`
	MimeType   string  `json:"mimeType,omitempty"`
	BufferView *uint32 `json:"bufferView,omitempty"`
	URI        string  `json:"uri,omitempty"`
}

type TextureDef struct {
	Source *uint32 `json:"source,omitempty"`
}

type TextureRef struct {
	Index uint32 `json:"index"`
}

type PBRMetallicRoughness struct {
	BaseColorFactor          *[4]float32 `json:"baseColorFactor,omitempty"`
	BaseColorTexture         *TextureRef `json:"baseColorTexture,omitempty"`
	MetallicFactor           *float32    `json:"metallicFactor,omitempty"`
	RoughnessFactor          *float32    `json:"roughnessFactor,omitempty"`
	MetallicRoughnessTexture *TextureRef `json:"metallicRoughnessTexture,omitempty"`
}

type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *TextureRef           `json:"normalTexture,omitempty"`
	OcclusionTexture     *TextureRef           `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *TextureRef           `json:"emissiveTexture,omitempty"`
	EmissiveFactor       *[3]float32           `json:"emissiveFactor,omitempty"`
}

type Primitive struct {
	Attributes map[string]uint32 `json:"attributes"`
	Indices    *uint32           `json:"indices,omitempty"`
}

type MeshDef struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives,omitempty"`
}

// Vertex attribute keys consumed from primitives.
const (
	ATTR_POSITION = "POSITION"
	ATTR_NORMAL   = "NORMAL"
	ATTR_TEXCOORD = "TEXCOORD_0"
)

// DecodeDocument unmarshals the JSON chunk and cross-checks every index
// reference so later stages can index without re-validating.
func DecodeDocument(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, &FormatError{Msg: "invalid JSON chunk: " + err.Error()}
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (doc *Document) validate() error {
	nViews := uint32(len(doc.BufferViews))
	for i, acc := range doc.Accessors {
		if acc.BufferView != nil && *acc.BufferView >= nViews {
			return &FormatError{Msg: fmt.Sprintf("accessor %d references bufferView %d of %d", i, *acc.BufferView, nViews)}
		}
	}
	for i, img := range doc.Images {
		if img.BufferView != nil && *img.BufferView >= nViews {
			return &FormatError{Msg: fmt.Sprintf("image %d references bufferView %d of %d", i, *img.BufferView, nViews)}
		}
	}
	nImages := uint32(len(doc.Images))
	for i, tex := range doc.Textures {
		if tex.Source != nil && *tex.Source >= nImages {
			return &FormatError{Msg: fmt.Sprintf("texture %d references image %d of %d", i, *tex.Source, nImages)}
		}
	}
	nAccessors := uint32(len(doc.Accessors))
	for i, mh := range doc.Meshes {
		for j, ps := range mh.Primitives {
			if ps.Indices != nil && *ps.Indices >= nAccessors {
				return &FormatError{Msg: fmt.Sprintf("mesh %d primitive %d references accessor %d of %d", i, j, *ps.Indices, nAccessors)}
			}
			for name, idx := range ps.Attributes {
				if idx >= nAccessors {
					return &FormatError{Msg: fmt.Sprintf("attribute %s references accessor %d of %d", name, idx, nAccessors)}
				}
			}
		}
	}
	return nil
}

// resolveTextureImage maps a material texture reference to its image index.
// The second return is false when the reference chain is broken.
func (doc *Document) resolveTextureImage(ref *TextureRef) (uint32, bool) {
	if ref == nil || ref.Index >= uint32(len(doc.Textures)) {
		return 0, false
	}
	src := doc.Textures[ref.Index].Source
	if src == nil || *src >= uint32(len(doc.Images)) {
		return 0, false
	}
	return *src, true
}
