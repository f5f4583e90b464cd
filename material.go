package glbimport

// TextureBinding ties a material channel to a persisted texture.
type TextureBinding struct {
	Image uint32 `json:"image"`
	Path  string `json:"path"`
}

// MaterialDescriptor maps the glTF PBR channels onto the target renderer's
// material model. The renderer works with smoothness, so roughness is
// inverted during construction. DiffuseColor and DiffuseMap are legacy
// aliases of the base color channel kept for the fallback technique.
type MaterialDescriptor struct {
	Name      string
	Technique string

	BaseColor    [4]float32
	DiffuseColor [4]float32
	Metallic     float32
	Smoothness   float32
	Emissive     [3]float32

	BaseColorMap         *TextureBinding
	DiffuseMap           *TextureBinding
	MetallicRoughnessMap *TextureBinding
	NormalMap            *TextureBinding
	OcclusionMap         *TextureBinding
	EmissiveMap          *TextureBinding

	Features []string
}

func (m *MaterialDescriptor) hasFeature(flag string) bool {
	for _, f := range m.Features {
		if f == flag {
			return true
		}
	}
	return false
}

func (m *MaterialDescriptor) enableFeature(flag string) {
	if !m.hasFeature(flag) {
		m.Features = append(m.Features, flag)
	}
}

// ResolveTechnique picks the primary rendering technique if the renderer
// offers it, else the legacy fallback.
func ResolveTechnique(available []string) (string, error) {
	for _, want := range []string{TECHNIQUE_PBR, TECHNIQUE_LEGACY} {
		for _, have := range available {
			if have == want {
				return want, nil
			}
		}
	}
	return "", &MaterialError{Msg: "no suitable technique"}
}

// BuildMaterial consumes the first declared material. Texture references
// whose image was not persisted are skipped without touching the channel.
func BuildMaterial(doc *Document, assets map[uint32]*ImageAsset, techniques []string) (*MaterialDescriptor, error) {
	technique, err := ResolveTechnique(techniques)
	if err != nil {
		return nil, err
	}

	// glTF channel defaults.
	desc := &MaterialDescriptor{
		Technique:  technique,
		BaseColor:  [4]float32{1, 1, 1, 1},
		Metallic:   1,
		Smoothness: 0,
	}

	if len(doc.Materials) == 0 {
		desc.DiffuseColor = desc.BaseColor
		return desc, nil
	}
	if len(doc.Materials) > 1 {
		warnf("file declares %d materials, only the first is consumed", len(doc.Materials))
	}

	mtl := &doc.Materials[0]
	desc.Name = mtl.Name

	bind := func(ref *TextureRef) *TextureBinding {
		src, ok := doc.resolveTextureImage(ref)
		if !ok {
			return nil
		}
		asset, ok := assets[src]
		if !ok {
			// image was skipped during extraction, channel stays unset
			return nil
		}
		return &TextureBinding{Image: src, Path: asset.Path}
	}

	if pbr := mtl.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			desc.BaseColor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			desc.Metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			// target model stores smoothness, not roughness
			desc.Smoothness = 1 - *pbr.RoughnessFactor
		}
		if tb := bind(pbr.BaseColorTexture); tb != nil {
			desc.BaseColorMap = tb
			desc.DiffuseMap = tb
		}
		if tb := bind(pbr.MetallicRoughnessTexture); tb != nil {
			desc.MetallicRoughnessMap = tb
			desc.enableFeature(FEATURE_METALLIC_GLOSS_MAP)
		}
	}
	desc.DiffuseColor = desc.BaseColor

	if tb := bind(mtl.NormalTexture); tb != nil {
		desc.NormalMap = tb
		desc.enableFeature(FEATURE_NORMAL_MAP)
	}
	if tb := bind(mtl.OcclusionTexture); tb != nil {
		desc.OcclusionMap = tb
	}
	if tb := bind(mtl.EmissiveTexture); tb != nil {
		desc.EmissiveMap = tb
		desc.enableFeature(FEATURE_EMISSION)
	}
	if mtl.EmissiveFactor != nil {
		desc.Emissive = *mtl.EmissiveFactor
	}

	return desc, nil
}
