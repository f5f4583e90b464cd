package glbimport

import (
	"encoding/json"
	"os"
	"sort"
)

// TextureEntry records one persisted texture in the composed template.
type TextureEntry struct {
	Source     uint32 `json:"source"`
	Path       string `json:"path"`
	ColorSpace string `json:"colorSpace"`
}

// Template is the persisted, placeable composition of mesh, material and
// textures. It is the reusable form of the transient scene node built during
// import.
type Template struct {
	Name     string         `json:"name"`
	Mesh     string         `json:"mesh"`
	Material string         `json:"material"`
	Textures []TextureEntry `json:"textures,omitempty"`
}

// AssembleTemplate composes the persisted artifacts into a template ready to
// be placed in a scene. Texture entries are listed in source-image order;
// gaps left by skipped images are simply absent.
func AssembleTemplate(name, meshPath, materialPath string, assets map[uint32]*ImageAsset) *Template {
	tpl := &Template{
		Name:     name,
		Mesh:     meshPath,
		Material: materialPath,
	}
	sources := make([]uint32, 0, len(assets))
	for src := range assets {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	for _, src := range sources {
		asset := assets[src]
		tpl.Textures = append(tpl.Textures, TextureEntry{
			Source:     asset.Source,
			Path:       asset.Path,
			ColorSpace: asset.ColorSpace(),
		})
	}
	return tpl
}

// Persist writes the template as JSON.
func (t *Template) Persist(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
