package glbimport

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Options tune one import call. The zero value selects the default
// technique set and the package logger.
type Options struct {
	// Techniques the target renderer offers, in no particular order.
	Techniques []string
	Logger     *log.Logger
}

func (o *Options) techniques() []string {
	if o == nil || o.Techniques == nil {
		return []string{TECHNIQUE_PBR, TECHNIQUE_LEGACY}
	}
	return o.Techniques
}

// ImportResult is the sole object returned to the caller. No error crosses
// the Import boundary; failures are reported through Success/ErrorMessage.
// Artifacts persisted before a failing step are not rolled back.
type ImportResult struct {
	Success      bool
	ErrorMessage string

	Name         string
	MeshPath     string
	MaterialPath string
	TemplatePath string
	TexturePaths []string
}

// Import runs the full import: parse the GLB at sourcePath, persist textures,
// material, mesh and the composed template under outDir. assetName overrides
// the base name derived from the source file; pass "" to use the file name.
// The call is synchronous and blocking; callers needing responsiveness must
// offload it themselves. Two simultaneous imports into the same outDir are
// not safe (the unique-name generator is not atomic across processes).
func Import(sourcePath, outDir, assetName string) ImportResult {
	return ImportWithOptions(sourcePath, outDir, assetName, nil)
}

func ImportWithOptions(sourcePath, outDir, assetName string, opts *Options) ImportResult {
	if opts != nil && opts.Logger != nil {
		prev := logger
		logger = opts.Logger
		defer func() { logger = prev }()
	}

	res, err := runImport(sourcePath, outDir, assetName, opts)
	if err != nil {
		errorf("import of %s failed: %v", sourcePath, err)
		res.Success = false
		res.ErrorMessage = err.Error()
		return res
	}
	res.Success = true
	return res
}

// runImport is the fail-fast step sequence. Any fatal error unwinds here and
// is converted into a failure result by the caller.
func runImport(sourcePath, outDir, assetName string, opts *Options) (ImportResult, error) {
	res := ImportResult{}

	if _, err := os.Stat(sourcePath); err != nil {
		return res, &IOError{Op: "stat source", Err: err}
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return res, &IOError{Op: "create output", Err: err}
	}

	name := assetName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	}
	name = SanitizeName(name)
	res.Name = name

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return res, &IOError{Op: "read source", Err: err}
	}

	container, err := ParseContainer(data)
	if err != nil {
		return res, err
	}
	doc := container.Doc

	assets := ExtractImages(doc, container.Bin, outDir, name)
	for i := range doc.Images {
		if asset, ok := assets[uint32(i)]; ok {
			res.TexturePaths = append(res.TexturePaths, asset.Path)
		}
	}

	ClassifyNormalMap(doc, assets)

	material, err := BuildMaterial(doc, assets, opts.techniques())
	if err != nil {
		return res, err
	}

	geometry, err := BuildGeometry(doc, container.Bin)
	if err != nil {
		return res, err
	}

	meshPath, err := persistMesh(outDir, name, geometry)
	if err != nil {
		return res, err
	}
	res.MeshPath = meshPath

	materialPath, err := persistMaterial(outDir, name, material)
	if err != nil {
		return res, err
	}
	res.MaterialPath = materialPath

	tpl := AssembleTemplate(name, meshPath, materialPath, assets)
	tplPath, err := uniquePath(outDir, name, ".json")
	if err != nil {
		return res, &IOError{Op: "name template", Err: err}
	}
	if err := tpl.Persist(tplPath); err != nil {
		return res, &IOError{Op: "write template", Err: err}
	}
	res.TemplatePath = tplPath

	return res, nil
}

func persistMesh(dir, name string, g *GeometryBuffers) (string, error) {
	path, err := uniquePath(dir, name, MESH_EXT)
	if err != nil {
		return "", &IOError{Op: "name mesh", Err: err}
	}
	buf := bytes.NewBuffer(nil)
	MeshMarshal(buf, g)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", &IOError{Op: "write mesh", Err: err}
	}
	return path, nil
}

func persistMaterial(dir, name string, m *MaterialDescriptor) (string, error) {
	path, err := uniquePath(dir, name, MATERIAL_EXT)
	if err != nil {
		return "", &IOError{Op: "name material", Err: err}
	}
	buf := bytes.NewBuffer(nil)
	MaterialMarshal(buf, m)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", &IOError{Op: "write material", Err: err}
	}
	return path, nil
}
