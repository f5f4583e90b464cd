package glbimport

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ImageAsset is one embedded image persisted as a standalone PNG texture.
// The decoded raster is held only until Persist, then released.
type ImageAsset struct {
	Source    uint32 // image index in the document
	Name      string
	Path      string
	Width     int
	Height    int
	NormalMap bool

	raster image.Image
}

// Release drops the decoded raster so repeated imports do not accumulate
// pixel buffers.
func (a *ImageAsset) Release() {
	a.raster = nil
}

// ColorSpace returns the color space recorded for the persisted texture.
// Normal maps are stored linear, everything else sRGB.
func (a *ImageAsset) ColorSpace() string {
	if a.NormalMap {
		return COLOR_SPACE_LINEAR
	}
	return COLOR_SPACE_SRGB
}

// decodeRaster sniffs the encoded format and decodes it. The format switch
// mirrors what the renderer's texture pipeline accepts.
func decodeRaster(data []byte) (image.Image, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	rd := io.Reader(bytes.NewReader(data))
	switch format {
	case "jpeg", "jpg":
		return jpeg.Decode(rd)
	case "png":
		return png.Decode(rd)
	case "gif":
		return gif.Decode(rd)
	case "bmp":
		return bmp.Decode(rd)
	case "tif", "tiff":
		return tiff.Decode(rd)
	}
	return nil, errors.New("unknown format " + format)
}

// ExtractImages slices every embedded image out of the binary chunk, decodes
// it and persists it as a PNG under outDir. Every per-image failure — an
// external URI reference, a decode error, an unwritable file — is logged and
// that image skipped; the returned map has a gap at its index which
// downstream consumers treat as channel absent. Decoded rasters are released
// on every path.
func ExtractImages(doc *Document, bin []byte, outDir, baseName string) map[uint32]*ImageAsset {
	assets := make(map[uint32]*ImageAsset)
	for i := range doc.Images {
		img := &doc.Images[i]
		idx := uint32(i)
		if img.BufferView == nil {
			if img.URI != "" {
				warnf("image %d references external uri %q, skipped", i, img.URI)
			} else {
				warnf("image %d has no bufferView, skipped", i)
			}
			continue
		}
		view := &doc.BufferViews[*img.BufferView]
		data := bin[view.ByteOffset : view.ByteOffset+view.ByteLength]

		raster, err := decodeRaster(data)
		if err != nil {
			warnf("image %d decode failed: %v, skipped", i, err)
			continue
		}

		asset := &ImageAsset{
			Source: idx,
			Name:   imageAssetName(img.Name, baseName, i),
			Width:  raster.Bounds().Dx(),
			Height: raster.Bounds().Dy(),
			raster: raster,
		}
		if err := asset.Persist(outDir); err != nil {
			asset.Release()
			warnf("image %d persist failed: %v, skipped", i, err)
			continue
		}
		assets[idx] = asset
	}
	return assets
}

// Persist re-encodes the raster as PNG under dir using a collision-free file
// name, then releases the raster. Encoding happens before the file is
// created, so a failed persist leaves nothing behind.
func (a *ImageAsset) Persist(dir string) error {
	defer a.Release()
	if a.raster == nil {
		return errors.New("raster already released")
	}
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, a.raster); err != nil {
		return err
	}
	path, err := uniquePath(dir, a.Name, ".png")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return err
	}
	a.Path = path
	return nil
}

// ClassifyNormalMap re-flags the persisted image referenced by the first
// material's normal texture as a linear normal map. Only the first material
// is inspected; with multiple materials the true normal map of a later
// material may be missed.
func ClassifyNormalMap(doc *Document, assets map[uint32]*ImageAsset) {
	if len(doc.Materials) == 0 {
		return
	}
	src, ok := doc.resolveTextureImage(doc.Materials[0].NormalTexture)
	if !ok {
		return
	}
	if asset, ok := assets[src]; ok {
		asset.NormalMap = true
	}
}

func imageAssetName(name, baseName string, index int) string {
	if name == "" {
		name = fmt.Sprintf("%s_img%d", baseName, index)
	}
	return SanitizeName(name)
}

// SanitizeName reduces an arbitrary asset name to a safe file stem.
func SanitizeName(name string) string {
	name = filepath.Base(name)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" || strings.Trim(out, "._") == "" {
		out = "asset"
	}
	return out
}

// uniquePath returns dir/stem+ext, appending _1, _2, ... while the name is
// taken. Not atomic across processes; concurrent imports into the same
// directory can still collide.
func uniquePath(dir, stem, ext string) (string, error) {
	path := filepath.Join(dir, stem+ext)
	for n := 1; ; n++ {
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			return path, nil
		}
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
}
