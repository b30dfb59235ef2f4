package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

type TextureLoader struct{}

func (tl *TextureLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	flip := false
	if p, ok := params.(*metadata.ImageResourceParams); ok && p != nil {
		flip = p.FlipY
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrAssetNotFound, err)
	}
	defer file.Close()

	img, err := DecodeImage(file, flip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &metadata.Resource{
		Name:     path,
		FullPath: path,
		DataSize: uint64(len(img.Pixels)),
		Data:     img,
	}, nil
}

// DecodeImage decodes any registered format into tightly packed RGBA8.
// With flip set the first row is the bottom of the picture.
func DecodeImage(r io.Reader, flip bool) (*metadata.ImageData, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrUnsupportedFormat, err)
	}
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	if flip {
		rgba = transform.FlipV(rgba)
	}
	core.LogDebug("decoded %s image %dx%d", format, b.Dx(), b.Dy())
	return &metadata.ImageData{
		Width:    int32(b.Dx()),
		Height:   int32(b.Dy()),
		Channels: 4,
		Pixels:   rgba.Pix,
	}, nil
}

func (tl *TextureLoader) Unload(r *metadata.Resource) error {
	r.Data = nil
	return nil
}
