package demo

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/spaghettifunk/fakesss/engine/math"
	"github.com/spaghettifunk/fakesss/engine/renderer"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

// Snapshot reads the display framebuffer into an image, top row first.
func Snapshot(backend renderer.RendererBackend, width, height uint32) (*image.NRGBA, error) {
	pixels, err := backend.ReadPixels(metadata.DefaultFramebuffer, metadata.AttachmentPointColor0, width, height)
	if err != nil {
		return nil, err
	}
	if len(pixels) < int(width)*int(height)*4 {
		return nil, fmt.Errorf("read %d values for a %dx%d image", len(pixels), width, height)
	}
	img := image.NewNRGBA(image.Rect(0, 0, int(width), int(height)))
	for y := 0; y < int(height); y++ {
		// pixels are bottom row first
		row := int(height) - 1 - y
		for x := 0; x < int(width); x++ {
			i := (row*int(width) + x) * 4
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(pixels[i]),
				G: toByte(pixels[i+1]),
				B: toByte(pixels[i+2]),
				A: 255,
			})
		}
	}
	return img, nil
}

func toByte(v float32) uint8 {
	return uint8(math.Clamp(v, 0, 1)*255 + 0.5)
}

// WritePNG saves the display framebuffer to path.
func WritePNG(backend renderer.RendererBackend, width, height uint32, path string) error {
	img, err := Snapshot(backend, width, height)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
