package demo

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/fakesss/engine/renderer"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

// pixelSource answers ReadPixels with fixed data; every other backend call panics.
type pixelSource struct {
	renderer.RendererBackend
	pixels []float32
	err    error
}

func (p pixelSource) ReadPixels(fb metadata.FramebufferHandle, point metadata.AttachmentPoint, width, height uint32) ([]float32, error) {
	return p.pixels, p.err
}

// two rows, bottom row first: bottom red, top half-grey over-range blue
var twoRows = pixelSource{pixels: []float32{
	1, 0, 0, 1,
	0.5, 0.5, 2, 0.3,
}}

func TestSnapshotFlipsRows(t *testing.T) {
	img, err := Snapshot(twoRows, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 255, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(0, 1))
}

func TestSnapshotErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Snapshot(pixelSource{err: boom}, 1, 1)
	assert.ErrorIs(t, err, boom)

	_, err = Snapshot(pixelSource{pixels: []float32{1, 1, 1}}, 1, 1)
	assert.Error(t, err)
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, WritePNG(twoRows, 1, 2, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1, 2), img.Bounds())
	r, _, _, _ := img.At(0, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)

	assert.Error(t, WritePNG(twoRows, 1, 2, filepath.Join(t.TempDir(), "missing", "frame.png")))
}
