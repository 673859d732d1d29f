package capture

import (
	"bytes"
	"encoding/binary"
	"image"
	"os"
	"testing"

	"github.com/gekko3d/forward/render/gfx"
	"github.com/gekko3d/forward/render/soft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func TestDepthImageFlipsRows(t *testing.T) {
	// Bottom row first: the bottom row is near, the top row far.
	values := []float32{0, 0, 1, 1}
	img, err := DepthImage(values, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), img.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(0), img.Gray16At(0, 1).Y)

	_, err = DepthImage(values, 3, 2)
	assert.Error(t, err)
}

func TestDepthImageClamps(t *testing.T) {
	img, err := DepthImage([]float32{-1, 2}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), img.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(65535), img.Gray16At(1, 0).Y)
}

func TestWriteDepthTIFFDecodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDepthTIFF(&buf, []float32{0.5, 1, 0.25, 0}, 2, 2))

	img, err := tiff.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	gray, ok := img.(*image.Gray16)
	require.True(t, ok)
	assert.Equal(t, uint16(16384), gray.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(32768), gray.Gray16At(0, 1).Y)
}

func TestWriteDepthRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDepthRaw(&buf, []float32{1, 0.5}))
	require.Equal(t, 8, buf.Len())
	var back [2]float32
	require.NoError(t, binary.Read(&buf, binary.LittleEndian, &back))
	assert.Equal(t, [2]float32{1, 0.5}, back)
}

func TestSaveDepth(t *testing.T) {
	ctx := soft.NewContext(nil)
	tex, err := ctx.NewDepthTexture(gfx.DepthTextureDescriptor{Width: 3, Height: 2})
	require.NoError(t, err)

	dir := t.TempDir()
	tiffPath, rawPath, err := SaveDepth(tex, dir, "depth")
	require.NoError(t, err)
	assert.FileExists(t, tiffPath)

	raw, err := os.ReadFile(rawPath)
	require.NoError(t, err)
	assert.Len(t, raw, 3*2*4)
	assert.Contains(t, rawPath, "depth_3x2.f32")
}
