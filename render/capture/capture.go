// Package capture exports depth buffers for inspection.
package capture

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
	"golang.org/x/image/tiff"
)

// DepthImage converts bottom-first depth rows into a top-first 16-bit image.
// Depth 0 is black, the far plane white.
func DepthImage(values []float32, width, height uint32) (*image.Gray16, error) {
	if len(values) != int(width)*int(height) {
		return nil, fmt.Errorf("capture: %d values for %dx%d", len(values), width, height)
	}
	img := image.NewGray16(image.Rect(0, 0, int(width), int(height)))
	for y := 0; y < int(height); y++ {
		row := values[(int(height)-1-y)*int(width):]
		for x := 0; x < int(width); x++ {
			v := row[x]
			if v < 0 || v != v {
				v = 0
			} else if v > 1 {
				v = 1
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(v*65535 + 0.5)})
		}
	}
	return img, nil
}

func WriteDepthTIFF(w io.Writer, values []float32, width, height uint32) error {
	img, err := DepthImage(values, width, height)
	if err != nil {
		return err
	}
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// WriteDepthRaw writes the values as little endian float32, bottom row first.
func WriteDepthRaw(w io.Writer, values []float32) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, values); err != nil {
		return err
	}
	return bw.Flush()
}

// SaveDepth reads tex back and writes name.tiff and name_WxH.f32 into dir.
func SaveDepth(tex gfx.DepthTexture, dir, name string) (tiffPath, rawPath string, err error) {
	width, height := tex.Width(), tex.Height()
	values, err := tex.Read(core.NewViewportAtOrigin(width, height))
	if err != nil {
		return "", "", err
	}
	tiffPath = filepath.Join(dir, name+".tiff")
	rawPath = filepath.Join(dir, fmt.Sprintf("%s_%dx%d.f32", name, width, height))
	if err := writeFile(tiffPath, func(w io.Writer) error { return WriteDepthTIFF(w, values, width, height) }); err != nil {
		return "", "", err
	}
	if err := writeFile(rawPath, func(w io.Writer) error { return WriteDepthRaw(w, values) }); err != nil {
		return "", "", err
	}
	return tiffPath, rawPath, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("capture: write %s: %w", path, err)
	}
	return f.Close()
}
