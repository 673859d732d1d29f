package soft

import (
	"fmt"
	"math"

	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

type ColorTexture struct {
	id       string
	ctx      *Context
	desc     gfx.ColorTextureDescriptor
	pixels   []mgl32.Vec4
	released bool
}

func (t *ColorTexture) ID() string              { return t.id }
func (t *ColorTexture) Width() uint32           { return t.desc.Width }
func (t *ColorTexture) Height() uint32          { return t.desc.Height }
func (t *ColorTexture) Format() gfx.ColorFormat { return t.desc.Format }

func (t *ColorTexture) Release() {
	t.released = true
	t.pixels = nil
}

func (t *ColorTexture) Read(viewport core.Viewport) ([]mgl32.Vec4, error) {
	if t.released {
		return nil, gfx.ReadbackError("read color", gfx.ErrReleased)
	}
	if err := checkViewport(viewport, t.desc.Width, t.desc.Height); err != nil {
		return nil, gfx.ReadbackError("read color", err)
	}
	out := make([]mgl32.Vec4, 0, int(viewport.Width)*int(viewport.Height))
	for y := viewport.Y; y < viewport.Y+int(viewport.Height); y++ {
		row := y * int(t.desc.Width)
		out = append(out, t.pixels[row+viewport.X:row+viewport.X+int(viewport.Width)]...)
	}
	return out, nil
}

func (t *ColorTexture) store(i int, c mgl32.Vec4, mask core.WriteMask) {
	if t.desc.Format == gfx.ColorFormatRGBA8 {
		for k := 0; k < 4; k++ {
			c[k] = quantize(c[k], 255)
		}
	}
	p := &t.pixels[i]
	if mask.Red {
		p[0] = c[0]
	}
	if mask.Green {
		p[1] = c[1]
	}
	if mask.Blue {
		p[2] = c[2]
	}
	if mask.Alpha {
		p[3] = c[3]
	}
}

func (t *ColorTexture) clear(cs core.ClearState) {
	if !cs.HasColor() {
		return
	}
	mask := core.WriteMask{Red: cs.Red != nil, Green: cs.Green != nil, Blue: cs.Blue != nil, Alpha: cs.Alpha != nil}
	c := mgl32.Vec4(cs.ColorOr([4]float32{}))
	for i := range t.pixels {
		t.store(i, c, mask)
	}
}

type DepthTexture struct {
	id       string
	ctx      *Context
	desc     gfx.DepthTextureDescriptor
	values   []float32
	released bool
}

func (t *DepthTexture) ID() string              { return t.id }
func (t *DepthTexture) Width() uint32           { return t.desc.Width }
func (t *DepthTexture) Height() uint32          { return t.desc.Height }
func (t *DepthTexture) Format() gfx.DepthFormat { return t.desc.Format }

func (t *DepthTexture) Release() {
	t.released = true
	t.values = nil
}

func (t *DepthTexture) Write(clearDepth *float32, draw func() error) error {
	return t.ctx.write(nil, t, func() error {
		if clearDepth != nil {
			t.clear(*clearDepth)
		}
		if draw == nil {
			return nil
		}
		return draw()
	})
}

func (t *DepthTexture) Read(viewport core.Viewport) ([]float32, error) {
	if t.released {
		return nil, gfx.ReadbackError("read depth", gfx.ErrReleased)
	}
	if err := checkViewport(viewport, t.desc.Width, t.desc.Height); err != nil {
		return nil, gfx.ReadbackError("read depth", err)
	}
	out := make([]float32, 0, int(viewport.Width)*int(viewport.Height))
	for y := viewport.Y; y < viewport.Y+int(viewport.Height); y++ {
		row := y * int(t.desc.Width)
		out = append(out, t.values[row+viewport.X:row+viewport.X+int(viewport.Width)]...)
	}
	return out, nil
}

func (t *DepthTexture) store(i int, depth float32) {
	switch t.desc.Format {
	case gfx.DepthFormat24:
		depth = quantize(depth, 1<<24-1)
	case gfx.DepthFormat16:
		depth = quantize(depth, 1<<16-1)
	}
	t.values[i] = depth
}

func (t *DepthTexture) clear(depth float32) {
	for i := range t.values {
		t.store(i, depth)
	}
}

func quantize(v float32, levels float64) float32 {
	v = mgl32.Clamp(v, 0, 1)
	return float32(math.Round(float64(v)*levels) / levels)
}

func checkViewport(vp core.Viewport, width, height uint32) error {
	if !vp.Valid() || vp.X < 0 || vp.Y < 0 ||
		vp.X+int(vp.Width) > int(width) || vp.Y+int(vp.Height) > int(height) {
		return fmt.Errorf("%w: viewport %+v outside %dx%d", gfx.ErrInvalidSize, vp, width, height)
	}
	return nil
}

type RenderTarget struct {
	id    string
	color *ColorTexture
	depth *DepthTexture
}

func (r *RenderTarget) ID() string              { return r.id }
func (r *RenderTarget) Color() gfx.ColorTexture { return r.color }
func (r *RenderTarget) Depth() gfx.DepthTexture { return r.depth }
func (r *RenderTarget) Width() uint32           { return r.color.Width() }
func (r *RenderTarget) Height() uint32          { return r.color.Height() }

// Release drops the pairing. The attachments stay owned by the caller.
func (r *RenderTarget) Release() {}

func (r *RenderTarget) Write(clear core.ClearState, draw func() error) error {
	return r.color.ctx.write(r.color, r.depth, func() error {
		r.color.clear(clear)
		if clear.Depth != nil {
			r.depth.clear(*clear.Depth)
		}
		if draw == nil {
			return nil
		}
		return draw()
	})
}
