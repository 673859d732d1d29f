package gpu

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

type ColorTexture struct {
	id       string
	ctx      *Context
	desc     gfx.ColorTextureDescriptor
	format   wgpu.TextureFormat
	texture  *wgpu.Texture
	view     *wgpu.TextureView
	released bool
}

func (t *ColorTexture) ID() string              { return t.id }
func (t *ColorTexture) Width() uint32           { return t.desc.Width }
func (t *ColorTexture) Height() uint32          { return t.desc.Height }
func (t *ColorTexture) Format() gfx.ColorFormat { return t.desc.Format }
func (t *ColorTexture) View() *wgpu.TextureView { return t.view }

func (t *ColorTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.view.Release()
	t.texture.Release()
}

func (t *ColorTexture) Read(viewport core.Viewport) ([]mgl32.Vec4, error) {
	if t.released {
		return nil, gfx.ReadbackError("read color", gfx.ErrReleased)
	}
	bpp := uint32(16)
	if t.format == wgpu.TextureFormatRGBA8Unorm {
		bpp = 4
	}
	data, err := t.ctx.readback(t.texture, wgpu.TextureAspectAll, t.desc.Width, t.desc.Height, viewport, bpp)
	if err != nil {
		return nil, err
	}
	n := int(viewport.Width) * int(viewport.Height)
	out := make([]mgl32.Vec4, n)
	for i := 0; i < n; i++ {
		px := data[i*int(bpp):]
		for k := 0; k < 4; k++ {
			if bpp == 4 {
				out[i][k] = float32(px[k]) / 255
			} else {
				out[i][k] = math.Float32frombits(binary.LittleEndian.Uint32(px[k*4:]))
			}
		}
	}
	return out, nil
}

type DepthTexture struct {
	id       string
	ctx      *Context
	desc     gfx.DepthTextureDescriptor
	format   wgpu.TextureFormat
	texture  *wgpu.Texture
	view     *wgpu.TextureView
	released bool
}

func (t *DepthTexture) ID() string              { return t.id }
func (t *DepthTexture) Width() uint32           { return t.desc.Width }
func (t *DepthTexture) Height() uint32          { return t.desc.Height }
func (t *DepthTexture) Format() gfx.DepthFormat { return t.desc.Format }
func (t *DepthTexture) View() *wgpu.TextureView { return t.view }

func (t *DepthTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.view.Release()
	t.texture.Release()
}

func (t *DepthTexture) Write(clearDepth *float32, draw func() error) error {
	if t.released {
		return gfx.DrawError("bind", gfx.ErrReleased)
	}
	return t.ctx.write(attachments{depth: t}, core.ClearState{Depth: clearDepth}, draw)
}

// Read copies depth back. Depth24Plus textures cannot be copied on WebGPU.
func (t *DepthTexture) Read(viewport core.Viewport) ([]float32, error) {
	if t.released {
		return nil, gfx.ReadbackError("read depth", gfx.ErrReleased)
	}
	var bpp uint32
	switch t.format {
	case wgpu.TextureFormatDepth32Float:
		bpp = 4
	case wgpu.TextureFormatDepth16Unorm:
		bpp = 2
	default:
		return nil, gfx.ReadbackError("read depth", ErrUnsupportedFormat)
	}
	data, err := t.ctx.readback(t.texture, wgpu.TextureAspectDepthOnly, t.desc.Width, t.desc.Height, viewport, bpp)
	if err != nil {
		return nil, err
	}
	n := int(viewport.Width) * int(viewport.Height)
	out := make([]float32, n)
	for i := range out {
		if bpp == 2 {
			out[i] = float32(binary.LittleEndian.Uint16(data[i*2:])) / 65535
		} else {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
	}
	return out, nil
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

// Write clears and draws in one render pass. WebGPU clears whole
// attachments, so a partial color clear fills the unset channels with 0.
func (r *RenderTarget) Write(clear core.ClearState, draw func() error) error {
	if r.color.released || r.depth.released {
		return gfx.DrawError("bind", gfx.ErrReleased)
	}
	return r.color.ctx.write(attachments{color: r.color.view, colorFormat: r.color.format, depth: r.depth}, clear, draw)
}
