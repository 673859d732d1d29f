package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
)

// ScreenTarget renders into a window surface with its own depth buffer.
type ScreenTarget struct {
	ctx     *Context
	surface *wgpu.Surface
	config  *wgpu.SurfaceConfiguration
	depth   *DepthTexture
}

func NewScreenTarget(ctx *Context, surface *wgpu.Surface, width, height uint32) (*ScreenTarget, error) {
	caps := surface.GetCapabilities(ctx.adapter)
	s := &ScreenTarget{
		ctx:     ctx,
		surface: surface,
		config: &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      caps.Formats[0],
			PresentMode: wgpu.PresentModeFifo,
			AlphaMode:   caps.AlphaModes[0],
		},
	}
	if err := s.Resize(width, height); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ScreenTarget) Width() uint32  { return s.config.Width }
func (s *ScreenTarget) Height() uint32 { return s.config.Height }

func (s *ScreenTarget) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	s.config.Width, s.config.Height = width, height
	s.surface.Configure(s.ctx.adapter, s.ctx.device, s.config)

	depth, err := s.ctx.NewDepthTexture(gfx.DepthTextureDescriptor{
		Width:  width,
		Height: height,
		Format: gfx.DepthFormat32F,
		Label:  "screen depth",
	})
	if err != nil {
		return err
	}
	if s.depth != nil {
		s.depth.Release()
	}
	s.depth = depth.(*DepthTexture)
	return nil
}

// Write renders one frame into the next surface texture and presents it.
func (s *ScreenTarget) Write(clear core.ClearState, draw func() error) error {
	tex, err := s.surface.GetCurrentTexture()
	if err != nil {
		return gfx.AllocateError("surface texture", err)
	}
	defer tex.Release()
	view, err := tex.CreateView(nil)
	if err != nil {
		return gfx.AllocateError("surface view", err)
	}
	defer view.Release()

	if err := s.ctx.write(attachments{color: view, colorFormat: s.config.Format, depth: s.depth}, clear, draw); err != nil {
		return err
	}
	s.surface.Present()
	return nil
}

func (s *ScreenTarget) Release() {
	if s.depth != nil {
		s.depth.Release()
		s.depth = nil
	}
}
