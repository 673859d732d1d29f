// Package soft is a CPU implementation of the gfx context. It rasterizes
// triangle meshes with the same write mask, depth test and cull rules a GPU
// backend applies and is used for headless rendering and tests.
package soft

import (
	"fmt"

	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
	"github.com/gekko3d/forward/render/logging"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Stats counts work submitted to a context since creation.
type Stats struct {
	Draws     int
	Triangles int
	Fragments int
}

type binding struct {
	color *ColorTexture
	depth *DepthTexture
}

// Context is not safe for concurrent use.
type Context struct {
	logger logging.Logger
	bound  *binding
	stats  Stats
}

func NewContext(logger logging.Logger) *Context {
	return &Context{logger: logging.OrNop(logger)}
}

func (c *Context) Stats() Stats {
	return c.stats
}

func (c *Context) NewColorTexture(desc gfx.ColorTextureDescriptor) (gfx.ColorTexture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, gfx.AllocateError("color texture", fmt.Errorf("%w: %dx%d", gfx.ErrInvalidSize, desc.Width, desc.Height))
	}
	tex := &ColorTexture{
		id:     uuid.NewString(),
		ctx:    c,
		desc:   desc,
		pixels: make([]mgl32.Vec4, int(desc.Width)*int(desc.Height)),
	}
	c.logger.Debugf("soft: color texture %s %dx%d", tex.id, desc.Width, desc.Height)
	return tex, nil
}

func (c *Context) NewDepthTexture(desc gfx.DepthTextureDescriptor) (gfx.DepthTexture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, gfx.AllocateError("depth texture", fmt.Errorf("%w: %dx%d", gfx.ErrInvalidSize, desc.Width, desc.Height))
	}
	tex := &DepthTexture{
		id:     uuid.NewString(),
		ctx:    c,
		desc:   desc,
		values: make([]float32, int(desc.Width)*int(desc.Height)),
	}
	for i := range tex.values {
		tex.values[i] = 1
	}
	c.logger.Debugf("soft: depth texture %s %dx%d %s", tex.id, desc.Width, desc.Height, desc.Format)
	return tex, nil
}

func (c *Context) NewRenderTarget(color gfx.ColorTexture, depth gfx.DepthTexture) (gfx.RenderTarget, error) {
	ct, ok := color.(*ColorTexture)
	if !ok || ct == nil || ct.ctx != c {
		return nil, gfx.AllocateError("render target", gfx.ErrForeignResource)
	}
	dt, ok := depth.(*DepthTexture)
	if !ok || dt == nil || dt.ctx != c {
		return nil, gfx.AllocateError("render target", gfx.ErrForeignResource)
	}
	if ct.released || dt.released {
		return nil, gfx.AllocateError("render target", gfx.ErrReleased)
	}
	if ct.Width() != dt.Width() || ct.Height() != dt.Height() {
		return nil, gfx.AllocateError("render target", fmt.Errorf("%w: color %dx%d, depth %dx%d",
			gfx.ErrSizeMismatch, ct.Width(), ct.Height(), dt.Width(), dt.Height()))
	}
	return &RenderTarget{id: uuid.NewString(), color: ct, depth: dt}, nil
}

// write binds color and depth for the duration of draw.
func (c *Context) write(color *ColorTexture, depth *DepthTexture, draw func() error) error {
	if c.bound != nil {
		return gfx.DrawError("bind", gfx.ErrTargetBusy)
	}
	if (color != nil && color.released) || (depth != nil && depth.released) {
		return gfx.DrawError("bind", gfx.ErrReleased)
	}
	c.bound = &binding{color: color, depth: depth}
	defer func() { c.bound = nil }()
	if draw == nil {
		return nil
	}
	return draw()
}

// DrawCall is one mesh submission.
type DrawCall struct {
	Mesh         *core.Mesh
	Model        mgl32.Mat4
	NormalMatrix mgl32.Mat3
	Camera       *core.Camera
	Material     core.Material
}

// Draw rasterizes call into the bound target.
func (c *Context) Draw(call DrawCall) error {
	if c.bound == nil {
		return gfx.DrawError("draw", gfx.ErrNoRenderTarget)
	}
	if call.Mesh == nil || call.Camera == nil || call.Material == nil {
		return gfx.DrawError("draw", fmt.Errorf("incomplete draw call"))
	}
	c.stats.Draws++
	c.rasterize(call, c.bound)
	return nil
}
