package pipeline

import (
	"errors"

	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
	"github.com/gekko3d/forward/render/logging"
)

var ErrNoContext = errors.New("pipeline: nil graphics context")

type Option func(*ForwardPipeline)

func WithLogger(logger logging.Logger) Option {
	return func(p *ForwardPipeline) { p.logger = logging.OrNop(logger) }
}

func WithProbeConfig(cfg ProbeConfig) Option {
	return func(p *ForwardPipeline) { p.probe = cfg }
}

// ForwardPipeline holds no per-frame state. It may be shared by callers on
// the thread that owns the context.
type ForwardPipeline struct {
	ctx    gfx.Context
	logger logging.Logger
	probe  ProbeConfig
}

func NewForwardPipeline(ctx gfx.Context, opts ...Option) (*ForwardPipeline, error) {
	if ctx == nil {
		return nil, ErrNoContext
	}
	p := &ForwardPipeline{ctx: ctx, logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *ForwardPipeline) Context() gfx.Context {
	return p.ctx
}

// RenderPass draws every visible object with its material into the target
// the caller has bound and cleared. It stops at the first failing draw.
func (p *ForwardPipeline) RenderPass(camera *core.Camera, objects []ObjectMaterial) error {
	drawn := 0
	for _, om := range objects {
		if !InFrustum(camera, om.Object) {
			continue
		}
		if err := om.Object.RenderForward(om.Material, camera); err != nil {
			return err
		}
		drawn++
	}
	p.logger.Debugf("render pass: drew %d of %d objects", drawn, len(objects))
	return nil
}

// DepthPass draws every visible object with depth writes only.
func (p *ForwardPipeline) DepthPass(camera *core.Camera, objects []Object) error {
	mat := depthOnlyMaterial(camera)
	drawn := 0
	for _, obj := range objects {
		if !InFrustum(camera, obj) {
			continue
		}
		if err := obj.RenderForward(mat, camera); err != nil {
			return err
		}
		drawn++
	}
	p.logger.Debugf("depth pass: drew %d of %d objects", drawn, len(objects))
	return nil
}

// DepthPassTexture allocates a Depth32F texture the size of the camera
// viewport, clears it to 1 and runs DepthPass into it. The caller owns the
// returned texture.
func (p *ForwardPipeline) DepthPassTexture(camera *core.Camera, objects []Object) (gfx.DepthTexture, error) {
	vp := camera.Viewport()
	tex, err := p.ctx.NewDepthTexture(gfx.DepthTextureDescriptor{
		Width:  vp.Width,
		Height: vp.Height,
		WrapS:  gfx.WrappingClampToEdge,
		WrapT:  gfx.WrappingClampToEdge,
		Format: gfx.DepthFormat32F,
		Label:  "depth pass",
	})
	if err != nil {
		return nil, err
	}
	clear := float32(1)
	if err := tex.Write(&clear, func() error { return p.DepthPass(camera, objects) }); err != nil {
		tex.Release()
		return nil, err
	}
	return tex, nil
}

func depthOnlyMaterial(camera *core.Camera) *core.DepthMaterial {
	mat := core.NewDepthMaterial(camera.Far())
	mat.MinDistance = camera.Near()
	mat.States.WriteMask = core.WriteMaskDepth
	mat.States.DepthTest = core.DepthTestLess
	return mat
}
