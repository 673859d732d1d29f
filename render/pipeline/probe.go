package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidRay = errors.New("pipeline: invalid ray")

// ProbeConfig tunes the orthographic camera built for a ray query. Zero
// fields take the defaults below.
type ProbeConfig struct {
	// NearEpsilon is the near plane distance. Hits closer than this to the
	// ray origin are not reported.
	NearEpsilon float32
	// UpThreshold is the |dir.x| above which the up vector is derived from
	// the Y axis instead of the X axis.
	UpThreshold float32
	// ViewHeight is the world space height of the 1x1 probe pixel.
	ViewHeight float32
}

const (
	DefaultNearEpsilon = 0.01
	DefaultUpThreshold = 0.99
	DefaultViewHeight  = 0.01
)

func (c ProbeConfig) withDefaults() ProbeConfig {
	if c.NearEpsilon <= 0 {
		c.NearEpsilon = DefaultNearEpsilon
	}
	if c.UpThreshold <= 0 {
		c.UpThreshold = DefaultUpThreshold
	}
	if c.ViewHeight <= 0 {
		c.ViewHeight = DefaultViewHeight
	}
	return c
}

// RayIntersect uses the pipeline's context and probe configuration.
func (p *ForwardPipeline) RayIntersect(origin, direction mgl32.Vec3, maxDepth float32, geometries []Geometry) (mgl32.Vec3, bool, error) {
	hit, ok, err := RayIntersect(p.ctx, origin, direction, maxDepth, geometries, p.probe)
	if err == nil {
		p.logger.Debugf("ray %v -> %v: hit=%t %v", origin, direction, ok, hit)
	}
	return hit, ok, err
}

// RayIntersect returns the first point along the ray, within maxDepth, where
// one of geometries is hit. It renders the geometries into a 1x1 target and
// blocks on the readback.
func RayIntersect(ctx gfx.Context, origin, direction mgl32.Vec3, maxDepth float32, geometries []Geometry, cfg ProbeConfig) (mgl32.Vec3, bool, error) {
	if !(maxDepth > 0) || math.IsInf(float64(maxDepth), 0) {
		return mgl32.Vec3{}, false, fmt.Errorf("%w: max depth %v", ErrInvalidRay, maxDepth)
	}
	if l := direction.Len(); !(l > 0) || math.IsInf(float64(l), 0) {
		return mgl32.Vec3{}, false, fmt.Errorf("%w: direction %v", ErrInvalidRay, direction)
	}
	if len(geometries) == 0 {
		return mgl32.Vec3{}, false, nil
	}
	if ctx == nil {
		return mgl32.Vec3{}, false, ErrNoContext
	}
	cfg = cfg.withDefaults()
	direction = direction.Normalize()

	camera, err := probeCamera(origin, direction, maxDepth, cfg)
	if err != nil {
		return mgl32.Vec3{}, false, fmt.Errorf("%w: %v", ErrInvalidRay, err)
	}

	color, err := ctx.NewColorTexture(gfx.ColorTextureDescriptor{
		Width:     1,
		Height:    1,
		MinFilter: gfx.InterpolationNearest,
		MagFilter: gfx.InterpolationNearest,
		WrapS:     gfx.WrappingClampToEdge,
		WrapT:     gfx.WrappingClampToEdge,
		Format:    gfx.ColorFormatRGBA32F,
		Label:     "ray probe color",
	})
	if err != nil {
		return mgl32.Vec3{}, false, err
	}
	defer color.Release()
	depth, err := ctx.NewDepthTexture(gfx.DepthTextureDescriptor{
		Width:  1,
		Height: 1,
		WrapS:  gfx.WrappingClampToEdge,
		WrapT:  gfx.WrappingClampToEdge,
		Format: gfx.DepthFormat32F,
		Label:  "ray probe depth",
	})
	if err != nil {
		return mgl32.Vec3{}, false, err
	}
	defer depth.Release()
	target, err := ctx.NewRenderTarget(color, depth)
	if err != nil {
		return mgl32.Vec3{}, false, err
	}
	defer target.Release()

	states := core.RenderStates{
		WriteMask: core.WriteMask{Red: true, Depth: true},
		DepthTest: core.DepthTestLess,
	}
	err = target.Write(core.ClearColorDepth(1, 0, 0, 0, 1), func() error {
		for _, g := range geometries {
			if !InFrustum(camera, g) {
				continue
			}
			if err := g.RenderDepthToRed(states, camera, maxDepth); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return mgl32.Vec3{}, false, err
	}

	pixels, err := color.Read(core.NewViewportAtOrigin(1, 1))
	if err != nil {
		return mgl32.Vec3{}, false, err
	}
	if len(pixels) != 1 {
		return mgl32.Vec3{}, false, gfx.ReadbackError("ray probe", fmt.Errorf("got %d pixels", len(pixels)))
	}
	v := pixels[0][0]
	if !(v < 1) {
		return mgl32.Vec3{}, false, nil
	}
	return origin.Add(direction.Mul(v * maxDepth)), true, nil
}

func probeCamera(origin, direction mgl32.Vec3, maxDepth float32, cfg ProbeConfig) (*core.Camera, error) {
	var up mgl32.Vec3
	if abs(direction.X()) > cfg.UpThreshold {
		up = direction.Cross(mgl32.Vec3{0, 1, 0})
	} else {
		up = direction.Cross(mgl32.Vec3{1, 0, 0})
	}
	near := cfg.NearEpsilon
	if near >= maxDepth {
		near = maxDepth / 2
	}
	return core.NewOrthographicCamera(
		core.NewViewportAtOrigin(1, 1),
		origin,
		origin.Add(direction.Mul(maxDepth)),
		up,
		cfg.ViewHeight,
		near,
		maxDepth,
	)
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
