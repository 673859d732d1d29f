// Package gpu implements the gfx context on WebGPU.
package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
	"github.com/gekko3d/forward/render/logging"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedMaterial = errors.New("gpu: unsupported material")
	ErrUnsupportedFormat   = errors.New("gpu: unsupported format")
)

type Config struct {
	Label           string
	PowerPreference wgpu.PowerPreference
	// Instance is created when nil and released with the context.
	Instance *wgpu.Instance
	// Surface, when set, is passed as the compatible surface of the adapter request.
	Surface *wgpu.Surface
	// PipelineCacheSize bounds the number of live render pipelines.
	// Zero means 64.
	PipelineCacheSize int
	Logger            logging.Logger
}

// Context owns one device and queue. Calls must come from a single goroutine.
type Context struct {
	instance     *wgpu.Instance
	ownsInstance bool
	adapter      *wgpu.Adapter
	device       *wgpu.Device
	queue        *wgpu.Queue
	logger       logging.Logger

	pipelines *pipelineCache
	bound     *binding
}

func NewContext(cfg Config) (*Context, error) {
	logger := logging.OrNop(cfg.Logger)
	label := cfg.Label
	if label == "" {
		label = "forward"
	}
	power := cfg.PowerPreference
	if power == wgpu.PowerPreferenceUndefined {
		power = wgpu.PowerPreferenceHighPerformance
	}

	c := &Context{instance: cfg.Instance, logger: logger}
	if c.instance == nil {
		c.instance = wgpu.CreateInstance(nil)
		c.ownsInstance = true
	}

	adapter, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: cfg.Surface,
		PowerPreference:   power,
	})
	if err != nil {
		c.Release()
		return nil, gfx.AllocateError("request adapter", err)
	}
	c.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: label + " device",
	})
	if err != nil {
		c.Release()
		return nil, gfx.AllocateError("request device", err)
	}
	c.device = device
	c.queue = device.GetQueue()
	cacheSize := cfg.PipelineCacheSize
	if cacheSize <= 0 {
		cacheSize = pipelineCacheSize
	}
	c.pipelines, err = newPipelineCache(device, logger, cacheSize)
	if err != nil {
		c.Release()
		return nil, gfx.AllocateError("pipeline cache", err)
	}

	logger.Infof("gpu: device %q ready", label)
	return c, nil
}

func (c *Context) Instance() *wgpu.Instance { return c.instance }
func (c *Context) Adapter() *wgpu.Adapter   { return c.adapter }
func (c *Context) Device() *wgpu.Device     { return c.device }

func (c *Context) Release() {
	if c.pipelines != nil {
		c.pipelines.release()
	}
	if c.queue != nil {
		c.queue.Release()
	}
	if c.device != nil {
		c.device.Release()
	}
	if c.adapter != nil {
		c.adapter.Release()
	}
	if c.ownsInstance && c.instance != nil {
		c.instance.Release()
	}
	c.pipelines, c.queue, c.device, c.adapter = nil, nil, nil, nil
}

func (c *Context) NewColorTexture(desc gfx.ColorTextureDescriptor) (gfx.ColorTexture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, gfx.AllocateError("color texture", fmt.Errorf("%w: %dx%d", gfx.ErrInvalidSize, desc.Width, desc.Height))
	}
	format, err := colorFormat(desc.Format)
	if err != nil {
		return nil, gfx.AllocateError("color texture", err)
	}
	id := uuid.NewString()
	tex, view, err := c.createTexture(label(desc.Label, "color", id), desc.Width, desc.Height, format,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageCopySrc|wgpu.TextureUsageTextureBinding)
	if err != nil {
		return nil, gfx.AllocateError("color texture", err)
	}
	return &ColorTexture{id: id, ctx: c, desc: desc, format: format, texture: tex, view: view}, nil
}

func (c *Context) NewDepthTexture(desc gfx.DepthTextureDescriptor) (gfx.DepthTexture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, gfx.AllocateError("depth texture", fmt.Errorf("%w: %dx%d", gfx.ErrInvalidSize, desc.Width, desc.Height))
	}
	format, err := depthFormat(desc.Format)
	if err != nil {
		return nil, gfx.AllocateError("depth texture", err)
	}
	usage := wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding
	if format != wgpu.TextureFormatDepth24Plus {
		usage |= wgpu.TextureUsageCopySrc
	}
	id := uuid.NewString()
	tex, view, err := c.createTexture(label(desc.Label, "depth", id), desc.Width, desc.Height, format, usage)
	if err != nil {
		return nil, gfx.AllocateError("depth texture", err)
	}
	return &DepthTexture{id: id, ctx: c, desc: desc, format: format, texture: tex, view: view}, nil
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

func (c *Context) createTexture(name string, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: name,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	c.logger.Debugf("gpu: texture %s %dx%d", name, width, height)
	return tex, view, nil
}

func label(name, kind, id string) string {
	if name == "" {
		return kind + " " + id
	}
	return name + " " + id
}

func colorFormat(f gfx.ColorFormat) (wgpu.TextureFormat, error) {
	switch f {
	case gfx.ColorFormatRGBA32F:
		return wgpu.TextureFormatRGBA32Float, nil
	case gfx.ColorFormatRGBA8:
		return wgpu.TextureFormatRGBA8Unorm, nil
	}
	return 0, fmt.Errorf("%w: color format %d", ErrUnsupportedFormat, f)
}

func depthFormat(f gfx.DepthFormat) (wgpu.TextureFormat, error) {
	switch f {
	case gfx.DepthFormat32F:
		return wgpu.TextureFormatDepth32Float, nil
	case gfx.DepthFormat24:
		return wgpu.TextureFormatDepth24Plus, nil
	case gfx.DepthFormat16:
		return wgpu.TextureFormatDepth16Unorm, nil
	}
	return 0, fmt.Errorf("%w: depth format %s", ErrUnsupportedFormat, f)
}

// zCorrection maps OpenGL clip depth [-w, w] onto the WebGPU range [0, w].
var zCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func clipSpaceViewProjection(camera *core.Camera) mgl32.Mat4 {
	return zCorrection.Mul4(camera.ViewProjection())
}
