package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gpu/shaders"
	"github.com/gekko3d/forward/render/logging"
	lru "github.com/hashicorp/golang-lru"
)

// Interleaved position and normal.
const vertexStride = 24

// Pipelines past this many distinct keys are evicted least recently used
// first.
const pipelineCacheSize = 64

// pipelineKey identifies a render pipeline. A zero format means the
// attachment is absent.
type pipelineKey struct {
	program program
	color   wgpu.TextureFormat
	depth   wgpu.TextureFormat
	states  core.RenderStates
}

func (k pipelineKey) String() string {
	return fmt.Sprintf("%s color=%v depth=%v test=%s cull=%d", k.program, k.color, k.depth, k.states.DepthTest, k.states.Cull)
}

type pipelineCache struct {
	device    *wgpu.Device
	logger    logging.Logger
	module    *wgpu.ShaderModule
	pipelines *lru.Cache
	// retired holds evicted pipelines until the pass that may still
	// reference them has been submitted.
	retired []*wgpu.RenderPipeline
}

func newPipelineCache(device *wgpu.Device, logger logging.Logger, size int) (*pipelineCache, error) {
	p := &pipelineCache{device: device, logger: logger}
	pipelines, err := lru.NewWithEvict(size, func(key, value interface{}) {
		logger.Debugf("gpu: evict pipeline %s", key)
		p.retired = append(p.retired, value.(*wgpu.RenderPipeline))
	})
	if err != nil {
		return nil, err
	}
	p.pipelines = pipelines
	return p, nil
}

// flush releases evicted pipelines. Call it only when no pass is recording.
func (p *pipelineCache) flush() {
	for _, rp := range p.retired {
		rp.Release()
	}
	p.retired = nil
}

func (p *pipelineCache) get(key pipelineKey) (*wgpu.RenderPipeline, error) {
	if rp, ok := p.pipelines.Get(key); ok {
		return rp.(*wgpu.RenderPipeline), nil
	}
	if p.module == nil {
		module, err := p.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label:          "forward",
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ForwardWGSL},
		})
		if err != nil {
			return nil, err
		}
		p.module = module
	}

	desc := &wgpu.RenderPipelineDescriptor{
		Label: key.String(),
		Vertex: wgpu.VertexState{
			Module:     p.module,
			EntryPoint: shaders.VertexEntry,
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: vertexStride,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
				},
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode(key.states.Cull),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if key.color != wgpu.TextureFormatUndefined {
		desc.Fragment = &wgpu.FragmentState{
			Module:     p.module,
			EntryPoint: fragmentEntry(key.program),
			Targets: []wgpu.ColorTargetState{{
				Format:    key.color,
				WriteMask: colorWriteMask(key.states.WriteMask),
			}},
		}
	}
	if key.depth != wgpu.TextureFormatUndefined {
		desc.DepthStencil = &wgpu.DepthStencilState{
			Format:            key.depth,
			DepthWriteEnabled: key.states.WriteMask.Depth,
			DepthCompare:      compareFunction(key.states.DepthTest),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	rp, err := p.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, err
	}
	p.logger.Debugf("gpu: pipeline %s", key)
	p.pipelines.Add(key, rp)
	return rp, nil
}

// release drops every cached pipeline.
func (p *pipelineCache) release() {
	p.pipelines.Purge()
	p.flush()
	if p.module != nil {
		p.module.Release()
		p.module = nil
	}
}

func fragmentEntry(p program) string {
	switch p {
	case programLit:
		return shaders.LitEntry
	case programDepth:
		return shaders.DepthEntry
	}
	return shaders.ColorEntry
}

func colorWriteMask(m core.WriteMask) wgpu.ColorWriteMask {
	mask := wgpu.ColorWriteMaskNone
	if m.Red {
		mask |= wgpu.ColorWriteMaskRed
	}
	if m.Green {
		mask |= wgpu.ColorWriteMaskGreen
	}
	if m.Blue {
		mask |= wgpu.ColorWriteMaskBlue
	}
	if m.Alpha {
		mask |= wgpu.ColorWriteMaskAlpha
	}
	return mask
}

func compareFunction(t core.DepthTest) wgpu.CompareFunction {
	switch t {
	case core.DepthTestAlways:
		return wgpu.CompareFunctionAlways
	case core.DepthTestNever:
		return wgpu.CompareFunctionNever
	case core.DepthTestEqual:
		return wgpu.CompareFunctionEqual
	case core.DepthTestLessOrEqual:
		return wgpu.CompareFunctionLessEqual
	case core.DepthTestGreater:
		return wgpu.CompareFunctionGreater
	case core.DepthTestNotEqual:
		return wgpu.CompareFunctionNotEqual
	case core.DepthTestGreaterOrEqual:
		return wgpu.CompareFunctionGreaterEqual
	}
	return wgpu.CompareFunctionLess
}

func cullMode(c core.Cull) wgpu.CullMode {
	switch c {
	case core.CullBack:
		return wgpu.CullModeBack
	case core.CullFront:
		return wgpu.CullModeFront
	}
	return wgpu.CullModeNone
}
