package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

type attachments struct {
	color       *wgpu.TextureView
	colorFormat wgpu.TextureFormat
	depth       *DepthTexture
}

// binding is the render pass being recorded by Write.
type binding struct {
	pass    *wgpu.RenderPassEncoder
	targets attachments
	buffers []*wgpu.Buffer
	groups  []*wgpu.BindGroup
}

func (b *binding) release() {
	for _, g := range b.groups {
		g.Release()
	}
	for _, buf := range b.buffers {
		buf.Release()
	}
	b.groups, b.buffers = nil, nil
}

// write records one render pass around draw and submits it. Draws recorded
// before a failing one are still submitted.
func (c *Context) write(t attachments, clear core.ClearState, draw func() error) error {
	if c.bound != nil {
		return gfx.DrawError("bind", gfx.ErrTargetBusy)
	}
	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		return gfx.DrawError("command encoder", err)
	}
	defer encoder.Release()

	desc := &wgpu.RenderPassDescriptor{}
	if t.color != nil {
		att := wgpu.RenderPassColorAttachment{
			View:    t.color,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}
		if clear.HasColor() {
			rgba := clear.ColorOr([4]float32{})
			att.LoadOp = wgpu.LoadOpClear
			att.ClearValue = wgpu.Color{R: float64(rgba[0]), G: float64(rgba[1]), B: float64(rgba[2]), A: float64(rgba[3])}
		}
		desc.ColorAttachments = []wgpu.RenderPassColorAttachment{att}
	}
	if t.depth != nil {
		ds := &wgpu.RenderPassDepthStencilAttachment{
			View:         t.depth.view,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		}
		if clear.Depth != nil {
			ds.DepthLoadOp = wgpu.LoadOpClear
			ds.DepthClearValue = *clear.Depth
		}
		desc.DepthStencilAttachment = ds
	}

	pass := encoder.BeginRenderPass(desc)
	b := &binding{pass: pass, targets: t}
	c.bound = b
	defer func() {
		c.bound = nil
		b.release()
		c.pipelines.flush()
	}()

	var drawErr error
	if draw != nil {
		drawErr = draw()
	}
	pass.End()
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		if drawErr != nil {
			return drawErr
		}
		return gfx.DrawError("finish", err)
	}
	defer cmd.Release()
	c.queue.Submit(cmd)
	return drawErr
}

// DrawCall is one indexed mesh submission.
type DrawCall struct {
	Mesh         *Mesh
	Model        mgl32.Mat4
	NormalMatrix mgl32.Mat3
	Camera       *core.Camera
	Material     core.Material
}

func (c *Context) Draw(call DrawCall) error {
	b := c.bound
	if b == nil {
		return gfx.DrawError("draw", gfx.ErrNoRenderTarget)
	}
	if call.Mesh == nil || call.Camera == nil || call.Material == nil {
		return gfx.DrawError("draw", fmt.Errorf("incomplete draw call"))
	}

	u := drawUniforms{
		ViewProj:  clipSpaceViewProjection(call.Camera),
		Model:     call.Model,
		Normal:    call.NormalMatrix.Mat4(),
		CameraPos: call.Camera.Position().Vec4(1),
	}
	prog, err := u.setMaterial(call.Material)
	if err != nil {
		return gfx.DrawError("material", err)
	}

	key := pipelineKey{
		program: prog,
		states:  call.Material.RenderStates(),
	}
	if b.targets.color != nil {
		key.color = b.targets.colorFormat
	}
	if b.targets.depth != nil {
		key.depth = b.targets.depth.format
	}
	pipeline, err := c.pipelines.get(key)
	if err != nil {
		return gfx.DrawError("pipeline", err)
	}

	ub, err := c.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "draw uniforms",
		Contents: u.bytes(),
		Usage:    wgpu.BufferUsageUniform,
	})
	if err != nil {
		return gfx.AllocateError("uniform buffer", err)
	}
	b.buffers = append(b.buffers, ub)

	layout := pipeline.GetBindGroupLayout(0)
	group, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "draw uniforms",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: ub, Size: uniformSize},
		},
	})
	layout.Release()
	if err != nil {
		return gfx.AllocateError("bind group", err)
	}
	b.groups = append(b.groups, group)

	b.pass.SetPipeline(pipeline)
	b.pass.SetBindGroup(0, group, nil)
	b.pass.SetVertexBuffer(0, call.Mesh.vertices, 0, wgpu.WholeSize)
	b.pass.SetIndexBuffer(call.Mesh.indices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.pass.DrawIndexed(call.Mesh.indexCount, 1, 0, 0, 0)
	return nil
}
