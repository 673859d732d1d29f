package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
)

// Mesh is a core.Mesh uploaded to vertex and index buffers.
type Mesh struct {
	vertices   *wgpu.Buffer
	indices    *wgpu.Buffer
	indexCount uint32
	bounds     core.AABB
}

func (c *Context) UploadMesh(name string, mesh *core.Mesh) (*Mesh, error) {
	data := make([]float32, 0, len(mesh.Positions)*6)
	for i, p := range mesh.Positions {
		var n [3]float32
		if i < len(mesh.Normals) {
			n = mesh.Normals[i]
		}
		data = append(data, p[0], p[1], p[2], n[0], n[1], n[2])
	}
	vertices, err := c.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    name + " vertices",
		Contents: wgpu.ToBytes(data),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, gfx.AllocateError("vertex buffer", err)
	}
	indices, err := c.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    name + " indices",
		Contents: wgpu.ToBytes(mesh.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vertices.Release()
		return nil, gfx.AllocateError("index buffer", err)
	}
	c.logger.Debugf("gpu: mesh %s, %d triangles", name, mesh.TriangleCount())
	return &Mesh{vertices: vertices, indices: indices, indexCount: uint32(len(mesh.Indices)), bounds: mesh.AABB()}, nil
}

func (m *Mesh) Release() {
	m.vertices.Release()
	m.indices.Release()
}

// Model places an uploaded mesh in the world.
type Model struct {
	Name      string
	Mesh      *Mesh
	Transform *core.Transform
	// Unbounded models skip frustum culling.
	Unbounded bool

	ctx *Context
}

func NewModel(ctx *Context, name string, mesh *Mesh) *Model {
	return &Model{Name: name, Mesh: mesh, Transform: core.NewTransform(), ctx: ctx}
}

func (m *Model) AABB() *core.AABB {
	if m.Unbounded || m.Mesh == nil {
		return nil
	}
	box := m.Mesh.bounds.Transform(m.Transform.Matrix())
	return &box
}

func (m *Model) RenderForward(material core.Material, camera *core.Camera) error {
	return m.ctx.Draw(DrawCall{
		Mesh:         m.Mesh,
		Model:        m.Transform.Matrix(),
		NormalMatrix: m.Transform.NormalMatrix(),
		Camera:       camera,
		Material:     material,
	})
}

func (m *Model) RenderDepthToRed(states core.RenderStates, camera *core.Camera, maxDepth float32) error {
	mat := core.NewDepthMaterial(maxDepth)
	mat.States = states
	return m.RenderForward(mat, camera)
}
