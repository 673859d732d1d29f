package soft

import (
	"github.com/gekko3d/forward/render/core"
)

// Model is a mesh placed in the world and drawn through a soft context.
type Model struct {
	Name      string
	Mesh      *core.Mesh
	Transform *core.Transform
	// Unbounded models skip frustum culling.
	Unbounded bool

	ctx *Context
}

func NewModel(ctx *Context, name string, mesh *core.Mesh) *Model {
	return &Model{Name: name, Mesh: mesh, Transform: core.NewTransform(), ctx: ctx}
}

// AABB returns the world space bounds, or nil when the model is unbounded.
func (m *Model) AABB() *core.AABB {
	if m.Unbounded || m.Mesh == nil {
		return nil
	}
	box := m.Mesh.AABB().Transform(m.Transform.Matrix())
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

// RenderDepthToRed writes the distance to the camera, divided by maxDepth,
// into the red channel using the given states.
func (m *Model) RenderDepthToRed(states core.RenderStates, camera *core.Camera, maxDepth float32) error {
	mat := core.NewDepthMaterial(maxDepth)
	mat.States = states
	return m.RenderForward(mat, camera)
}
