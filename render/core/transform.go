package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places a mesh in the world: scale first, then rotation, then
// translation.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() *Transform {
	return &Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix maps object space to world space.
func (t *Transform) Matrix() mgl32.Mat4 {
	m := t.Rotation.Mat4().Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
	m.SetCol(3, t.Position.Vec4(1))
	return m
}

// Inverse maps world space back to object space. A zero scale component
// yields infinities.
func (t *Transform) Inverse() mgl32.Mat4 {
	s := mgl32.Scale3D(1/t.Scale[0], 1/t.Scale[1], 1/t.Scale[2])
	r := t.Rotation.Conjugate().Mat4()
	return s.Mul4(r).Mul4(mgl32.Translate3D(-t.Position[0], -t.Position[1], -t.Position[2]))
}

// NormalMatrix transforms object space normals to world space.
func (t *Transform) NormalMatrix() mgl32.Mat3 {
	return t.Inverse().Mat3().Transpose()
}
