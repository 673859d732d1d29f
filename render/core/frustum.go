package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Frustum holds the left, right, bottom, top, near and far planes of a
// view-projection matrix. Each plane is (a, b, c, d) with a unit inward
// normal, so a point p is inside when a*x + b*y + c*z + d >= 0.
type Frustum [6]mgl32.Vec4

// NewFrustum extracts the planes of a GL style (-1..1 depth) matrix.
func NewFrustum(viewProj mgl32.Mat4) Frustum {
	r := [4]mgl32.Vec4{viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)}
	f := Frustum{
		r[3].Add(r[0]), r[3].Sub(r[0]),
		r[3].Add(r[1]), r[3].Sub(r[1]),
		r[3].Add(r[2]), r[3].Sub(r[2]),
	}
	for i, p := range f {
		if n := p.Vec3().Len(); n > 0 {
			f[i] = p.Mul(1 / n)
		}
	}
	return f
}

// Intersects reports whether any part of box lies inside all six planes.
// Boxes touching a plane count as inside. An empty box never intersects.
func (f Frustum) Intersects(box AABB) bool {
	if box.Empty() {
		return false
	}
	for _, p := range f {
		// Corner furthest along the inward normal.
		var v mgl32.Vec3
		for k := 0; k < 3; k++ {
			v[k] = box.Min[k]
			if p[k] > 0 {
				v[k] = box.Max[k]
			}
		}
		if p.Vec3().Dot(v)+p[3] < 0 {
			return false
		}
	}
	return true
}
