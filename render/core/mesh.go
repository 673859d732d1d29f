package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle list in object space. Triangles wind
// counter-clockwise when seen from outside.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// AABB returns the object space bounds.
func (m *Mesh) AABB() AABB {
	return NewAABB(m.Positions...)
}

// NewSphereMesh builds a UV sphere with poles on the Y axis.
func NewSphereMesh(radius float32, stacks, slices int) *Mesh {
	if stacks < 2 {
		stacks = 2
	}
	if slices < 3 {
		slices = 3
	}
	m := &Mesh{}
	for i := 0; i <= stacks; i++ {
		theta := math.Pi * float64(i) / float64(stacks)
		st, ct := math.Sincos(theta)
		for j := 0; j <= slices; j++ {
			phi := 2 * math.Pi * float64(j) / float64(slices)
			sp, cp := math.Sincos(phi)
			n := mgl32.Vec3{float32(st * cp), float32(ct), float32(st * sp)}
			m.Positions = append(m.Positions, n.Mul(radius))
			m.Normals = append(m.Normals, n)
		}
	}
	row := uint32(slices + 1)
	for i := 0; i < stacks; i++ {
		for j := 0; j < slices; j++ {
			a := uint32(i)*row + uint32(j)
			b := a + row
			// a, a+1 on the upper ring, b, b+1 below.
			m.Indices = append(m.Indices, a, a+1, b, a+1, b+1, b)
		}
	}
	return m
}

// NewSphere is a sphere with odd tessellation counts, which keeps mesh
// seams off the principal axes.
func NewSphere(radius float32) *Mesh {
	return NewSphereMesh(radius, 31, 45)
}

// NewBoxMesh builds an axis aligned box centered at the origin.
func NewBoxMesh(halfExtents mgl32.Vec3) *Mesh {
	hx, hy, hz := halfExtents.X(), halfExtents.Y(), halfExtents.Z()
	faces := []struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{hx, -hy, hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}, {-hx, hy, -hz}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}}},
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}}},
	}
	m := &Mesh{}
	for _, f := range faces {
		base := uint32(len(m.Positions))
		for _, c := range f.corners {
			m.Positions = append(m.Positions, c)
			m.Normals = append(m.Normals, f.normal)
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// NewPlaneMesh builds a quad in the XZ plane facing +Y.
func NewPlaneMesh(halfWidth, halfDepth float32) *Mesh {
	up := mgl32.Vec3{0, 1, 0}
	return &Mesh{
		Positions: []mgl32.Vec3{
			{-halfWidth, 0, halfDepth},
			{halfWidth, 0, halfDepth},
			{halfWidth, 0, -halfDepth},
			{-halfWidth, 0, -halfDepth},
		},
		Normals: []mgl32.Vec3{up, up, up, up},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}
