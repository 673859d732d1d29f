package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestDepthTestPasses(t *testing.T) {
	tests := []struct {
		test     DepthTest
		incoming float32
		stored   float32
		expected bool
	}{
		{DepthTestLess, 0.4, 0.5, true},
		{DepthTestLess, 0.5, 0.5, false},
		{DepthTestLessOrEqual, 0.5, 0.5, true},
		{DepthTestGreater, 0.6, 0.5, true},
		{DepthTestGreaterOrEqual, 0.4, 0.5, false},
		{DepthTestEqual, 0.5, 0.5, true},
		{DepthTestNotEqual, 0.5, 0.5, false},
		{DepthTestAlways, 1, 0, true},
		{DepthTestNever, 0, 1, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, tc.test.Passes(tc.incoming, tc.stored), "%s(%v, %v)", tc.test, tc.incoming, tc.stored)
	}
}

func TestDefaultRenderStates(t *testing.T) {
	s := DefaultRenderStates()
	assert.Equal(t, WriteMaskColorDepth, s.WriteMask)
	assert.Equal(t, DepthTestLess, s.DepthTest)
	assert.Equal(t, DepthTestLess, RenderStates{}.DepthTest, "zero value depth test should be Less")
	assert.False(t, WriteMaskDepth.HasColor())
	assert.True(t, WriteMaskDepth.Depth)
}

func TestClearStateColorOr(t *testing.T) {
	r := float32(1)
	c := ClearState{Red: &r}
	assert.True(t, c.HasColor())
	assert.Equal(t, [4]float32{1, 0, 0, 0}, c.ColorOr([4]float32{}))
	assert.False(t, ClearDepthOnly(1).HasColor())
}

func TestDepthMaterialNormalizesDistance(t *testing.T) {
	m := NewDepthMaterial(20)
	f := Fragment{Position: mgl32.Vec3{0, 0, -1}, CameraPosition: mgl32.Vec3{0, 0, -10}}
	c := m.Shade(f)
	assert.InDelta(t, 9.0/20.0, c.X(), 1e-6)
	assert.Equal(t, float32(1), m.Normalize(500), "distances past the range clamp to 1")
	assert.Equal(t, float32(0), (&DepthMaterial{}).Normalize(3), "no range means zero")
}

func TestLitMaterialSumsLights(t *testing.T) {
	mat := NewPhysicalMaterial(mgl32.Vec4{1, 0.5, 0.25, 1})
	lit := &LitMaterial{
		Material: mat,
		Lights: []Light{
			&AmbientLight{Color: mgl32.Vec3{1, 1, 1}, Intensity: 0.1},
			&DirectionalLight{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1, Direction: mgl32.Vec3{0, -1, 0}},
		},
	}
	up := Fragment{Normal: mgl32.Vec3{0, 1, 0}}
	down := Fragment{Normal: mgl32.Vec3{0, -1, 0}}

	assert.InDelta(t, 1.1, lit.Shade(up).X(), 1e-5)
	assert.InDelta(t, 0.1, lit.Shade(down).X(), 1e-5, "back facing surfaces only get ambient")
	assert.Equal(t, mat.States, lit.RenderStates())
}

func TestPointAndSpotAttenuation(t *testing.T) {
	point := &PointLight{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1, Position: mgl32.Vec3{0, 2, 0}, Attenuation: Attenuation{Constant: 0, Quadratic: 1}}
	f := Fragment{Normal: mgl32.Vec3{0, 1, 0}}
	assert.InDelta(t, 0.25, point.Shade(f, mgl32.Vec3{1, 1, 1}).X(), 1e-5)

	spot := &SpotLight{
		Color: mgl32.Vec3{1, 1, 1}, Intensity: 1,
		Position: mgl32.Vec3{0, 2, 0}, Direction: mgl32.Vec3{0, -1, 0},
		Cutoff: mgl32.DegToRad(10), Attenuation: NoAttenuation,
	}
	assert.InDelta(t, 1.0, spot.Shade(f, mgl32.Vec3{1, 1, 1}).X(), 1e-5)
	outside := Fragment{Position: mgl32.Vec3{5, 0, 0}, Normal: mgl32.Vec3{0, 1, 0}}
	assert.Equal(t, mgl32.Vec3{}, spot.Shade(outside, mgl32.Vec3{1, 1, 1}))
}

func TestLightPacking(t *testing.T) {
	spot := &SpotLight{Color: mgl32.Vec3{1, 0, 0}, Intensity: 2, Direction: mgl32.Vec3{0, -2, 0}, Attenuation: NoAttenuation}
	p := spot.Pack()
	assert.Equal(t, float32(LightTypeSpot), p.Params[3])
	assert.Equal(t, [4]float32{1, 0, 0, 2}, p.Color)
	assert.InDelta(t, -1.0, p.Direction[1], 1e-6, "direction is normalized")
	assert.InDelta(t, 1.0, p.Direction[3], 1e-6, "zero cutoff packs cos(0)")
}

func TestSphereMesh(t *testing.T) {
	m := NewSphere(2)
	box := m.AABB()
	assert.InDelta(t, 2.0, box.Max.Y(), 1e-5)
	assert.InDelta(t, -2.0, box.Min.Y(), 1e-5)
	assert.Equal(t, 31*45*2, m.TriangleCount())

	// Every triangle winds counter-clockwise seen from outside.
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := m.Positions[m.Indices[i]], m.Positions[m.Indices[i+1]], m.Positions[m.Indices[i+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() < 1e-9 {
			continue // degenerate pole triangles
		}
		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		if n.Dot(centroid) <= 0 {
			t.Fatalf("triangle %d faces inward", i/3)
		}
	}
}

func TestBoxMeshWinding(t *testing.T) {
	m := NewBoxMesh(mgl32.Vec3{1, 2, 3})
	assert.Equal(t, 12, m.TriangleCount())
	assert.Equal(t, AABB{Min: mgl32.Vec3{-1, -2, -3}, Max: mgl32.Vec3{1, 2, 3}}, m.AABB())
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := m.Positions[m.Indices[i]], m.Positions[m.Indices[i+1]], m.Positions[m.Indices[i+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		assert.Greater(t, n.Dot(m.Normals[m.Indices[i]]), float32(0), "triangle %d", i/3)
	}
}
