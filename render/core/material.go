package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Fragment is the interpolated surface sample handed to a material.
type Fragment struct {
	Position       mgl32.Vec3 // world space
	Normal         mgl32.Vec3 // world space, normalized
	CameraPosition mgl32.Vec3
}

// Material decides the render states of a draw and the color of each fragment.
type Material interface {
	RenderStates() RenderStates
	Shade(f Fragment) mgl32.Vec4
}

// ColorMaterial is unlit and outputs a constant color.
type ColorMaterial struct {
	Color  mgl32.Vec4
	States RenderStates
}

func NewColorMaterial(color mgl32.Vec4) *ColorMaterial {
	return &ColorMaterial{Color: color, States: DefaultRenderStates()}
}

func (m *ColorMaterial) RenderStates() RenderStates { return m.States }

func (m *ColorMaterial) Shade(Fragment) mgl32.Vec4 { return m.Color }

type PhysicalMaterial struct {
	Name      string
	Albedo    mgl32.Vec4
	Emissive  mgl32.Vec3
	Roughness float32
	Metallic  float32
	States    RenderStates
}

func NewPhysicalMaterial(albedo mgl32.Vec4) *PhysicalMaterial {
	return &PhysicalMaterial{
		Albedo:    albedo,
		Roughness: 1.0,
		Metallic:  0.0,
		States:    DefaultRenderStates(),
	}
}

// DefaultPhysicalMaterial is opaque white.
func DefaultPhysicalMaterial() *PhysicalMaterial {
	return NewPhysicalMaterial(mgl32.Vec4{1, 1, 1, 1})
}

func (m *PhysicalMaterial) RenderStates() RenderStates { return m.States }

// Shade without lights returns albedo plus emission.
func (m *PhysicalMaterial) Shade(Fragment) mgl32.Vec4 {
	c := m.Albedo.Vec3().Add(m.Emissive)
	return c.Vec4(m.Albedo.W())
}

// LitMaterial shades a physical material with a borrowed light list.
type LitMaterial struct {
	Material *PhysicalMaterial
	Lights   []Light
}

func (m *LitMaterial) RenderStates() RenderStates { return m.Material.States }

func (m *LitMaterial) Shade(f Fragment) mgl32.Vec4 {
	albedo := m.Material.Albedo.Vec3()
	c := m.Material.Emissive
	for _, l := range m.Lights {
		c = c.Add(l.Shade(f, albedo))
	}
	return c.Vec4(m.Material.Albedo.W())
}

// DepthMaterial outputs the fragment distance to the camera, normalized to
// [MinDistance, MaxDistance], in every color channel.
type DepthMaterial struct {
	MinDistance float32
	MaxDistance float32
	States      RenderStates
}

func NewDepthMaterial(maxDistance float32) *DepthMaterial {
	return &DepthMaterial{MaxDistance: maxDistance, States: DefaultRenderStates()}
}

func (m *DepthMaterial) RenderStates() RenderStates { return m.States }

func (m *DepthMaterial) Shade(f Fragment) mgl32.Vec4 {
	v := m.Normalize(f.Position.Sub(f.CameraPosition).Len())
	return mgl32.Vec4{v, v, v, 1}
}

// Normalize maps a distance into [0, 1]. Without a valid range it returns 0.
func (m *DepthMaterial) Normalize(distance float32) float32 {
	span := m.MaxDistance - m.MinDistance
	if span <= 0 {
		return 0
	}
	return mgl32.Clamp((distance-m.MinDistance)/span, 0, 1)
}
