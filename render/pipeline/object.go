// Package pipeline sequences forward and depth-only draws over a batch of
// renderables and answers ray queries by rendering depth through a 1x1
// orthographic camera.
package pipeline

import (
	"github.com/gekko3d/forward/render/core"
)

// Geometry is anything that can contribute depth to a camera.
type Geometry interface {
	// AABB returns the world space bounds, or nil when unknown.
	AABB() *core.AABB
	// RenderDepthToRed writes distance/maxDepth into the red channel of the
	// bound target using states.
	RenderDepthToRed(states core.RenderStates, camera *core.Camera, maxDepth float32) error
}

// Object is a Geometry that can also be shaded.
type Object interface {
	Geometry
	RenderForward(material core.Material, camera *core.Camera) error
}

type ObjectMaterial struct {
	Object   Object
	Material core.Material
}

type PhysicalObject struct {
	Object   Object
	Material *core.PhysicalMaterial
}

// InFrustum reports whether g may be visible to camera. Geometry without
// bounds is always considered visible.
func InFrustum(camera *core.Camera, g Geometry) bool {
	aabb := g.AABB()
	if aabb == nil {
		return true
	}
	return camera.InFrustum(*aabb)
}
