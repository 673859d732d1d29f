package pipeline

import (
	"github.com/gekko3d/forward/render/core"
)

// LightPass combines the lights into one list, lights every material with
// it and runs RenderPass.
//
// Deprecated: build core.LitMaterial values and call RenderPass.
func (p *ForwardPipeline) LightPass(
	camera *core.Camera,
	objects []PhysicalObject,
	ambient *core.AmbientLight,
	directional []*core.DirectionalLight,
	spot []*core.SpotLight,
	point []*core.PointLight,
) error {
	lights := make([]core.Light, 0, 1+len(directional)+len(spot)+len(point))
	if ambient != nil {
		lights = append(lights, ambient)
	}
	for _, l := range directional {
		lights = append(lights, l)
	}
	for _, l := range spot {
		lights = append(lights, l)
	}
	for _, l := range point {
		lights = append(lights, l)
	}

	pairs := make([]ObjectMaterial, len(objects))
	for i, o := range objects {
		pairs[i] = ObjectMaterial{
			Object:   o.Object,
			Material: &core.LitMaterial{Material: o.Material, Lights: lights},
		}
	}
	return p.RenderPass(camera, pairs)
}
