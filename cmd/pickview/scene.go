package main

import (
	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/pipeline"
	"github.com/go-gl/mathgl/mgl32"
)

type modelFactory func(name string, mesh *core.Mesh) (pipeline.Object, *core.Transform, error)

type scene struct {
	names      []string
	objects    []pipeline.ObjectMaterial
	geometries []pipeline.Geometry
	plain      []pipeline.Object
	lights     []core.Light
}

func buildScene(newModel modelFactory) (*scene, error) {
	lights := []core.Light{
		&core.AmbientLight{Color: mgl32.Vec3{1, 1, 1}, Intensity: 0.15},
		&core.DirectionalLight{Color: mgl32.Vec3{1, 0.95, 0.9}, Intensity: 0.8, Direction: mgl32.Vec3{-0.4, -1, -0.3}},
		&core.PointLight{Color: mgl32.Vec3{0.3, 0.5, 1}, Intensity: 4, Position: mgl32.Vec3{0, 3, 2},
			Attenuation: core.Attenuation{Constant: 1, Linear: 0.2, Quadratic: 0.05}},
	}
	items := []struct {
		name     string
		mesh     *core.Mesh
		position mgl32.Vec3
		albedo   mgl32.Vec4
	}{
		{"ground", core.NewPlaneMesh(10, 10), mgl32.Vec3{0, -1, 0}, mgl32.Vec4{0.6, 0.6, 0.6, 1}},
		{"red sphere", core.NewSphere(1), mgl32.Vec3{-2.5, 0, 0}, mgl32.Vec4{0.9, 0.2, 0.2, 1}},
		{"green sphere", core.NewSphere(0.6), mgl32.Vec3{0, -0.4, 1.5}, mgl32.Vec4{0.2, 0.8, 0.3, 1}},
		{"blue box", core.NewBoxMesh(mgl32.Vec3{0.8, 0.8, 0.8}), mgl32.Vec3{2.5, -0.2, -0.5}, mgl32.Vec4{0.2, 0.3, 0.9, 1}},
	}

	s := &scene{lights: lights}
	for _, it := range items {
		model, transform, err := newModel(it.name, it.mesh)
		if err != nil {
			return nil, err
		}
		transform.Position = it.position
		mat := core.NewPhysicalMaterial(it.albedo)
		mat.Name = it.name
		s.names = append(s.names, it.name)
		s.objects = append(s.objects, pipeline.ObjectMaterial{
			Object:   model,
			Material: &core.LitMaterial{Material: mat, Lights: lights},
		})
		s.geometries = append(s.geometries, model)
		s.plain = append(s.plain, model)
	}
	return s, nil
}

// pick names the object whose bounds contain hit. The ground is checked last.
func (s *scene) pick(hit mgl32.Vec3) string {
	const slack = 1e-2
	for i := len(s.geometries) - 1; i >= 0; i-- {
		box := s.geometries[i].AABB()
		if box == nil {
			continue
		}
		inside := true
		for k := 0; k < 3; k++ {
			if hit[k] < box.Min[k]-slack || hit[k] > box.Max[k]+slack {
				inside = false
			}
		}
		if inside {
			return s.names[i]
		}
	}
	return "unknown"
}
