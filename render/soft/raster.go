package soft

import (
	"math"

	"github.com/gekko3d/forward/render/core"
	"github.com/go-gl/mathgl/mgl32"
)

type vertex struct {
	clip   mgl32.Vec4
	world  mgl32.Vec3
	normal mgl32.Vec3
}

func lerpVertex(a, b vertex, t float32) vertex {
	return vertex{
		clip:   a.clip.Add(b.clip.Sub(a.clip).Mul(t)),
		world:  a.world.Add(b.world.Sub(a.world).Mul(t)),
		normal: a.normal.Add(b.normal.Sub(a.normal).Mul(t)),
	}
}

// screenVertex is a vertex after the perspective divide, in target pixels.
type screenVertex struct {
	x, y float64
	z    float32
	invW float32
	v    vertex
}

func (a screenVertex) less(b screenVertex) bool {
	if a.x != b.x {
		return a.x < b.x
	}
	return a.y < b.y
}

func orient(a, b screenVertex, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// edge evaluates the edge a->b with its endpoints in a fixed order, so two
// triangles sharing the edge get exactly opposite values and no pixel on it
// is dropped or drawn twice by accident.
func edge(a, b screenVertex, px, py float64) float64 {
	if b.less(a) {
		return -orient(b, a, px, py)
	}
	return orient(a, b, px, py)
}

func (c *Context) rasterize(call DrawCall, target *binding) {
	mesh := call.Mesh
	viewProj := call.Camera.ViewProjection()
	verts := make([]vertex, len(mesh.Positions))
	for i, p := range mesh.Positions {
		w := call.Model.Mul4x1(p.Vec4(1)).Vec3()
		var n mgl32.Vec3
		if i < len(mesh.Normals) {
			n = call.NormalMatrix.Mul3x1(mesh.Normals[i])
		}
		verts[i] = vertex{clip: viewProj.Mul4x1(w.Vec4(1)), world: w, normal: n}
	}

	for t := 0; t+2 < len(mesh.Indices); t += 3 {
		i0, i1, i2 := mesh.Indices[t], mesh.Indices[t+1], mesh.Indices[t+2]
		if int(i0) >= len(verts) || int(i1) >= len(verts) || int(i2) >= len(verts) {
			continue
		}
		c.stats.Triangles++
		poly := clipPolygon([]vertex{verts[i0], verts[i1], verts[i2]})
		for k := 1; k+1 < len(poly); k++ {
			c.drawTriangle(call, target, poly[0], poly[k], poly[k+1])
		}
	}
}

// clipPolygon clips against the near (z >= -w) and far (z <= w) planes.
func clipPolygon(poly []vertex) []vertex {
	near := func(v vertex) float32 { return v.clip.Z() + v.clip.W() }
	far := func(v vertex) float32 { return v.clip.W() - v.clip.Z() }
	poly = clipAgainst(poly, near)
	if len(poly) < 3 {
		return nil
	}
	return clipAgainst(poly, far)
}

func clipAgainst(poly []vertex, dist func(vertex) float32) []vertex {
	out := make([]vertex, 0, len(poly)+2)
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		da, db := dist(a), dist(b)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, lerpVertex(a, b, da/(da-db)))
		}
	}
	return out
}

func (c *Context) toScreen(cam *core.Camera, v vertex) screenVertex {
	vp := cam.Viewport()
	invW := 1 / v.clip.W()
	ndc := v.clip.Vec3().Mul(invW)
	return screenVertex{
		x:    float64(vp.X) + (float64(ndc.X())+1)*0.5*float64(vp.Width),
		y:    float64(vp.Y) + (float64(ndc.Y())+1)*0.5*float64(vp.Height),
		z:    0.5*ndc.Z() + 0.5,
		invW: invW,
		v:    v,
	}
}

func (c *Context) drawTriangle(call DrawCall, target *binding, v0, v1, v2 vertex) {
	cam := call.Camera
	s0, s1, s2 := c.toScreen(cam, v0), c.toScreen(cam, v1), c.toScreen(cam, v2)
	area := orient(s0, s1, s2.x, s2.y)
	if area == 0 || math.IsNaN(area) {
		return
	}
	states := call.Material.RenderStates()
	front := area > 0
	if (states.Cull == core.CullBack && !front) || (states.Cull == core.CullFront && front) {
		return
	}

	var width, height int
	if target.color != nil {
		width, height = int(target.color.Width()), int(target.color.Height())
	} else {
		width, height = int(target.depth.Width()), int(target.depth.Height())
	}
	vp := cam.Viewport()
	minX := max(int(math.Floor(min(s0.x, s1.x, s2.x))), vp.X, 0)
	maxX := min(int(math.Ceil(max(s0.x, s1.x, s2.x))), vp.X+int(vp.Width)-1, width-1)
	minY := max(int(math.Floor(min(s0.y, s1.y, s2.y))), vp.Y, 0)
	maxY := min(int(math.Ceil(max(s0.y, s1.y, s2.y))), vp.Y+int(vp.Height)-1, height-1)

	mask := states.WriteMask
	writeColor := target.color != nil && mask.HasColor()
	writeDepth := target.depth != nil && mask.Depth

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(s1, s2, px, py)
			w1 := edge(s2, s0, px, py)
			w2 := edge(s0, s1, px, py)
			if !front {
				w0, w1, w2 = -w0, -w1, -w2
			}
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			b0 := float32(w0 / math.Abs(area))
			b1 := float32(w1 / math.Abs(area))
			b2 := 1 - b0 - b1
			z := b0*s0.z + b1*s1.z + b2*s2.z
			if z < 0 || z > 1 {
				continue
			}
			idx := y*width + x
			if target.depth != nil && !states.DepthTest.Passes(z, target.depth.values[idx]) {
				continue
			}
			c.stats.Fragments++
			if writeColor {
				frag := interpolate(s0, s1, s2, b0, b1, b2)
				frag.CameraPosition = cam.Position()
				target.color.store(idx, call.Material.Shade(frag), mask)
			}
			if writeDepth {
				target.depth.store(idx, z)
			}
		}
	}
}

// interpolate returns perspective correct world position and normal.
func interpolate(s0, s1, s2 screenVertex, b0, b1, b2 float32) core.Fragment {
	p0, p1, p2 := b0*s0.invW, b1*s1.invW, b2*s2.invW
	sum := p0 + p1 + p2
	p0, p1, p2 = p0/sum, p1/sum, p2/sum
	pos := s0.v.world.Mul(p0).Add(s1.v.world.Mul(p1)).Add(s2.v.world.Mul(p2))
	n := s0.v.normal.Mul(p0).Add(s1.v.normal.Mul(p1)).Add(s2.v.normal.Mul(p2))
	if n.Len() > 0 {
		n = n.Normalize()
	}
	return core.Fragment{Position: pos, Normal: n}
}
