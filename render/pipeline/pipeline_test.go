package pipeline

import (
	"errors"
	"testing"

	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
	"github.com/gekko3d/forward/render/soft"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawRecord struct {
	name     string
	material core.Material
	states   core.RenderStates
}

type fakeObject struct {
	name string
	aabb *core.AABB
	err  error
	log  *[]drawRecord
}

func (o *fakeObject) AABB() *core.AABB { return o.aabb }

func (o *fakeObject) RenderForward(material core.Material, _ *core.Camera) error {
	*o.log = append(*o.log, drawRecord{name: o.name, material: material, states: material.RenderStates()})
	return o.err
}

func (o *fakeObject) RenderDepthToRed(states core.RenderStates, _ *core.Camera, _ float32) error {
	*o.log = append(*o.log, drawRecord{name: o.name, states: states})
	return o.err
}

func box(center mgl32.Vec3) *core.AABB {
	b := core.NewAABB(center.Sub(mgl32.Vec3{0.5, 0.5, 0.5}), center.Add(mgl32.Vec3{0.5, 0.5, 0.5}))
	return &b
}

func testCamera(t *testing.T, width, height uint32) *core.Camera {
	t.Helper()
	cam, err := core.NewPerspectiveCamera(core.NewViewportAtOrigin(width, height),
		mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0},
		mgl32.DegToRad(60), 0.1, 50)
	require.NoError(t, err)
	return cam
}

func names(log []drawRecord) []string {
	out := make([]string, len(log))
	for i, r := range log {
		out[i] = r.name
	}
	return out
}

func newPipeline(t *testing.T, ctx gfx.Context) *ForwardPipeline {
	t.Helper()
	p, err := NewForwardPipeline(ctx)
	require.NoError(t, err)
	return p
}

func TestNewForwardPipelineRequiresContext(t *testing.T) {
	_, err := NewForwardPipeline(nil)
	assert.ErrorIs(t, err, ErrNoContext)
}

func TestInFrustum(t *testing.T) {
	cam := testCamera(t, 8, 8)
	var log []drawRecord
	assert.True(t, InFrustum(cam, &fakeObject{log: &log}))
	assert.True(t, InFrustum(cam, &fakeObject{aabb: box(mgl32.Vec3{0, 0, 0}), log: &log}))
	assert.False(t, InFrustum(cam, &fakeObject{aabb: box(mgl32.Vec3{0, 0, 20}), log: &log}))
	assert.False(t, InFrustum(cam, &fakeObject{aabb: box(mgl32.Vec3{100, 0, 0}), log: &log}))
}

func TestPassesDrawVisibleSubsetInOrder(t *testing.T) {
	cam := testCamera(t, 8, 8)
	var log []drawRecord
	objects := []*fakeObject{
		{name: "behind", aabb: box(mgl32.Vec3{0, 0, 20})},
		{name: "a", aabb: box(mgl32.Vec3{0, 0, 0})},
		{name: "unbounded"},
		{name: "far right", aabb: box(mgl32.Vec3{100, 0, 0})},
		{name: "b", aabb: box(mgl32.Vec3{1, 1, -2})},
	}
	pairs := make([]ObjectMaterial, len(objects))
	plain := make([]Object, len(objects))
	for i, o := range objects {
		o.log = &log
		pairs[i] = ObjectMaterial{Object: o, Material: core.NewColorMaterial(mgl32.Vec4{1, 1, 1, 1})}
		plain[i] = o
	}
	p := newPipeline(t, soft.NewContext(nil))

	require.NoError(t, p.RenderPass(cam, pairs))
	assert.Equal(t, []string{"a", "unbounded", "b"}, names(log))

	log = nil
	require.NoError(t, p.DepthPass(cam, plain))
	assert.Equal(t, []string{"a", "unbounded", "b"}, names(log))
}

func TestDepthPassWritesDepthOnly(t *testing.T) {
	cam := testCamera(t, 8, 8)
	var log []drawRecord
	p := newPipeline(t, soft.NewContext(nil))
	require.NoError(t, p.DepthPass(cam, []Object{&fakeObject{name: "a", log: &log}}))

	require.Len(t, log, 1)
	assert.Equal(t, core.WriteMaskDepth, log[0].states.WriteMask)
	assert.False(t, log[0].states.WriteMask.HasColor())
	assert.Equal(t, core.DepthTestLess, log[0].states.DepthTest)
}

func TestPassesFailFast(t *testing.T) {
	cam := testCamera(t, 8, 8)
	boom := errors.New("shader exploded")
	var log []drawRecord
	objects := []Object{
		&fakeObject{name: "a", log: &log},
		&fakeObject{name: "bad", err: boom, log: &log},
		&fakeObject{name: "c", log: &log},
	}
	p := newPipeline(t, soft.NewContext(nil))

	err := p.DepthPass(cam, objects)
	assert.Same(t, boom, err)
	assert.Equal(t, []string{"a", "bad"}, names(log))

	log = nil
	pairs := make([]ObjectMaterial, len(objects))
	for i, o := range objects {
		pairs[i] = ObjectMaterial{Object: o, Material: core.NewColorMaterial(mgl32.Vec4{})}
	}
	err = p.RenderPass(cam, pairs)
	assert.Same(t, boom, err)
	assert.Equal(t, []string{"a", "bad"}, names(log))
}

func TestLightPassCombinesLights(t *testing.T) {
	cam := testCamera(t, 8, 8)
	var log []drawRecord
	mat := core.DefaultPhysicalMaterial()
	objects := []PhysicalObject{{Object: &fakeObject{name: "a", log: &log}, Material: mat}}
	ambient := &core.AmbientLight{Color: mgl32.Vec3{1, 1, 1}, Intensity: 0.1}
	dir := &core.DirectionalLight{Direction: mgl32.Vec3{0, -1, 0}, Color: mgl32.Vec3{1, 1, 1}, Intensity: 1}
	point := &core.PointLight{Position: mgl32.Vec3{0, 2, 0}, Color: mgl32.Vec3{1, 0, 0}, Intensity: 1}

	p := newPipeline(t, soft.NewContext(nil))
	require.NoError(t, p.LightPass(cam, objects, ambient, []*core.DirectionalLight{dir}, nil, []*core.PointLight{point}))

	require.Len(t, log, 1)
	lit, ok := log[0].material.(*core.LitMaterial)
	require.True(t, ok)
	assert.Same(t, mat, lit.Material)
	assert.Equal(t, []core.Light{ambient, dir, point}, lit.Lights)
}

func TestDepthPassTexture(t *testing.T) {
	ctx := soft.NewContext(nil)
	cam := testCamera(t, 16, 12)
	sphere := soft.NewModel(ctx, "sphere", core.NewSphere(1))
	hidden := soft.NewModel(ctx, "hidden", core.NewSphere(1))
	hidden.Transform.Position = mgl32.Vec3{0, 0, 30}

	p := newPipeline(t, ctx)
	tex, err := p.DepthPassTexture(cam, []Object{sphere, hidden})
	require.NoError(t, err)
	defer tex.Release()

	assert.Equal(t, uint32(16), tex.Width())
	assert.Equal(t, uint32(12), tex.Height())
	assert.Equal(t, gfx.DepthFormat32F, tex.Format())

	values, err := tex.Read(core.NewViewportAtOrigin(16, 12))
	require.NoError(t, err)
	assert.Equal(t, float32(1), values[0], "corner is background")
	center := values[6*16+8]
	assert.Less(t, center, float32(1), "center is covered by the sphere")
	assert.Greater(t, center, float32(0))
}

func TestDepthPassTextureEmptyScene(t *testing.T) {
	ctx := soft.NewContext(nil)
	cam := testCamera(t, 4, 4)
	p := newPipeline(t, ctx)
	tex, err := p.DepthPassTexture(cam, nil)
	require.NoError(t, err)

	values, err := tex.Read(core.NewViewportAtOrigin(4, 4))
	require.NoError(t, err)
	for _, v := range values {
		assert.Equal(t, float32(1), v)
	}
}

func TestRenderPassIntoSoftTarget(t *testing.T) {
	ctx := soft.NewContext(nil)
	cam := testCamera(t, 8, 8)
	color, err := ctx.NewColorTexture(gfx.ColorTextureDescriptor{Width: 8, Height: 8})
	require.NoError(t, err)
	depth, err := ctx.NewDepthTexture(gfx.DepthTextureDescriptor{Width: 8, Height: 8})
	require.NoError(t, err)
	target, err := ctx.NewRenderTarget(color, depth)
	require.NoError(t, err)

	mat := core.NewPhysicalMaterial(mgl32.Vec4{0.5, 0.5, 0.5, 1})
	sphere := soft.NewModel(ctx, "sphere", core.NewSphere(1))
	ambient := &core.AmbientLight{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1}
	p := newPipeline(t, ctx)

	err = target.Write(core.ClearColorDepth(0, 0, 0, 1, 1), func() error {
		return p.LightPass(cam, []PhysicalObject{{Object: sphere, Material: mat}}, ambient, nil, nil, nil)
	})
	require.NoError(t, err)

	px, err := color.Read(core.Viewport{X: 4, Y: 4, Width: 1, Height: 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, px[0][0], 1e-4)
	assert.InDelta(t, 1, px[0][3], 1e-4)
}
