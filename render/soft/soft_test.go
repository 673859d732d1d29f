package soft

import (
	"errors"
	"math"
	"testing"

	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const size = 32

func newTarget(t *testing.T, ctx *Context) gfx.RenderTarget {
	t.Helper()
	color, err := ctx.NewColorTexture(gfx.ColorTextureDescriptor{Width: size, Height: size})
	require.NoError(t, err)
	depth, err := ctx.NewDepthTexture(gfx.DepthTextureDescriptor{Width: size, Height: size})
	require.NoError(t, err)
	target, err := ctx.NewRenderTarget(color, depth)
	require.NoError(t, err)
	return target
}

func newCamera(t *testing.T) *core.Camera {
	t.Helper()
	cam, err := core.NewPerspectiveCamera(core.NewViewportAtOrigin(size, size),
		mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0},
		mgl32.DegToRad(60), 0.1, 100)
	require.NoError(t, err)
	return cam
}

func centerPixel(t *testing.T, target gfx.RenderTarget) (mgl32.Vec4, float32) {
	t.Helper()
	vp := core.Viewport{X: size / 2, Y: size / 2, Width: 1, Height: 1}
	color, err := target.Color().Read(vp)
	require.NoError(t, err)
	depth, err := target.Depth().Read(vp)
	require.NoError(t, err)
	return color[0], depth[0]
}

func TestDrawBoxWritesColorAndDepth(t *testing.T) {
	ctx := NewContext(nil)
	target := newTarget(t, ctx)
	cam := newCamera(t)
	box := NewModel(ctx, "box", core.NewBoxMesh(mgl32.Vec3{1, 1, 1}))

	err := target.Write(core.ClearColorDepth(0, 0, 0, 1, 1), func() error {
		return box.RenderForward(core.NewColorMaterial(mgl32.Vec4{0, 1, 0, 1}), cam)
	})
	require.NoError(t, err)

	color, depth := centerPixel(t, target)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, color)
	assert.Less(t, depth, float32(1))

	corner, err := target.Color().Read(core.Viewport{Width: 1, Height: 1})
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, corner[0])
	assert.Positive(t, ctx.Stats().Fragments)
}

func TestDepthToRedMeasuresDistance(t *testing.T) {
	tests := []struct {
		name string
		cull core.Cull
		want float32
	}{
		{"front face", core.CullNone, 0.4},
		{"back face when front culled", core.CullFront, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext(nil)
			target := newTarget(t, ctx)
			cam := newCamera(t)
			box := NewModel(ctx, "box", core.NewBoxMesh(mgl32.Vec3{1, 1, 1}))
			states := core.RenderStates{
				WriteMask: core.WriteMask{Red: true, Depth: true},
				DepthTest: core.DepthTestLess,
				Cull:      tt.cull,
			}
			err := target.Write(core.ClearColorDepth(1, 0, 0, 0, 1), func() error {
				return box.RenderDepthToRed(states, cam, 10)
			})
			require.NoError(t, err)

			color, _ := centerPixel(t, target)
			assert.InDelta(t, tt.want, color[0], 0.01)
			assert.Zero(t, color[1])
		})
	}
}

func TestDepthOnlyMaskLeavesColor(t *testing.T) {
	ctx := NewContext(nil)
	target := newTarget(t, ctx)
	cam := newCamera(t)
	box := NewModel(ctx, "box", core.NewBoxMesh(mgl32.Vec3{1, 1, 1}))
	mat := core.NewColorMaterial(mgl32.Vec4{1, 1, 1, 1})
	mat.States.WriteMask = core.WriteMaskDepth

	err := target.Write(core.ClearColorDepth(0.2, 0.2, 0.2, 1, 1), func() error {
		return box.RenderForward(mat, cam)
	})
	require.NoError(t, err)

	color, depth := centerPixel(t, target)
	assert.Equal(t, mgl32.Vec4{0.2, 0.2, 0.2, 1}, color)
	assert.Less(t, depth, float32(1))
}

func TestSharedEdgesLeaveNoGaps(t *testing.T) {
	ctx := NewContext(nil)
	target := newTarget(t, ctx)
	cam := newCamera(t)
	// Fan of triangles around the view axis, large enough to cover the target.
	mesh := &core.Mesh{Positions: []mgl32.Vec3{{0.013, -0.027, 0}}}
	const spokes = 7
	for i := 0; i < spokes; i++ {
		a := float32(i) * 2 * mgl32.DegToRad(180) / spokes
		mesh.Positions = append(mesh.Positions, mgl32.Vec3{10 * cos(a), 10 * sin(a), 0})
	}
	for i := uint32(1); i <= spokes; i++ {
		next := i%spokes + 1
		mesh.Indices = append(mesh.Indices, 0, i, next)
	}
	model := NewModel(ctx, "fan", mesh)

	require.NoError(t, target.Write(core.ClearColorDepth(0, 0, 0, 0, 1), func() error {
		return model.RenderForward(core.NewColorMaterial(mgl32.Vec4{1, 1, 1, 1}), cam)
	}))

	pixels, err := target.Color().Read(core.NewViewportAtOrigin(size, size))
	require.NoError(t, err)
	for i, p := range pixels {
		require.Equal(t, float32(1), p[0], "pixel %d not covered", i)
	}
}

func TestBindingRules(t *testing.T) {
	ctx := NewContext(nil)
	target := newTarget(t, ctx)
	cam := newCamera(t)
	box := NewModel(ctx, "box", core.NewBoxMesh(mgl32.Vec3{1, 1, 1}))
	mat := core.NewColorMaterial(mgl32.Vec4{1, 0, 0, 1})

	err := box.RenderForward(mat, cam)
	assert.ErrorIs(t, err, gfx.ErrNoRenderTarget)
	assert.Equal(t, gfx.StageDraw, gfx.StageOf(err))

	err = target.Write(core.ClearNone(), func() error {
		return target.Depth().Write(nil, nil)
	})
	assert.ErrorIs(t, err, gfx.ErrTargetBusy)

	boom := errors.New("boom")
	err = target.Write(core.ClearNone(), func() error { return boom })
	assert.ErrorIs(t, err, boom)
	// The binding is gone after a failed draw.
	assert.NoError(t, target.Write(core.ClearNone(), func() error { return box.RenderForward(mat, cam) }))
}

func TestRenderTargetValidation(t *testing.T) {
	ctx := NewContext(nil)
	other := NewContext(nil)
	color, err := ctx.NewColorTexture(gfx.ColorTextureDescriptor{Width: 4, Height: 4})
	require.NoError(t, err)
	small, err := ctx.NewDepthTexture(gfx.DepthTextureDescriptor{Width: 2, Height: 2})
	require.NoError(t, err)
	foreign, err := other.NewDepthTexture(gfx.DepthTextureDescriptor{Width: 4, Height: 4})
	require.NoError(t, err)

	_, err = ctx.NewRenderTarget(color, small)
	assert.ErrorIs(t, err, gfx.ErrSizeMismatch)
	_, err = ctx.NewRenderTarget(color, foreign)
	assert.ErrorIs(t, err, gfx.ErrForeignResource)
	assert.Equal(t, gfx.StageAllocate, gfx.StageOf(err))

	_, err = ctx.NewColorTexture(gfx.ColorTextureDescriptor{Width: 0, Height: 4})
	assert.ErrorIs(t, err, gfx.ErrInvalidSize)
}

func TestReadAfterRelease(t *testing.T) {
	ctx := NewContext(nil)
	depth, err := ctx.NewDepthTexture(gfx.DepthTextureDescriptor{Width: 2, Height: 2})
	require.NoError(t, err)
	depth.Release()

	_, err = depth.Read(core.NewViewportAtOrigin(2, 2))
	assert.ErrorIs(t, err, gfx.ErrReleased)
	assert.Equal(t, gfx.StageReadback, gfx.StageOf(err))
	assert.ErrorIs(t, depth.Write(nil, nil), gfx.ErrReleased)
}

func TestReadOutsideTexture(t *testing.T) {
	ctx := NewContext(nil)
	color, err := ctx.NewColorTexture(gfx.ColorTextureDescriptor{Width: 2, Height: 2})
	require.NoError(t, err)
	_, err = color.Read(core.Viewport{X: 1, Y: 1, Width: 2, Height: 2})
	assert.ErrorIs(t, err, gfx.ErrInvalidSize)
}

func TestDepthFormatQuantizes(t *testing.T) {
	ctx := NewContext(nil)
	depth, err := ctx.NewDepthTexture(gfx.DepthTextureDescriptor{Width: 1, Height: 1, Format: gfx.DepthFormat16})
	require.NoError(t, err)
	clear := float32(0.3)
	require.NoError(t, depth.Write(&clear, nil))

	values, err := depth.Read(core.NewViewportAtOrigin(1, 1))
	require.NoError(t, err)
	assert.InDelta(t, 0.3, values[0], 1.0/65535)
	assert.NotEqual(t, clear, values[0])
}

func cos(a float32) float32 { return float32(math.Cos(float64(a))) }
func sin(a float32) float32 { return float32(math.Sin(float64(a))) }

func TestResourceIDsAreUnique(t *testing.T) {
	ctx := NewContext(nil)
	a, b := newTarget(t, ctx), newTarget(t, ctx)

	ids := map[string]bool{}
	for _, id := range []string{a.ID(), b.ID(), a.Color().ID(), a.Depth().ID(), b.Color().ID(), b.Depth().ID()} {
		require.NotEmpty(t, id)
		assert.False(t, ids[id], "duplicate id %s", id)
		ids[id] = true
	}
}
