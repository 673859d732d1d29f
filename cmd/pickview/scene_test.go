package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/logging"
	"github.com/gekko3d/forward/render/pipeline"
	"github.com/gekko3d/forward/render/soft"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func softScene(t *testing.T) (*soft.Context, *scene) {
	t.Helper()
	ctx := soft.NewContext(nil)
	s, err := buildScene(func(name string, mesh *core.Mesh) (pipeline.Object, *core.Transform, error) {
		m := soft.NewModel(ctx, name, mesh)
		return m, m.Transform, nil
	})
	require.NoError(t, err)
	return ctx, s
}

func TestPickNamesObject(t *testing.T) {
	ctx, s := softScene(t)
	p, err := pipeline.NewForwardPipeline(ctx)
	require.NoError(t, err)

	tests := []struct {
		origin mgl32.Vec3
		want   string
	}{
		{mgl32.Vec3{-2.5, 5, 0}, "red sphere"},
		{mgl32.Vec3{2.5, 5, -0.5}, "blue box"},
		{mgl32.Vec3{0, 5, -6}, "ground"},
	}
	for _, tt := range tests {
		hit, ok, err := p.RayIntersect(tt.origin, mgl32.Vec3{0, -1, 0}, defaultConfig().MaxPickDistance, s.geometries)
		require.NoError(t, err)
		require.True(t, ok, tt.want)
		assert.Equal(t, tt.want, s.pick(hit))
	}
}

func TestRunHeadlessWritesDepth(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := logging.NewWriterLogger("pickview", false, &stdout, &stderr)
	dir := t.TempDir()

	cfg := defaultConfig()
	cfg.Width, cfg.Height, cfg.Out = 64, 48, dir
	require.NoError(t, runHeadless(logger, cfg))
	assert.FileExists(t, filepath.Join(dir, "depth.tiff"))
	raw, err := os.ReadFile(filepath.Join(dir, "depth_64x48.f32"))
	require.NoError(t, err)
	assert.Len(t, raw, 64*48*4)
	assert.Contains(t, stdout.String(), "pick:")
	assert.Empty(t, stderr.String())
}
