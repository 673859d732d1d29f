package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/forward/render/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func parseArgs(t *testing.T, args ...string) (config, error) {
	t.Helper()
	var (
		cfg     config
		loadErr error
	)
	a := &cli.App{
		Name:  "pickview",
		Flags: flags,
		Action: func(ctx *cli.Context) error {
			cfg, loadErr = loadConfig(ctx)
			return nil
		},
	}
	require.NoError(t, a.Run(append([]string{"pickview"}, args...)))
	return cfg, loadErr
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pickview.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := parseArgs(t)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, pipeline.ProbeConfig{}, cfg.probe())
}

func TestLoadConfigFileThenFlags(t *testing.T) {
	path := writeConfig(t, `
width = 640
height = 480
title = "from file"
max_pick_distance = 25.0

[probe]
near_epsilon = 0.001
view_height = 0.05
`)
	cfg, err := parseArgs(t, "--config", path, "--width", "320", "--headless")
	require.NoError(t, err)

	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
	assert.Equal(t, "from file", cfg.Title)
	assert.True(t, cfg.Headless)
	assert.Equal(t, float32(25), cfg.MaxPickDistance)
	assert.Equal(t, pipeline.ProbeConfig{NearEpsilon: 0.001, ViewHeight: 0.05}, cfg.probe())
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		args []string
	}{
		{name: "unknown key", body: "colour = 1\n"},
		{name: "malformed", body: "width = \n"},
		{name: "bad size", body: "width = 0\n"},
		{name: "bad pick distance", body: "max_pick_distance = -1.0\n"},
		{name: "bad size flag", body: "", args: []string{"--height", "-4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", writeConfig(t, tt.body)}, tt.args...)
			_, err := parseArgs(t, args...)
			assert.Error(t, err)
		})
	}
}
