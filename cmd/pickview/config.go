package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/gekko3d/forward/render/pipeline"
	"github.com/urfave/cli/v2"
)

type probeConfig struct {
	NearEpsilon float32 `toml:"near_epsilon"`
	UpThreshold float32 `toml:"up_threshold"`
	ViewHeight  float32 `toml:"view_height"`
}

type config struct {
	Width           int         `toml:"width"`
	Height          int         `toml:"height"`
	Title           string      `toml:"title"`
	Out             string      `toml:"out"`
	Debug           bool        `toml:"debug"`
	Headless        bool        `toml:"headless"`
	MaxPickDistance float32     `toml:"max_pick_distance"`
	Probe           probeConfig `toml:"probe"`
}

func defaultConfig() config {
	return config{
		Width:           1280,
		Height:          720,
		Title:           "pickview",
		Out:             ".",
		MaxPickDistance: 100,
	}
}

func (c config) probe() pipeline.ProbeConfig {
	return pipeline.ProbeConfig{
		NearEpsilon: c.Probe.NearEpsilon,
		UpThreshold: c.Probe.UpThreshold,
		ViewHeight:  c.Probe.ViewHeight,
	}
}

func (c config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	}
	if !(c.MaxPickDistance > 0) {
		return fmt.Errorf("invalid max pick distance %v", c.MaxPickDistance)
	}
	return nil
}

// loadConfig starts from the defaults, applies the TOML file if one is named
// and then any flag set on the command line.
func loadConfig(ctx *cli.Context) (config, error) {
	cfg := defaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("config %s: unknown keys %v", path, undecoded)
		}
	}
	if ctx.IsSet(widthFlag.Name) {
		cfg.Width = ctx.Int(widthFlag.Name)
	}
	if ctx.IsSet(heightFlag.Name) {
		cfg.Height = ctx.Int(heightFlag.Name)
	}
	if ctx.IsSet(titleFlag.Name) {
		cfg.Title = ctx.String(titleFlag.Name)
	}
	if ctx.IsSet(outFlag.Name) {
		cfg.Out = ctx.String(outFlag.Name)
	}
	if ctx.IsSet(debugFlag.Name) {
		cfg.Debug = ctx.Bool(debugFlag.Name)
	}
	if ctx.IsSet(headlessFlag.Name) {
		cfg.Headless = ctx.Bool(headlessFlag.Name)
	}
	return cfg, cfg.validate()
}

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "TOML file with window, output and probe settings",
		EnvVars: []string{"PICKVIEW_CONFIG"},
	}
	widthFlag = &cli.IntFlag{
		Name:  "width",
		Usage: "Window width",
		Value: 1280,
	}
	heightFlag = &cli.IntFlag{
		Name:  "height",
		Usage: "Window height",
		Value: 720,
	}
	titleFlag = &cli.StringFlag{
		Name:  "title",
		Usage: "Window title",
		Value: "pickview",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
	headlessFlag = &cli.BoolFlag{
		Name:  "headless",
		Usage: "Render once on the CPU, pick the center pixel and dump depth",
	}
	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Directory for depth dumps",
		Value: ".",
	}
)

var flags = []cli.Flag{configFlag, widthFlag, heightFlag, titleFlag, debugFlag, headlessFlag, outFlag}
