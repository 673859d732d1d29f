package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/forward/render/capture"
	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
	"github.com/gekko3d/forward/render/gpu"
	"github.com/gekko3d/forward/render/logging"
	"github.com/gekko3d/forward/render/pipeline"
	"github.com/gekko3d/forward/render/soft"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli/v2"
)

func init() {
	runtime.LockOSThread()
}

var (
	cameraPosition = mgl32.Vec3{0, 3, 8}
	cameraTarget   = mgl32.Vec3{0, 0, 0}
	cameraUp       = mgl32.Vec3{0, 1, 0}
)

var app = &cli.App{
	Name:   "pickview",
	Usage:  "render a small scene and pick objects by ray query against the depth pass",
	Flags:  flags,
	Action: run,
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	logger := logging.NewDefaultLogger("pickview", cfg.Debug)
	if cfg.Headless {
		return runHeadless(logger, cfg)
	}
	return runWindow(logger, cfg)
}

func newCamera(width, height uint32) (*core.Camera, error) {
	return core.NewPerspectiveCamera(core.NewViewportAtOrigin(width, height),
		cameraPosition, cameraTarget, cameraUp, mgl32.DegToRad(60), 0.1, 200)
}

func newPipeline(ctx gfx.Context, logger logging.Logger, cfg config) (*pipeline.ForwardPipeline, error) {
	return pipeline.NewForwardPipeline(ctx, pipeline.WithLogger(logger), pipeline.WithProbeConfig(cfg.probe()))
}

func runHeadless(logger logging.Logger, cfg config) error {
	width, height := uint32(cfg.Width), uint32(cfg.Height)
	ctx := soft.NewContext(logger)
	s, err := buildScene(func(name string, mesh *core.Mesh) (pipeline.Object, *core.Transform, error) {
		m := soft.NewModel(ctx, name, mesh)
		return m, m.Transform, nil
	})
	if err != nil {
		return err
	}
	cam, err := newCamera(width, height)
	if err != nil {
		return err
	}
	p, err := newPipeline(ctx, logger, cfg)
	if err != nil {
		return err
	}

	origin, dir := cam.PixelRay(float32(width)/2, float32(height)/2, height)
	pick(logger, p, s, origin, dir, cfg.MaxPickDistance)
	return dumpDepth(logger, p, cam, s, cfg.Out)
}

func runWindow(logger logging.Logger, cfg config) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return err
	}
	defer window.Destroy()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))
	defer surface.Release()

	ctx, err := gpu.NewContext(gpu.Config{Label: cfg.Title, Instance: instance, Surface: surface, Logger: logger})
	if err != nil {
		return err
	}
	defer ctx.Release()

	fbw, fbh := window.GetFramebufferSize()
	screen, err := gpu.NewScreenTarget(ctx, surface, uint32(fbw), uint32(fbh))
	if err != nil {
		return err
	}
	defer screen.Release()

	var meshes []*gpu.Mesh
	defer func() {
		for _, m := range meshes {
			m.Release()
		}
	}()
	s, err := buildScene(func(name string, mesh *core.Mesh) (pipeline.Object, *core.Transform, error) {
		gm, err := ctx.UploadMesh(name, mesh)
		if err != nil {
			return nil, nil, err
		}
		meshes = append(meshes, gm)
		m := gpu.NewModel(ctx, name, gm)
		return m, m.Transform, nil
	})
	if err != nil {
		return err
	}

	cam, err := newCamera(uint32(fbw), uint32(fbh))
	if err != nil {
		return err
	}
	p, err := newPipeline(ctx, logger, cfg)
	if err != nil {
		return err
	}

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		if width == 0 || height == 0 {
			return
		}
		if err := screen.Resize(uint32(width), uint32(height)); err != nil {
			logger.Errorf("resize: %v", err)
			return
		}
		if err := cam.SetViewport(core.NewViewportAtOrigin(uint32(width), uint32(height))); err != nil {
			logger.Errorf("resize: %v", err)
		}
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft || action != glfw.Press {
			return
		}
		// Cursor positions are in window coordinates, the viewport in framebuffer pixels.
		x, y := w.GetCursorPos()
		ww, wh := w.GetSize()
		fw, fh := w.GetFramebufferSize()
		sx, sy := float64(fw)/float64(ww), float64(fh)/float64(wh)
		origin, dir := cam.PixelRay(float32(x*sx), float32(y*sy), uint32(fh))
		pick(logger, p, s, origin, dir, cfg.MaxPickDistance)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyD:
			if err := dumpDepth(logger, p, cam, s, cfg.Out); err != nil {
				logger.Errorf("depth dump: %v", err)
			}
		}
	})

	logger.Infof("click to pick, D dumps depth, Esc quits")
	for !window.ShouldClose() {
		glfw.PollEvents()
		err := screen.Write(core.ClearColorDepth(0.05, 0.05, 0.08, 1, 1), func() error {
			return p.RenderPass(cam, s.objects)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func pick(logger logging.Logger, p *pipeline.ForwardPipeline, s *scene, origin, dir mgl32.Vec3, maxDistance float32) {
	hit, ok, err := p.RayIntersect(origin, dir, maxDistance, s.geometries)
	switch {
	case err != nil:
		logger.Errorf("pick failed at %s stage: %v", gfx.StageOf(err), err)
	case !ok:
		logger.Infof("pick: nothing under the cursor")
	default:
		logger.Infof("pick: %s at (%.3f, %.3f, %.3f), distance %.3f",
			s.pick(hit), hit.X(), hit.Y(), hit.Z(), hit.Sub(origin).Len())
	}
}

func dumpDepth(logger logging.Logger, p *pipeline.ForwardPipeline, cam *core.Camera, s *scene, dir string) error {
	tex, err := p.DepthPassTexture(cam, s.plain)
	if err != nil {
		return err
	}
	defer tex.Release()
	tiffPath, rawPath, err := capture.SaveDepth(tex, dir, "depth")
	if err != nil {
		return err
	}
	logger.Infof("depth written to %s and %s", tiffPath, rawPath)
	return nil
}
