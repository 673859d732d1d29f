// Package gfx declares the graphics context the render pipeline drives:
// texture allocation, render target binding with scoped writes, and
// synchronous readback. Backends live in render/soft and render/gpu.
package gfx

import (
	"github.com/gekko3d/forward/render/core"
	"github.com/go-gl/mathgl/mgl32"
)

type Interpolation uint8

const (
	InterpolationNearest Interpolation = iota
	InterpolationLinear
)

type Wrapping uint8

const (
	WrappingClampToEdge Wrapping = iota
	WrappingRepeat
	WrappingMirroredRepeat
)

type ColorFormat uint8

const (
	ColorFormatRGBA32F ColorFormat = iota
	ColorFormatRGBA8
)

type DepthFormat uint8

const (
	DepthFormat32F DepthFormat = iota
	DepthFormat24
	DepthFormat16
)

func (f DepthFormat) String() string {
	switch f {
	case DepthFormat32F:
		return "depth32f"
	case DepthFormat24:
		return "depth24"
	case DepthFormat16:
		return "depth16"
	}
	return "unknown"
}

type ColorTextureDescriptor struct {
	Width     uint32
	Height    uint32
	MinFilter Interpolation
	MagFilter Interpolation
	WrapS     Wrapping
	WrapT     Wrapping
	Format    ColorFormat
	Label     string
}

type DepthTextureDescriptor struct {
	Width  uint32
	Height uint32
	WrapS  Wrapping
	WrapT  Wrapping
	Format DepthFormat
	Label  string
}

// Context allocates GPU resources. Handles are cheap to share; a context
// outlives every pipeline that uses it.
type Context interface {
	NewColorTexture(desc ColorTextureDescriptor) (ColorTexture, error)
	NewDepthTexture(desc DepthTextureDescriptor) (DepthTexture, error)
	NewRenderTarget(color ColorTexture, depth DepthTexture) (RenderTarget, error)
}

type Texture interface {
	ID() string
	Width() uint32
	Height() uint32
	Release()
}

type ColorTexture interface {
	Texture
	Format() ColorFormat
	// Read blocks until the pixels inside viewport are copied back, row by row
	// starting at the bottom.
	Read(viewport core.Viewport) ([]mgl32.Vec4, error)
}

type DepthTexture interface {
	Texture
	Format() DepthFormat
	// Write binds the texture as the only attachment, clears it when
	// clearDepth is non nil and runs draw. The binding is released on every
	// exit path.
	Write(clearDepth *float32, draw func() error) error
	Read(viewport core.Viewport) ([]float32, error)
}

// RenderTarget pairs a color and a depth attachment.
type RenderTarget interface {
	ID() string
	Color() ColorTexture
	Depth() DepthTexture
	Width() uint32
	Height() uint32
	// Write binds the target, applies clear and runs draw. The binding is
	// released on every exit path, including an error from draw.
	Write(clear core.ClearState, draw func() error) error
	Release()
}
