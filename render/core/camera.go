package core

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidViewport = errors.New("camera: viewport dimensions must be positive")
	ErrInvalidClip     = errors.New("camera: invalid clip planes")
	ErrDegenerateView  = errors.New("camera: degenerate view orientation")
)

// Viewport is a pixel rectangle inside a render target.
type Viewport struct {
	X      int
	Y      int
	Width  uint32
	Height uint32
}

func NewViewportAtOrigin(width, height uint32) Viewport {
	return Viewport{Width: width, Height: height}
}

func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

func (v Viewport) AspectRatio() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

type ProjectionType uint8

const (
	ProjectionPerspective ProjectionType = iota
	ProjectionOrthographic
)

func (p ProjectionType) String() string {
	if p == ProjectionOrthographic {
		return "orthographic"
	}
	return "perspective"
}

// Camera is a view into the scene. View, projection and frustum planes are
// derived on every change so readers never see stale planes.
type Camera struct {
	viewport   Viewport
	projection ProjectionType

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32 // radians, perspective only
	height float32 // view height in world units, orthographic only
	near   float32
	far    float32

	view     mgl32.Mat4
	proj     mgl32.Mat4
	viewProj mgl32.Mat4
	planes   Frustum
}

// NewPerspectiveCamera builds a perspective camera. fov is the vertical field of view in radians.
func NewPerspectiveCamera(viewport Viewport, position, target, up mgl32.Vec3, fov, near, far float32) (*Camera, error) {
	if near <= 0 || far <= near {
		return nil, fmt.Errorf("%w: near=%f far=%f", ErrInvalidClip, near, far)
	}
	if fov <= 0 {
		return nil, fmt.Errorf("%w: fov=%f", ErrInvalidClip, fov)
	}
	c := &Camera{
		projection: ProjectionPerspective,
		fov:        fov,
		near:       near,
		far:        far,
	}
	if err := c.init(viewport, position, target, up); err != nil {
		return nil, err
	}
	return c, nil
}

// NewOrthographicCamera builds an orthographic camera with the given view height
// in world units. The width follows from the viewport aspect ratio.
func NewOrthographicCamera(viewport Viewport, position, target, up mgl32.Vec3, height, near, far float32) (*Camera, error) {
	if far <= near || near < 0 {
		return nil, fmt.Errorf("%w: near=%f far=%f", ErrInvalidClip, near, far)
	}
	if height <= 0 {
		return nil, fmt.Errorf("%w: height=%f", ErrInvalidClip, height)
	}
	c := &Camera{
		projection: ProjectionOrthographic,
		height:     height,
		near:       near,
		far:        far,
	}
	if err := c.init(viewport, position, target, up); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Camera) init(viewport Viewport, position, target, up mgl32.Vec3) error {
	if !viewport.Valid() {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, viewport.Width, viewport.Height)
	}
	if err := validateView(position, target, up); err != nil {
		return err
	}
	c.viewport = viewport
	c.position, c.target, c.up = position, target, up
	c.update()
	return nil
}

func validateView(position, target, up mgl32.Vec3) error {
	dir := target.Sub(position)
	if dir.Len() == 0 {
		return fmt.Errorf("%w: position equals target", ErrDegenerateView)
	}
	if dir.Cross(up).Len() < 1e-6*dir.Len()*up.Len() || up.Len() == 0 {
		return fmt.Errorf("%w: up is parallel to the view direction", ErrDegenerateView)
	}
	return nil
}

func (c *Camera) update() {
	c.view = mgl32.LookAtV(c.position, c.target, c.up)
	aspect := c.viewport.AspectRatio()
	switch c.projection {
	case ProjectionOrthographic:
		halfH := c.height / 2
		halfW := halfH * aspect
		c.proj = mgl32.Ortho(-halfW, halfW, -halfH, halfH, c.near, c.far)
	default:
		c.proj = mgl32.Perspective(c.fov, aspect, c.near, c.far)
	}
	c.viewProj = c.proj.Mul4(c.view)
	c.planes = NewFrustum(c.viewProj)
}

func (c *Camera) Viewport() Viewport           { return c.viewport }
func (c *Camera) Projection() ProjectionType   { return c.projection }
func (c *Camera) Position() mgl32.Vec3         { return c.position }
func (c *Camera) Target() mgl32.Vec3           { return c.target }
func (c *Camera) Up() mgl32.Vec3               { return c.up }
func (c *Camera) Near() float32                { return c.near }
func (c *Camera) Far() float32                 { return c.far }
func (c *Camera) View() mgl32.Mat4             { return c.view }
func (c *Camera) ProjectionMatrix() mgl32.Mat4 { return c.proj }
func (c *Camera) ViewProjection() mgl32.Mat4   { return c.viewProj }
func (c *Camera) Frustum() Frustum             { return c.planes }
func (c *Camera) ViewDirection() mgl32.Vec3    { return c.target.Sub(c.position).Normalize() }
func (c *Camera) InFrustum(aabb AABB) bool     { return c.planes.Intersects(aabb) }

// SetViewport resizes the camera, keeping the view.
func (c *Camera) SetViewport(viewport Viewport) error {
	if !viewport.Valid() {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, viewport.Width, viewport.Height)
	}
	c.viewport = viewport
	c.update()
	return nil
}

// SetView moves the camera.
func (c *Camera) SetView(position, target, up mgl32.Vec3) error {
	if err := validateView(position, target, up); err != nil {
		return err
	}
	c.position, c.target, c.up = position, target, up
	c.update()
	return nil
}

// PixelRay returns the world space ray through the pixel (x, y), measured
// from the top-left corner of the window the viewport lives in.
// Perspective rays start at the camera position, orthographic rays on the near plane.
func (c *Camera) PixelRay(x, y float32, windowHeight uint32) (origin, direction mgl32.Vec3) {
	// Window y grows down, viewport y grows up from the bottom edge.
	fy := float32(windowHeight) - y
	ndcX := 2*(x-float32(c.viewport.X))/float32(c.viewport.Width) - 1
	ndcY := 2*(fy-float32(c.viewport.Y))/float32(c.viewport.Height) - 1

	inv := c.viewProj.Inv()
	unproject := func(z float32) mgl32.Vec3 {
		p := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, z, 1})
		return p.Vec3().Mul(1 / p.W())
	}
	nearPoint := unproject(-1)
	farPoint := unproject(1)

	if c.projection == ProjectionOrthographic {
		return nearPoint, c.ViewDirection()
	}
	return c.position, farPoint.Sub(c.position).Normalize()
}
