package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gekko3d/forward/render/core"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	MaxLights = 8

	// Uniforms block in forward.wgsl.
	uniformSize  = 768
	lightsOffset = 256
	lightStride  = 64
)

type program uint8

const (
	programColor program = iota
	programLit
	programDepth
)

func (p program) String() string {
	switch p {
	case programColor:
		return "color"
	case programLit:
		return "lit"
	case programDepth:
		return "depth"
	}
	return "unknown"
}

type drawUniforms struct {
	ViewProj  mgl32.Mat4
	Model     mgl32.Mat4
	Normal    mgl32.Mat4
	CameraPos mgl32.Vec4
	BaseColor mgl32.Vec4
	Emissive  mgl32.Vec4
	Params    mgl32.Vec4 // min distance, max distance, light count
	Lights    []core.GpuLight
}

// setMaterial fills the material part of the block and picks the program.
func (u *drawUniforms) setMaterial(m core.Material) (program, error) {
	switch mat := m.(type) {
	case *core.ColorMaterial:
		u.BaseColor = mat.Color
		return programColor, nil
	case *core.PhysicalMaterial:
		u.BaseColor = mat.Albedo
		u.Emissive = mat.Emissive.Vec4(0)
		return programColor, nil
	case *core.LitMaterial:
		if mat.Material == nil {
			return 0, fmt.Errorf("%w: lit material without physical material", ErrUnsupportedMaterial)
		}
		if len(mat.Lights) > MaxLights {
			return 0, fmt.Errorf("%w: %d lights, at most %d", ErrUnsupportedMaterial, len(mat.Lights), MaxLights)
		}
		u.BaseColor = mat.Material.Albedo
		u.Emissive = mat.Material.Emissive.Vec4(0)
		u.Lights = u.Lights[:0]
		for _, l := range mat.Lights {
			u.Lights = append(u.Lights, l.Pack())
		}
		u.Params[2] = float32(len(u.Lights))
		return programLit, nil
	case *core.DepthMaterial:
		u.Params[0] = mat.MinDistance
		u.Params[1] = mat.MaxDistance
		return programDepth, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrUnsupportedMaterial, m)
}

func (u *drawUniforms) bytes() []byte {
	buf := make([]byte, uniformSize)
	putFloats := func(offset int, values []float32) {
		for i, v := range values {
			binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v))
		}
	}
	putFloats(0, u.ViewProj[:])
	putFloats(64, u.Model[:])
	putFloats(128, u.Normal[:])
	putFloats(192, u.CameraPos[:])
	putFloats(208, u.BaseColor[:])
	putFloats(224, u.Emissive[:])
	putFloats(240, u.Params[:])
	for i, l := range u.Lights {
		base := lightsOffset + i*lightStride
		putFloats(base, l.Position[:])
		putFloats(base+16, l.Direction[:])
		putFloats(base+32, l.Color[:])
		putFloats(base+48, l.Params[:])
	}
	return buf
}
