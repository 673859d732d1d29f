package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GpuLight is the GPU representation of a light.
type GpuLight struct {
	Position  [4]float32 // xyz, w unused
	Direction [4]float32 // xyz, w = cos of the spot cutoff
	Color     [4]float32 // rgb, intensity
	Params    [4]float32 // attenuation constant, linear, quadratic, type
}

type LightType uint32

const (
	LightTypeAmbient LightType = iota
	LightTypeDirectional
	LightTypeSpot
	LightTypePoint
)

// Light contributes radiance to lit materials.
type Light interface {
	Type() LightType
	// Shade returns the light reflected by a diffuse surface of the given albedo.
	Shade(f Fragment, albedo mgl32.Vec3) mgl32.Vec3
	Pack() GpuLight
}

type Attenuation struct {
	Constant  float32
	Linear    float32
	Quadratic float32
}

func (a Attenuation) factor(distance float32) float32 {
	d := a.Constant + a.Linear*distance + a.Quadratic*distance*distance
	if d <= 0 {
		return 1
	}
	return 1 / d
}

// NoAttenuation keeps intensity constant over distance.
var NoAttenuation = Attenuation{Constant: 1}

type AmbientLight struct {
	Color     mgl32.Vec3
	Intensity float32
}

func (l *AmbientLight) Type() LightType { return LightTypeAmbient }

func (l *AmbientLight) Shade(_ Fragment, albedo mgl32.Vec3) mgl32.Vec3 {
	return mulVec3(albedo, l.Color).Mul(l.Intensity)
}

func (l *AmbientLight) Pack() GpuLight {
	return GpuLight{
		Color:  [4]float32{l.Color.X(), l.Color.Y(), l.Color.Z(), l.Intensity},
		Params: [4]float32{1, 0, 0, float32(LightTypeAmbient)},
	}
}

type DirectionalLight struct {
	Color     mgl32.Vec3
	Intensity float32
	Direction mgl32.Vec3 // direction the light travels
}

func (l *DirectionalLight) Type() LightType { return LightTypeDirectional }

func (l *DirectionalLight) Shade(f Fragment, albedo mgl32.Vec3) mgl32.Vec3 {
	toLight := l.Direction.Mul(-1).Normalize()
	ndotl := max(0, f.Normal.Dot(toLight))
	return mulVec3(albedo, l.Color).Mul(l.Intensity * ndotl)
}

func (l *DirectionalLight) Pack() GpuLight {
	d := l.Direction.Normalize()
	return GpuLight{
		Direction: [4]float32{d.X(), d.Y(), d.Z(), 0},
		Color:     [4]float32{l.Color.X(), l.Color.Y(), l.Color.Z(), l.Intensity},
		Params:    [4]float32{1, 0, 0, float32(LightTypeDirectional)},
	}
}

type SpotLight struct {
	Color       mgl32.Vec3
	Intensity   float32
	Position    mgl32.Vec3
	Direction   mgl32.Vec3
	Cutoff      float32 // half angle in radians
	Attenuation Attenuation
}

func (l *SpotLight) Type() LightType { return LightTypeSpot }

func (l *SpotLight) Shade(f Fragment, albedo mgl32.Vec3) mgl32.Vec3 {
	toLight := l.Position.Sub(f.Position)
	dist := toLight.Len()
	if dist == 0 {
		return mgl32.Vec3{}
	}
	toLight = toLight.Mul(1 / dist)
	cosAngle := toLight.Mul(-1).Dot(l.Direction.Normalize())
	if cosAngle < float32(math.Cos(float64(l.Cutoff))) {
		return mgl32.Vec3{}
	}
	ndotl := max(0, f.Normal.Dot(toLight))
	return mulVec3(albedo, l.Color).Mul(l.Intensity * ndotl * l.Attenuation.factor(dist))
}

func (l *SpotLight) Pack() GpuLight {
	d := l.Direction.Normalize()
	a := l.Attenuation
	return GpuLight{
		Position:  [4]float32{l.Position.X(), l.Position.Y(), l.Position.Z(), 0},
		Direction: [4]float32{d.X(), d.Y(), d.Z(), float32(math.Cos(float64(l.Cutoff)))},
		Color:     [4]float32{l.Color.X(), l.Color.Y(), l.Color.Z(), l.Intensity},
		Params:    [4]float32{a.Constant, a.Linear, a.Quadratic, float32(LightTypeSpot)},
	}
}

type PointLight struct {
	Color       mgl32.Vec3
	Intensity   float32
	Position    mgl32.Vec3
	Attenuation Attenuation
}

func (l *PointLight) Type() LightType { return LightTypePoint }

func (l *PointLight) Shade(f Fragment, albedo mgl32.Vec3) mgl32.Vec3 {
	toLight := l.Position.Sub(f.Position)
	dist := toLight.Len()
	if dist == 0 {
		return mgl32.Vec3{}
	}
	ndotl := max(0, f.Normal.Dot(toLight.Mul(1/dist)))
	return mulVec3(albedo, l.Color).Mul(l.Intensity * ndotl * l.Attenuation.factor(dist))
}

func (l *PointLight) Pack() GpuLight {
	a := l.Attenuation
	return GpuLight{
		Position: [4]float32{l.Position.X(), l.Position.Y(), l.Position.Z(), 0},
		Color:    [4]float32{l.Color.X(), l.Color.Y(), l.Color.Z(), l.Intensity},
		Params:   [4]float32{a.Constant, a.Linear, a.Quadratic, float32(LightTypePoint)},
	}
}

func mulVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a.X() * b.X(), a.Y() * b.Y(), a.Z() * b.Z()}
}
