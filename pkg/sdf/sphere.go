package sdf

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-sphere-tracer/pkg/math"
)

// SolidSphere is a filled sphere. Points inside read as touching the surface.
type SolidSphere struct {
	Center math.Vec3
	Radius float32
}

// NewSolidSphere creates a solid sphere field
func NewSolidSphere(center math.Vec3, radius float32) SolidSphere {
	return SolidSphere{Center: center, Radius: radius}
}

// Evaluate returns the distance to the sphere, clamped at zero
func (s SolidSphere) Evaluate(p math.Vec3) float32 {
	return math32.Max(0, p.Subtract(s.Center).Length()-s.Radius)
}

// HollowSphere is an infinitely thin shell centered at the origin.
type HollowSphere struct {
	Radius float32
}

// NewHollowSphere creates a hollow shell field
func NewHollowSphere(radius float32) HollowSphere {
	return HollowSphere{Radius: radius}
}

// Evaluate returns the unsigned distance to the shell, so rays can find it
// from inside as well as from outside.
func (h HollowSphere) Evaluate(p math.Vec3) float32 {
	return math32.Abs(p.Length() - h.Radius)
}
