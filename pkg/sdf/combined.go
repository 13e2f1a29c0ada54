package sdf

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-sphere-tracer/pkg/math"
)

// CombinedSpheres is the union of two spheres of equal radius placed at
// Center+Offset and Center-Offset. With a zero offset it collapses to one sphere.
//
// The union is not clamped at zero and goes negative inside either sphere;
// the marcher treats any value below its threshold as a hit.
type CombinedSpheres struct {
	Center math.Vec3
	Radius float32
	Offset math.Vec3
}

// NewCombinedSpheres creates the field for one animation frame
func NewCombinedSpheres(center math.Vec3, radius float32, offset math.Vec3) CombinedSpheres {
	return CombinedSpheres{Center: center, Radius: radius, Offset: offset}
}

// Evaluate returns the smaller of the two unclamped sphere distances
func (c CombinedSpheres) Evaluate(p math.Vec3) float32 {
	rel := p.Subtract(c.Center)
	return math32.Min(
		rel.Subtract(c.Offset).Length()-c.Radius,
		rel.Add(c.Offset).Length()-c.Radius,
	)
}

