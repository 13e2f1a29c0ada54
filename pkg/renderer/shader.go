package renderer

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
)

// InverseLerp maps x in [start, end] to [0, 1], clamping outside the range
func InverseLerp(start, end, x float32) float32 {
	if x < start {
		return 0
	}
	if x > end {
		return 1
	}
	return (x - start) / (end - start)
}

// Shader turns a march distance into a grayscale texel. Distances at or
// below Near are white, at or beyond Far black.
type Shader struct {
	Near float32
	Far  float32
}

// NewShader derives the shading range from the scene geometry: the nearest
// expected hit sits half a radius in front of the sphere, and escaped rays
// have traveled at least three radii.
func NewShader(centerZ, radius float32) Shader {
	return Shader{
		Near: centerZ - radius*1.5,
		Far:  radius * 3,
	}
}

// Shade returns the opaque gray texel for a total march distance
func (s Shader) Shade(distance float32) core.Texel {
	t := 1 - InverseLerp(s.Near, s.Far, distance)
	return core.Gray(uint8(255 * t))
}
