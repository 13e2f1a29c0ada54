package renderer

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/math"
)

// MarchConfig controls the sphere-tracing loop
type MarchConfig struct {
	MaxSteps    int     // Step budget per ray
	MinDistance float32 // Estimates below this count as a surface hit
}

// DefaultMarchConfig returns the reference step budget and hit threshold
func DefaultMarchConfig() MarchConfig {
	return MarchConfig{
		MaxSteps:    69 * 2,
		MinDistance: 0.5,
	}
}

// MarchResult describes how a single ray terminated
type MarchResult struct {
	Distance float32 // Total distance traveled along the ray
	Steps    int     // Number of advances taken
	Hit      bool    // Whether the ray converged on a surface within the budget
}

// Marcher sphere-traces rays against a distance field
type Marcher struct {
	config MarchConfig
}

// NewMarcher creates a marcher with the given configuration
func NewMarcher(config MarchConfig) Marcher {
	return Marcher{config: config}
}

// Trace advances along the ray by the field's estimate until the estimate
// drops below MinDistance or MaxSteps evaluations have been made.
// Direction must be unit length. An escaped ray reports the distance it
// reached when the budget ran out.
func (m Marcher) Trace(ray math.Ray, field core.DistanceField) MarchResult {
	var total float32
	point := ray.Origin

	for step := 0; step < m.config.MaxSteps; step++ {
		d := field.Evaluate(point)
		if d < m.config.MinDistance {
			return MarchResult{Distance: total, Steps: step, Hit: true}
		}
		point = point.Add(ray.Direction.Multiply(d))
		total += d
	}

	return MarchResult{Distance: total, Steps: m.config.MaxSteps, Hit: false}
}

// March sphere-traces from origin along direction with the default
// configuration and returns the total distance traveled
func March(origin, direction math.Vec3, field core.DistanceField) float32 {
	return NewMarcher(DefaultMarchConfig()).Trace(math.NewRay(origin, direction), field).Distance
}
