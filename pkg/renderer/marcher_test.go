package renderer

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/df07/go-sphere-tracer/pkg/math"
	"github.com/df07/go-sphere-tracer/pkg/sdf"
)

func TestMarcher_HeadOnHit(t *testing.T) {
	field := sdf.NewSolidSphere(math.NewVec3(0, 0, 10), 2)
	marcher := NewMarcher(DefaultMarchConfig())

	result := marcher.Trace(math.NewRay(math.Vec3{}, math.NewVec3(0, 0, 1)), field)

	if !result.Hit {
		t.Fatal("Expected the ray to hit the sphere")
	}
	if result.Distance != 8 {
		t.Errorf("Expected distance 8, got %v", result.Distance)
	}
	if result.Steps != 1 {
		t.Errorf("Expected 1 step, got %d", result.Steps)
	}
}

func TestMarcher_MissExhaustsBudget(t *testing.T) {
	field := sdf.NewSolidSphere(math.NewVec3(0, 0, 10), 2)
	config := DefaultMarchConfig()
	marcher := NewMarcher(config)

	result := marcher.Trace(math.NewRay(math.Vec3{}, math.NewVec3(1, 0, 0)), field)

	if result.Hit {
		t.Fatal("Ray pointing away from the sphere should miss")
	}
	if result.Steps != config.MaxSteps {
		t.Errorf("Expected %d steps, got %d", config.MaxSteps, result.Steps)
	}
	if result.Distance <= 8*float32(config.MaxSteps) {
		t.Errorf("Escaped ray should have traveled more than %v, got %v", 8*config.MaxSteps, result.Distance)
	}
}

func TestMarcher_TerminatesWithinBudget(t *testing.T) {
	evaluations := 0
	field := sdf.FieldFunc(func(p math.Vec3) float32 {
		evaluations++
		return 1
	})

	result := NewMarcher(DefaultMarchConfig()).Trace(math.NewRay(math.Vec3{}, math.NewVec3(0, 0, 1)), field)

	if evaluations != 138 {
		t.Errorf("Expected exactly 138 evaluations, got %d", evaluations)
	}
	if result.Distance != 138 {
		t.Errorf("Expected distance 138, got %v", result.Distance)
	}
}

func TestMarcher_NegativeEstimateIsHit(t *testing.T) {
	field := sdf.FieldFunc(func(p math.Vec3) float32 { return -5 })

	result := NewMarcher(DefaultMarchConfig()).Trace(math.NewRay(math.Vec3{}, math.NewVec3(0, 0, 1)), field)

	if !result.Hit || result.Distance != 0 || result.Steps != 0 {
		t.Errorf("Expected immediate hit at distance 0, got %+v", result)
	}
}

func TestMarcher_ThresholdIsStrict(t *testing.T) {
	// exactly MinDistance is not yet a hit
	calls := 0
	field := sdf.FieldFunc(func(p math.Vec3) float32 {
		calls++
		if calls == 1 {
			return 0.5
		}
		return 0
	})

	result := NewMarcher(DefaultMarchConfig()).Trace(math.NewRay(math.Vec3{}, math.NewVec3(0, 0, 1)), field)

	if result.Distance != 0.5 || result.Steps != 1 {
		t.Errorf("Expected one 0.5 step before the hit, got %+v", result)
	}
}

func TestMarch_IsPure(t *testing.T) {
	field := sdf.NewCombinedSpheres(math.NewVec3(0, 0, 1150), 400, math.NewVec3(200, 0, 0))
	camera := NewCamera(DefaultCameraConfig())

	for _, px := range [][2]int{{0, 0}, {400, 300}, {250, 310}, {799, 599}} {
		ray := camera.GetRay(px[0], px[1])
		first := March(ray.Origin, ray.Direction, field)
		second := March(ray.Origin, ray.Direction, field)
		if first != second {
			t.Errorf("March for %v not repeatable: %v vs %v", px, first, second)
		}
	}
}

func TestMarcher_DistanceIsMonotonicForSolidSphere(t *testing.T) {
	sphere := sdf.NewSolidSphere(math.NewVec3(0, 0, 1150), 400)
	var estimates []float32
	field := sdf.FieldFunc(func(p math.Vec3) float32 {
		d := sphere.Evaluate(p)
		estimates = append(estimates, d)
		return d
	})

	camera := NewCamera(DefaultCameraConfig())
	NewMarcher(DefaultMarchConfig()).Trace(camera.GetRay(10, 10), field)

	var total float32
	for i, d := range estimates {
		if d < 0 {
			t.Fatalf("Estimate %d is negative: %v", i, d)
		}
		next := total + d
		if next < total {
			t.Fatalf("Accumulated distance decreased at step %d", i)
		}
		total = next
	}
}

func TestMarcher_ZeroDirectionPropagatesNaN(t *testing.T) {
	field := sdf.NewSolidSphere(math.NewVec3(0, 0, 10), 2)
	direction := math.Vec3{}.Normalize()

	result := NewMarcher(DefaultMarchConfig()).Trace(math.NewRay(math.Vec3{}, direction), field)

	if !math32.IsNaN(result.Distance) {
		t.Errorf("Expected NaN distance for a degenerate direction, got %v", result.Distance)
	}
}
