package sdf

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"

	"github.com/df07/go-sphere-tracer/pkg/math"
)

func TestCombinedSpheres_ZeroOffsetMatchesSingleSphere(t *testing.T) {
	center := math.NewVec3(0, 0, 1150)
	combined := NewCombinedSpheres(center, 400, math.Vec3{})
	random := rand.New(rand.NewSource(3))

	for i := 0; i < 1000; i++ {
		p := randomPoint(random, 2000)
		expected := p.Subtract(center).Length() - 400
		if got := combined.Evaluate(p); got != expected {
			t.Fatalf("Expected %v at %v, got %v", expected, p, got)
		}
	}
}

func TestCombinedSpheres_NotClamped(t *testing.T) {
	center := math.NewVec3(0, 0, 1150)
	offset := math.NewVec3(200, 0, 0)
	combined := NewCombinedSpheres(center, 400, offset)

	// the center of either sphere sits a full radius inside it
	if got := combined.Evaluate(center.Add(offset)); got != -400 {
		t.Errorf("Expected -400 at a sphere center, got %v", got)
	}
	if got := combined.Evaluate(center.Subtract(offset)); got != -400 {
		t.Errorf("Expected -400 at the mirrored sphere center, got %v", got)
	}
}

func TestCombinedSpheres_UnionOfBoth(t *testing.T) {
	center := math.NewVec3(0, 0, 0)
	combined := NewCombinedSpheres(center, 1, math.NewVec3(5, 0, 0))

	tests := []struct {
		name     string
		point    math.Vec3
		expected float32
	}{
		{"near right sphere", math.NewVec3(8, 0, 0), 2},
		{"near left sphere", math.NewVec3(-9, 0, 0), 3},
		{"midway", math.NewVec3(0, 0, 0), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := combined.Evaluate(tt.point); math32.Abs(got-tt.expected) > 1e-5 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCombinedSpheres_OffsetSignIsIrrelevant(t *testing.T) {
	center := math.NewVec3(0, 0, 10)
	offset := math.NewVec3(2, 0, 1)
	forward := NewCombinedSpheres(center, 1, offset)
	backward := NewCombinedSpheres(center, 1, offset.Negate())

	for _, p := range []math.Vec3{
		math.NewVec3(0, 0, 0),
		math.NewVec3(2, 0, 11),
		math.NewVec3(-3, 1, 8),
	} {
		if a, b := forward.Evaluate(p), backward.Evaluate(p); a != b {
			t.Errorf("At %v: offset %v gives %v, negated gives %v", p, offset, a, b)
		}
	}
}
