package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -5, 6)

	if got := a.Add(b); got != NewVec3(5, -3, 9) {
		t.Errorf("Add: expected (5,-3,9), got %v", got)
	}
	if got := a.Subtract(b); got != NewVec3(-3, 7, -3) {
		t.Errorf("Subtract: expected (-3,7,-3), got %v", got)
	}
	if got := a.Multiply(2); got != NewVec3(2, 4, 6) {
		t.Errorf("Multiply: expected (2,4,6), got %v", got)
	}
	if got := a.Negate(); got != NewVec3(-1, -2, -3) {
		t.Errorf("Negate: expected (-1,-2,-3), got %v", got)
	}
	if got := a.Dot(b); got != 12 {
		t.Errorf("Dot: expected 12, got %v", got)
	}
}

func TestVec3_LengthAndNormalize(t *testing.T) {
	tests := []struct {
		name   string
		vector Vec3
		length float32
	}{
		{"unit x", NewVec3(1, 0, 0), 1},
		{"3-4-0 triangle", NewVec3(3, 4, 0), 5},
		{"camera corner", NewVec3(-79.9, -59.9, 150), math32.Sqrt(79.9*79.9 + 59.9*59.9 + 150*150)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vector.Length(); math32.Abs(got-tt.length) > 1e-3 {
				t.Errorf("Expected length %v, got %v", tt.length, got)
			}
			if got := tt.vector.Normalize().Length(); math32.Abs(got-1) > 1e-6 {
				t.Errorf("Expected normalized length 1, got %v", got)
			}
		})
	}
}

func TestVec3_NormalizeZeroIsNaN(t *testing.T) {
	n := Vec3{}.Normalize()
	if !math32.IsNaN(n.X) || !math32.IsNaN(n.Y) || !math32.IsNaN(n.Z) {
		t.Errorf("Expected NaN components when normalizing a zero vector, got %v", n)
	}
	if !(Vec3{}).IsZero() {
		t.Error("Zero vector should report IsZero")
	}
}

func TestVec3_RotateY(t *testing.T) {
	const d = 200
	tests := []struct {
		name     string
		angle    float32
		expected Vec3
	}{
		{"no rotation", 0, NewVec3(0, 0, d)},
		{"quarter turn", math32.Pi / 2, NewVec3(d, 0, 0)},
		{"half turn", math32.Pi, NewVec3(0, 0, -d)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewVec3(0, 0, d).RotateY(tt.angle)
			if got.Subtract(tt.expected).Length() > 1e-3 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 1, 1), NewVec3(0, 0, 1))
	if got := ray.At(2.5); got != NewVec3(1, 1, 3.5) {
		t.Errorf("Expected (1,1,3.5), got %v", got)
	}
}
