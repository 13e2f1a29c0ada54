package sdf

import (
	"fmt"
	"strings"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/math"
)

// FieldFunc adapts a plain function into a core.DistanceField
type FieldFunc func(p math.Vec3) float32

// Evaluate invokes the wrapped function
func (f FieldFunc) Evaluate(p math.Vec3) float32 {
	return f(p)
}

// Kind selects one of the built-in distance fields
type Kind string

const (
	KindSolid    Kind = "solid"
	KindHollow   Kind = "hollow"
	KindCombined Kind = "combined"
)

// Kinds lists the built-in field kinds in display order
func Kinds() []Kind {
	return []Kind{KindCombined, KindSolid, KindHollow}
}

// ParseKind resolves a field name, case-insensitively
func ParseKind(name string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(name))) {
	case KindSolid:
		return KindSolid, nil
	case KindHollow:
		return KindHollow, nil
	case KindCombined:
		return KindCombined, nil
	default:
		return "", fmt.Errorf("unknown distance field %q", name)
	}
}

// New builds the field of the given kind. The hollow shell is always centered
// at the origin and ignores center; only the combined field uses offset.
func New(kind Kind, center math.Vec3, radius float32, offset math.Vec3) (core.DistanceField, error) {
	switch kind {
	case KindSolid:
		return NewSolidSphere(center, radius), nil
	case KindHollow:
		return NewHollowSphere(radius), nil
	case KindCombined:
		return NewCombinedSpheres(center, radius, offset), nil
	default:
		return nil, fmt.Errorf("unknown distance field %q", kind)
	}
}
