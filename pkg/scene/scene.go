package scene

import (
	"fmt"
	"strings"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/math"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/sdf"
)

// Scene bundles a distance field kind with the camera and marching settings
// used to render it. A scene is immutable; per-frame state such as the
// sphere offset is passed to Field.
type Scene struct {
	Name         string
	Kind         sdf.Kind
	CameraConfig renderer.CameraConfig
	MarchConfig  renderer.MarchConfig
	Center       math.Vec3 // Center of the sphere(s); the hollow shell ignores it
	Radius       float32
}

// NewScene creates a built-in scene by name
func NewScene(name string) (*Scene, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "default", "combined":
		return NewDefaultScene(), nil
	case "solid":
		return newSphereScene("solid", sdf.KindSolid), nil
	case "hollow":
		return newSphereScene("hollow", sdf.KindHollow), nil
	default:
		return nil, fmt.Errorf("unknown scene %q", name)
	}
}

// Field builds the distance field for one frame
func (s *Scene) Field(offset math.Vec3) core.DistanceField {
	field, err := sdf.New(s.Kind, s.Center, s.Radius, offset)
	if err != nil {
		// Kind is fixed by the scene constructors
		panic(err)
	}
	return field
}

// Shader returns the distance-to-gray mapping for this scene's geometry
func (s *Scene) Shader() renderer.Shader {
	return renderer.NewShader(s.Center.Z, s.Radius)
}

// NewRaytracer creates a frame renderer for this scene
func (s *Scene) NewRaytracer(options renderer.RenderOptions, logger core.Logger) *renderer.Raytracer {
	return renderer.NewRaytracer(renderer.NewCamera(s.CameraConfig), s.MarchConfig, s.Shader(), options, logger)
}

// WithResolution returns a copy rendered at a different pixel grid. The
// physical screen size is kept, so the image shows the same view.
func (s *Scene) WithResolution(columns, rows int) *Scene {
	scaled := *s
	config := s.CameraConfig
	scaled.CameraConfig.Columns = columns
	scaled.CameraConfig.Rows = rows
	scaled.CameraConfig.PixelWidth = config.ScreenWidth() / float32(columns)
	scaled.CameraConfig.PixelHeight = config.ScreenHeight() / float32(rows)
	return &scaled
}
