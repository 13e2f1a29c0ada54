package scene

import (
	"github.com/df07/go-sphere-tracer/pkg/math"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/sdf"
)

// NewDefaultScene creates the animated pair of overlapping spheres.
// The radius is half the screen width in pixels and the spheres sit five
// eye distances plus one radius down the z axis.
func NewDefaultScene() *Scene {
	return newSphereScene("default", sdf.KindCombined)
}

func newSphereScene(name string, kind sdf.Kind) *Scene {
	cameraConfig := renderer.DefaultCameraConfig()
	radius := float32(cameraConfig.Columns) / 2

	return &Scene{
		Name:         name,
		Kind:         kind,
		CameraConfig: cameraConfig,
		MarchConfig:  renderer.DefaultMarchConfig(),
		Center:       math.NewVec3(0, 0, cameraConfig.EyeDistance*5+radius),
		Radius:       radius,
	}
}
