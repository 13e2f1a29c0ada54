package renderer

import (
	"github.com/df07/go-sphere-tracer/pkg/math"
)

// CameraConfig describes the pinhole camera and its screen plane
type CameraConfig struct {
	Columns     int     // Pixel grid width
	Rows        int     // Pixel grid height
	PixelWidth  float32 // Physical width of one pixel on the screen plane
	PixelHeight float32 // Physical height of one pixel on the screen plane
	EyeDistance float32 // Distance from the eye (origin) to the screen plane along +z
}

// DefaultCameraConfig returns the 800x600 reference camera
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Columns:     800,
		Rows:        600,
		PixelWidth:  0.2,
		PixelHeight: 0.2,
		EyeDistance: 150,
	}
}

// ScreenWidth is the physical width of the screen plane
func (c CameraConfig) ScreenWidth() float32 {
	return float32(c.Columns) * c.PixelWidth
}

// ScreenHeight is the physical height of the screen plane
func (c CameraConfig) ScreenHeight() float32 {
	return float32(c.Rows) * c.PixelHeight
}

// Camera generates one ray per pixel from an eye at the world origin looking toward +z
type Camera struct {
	config       CameraConfig
	origin       math.Vec3
	screenWidth  float32
	screenHeight float32
}

// NewCamera creates a camera from its configuration
func NewCamera(config CameraConfig) *Camera {
	return &Camera{
		config:       config,
		origin:       math.NewVec3(0, 0, 0),
		screenWidth:  config.ScreenWidth(),
		screenHeight: config.ScreenHeight(),
	}
}

// Config returns the camera configuration
func (c *Camera) Config() CameraConfig {
	return c.config
}

// ScreenPoint returns the center of pixel (col, row) on the screen plane
func (c *Camera) ScreenPoint(col, row int) math.Vec3 {
	pw, ph := c.config.PixelWidth, c.config.PixelHeight
	x := float32(col)*pw - c.screenWidth*0.5 + pw*0.5
	y := float32(row)*ph - c.screenHeight*0.5 + ph*0.5
	return math.NewVec3(x, y, c.config.EyeDistance)
}

// GetRay returns the unit-direction ray from the eye through pixel (col, row)
func (c *Camera) GetRay(col, row int) math.Ray {
	return math.NewRay(c.origin, c.ScreenPoint(col, row).Subtract(c.origin).Normalize())
}
