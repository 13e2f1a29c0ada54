package renderer

import (
	"image"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// TileRenderer marches and shades the pixels of individual tiles
type TileRenderer struct {
	camera  *Camera
	marcher Marcher
	shader  Shader
}

// NewTileRenderer creates a new tile renderer
func NewTileRenderer(camera *Camera, marcher Marcher, shader Shader) *TileRenderer {
	return &TileRenderer{
		camera:  camera,
		marcher: marcher,
		shader:  shader,
	}
}

// RenderTileBounds renders the pixels within bounds into frame.
// Tiles never overlap, so concurrent calls on distinct bounds are safe.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, field core.DistanceField, frame *core.Frame) RenderStats {
	var stats RenderStats

	for row := bounds.Min.Y; row < bounds.Max.Y; row++ {
		for col := bounds.Min.X; col < bounds.Max.X; col++ {
			result := tr.TracePixel(col, row, field)
			frame.Texels[row*frame.Width+col] = tr.shader.Shade(result.Distance)
			stats.AddRay(result)
		}
	}

	stats.finalize()
	return stats
}

// TracePixel marches the camera ray of one pixel
func (tr *TileRenderer) TracePixel(col, row int, field core.DistanceField) MarchResult {
	return tr.marcher.Trace(tr.camera.GetRay(col, row), field)
}
