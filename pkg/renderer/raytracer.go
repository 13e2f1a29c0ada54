package renderer

import (
	"context"
	"fmt"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// RenderOptions configures how a frame is split across workers
type RenderOptions struct {
	TileSize     int                        // Edge length of square tiles in pixels
	NumWorkers   int                        // Number of parallel workers (0 = use CPU count)
	TileCallback func(TileCompletionResult) // Optional, invoked from the rendering goroutine
}

// DefaultRenderOptions returns sensible default values
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		TileSize:   64,
		NumWorkers: 0,
	}
}

// TileCompletionResult describes a finished tile for progress reporting
type TileCompletionResult struct {
	Tile       *Tile
	Stats      RenderStats
	TileNumber int // 1-based completion order within the frame
	TotalTiles int
}

// Raytracer renders whole frames of a distance field
type Raytracer struct {
	camera       *Camera
	marcher      Marcher
	shader       Shader
	options      RenderOptions
	tileRenderer *TileRenderer
	logger       core.Logger
}

// NewRaytracer creates a frame renderer
func NewRaytracer(camera *Camera, march MarchConfig, shader Shader, options RenderOptions, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = NopLogger{}
	}
	marcher := NewMarcher(march)
	return &Raytracer{
		camera:       camera,
		marcher:      marcher,
		shader:       shader,
		options:      options,
		tileRenderer: NewTileRenderer(camera, marcher, shader),
		logger:       logger,
	}
}

// Camera returns the camera rays are generated from
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// Shader returns the distance-to-gray mapping in use
func (rt *Raytracer) Shader() Shader {
	return rt.shader
}

// NewFrame allocates a frame sized for this renderer's camera
func (rt *Raytracer) NewFrame() *core.Frame {
	config := rt.camera.Config()
	return core.NewFrame(config.Columns, config.Rows)
}

// TracePixel marches and shades a single pixel without touching any frame
func (rt *Raytracer) TracePixel(col, row int, field core.DistanceField) (MarchResult, core.Texel) {
	result := rt.tileRenderer.TracePixel(col, row, field)
	return result, rt.shader.Shade(result.Distance)
}

// RenderFrame fills every texel of frame for the given field. Tiles are
// rendered in parallel and the call returns only once all of them are done,
// so the frame can be handed to a sink immediately afterwards.
func (rt *Raytracer) RenderFrame(ctx context.Context, field core.DistanceField, frame *core.Frame) (RenderStats, error) {
	config := rt.camera.Config()
	if frame.Width != config.Columns || frame.Height != config.Rows {
		return RenderStats{}, fmt.Errorf("frame is %dx%d but camera is %dx%d",
			frame.Width, frame.Height, config.Columns, config.Rows)
	}
	if len(frame.Texels) != frame.Width*frame.Height {
		return RenderStats{}, fmt.Errorf("frame buffer holds %d texels, want %d",
			len(frame.Texels), frame.Width*frame.Height)
	}

	tiles := NewTileGrid(config.Columns, config.Rows, rt.options.TileSize)
	pool := NewWorkerPool(rt.tileRenderer, rt.options.NumWorkers, len(tiles))
	pool.Start(ctx)
	defer pool.Stop()

	for taskID, tile := range tiles {
		pool.SubmitTask(TileTask{
			Tile:   tile,
			TaskID: taskID,
			Field:  field,
			Frame:  frame,
		})
	}

	var stats RenderStats
	var firstErr error
	for i := 0; i < len(tiles); i++ {
		result, ok := pool.GetResult()
		if !ok {
			return RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		stats.Merge(result.Stats)

		if rt.options.TileCallback != nil {
			rt.options.TileCallback(TileCompletionResult{
				Tile:       tiles[result.TaskID],
				Stats:      result.Stats,
				TileNumber: i + 1,
				TotalTiles: len(tiles),
			})
		}
	}
	if firstErr != nil {
		return stats, firstErr
	}

	rt.logger.Printf("Frame %dx%d: %d hits, %d misses, %.1f avg steps (%d tiles, %d workers)\n",
		config.Columns, config.Rows, stats.Hits, stats.Misses, stats.AverageSteps, len(tiles), pool.GetNumWorkers())
	return stats, nil
}
