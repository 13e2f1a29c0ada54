package animation

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/math"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// Tau is one full turn in radians
const Tau = 6.28318530718

// Config describes the frame sequence
type Config struct {
	Frames  int    // Frames per full rotation of the offset
	Pattern string // fmt pattern taking the frame index
}

// DefaultConfig returns the reference 20-frame rotation
func DefaultConfig() Config {
	return Config{
		Frames:  20,
		Pattern: "output-%02d.png",
	}
}

// Angle returns the rotation angle of frame index out of frames
func Angle(index, frames int) float32 {
	return float32(index) / float32(frames) * Tau
}

// Offset returns the sphere offset of frame index: half a radius from the
// center, rotated around the y axis so frame 0 points down +z.
func Offset(index, frames int, radius float32) math.Vec3 {
	return math.NewVec3(0, 0, radius/2).RotateY(Angle(index, frames))
}

// FrameName formats the output name of frame index
func FrameName(pattern string, index int) string {
	return fmt.Sprintf(pattern, index)
}

// FrameResult describes one rendered frame
type FrameResult struct {
	Index   int
	Name    string
	Angle   float32
	Offset  math.Vec3
	Stats   renderer.RenderStats
	Elapsed time.Duration
}

// FrameCallback observes each frame after it was written. The frame buffer is
// reused for the next frame once the callback returns.
type FrameCallback func(result FrameResult, frame *core.Frame)

// Animator renders the frame sequence one frame at a time
type Animator struct {
	scene     *scene.Scene
	raytracer *renderer.Raytracer
	sink      core.ImageSink
	config    Config
	logger    core.Logger
	onFrame   FrameCallback
}

// NewAnimator creates an animator. A nil sink renders without writing, which
// is useful when frames are only consumed through the callback.
func NewAnimator(s *scene.Scene, raytracer *renderer.Raytracer, sink core.ImageSink, config Config, logger core.Logger) *Animator {
	if logger == nil {
		logger = renderer.NopLogger{}
	}
	return &Animator{
		scene:     s,
		raytracer: raytracer,
		sink:      sink,
		config:    config,
		logger:    logger,
	}
}

// OnFrame registers a callback invoked after every frame
func (a *Animator) OnFrame(callback FrameCallback) {
	a.onFrame = callback
}

// Run renders every frame in order. Each frame's offset is fixed before the
// frame is rendered and the frame is fully written before the next one starts.
// The first render or sink error stops the run.
func (a *Animator) Run(ctx context.Context) ([]FrameResult, error) {
	if a.config.Frames <= 0 {
		return nil, fmt.Errorf("frame count must be positive, got %d", a.config.Frames)
	}

	frame := a.raytracer.NewFrame()
	results := make([]FrameResult, 0, a.config.Frames)

	for i := 0; i < a.config.Frames; i++ {
		result, err := a.RenderFrame(ctx, i, frame)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}

// RenderFrame renders and writes a single frame of the sequence into frame
func (a *Animator) RenderFrame(ctx context.Context, index int, frame *core.Frame) (FrameResult, error) {
	start := time.Now()
	offset := Offset(index, a.config.Frames, a.scene.Radius)
	result := FrameResult{
		Index:  index,
		Name:   FrameName(a.config.Pattern, index),
		Angle:  Angle(index, a.config.Frames),
		Offset: offset,
	}

	stats, err := a.raytracer.RenderFrame(ctx, a.scene.Field(offset), frame)
	if err != nil {
		return result, fmt.Errorf("render %s: %w", result.Name, err)
	}
	result.Stats = stats

	if a.sink != nil {
		if err := a.sink.WriteFrame(result.Name, frame); err != nil {
			return result, fmt.Errorf("write %s: %w", result.Name, err)
		}
	}
	result.Elapsed = time.Since(start)

	a.logger.Printf("Frame %d/%d %s (angle %.3f) in %v\n",
		index+1, a.config.Frames, result.Name, result.Angle, result.Elapsed)

	if a.onFrame != nil {
		a.onFrame(result, frame)
	}
	return result, nil
}
