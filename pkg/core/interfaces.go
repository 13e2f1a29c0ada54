package core

import "github.com/df07/go-sphere-tracer/pkg/math"

// Logger interface for renderer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// DistanceField estimates the distance from a point to the nearest surface.
// The estimate must never overshoot the true distance.
type DistanceField interface {
	Evaluate(p math.Vec3) float32
}

// ImageSink persists a finished frame under the given name. The frame buffer
// is reused after WriteFrame returns, so sinks that keep it must copy it.
type ImageSink interface {
	WriteFrame(path string, frame *Frame) error
}
