package animation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/math"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// recordingSink keeps a copy of every frame it is handed
type recordingSink struct {
	names  []string
	frames []*core.Frame
	failAt int
}

func (r *recordingSink) WriteFrame(path string, frame *core.Frame) error {
	if r.failAt > 0 && len(r.names) == r.failAt {
		return errors.New("disk full")
	}
	r.names = append(r.names, path)
	r.frames = append(r.frames, frame.Clone())
	return nil
}

func newTestAnimator(sink core.ImageSink, config Config) *Animator {
	s := scene.NewDefaultScene().WithResolution(80, 60)
	rt := s.NewRaytracer(renderer.DefaultRenderOptions(), nil)
	return NewAnimator(s, rt, sink, config, nil)
}

func TestOffset(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		expected math.Vec3
	}{
		{"frame 0 points down +z", 0, math.NewVec3(0, 0, 200)},
		{"frame 5 points down +x", 5, math.NewVec3(200, 0, 0)},
		{"frame 10 points down -z", 10, math.NewVec3(0, 0, -200)},
		{"frame 15 points down -x", 15, math.NewVec3(-200, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Offset(tt.index, 20, 400)
			if got.Subtract(tt.expected).Length() > 1e-3 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
			if l := got.Length(); l < 199.99 || l > 200.01 {
				t.Errorf("Offset length should be half the radius, got %v", l)
			}
		})
	}

	if got := Offset(0, 20, 400); got != math.NewVec3(0, 0, 200) {
		t.Errorf("Frame 0 offset should be exact, got %v", got)
	}
}

func TestFrameName(t *testing.T) {
	pattern := DefaultConfig().Pattern
	tests := map[int]string{
		0:  "output-00.png",
		7:  "output-07.png",
		19: "output-19.png",
	}
	for index, expected := range tests {
		if got := FrameName(pattern, index); got != expected {
			t.Errorf("FrameName(%d): expected %q, got %q", index, expected, got)
		}
	}
}

func TestAnimator_RunWritesEveryFrameInOrder(t *testing.T) {
	sink := &recordingSink{}
	animator := newTestAnimator(sink, DefaultConfig())

	var observed []FrameResult
	animator.OnFrame(func(result FrameResult, frame *core.Frame) {
		observed = append(observed, result)
	})

	results, err := animator.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(results) != 20 || len(sink.names) != 20 || len(observed) != 20 {
		t.Fatalf("Expected 20 frames everywhere, got results=%d sink=%d callbacks=%d",
			len(results), len(sink.names), len(observed))
	}
	for i, name := range sink.names {
		if expected := FrameName("output-%02d.png", i); name != expected {
			t.Errorf("Frame %d written as %q, expected %q", i, name, expected)
		}
		if results[i].Index != i || observed[i].Offset != Offset(i, 20, 400) {
			t.Errorf("Frame %d reported out of order: %+v", i, results[i])
		}
		if results[i].Stats.TotalPixels != 80*60 {
			t.Errorf("Frame %d stats cover %d pixels", i, results[i].Stats.TotalPixels)
		}
	}
}

func TestAnimator_OffsetChangesTheImage(t *testing.T) {
	sink := &recordingSink{}
	animator := newTestAnimator(sink, DefaultConfig())

	if _, err := animator.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	frame0, frame5 := sink.frames[0], sink.frames[5]
	differing := 0
	for i := range frame0.Texels {
		if frame0.Texels[i] != frame5.Texels[i] {
			differing++
		}
	}
	if differing == 0 {
		t.Fatal("Frames 0 and 5 should differ")
	}

	// frame 0 puts a sphere right in front of the eye, frame 5 moves both aside
	if c0, c5 := frame0.At(40, 30), frame5.At(40, 30); c0.R <= c5.R {
		t.Errorf("Expected a brighter center in frame 0: %v vs %v", c0, c5)
	}
}

func TestAnimator_SinkErrorStopsRun(t *testing.T) {
	sink := &recordingSink{failAt: 3}
	animator := newTestAnimator(sink, DefaultConfig())

	results, err := animator.Run(context.Background())
	if err == nil {
		t.Fatal("Expected the sink error to abort the run")
	}
	if !strings.Contains(err.Error(), "output-03.png") {
		t.Errorf("Error should name the failing frame, got %v", err)
	}
	if len(results) != 3 || len(sink.names) != 3 {
		t.Errorf("Expected 3 completed frames, got results=%d sink=%d", len(results), len(sink.names))
	}
}

func TestAnimator_NilSinkStillRenders(t *testing.T) {
	animator := newTestAnimator(nil, Config{Frames: 2, Pattern: "frame-%d.png"})

	results, err := animator.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 2 || results[1].Name != "frame-1.png" {
		t.Errorf("Unexpected results %+v", results)
	}
}

func TestAnimator_InvalidFrameCount(t *testing.T) {
	animator := newTestAnimator(nil, Config{Frames: 0, Pattern: "x-%d.png"})
	if _, err := animator.Run(context.Background()); err == nil {
		t.Error("Expected an error for zero frames")
	}
}

func TestAnimator_CancelledContext(t *testing.T) {
	animator := newTestAnimator(&recordingSink{}, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := animator.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
