package renderer

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/math"
	"github.com/df07/go-sphere-tracer/pkg/sdf"
)

// constantField reports the same distance everywhere
func constantField(d float32) core.DistanceField {
	return sdf.FieldFunc(func(math.Vec3) float32 { return d })
}

func newTestPool(numWorkers, maxTasks int) (*WorkerPool, *core.Frame) {
	config := CameraConfig{Columns: 8, Rows: 8, PixelWidth: 1, PixelHeight: 1, EyeDistance: 10}
	tr := NewTileRenderer(NewCamera(config), NewMarcher(DefaultMarchConfig()), Shader{Near: 0, Far: 100})
	return NewWorkerPool(tr, numWorkers, maxTasks), core.NewFrame(8, 8)
}

func TestWorkerPool_RendersAllTasks(t *testing.T) {
	pool, frame := newTestPool(3, 4)
	if pool.GetNumWorkers() != 3 {
		t.Errorf("Expected 3 workers, got %d", pool.GetNumWorkers())
	}
	pool.Start(context.Background())

	tiles := NewTileGrid(8, 8, 4)
	field := constantField(0) // every ray hits immediately
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: i, Field: field, Frame: frame})
	}

	seen := make(map[int]bool)
	var total RenderStats
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			t.Fatal("Result queue closed early")
		}
		if result.Error != nil {
			t.Fatalf("Task %d failed: %v", result.TaskID, result.Error)
		}
		seen[result.TaskID] = true
		total.Merge(result.Stats)
	}
	pool.Stop()

	if len(seen) != len(tiles) {
		t.Errorf("Expected results for %d tasks, got %d", len(tiles), len(seen))
	}
	if total.TotalPixels != 64 || total.Hits != 64 {
		t.Errorf("Expected 64 hits, got %+v", total)
	}
	for i, texel := range frame.Texels {
		if texel != core.Gray(255) {
			t.Fatalf("Texel %d not rendered: %+v", i, texel)
		}
	}
	if _, ok := pool.GetResult(); ok {
		t.Error("Expected the result queue to be closed after Stop")
	}
}

func TestWorkerPool_CancelledContext(t *testing.T) {
	pool, frame := newTestPool(2, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pool.Start(ctx)

	pool.SubmitTask(TileTask{Tile: NewTile(0, image.Rect(0, 0, 8, 8)), TaskID: 0, Field: constantField(0), Frame: frame})
	result, ok := pool.GetResult()
	pool.Stop()

	if !ok || !errors.Is(result.Error, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v (ok=%v)", result.Error, ok)
	}
	if frame.Texels[0] != (core.Texel{}) {
		t.Errorf("Expected the cancelled tile to stay untouched, got %+v", frame.Texels[0])
	}
}

func TestWorkerPool_DefaultsToCPUCount(t *testing.T) {
	pool, _ := newTestPool(0, 1)
	if pool.GetNumWorkers() < 1 {
		t.Errorf("Expected at least one worker, got %d", pool.GetNumWorkers())
	}
}
