package output

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"
	"sync"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// grayPalette holds all 256 opaque gray levels, enough to store the shaded
// frames without dithering noise
var grayPalette = func() color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = color.RGBA{uint8(i), uint8(i), uint8(i), 255}
	}
	return p
}()

// GIFSink collects frames and writes them as one looping animated GIF on Close.
// delay is in 100ths of a second (e.g., 5 => 20 fps).
type GIFSink struct {
	mu    sync.Mutex
	path  string
	delay int
	anim  gif.GIF
}

// NewGIFSink creates a sink that will write the animation to path
func NewGIFSink(path string, delay int) *GIFSink {
	return &GIFSink{
		path:  path,
		delay: delay,
		anim:  gif.GIF{LoopCount: 0},
	}
}

// WriteFrame quantizes the frame and appends it to the animation
func (s *GIFSink) WriteFrame(_ string, frame *core.Frame) error {
	rgba := frame.ToImage()
	paletted := image.NewPaletted(rgba.Bounds(), grayPalette)
	draw.FloydSteinberg.Draw(paletted, paletted.Bounds(), rgba, image.Point{})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.anim.Image = append(s.anim.Image, paletted)
	s.anim.Delay = append(s.anim.Delay, s.delay)
	return nil
}

// Frames returns how many frames have been collected
func (s *GIFSink) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.anim.Image)
}

// Close encodes the collected frames to the target path
func (s *GIFSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.anim.Image) == 0 {
		return fmt.Errorf("no frames to write to %s", s.path)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &s.anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
