package output

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// PNGSink writes every frame as a lossless PNG file inside Dir
type PNGSink struct {
	Dir     string
	encoder png.Encoder
}

// NewPNGSink creates the output directory and returns a sink writing into it
func NewPNGSink(dir string, level png.CompressionLevel) (*PNGSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &PNGSink{
		Dir:     dir,
		encoder: png.Encoder{CompressionLevel: level},
	}, nil
}

// WriteFrame encodes frame to Dir/name
func (s *PNGSink) WriteFrame(name string, frame *core.Frame) error {
	path := filepath.Join(s.Dir, name)
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := s.encoder.Encode(file, frame.ToImage()); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return file.Close()
}

// Path returns where a frame with the given name ends up
func (s *PNGSink) Path(name string) string {
	return filepath.Join(s.Dir, name)
}
