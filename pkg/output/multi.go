package output

import (
	"io"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// MultiSink hands every frame to each of its sinks in order
type MultiSink []core.ImageSink

// WriteFrame stops at the first failing sink
func (m MultiSink) WriteFrame(name string, frame *core.Frame) error {
	for _, sink := range m {
		if err := sink.WriteFrame(name, frame); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink that needs it and returns the first error
func (m MultiSink) Close() error {
	var firstErr error
	for _, sink := range m {
		if closer, ok := sink.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
