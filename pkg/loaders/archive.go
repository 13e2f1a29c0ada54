package loaders

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/output"
)

// Limits applied to frame record headers before anything is allocated
const (
	MaxFrameDimension  = 1 << 14
	MaxFrameNameLength = 1 << 10
)

// ArchivedFrame is one frame record read back from an archive bundle
type ArchivedFrame struct {
	Index int
	Name  string
	Frame *core.Frame
}

// Archive is the decoded content of an archive bundle directory
type Archive struct {
	Manifest output.Manifest
	Frames   []ArchivedFrame
	Events   []output.Event
}

// ReadArchive decodes the manifest, frames and events of a bundle written by output.ArchiveSink
func ReadArchive(dir string) (*Archive, error) {
	data, err := os.ReadFile(filepath.Join(dir, output.ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var archive Archive
	if err := json.Unmarshal(data, &archive.Manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if archive.Manifest.Version != output.ArchiveVersion {
		return nil, fmt.Errorf("unsupported archive version %d", archive.Manifest.Version)
	}

	frames, err := readFrames(filepath.Join(dir, archive.Manifest.FramesPath))
	if err != nil {
		return nil, err
	}
	archive.Frames = frames

	events, err := readEvents(filepath.Join(dir, archive.Manifest.EventsPath))
	if err != nil {
		return nil, err
	}
	archive.Events = events

	return &archive, nil
}

func readFrames(path string) ([]ArchivedFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader, err := zstd.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return decodeFrames(reader)
}

// decodeFrames reads length-prefixed frame records until a clean EOF
func decodeFrames(reader io.Reader) ([]ArchivedFrame, error) {
	var frames []ArchivedFrame
	header := make([]byte, output.FrameHeaderSize)
	for {
		if _, err := io.ReadFull(reader, header); err != nil {
			if errors.Is(err, io.EOF) {
				return frames, nil
			}
			return nil, fmt.Errorf("read frame header: %w", err)
		}
		index := int(binary.LittleEndian.Uint32(header[0:4]))
		width := int(binary.LittleEndian.Uint32(header[4:8]))
		height := int(binary.LittleEndian.Uint32(header[8:12]))
		nameLen := int(binary.LittleEndian.Uint32(header[12:16]))
		if width <= 0 || height <= 0 || width > MaxFrameDimension || height > MaxFrameDimension {
			return nil, fmt.Errorf("frame %d: invalid size %dx%d", index, width, height)
		}
		if nameLen > MaxFrameNameLength {
			return nil, fmt.Errorf("frame %d: name length %d exceeds %d", index, nameLen, MaxFrameNameLength)
		}

		name := make([]byte, nameLen)
		if _, err := io.ReadFull(reader, name); err != nil {
			return nil, fmt.Errorf("read frame %d name: %w", index, err)
		}
		pixels := make([]byte, width*height*4)
		if _, err := io.ReadFull(reader, pixels); err != nil {
			return nil, fmt.Errorf("read frame %d pixels: %w", index, err)
		}

		frame := core.NewFrame(width, height)
		for i := range frame.Texels {
			frame.Texels[i] = core.Texel{R: pixels[i*4], G: pixels[i*4+1], B: pixels[i*4+2], A: pixels[i*4+3]}
		}
		frames = append(frames, ArchivedFrame{Index: index, Name: string(name), Frame: frame})
	}
}

func readEvents(path string) ([]output.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var events []output.Event
	scanner := bufio.NewScanner(snappy.NewReader(file))
	for scanner.Scan() {
		var event output.Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
