package output

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

var archiveNameCleaner = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

const (
	// ArchiveVersion is bumped whenever the frame record layout changes
	ArchiveVersion = 1

	ManifestFile = "manifest.json"
	FramesFile   = "frames.bin.zst"
	EventsFile   = "events.jsonl.sz"

	// FrameHeaderSize is index, width, height and name length as little-endian uint32s
	FrameHeaderSize = 16
)

// Manifest describes the archive bundle layout so tooling can locate artefacts
type Manifest struct {
	Version    int    `json:"version"`
	CreatedAt  string `json:"created_at"`
	Channels   int    `json:"channels"`
	FramesPath string `json:"frames_path"`
	EventsPath string `json:"events_path"`
}

// Event is one line of the archive's event log
type Event struct {
	Type       string          `json:"type"`
	Index      int             `json:"index"`
	Name       string          `json:"name,omitempty"`
	CapturedAt string          `json:"captured_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// ArchiveSink stores raw frames in a single zstd stream and logs one event per
// frame to a snappy-compressed JSON lines file.
type ArchiveSink struct {
	mu          sync.Mutex
	dir         string
	now         func() time.Time
	frameFile   *os.File
	frameStream *zstd.Encoder
	eventFile   *os.File
	eventStream *snappy.Writer
	written     int
}

// NewArchiveSink prepares a bundle directory below root and opens the compressed streams
func NewArchiveSink(root, name string, clock func() time.Time) (*ArchiveSink, Manifest, error) {
	if root == "" {
		return nil, Manifest{}, fmt.Errorf("archive root must be provided")
	}
	if clock == nil {
		clock = time.Now
	}

	cleaned := archiveNameCleaner.ReplaceAllString(name, "")
	if cleaned == "" {
		cleaned = "render"
	}
	created := clock().UTC()
	dir := filepath.Join(root, fmt.Sprintf("%s-%s", cleaned, created.Format("20060102T150405Z")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, Manifest{}, err
	}

	frameFile, err := os.Create(filepath.Join(dir, FramesFile))
	if err != nil {
		return nil, Manifest{}, err
	}
	frameStream, err := zstd.NewWriter(frameFile)
	if err != nil {
		frameFile.Close()
		return nil, Manifest{}, err
	}

	eventFile, err := os.Create(filepath.Join(dir, EventsFile))
	if err != nil {
		frameStream.Close()
		frameFile.Close()
		return nil, Manifest{}, err
	}
	eventStream := snappy.NewBufferedWriter(eventFile)

	manifest := Manifest{
		Version:    ArchiveVersion,
		CreatedAt:  created.Format(time.RFC3339Nano),
		Channels:   4,
		FramesPath: FramesFile,
		EventsPath: EventsFile,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644)
	}
	if err != nil {
		eventStream.Close()
		eventFile.Close()
		frameStream.Close()
		frameFile.Close()
		return nil, Manifest{}, err
	}

	return &ArchiveSink{
		dir:         dir,
		now:         clock,
		frameFile:   frameFile,
		frameStream: frameStream,
		eventFile:   eventFile,
		eventStream: eventStream,
	}, manifest, nil
}

// Directory exposes the directory backing the bundle
func (a *ArchiveSink) Directory() string {
	if a == nil {
		return ""
	}
	return a.dir
}

// WriteFrame appends a length-prefixed frame record and logs a "frame" event
func (a *ArchiveSink) WriteFrame(name string, frame *core.Frame) error {
	if a == nil {
		return fmt.Errorf("archive not initialised")
	}
	pixels := frame.Bytes()

	a.mu.Lock()
	defer a.mu.Unlock()

	index := a.written
	header := make([]byte, FrameHeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], uint32(index))
	binary.LittleEndian.PutUint32(header[4:8], uint32(frame.Width))
	binary.LittleEndian.PutUint32(header[8:12], uint32(frame.Height))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(name)))
	for _, chunk := range [][]byte{header, []byte(name), pixels} {
		if _, err := a.frameStream.Write(chunk); err != nil {
			return err
		}
	}
	a.written++

	return a.appendEventLocked(Event{Type: "frame", Index: index, Name: name})
}

// AppendEvent logs an extra event, for example per-frame statistics
func (a *ArchiveSink) AppendEvent(eventType string, index int, payload interface{}) error {
	if a == nil {
		return fmt.Errorf("archive not initialised")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.appendEventLocked(Event{Type: eventType, Index: index, Payload: data})
}

// appendEventLocked writes one JSON line; callers must hold the mutex
func (a *ArchiveSink) appendEventLocked(event Event) error {
	event.CapturedAt = a.now().UTC().Format(time.RFC3339Nano)
	line, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := a.eventStream.Write(append(line, '\n')); err != nil {
		return err
	}
	return a.eventStream.Flush()
}

// Close flushes both streams and releases the files, surfacing the first failure
func (a *ArchiveSink) Close() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var firstErr error
	if err := a.frameStream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.frameFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.eventStream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.eventFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
