package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/animation"
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// FrameUpdate is sent once per rendered frame
type FrameUpdate struct {
	FrameIndex  int        `json:"frameIndex"`
	TotalFrames int        `json:"totalFrames"`
	Name        string     `json:"name"`
	Angle       float32    `json:"angle"`
	Offset      [3]float32 `json:"offset"`
	ImageData   string     `json:"imageData,omitempty"` // Base64 encoded PNG
	Stats       Stats      `json:"stats"`
	ElapsedMs   int64      `json:"elapsedMs"`
}

// Stats represents per-frame march statistics
type Stats struct {
	TotalPixels  int     `json:"totalPixels"`
	Hits         int     `json:"hits"`
	Misses       int     `json:"misses"`
	TotalSteps   int     `json:"totalSteps"`
	AverageSteps float64 `json:"averageSteps"`
	MaxStepsUsed int     `json:"maxStepsUsed"`
	HitRatio     float64 `json:"hitRatio"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "frame", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// RenderingPipeline contains the configured scene and animator
type RenderingPipeline struct {
	Scene    *scene.Scene
	Animator *animation.Animator
}

func newStats(stats renderer.RenderStats) Stats {
	return Stats{
		TotalPixels:  stats.TotalPixels,
		Hits:         stats.Hits,
		Misses:       stats.Misses,
		TotalSteps:   stats.TotalSteps,
		AverageSteps: stats.AverageSteps,
		MaxStepsUsed: stats.MaxStepsUsed,
		HitRatio:     stats.HitRatio(),
	}
}

func newFrameUpdate(result animation.FrameResult, totalFrames int, startTime time.Time) FrameUpdate {
	return FrameUpdate{
		FrameIndex:  result.Index,
		TotalFrames: totalFrames,
		Name:        result.Name,
		Angle:       result.Angle,
		Offset:      [3]float32{result.Offset.X, result.Offset.Y, result.Offset.Z},
		Stats:       newStats(result.Stats),
		ElapsedMs:   time.Since(startTime).Milliseconds(),
	}
}

// handleRender renders the animation and streams each frame via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	s.setSSEHeaders(w)

	ctx := r.Context()

	// Create unified SSE event channel for thread-safe writing
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})

	// Start single SSE writer goroutine
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(w, ctx, sseEventChan)
	}()

	// Setup console logging and streaming
	consoleCtx, stopConsole := context.WithCancel(ctx)
	consoleChan, webLogger := s.setupConsoleLogging()
	var consoleWG sync.WaitGroup
	consoleWG.Add(1)
	go func() {
		defer consoleWG.Done()
		s.streamConsoleMessages(consoleCtx, consoleChan, sseEventChan)
	}()

	// The last event is sent after the console has been flushed, and the
	// handler must not return while the writer still holds w
	var final SSEEvent
	defer func() {
		stopConsole()
		consoleWG.Wait()
		if final.Type != "" {
			s.sendEvent(ctx, sseEventChan, final)
		}
		close(sseEventChan)
		<-writerDone
	}()

	// Parse and validate request
	req, err := s.parseRenderRequest(r)
	if err != nil {
		final = SSEEvent{Type: "error", Data: fmt.Sprintf("Invalid request: %v", err)}
		return
	}

	pipeline, err := s.setupRenderingPipeline(req, webLogger)
	if err != nil {
		final = SSEEvent{Type: "error", Data: err.Error()}
		return
	}

	startTime := time.Now()
	pipeline.Animator.OnFrame(func(result animation.FrameResult, frame *core.Frame) {
		s.handleFrameComplete(ctx, sseEventChan, result, frame, req, startTime)
	})

	if _, err := pipeline.Animator.Run(ctx); err != nil {
		final = SSEEvent{Type: "error", Data: fmt.Sprintf("Rendering failed: %v", err)}
		return
	}
	final = SSEEvent{Type: "complete", Data: "Rendering completed"}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				// Channel closed
				return
			}

			// Check if client is still connected before writing
			select {
			case <-ctx.Done():
				return
			default:
			}

			_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data)
			if err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// streamConsoleMessages forwards console messages until ctx ends, then
// flushes whatever is still buffered
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	forward := func(consoleMsg ConsoleMessage) {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			log.Printf("Error marshaling console message: %v", err)
			return
		}
		select {
		case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
		default:
			// Channel full, skip message to avoid blocking
		}
	}

	for {
		select {
		case consoleMsg := <-consoleChan:
			forward(consoleMsg)
		case <-ctx.Done():
			for {
				select {
				case consoleMsg := <-consoleChan:
					forward(consoleMsg)
				default:
					return
				}
			}
		}
	}
}

// setupRenderingPipeline creates the scene, raytracer and animator for a request
func (s *Server) setupRenderingPipeline(req *RenderRequest, logger core.Logger) (*RenderingPipeline, error) {
	sceneObj, err := s.createScene(req)
	if err != nil {
		return nil, fmt.Errorf("Unknown scene: %s", req.Scene)
	}

	raytracer := sceneObj.NewRaytracer(renderOptions(req), logger)
	config := animation.DefaultConfig()
	config.Frames = req.Frames

	// Frames are streamed from the callback, nothing is written to disk
	animator := animation.NewAnimator(sceneObj, raytracer, nil, config, logger)
	return &RenderingPipeline{
		Scene:    sceneObj,
		Animator: animator,
	}, nil
}

// handleFrameComplete encodes and sends one frame event
func (s *Server) handleFrameComplete(ctx context.Context, sseEventChan chan SSEEvent, result animation.FrameResult,
	frame *core.Frame, req *RenderRequest, startTime time.Time) {
	// Check if client is still connected
	select {
	case <-ctx.Done():
		return
	default:
	}

	imageData, err := s.frameToBase64PNG(frame)
	if err != nil {
		log.Printf("Error encoding frame %s: %v", result.Name, err)
		return
	}

	update := newFrameUpdate(result, req.Frames, startTime)
	update.ImageData = imageData

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling frame update: %v", err)
		return
	}

	s.sendEvent(ctx, sseEventChan, SSEEvent{Type: "frame", Data: string(data)})
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.Frames > 60 {
		log.Printf("Render warning: Large image with many frames may render slowly")
	}

	return req, nil
}

// encodeFramePNG encodes a frame as PNG bytes
func encodeFramePNG(frame *core.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame.ToImage()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// frameToBase64PNG converts a frame to base64-encoded PNG
func (s *Server) frameToBase64PNG(frame *core.Frame) (string, error) {
	data, err := encodeFramePNG(frame)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// sendEvent queues an event unless the client has gone away
func (s *Server) sendEvent(ctx context.Context, sseEventChan chan SSEEvent, event SSEEvent) {
	select {
	case sseEventChan <- event:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
