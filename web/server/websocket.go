package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/animation"
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout = 10 * time.Second
	maxCloseReason = 120 // control frame payloads are limited to 125 bytes
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebsocket streams the animation over a websocket. Every frame is sent
// as a JSON FrameUpdate text message followed by a binary PNG message; the
// stream ends with a normal close frame.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	sceneObj, err := s.createScene(req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Unknown scene: "+req.Scene)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// A hijacked connection no longer cancels the request context, so the
	// read loop cancels the render when the peer goes away
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	raytracer := sceneObj.NewRaytracer(renderOptions(req), renderer.NopLogger{})
	config := animation.DefaultConfig()
	config.Frames = req.Frames
	animator := animation.NewAnimator(sceneObj, raytracer, nil, config, nil)

	var writeErr error
	startTime := time.Now()
	animator.OnFrame(func(result animation.FrameResult, frame *core.Frame) {
		if writeErr != nil {
			return
		}
		select {
		case <-closed:
			writeErr = websocket.ErrCloseSent
			return
		default:
		}
		writeErr = writeFrameMessages(conn, newFrameUpdate(result, req.Frames, startTime), frame)
	})

	_, runErr := animator.Run(ctx)
	if writeErr != nil {
		log.Printf("websocket stream stopped: %v", writeErr)
		return
	}

	closeCode, closeText := websocket.CloseNormalClosure, "render complete"
	if runErr != nil {
		closeCode, closeText = websocket.CloseInternalServerErr, runErr.Error()
		if len(closeText) > maxCloseReason {
			closeText = closeText[:maxCloseReason]
		}
	}
	deadline := time.Now().Add(wsWriteTimeout)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(closeCode, closeText), deadline)

	// Give the peer a moment to acknowledge the close
	select {
	case <-closed:
	case <-time.After(time.Second):
	}
}

// writeFrameMessages sends the header text message then the PNG binary message
func writeFrameMessages(conn *websocket.Conn, update FrameUpdate, frame *core.Frame) error {
	header, err := json.Marshal(update)
	if err != nil {
		return err
	}
	data, err := encodeFramePNG(frame)
	if err != nil {
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, header); err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(websocket.BinaryMessage, data)
}
