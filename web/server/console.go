package server

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// ConsoleMessage is one log line forwarded to the browser console
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by echoing to the server log and sending
// each message to a console channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	echo        io.Writer
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
		echo:        os.Stdout,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if wl.echo != nil {
		fmt.Fprint(wl.echo, message)
	}

	if wl.consoleChan == nil {
		return
	}
	// Never block the render on a slow client
	select {
	case wl.consoleChan <- ConsoleMessage{
		RenderID:  wl.renderID,
		Message:   message,
		Timestamp: time.Now(),
		Level:     messageLevel(message),
	}:
	default:
	}
}

// messageLevel classifies a log line by its prefix
func messageLevel(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))
	switch {
	case strings.HasPrefix(lower, "error"):
		return "error"
	case strings.HasPrefix(lower, "warning"), strings.HasPrefix(lower, "render warning"):
		return "warning"
	default:
		return "info"
	}
}
