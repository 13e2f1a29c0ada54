package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// Request parameter limits
const (
	MinDimension  = 16
	MaxDimension  = 2000
	DefaultWidth  = 400
	DefaultHeight = 300
	MinFrames     = 1
	MaxFrames     = 360
	DefaultFrames = 20
	MaxWorkers    = 64
	DefaultTile   = 64
)

// Server handles web requests for the sphere tracer
type Server struct {
	port      int
	staticDir string
}

// NewServer creates a new web server serving the viewer from staticDir
func NewServer(port int, staticDir string) *Server {
	return &Server{port: port, staticDir: staticDir}
}

// RenderRequest holds the scene parameters shared by all endpoints
type RenderRequest struct {
	Scene   string `json:"scene"`   // Scene name (e.g., "default")
	Width   int    `json:"width"`   // Image width
	Height  int    `json:"height"`  // Image height
	Frames  int    `json:"frames"`  // Frames per full rotation
	Workers int    `json:"workers"` // Render workers, 0 = CPU count
}

// Handler returns the HTTP routes served by this server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/ws", s.handleWebsocket)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(scene.ListScenes())
}

// parseCommonSceneParams parses the parameters every endpoint accepts
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	query := r.URL.Query()

	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", DefaultWidth, MinDimension, MaxDimension); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(query, "height", DefaultHeight, MinDimension, MaxDimension); err != nil {
		return err
	}
	if req.Frames, err = parseIntParam(query, "frames", DefaultFrames, MinFrames, MaxFrames); err != nil {
		return err
	}
	if req.Workers, err = parseIntParam(query, "workers", 0, 0, MaxWorkers); err != nil {
		return err
	}
	return nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene resolves the requested scene at the requested resolution
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	sceneObj, err := scene.NewScene(req.Scene)
	if err != nil {
		return nil, err
	}
	return sceneObj.WithResolution(req.Width, req.Height), nil
}

// writeJSONError writes an error response with the given status
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := scene.NewScene(sceneName)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Unknown scene: "+sceneName)
		return
	}

	camera := sceneObj.CameraConfig
	shader := sceneObj.Shader()
	response := map[string]interface{}{
		"scene": sceneName,
		"field": string(sceneObj.Kind),
		"defaults": map[string]interface{}{
			"width":       DefaultWidth,
			"height":      DefaultHeight,
			"frames":      DefaultFrames,
			"tileSize":    DefaultTile,
			"columns":     camera.Columns,
			"rows":        camera.Rows,
			"pixelWidth":  camera.PixelWidth,
			"pixelHeight": camera.PixelHeight,
			"eyeDistance": camera.EyeDistance,
			"maxSteps":    sceneObj.MarchConfig.MaxSteps,
			"minDistance": sceneObj.MarchConfig.MinDistance,
			"radius":      sceneObj.Radius,
			"center":      [3]float32{sceneObj.Center.X, sceneObj.Center.Y, sceneObj.Center.Z},
			"near":        shader.Near,
			"far":         shader.Far,
		},
		"limits": map[string]interface{}{
			"width":   map[string]int{"min": MinDimension, "max": MaxDimension},
			"height":  map[string]int{"min": MinDimension, "max": MaxDimension},
			"frames":  map[string]int{"min": MinFrames, "max": MaxFrames},
			"workers": map[string]int{"min": 0, "max": MaxWorkers},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// renderOptions builds the tile renderer options for a request
func renderOptions(req *RenderRequest) renderer.RenderOptions {
	return renderer.RenderOptions{
		TileSize:   DefaultTile,
		NumWorkers: req.Workers,
	}
}
