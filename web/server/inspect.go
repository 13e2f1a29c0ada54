package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-tracer/pkg/animation"
	"github.com/df07/go-sphere-tracer/pkg/math"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// InspectResponse represents the JSON response for pixel inspection.
// An escaped ray's march usually overflows to +Inf; JSON has no encoding for
// that, so non-finite values are reported as null with Escaped set.
type InspectResponse struct {
	Hit       bool        `json:"hit"`
	Escaped   bool        `json:"escaped"` // Distance, Point or Field overflowed
	Distance  *float32    `json:"distance"`
	Steps     int         `json:"steps"`
	Point     *[3]float32 `json:"point"`     // Where the march stopped
	Direction [3]float32  `json:"direction"` // Normalized ray direction
	Field     *float32    `json:"field"`     // Distance estimate at the stop point
	Texel     [4]uint8    `json:"texel"`
	Offset    [3]float32  `json:"offset"`
	Frame     int         `json:"frame"`
}

func isFinite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

// finite returns nil for NaN and infinities
func finite(v float32) *float32 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

func finitePoint(p math.Vec3) *[3]float32 {
	if !isFinite(p.X) || !isFinite(p.Y) || !isFinite(p.Z) {
		return nil
	}
	return &[3]float32{p.X, p.Y, p.Z}
}

// inspectPixel marches the ray through one pixel of the given frame
func inspectPixel(sceneObj *scene.Scene, frames, frameIndex, pixelX, pixelY int) InspectResponse {
	raytracer := sceneObj.NewRaytracer(renderer.DefaultRenderOptions(), nil)
	offset := animation.Offset(frameIndex, frames, sceneObj.Radius)
	field := sceneObj.Field(offset)

	result, texel := raytracer.TracePixel(pixelX, pixelY, field)
	ray := raytracer.Camera().GetRay(pixelX, pixelY)
	point := ray.At(result.Distance)

	response := InspectResponse{
		Hit:       result.Hit,
		Distance:  finite(result.Distance),
		Steps:     result.Steps,
		Point:     finitePoint(point),
		Direction: [3]float32{ray.Direction.X, ray.Direction.Y, ray.Direction.Z},
		Field:     finite(field.Evaluate(point)),
		Texel:     [4]uint8{texel.R, texel.G, texel.B, texel.A},
		Offset:    [3]float32{offset.X, offset.Y, offset.Z},
		Frame:     frameIndex,
	}
	response.Escaped = response.Distance == nil || response.Point == nil || response.Field == nil
	return response
}

// handleInspect handles single pixel march inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	inspectReq := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	frameIndex, err := parseIntParam(r.URL.Query(), "frame", 0, 0, inspectReq.Frames-1)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Parse pixel coordinates
	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= inspectReq.Width || pixelY < 0 || pixelY >= inspectReq.Height {
		writeJSONError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	sceneObj, err := s.createScene(inspectReq)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Unknown scene: "+inspectReq.Scene)
		return
	}

	response := inspectPixel(sceneObj, inspectReq.Frames, frameIndex, pixelX, pixelY)

	// Encode before writing the status so a failure can still be reported
	data, err := json.Marshal(response)
	if err != nil {
		log.Printf("Error encoding inspect response: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to encode inspection result")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(append(data, '\n'))
}
