package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-pathtrace-core/pkg/renderer"
	"github.com/df07/go-pathtrace-core/pkg/scene"
)

// Server handles web requests for the path tracer
type Server struct {
	port int
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene      string  `json:"scene"`      // Built-in scene name
	Width      int     `json:"width"`      // Image width
	Height     int     `json:"height"`     // Image height, derived from the camera aspect ratio when omitted
	MaxSamples int     `json:"maxSamples"` // Samples per pixel
	MaxDepth   int     `json:"maxDepth"`   // Maximum bounces
	Seed       int64   `json:"seed"`       // Render seed
	Aperture   float64 `json:"aperture"`   // Lens aperture override, 0 keeps the scene's
	Focus      float64 `json:"focus"`      // Focus distance override, 0 keeps the scene's
	Format     string  `json:"format"`     // "png" or "json"
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int64   `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	BlackSamples   int     `json:"blackSamples"`
	ElapsedMs      int64   `json:"elapsedMs"`
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
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
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"scenes": scene.Names()})
}

// handleSceneConfig returns the default camera and sampling configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := scene.NewScene(sceneName)
	if err != nil {
		writeError(w, err)
		return
	}

	cam := sceneObj.CameraConfig
	sampling := sceneObj.SamplingConfig
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scene": sceneName,
		"camera": map[string]interface{}{
			"center":        [3]float64{cam.Center.X, cam.Center.Y, cam.Center.Z},
			"lookAt":        [3]float64{cam.LookAt.X, cam.LookAt.Y, cam.LookAt.Z},
			"vfov":          cam.VFov,
			"aspectRatio":   cam.AspectRatio,
			"aperture":      cam.Aperture,
			"focusDistance": sceneObj.Camera.FocusDistance(),
		},
		"defaults": map[string]interface{}{
			"width":           sampling.Width,
			"samplesPerPixel": sampling.SamplesPerPixel,
			"maxDepth":        sampling.MaxDepth,
			"seed":            sampling.Seed,
		},
		"primitives": sceneObj.GetPrimitiveCount(),
	})
}

// parseRenderRequest parses and validates request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene"), Format: query.Get("format")}
	if req.Scene == "" {
		req.Scene = "default"
	}
	switch req.Format {
	case "":
		req.Format = "png"
	case "png", "json":
	default:
		return nil, fmt.Errorf("format must be png or json, got: %s", req.Format)
	}

	defaults := renderer.DefaultSamplingConfig()
	var err error
	if req.Width, err = parseIntParam(query, "width", defaults.Width, 16, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 0, 0, 2000); err != nil {
		return nil, err
	}
	if req.MaxSamples, err = parseIntParam(query, "maxSamples", 10, 1, 10000); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", defaults.MaxDepth, 1, 1000); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(query, "seed", int(defaults.Seed), math.MinInt32, math.MaxInt32)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)
	if req.Aperture, err = parseFloatParam(query, "aperture", 0, 0, 10); err != nil {
		return nil, err
	}
	if req.Focus, err = parseFloatParam(query, "focus", 0, 0, 1e4); err != nil {
		return nil, err
	}

	if req.Width > 800 && req.MaxSamples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// createScene creates a built-in scene with the request's camera overrides
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, renderer.SamplingConfig, error) {
	sceneObj, err := scene.NewScene(req.Scene, renderer.CameraConfig{Aperture: req.Aperture, FocusDistance: req.Focus})
	if err != nil {
		return nil, renderer.SamplingConfig{}, err
	}

	config := sceneObj.SamplingConfig
	config.Width = req.Width
	config.Height = req.Height
	if config.Height == 0 {
		config.Height = max(1, int(math.Round(float64(req.Width)/sceneObj.CameraConfig.AspectRatio)))
	}
	config.SamplesPerPixel = req.MaxSamples
	config.MaxDepth = req.MaxDepth
	config.Seed = req.Seed
	return sceneObj, config, nil
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

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError reports unknown scenes as 404 and everything else as 400
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, scene.ErrUnknownScene) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
