package server

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/df07/go-pathtrace-core/pkg/renderer"
)

// RenderResponse is the body of a JSON-format render
type RenderResponse struct {
	Scene     string           `json:"scene"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	ImageData string           `json:"imageData"` // Base64 encoded PNG
	Stats     Stats            `json:"stats"`
	Console   []ConsoleMessage `json:"console"`
}

// handleRender renders a built-in scene in one pass and returns it as PNG or JSON
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	sceneObj, config, err := s.createScene(req)
	if err != nil {
		writeError(w, err)
		return
	}

	consoleChan := make(chan ConsoleMessage, consoleBufferSize)
	logger := NewWebLogger(consoleChan)

	startTime := time.Now()
	img, renderStats := renderer.NewRaytracer(sceneObj, config, logger).RenderPass()
	stats := Stats{
		TotalPixels:    renderStats.TotalPixels,
		TotalSamples:   int64(renderStats.TotalSamples),
		AverageSamples: renderStats.AverageSamples,
		BlackSamples:   renderStats.BlackSamples,
		ElapsedMs:      time.Since(startTime).Milliseconds(),
	}
	close(consoleChan)

	if req.Format == "json" {
		imageData, err := imageToBase64PNG(img)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		response := RenderResponse{
			Scene:     req.Scene,
			Width:     config.Width,
			Height:    config.Height,
			ImageData: imageData,
			Stats:     stats,
		}
		for msg := range consoleChan {
			response.Console = append(response.Console, msg)
		}
		writeJSON(w, http.StatusOK, response)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Render-Samples", strconv.FormatInt(stats.TotalSamples, 10))
	w.Header().Set("X-Render-Elapsed-Ms", strconv.FormatInt(stats.ElapsedMs, 10))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
