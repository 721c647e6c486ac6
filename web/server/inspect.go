package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-pathtrace-core/pkg/core"
	"github.com/df07/go-pathtrace-core/pkg/geometry"
	"github.com/df07/go-pathtrace-core/pkg/material"
	"github.com/df07/go-pathtrace-core/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

// InspectResult contains information about an object hit by an inspection ray
type InspectResult struct {
	Hit       bool
	Ray       core.Ray
	HitRecord *material.HitRecord
	Shape     geometry.Shape // The shape that was hit, nil if it could not be identified
}

// lensCenter makes the camera shoot from the middle of the lens
var lensCenter = []float64{0.5, 0.5}

// inspectPixel casts a ray through the center of the pixel and returns the first object hit
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) InspectResult {
	s := (float64(pixelX) + 0.5) / float64(width)
	t := (float64(height-1-pixelY) + 0.5) / float64(height)
	ray := sceneObj.Camera.GetRay(s, t, core.NewSequenceSampler(lensCenter...))

	hit, isHit := sceneObj.Hit(ray, 0.001, math.Inf(1))
	if !isHit {
		return InspectResult{Ray: ray}
	}

	// The scene does not report which shape was hit, so find the one at the same distance
	for _, shape := range sceneObj.Shapes {
		if shapeHit, ok := shape.Hit(ray, 0.001, hit.T+0.001); ok && shapeHit.T == hit.T {
			return InspectResult{Hit: true, Ray: ray, HitRecord: hit, Shape: shape}
		}
	}
	return InspectResult{Hit: true, Ray: ray, HitRecord: hit}
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo extracts material parameters with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

// extractScatterInfo runs one deterministic scatter at the hit so clients can see
// which way light leaves the surface
func extractScatterInfo(result InspectResult) map[string]interface{} {
	if result.HitRecord.Material == nil {
		return map[string]interface{}{"absorbed": true}
	}
	sampler := core.NewSequenceSampler(0.25, 0.5, 0.75)
	scatter, ok := result.HitRecord.Material.Scatter(result.Ray, *result.HitRecord, sampler)
	if !ok {
		return map[string]interface{}{"absorbed": true}
	}
	return map[string]interface{}{
		"absorbed":    false,
		"direction":   vecArray(scatter.Scattered.Direction.Normalize()),
		"attenuation": vecArray(scatter.Attenuation),
	}
}

// extractGeometryInfo extracts shape parameters
func extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vecArray(geom.Center)
		properties["radius"] = geom.Radius
		properties["hollow"] = geom.Radius < 0
		return "sphere", properties

	default:
		return "unknown", properties
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, fmt.Errorf("invalid scene parameters: %w", err))
		return
	}

	sceneObj, config, err := s.createScene(req)
	if err != nil {
		writeError(w, err)
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, fmt.Errorf("invalid x coordinate"))
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, fmt.Errorf("invalid y coordinate"))
		return
	}
	if pixelX < 0 || pixelX >= config.Width || pixelY < 0 || pixelY >= config.Height {
		writeError(w, fmt.Errorf("pixel coordinates out of bounds"))
		return
	}

	result := inspectPixel(sceneObj, config.Width, config.Height, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := extractMaterialInfo(result.HitRecord.Material)
	geometryType, geometryProps := extractGeometryInfo(result.Shape)

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vecArray(result.HitRecord.Point),
		Normal:       vecArray(result.HitRecord.Normal),
		Distance:     result.HitRecord.T,
		FrontFace:    result.HitRecord.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
			"scatter":  extractScatterInfo(result),
		},
	})
}
