package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-pathtrace-core/pkg/core"
	"github.com/df07/go-pathtrace-core/pkg/geometry"
	"github.com/df07/go-pathtrace-core/pkg/material"
	"github.com/df07/go-pathtrace-core/pkg/renderer"
)

// ErrUnknownScene is returned by NewScene for names that are not registered
var ErrUnknownScene = errors.New("unknown scene")

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *renderer.Camera
	CameraConfig   renderer.CameraConfig
	Shapes         []geometry.Shape // Objects in the scene
	SamplingConfig renderer.SamplingConfig
	TopColor       core.Vec3 // Sky color straight up
	BottomColor    core.Vec3 // Sky color at the horizon and below

	world *geometry.HittableList
	bvh   *geometry.BVH // Built by Preprocess; nil means linear search
}

// newScene builds an empty scene with the standard sky around the given camera
func newScene(cameraConfig renderer.CameraConfig, samplingConfig renderer.SamplingConfig) *Scene {
	return &Scene{
		Camera:         renderer.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		Shapes:         make([]geometry.Shape, 0),
		SamplingConfig: samplingConfig,
		TopColor:       core.NewVec3(0.5, 0.7, 1.0),
		BottomColor:    core.NewVec3(1.0, 1.0, 1.0),
		world:          geometry.NewHittableList(),
	}
}

// Add appends shapes to the scene. Call Preprocess again before rendering.
func (s *Scene) Add(shapes ...geometry.Shape) {
	for _, shape := range shapes {
		s.Shapes = append(s.Shapes, shape)
		s.world.Add(shape)
	}
	s.bvh = nil
}

// Preprocess builds the acceleration structure. It must not run concurrently
// with rendering.
func (s *Scene) Preprocess() {
	s.bvh = geometry.NewBVH(s.Shapes)
}

// AddSphere is a shorthand for adding a sphere with the given material
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) {
	s.Add(geometry.NewSphere(center, radius, mat))
}

// Hit returns the closest intersection with any shape in the scene
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	if s.bvh != nil {
		return s.bvh.Hit(ray, tMin, tMax)
	}
	return s.world.Hit(ray, tMin, tMax)
}

// GetBackgroundColors returns the sky gradient colors
func (s *Scene) GetBackgroundColors() (topColor, bottomColor core.Vec3) {
	return s.TopColor, s.BottomColor
}

// GetCamera returns the scene camera
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetPrimitiveCount returns the number of shapes in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Shapes)
}

// Constructor builds a built-in scene, applying an optional camera override
type Constructor func(cameraOverrides ...renderer.CameraConfig) *Scene

var builtins = map[string]Constructor{
	"default": NewDefaultScene,
	"random": func(cameraOverrides ...renderer.CameraConfig) *Scene {
		return NewRandomSpheresScene(defaultRandomSeed, cameraOverrides...)
	},
	"glass": NewGlassScene,
}

// NewScene looks up a built-in scene by name
func NewScene(name string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	constructor, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownScene, name, Names())
	}
	return constructor(cameraOverrides...), nil
}

// Names lists the built-in scenes in alphabetical order
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// applyCameraOverrides merges the first override, if any, into base
func applyCameraOverrides(base renderer.CameraConfig, overrides []renderer.CameraConfig) renderer.CameraConfig {
	if len(overrides) == 0 {
		return base
	}
	return renderer.MergeCameraConfig(base, overrides[0])
}
