package scene

import (
	"github.com/df07/go-pathtrace-core/pkg/core"
	"github.com/df07/go-pathtrace-core/pkg/material"
	"github.com/df07/go-pathtrace-core/pkg/renderer"
)

// NewGlassScene creates a row of dielectric spheres with increasing refractive index
// in front of a row of colored diffuse spheres, plus a thin glass shell and an
// air bubble inside water, which shows total internal reflection.
func NewGlassScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := applyCameraOverrides(renderer.CameraConfig{
		Center:      core.NewVec3(0, 1.2, 5),
		LookAt:      core.NewVec3(0, 0.6, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        35.0,
		AspectRatio: 16.0 / 9.0,
	}, cameraOverrides)

	samplingConfig := renderer.DefaultSamplingConfig()
	samplingConfig.SamplesPerPixel = 300

	s := newScene(cameraConfig, samplingConfig)

	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.6, 0.6, 0.6)))

	// Backdrop
	backdrop := []core.Vec3{
		core.NewVec3(0.8, 0.2, 0.2),
		core.NewVec3(0.2, 0.8, 0.2),
		core.NewVec3(0.2, 0.2, 0.8),
		core.NewVec3(0.8, 0.8, 0.2),
	}
	for i := 0; i < 8; i++ {
		x := -3.5 + float64(i)
		s.AddSphere(core.NewVec3(x, 0.5, -3), 0.5, material.NewLambertian(backdrop[i%len(backdrop)]))
	}

	indices := []float64{1.0, 1.33, 1.5, 2.4}
	for i, ior := range indices {
		x := -1.8 + 1.2*float64(i)
		s.AddSphere(core.NewVec3(x, 0.5, 0), 0.5, material.NewDielectric(ior))
	}

	// Thin shell: negative radius flips the normals of the inner surface
	s.AddSphere(core.NewVec3(-0.9, 0.3, 1.5), 0.3, material.NewDielectric(1.5))
	s.AddSphere(core.NewVec3(-0.9, 0.3, 1.5), -0.28, material.NewDielectric(1.5))

	// Air bubble in water: the index is relative to the surrounding medium
	s.AddSphere(core.NewVec3(0.9, 0.3, 1.5), 0.3, material.NewDielectric(1.33))
	s.AddSphere(core.NewVec3(0.9, 0.3, 1.5), 0.15, material.NewDielectric(1.0/1.33))

	s.Preprocess()
	return s
}
