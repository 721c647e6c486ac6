package scene

import (
	"math/rand"

	"github.com/df07/go-pathtrace-core/pkg/core"
	"github.com/df07/go-pathtrace-core/pkg/material"
	"github.com/df07/go-pathtrace-core/pkg/renderer"
)

const defaultRandomSeed = 1

// NewRandomSpheresScene creates the field of small random spheres around three large
// ones. The layout depends only on seed.
func NewRandomSpheresScene(seed int64, cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := applyCameraOverrides(renderer.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20.0,
		AspectRatio:   16.0 / 9.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}, cameraOverrides)

	s := newScene(cameraConfig, renderer.DefaultSamplingConfig())
	random := rand.New(rand.NewSource(seed))

	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	randomColor := func(min, max float64) core.Vec3 {
		span := max - min
		return core.NewVec3(
			min+span*random.Float64(),
			min+span*random.Float64(),
			min+span*random.Float64(),
		)
	}

	clearing := core.NewVec3(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := random.Float64()
			center := core.NewVec3(float64(a)+0.9*random.Float64(), 0.2, float64(b)+0.9*random.Float64())
			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			switch {
			case chooseMat < 0.8:
				albedo := randomColor(0, 1).MultiplyVec(randomColor(0, 1))
				s.AddSphere(center, 0.2, material.NewLambertian(albedo))
			case chooseMat < 0.95:
				albedo := randomColor(0.5, 1)
				fuzz := 0.5 * random.Float64()
				s.AddSphere(center, 0.2, material.NewMetal(albedo, fuzz))
			default:
				s.AddSphere(center, 0.2, material.NewDielectric(1.5))
			}
		}
	}

	s.AddSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5))
	s.AddSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1)))
	s.AddSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0))

	s.Preprocess()
	return s
}
