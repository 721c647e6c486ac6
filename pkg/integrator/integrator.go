package integrator

import (
	"github.com/df07/go-pathtrace-core/pkg/core"
	"github.com/df07/go-pathtrace-core/pkg/material"
)

// World is what an integrator needs from a scene
type World interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
	GetBackgroundColors() (topColor, bottomColor core.Vec3)
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the radiance arriving along ray
	RayColor(ray core.Ray, world World, sampler core.Sampler) core.Vec3
}
