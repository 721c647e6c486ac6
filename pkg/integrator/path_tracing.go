package integrator

import (
	"math"

	"github.com/df07/go-pathtrace-core/pkg/core"
)

// shadowAcneEpsilon keeps scattered rays from re-hitting the surface they left
const shadowAcneEpsilon = 0.001

// PathTracingIntegrator implements unidirectional path tracing with a fixed depth limit
type PathTracingIntegrator struct {
	MaxDepth int
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	return &PathTracingIntegrator{MaxDepth: maxDepth}
}

// RayColor computes the color for a single ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world World, sampler core.Sampler) core.Vec3 {
	return pt.rayColorRecursive(ray, world, sampler, pt.MaxDepth)
}

func (pt *PathTracingIntegrator) rayColorRecursive(ray core.Ray, world World, sampler core.Sampler, depth int) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := world.Hit(ray, shadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return backgroundGradient(ray, world)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return core.Vec3{}
	}

	return scatter.Attenuation.MultiplyVec(
		pt.rayColorRecursive(scatter.Scattered, world, sampler, depth-1))
}

// backgroundGradient returns a vertical sky gradient based on ray direction
func backgroundGradient(r core.Ray, world World) core.Vec3 {
	topColor, bottomColor := world.GetBackgroundColors()

	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return bottomColor.Multiply(1.0 - t).Add(topColor.Multiply(t))
}
