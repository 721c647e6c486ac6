package geometry

import (
	"github.com/df07/go-pathtrace-core/pkg/core"
	"github.com/df07/go-pathtrace-core/pkg/material"
)

// Shape interface for objects that can be hit by rays
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
	BoundingBox() core.AABB
}
