package geometry

import (
	"sort"

	"github.com/df07/go-pathtrace-core/pkg/core"
	"github.com/df07/go-pathtrace-core/pkg/material"
)

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Shapes      []Shape // Shapes for leaf nodes (nil for internal nodes)
}

// BVH represents a Bounding Volume Hierarchy for fast ray-object intersection.
// It is read-only after construction and safe for concurrent Hit calls.
type BVH struct {
	Root *BVHNode
}

// Leaf threshold: if we have this many or fewer shapes, store them in a leaf node
const leafThreshold = 8

// NewBVH constructs a BVH from a slice of shapes. The slice is copied.
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{}
	}

	shapesCopy := make([]Shape, len(shapes))
	copy(shapesCopy, shapes)
	return &BVH{Root: buildBVH(shapesCopy)}
}

// buildBVH splits at the median along the longest axis of the node's bounds
func buildBVH(shapes []Shape) *BVHNode {
	box := shapes[0].BoundingBox()
	for _, shape := range shapes[1:] {
		box = box.Union(shape.BoundingBox())
	}

	if len(shapes) <= leafThreshold {
		return &BVHNode{BoundingBox: box, Shapes: shapes}
	}

	axis := box.LongestAxis()
	sort.Slice(shapes, func(i, j int) bool {
		return shapes[i].BoundingBox().CenterOn(axis) < shapes[j].BoundingBox().CenterOn(axis)
	})

	mid := len(shapes) / 2
	return &BVHNode{
		BoundingBox: box,
		Left:        buildBVH(shapes[:mid]),
		Right:       buildBVH(shapes[mid:]),
	}
}

// Hit returns the closest intersection with any shape in the BVH
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	if bvh.Root == nil {
		return nil, false
	}
	hit := hitNode(bvh.Root, ray, tMin, tMax)
	return hit, hit != nil
}

func hitNode(node *BVHNode, ray core.Ray, tMin, tMax float64) *material.HitRecord {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return nil
	}

	if node.Shapes != nil {
		var closest *material.HitRecord
		closestSoFar := tMax
		for _, shape := range node.Shapes {
			if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
				closestSoFar = hit.T
				closest = hit
			}
		}
		return closest
	}

	closest := hitNode(node.Left, ray, tMin, tMax)
	closestSoFar := tMax
	if closest != nil {
		closestSoFar = closest.T
	}
	if hit := hitNode(node.Right, ray, tMin, closestSoFar); hit != nil {
		closest = hit
	}
	return closest
}

// BoundingBox returns the bounds of the whole hierarchy
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}

// bvhStats contains statistics about the BVH structure
type bvhStats struct {
	totalNodes  int
	leafNodes   int
	maxDepth    int
	totalShapes int
}

func (bvh *BVH) getStats() bvhStats {
	stats := bvhStats{}
	if bvh.Root != nil {
		collectStats(bvh.Root, 0, &stats)
	}
	return stats
}

func collectStats(node *BVHNode, depth int, stats *bvhStats) {
	stats.totalNodes++
	if depth > stats.maxDepth {
		stats.maxDepth = depth
	}
	if node.Shapes != nil {
		stats.leafNodes++
		stats.totalShapes += len(node.Shapes)
		return
	}
	collectStats(node.Left, depth+1, stats)
	collectStats(node.Right, depth+1, stats)
}
