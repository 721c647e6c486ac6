package geometry

import (
	"math/rand"
	"testing"

	"github.com/df07/go-pathtrace-core/pkg/core"
	"github.com/df07/go-pathtrace-core/pkg/material"
)

// mockShape has a fixed bounding box and hit function
type mockShape struct {
	box   core.AABB
	hitFn func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}

func (m mockShape) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return m.hitFn(ray, tMin, tMax)
}

func (m mockShape) BoundingBox() core.AABB {
	return m.box
}

func neverHit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return nil, false
}

// hitAt hits at a fixed t for rays travelling in +X
func hitAt(tValue float64) func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
		if ray.Direction.X > 0 && tValue >= tMin && tValue <= tMax {
			return &material.HitRecord{T: tValue}, true
		}
		return nil, false
	}
}

func unitBoxAt(x float64) core.AABB {
	return core.NewAABB(core.NewVec3(x, 0, 0), core.NewVec3(x+1, 1, 1))
}

func TestBVH_LeafThresholdBoundary(t *testing.T) {
	shapes := make([]Shape, leafThreshold)
	for i := range shapes {
		shapes[i] = mockShape{box: unitBoxAt(float64(i)), hitFn: neverHit}
	}

	stats := NewBVH(shapes).getStats()
	if stats.totalNodes != 1 || stats.leafNodes != 1 {
		t.Errorf("Expected a single leaf for %d shapes, got %+v", len(shapes), stats)
	}

	shapes = append(shapes, mockShape{box: unitBoxAt(float64(leafThreshold)), hitFn: neverHit})
	stats = NewBVH(shapes).getStats()
	if stats.leafNodes < 2 {
		t.Errorf("Expected a split for %d shapes, got %+v", len(shapes), stats)
	}
	if stats.totalShapes != len(shapes) {
		t.Errorf("Expected %d shapes in leaves, got %d", len(shapes), stats.totalShapes)
	}
}

func TestBVH_Empty(t *testing.T) {
	bvh := NewBVH(nil)
	if bvh.Root != nil {
		t.Error("Expected nil root for empty BVH")
	}
	hit, isHit := bvh.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)), 0.001, 1000)
	if isHit || hit != nil {
		t.Error("Expected no hit for empty BVH")
	}
	if bvh.BoundingBox() != (core.AABB{}) {
		t.Error("Expected zero bounds for empty BVH")
	}
}

func TestBVH_ClosestHitAcrossNodes(t *testing.T) {
	// Twenty shapes force several levels; the closest hit lives in the last leaf
	shapes := make([]Shape, 20)
	for i := range shapes {
		shapes[i] = mockShape{box: unitBoxAt(float64(i)), hitFn: hitAt(float64(30 - i))}
	}

	bvh := NewBVH(shapes)
	hit, isHit := bvh.Hit(core.NewRay(core.NewVec3(-1, 0.5, 0.5), core.NewVec3(1, 0, 0)), 0.001, 1000)
	if !isHit {
		t.Fatal("Expected hit")
	}
	if hit.T != 11 {
		t.Errorf("Expected closest hit at t=11, got t=%f", hit.T)
	}

	if stats := bvh.getStats(); stats.maxDepth == 0 {
		t.Error("Expected more than one level for 20 shapes")
	}
}

func TestBVH_BoxHitShapeMiss(t *testing.T) {
	bvh := NewBVH([]Shape{mockShape{box: core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(2, 2, 2)), hitFn: neverHit}})

	hit, isHit := bvh.Hit(core.NewRay(core.NewVec3(-1, 1, 1), core.NewVec3(1, 0, 0)), 0.001, 1000)
	if isHit || hit != nil {
		t.Error("Expected miss when ray hits bounding box but misses shape")
	}
}

func TestBVH_DoesNotModifyInput(t *testing.T) {
	shapes := make([]Shape, 20)
	for i := range shapes {
		shapes[i] = mockShape{box: unitBoxAt(float64(19 - i)), hitFn: neverHit}
	}
	first := shapes[0].BoundingBox()

	NewBVH(shapes)
	if shapes[0].BoundingBox() != first {
		t.Error("NewBVH reordered the caller's slice")
	}
}

func TestBVH_MatchesHittableList(t *testing.T) {
	random := rand.New(rand.NewSource(5))
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	list := NewHittableList()
	for i := 0; i < 200; i++ {
		center := core.NewVec3(random.Float64()*20-10, random.Float64()*4, random.Float64()*20-10)
		list.Add(NewSphere(center, 0.1+random.Float64()*0.4, mat))
	}
	// Ground and a hollow shell
	list.Add(NewSphere(core.NewVec3(0, -1000, 0), 1000, mat))
	list.Add(NewSphere(core.NewVec3(0, 1, 0), -0.9, mat))

	bvh := NewBVH(list.Shapes)
	if bvh.BoundingBox() != list.BoundingBox() {
		t.Errorf("Bounds differ: bvh %v, list %v", bvh.BoundingBox(), list.BoundingBox())
	}

	for i := 0; i < 2000; i++ {
		origin := core.NewVec3(random.Float64()*30-15, random.Float64()*10, random.Float64()*30-15)
		direction := core.NewVec3(random.Float64()*2-1, random.Float64()*2-1, random.Float64()*2-1)
		ray := core.NewRay(origin, direction)

		listHit, listOK := list.Hit(ray, 0.001, 1e9)
		bvhHit, bvhOK := bvh.Hit(ray, 0.001, 1e9)
		if listOK != bvhOK {
			t.Fatalf("Ray %d: list hit=%v, bvh hit=%v", i, listOK, bvhOK)
		}
		if listOK && listHit.T != bvhHit.T {
			t.Fatalf("Ray %d: list t=%f, bvh t=%f", i, listHit.T, bvhHit.T)
		}
	}
}
