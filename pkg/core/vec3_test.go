package core

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestVec3_Cross(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec3
		expected Vec3
	}{
		{"x cross y", NewVec3(1, 0, 0), NewVec3(0, 1, 0), NewVec3(0, 0, 1)},
		{"y cross z", NewVec3(0, 1, 0), NewVec3(0, 0, 1), NewVec3(1, 0, 0)},
		{"z cross x", NewVec3(0, 0, 1), NewVec3(1, 0, 0), NewVec3(0, 1, 0)},
		{"anti-commutative", NewVec3(0, 1, 0), NewVec3(1, 0, 0), NewVec3(0, 0, -1)},
		{"parallel vectors", NewVec3(2, 2, 2), NewVec3(1, 1, 1), NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.a.Cross(tt.b)
			if !result.Equals(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_Normalize(t *testing.T) {
	v := NewVec3(3, 4, 12).Normalize()
	if !scalar.EqualWithinAbs(v.Length(), 1.0, 1e-12) {
		t.Errorf("Normalized length should be 1, got %f", v.Length())
	}
	if !scalar.EqualWithinAbs(v.X, 3.0/13.0, 1e-12) {
		t.Errorf("Expected X=%f, got %f", 3.0/13.0, v.X)
	}

	zero := Vec3{}.Normalize()
	if !zero.IsZero() {
		t.Errorf("Zero vector should normalize to zero, got %v", zero)
	}
}

func TestVec3_NearZero(t *testing.T) {
	tests := []struct {
		name     string
		v        Vec3
		expected bool
	}{
		{"exact zero", NewVec3(0, 0, 0), true},
		{"tiny components", NewVec3(1e-9, -1e-9, 5e-9), true},
		{"one component at epsilon", NewVec3(1e-8, 0, 0), false},
		{"one large component", NewVec3(0, 0, 0.1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.NearZero(); got != tt.expected {
				t.Errorf("NearZero(%v) = %t, expected %t", tt.v, got, tt.expected)
			}
		})
	}
}

func TestVec3_ClampAndGamma(t *testing.T) {
	c := NewVec3(-0.5, 0.25, 2).Clamp(0, 1)
	if !c.Equals(NewVec3(0, 0.25, 1)) {
		t.Errorf("Clamp failed, got %v", c)
	}

	g := NewVec3(0.25, 1, 0).GammaCorrect(2.0)
	if !scalar.EqualWithinAbs(g.X, 0.5, 1e-12) || g.Y != 1 || g.Z != 0 {
		t.Errorf("GammaCorrect failed, got %v", g)
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRayAtTime(NewVec3(1, 2, 3), NewVec3(0, 0, -2), 0.5)

	p := ray.At(1.5)
	if !p.Equals(NewVec3(1, 2, 0)) {
		t.Errorf("Expected (1,2,0), got %v", p)
	}
	if ray.Time != 0.5 {
		t.Errorf("Expected time 0.5, got %f", ray.Time)
	}
	if NewRay(ray.Origin, ray.Direction).Time != 0 {
		t.Error("NewRay should start at time zero")
	}
}

func TestDegreesToRadians(t *testing.T) {
	if !scalar.EqualWithinAbs(DegreesToRadians(180), math.Pi, 1e-15) {
		t.Errorf("180 degrees should be pi, got %f", DegreesToRadians(180))
	}
	if !scalar.EqualWithinAbs(DegreesToRadians(90), math.Pi/2, 1e-15) {
		t.Errorf("90 degrees should be pi/2, got %f", DegreesToRadians(90))
	}
}
