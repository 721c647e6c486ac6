package renderer

import (
	"math"

	"github.com/df07/go-pathtrace-core/pkg/core"
)

// CameraConfig contains all parameters needed to create a camera
type CameraConfig struct {
	Center        core.Vec3 // Camera position (lookfrom)
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction, must not be parallel to LookAt - Center
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter, 0 for a pinhole camera
	FocusDistance float64   // Distance to the plane in focus, 0 means |LookAt - Center|
}

// MergeCameraConfig returns base with every non-zero field of override applied on top
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if !override.Center.IsZero() {
		result.Center = override.Center
	}
	if !override.LookAt.IsZero() {
		result.LookAt = override.LookAt
	}
	if !override.Up.IsZero() {
		result.Up = override.Up
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.Aperture != 0 {
		result.Aperture = override.Aperture
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}
	return result
}

// Camera is a thin-lens camera. It is immutable after construction and safe for
// concurrent use; lens samples come from the sampler passed to GetRay.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // Right, up and backward basis vectors
	lensRadius      float64
	focusDistance   float64
}

// NewCamera creates a camera from config.
// The caller must ensure Center != LookAt and that Up is not parallel to the
// view direction; the basis is undefined otherwise.
// A FocusDistance <= 0 (negative included) is replaced by |LookAt - Center|.
// The lens radius is |Aperture| / 2, so the sign of Aperture does not matter.
func NewCamera(config CameraConfig) *Camera {
	theta := core.DegreesToRadians(config.VFov)
	h := math.Tan(theta / 2)
	viewportHeight := 2.0 * h
	viewportWidth := config.AspectRatio * viewportHeight

	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = config.Center.Subtract(config.LookAt).Length()
	}

	origin := config.Center
	horizontal := u.Multiply(focusDistance * viewportWidth)
	vertical := v.Multiply(focusDistance * viewportHeight)
	lowerLeftCorner := origin.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      math.Abs(config.Aperture) / 2,
		focusDistance:   focusDistance,
	}
}

// GetRay generates a ray for screen coordinates (s, t), nominally in [0, 1].
// Values outside that range extrapolate linearly. The direction is not normalized.
// A pinhole camera (zero aperture) draws nothing from the sampler.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	offset := core.Vec3{}
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
		offset = c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))
	}

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin).
		Subtract(offset)

	return core.NewRay(c.origin.Add(offset), direction)
}

// GetCameraForward returns the unit view direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// Origin returns the lens center
func (c *Camera) Origin() core.Vec3 { return c.origin }

// Basis returns the right (u), up (v) and backward (w) unit vectors
func (c *Camera) Basis() (u, v, w core.Vec3) { return c.u, c.v, c.w }

// Horizontal returns the viewport's horizontal extent on the focus plane
func (c *Camera) Horizontal() core.Vec3 { return c.horizontal }

// Vertical returns the viewport's vertical extent on the focus plane
func (c *Camera) Vertical() core.Vec3 { return c.vertical }

// LowerLeftCorner returns the world position of screen coordinate (0, 0)
func (c *Camera) LowerLeftCorner() core.Vec3 { return c.lowerLeftCorner }

// LensRadius returns half the aperture
func (c *Camera) LensRadius() float64 { return c.lensRadius }

// FocusDistance returns the distance from the lens to the plane in focus
func (c *Camera) FocusDistance() float64 { return c.focusDistance }
