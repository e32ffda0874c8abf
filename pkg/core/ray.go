package core

import "math"

// Medium is an opaque handle to the participating medium a ray or
// interaction lives in. The kernel stores and forwards it but never
// inspects it; the volumetric subsystem owns its meaning.
type Medium interface{}

// MediumInterface names the media on either side of a surface boundary
type MediumInterface struct {
	Inside  Medium
	Outside Medium
}

// Ray represents a parametric line segment r(t) = Origin + t*Direction
// for t in (0, TMax). Direction is not required to be unit length.
type Ray struct {
	Origin    Vec3
	Direction Vec3

	// TMax bounds the valid parametric range, confining the ray to a
	// finite segment. Traversal callers shrink it as nearer hits are
	// found.
	TMax float64

	// Time is the shutter time for animated scenes
	Time float64

	// Medium contains the ray's origin, if the caller tracks media
	Medium Medium
}

// NewRay creates a ray with an unbounded parametric range at time zero
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, TMax: math.Inf(1)}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// RayDifferential is a primary ray along with two auxiliary rays offset
// from it by one sample in the x and y directions on the film plane. The
// auxiliary origins and directions are meaningful only while
// HasDifferentials is set.
type RayDifferential struct {
	Ray

	HasDifferentials bool

	// XOrigin and XDirection describe the ray one sample over in x
	XOrigin    Vec3
	XDirection Vec3

	// YOrigin and YDirection describe the ray one sample over in y
	YOrigin    Vec3
	YDirection Vec3
}

// NewRayDifferential wraps a primary ray with no differentials set
func NewRayDifferential(r Ray) RayDifferential {
	return RayDifferential{Ray: r}
}

// ScaleSampleDistance re-centers both auxiliary rays around the primary
// ray with their offsets scaled by the given factor. Called when adaptive
// sampling changes the effective sample spacing on the film plane.
func (r *RayDifferential) ScaleSampleDistance(factor float64) {
	r.XOrigin = r.Origin.Add(r.XOrigin.Subtract(r.Origin).Multiply(factor))
	r.YOrigin = r.Origin.Add(r.YOrigin.Subtract(r.Origin).Multiply(factor))
	r.XDirection = r.Direction.Add(r.XDirection.Subtract(r.Direction).Multiply(factor))
	r.YDirection = r.Direction.Add(r.YDirection.Subtract(r.Direction).Multiply(factor))
}
