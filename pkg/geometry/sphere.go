package geometry

import (
	"math"

	"github.com/df07/go-geometry-kernel/pkg/core"
)

// Sphere is a sphere (or partial sphere) of the given radius centered at
// the origin of its object space. The z-clip range and maximum azimuthal
// angle cut the full sphere down to a band or wedge; the defaults keep the
// whole surface.
type Sphere struct {
	shapeData
	radius   float64
	zMin     float64
	zMax     float64
	thetaMin float64
	thetaMax float64
	phiMax   float64
}

// NewSphere creates a sphere positioned by the shared objectToWorld
// transform. zMin and zMax (given in any order) clip the sphere along its
// z axis and are clamped to [-radius, radius]; phiMax, in radians, clips
// it azimuthally and is clamped to [0, 2pi].
func NewSphere(objectToWorld *core.Transform, reverseOrientation bool, radius, zMin, zMax, phiMax float64) *Sphere {
	lo := clamp(math.Min(zMin, zMax), -radius, radius)
	hi := clamp(math.Max(zMin, zMax), -radius, radius)

	var thetaMin, thetaMax float64
	if radius > 0 {
		thetaMin = math.Acos(clamp(lo/radius, -1, 1))
		thetaMax = math.Acos(clamp(hi/radius, -1, 1))
	}

	return &Sphere{
		shapeData: newShapeData(objectToWorld, reverseOrientation),
		radius:    radius,
		zMin:      lo,
		zMax:      hi,
		thetaMin:  thetaMin,
		thetaMax:  thetaMax,
		phiMax:    clamp(phiMax, 0, 2*math.Pi),
	}
}

// ObjectBound returns the object-space bounding box of the clipped sphere
func (s *Sphere) ObjectBound() core.Bounds3 {
	b, _ := core.Bounds3FromCorners(
		core.NewVec3(-s.radius, -s.radius, s.zMin),
		core.NewVec3(s.radius, s.radius, s.zMax),
	)
	return b
}

// WorldBound returns the world-space bounding box via the generic corner
// warp
func (s *Sphere) WorldBound() core.Bounds3 {
	return s.objectToWorld.ApplyBounds(s.ObjectBound())
}

// SurfaceArea returns the area of the clipped sphere
func (s *Sphere) SurfaceArea() float64 {
	return s.phiMax * s.radius * (s.zMax - s.zMin)
}

// findClippedHit solves the quadric against the object-space ray and
// returns the nearest root that survives the z and phi clip tests. When
// the nearer root fails the clip, the farther root is still tried before
// giving up.
func (s *Sphere) findClippedHit(ray core.Ray, oErr, dErr core.Vec3) (tHit core.ErrFloat, pHit core.Vec3, phi float64, ok bool) {
	if s.radius <= 0 {
		return core.ErrFloat{}, core.Vec3{}, 0, false
	}

	ox := core.NewErrFloatWithError(ray.Origin.X, oErr.X)
	oy := core.NewErrFloatWithError(ray.Origin.Y, oErr.Y)
	oz := core.NewErrFloatWithError(ray.Origin.Z, oErr.Z)
	dx := core.NewErrFloatWithError(ray.Direction.X, dErr.X)
	dy := core.NewErrFloatWithError(ray.Direction.Y, dErr.Y)
	dz := core.NewErrFloatWithError(ray.Direction.Z, dErr.Z)

	a := dx.Mul(dx).Add(dy.Mul(dy)).Add(dz.Mul(dz))
	b := dx.Mul(ox).Add(dy.Mul(oy)).Add(dz.Mul(oz)).MulScalar(2)
	c := ox.Mul(ox).Add(oy.Mul(oy)).Add(oz.Mul(oz)).
		Sub(core.NewErrFloat(s.radius).Mul(core.NewErrFloat(s.radius)))

	t0, t1, ok := core.Quadratic(a, b, c)
	if !ok {
		return core.ErrFloat{}, core.Vec3{}, 0, false
	}

	// Reject the parametric range conservatively using the error bounds
	if t0.UpperBound() > ray.TMax || t1.LowerBound() <= 0 {
		return core.ErrFloat{}, core.Vec3{}, 0, false
	}
	tShapeHit := t0
	if tShapeHit.LowerBound() <= 0 {
		tShapeHit = t1
		if tShapeHit.UpperBound() > ray.TMax {
			return core.ErrFloat{}, core.Vec3{}, 0, false
		}
	}

	pHit, phi = s.hitPointAndPhi(ray, tShapeHit.Value())
	if s.clipped(pHit, phi) {
		if tShapeHit.Value() == t1.Value() {
			return core.ErrFloat{}, core.Vec3{}, 0, false
		}
		if t1.UpperBound() > ray.TMax {
			return core.ErrFloat{}, core.Vec3{}, 0, false
		}
		tShapeHit = t1
		pHit, phi = s.hitPointAndPhi(ray, tShapeHit.Value())
		if s.clipped(pHit, phi) {
			return core.ErrFloat{}, core.Vec3{}, 0, false
		}
	}

	return tShapeHit, pHit, phi, true
}

// hitPointAndPhi evaluates the hit point, refines it back onto the sphere
// surface, and computes its azimuthal angle in [0, 2pi)
func (s *Sphere) hitPointAndPhi(ray core.Ray, t float64) (core.Vec3, float64) {
	pHit := ray.At(t)
	if l := pHit.Length(); l > 0 {
		pHit = pHit.Multiply(s.radius / l)
	}
	if pHit.X == 0 && pHit.Y == 0 {
		pHit.X = 1e-5 * s.radius
	}
	phi := math.Atan2(pHit.Y, pHit.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return pHit, phi
}

// clipped reports whether the hit point falls outside the z or phi clip
// ranges
func (s *Sphere) clipped(pHit core.Vec3, phi float64) bool {
	if s.zMin > -s.radius && pHit.Z < s.zMin {
		return true
	}
	if s.zMax < s.radius && pHit.Z > s.zMax {
		return true
	}
	return phi > s.phiMax
}

// Intersect returns the nearest sphere intersection along the world-space
// ray in (0, ray.TMax), with the interaction expressed back in world
// space. The quadric is solved in error-bounded arithmetic so roots whose
// error interval overlaps the parametric range limits are rejected rather
// than accepted by luck. Spheres ignore testAlphaTexture.
func (s *Sphere) Intersect(ray core.Ray, testAlphaTexture bool) (*SurfaceInteraction, float64, bool) {
	objRay, oErr, dErr := s.worldToObject.ApplyRayWithError(ray)

	tShapeHit, pHit, phi, ok := s.findClippedHit(objRay, oErr, dErr)
	if !ok {
		return nil, 0, false
	}

	// Parametric representation of the hit
	var u float64
	if s.phiMax > 0 {
		u = phi / s.phiMax
	}
	theta := math.Acos(clamp(pHit.Z/s.radius, -1, 1))
	thetaSpan := s.thetaMax - s.thetaMin
	var v float64
	if thetaSpan != 0 {
		v = (theta - s.thetaMin) / thetaSpan
	}

	// Analytic position partials
	zRadius := math.Sqrt(pHit.X*pHit.X + pHit.Y*pHit.Y)
	invZRadius := 1 / zRadius
	cosPhi := pHit.X * invZRadius
	sinPhi := pHit.Y * invZRadius
	dpdu := core.NewVec3(-s.phiMax*pHit.Y, s.phiMax*pHit.X, 0)
	dpdv := core.NewVec3(pHit.Z*cosPhi, pHit.Z*sinPhi, -s.radius*math.Sin(theta)).Multiply(thetaSpan)

	// Normal partials from the Weingarten equations
	d2pduu := core.NewVec3(pHit.X, pHit.Y, 0).Multiply(-s.phiMax * s.phiMax)
	d2pduv := core.NewVec3(-sinPhi, cosPhi, 0).Multiply(thetaSpan * pHit.Z * s.phiMax)
	d2pdvv := core.NewVec3(pHit.X, pHit.Y, pHit.Z).Multiply(-thetaSpan * thetaSpan)

	E := dpdu.Dot(dpdu)
	F := dpdu.Dot(dpdv)
	G := dpdv.Dot(dpdv)
	N := dpdu.Cross(dpdv).Normalize()
	e := N.Dot(d2pduu)
	f := N.Dot(d2pduv)
	g := N.Dot(d2pdvv)

	var dndu, dndv core.Vec3
	if egf2 := E*G - F*F; egf2 != 0 {
		invEGF2 := 1 / egf2
		dndu = dpdu.Multiply((f*F - e*G) * invEGF2).Add(dpdv.Multiply((e*F - f*E) * invEGF2))
		dndv = dpdu.Multiply((g*F - f*G) * invEGF2).Add(dpdv.Multiply((f*F - g*E) * invEGF2))
	}

	pError := pHit.Abs().Multiply(core.Gamma(5))

	si := NewSurfaceInteraction(
		pHit, pError,
		core.NewVec2(u, v),
		objRay.Direction.Negate(),
		dpdu, dpdv, dndu, dndv,
		ray.Time, s,
	)
	world := si.ApplyTransform(s.objectToWorld)
	return &world, tShapeHit.Value(), true
}

// IntersectP reports whether the ray intersects the sphere, without
// building the interaction record
func (s *Sphere) IntersectP(ray core.Ray, testAlphaTexture bool) bool {
	objRay, oErr, dErr := s.worldToObject.ApplyRayWithError(ray)
	_, _, _, ok := s.findClippedHit(objRay, oErr, dErr)
	return ok
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
