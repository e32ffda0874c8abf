package core

import "math"

// Transform is an affine transformation stored with its precomputed
// inverse and a cached handedness flag. The pair is assumed consistent and
// is never mutated after construction, so a single Transform is safely
// shared by reference among any number of shapes and concurrent queries.
type Transform struct {
	m               Matrix4
	mInv            Matrix4
	swapsHandedness bool
}

// NewTransform creates a transform from a matrix, computing its inverse.
// A singular matrix is a construction-time error.
func NewTransform(m Matrix4) (*Transform, error) {
	mInv, err := m.Inverse()
	if err != nil {
		return nil, err
	}
	return NewTransformFromMatrices(m, mInv), nil
}

// NewTransformFromMatrices creates a transform from a matrix and its
// already-known inverse. The pair is trusted, not verified.
func NewTransformFromMatrices(m, mInv Matrix4) *Transform {
	return &Transform{
		m:               m,
		mInv:            mInv,
		swapsHandedness: m.DeterminantLinear() < 0,
	}
}

// IdentityTransform returns the identity transform
func IdentityTransform() *Transform {
	return NewTransformFromMatrices(IdentityMatrix4(), IdentityMatrix4())
}

// Translate returns a transform that translates by delta
func Translate(delta Vec3) *Transform {
	m := NewMatrix4(
		1, 0, 0, delta.X,
		0, 1, 0, delta.Y,
		0, 0, 1, delta.Z,
		0, 0, 0, 1,
	)
	mInv := NewMatrix4(
		1, 0, 0, -delta.X,
		0, 1, 0, -delta.Y,
		0, 0, 1, -delta.Z,
		0, 0, 0, 1,
	)
	return NewTransformFromMatrices(m, mInv)
}

// Scale returns a transform that scales by the given per-axis factors.
// Zero factors produce a singular transform and are the caller's error.
func Scale(x, y, z float64) *Transform {
	m := NewMatrix4(
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	)
	mInv := NewMatrix4(
		1/x, 0, 0, 0,
		0, 1/y, 0, 0,
		0, 0, 1/z, 0,
		0, 0, 0, 1,
	)
	return NewTransformFromMatrices(m, mInv)
}

// RotateX returns a rotation about the x axis by theta radians
func RotateX(theta float64) *Transform {
	sin, cos := math.Sin(theta), math.Cos(theta)
	m := NewMatrix4(
		1, 0, 0, 0,
		0, cos, -sin, 0,
		0, sin, cos, 0,
		0, 0, 0, 1,
	)
	return NewTransformFromMatrices(m, m.Transposed())
}

// RotateY returns a rotation about the y axis by theta radians
func RotateY(theta float64) *Transform {
	sin, cos := math.Sin(theta), math.Cos(theta)
	m := NewMatrix4(
		cos, 0, sin, 0,
		0, 1, 0, 0,
		-sin, 0, cos, 0,
		0, 0, 0, 1,
	)
	return NewTransformFromMatrices(m, m.Transposed())
}

// RotateZ returns a rotation about the z axis by theta radians
func RotateZ(theta float64) *Transform {
	sin, cos := math.Sin(theta), math.Cos(theta)
	m := NewMatrix4(
		cos, -sin, 0, 0,
		sin, cos, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	)
	return NewTransformFromMatrices(m, m.Transposed())
}

// Compose returns the transform equivalent to applying other first and
// then t
func (t *Transform) Compose(other *Transform) *Transform {
	return NewTransformFromMatrices(t.m.Mul(other.m), other.mInv.Mul(t.mInv))
}

// Inverse returns the inverse transform. It shares no mutable state with
// the receiver.
func (t *Transform) Inverse() *Transform {
	return &Transform{
		m:               t.mInv,
		mInv:            t.m,
		swapsHandedness: t.swapsHandedness,
	}
}

// Matrix returns the forward matrix
func (t *Transform) Matrix() Matrix4 { return t.m }

// InverseMatrix returns the inverse matrix
func (t *Transform) InverseMatrix() Matrix4 { return t.mInv }

// SwapsHandedness reports whether the transform's linear part has a
// negative determinant, reversing the orientation of the coordinate
// system. Computed once at construction.
func (t *Transform) SwapsHandedness() bool { return t.swapsHandedness }

// ApplyPoint applies the full affine map to a point
func (t *Transform) ApplyPoint(p Vec3) Vec3 {
	m := &t.m.M
	x := m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3]
	y := m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3]
	z := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3]
	w := m[3][0]*p.X + m[3][1]*p.Y + m[3][2]*p.Z + m[3][3]
	if w == 1 {
		return NewVec3(x, y, z)
	}
	return NewVec3(x/w, y/w, z/w)
}

// ApplyPointWithError applies the transform to a point and returns a
// conservative per-axis bound on the rounding error the transform itself
// introduces.
func (t *Transform) ApplyPointWithError(p Vec3) (Vec3, Vec3) {
	m := &t.m.M
	xAbs := math.Abs(m[0][0]*p.X) + math.Abs(m[0][1]*p.Y) + math.Abs(m[0][2]*p.Z) + math.Abs(m[0][3])
	yAbs := math.Abs(m[1][0]*p.X) + math.Abs(m[1][1]*p.Y) + math.Abs(m[1][2]*p.Z) + math.Abs(m[1][3])
	zAbs := math.Abs(m[2][0]*p.X) + math.Abs(m[2][1]*p.Y) + math.Abs(m[2][2]*p.Z) + math.Abs(m[2][3])
	pErr := NewVec3(xAbs, yAbs, zAbs).Multiply(Gamma(3))
	return t.ApplyPoint(p), pErr
}

// ApplyPointWithErrorBound applies the transform to a point that already
// carries an error bound and returns the transformed point together with
// the propagated bound: the warped incoming error plus the transform's own
// rounding error.
func (t *Transform) ApplyPointWithErrorBound(p, pErr Vec3) (Vec3, Vec3) {
	m := &t.m.M
	carried := NewVec3(
		math.Abs(m[0][0])*pErr.X+math.Abs(m[0][1])*pErr.Y+math.Abs(m[0][2])*pErr.Z,
		math.Abs(m[1][0])*pErr.X+math.Abs(m[1][1])*pErr.Y+math.Abs(m[1][2])*pErr.Z,
		math.Abs(m[2][0])*pErr.X+math.Abs(m[2][1])*pErr.Y+math.Abs(m[2][2])*pErr.Z,
	).Multiply(Gamma(3) + 1)
	p2, introduced := t.ApplyPointWithError(p)
	return p2, carried.Add(introduced)
}

// ApplyVector applies only the linear part of the transform to a vector.
// The result is not renormalized.
func (t *Transform) ApplyVector(v Vec3) Vec3 {
	m := &t.m.M
	return NewVec3(
		m[0][0]*v.X+m[0][1]*v.Y+m[0][2]*v.Z,
		m[1][0]*v.X+m[1][1]*v.Y+m[1][2]*v.Z,
		m[2][0]*v.X+m[2][1]*v.Y+m[2][2]*v.Z,
	)
}

// ApplyNormal applies the inverse transpose of the linear part to a
// surface normal. Using the forward linear part instead is only correct
// for orthogonal transforms; this form stays perpendicular to the surface
// under non-uniform scale and shear. The result is not renormalized.
func (t *Transform) ApplyNormal(n Vec3) Vec3 {
	inv := &t.mInv.M
	return NewVec3(
		inv[0][0]*n.X+inv[1][0]*n.Y+inv[2][0]*n.Z,
		inv[0][1]*n.X+inv[1][1]*n.Y+inv[2][1]*n.Z,
		inv[0][2]*n.X+inv[1][2]*n.Y+inv[2][2]*n.Z,
	)
}

// ApplyRay transforms a ray. The origin transforms as a point and is
// advanced past its own rounding-error bound along the direction so that
// re-traced rays cannot self-intersect the surface they left; the
// direction transforms as a vector without renormalization. TMax, Time and
// Medium carry through unchanged.
func (t *Transform) ApplyRay(r Ray) Ray {
	origin, oErr := t.ApplyPointWithError(r.Origin)
	direction := t.ApplyVector(r.Direction)

	lengthSq := direction.LengthSquared()
	if lengthSq > 0 {
		dt := direction.Abs().Dot(oErr) / lengthSq
		origin = origin.Add(direction.Multiply(dt))
	}

	return Ray{
		Origin:    origin,
		Direction: direction,
		TMax:      r.TMax,
		Time:      r.Time,
		Medium:    r.Medium,
	}
}

// ApplyRayWithError transforms a ray and additionally returns the error
// bounds of the transformed origin and direction.
func (t *Transform) ApplyRayWithError(r Ray) (Ray, Vec3, Vec3) {
	origin, oErr := t.ApplyPointWithError(r.Origin)
	direction := t.ApplyVector(r.Direction)

	m := &t.m.M
	dErr := NewVec3(
		math.Abs(m[0][0]*r.Direction.X)+math.Abs(m[0][1]*r.Direction.Y)+math.Abs(m[0][2]*r.Direction.Z),
		math.Abs(m[1][0]*r.Direction.X)+math.Abs(m[1][1]*r.Direction.Y)+math.Abs(m[1][2]*r.Direction.Z),
		math.Abs(m[2][0]*r.Direction.X)+math.Abs(m[2][1]*r.Direction.Y)+math.Abs(m[2][2]*r.Direction.Z),
	).Multiply(Gamma(3))

	return Ray{
		Origin:    origin,
		Direction: direction,
		TMax:      r.TMax,
		Time:      r.Time,
		Medium:    r.Medium,
	}, oErr, dErr
}

// ApplyBounds transforms a box by warping all eight corners and taking
// their union. Correct for arbitrary affine maps, though not tight for
// pure rotations; shapes that can compute a tighter world bound directly
// should do so instead. The empty box maps to itself.
func (t *Transform) ApplyBounds(b Bounds3) Bounds3 {
	if b.IsEmpty() {
		return EmptyBounds3()
	}
	result := EmptyBounds3()
	for _, corner := range b.Corners() {
		p := t.ApplyPoint(corner)
		result = result.Union(Bounds3{Min: p, Max: p})
	}
	return result
}
