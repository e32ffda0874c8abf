package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnorderable reports that a comparison was attempted on values with no
// ordering, i.e. at least one NaN.
var ErrUnorderable = errors.New("unorderable value (NaN)")

// MinOrdered returns the smaller of x and y, or ErrUnorderable if the pair
// cannot be ordered.
func MinOrdered(x, y float64) (float64, error) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, fmt.Errorf("min(%v, %v): %w", x, y, ErrUnorderable)
	}
	return math.Min(x, y), nil
}

// MaxOrdered returns the larger of x and y, or ErrUnorderable if the pair
// cannot be ordered.
func MaxOrdered(x, y float64) (float64, error) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, fmt.Errorf("max(%v, %v): %w", x, y, ErrUnorderable)
	}
	return math.Max(x, y), nil
}

// Bounds3 is an axis-aligned bounding box. A non-empty box holds the
// invariant Min[axis] <= Max[axis] on every axis. The empty box is
// represented with inverted infinite corners so that it is the identity
// for Union; a degenerate box (Min == Max) is distinct from empty and
// contains exactly one point.
//
// Boxes built through the fallible constructors never contain NaN, so the
// pure operations on them (Union, Intersect, Overlaps, ...) cannot fail.
type Bounds3 struct {
	Min Vec3
	Max Vec3
}

// EmptyBounds3 returns the empty box, the identity element for Union
func EmptyBounds3() Bounds3 {
	return Bounds3{
		Min: NewVec3(math.Inf(1), math.Inf(1), math.Inf(1)),
		Max: NewVec3(math.Inf(-1), math.Inf(-1), math.Inf(-1)),
	}
}

// Bounds3FromPoint creates a degenerate box enclosing a single point
func Bounds3FromPoint(p Vec3) (Bounds3, error) {
	if p.IsNaN() {
		return Bounds3{}, fmt.Errorf("bounds from point %v: %w", p, ErrUnorderable)
	}
	return Bounds3{Min: p, Max: p}, nil
}

// Bounds3FromCorners creates a box enclosing the two given corner points.
// The corners may be given in any order; each axis is sorted independently.
func Bounds3FromCorners(p1, p2 Vec3) (Bounds3, error) {
	if p1.IsNaN() || p2.IsNaN() {
		return Bounds3{}, fmt.Errorf("bounds from corners %v, %v: %w", p1, p2, ErrUnorderable)
	}
	return Bounds3{
		Min: NewVec3(math.Min(p1.X, p2.X), math.Min(p1.Y, p2.Y), math.Min(p1.Z, p2.Z)),
		Max: NewVec3(math.Max(p1.X, p2.X), math.Max(p1.Y, p2.Y), math.Max(p1.Z, p2.Z)),
	}, nil
}

// Bounds3FromPoints creates the smallest box enclosing all given points
func Bounds3FromPoints(points ...Vec3) (Bounds3, error) {
	b := EmptyBounds3()
	var err error
	for _, p := range points {
		b, err = b.UnionPoint(p)
		if err != nil {
			return Bounds3{}, err
		}
	}
	return b, nil
}

// IsEmpty reports whether the box contains no points
func (b Bounds3) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Union returns the smallest box containing both boxes. The empty box is
// the identity.
func (b Bounds3) Union(other Bounds3) Bounds3 {
	return Bounds3{
		Min: NewVec3(
			math.Min(b.Min.X, other.Min.X),
			math.Min(b.Min.Y, other.Min.Y),
			math.Min(b.Min.Z, other.Min.Z),
		),
		Max: NewVec3(
			math.Max(b.Max.X, other.Max.X),
			math.Max(b.Max.Y, other.Max.Y),
			math.Max(b.Max.Z, other.Max.Z),
		),
	}
}

// UnionPoint returns the smallest box containing the box and the point
func (b Bounds3) UnionPoint(p Vec3) (Bounds3, error) {
	pb, err := Bounds3FromPoint(p)
	if err != nil {
		return Bounds3{}, err
	}
	return b.Union(pb), nil
}

// Intersect returns the overlap of the two boxes. ok is false when the
// boxes are disjoint; that is a normal outcome, not an error.
func (b Bounds3) Intersect(other Bounds3) (Bounds3, bool) {
	result := Bounds3{
		Min: NewVec3(
			math.Max(b.Min.X, other.Min.X),
			math.Max(b.Min.Y, other.Min.Y),
			math.Max(b.Min.Z, other.Min.Z),
		),
		Max: NewVec3(
			math.Min(b.Max.X, other.Max.X),
			math.Min(b.Max.Y, other.Max.Y),
			math.Min(b.Max.Z, other.Max.Z),
		),
	}
	if result.IsEmpty() {
		return Bounds3{}, false
	}
	return result, true
}

// Overlaps reports whether the two boxes overlap, using the same inclusive
// per-axis comparison as Intersect
func (b Bounds3) Overlaps(other Bounds3) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// Inside reports whether the point lies inside the box, counting points on
// the boundary
func (b Bounds3) Inside(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// InsideExclusive reports whether the point lies inside the box, excluding
// the upper boundary. Used where points on faces shared by adjacent boxes
// must not be counted twice.
func (b Bounds3) InsideExclusive(p Vec3) bool {
	return p.X >= b.Min.X && p.X < b.Max.X &&
		p.Y >= b.Min.Y && p.Y < b.Max.Y &&
		p.Z >= b.Min.Z && p.Z < b.Max.Z
}

// Expand inflates the box in place by delta along every axis in both
// directions. A non-positive delta leaves the box unchanged.
func (b *Bounds3) Expand(delta float64) {
	if delta <= 0 {
		return
	}
	d := NewVec3(delta, delta, delta)
	b.Min = b.Min.Subtract(d)
	b.Max = b.Max.Add(d)
}

// Diagonal returns the vector from the minimum corner to the maximum
// corner. The empty box has a zero diagonal.
func (b Bounds3) Diagonal() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Subtract(b.Min)
}

// SurfaceArea returns the total area of the box's six faces
func (b Bounds3) SurfaceArea() float64 {
	d := b.Diagonal()
	return 2 * (d.X*d.Y + d.X*d.Z + d.Y*d.Z)
}

// Volume returns the volume of the box
func (b Bounds3) Volume() float64 {
	d := b.Diagonal()
	return d.X * d.Y * d.Z
}

// MaximumExtent returns the axis along which the box is longest, with ties
// resolved X over Y over Z
func (b Bounds3) MaximumExtent() Axis {
	d := b.Diagonal()
	if d.X >= d.Y && d.X >= d.Z {
		return AxisX
	}
	if d.Y >= d.Z {
		return AxisY
	}
	return AxisZ
}

// Lerp returns the point at the given per-axis parameters along the
// diagonal from the minimum corner to the maximum corner. Parameters
// outside [0, 1] extrapolate.
func (b Bounds3) Lerp(t Vec3) Vec3 {
	return NewVec3(
		b.Min.X+(b.Max.X-b.Min.X)*t.X,
		b.Min.Y+(b.Max.Y-b.Min.Y)*t.Y,
		b.Min.Z+(b.Max.Z-b.Min.Z)*t.Z,
	)
}

// Offset returns the position of p relative to the box corners: the
// minimum corner maps to (0,0,0) and the maximum corner to (1,1,1)
func (b Bounds3) Offset(p Vec3) Vec3 {
	o := p.Subtract(b.Min)
	if b.Max.X > b.Min.X {
		o.X /= b.Max.X - b.Min.X
	}
	if b.Max.Y > b.Min.Y {
		o.Y /= b.Max.Y - b.Min.Y
	}
	if b.Max.Z > b.Min.Z {
		o.Z /= b.Max.Z - b.Min.Z
	}
	return o
}

// Corners returns the eight corner points of the box
func (b Bounds3) Corners() [8]Vec3 {
	return [8]Vec3{
		NewVec3(b.Min.X, b.Min.Y, b.Min.Z),
		NewVec3(b.Max.X, b.Min.Y, b.Min.Z),
		NewVec3(b.Min.X, b.Max.Y, b.Min.Z),
		NewVec3(b.Max.X, b.Max.Y, b.Min.Z),
		NewVec3(b.Min.X, b.Min.Y, b.Max.Z),
		NewVec3(b.Max.X, b.Min.Y, b.Max.Z),
		NewVec3(b.Min.X, b.Max.Y, b.Max.Z),
		NewVec3(b.Max.X, b.Max.Y, b.Max.Z),
	}
}

// IntersectRay intersects the ray's valid parametric range [0, ray.TMax]
// against the box using the slab method. It returns the surviving
// parametric interval; ok is false when the ray misses. A ray whose origin
// is inside the box yields t0 == 0.
//
// Axis-parallel rays are handled without NaN: a zero direction component
// gives an infinite reciprocal, and the origin is tested directly against
// the slab on that axis.
func (b Bounds3) IntersectRay(ray Ray) (t0, t1 float64, ok bool) {
	t0, t1 = 0, ray.TMax

	for axis := AxisX; axis <= AxisZ; axis++ {
		origin := ray.Origin.Component(axis)
		invDir := 1 / ray.Direction.Component(axis)
		lo := b.Min.Component(axis)
		hi := b.Max.Component(axis)

		if math.IsInf(invDir, 0) {
			// Ray is parallel to this axis's slab planes
			if origin < lo || origin > hi {
				return 0, 0, false
			}
			continue
		}

		tNear := (lo - origin) * invDir
		tFar := (hi - origin) * invDir
		if tNear > tFar {
			tNear, tFar = tFar, tNear
		}
		// Widen the far plane so conservatively rounded slab hits survive
		tFar *= 1 + 2*Gamma(3)

		if tNear > t0 {
			t0 = tNear
		}
		if tFar < t1 {
			t1 = tFar
		}
		if t0 > t1 {
			return 0, 0, false
		}
	}
	return t0, t1, true
}

// Bounds2 is a 2D axis-aligned bounding box over (u, v) parameter space
type Bounds2 struct {
	Min Vec2
	Max Vec2
}

// EmptyBounds2 returns the empty 2D box, the identity element for Union
func EmptyBounds2() Bounds2 {
	return Bounds2{
		Min: NewVec2(math.Inf(1), math.Inf(1)),
		Max: NewVec2(math.Inf(-1), math.Inf(-1)),
	}
}

// Bounds2FromPoint creates a degenerate 2D box enclosing a single point
func Bounds2FromPoint(p Vec2) (Bounds2, error) {
	if p.IsNaN() {
		return Bounds2{}, fmt.Errorf("bounds from point %v: %w", p, ErrUnorderable)
	}
	return Bounds2{Min: p, Max: p}, nil
}

// Bounds2FromCorners creates a 2D box from two corner points in any order
func Bounds2FromCorners(p1, p2 Vec2) (Bounds2, error) {
	if p1.IsNaN() || p2.IsNaN() {
		return Bounds2{}, fmt.Errorf("bounds from corners %v, %v: %w", p1, p2, ErrUnorderable)
	}
	return Bounds2{
		Min: NewVec2(math.Min(p1.X, p2.X), math.Min(p1.Y, p2.Y)),
		Max: NewVec2(math.Max(p1.X, p2.X), math.Max(p1.Y, p2.Y)),
	}, nil
}

// IsEmpty reports whether the box contains no points
func (b Bounds2) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y
}

// Union returns the smallest 2D box containing both boxes
func (b Bounds2) Union(other Bounds2) Bounds2 {
	return Bounds2{
		Min: NewVec2(math.Min(b.Min.X, other.Min.X), math.Min(b.Min.Y, other.Min.Y)),
		Max: NewVec2(math.Max(b.Max.X, other.Max.X), math.Max(b.Max.Y, other.Max.Y)),
	}
}

// UnionPoint returns the smallest 2D box containing the box and the point
func (b Bounds2) UnionPoint(p Vec2) (Bounds2, error) {
	pb, err := Bounds2FromPoint(p)
	if err != nil {
		return Bounds2{}, err
	}
	return b.Union(pb), nil
}

// Inside reports whether the point lies inside the box inclusively
func (b Bounds2) Inside(p Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Diagonal returns the vector from the minimum to the maximum corner
func (b Bounds2) Diagonal() Vec2 {
	if b.IsEmpty() {
		return Vec2{}
	}
	return b.Max.Subtract(b.Min)
}

// Area returns the area of the box
func (b Bounds2) Area() float64 {
	d := b.Diagonal()
	return d.X * d.Y
}

// MaximumExtent returns the axis along which the box is longest, with ties
// resolved X over Y
func (b Bounds2) MaximumExtent() Axis {
	d := b.Diagonal()
	if d.X >= d.Y {
		return AxisX
	}
	return AxisY
}

// Lerp returns the point at the given per-axis parameters along the
// diagonal from the minimum corner to the maximum corner
func (b Bounds2) Lerp(t Vec2) Vec2 {
	return NewVec2(
		b.Min.X+(b.Max.X-b.Min.X)*t.X,
		b.Min.Y+(b.Max.Y-b.Min.Y)*t.Y,
	)
}
