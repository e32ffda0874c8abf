package geometry

import "github.com/df07/go-geometry-kernel/pkg/core"

// AlphaTexture masks out regions of a surface. It is provided by the
// material subsystem; the kernel only asks whether a candidate hit
// survives. A zero return rejects the hit.
type AlphaTexture interface {
	Evaluate(uv core.Vec2) float64
}

// Shape is a geometric primitive defined in its own object space,
// positioned in world space through a shared transform pair. All methods
// are pure and safe for concurrent use.
type Shape interface {
	// ObjectBound returns a bounding box in the shape's object space
	ObjectBound() core.Bounds3

	// WorldBound returns a bounding box in world space
	WorldBound() core.Bounds3

	// Intersect returns the nearest intersection in (0, ray.TMax) along
	// the world-space ray, as a world-space surface interaction and its
	// ray parameter. ok is false when the ray misses; a miss is a normal
	// outcome, not an error.
	Intersect(ray core.Ray, testAlphaTexture bool) (si *SurfaceInteraction, tHit float64, ok bool)

	// IntersectP reports whether the ray intersects the shape at all.
	// Equivalent to Intersect's ok result without the cost of building
	// the interaction record.
	IntersectP(ray core.Ray, testAlphaTexture bool) bool

	// SurfaceArea returns the surface area of the shape
	SurfaceArea() float64

	// ReverseOrientation reports whether the caller asked for the
	// shape's normals to be flipped
	ReverseOrientation() bool

	// TransformSwapsHandedness reports whether the shape's
	// object-to-world transform reverses coordinate system handedness
	TransformSwapsHandedness() bool
}

// shapeData carries the fields common to every shape: the shared
// transform pair and the two orientation flags, all fixed at construction.
// The geometric normal at a hit is flipped from its natural direction
// exactly when reverseOrientation XOR transformSwapsHandedness is true.
type shapeData struct {
	objectToWorld            *core.Transform
	worldToObject            *core.Transform
	reverseOrientation       bool
	transformSwapsHandedness bool
}

func newShapeData(objectToWorld *core.Transform, reverseOrientation bool) shapeData {
	return shapeData{
		objectToWorld:            objectToWorld,
		worldToObject:            objectToWorld.Inverse(),
		reverseOrientation:       reverseOrientation,
		transformSwapsHandedness: objectToWorld.SwapsHandedness(),
	}
}

// ReverseOrientation reports whether normals are flipped by user request
func (s *shapeData) ReverseOrientation() bool { return s.reverseOrientation }

// TransformSwapsHandedness reports whether the object-to-world transform
// swaps handedness
func (s *shapeData) TransformSwapsHandedness() bool { return s.transformSwapsHandedness }

// flipsNormal reports whether the two orientation flags combine to flip
// the geometric normal
func (s *shapeData) flipsNormal() bool {
	return s.reverseOrientation != s.transformSwapsHandedness
}
