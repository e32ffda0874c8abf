package geometry

import "github.com/df07/go-geometry-kernel/pkg/core"

// Interaction is the part of an interaction record common to surface hits
// and points sampled inside participating media.
type Interaction struct {
	// Point is the location of the interaction
	Point core.Vec3

	// PointError conservatively bounds the floating-point error in Point
	// per axis. It is nonzero for points computed by ray intersection and
	// zero for points sampled in participating media.
	PointError core.Vec3

	// Normal is the geometric surface normal; zero for medium interactions
	Normal core.Vec3

	// Wo is the negated direction of the ray that produced the
	// interaction. It is zero for interactions that do not lie on a ray,
	// such as points sampled directly on a surface.
	Wo core.Vec3

	// Time is the instant of the interaction
	Time float64

	// MediumInterface names the media on both sides of the surface, when
	// the caller tracks media
	MediumInterface *core.MediumInterface
}

// IsSurfaceInteraction reports whether the interaction lies on a surface
func (i *Interaction) IsSurfaceInteraction() bool {
	return i.Normal != (core.Vec3{})
}

// ShadingGeometry is the possibly perturbed frame used for lighting, as
// opposed to the true geometric frame of the surface
type ShadingGeometry struct {
	Normal core.Vec3
	DpDu   core.Vec3
	DpDv   core.Vec3
	DnDu   core.Vec3
	DnDv   core.Vec3
}

// SurfaceInteraction records the geometry at a ray-shape hit point: the
// position with its error bound, the (u, v) parameterization with the
// position and normal partial derivatives, and a shading frame that
// starts equal to the geometric frame but may be perturbed once by the
// shading subsystem (bump or displacement mapping).
//
// Invariant: the geometric normal and the shading normal always resolve
// into the same hemisphere; SetShadingGeometry and ApplyTransform both end
// by reconciling the two.
type SurfaceInteraction struct {
	Interaction

	// UV is the surface parameterization coordinate at the hit
	UV core.Vec2

	// DpDu and DpDv are the partial derivatives of position with respect
	// to the parameterization
	DpDu core.Vec3
	DpDv core.Vec3

	// DnDu and DnDv are the partial derivatives of the surface normal
	DnDu core.Vec3
	DnDv core.Vec3

	// Shading is the frame used for lighting computations
	Shading ShadingGeometry

	// Shape is the shape that produced the interaction
	Shape Shape
}

// NewSurfaceInteraction builds a surface interaction from shape-local
// parametric geometry. The geometric normal is the normalized cross
// product of the position partials, flipped when the shape's orientation
// flags require it; the shading frame starts equal to the geometric frame.
func NewSurfaceInteraction(
	point, pointError core.Vec3,
	uv core.Vec2,
	wo core.Vec3,
	dpdu, dpdv, dndu, dndv core.Vec3,
	time float64,
	shape Shape,
) *SurfaceInteraction {
	normal := dpdu.Cross(dpdv).Normalize()
	if shape != nil && shape.ReverseOrientation() != shape.TransformSwapsHandedness() {
		normal = normal.Negate()
	}

	return &SurfaceInteraction{
		Interaction: Interaction{
			Point:      point,
			PointError: pointError,
			Normal:     normal,
			Wo:         wo,
			Time:       time,
		},
		UV:   uv,
		DpDu: dpdu,
		DpDv: dpdv,
		DnDu: dndu,
		DnDv: dndv,
		Shading: ShadingGeometry{
			Normal: normal,
			DpDu:   dpdu,
			DpDv:   dpdv,
			DnDu:   dndu,
			DnDv:   dndv,
		},
		Shape: shape,
	}
}

// SetShadingGeometry replaces the shading frame. When
// orientationIsAuthoritative is true the new shading normal wins: the
// geometric normal is reoriented into its hemisphere and the shading
// normal is left as computed. Otherwise the geometric normal wins and the
// shading normal is reoriented instead.
func (si *SurfaceInteraction) SetShadingGeometry(dpdu, dpdv, dndu, dndv core.Vec3, orientationIsAuthoritative bool) {
	normal := dpdu.Cross(dpdv).Normalize()
	if si.Shape != nil && si.Shape.ReverseOrientation() != si.Shape.TransformSwapsHandedness() {
		normal = normal.Negate()
	}
	si.Shading.Normal = normal

	if orientationIsAuthoritative {
		si.Normal = core.FaceForward(si.Normal, si.Shading.Normal)
	} else {
		si.Shading.Normal = core.FaceForward(si.Shading.Normal, si.Normal)
	}

	si.Shading.DpDu = dpdu
	si.Shading.DpDv = dpdv
	si.Shading.DnDu = dndu
	si.Shading.DnDv = dndv
}

// ApplyTransform returns the interaction re-expressed through the given
// transform: the point with its error bound propagated, vectors through
// the linear part, normals through the inverse transpose. The shading
// normal is face-forwarded into the geometric hemisphere afterward so the
// hemisphere invariant survives handedness-swapping maps.
func (si *SurfaceInteraction) ApplyTransform(t *core.Transform) SurfaceInteraction {
	point, pointError := t.ApplyPointWithErrorBound(si.Point, si.PointError)

	result := SurfaceInteraction{
		Interaction: Interaction{
			Point:           point,
			PointError:      pointError,
			Normal:          t.ApplyNormal(si.Normal).Normalize(),
			Wo:              t.ApplyVector(si.Wo),
			Time:            si.Time,
			MediumInterface: si.MediumInterface,
		},
		UV:   si.UV,
		DpDu: t.ApplyVector(si.DpDu),
		DpDv: t.ApplyVector(si.DpDv),
		DnDu: t.ApplyNormal(si.DnDu),
		DnDv: t.ApplyNormal(si.DnDv),
		Shading: ShadingGeometry{
			Normal: t.ApplyNormal(si.Shading.Normal).Normalize(),
			DpDu:   t.ApplyVector(si.Shading.DpDu),
			DpDv:   t.ApplyVector(si.Shading.DpDv),
			DnDu:   t.ApplyNormal(si.Shading.DnDu),
			DnDv:   t.ApplyNormal(si.Shading.DnDv),
		},
		Shape: si.Shape,
	}
	result.Shading.Normal = core.FaceForward(result.Shading.Normal, result.Normal)
	return result
}
