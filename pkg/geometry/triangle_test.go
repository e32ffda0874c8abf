package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-geometry-kernel/pkg/core"
)

var _ Shape = Triangle{}

// unitRightTriangle builds a one-triangle mesh with vertices at the
// origin, (1,0,0) and (0,1,0)
func unitRightTriangle(t *testing.T, objectToWorld *core.Transform, options *TriangleMeshOptions) *TriangleMesh {
	t.Helper()
	mesh, err := NewTriangleMesh(objectToWorld, false,
		[]int{0, 1, 2},
		[]core.Vec3{
			core.NewVec3(0, 0, 0),
			core.NewVec3(1, 0, 0),
			core.NewVec3(0, 1, 0),
		},
		options,
	)
	if err != nil {
		t.Fatalf("NewTriangleMesh: %v", err)
	}
	return mesh
}

func TestTriangleMesh_ConstructionErrors(t *testing.T) {
	identity := core.IdentityTransform()
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
	}

	t.Run("index count not multiple of 3", func(t *testing.T) {
		_, err := NewTriangleMesh(identity, false, []int{0, 1}, vertices, nil)
		if !errors.Is(err, ErrBadIndex) {
			t.Errorf("Expected ErrBadIndex, got %v", err)
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := NewTriangleMesh(identity, false, []int{0, 1, 3}, vertices, nil)
		if !errors.Is(err, ErrBadIndex) {
			t.Errorf("Expected ErrBadIndex, got %v", err)
		}
	})

	t.Run("negative index", func(t *testing.T) {
		_, err := NewTriangleMesh(identity, false, []int{0, -1, 2}, vertices, nil)
		if !errors.Is(err, ErrBadIndex) {
			t.Errorf("Expected ErrBadIndex, got %v", err)
		}
	})

	t.Run("short normal buffer", func(t *testing.T) {
		_, err := NewTriangleMesh(identity, false, []int{0, 1, 2}, vertices, &TriangleMeshOptions{
			Normals: []core.Vec3{core.NewVec3(0, 0, 1)},
		})
		if !errors.Is(err, ErrBadAttributeCount) {
			t.Errorf("Expected ErrBadAttributeCount, got %v", err)
		}
	})

	t.Run("short uv buffer", func(t *testing.T) {
		_, err := NewTriangleMesh(identity, false, []int{0, 1, 2}, vertices, &TriangleMeshOptions{
			UVs: []core.Vec2{core.NewVec2(0, 0), core.NewVec2(1, 0)},
		})
		if !errors.Is(err, ErrBadAttributeCount) {
			t.Errorf("Expected ErrBadAttributeCount, got %v", err)
		}
	})
}

func TestTriangle_Intersect_EndToEnd(t *testing.T) {
	mesh := unitRightTriangle(t, core.IdentityTransform(), nil)
	tri := mesh.Triangle(0)

	ray := core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1))
	si, tHit, ok := tri.Intersect(ray, false)
	if !ok {
		t.Fatal("Expected hit, got miss")
	}

	const tolerance = 1e-9
	if math.Abs(tHit-1) > tolerance {
		t.Errorf("Expected t=1, got %v", tHit)
	}
	if si.Point.Subtract(core.NewVec3(0.25, 0.25, 0)).Length() > tolerance {
		t.Errorf("Expected hit point (0.25,0.25,0), got %v", si.Point)
	}
	if si.Normal.Subtract(core.NewVec3(0, 0, 1)).Length() > tolerance {
		t.Errorf("Expected normal (0,0,1), got %v", si.Normal)
	}
	// Default UV basis (0,0), (1,0), (1,1) at barycentrics (0.5,0.25,0.25)
	if math.Abs(si.UV.X-0.5) > tolerance || math.Abs(si.UV.Y-0.25) > tolerance {
		t.Errorf("Expected UV (0.5,0.25), got %v", si.UV)
	}
	// Shading frame starts equal to the geometric frame
	if si.Shading.Normal != si.Normal {
		t.Error("Shading normal should start equal to the geometric normal")
	}
}

func TestTriangle_BarycentricsSumToOne(t *testing.T) {
	mesh := unitRightTriangle(t, core.IdentityTransform(), nil)
	tri := mesh.Triangle(0)

	rays := []core.Ray{
		core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1)),
		core.NewRay(core.NewVec3(0.1, 0.7, -2), core.NewVec3(0, 0, 1)),
		core.NewRay(core.NewVec3(0.6, 0.3, 5), core.NewVec3(0, 0, -1)),
	}

	for i, ray := range rays {
		tHit, b0, b1, b2, ok := tri.intersectBary(ray)
		if !ok {
			t.Fatalf("ray %d: expected hit", i)
		}
		if tHit <= 0 {
			t.Errorf("ray %d: hit parameter must be positive, got %v", i, tHit)
		}
		if b0 < 0 || b1 < 0 || b2 < 0 {
			t.Errorf("ray %d: negative barycentric (%v, %v, %v)", i, b0, b1, b2)
		}
		if math.Abs(b0+b1+b2-1) > 1e-12 {
			t.Errorf("ray %d: barycentrics sum to %v", i, b0+b1+b2)
		}
	}
}

func TestTriangle_Intersect_Misses(t *testing.T) {
	mesh := unitRightTriangle(t, core.IdentityTransform(), nil)
	tri := mesh.Triangle(0)

	tests := []struct {
		name string
		ray  core.Ray
	}{
		{
			name: "outside the triangle",
			ray:  core.NewRay(core.NewVec3(0.9, 0.9, 1), core.NewVec3(0, 0, -1)),
		},
		{
			name: "parallel to the plane",
			ray:  core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(1, 0, 0)),
		},
		{
			name: "plane behind the origin",
			ray:  core.NewRay(core.NewVec3(0.25, 0.25, -1), core.NewVec3(0, 0, -1)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := tri.Intersect(tt.ray, false); ok {
				t.Error("Expected miss")
			}
			if tri.IntersectP(tt.ray, false) {
				t.Error("IntersectP disagrees with Intersect")
			}
		})
	}
}

func TestTriangle_TMaxBound(t *testing.T) {
	mesh := unitRightTriangle(t, core.IdentityTransform(), nil)
	tri := mesh.Triangle(0)

	ray := core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1))
	ray.TMax = 0.5
	if _, _, ok := tri.Intersect(ray, false); ok {
		t.Error("Expected miss when TMax stops before the plane")
	}
}

// rejectAllMask vetoes every candidate hit
type rejectAllMask struct{}

func (rejectAllMask) Evaluate(uv core.Vec2) float64 { return 0 }

// passAllMask accepts every candidate hit
type passAllMask struct{}

func (passAllMask) Evaluate(uv core.Vec2) float64 { return 1 }

func TestTriangle_AlphaMask(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1))

	t.Run("mask veto is a miss, not an error", func(t *testing.T) {
		mesh := unitRightTriangle(t, core.IdentityTransform(), &TriangleMeshOptions{AlphaMask: rejectAllMask{}})
		tri := mesh.Triangle(0)
		if _, _, ok := tri.Intersect(ray, true); ok {
			t.Error("Alpha veto should turn the hit into a miss")
		}
		if tri.IntersectP(ray, true) {
			t.Error("IntersectP must honor the alpha veto")
		}
	})

	t.Run("passing mask keeps the hit", func(t *testing.T) {
		mesh := unitRightTriangle(t, core.IdentityTransform(), &TriangleMeshOptions{AlphaMask: passAllMask{}})
		tri := mesh.Triangle(0)
		if _, _, ok := tri.Intersect(ray, true); !ok {
			t.Error("Passing alpha mask should keep the hit")
		}
	})

	t.Run("mask ignored when not requested", func(t *testing.T) {
		mesh := unitRightTriangle(t, core.IdentityTransform(), &TriangleMeshOptions{AlphaMask: rejectAllMask{}})
		tri := mesh.Triangle(0)
		if _, _, ok := tri.Intersect(ray, false); !ok {
			t.Error("testAlphaTexture=false should bypass the mask")
		}
	})
}

func TestTriangle_TransformedMesh(t *testing.T) {
	// Vertices are given in object space and cached in world space once
	mesh := unitRightTriangle(t, core.Translate(core.NewVec3(0, 0, -5)), nil)
	tri := mesh.Triangle(0)

	ray := core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1))
	si, tHit, ok := tri.Intersect(ray, false)
	if !ok {
		t.Fatal("Expected hit on translated triangle")
	}
	if math.Abs(tHit-6) > 1e-9 {
		t.Errorf("Expected t=6, got %v", tHit)
	}
	if si.Point.Subtract(core.NewVec3(0.25, 0.25, -5)).Length() > 1e-9 {
		t.Errorf("Expected hit at (0.25,0.25,-5), got %v", si.Point)
	}

	wb := tri.WorldBound()
	if !wb.Inside(core.NewVec3(0.25, 0.25, -5)) {
		t.Errorf("World bound %v misses the hit point", wb)
	}
	ob := tri.ObjectBound()
	if !ob.Inside(core.NewVec3(0.25, 0.25, 0)) {
		t.Errorf("Object bound %v should be in the pre-transform frame", ob)
	}
}

func TestTriangle_UVPartialDerivatives(t *testing.T) {
	// UVs equal to the vertex xy coordinates make dpdu=(1,0,0), dpdv=(0,1,0)
	mesh := unitRightTriangle(t, core.IdentityTransform(), &TriangleMeshOptions{
		UVs: []core.Vec2{
			core.NewVec2(0, 0),
			core.NewVec2(1, 0),
			core.NewVec2(0, 1),
		},
	})
	tri := mesh.Triangle(0)

	ray := core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1))
	si, _, ok := tri.Intersect(ray, false)
	if !ok {
		t.Fatal("Expected hit")
	}

	const tolerance = 1e-12
	if si.DpDu.Subtract(core.NewVec3(1, 0, 0)).Length() > tolerance {
		t.Errorf("Expected dpdu (1,0,0), got %v", si.DpDu)
	}
	if si.DpDv.Subtract(core.NewVec3(0, 1, 0)).Length() > tolerance {
		t.Errorf("Expected dpdv (0,1,0), got %v", si.DpDv)
	}
	if math.Abs(si.UV.X-0.25) > tolerance || math.Abs(si.UV.Y-0.25) > tolerance {
		t.Errorf("Expected UV (0.25,0.25), got %v", si.UV)
	}
}

func TestTriangle_VertexNormalsPerturbShading(t *testing.T) {
	// Per-vertex normals tilted away from the geometric normal: the
	// shading normal follows them and the geometric normal is reoriented
	// into the shading hemisphere (the interpolated normal is
	// authoritative).
	tilt := core.NewVec3(0, -1, -1).Normalize()
	mesh := unitRightTriangle(t, core.IdentityTransform(), &TriangleMeshOptions{
		Normals: []core.Vec3{tilt, tilt, tilt},
	})
	tri := mesh.Triangle(0)

	ray := core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1))
	si, _, ok := tri.Intersect(ray, false)
	if !ok {
		t.Fatal("Expected hit")
	}

	if si.Shading.Normal.Dot(tilt) <= 0.9 {
		t.Errorf("Shading normal should follow the vertex normals, got %v", si.Shading.Normal)
	}
	if si.Normal.Dot(si.Shading.Normal) <= 0 {
		t.Errorf("Geometric normal %v not reconciled into the shading hemisphere %v",
			si.Normal, si.Shading.Normal)
	}
}

func TestTriangle_DegenerateIsAMissNotACrash(t *testing.T) {
	mesh, err := NewTriangleMesh(core.IdentityTransform(), false,
		[]int{0, 1, 2},
		[]core.Vec3{
			core.NewVec3(0, 0, 0),
			core.NewVec3(1, 0, 0),
			core.NewVec3(2, 0, 0), // collinear
		},
		nil,
	)
	if err != nil {
		t.Fatalf("Degenerate mesh should construct: %v", err)
	}
	tri := mesh.Triangle(0)

	if tri.SurfaceArea() != 0 {
		t.Errorf("Zero-area triangle should report zero area, got %v", tri.SurfaceArea())
	}
	ray := core.NewRay(core.NewVec3(0.5, 0, 1), core.NewVec3(0, 0, -1))
	if _, _, ok := tri.Intersect(ray, false); ok {
		t.Error("Zero-area triangle should not report hits")
	}
}

func TestTriangleMesh_Accessors(t *testing.T) {
	mesh, err := NewTriangleMesh(core.IdentityTransform(), false,
		[]int{0, 1, 2, 0, 2, 3},
		[]core.Vec3{
			core.NewVec3(0, 0, 0),
			core.NewVec3(1, 0, 0),
			core.NewVec3(1, 1, 0),
			core.NewVec3(0, 1, 0),
		},
		&TriangleMeshOptions{
			UVs: []core.Vec2{
				core.NewVec2(0, 0),
				core.NewVec2(2, 0),
				core.NewVec2(2, 2),
				core.NewVec2(0, 2),
			},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	if mesh.TriangleCount() != 2 {
		t.Errorf("Expected 2 triangles, got %d", mesh.TriangleCount())
	}
	if len(mesh.Triangles()) != 2 {
		t.Errorf("Expected 2 triangle views")
	}
	if got := mesh.SurfaceArea(); math.Abs(got-1) > 1e-12 {
		t.Errorf("Unit quad mesh area should be 1, got %v", got)
	}

	wb := mesh.WorldBound()
	if wb.Min != core.NewVec3(0, 0, 0) || wb.Max != core.NewVec3(1, 1, 0) {
		t.Errorf("Mesh world bound wrong: %v", wb)
	}

	uvb := mesh.UVBounds()
	if uvb.Min != core.NewVec2(0, 0) || uvb.Max != core.NewVec2(2, 2) {
		t.Errorf("UV bounds wrong: %v", uvb)
	}
}

func TestTriangleMesh_UVBoundsEmptyWithoutUVs(t *testing.T) {
	mesh := unitRightTriangle(t, core.IdentityTransform(), nil)
	if !mesh.UVBounds().IsEmpty() {
		t.Error("Mesh without UVs should report empty UV bounds")
	}
}

func TestTriangle_WorldBoundIsTight(t *testing.T) {
	// The triangle bound is the union of its vertices, not a corner warp
	mesh := unitRightTriangle(t, core.RotateZ(math.Pi/4), nil)
	tri := mesh.Triangle(0)

	wb := tri.WorldBound()
	s := math.Sqrt2 / 2
	const tolerance = 1e-12
	if math.Abs(wb.Min.X+s) > tolerance || math.Abs(wb.Max.Y-s) > tolerance {
		t.Errorf("Expected tight rotated bound, got %v", wb)
	}
}
