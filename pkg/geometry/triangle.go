package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-geometry-kernel/pkg/core"
)

// ErrBadIndex reports a face index outside the vertex buffer
var ErrBadIndex = errors.New("face index out of range")

// ErrBadAttributeCount reports a per-vertex attribute buffer whose length
// does not match the vertex buffer
var ErrBadAttributeCount = errors.New("attribute count does not match vertex count")

// TriangleMeshOptions carries the optional per-vertex attribute buffers
// and the alpha mask for a mesh. Each attribute slice, when present, must
// have one entry per vertex.
type TriangleMeshOptions struct {
	Normals   []core.Vec3
	Tangents  []core.Vec3
	UVs       []core.Vec2
	AlphaMask AlphaTexture
}

// TriangleMesh is the sole owner of a triangle mesh's vertex and attribute
// buffers. Vertices are given in object space and cached in world space at
// construction, so per-triangle intersection runs directly in world space
// without moving the ray into an object frame. Individual triangles are
// lightweight views into the mesh; they never copy vertex data.
type TriangleMesh struct {
	shapeData

	// positions holds the world-space vertex positions
	positions []core.Vec3

	// vertexIndices holds three indices into positions per triangle
	vertexIndices []int

	// normals and tangents are optional per-vertex shading attributes,
	// already transformed to world space
	normals  []core.Vec3
	tangents []core.Vec3

	// uvs are optional per-vertex parameterization coordinates
	uvs []core.Vec2

	alphaMask AlphaTexture
}

// NewTriangleMesh creates a mesh from object-space vertices and a flat
// index slice holding three vertex indices per triangle. Out-of-range
// indices and mismatched attribute buffer lengths are construction-time
// errors. Normals are transformed by the inverse transpose of the linear
// part; tangents by the linear part.
func NewTriangleMesh(objectToWorld *core.Transform, reverseOrientation bool,
	vertexIndices []int, vertices []core.Vec3, options *TriangleMeshOptions) (*TriangleMesh, error) {

	if len(vertexIndices)%3 != 0 {
		return nil, fmt.Errorf("%d face indices, not a multiple of 3: %w", len(vertexIndices), ErrBadIndex)
	}
	for _, idx := range vertexIndices {
		if idx < 0 || idx >= len(vertices) {
			return nil, fmt.Errorf("face index %d with %d vertices: %w", idx, len(vertices), ErrBadIndex)
		}
	}

	mesh := &TriangleMesh{
		shapeData:     newShapeData(objectToWorld, reverseOrientation),
		positions:     make([]core.Vec3, len(vertices)),
		vertexIndices: append([]int(nil), vertexIndices...),
	}
	for i, p := range vertices {
		mesh.positions[i] = objectToWorld.ApplyPoint(p)
	}

	if options != nil {
		if options.Normals != nil {
			if len(options.Normals) != len(vertices) {
				return nil, fmt.Errorf("%d normals for %d vertices: %w", len(options.Normals), len(vertices), ErrBadAttributeCount)
			}
			mesh.normals = make([]core.Vec3, len(options.Normals))
			for i, n := range options.Normals {
				mesh.normals[i] = objectToWorld.ApplyNormal(n).Normalize()
			}
		}
		if options.Tangents != nil {
			if len(options.Tangents) != len(vertices) {
				return nil, fmt.Errorf("%d tangents for %d vertices: %w", len(options.Tangents), len(vertices), ErrBadAttributeCount)
			}
			mesh.tangents = make([]core.Vec3, len(options.Tangents))
			for i, t := range options.Tangents {
				mesh.tangents[i] = objectToWorld.ApplyVector(t)
			}
		}
		if options.UVs != nil {
			if len(options.UVs) != len(vertices) {
				return nil, fmt.Errorf("%d uvs for %d vertices: %w", len(options.UVs), len(vertices), ErrBadAttributeCount)
			}
			mesh.uvs = append([]core.Vec2(nil), options.UVs...)
		}
		mesh.alphaMask = options.AlphaMask
	}

	return mesh, nil
}

// TriangleCount returns the number of triangles in the mesh
func (m *TriangleMesh) TriangleCount() int {
	return len(m.vertexIndices) / 3
}

// Triangle returns a view of the i-th triangle. The mesh must outlive the
// view.
func (m *TriangleMesh) Triangle(i int) Triangle {
	return Triangle{mesh: m, index: i}
}

// Triangles returns views of every triangle in the mesh
func (m *TriangleMesh) Triangles() []Triangle {
	triangles := make([]Triangle, m.TriangleCount())
	for i := range triangles {
		triangles[i] = m.Triangle(i)
	}
	return triangles
}

// WorldBound returns the union of every triangle's world bound
func (m *TriangleMesh) WorldBound() core.Bounds3 {
	b := core.EmptyBounds3()
	for _, p := range m.positions {
		b = b.Union(core.Bounds3{Min: p, Max: p})
	}
	return b
}

// UVBounds returns the bounding box of the mesh's UV buffer, or the empty
// box when the mesh carries no UVs
func (m *TriangleMesh) UVBounds() core.Bounds2 {
	b := core.EmptyBounds2()
	for _, uv := range m.uvs {
		b = b.Union(core.Bounds2{Min: uv, Max: uv})
	}
	return b
}

// SurfaceArea returns the total area of all triangles in the mesh
func (m *TriangleMesh) SurfaceArea() float64 {
	var area float64
	for i := 0; i < m.TriangleCount(); i++ {
		area += m.Triangle(i).SurfaceArea()
	}
	return area
}

// Triangle is a lightweight view of one triangle in a mesh: a mesh
// reference and an index, never a copy of vertex data
type Triangle struct {
	mesh  *TriangleMesh
	index int
}

// vertices returns the triangle's three world-space vertex positions
func (t Triangle) vertices() (core.Vec3, core.Vec3, core.Vec3) {
	i0, i1, i2 := t.vertexIndices()
	return t.mesh.positions[i0], t.mesh.positions[i1], t.mesh.positions[i2]
}

func (t Triangle) vertexIndices() (int, int, int) {
	base := 3 * t.index
	return t.mesh.vertexIndices[base], t.mesh.vertexIndices[base+1], t.mesh.vertexIndices[base+2]
}

// uvs returns the triangle's per-vertex UVs, or the default basis
// (0,0), (1,0), (1,1) when the mesh carries none
func (t Triangle) uvs() (core.Vec2, core.Vec2, core.Vec2) {
	if t.mesh.uvs == nil {
		return core.NewVec2(0, 0), core.NewVec2(1, 0), core.NewVec2(1, 1)
	}
	i0, i1, i2 := t.vertexIndices()
	return t.mesh.uvs[i0], t.mesh.uvs[i1], t.mesh.uvs[i2]
}

// ReverseOrientation reports whether normals are flipped by user request
func (t Triangle) ReverseOrientation() bool { return t.mesh.reverseOrientation }

// TransformSwapsHandedness reports whether the mesh's object-to-world
// transform swaps handedness
func (t Triangle) TransformSwapsHandedness() bool { return t.mesh.transformSwapsHandedness }

// ObjectBound returns the triangle's bounding box in the mesh's object
// space
func (t Triangle) ObjectBound() core.Bounds3 {
	p0, p1, p2 := t.vertices()
	b, _ := core.Bounds3FromPoints(
		t.mesh.worldToObject.ApplyPoint(p0),
		t.mesh.worldToObject.ApplyPoint(p1),
		t.mesh.worldToObject.ApplyPoint(p2),
	)
	return b
}

// WorldBound returns the triangle's bounding box as the union of its
// world-space vertices. Already tight; no corner warp needed.
func (t Triangle) WorldBound() core.Bounds3 {
	p0, p1, p2 := t.vertices()
	b, _ := core.Bounds3FromPoints(p0, p1, p2)
	return b
}

// SurfaceArea returns the triangle's area
func (t Triangle) SurfaceArea() float64 {
	p0, p1, p2 := t.vertices()
	return 0.5 * p1.Subtract(p0).Cross(p2.Subtract(p0)).Length()
}

// intersectBary runs the ray-triangle test in world space and returns the
// hit parameter and barycentric coordinates. A near-zero determinant means
// the ray is parallel to (or the triangle is degenerate in) the ray frame,
// which is a miss.
func (t Triangle) intersectBary(ray core.Ray) (tHit, b0, b1, b2 float64, ok bool) {
	const epsilon = 1e-12

	p0, p1, p2 := t.vertices()
	edge1 := p1.Subtract(p0)
	edge2 := p2.Subtract(p0)

	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)
	if det > -epsilon && det < epsilon {
		return 0, 0, 0, 0, false
	}

	invDet := 1 / det
	s := ray.Origin.Subtract(p0)
	u := invDet * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v := invDet * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, 0, 0, 0, false
	}

	tHit = invDet * edge2.Dot(q)
	if tHit <= 0 || tHit > ray.TMax {
		return 0, 0, 0, 0, false
	}

	return tHit, 1 - u - v, u, v, true
}

// alphaVeto reports whether the alpha mask rejects a hit at the given
// barycentric location. A rejected hit is a miss, not an error.
func (t Triangle) alphaVeto(testAlphaTexture bool, b0, b1, b2 float64) bool {
	if !testAlphaTexture || t.mesh.alphaMask == nil {
		return false
	}
	uv0, uv1, uv2 := t.uvs()
	uvHit := uv0.Multiply(b0).Add(uv1.Multiply(b1)).Add(uv2.Multiply(b2))
	return t.mesh.alphaMask.Evaluate(uvHit) == 0
}

// Intersect returns the nearest triangle intersection along the
// world-space ray in (0, ray.TMax). The triangle's world-space vertices
// are already cached on the mesh, so no object-space round trip is needed.
func (t Triangle) Intersect(ray core.Ray, testAlphaTexture bool) (*SurfaceInteraction, float64, bool) {
	tHit, b0, b1, b2, ok := t.intersectBary(ray)
	if !ok {
		return nil, 0, false
	}
	if t.alphaVeto(testAlphaTexture, b0, b1, b2) {
		return nil, 0, false
	}

	p0, p1, p2 := t.vertices()
	uv0, uv1, uv2 := t.uvs()

	// Position partials from the 2x2 system relating the edge vectors to
	// the per-vertex UV deltas
	duv02 := uv0.Subtract(uv2)
	duv12 := uv1.Subtract(uv2)
	dp02 := p0.Subtract(p2)
	dp12 := p1.Subtract(p2)

	geoNormal := dp02.Cross(dp12).Normalize()

	var dpdu, dpdv core.Vec3
	det := duv02.X*duv12.Y - duv02.Y*duv12.X
	if math.Abs(det) < 1e-12 {
		// Degenerate UV mapping; pick any frame around the normal
		dpdu, dpdv = core.CoordinateSystem(geoNormal)
	} else {
		invDet := 1 / det
		dpdu = dp02.Multiply(duv12.Y).Subtract(dp12.Multiply(duv02.Y)).Multiply(invDet)
		dpdv = dp12.Multiply(duv02.X).Subtract(dp02.Multiply(duv12.X)).Multiply(invDet)
	}

	pHit := p0.Multiply(b0).Add(p1.Multiply(b1)).Add(p2.Multiply(b2))
	uvHit := uv0.Multiply(b0).Add(uv1.Multiply(b1)).Add(uv2.Multiply(b2))

	pAbsSum := p0.Abs().Multiply(math.Abs(b0)).
		Add(p1.Abs().Multiply(math.Abs(b1))).
		Add(p2.Abs().Multiply(math.Abs(b2)))
	pError := pAbsSum.Multiply(core.Gamma(7))

	// The triangle test runs in world space, so the interaction is built
	// there directly; normal partials of a flat triangle are zero.
	si := NewSurfaceInteraction(
		pHit, pError, uvHit,
		ray.Direction.Negate(),
		dpdu, dpdv, core.Vec3{}, core.Vec3{},
		ray.Time, t,
	)

	t.setShadingFromVertexAttributes(si, b0, b1, b2)

	return si, tHit, true
}

// setShadingFromVertexAttributes interpolates the mesh's optional
// per-vertex normals and tangents into a shading frame. The interpolated
// normal is authoritative: the geometric normal is reoriented into its
// hemisphere.
func (t Triangle) setShadingFromVertexAttributes(si *SurfaceInteraction, b0, b1, b2 float64) {
	if t.mesh.normals == nil && t.mesh.tangents == nil {
		return
	}
	i0, i1, i2 := t.vertexIndices()

	ns := si.Normal
	if t.mesh.normals != nil {
		interpolated := t.mesh.normals[i0].Multiply(b0).
			Add(t.mesh.normals[i1].Multiply(b1)).
			Add(t.mesh.normals[i2].Multiply(b2))
		if interpolated.LengthSquared() > 0 {
			ns = interpolated.Normalize()
		}
	}

	var ss core.Vec3
	if t.mesh.tangents != nil {
		ss = t.mesh.tangents[i0].Multiply(b0).
			Add(t.mesh.tangents[i1].Multiply(b1)).
			Add(t.mesh.tangents[i2].Multiply(b2))
	}
	if ss.LengthSquared() == 0 {
		ss = si.DpDu
	}
	ss = ss.Normalize()

	ts := ss.Cross(ns)
	if ts.LengthSquared() > 0 {
		ts = ts.Normalize()
		ss = ts.Cross(ns)
	} else {
		ss, ts = core.CoordinateSystem(ns)
	}

	// Normal partials across the face when per-vertex normals are present
	var dndu, dndv core.Vec3
	if t.mesh.normals != nil {
		uv0, uv1, uv2 := t.uvs()
		duv02 := uv0.Subtract(uv2)
		duv12 := uv1.Subtract(uv2)
		dn02 := t.mesh.normals[i0].Subtract(t.mesh.normals[i2])
		dn12 := t.mesh.normals[i1].Subtract(t.mesh.normals[i2])
		det := duv02.X*duv12.Y - duv02.Y*duv12.X
		if math.Abs(det) >= 1e-12 {
			invDet := 1 / det
			dndu = dn02.Multiply(duv12.Y).Subtract(dn12.Multiply(duv02.Y)).Multiply(invDet)
			dndv = dn12.Multiply(duv02.X).Subtract(dn02.Multiply(duv12.X)).Multiply(invDet)
		}
	}

	si.SetShadingGeometry(ss, ts, dndu, dndv, true)
}

// IntersectP reports whether the ray intersects the triangle, without
// building the interaction record. The alpha mask still applies.
func (t Triangle) IntersectP(ray core.Ray, testAlphaTexture bool) bool {
	_, b0, b1, b2, ok := t.intersectBary(ray)
	if !ok {
		return false
	}
	return !t.alphaVeto(testAlphaTexture, b0, b1, b2)
}
