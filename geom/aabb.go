package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	negInf = float32(math.Inf(-1))
	posInf = float32(math.Inf(1))
)

// Epsilon is the float32 machine epsilon, used as slack in the cross-axis
// separating-axis tests so that exactly-touching segments still register as
// intersecting. For coordinates much larger than 1 the absolute slack becomes
// too tight; callers working at planetary scales should recenter their data.
const Epsilon = float32(1.1920929e-07)

// AABB represents an axis-aligned bounding box. Its surface is inclusive: a
// point lying exactly on a face or edge is considered inside.
//
// A box can be "empty", meaning no intersection test succeeds against it.
// The empty state is encoded as Min[0] > Max[0]. Use NewAABB or Clear to
// obtain an empty box; the zero value is NOT empty (it is the single point
// at the origin).
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAABB returns an empty bounding box.
func NewAABB() AABB {
	return AABB{Min: mgl32.Vec3{1, 0, 0}, Max: mgl32.Vec3{-1, 0, 0}}
}

// AABBFromPoint returns the degenerate box containing only pt.
func AABBFromPoint(pt mgl32.Vec3) AABB {
	return AABB{Min: pt, Max: pt}
}

// AABBFromExtents builds a box from explicit min/max components.
func AABBFromExtents(xmin, ymin, zmin, xmax, ymax, zmax float32) AABB {
	return AABB{Min: mgl32.Vec3{xmin, ymin, zmin}, Max: mgl32.Vec3{xmax, ymax, zmax}}
}

// IsEmpty reports whether the box is in the empty state.
func (a AABB) IsEmpty() bool {
	return a.Min[0] > a.Max[0]
}

// Clear resets the box to the empty state.
func (a *AABB) Clear() {
	a.Min = mgl32.Vec3{1, 0, 0}
	a.Max = mgl32.Vec3{-1, 0, 0}
}

// Center returns the center point of the box.
func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// ExpandPoint grows the box to include the given point.
func (a *AABB) ExpandPoint(pt mgl32.Vec3) {
	if a.IsEmpty() {
		a.Min = pt
		a.Max = pt
		return
	}
	for i := 0; i < 3; i++ {
		a.Min[i] = min(a.Min[i], pt[i])
		a.Max[i] = max(a.Max[i], pt[i])
	}
}

// ExpandAABB grows the box to include the given box. Expanding by an empty
// box leaves the receiver unchanged; expanding an empty box adopts the
// operand.
func (a *AABB) ExpandAABB(box AABB) {
	if box.IsEmpty() {
		return
	}
	if a.IsEmpty() {
		*a = box
		return
	}
	for i := 0; i < 3; i++ {
		a.Min[i] = min(a.Min[i], box.Min[i])
		a.Max[i] = max(a.Max[i], box.Max[i])
	}
}

// IntersectsPoint reports whether the point lies inside the box.
func (a AABB) IntersectsPoint(pt mgl32.Vec3) bool {
	return pt[0] >= a.Min[0] && pt[0] <= a.Max[0] &&
		pt[1] >= a.Min[1] && pt[1] <= a.Max[1] &&
		pt[2] >= a.Min[2] && pt[2] <= a.Max[2]
}

// IntersectsAABB reports whether the two boxes overlap. The surfaces are
// inclusive, so boxes sharing only a face still intersect.
func (a AABB) IntersectsAABB(box AABB) bool {
	if a.IsEmpty() || box.IsEmpty() {
		return false
	}
	return a.Min[0] <= box.Max[0] && a.Max[0] >= box.Min[0] &&
		a.Min[1] <= box.Max[1] && a.Max[1] >= box.Min[1] &&
		a.Min[2] <= box.Max[2] && a.Max[2] >= box.Min[2]
}

// IntersectsSegment reports whether the segment from segA to segB passes
// through the box, using the separating axis theorem.
//
// See https://www.gamedev.net/forums/topic/338987-aabb---line-segment-intersection-test/?do=findComment&comment=3209917
func (a AABB) IntersectsSegment(segA, segB mgl32.Vec3) bool {
	d := segB.Sub(segA).Mul(0.5)
	return a.IntersectsSegmentPrecalc(d, segA.Add(d), Abs(d))
}

// IntersectsSegmentPrecalc is the precomputed form of IntersectsSegment for
// testing many boxes against one segment: d is the segment half-vector,
// mid the segment midpoint (segA + d), and ad the component-wise absolute
// value of d.
func (a AABB) IntersectsSegmentPrecalc(d, mid, ad mgl32.Vec3) bool {
	if a.IsEmpty() {
		return false
	}
	e := a.Max.Sub(a.Min).Mul(0.5)
	c := mid.Sub(a.Max.Add(a.Min).Mul(0.5))

	if mgl32.Abs(c[0]) > e[0]+ad[0] {
		return false
	}
	if mgl32.Abs(c[1]) > e[1]+ad[1] {
		return false
	}
	if mgl32.Abs(c[2]) > e[2]+ad[2] {
		return false
	}

	if mgl32.Abs(d[1]*c[2]-d[2]*c[1]) > e[1]*ad[2]+e[2]*ad[1]+Epsilon {
		return false
	}
	if mgl32.Abs(d[2]*c[0]-d[0]*c[2]) > e[2]*ad[0]+e[0]*ad[2]+Epsilon {
		return false
	}
	if mgl32.Abs(d[0]*c[1]-d[1]*c[0]) > e[0]*ad[1]+e[1]*ad[0]+Epsilon {
		return false
	}

	return true
}

// IntersectsRay reports whether a ray starting at origin passes through the
// box, using the slab method (see
// https://tavianator.com/fast-branchless-raybounding-box-intersections-part-2-nans/
// for background). invNormDir is the component-wise reciprocal of the
// normalized ray direction; components where the direction is zero must be
// ±Inf (which is what float division produces), never NaN.
func (a AABB) IntersectsRay(origin, invNormDir mgl32.Vec3) bool {
	if a.IsEmpty() {
		return false
	}

	tmin := negInf
	tmax := posInf

	for i := 0; i < 3; i++ {
		inv := invNormDir[i]
		if math.IsInf(float64(inv), 0) {
			// Ray parallel to this axis: the slab imposes no constraint when
			// the origin lies inside it (faces inclusive) and can never be
			// entered otherwise.
			if origin[i] < a.Min[i] || origin[i] > a.Max[i] {
				return false
			}
			continue
		}

		t1 := (a.Min[i] - origin[i]) * inv
		t2 := (a.Max[i] - origin[i]) * inv
		tmin = max(tmin, min(t1, t2))
		tmax = min(tmax, max(t1, t2))
	}

	// >= rather than > so grazing rays and zero-thickness boxes still hit.
	return tmax >= tmin && tmax >= 0
}

// Abs returns the component-wise absolute value of v.
func Abs(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{mgl32.Abs(v[0]), mgl32.Abs(v[1]), mgl32.Abs(v[2])}
}

// Recip returns the component-wise reciprocal of v. Zero components map to
// ±Inf following IEEE division.
func Recip(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{1 / v[0], 1 / v[1], 1 / v[2]}
}
