package bvh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/akmonengine/bvh/geom"
)

// Predicate decides whether a query primitive intersects a node's bounding
// box. It must be pure: the traversal may evaluate it against any node any
// number of times.
type Predicate func(geom.AABB) bool

// Query lazily walks a hierarchy, yielding the index of every object whose
// bounding box satisfies the predicate. It borrows the tree: results are
// undefined if the BVH is regenerated or cleared while the query is live.
//
// Each Query carries its own cursor, so any number of them may traverse one
// BVH concurrently.
type Query struct {
	tree   []node
	pred   Predicate
	cursor int
}

// Query starts a new traversal of the tree with the given predicate.
func (b *BVH) Query(pred Predicate) *Query {
	return &Query{tree: b.tree, pred: pred}
}

// Next advances to the next matching object and returns its index. ok is
// false once the traversal is exhausted.
//
// Indices come out in depth-first order of the tree, which is the morton
// order of the object centroids. Matches along a ray are NOT sorted by
// distance.
func (q *Query) Next() (index int, ok bool) {
	for q.cursor < len(q.tree) {
		n := q.tree[q.cursor]
		if !q.pred(n.box) {
			// Nothing below this node can match either; hop the subtree.
			q.cursor += n.subtreeSize()
			continue
		}
		q.cursor++
		if n.isLeaf() {
			return int(n.objectIndex()), true
		}
	}
	return 0, false
}

// Reset rewinds the traversal to the root, keeping the predicate.
func (q *Query) Reset() {
	q.cursor = 0
}

// ResetPredicate rewinds the traversal and swaps in a new predicate.
func (q *Query) ResetPredicate(pred Predicate) {
	q.pred = pred
	q.cursor = 0
}

// IntersectPoint matches boxes containing the point.
func IntersectPoint(pt mgl32.Vec3) Predicate {
	return func(box geom.AABB) bool {
		return box.IntersectsPoint(pt)
	}
}

// IntersectAABB matches boxes overlapping the given box.
func IntersectAABB(q geom.AABB) Predicate {
	return func(box geom.AABB) bool {
		return box.IntersectsAABB(q)
	}
}

// IntersectSegment matches boxes crossed by the segment from segA to segB.
// The separating-axis setup is computed once here and shared by every box
// test.
func IntersectSegment(segA, segB mgl32.Vec3) Predicate {
	d := segB.Sub(segA).Mul(0.5)
	mid := segA.Add(d)
	ad := geom.Abs(d)
	return func(box geom.AABB) bool {
		return box.IntersectsSegmentPrecalc(d, mid, ad)
	}
}

// IntersectRay matches boxes crossed by the ray leaving origin along dir.
// dir must be normalized and free of NaNs; zero components are fine (their
// reciprocals become ±Inf, which the slab test handles).
func IntersectRay(origin, dir mgl32.Vec3) Predicate {
	invDir := geom.Recip(dir)
	return func(box geom.AABB) bool {
		return box.IntersectsRay(origin, invDir)
	}
}
