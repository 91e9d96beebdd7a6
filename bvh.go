// Package bvh implements a bounding-volume hierarchy over axis-aligned
// bounding boxes, for accelerating point, box, segment and ray queries
// against large static scenes.
//
// The tree is built by sorting object centroids along a morton space-filling
// curve and recursively splitting the sorted range at the highest differing
// code bit, following the construction described in
// https://devblogs.nvidia.com/thinking-parallel-part-iii-tree-construction-gpu/
// Nodes are stored linearly in depth-first order, so a traversal that
// rejects a subtree skips past it with a single index addition.
package bvh

import (
	"math/bits"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/op/go-logging"

	"github.com/akmonengine/bvh/geom"
)

var logger = logging.MustGetLogger("bvh")

// MaxSize is the maximum number of boxes a single tree can hold. A tree with
// N leaves has 2N-1 nodes, and node counts must fit in a 31-bit unsigned
// integer.
const MaxSize = 1 << 30

// leafBit marks a node as a leaf in its tag word.
const leafBit uint32 = 1 << 31

// node is one slot of the linearized tree. num is a tagged word: with the
// high bit set the node is a leaf and the low 31 bits are the object index;
// with the high bit clear the node is internal and the low 31 bits are the
// number of nodes in the subtree rooted here, itself included.
type node struct {
	box geom.AABB
	num uint32
} // 28 bytes

func (n node) isLeaf() bool {
	return n.num&leafBit != 0
}

func (n node) objectIndex() uint32 {
	return n.num &^ leafBit
}

// subtreeSize is the number of tree slots this node's subtree occupies,
// which is exactly how far a traversal must jump to skip it.
func (n node) subtreeSize() int {
	if n.isLeaf() {
		return 1
	}
	return int(n.num)
}

// BVH is a bounding-volume hierarchy over a list of object bounding boxes.
// Build one with Generate, then run any number of concurrent queries against
// it; the tree is immutable between builds.
type BVH struct {
	// Workers caps the goroutines used by the keying and sorting phases of
	// Generate. Zero means one worker per CPU.
	Workers int

	tree      []node
	numLeaves int
}

// New returns an empty hierarchy.
func New() *BVH {
	return &BVH{}
}

// Clear drops any generated tree. Outstanding queries become invalid.
func (b *BVH) Clear() {
	b.tree = nil
	b.numLeaves = 0
}

// Size returns the number of leaves, i.e. the number of objects indexed.
func (b *BVH) Size() int {
	return b.numLeaves
}

// Generate builds the hierarchy from the given object bounding boxes,
// wiping any previous tree first. boxes[i] keeps index i in query results.
// Individually empty boxes are allowed; they never match a query.
//
// Returns false if there are too many boxes (more than MaxSize, about one
// billion), in which case the hierarchy is left empty.
func (b *BVH) Generate(boxes []geom.AABB) bool {
	b.Clear()

	if len(boxes) > MaxSize {
		return false
	}
	if len(boxes) == 0 {
		return true
	}

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	b.tree = make([]node, 0, 2*len(boxes)-1)

	rootBox := geom.NewAABB()
	for _, box := range boxes {
		rootBox.ExpandAABB(box)
	}

	keyStart := time.Now()
	entries := makeEntries(boxes, rootBox, workers)
	sortStart := time.Now()
	radixSort(entries, workers)
	emitStart := time.Now()
	b.emit(boxes, entries, rootBox, 0, len(entries)-1)

	logger.Debugf(
		"generated bvh: %d leaves, %d nodes (keying %v, sort %v, emit %v)",
		b.numLeaves, len(b.tree),
		sortStart.Sub(keyStart), emitStart.Sub(sortStart), time.Since(emitStart),
	)
	return true
}

// makeEntries computes the morton code of every box center, scaled so the
// root box spans the morton space, in parallel chunks.
func makeEntries(boxes []geom.AABB, rootBox geom.AABB, workers int) []sortEntry {
	entries := make([]sortEntry, len(boxes))

	// Per-axis multiplier taking box centers into [0, 1024). An axis with no
	// extent gets scale 0 rather than +Inf, so every center lands in bucket 0
	// on that axis and no NaN can reach the encoder. A fully-empty root box
	// (every input empty) zeroes all three.
	var scale mgl32.Vec3
	if !rootBox.IsEmpty() {
		ext := rootBox.Max.Sub(rootBox.Min)
		for i := 0; i < 3; i++ {
			if ext[i] > 0 {
				scale[i] = mortonMax / ext[i]
			}
		}
	}

	taskRange(workers, len(entries), func(_, start, end int) {
		for i := start; i < end; i++ {
			c := boxes[i].Center().Sub(rootBox.Min)
			entries[i] = sortEntry{
				code: mortonEncode30(c[0]*scale[0], c[1]*scale[1], c[2]*scale[2]),
				idx:  uint32(i),
			}
		}
	})
	return entries
}

// findSplit locates the index of the last entry in [first, last] on the low
// side of the highest morton bit that differs across the range. split+1 is
// the first entry with that bit set.
func findSplit(entries []sortEntry, first, last int) int {
	firstCode := entries[first].code
	lastCode := entries[last].code

	// Identical codes mean every object shares one morton bucket; split the
	// range down the middle.
	if firstCode == lastCode {
		return (first + last) / 2
	}

	// Number of leading bits shared by the whole range.
	commonPrefix := bits.LeadingZeros32(firstCode ^ lastCode)

	// Binary search for the last entry sharing strictly more than
	// commonPrefix leading bits with the first one.
	split := first
	step := last - first
	for {
		step = (step + 1) / 2
		if next := split + step; next < last {
			if bits.LeadingZeros32(firstCode^entries[next].code) > commonPrefix {
				split = next
			}
		}
		if step <= 1 {
			break
		}
	}
	return split
}

// emit recursively appends the subtree covering entries[first..last] in
// depth-first order. currBox must already enclose every box in the range.
func (b *BVH) emit(boxes []geom.AABB, entries []sortEntry, currBox geom.AABB, first, last int) {
	if first == last {
		b.tree = append(b.tree, node{box: currBox, num: leafBit | entries[first].idx})
		b.numLeaves++
		return
	}

	// Internal node. A range of k objects flattens to exactly 2k-1 slots,
	// this one included; traversal uses that count as its skip distance.
	b.tree = append(b.tree, node{box: currBox, num: uint32(2*(last-first+1) - 1)})

	split := findSplit(entries, first, last)

	leftBox := geom.NewAABB()
	for i := first; i <= split; i++ {
		leftBox.ExpandAABB(boxes[entries[i].idx])
	}
	b.emit(boxes, entries, leftBox, first, split)

	rightBox := geom.NewAABB()
	for i := split + 1; i <= last; i++ {
		rightBox.ExpandAABB(boxes[entries[i].idx])
	}
	b.emit(boxes, entries, rightBox, split+1, last)
}
