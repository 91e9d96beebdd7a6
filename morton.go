package bvh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// mortonMax is the number of buckets per dimension of the 30-bit morton
// space. Coordinates passed to mortonEncode30 must be scaled into
// [0, mortonMax) beforehand; anything outside is clamped.
const mortonMax = 1 << 10

// expandBits30 spreads the low 10 bits of v so that two zero bits sit above
// each data bit, e.g. 1111111111 becomes 001001001001001001001001001001.
//
// See https://devblogs.nvidia.com/thinking-parallel-part-iii-tree-construction-gpu/
func expandBits30(v uint32) uint32 {
	v &= 0x3FF
	v = (v * 0x00010001) & 0xFF0000FF
	v = (v * 0x00000101) & 0x0F00F00F
	v = (v * 0x00000011) & 0xC30C30C3
	v = (v * 0x00000005) & 0x49249249
	return v
}

// mortonEncode30 converts a 3D point into a 30-bit morton code. Each
// coordinate is clamped to [0, 1023] and truncated, which divides every
// dimension into 1024 unit buckets.
func mortonEncode30(x, y, z float32) uint32 {
	xx := expandBits30(uint32(mgl32.Clamp(x, 0, mortonMax-1)))
	yy := expandBits30(uint32(mgl32.Clamp(y, 0, mortonMax-1)))
	zz := expandBits30(uint32(mgl32.Clamp(z, 0, mortonMax-1)))
	return xx<<2 | yy<<1 | zz
}
