// Command raycast builds a BVH over a grid of boxes and runs a few queries
// against it, printing what they hit.
package main

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/akmonengine/bvh"
	"github.com/akmonengine/bvh/geom"
)

func main() {
	// A 20x20x20 grid of unit boxes, spaced two units apart.
	var boxes []geom.AABB
	for x := 0; x < 20; x++ {
		for y := 0; y < 20; y++ {
			for z := 0; z < 20; z++ {
				fx, fy, fz := float32(x)*2, float32(y)*2, float32(z)*2
				boxes = append(boxes, geom.AABBFromExtents(fx, fy, fz, fx+1, fy+1, fz+1))
			}
		}
	}

	tree := bvh.New()
	if !tree.Generate(boxes) {
		fmt.Fprintln(os.Stderr, "too many boxes for a single tree")
		os.Exit(1)
	}
	fmt.Printf("indexed %d boxes\n", tree.Size())

	// A ray down the column of boxes at x=z=0.5.
	ray := tree.Query(bvh.IntersectRay(mgl32.Vec3{0.5, -10, 0.5}, mgl32.Vec3{0, 1, 0}))
	count := 0
	for {
		idx, ok := ray.Next()
		if !ok {
			break
		}
		count++
		fmt.Printf("ray hit box %d at %v\n", idx, boxes[idx].Min)
	}
	fmt.Printf("ray hit %d boxes\n", count)

	// Everything within a few units of the grid center.
	region := geom.AABBFromExtents(17, 17, 17, 23, 23, 23)
	near := tree.Query(bvh.IntersectAABB(region))
	count = 0
	for {
		if _, ok := near.Next(); !ok {
			break
		}
		count++
	}
	fmt.Printf("%d boxes overlap the probe region\n", count)
}
