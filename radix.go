package bvh

// sortEntry pairs an object's morton code with the object's index in the
// caller's box list. The entries only live for the duration of a build.
type sortEntry struct {
	code uint32
	idx  uint32
}

// Radix sort parameters: 8-bit digits over 32-bit codes, so four passes.
const (
	radixBits = 8
	radixBase = 1 << radixBits
	radixMask = radixBase - 1
)

func radixDigit(v uint32, shift int) uint32 {
	return (v >> shift) & radixMask
}

// radixSort stably sorts entries by code ascending, using a least
// significant digit radix sort. With workers > 1 the histogram and scatter
// phases of each pass fan out over that many goroutines; entries with equal
// codes keep their input order either way.
//
// Parallel variant adapted from
// https://haichuanwang.wordpress.com/2014/05/26/a-faster-openmp-radix-sort-implementation
func radixSort(entries []sortEntry, workers int) {
	if len(entries) < 2 {
		return
	}
	buf := make([]sortEntry, len(entries))
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers <= 1 {
		radixSortSerial(entries, buf)
		return
	}

	src, dst := entries, buf
	locals := make([][radixBase]int, workers)

	for shift := 0; shift < 32; shift += radixBits {
		// Each worker histograms its own chunk.
		for w := range locals {
			locals[w] = [radixBase]int{}
		}
		taskRange(workers, len(src), func(w, start, end int) {
			for i := start; i < end; i++ {
				locals[w][radixDigit(src[i].code, shift)]++
			}
		})

		// Reduce to global bucket counts, prefix-sum into bucket start
		// positions, then slice each bucket among the workers: worker w's
		// window begins after everything lower-indexed workers put there.
		var bucket [radixBase]int
		for w := 0; w < workers; w++ {
			for d := 0; d < radixBase; d++ {
				bucket[d] += locals[w][d]
			}
		}
		total := 0
		for d := 0; d < radixBase; d++ {
			count := bucket[d]
			bucket[d] = total
			total += count
		}
		for d := 0; d < radixBase; d++ {
			off := bucket[d]
			for w := 0; w < workers; w++ {
				count := locals[w][d]
				locals[w][d] = off
				off += count
			}
		}

		// Scatter. Chunks are identical to the histogram phase, so every
		// worker writes exactly the window it reserved above.
		taskRange(workers, len(src), func(w, start, end int) {
			for i := start; i < end; i++ {
				d := radixDigit(src[i].code, shift)
				dst[locals[w][d]] = src[i]
				locals[w][d]++
			}
		})

		src, dst = dst, src
	}
	// Four passes means the sorted data ended up back in entries.
}

// radixSortSerial is the single-threaded fallback, identical semantics.
func radixSortSerial(entries, buf []sortEntry) {
	src, dst := entries, buf
	for shift := 0; shift < 32; shift += radixBits {
		var bucket [radixBase]int
		for _, e := range src {
			bucket[radixDigit(e.code, shift)]++
		}
		total := 0
		for d := 0; d < radixBase; d++ {
			count := bucket[d]
			bucket[d] = total
			total += count
		}
		for _, e := range src {
			d := radixDigit(e.code, shift)
			dst[bucket[d]] = e
			bucket[d]++
		}
		src, dst = dst, src
	}
}
