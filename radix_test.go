package bvh

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func randomEntries(r *rand.Rand, n int, keySpace uint32) []sortEntry {
	entries := make([]sortEntry, n)
	for i := range entries {
		entries[i] = sortEntry{code: r.Uint32() % keySpace, idx: uint32(i)}
	}
	return entries
}

func referenceSort(entries []sortEntry) []sortEntry {
	out := make([]sortEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].code < out[j].code })
	return out
}

func TestRadixSortSerial(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		keySpace uint32
	}{
		{"small distinct", 17, 1 << 30},
		{"large distinct", 5000, 1 << 30},
		{"heavy duplicates", 5000, 16},
		{"single key", 1000, 1},
		{"keys above one digit", 3000, 1 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rand.New(rand.NewSource(42))
			entries := randomEntries(r, tt.n, tt.keySpace)
			want := referenceSort(entries)

			radixSort(entries, 1)

			if diff := cmp.Diff(want, entries, cmp.AllowUnexported(sortEntry{})); diff != "" {
				t.Errorf("sorted entries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRadixSortParallel(t *testing.T) {
	for _, workers := range []int{2, 3, 4, 8, 17} {
		r := rand.New(rand.NewSource(7))
		entries := randomEntries(r, 10000, 1<<24)
		want := referenceSort(entries)

		radixSort(entries, workers)

		if diff := cmp.Diff(want, entries, cmp.AllowUnexported(sortEntry{})); diff != "" {
			t.Errorf("workers=%d: sorted entries mismatch (-want +got):\n%s", workers, diff)
		}
	}
}

func TestRadixSortStability(t *testing.T) {
	// Entries sharing a code must keep their input order, for both variants.
	for _, workers := range []int{1, 4} {
		r := rand.New(rand.NewSource(3))
		entries := randomEntries(r, 4000, 8)

		radixSort(entries, workers)

		for i := 1; i < len(entries); i++ {
			prev, cur := entries[i-1], entries[i]
			if prev.code > cur.code {
				t.Fatalf("workers=%d: entries[%d].code = %d above next code %d", workers, i-1, prev.code, cur.code)
			}
			if prev.code == cur.code && prev.idx >= cur.idx {
				t.Fatalf("workers=%d: equal codes reordered at %d: idx %d before %d", workers, i, prev.idx, cur.idx)
			}
		}
	}
}

func TestRadixSortDegenerate(t *testing.T) {
	radixSort(nil, 4)

	one := []sortEntry{{code: 99, idx: 0}}
	radixSort(one, 4)
	if one[0].code != 99 {
		t.Errorf("single entry disturbed: %+v", one[0])
	}

	// More workers than entries must not break the chunking.
	three := []sortEntry{{code: 3, idx: 0}, {code: 1, idx: 1}, {code: 2, idx: 2}}
	radixSort(three, 64)
	if three[0].code != 1 || three[1].code != 2 || three[2].code != 3 {
		t.Errorf("tiny input sorted wrong: %+v", three)
	}
}
