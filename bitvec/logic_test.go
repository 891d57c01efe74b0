package bitvec

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/facetgo/util"
)

// adversarialPatterns covers the shapes the kernels specialize on:
// empty, all-zero words, all-one runs, one bit per word, and patterns
// hugging run boundaries.
func adversarialPatterns() [][]uint32 {
	rng := util.NewRNG(97)
	patterns := [][]uint32{
		nil,
		{0},
		{30},
		{31},
		{32},
		{0, 30, 31, 61, 62, 92, 93},
		rng.GenerateDenseRun(0, 31),
		rng.GenerateDenseRun(0, 62),
		rng.GenerateDenseRun(31, 31),
		rng.GenerateDenseRun(93, 124),
		rng.GenerateBitPositions(64, 2048),
		rng.GenerateBitPositions(512, 4096),
		rng.GenerateBitPositions(40, 1 << 20),
	}
	// One bit per word over a long stretch.
	var sparse []uint32
	for w := uint32(0); w < 200; w++ {
		sparse = append(sparse, w*31+(w%31))
	}
	patterns = append(patterns, sparse)
	return patterns
}

func buildVector(t *testing.T, c Compression, allowUnsafe bool, positions []uint32) *Vector {
	t.Helper()
	v, err := New(c, allowUnsafe)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, p := range positions {
		if err := v.SetBit(p, true); err != nil {
			t.Fatalf("SetBit(%d): %v", p, err)
		}
	}
	return v
}

// TestKernelEquivalence runs the same operations through the safe and
// unsafe kernels and requires bit-identical results.
func TestKernelEquivalence(t *testing.T) {
	if unsafeKernels == nil {
		t.Skip("unsafe kernels unavailable in this build")
	}

	patterns := adversarialPatterns()
	for _, c := range allCompressions {
		for i, left := range patterns {
			for j, right := range patterns {
				safeL := buildVector(t, None, false, left)
				unsafeL := buildVector(t, None, true, left)
				safeR := buildVector(t, c, false, right)
				unsafeR := buildVector(t, c, true, right)

				if err := safeL.AndInPlace(safeR); err != nil {
					t.Fatalf("safe AndInPlace: %v", err)
				}
				if err := unsafeL.AndInPlace(unsafeR); err != nil {
					t.Fatalf("unsafe AndInPlace: %v", err)
				}
				if !safeL.Equal(unsafeL) {
					t.Fatalf("%v pattern %d/%d: AND diverged", c, i, j)
				}

				safeO := buildVector(t, None, false, left)
				unsafeO := buildVector(t, None, true, left)
				if err := safeO.OrInPlace(safeR); err != nil {
					t.Fatalf("safe OrInPlace: %v", err)
				}
				if err := unsafeO.OrInPlace(unsafeR); err != nil {
					t.Fatalf("unsafe OrInPlace: %v", err)
				}
				if !safeO.Equal(unsafeO) {
					t.Fatalf("%v pattern %d/%d: OR diverged", c, i, j)
				}

				base := buildVector(t, None, false, left)
				sp, err := base.AndPopulation(safeR)
				if err != nil {
					t.Fatalf("safe AndPopulation: %v", err)
				}
				ubase := buildVector(t, None, true, left)
				up, err := ubase.AndPopulation(unsafeR)
				if err != nil {
					t.Fatalf("unsafe AndPopulation: %v", err)
				}
				if sp != up {
					t.Fatalf("%v pattern %d/%d: AndPopulation %d vs %d", c, i, j, sp, up)
				}

				sAny, _ := base.AndPopulationAny(safeR)
				uAny, _ := ubase.AndPopulationAny(unsafeR)
				if sAny != uAny {
					t.Fatalf("%v pattern %d/%d: AndPopulationAny diverged", c, i, j)
				}
			}
		}
	}
}

// TestDecompressEquivalence checks the decompress kernels against each
// other and against the logical content.
func TestDecompressEquivalence(t *testing.T) {
	for _, c := range []Compression{Compressed, CompressedWithPackedPosition} {
		for _, pattern := range adversarialPatterns() {
			v := buildVector(t, c, false, pattern)

			safeDst := make([]Word, v.logical)
			safeLogic{}.Decompress(safeDst, v.words[:v.physical], v.packed())

			for i := 0; i < v.logical; i++ {
				if got := v.GetWordLogical(i); got != safeDst[i] {
					t.Fatalf("%v: logical word %d: %#x vs %#x", c, i, uint32(safeDst[i]), uint32(got))
				}
			}

			if unsafeKernels == nil {
				continue
			}
			unsafeDst := make([]Word, v.logical)
			unsafeKernels.Decompress(unsafeDst, v.words[:v.physical], v.packed())
			for i := range safeDst {
				if safeDst[i] != unsafeDst[i] {
					t.Fatalf("%v: decompress kernels diverged at word %d", c, i)
				}
			}
		}
	}
}

// TestRoaringOracle cross-checks vector algebra against an independent
// bitmap implementation.
func TestRoaringOracle(t *testing.T) {
	rng := util.NewRNG(101)
	aPos := rng.GenerateBitPositions(800, 100000)
	bPos := rng.GenerateBitPositions(700, 100000)

	ra := roaring.BitmapOf(aPos...)
	rb := roaring.BitmapOf(bPos...)

	for _, c := range allCompressions {
		a := buildVector(t, c, false, aPos)
		b := buildVector(t, c, false, bPos)

		if uint64(a.Population()) != ra.GetCardinality() {
			t.Fatalf("%v: population %d, oracle %d", c, a.Population(), ra.GetCardinality())
		}

		and, err := a.AndOutOfPlace(b, None)
		if err != nil {
			t.Fatalf("%v: AndOutOfPlace: %v", c, err)
		}
		oracleAnd := roaring.And(ra, rb)
		if got := positionsOf(t, and); !equalPositions(got, oracleAnd.ToArray()) {
			t.Fatalf("%v: AND diverges from oracle", c)
		}

		or, err := OrOutOfPlace(a, b)
		if err != nil {
			t.Fatalf("%v: OrOutOfPlace: %v", c, err)
		}
		oracleOr := roaring.Or(ra, rb)
		if got := positionsOf(t, or); !equalPositions(got, oracleOr.ToArray()) {
			t.Fatalf("%v: OR diverges from oracle", c)
		}

		flat, err := NewFromVector(None, a)
		if err != nil {
			t.Fatalf("%v: flatten: %v", c, err)
		}
		pop, err := flat.AndPopulation(b)
		if err != nil {
			t.Fatalf("%v: AndPopulation: %v", c, err)
		}
		if uint64(pop) != oracleAnd.GetCardinality() {
			t.Fatalf("%v: AndPopulation %d, oracle %d", c, pop, oracleAnd.GetCardinality())
		}
	}
}
