package util

import "testing"

func TestGenerateBitPositionsDistinctOrdered(t *testing.T) {
	rng := NewRNG(42)
	positions := rng.GenerateBitPositions(100, 10000)
	if len(positions) != 100 {
		t.Fatalf("expected 100 positions, got %d", len(positions))
	}
	for i := 1; i < len(positions); i++ {
		if positions[i] <= positions[i-1] {
			t.Fatalf("positions not strictly increasing at %d", i)
		}
	}
}

func TestGenerateDenseRun(t *testing.T) {
	rng := NewRNG(1)
	run := rng.GenerateDenseRun(62, 31)
	if len(run) != 31 {
		t.Fatalf("expected 31 positions, got %d", len(run))
	}
	if run[0] != 62 || run[30] != 92 {
		t.Fatalf("unexpected bounds %d..%d", run[0], run[30])
	}
}
