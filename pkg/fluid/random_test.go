package fluid

import (
	"slices"
	"testing"
)

func TestSampleDistinct(t *testing.T) {
	src := NewSource(99)
	for _, tc := range []struct{ k, n int }{{0, 5}, {1, 1}, {3, 10}, {10, 10}, {7, 3}} {
		got := src.SampleDistinct(tc.k, tc.n)
		if want := min(tc.k, tc.n); len(got) != want {
			t.Fatalf("SampleDistinct(%d, %d) returned %d values, want %d", tc.k, tc.n, len(got), want)
		}
		seen := make(map[int]bool)
		for _, v := range got {
			if v < 0 || v >= tc.n || seen[v] {
				t.Fatalf("SampleDistinct(%d, %d) = %v", tc.k, tc.n, got)
			}
			seen[v] = true
		}
	}
}

func TestSourceReproducible(t *testing.T) {
	a, b := NewSource(5), NewSource(5)
	if !slices.Equal(a.SampleDistinct(4, 100), b.SampleDistinct(4, 100)) {
		t.Error("equal seeds produced different samples")
	}
	for i := 0; i < 20; i++ {
		if x, y := a.ChooseUniform(7), b.ChooseUniform(7); x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
	}
}

func TestSourceForPrefersInjectedSource(t *testing.T) {
	stub := &scriptedSource{}
	if sourceFor(Options{Source: stub, Seed: SeedPtr(1)}) != Source(stub) {
		t.Error("injected Source was not used")
	}
}
