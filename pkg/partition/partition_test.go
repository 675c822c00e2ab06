package partition

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/fluidc/pkg/graph"
)

func TestGroups(t *testing.T) {
	groups := Groups([]int{1, 0, -1, 1, 0}, 3)
	want := [][]int{{1, 4}, {0, 3}, nil}
	for c := range want {
		if !slices.Equal(groups[c], want[c]) {
			t.Errorf("group %d = %v, want %v", c, groups[c], want[c])
		}
	}
	if got := NonEmpty(groups); len(got) != 2 {
		t.Errorf("NonEmpty len = %d, want 2", len(got))
	}
}

func TestRelabelAndEquivalent(t *testing.T) {
	if got := Relabel([]int{5, 5, 2, -1, 7, 2}); !slices.Equal(got, []int{0, 0, 1, -1, 2, 1}) {
		t.Errorf("Relabel = %v", got)
	}
	if !Equivalent([]int{1, 1, 0}, []int{0, 0, 3}) {
		t.Error("renamed partitions should be equivalent")
	}
	if Equivalent([]int{1, 1, 0}, []int{0, 1, 1}) {
		t.Error("different partitions reported equivalent")
	}
	if Equivalent([]int{0}, []int{0, 0}) {
		t.Error("different lengths reported equivalent")
	}
}

func TestNMI(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want float64
	}{
		{"identical", []int{0, 0, 1, 1}, []int{0, 0, 1, 1}, 1},
		{"renamed", []int{0, 0, 1, 1}, []int{1, 1, 0, 0}, 1},
		{"independent", []int{0, 0, 1, 1}, []int{0, 1, 0, 1}, 0},
		{"both trivial", []int{3, 3, 3}, []int{0, 0, 0}, 1},
		{"one trivial", []int{0, 0, 0, 0}, []int{0, 0, 1, 1}, 0},
		{"length mismatch", []int{0, 1}, []int{0}, 0},
		{"empty", nil, nil, 0},
		// sklearn.metrics.normalized_mutual_info_score([0,0,0,1,1,1],[0,0,1,1,2,2])
		{"refinement", []int{0, 0, 0, 1, 1, 1}, []int{0, 0, 1, 1, 2, 2}, 0.5158037429793888},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NMI(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NMI = %v, want %v", got, tt.want)
			}
			if back := NMI(tt.b, tt.a); math.Abs(back-got) > 1e-12 {
				t.Errorf("NMI not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestNMITreatsUnlabeledAsCluster(t *testing.T) {
	a := []int{0, 0, -1, -1}
	b := []int{1, 1, 0, 0}
	if got := NMI(a, b); math.Abs(got-1) > 1e-12 {
		t.Errorf("NMI = %v, want 1", got)
	}
}

func TestModularity(t *testing.T) {
	g := graph.Triangles()

	// Two triangles, each its own community: Q = 2 * (3/6 - (6/12)^2) = 0.5
	if got := Modularity(g, []int{0, 0, 0, 1, 1, 1}); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Modularity(split) = %v, want 0.5", got)
	}

	// Everything together: Q = 1 - 1 = 0
	if got := Modularity(g, []int{0, 0, 0, 0, 0, 0}); math.Abs(got) > 1e-9 {
		t.Errorf("Modularity(single) = %v, want 0", got)
	}

	if got := Modularity(graph.New(), nil); got != 0 {
		t.Errorf("Modularity(empty) = %v, want 0", got)
	}

	split := Modularity(g, []int{0, 0, 0, 1, 1, 1})
	partial := Modularity(g, []int{0, 0, 0, -1, -1, -1})
	if partial >= split {
		t.Errorf("unlabeled singletons should lower modularity: %v >= %v", partial, split)
	}
}
