package fluid

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/graph"
)

func TestRefineBounds(t *testing.T) {
	p := mustNew(t, Options{Variant: VariantFluidCPlus, TieBreak: TieLargest, Order: OrderDegree, Seed: SeedPtr(3)})
	rf := &Refiner{Propagator: p, MaxRestarts: 2, MaxIterations: 6}

	res, stats, err := rf.Refine(context.Background(), graph.Karate(), 2)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if stats.Iterations < 1 || stats.Iterations > 6 {
		t.Errorf("Iterations = %d, want 1..6", stats.Iterations)
	}
	if stats.Restarts > 2 {
		t.Errorf("Restarts = %d, want <= 2", stats.Restarts)
	}
	if len(stats.NMI) != stats.Iterations-1 {
		t.Errorf("len(NMI) = %d, want %d", len(stats.NMI), stats.Iterations-1)
	}
	for _, v := range stats.NMI {
		if v < 0 || v > 1+1e-9 {
			t.Errorf("NMI %v outside [0,1]", v)
		}
	}
	if len(res.Labels) != 34 || res.K > 2 || res.K < 1 {
		t.Errorf("result shape: %d labels, K=%d", len(res.Labels), res.K)
	}
}

func TestRefineDeterministic(t *testing.T) {
	run := func() (Result, RefineStats) {
		rf := NewRefiner(mustNew(t, Options{Variant: VariantFluidCPlus, Seed: SeedPtr(11)}))
		res, stats, err := rf.Refine(context.Background(), graph.Karate(), 3)
		if err != nil {
			t.Fatalf("Refine: %v", err)
		}
		return res, stats
	}
	a, sa := run()
	b, sb := run()
	if !slices.Equal(a.Labels, b.Labels) || sa.Iterations != sb.Iterations || sa.Restarts != sb.Restarts {
		t.Errorf("refinement with equal seeds differs: %+v vs %+v", sa, sb)
	}
}

func TestRefineErrors(t *testing.T) {
	ctx := context.Background()
	if _, _, err := (&Refiner{}).Refine(ctx, graph.Triangles(), 2); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("nil propagator error = %v", err)
	}
	rf := NewRefiner(mustNew(t, Options{Seed: SeedPtr(1)}))
	if _, _, err := rf.Refine(ctx, graph.Triangles(), 9); !errors.Is(err, errors.ErrCodeInvalidCommunityCount) {
		t.Errorf("k > n error = %v", err)
	}
	if _, _, err := rf.Refine(ctx, graph.New(), 1); !errors.Is(err, errors.ErrCodeEmptyGraph) {
		t.Errorf("empty graph error = %v", err)
	}
}

func TestRefineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rf := NewRefiner(mustNew(t, Options{Seed: SeedPtr(1)}))
	res, stats, err := rf.Refine(ctx, graph.Triangles(), 2)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if stats.Iterations != 0 || res.Stop != StopCancelled {
		t.Errorf("Iterations = %d, Stop = %s", stats.Iterations, res.Stop)
	}
	if len(res.Seeds) != 2 {
		t.Errorf("Seeds = %v", res.Seeds)
	}
}

func TestReseed(t *testing.T) {
	src := &scriptedSource{choices: []int{0, 0}}
	seeds, ok := reseed([][]int{{0, 1}, {2, 3}}, map[int]bool{0: true, 3: true}, src)
	if !ok || !slices.Equal(seeds, []int{1, 2}) {
		t.Errorf("reseed = %v, %v; want [1 2], true", seeds, ok)
	}
	if _, ok := reseed([][]int{{0, 1}, {2}}, map[int]bool{2: true}, src); ok {
		t.Error("reseed should fail when a community has only bad members")
	}
}

// reseedSource records whether the refiner has started drawing new seeds.
type reseedSource struct {
	scriptedSource
	reseeded bool
}

func (s *reseedSource) ChooseUniform(n int) int {
	s.reseeded = true
	return s.scriptedSource.ChooseUniform(n)
}

// On the path a-b-c-d, seeds a and d split the path in two. After the first
// reseed the scorer starts favoring community 0, so the second run collapses
// everything into one community. The NMI drop must mark the second seeds bad,
// which leaves no seed to draw from.
func TestRefineMarksSeedsBadWhenPartitionDrifts(t *testing.T) {
	g := mustGraph(t, []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}})
	src := &reseedSource{scriptedSource: scriptedSource{seeds: []int{0, 3}}}
	scorer := ScorerFunc(func(v Vote) float64 {
		if !src.reseeded {
			return v.Density
		}
		if v.Community == 0 {
			return 1
		}
		return 0
	})
	p := mustNew(t, Options{TieBreak: TieLargest, Source: src, Scorer: scorer})
	rf := &Refiner{Propagator: p, MaxRestarts: 5, MaxIterations: 10}

	res, stats, err := rf.Refine(context.Background(), g, 2)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if stats.Iterations != 2 || stats.Restarts != 1 || !stats.Exhausted {
		t.Errorf("stats = %+v, want 2 iterations, 1 restart, exhausted", stats)
	}
	if len(stats.NMI) != 1 || stats.NMI[0] != 0 {
		t.Errorf("NMI = %v, want [0]", stats.NMI)
	}
	if !slices.Equal(res.Seeds, []string{"b", "c"}) {
		t.Errorf("Seeds = %v, want [b c]", res.Seeds)
	}
	if !slices.Equal(res.Labels, []int{0, 0, 0, 0}) {
		t.Errorf("Labels = %v, want [0 0 0 0]", res.Labels)
	}
}

// sharedView hands out its own node slice.
type sharedView struct {
	ids []string
}

func (v sharedView) Nodes() []string                       { return v.ids }
func (v sharedView) Neighbors(id string) ([]string, error) { return nil, nil }
func (v sharedView) Size() int                             { return len(v.ids) }

func TestRefineCancelledCopiesNodes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	view := sharedView{ids: []string{"a", "b", "c"}}
	res, _, err := NewRefiner(mustNew(t, Options{Seed: SeedPtr(1)})).Refine(ctx, view, 2)
	if err != nil {
		t.Fatal(err)
	}
	res.Nodes[0] = "changed"
	if view.ids[0] != "a" {
		t.Error("result shares its node slice with the view")
	}
}
