package history

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/fluid"
)

func sampleRun(source string, created time.Time) *Run {
	run := NewRun(source, "abc123")
	run.CreatedAt = created
	run.Options = Options{K: 2, Seed: 7, Variant: "fluidc", TieBreak: "random", Order: "graph"}
	run.Record(fluid.Result{
		Nodes:     []string{"a", "b", "c"},
		Labels:    []int{0, 0, 1},
		K:         2,
		Rounds:    3,
		Converged: true,
		Stop:      fluid.StopConverged,
	}, 0.25)
	return run
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	older := sampleRun("old.json", base)
	newer := sampleRun("new.json", base.Add(time.Minute))
	for _, r := range []*Run{older, newer} {
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := s.Get(ctx, older.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Source != "old.json" || got.Rounds != 3 || !slices.Equal(got.Labels, []int{0, 0, 1}) || !got.CreatedAt.Equal(base) {
		t.Errorf("Get = %+v", got)
	}
	if got.Communities() != 2 || !slices.Equal(got.Sizes, []int{2, 1}) {
		t.Errorf("Sizes = %v", got.Sizes)
	}

	runs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != newer.ID || runs[1].ID != older.ID {
		t.Errorf("List order wrong: %v", runs)
	}
	if runs, _ := s.List(ctx, 1); len(runs) != 1 || runs[0].ID != newer.ID {
		t.Errorf("List(1) = %v", runs)
	}

	if err := s.Delete(ctx, older.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, older.ID); !errors.Is(err, errors.ErrCodeRunNotFound) {
		t.Errorf("Get after Delete: %v", err)
	}
	if err := s.Delete(ctx, older.ID); err != nil {
		t.Errorf("Delete of missing run: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if s.Path() != dir {
		t.Errorf("Path = %q", s.Path())
	}
	testStore(t, s)
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := s.Get(ctx, "../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Get(traversal) = %v", err)
	}
	run := sampleRun("x", time.Now())
	run.ID = ""
	if err := s.Save(ctx, run); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Save(empty id) = %v", err)
	}
}

func TestFileStoreSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Save(ctx, sampleRun("ok", time.Now())); err != nil {
		t.Fatal(err)
	}
	runs, err := s.List(ctx, 10)
	if err != nil || len(runs) != 1 {
		t.Errorf("List = %d runs, %v; want 1", len(runs), err)
	}
}

func TestRunResult(t *testing.T) {
	run := sampleRun("x", time.Now())
	res := run.Result()
	if res.K != 2 || res.Stop != fluid.StopConverged || res.Assignment()["c"] != 1 {
		t.Errorf("Result = %+v", res)
	}
	if len(run.ID) != 36 {
		t.Errorf("ID %q is not a uuid", run.ID)
	}
}
