package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/fluidc/pkg/errors"
)

func buildGraph(t *testing.T, nodes []string, edges [][2]string) *Graph {
	t.Helper()
	g := New()
	for _, id := range nodes {
		if err := g.AddNode(id); err != nil {
			t.Fatalf("AddNode(%q): %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%q, %q): %v", e[0], e[1], err)
		}
	}
	return g
}

func TestGraphBasics(t *testing.T) {
	g := buildGraph(t,
		[]string{"c", "a", "b", "z"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"a", "b"}, {"b", "b"}},
	)

	if g.Size() != 4 {
		t.Errorf("Size() = %d, want 4", g.Size())
	}
	if got := g.Nodes(); !slices.Equal(got, []string{"c", "a", "b", "z"}) {
		t.Errorf("Nodes() = %v, want insertion order", got)
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3 (duplicates and self-loops dropped)", g.EdgeCount())
	}

	nbrs, err := g.Neighbors("a")
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	if !slices.Equal(nbrs, []string{"c", "b"}) {
		t.Errorf("Neighbors(a) = %v, want [c b] in node order", nbrs)
	}

	iso, err := g.Neighbors("z")
	if err != nil {
		t.Fatalf("Neighbors(z): %v", err)
	}
	if len(iso) != 0 {
		t.Errorf("Neighbors(z) = %v, want empty", iso)
	}

	if d, _ := g.Degree("b"); d != 2 {
		t.Errorf("Degree(b) = %d, want 2", d)
	}
	if idx, ok := g.Index("b"); !ok || idx != 2 {
		t.Errorf("Index(b) = %d, %v", idx, ok)
	}
}

func TestGraphNodesIsCopy(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, nil)
	nodes := g.Nodes()
	nodes[0] = "mutated"
	if g.Nodes()[0] != "a" {
		t.Error("Nodes() must return a copy")
	}
}

func TestGraphErrors(t *testing.T) {
	g := buildGraph(t, []string{"a"}, nil)

	tests := []struct {
		name string
		err  error
	}{
		{"duplicate node", g.AddNode("a")},
		{"empty id", g.AddNode("")},
		{"unknown edge source", g.AddEdge("x", "a")},
		{"unknown edge target", g.AddEdge("a", "x")},
		{"unknown neighbors", func() error { _, err := g.Neighbors("x"); return err }()},
		{"unknown degree", func() error { _, err := g.Degree("x"); return err }()},
		{"index out of range", func() error { _, err := g.NeighborIndices(5); return err }()},
		{"label unknown", g.SetLabel("x", "X")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, errors.ErrCodeInvalidNode) {
				t.Errorf("err = %v, want INVALID_NODE", tt.err)
			}
		})
	}
}

func TestLabels(t *testing.T) {
	g := buildGraph(t, []string{"0"}, nil)
	if g.Label("0") != "0" {
		t.Errorf("Label default = %q", g.Label("0"))
	}
	if err := g.SetLabel("0", "Mr. Hi"); err != nil {
		t.Fatal(err)
	}
	if g.Label("0") != "Mr. Hi" {
		t.Errorf("Label = %q, want Mr. Hi", g.Label("0"))
	}
	_ = g.SetLabel("0", "")
	if g.Label("0") != "0" {
		t.Errorf("Label after reset = %q", g.Label("0"))
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	g := buildGraph(t,
		[]string{"b", "a", "iso"},
		[][2]string{{"a", "b"}},
	)
	_ = g.SetLabel("a", "Alpha")

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !slices.Equal(back.Nodes(), g.Nodes()) {
		t.Errorf("nodes = %v, want %v", back.Nodes(), g.Nodes())
	}
	if !slices.Equal(back.Edges(), g.Edges()) {
		t.Errorf("edges = %v, want %v", back.Edges(), g.Edges())
	}
	if back.Label("a") != "Alpha" {
		t.Errorf("label lost: %q", back.Label("a"))
	}

	again, _ := Marshal(back)
	if !bytes.Equal(data, again) {
		t.Error("Marshal is not canonical")
	}
}

func TestMarshalIndependentOfEdgeInsertionOrder(t *testing.T) {
	g1 := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"c", "b"}})
	g2 := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"b", "c"}, {"b", "a"}})

	d1, _ := Marshal(g1)
	d2, _ := Marshal(g2)
	if !bytes.Equal(d1, d2) {
		t.Errorf("equal graphs marshal differently:\n%s\n%s", d1, d2)
	}
}

func TestReadJSONAddsEdgeEndpoints(t *testing.T) {
	input := `{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"b"}]}`
	g, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !slices.Equal(g.Nodes(), []string{"a", "b"}) {
		t.Errorf("Nodes() = %v", g.Nodes())
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"malformed", `{"nodes":`, errors.ErrCodeInvalidFormat},
		{"duplicate", `{"nodes":[{"id":"a"},{"id":"a"}]}`, errors.ErrCodeInvalidNode},
		{"empty id", `{"nodes":[{"id":""}]}`, errors.ErrCodeInvalidNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadEdgeList(t *testing.T) {
	input := `# two triangles
0 1
1 2
2 0   # closing edge
3 4 1.0
4 5
5 3
6
`
	g, err := ReadEdgeList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadEdgeList: %v", err)
	}
	if g.Size() != 7 || g.EdgeCount() != 6 {
		t.Errorf("got %d nodes %d edges, want 7/6", g.Size(), g.EdgeCount())
	}
	if d, _ := g.Degree("6"); d != 0 {
		t.Errorf("isolated node degree = %d", d)
	}

	_, err = ReadEdgeList(strings.NewReader("a b c d\n"))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("too many fields err = %v", err)
	}
}

func TestEdgeListRoundTrip(t *testing.T) {
	g := buildGraph(t, []string{"z", "y", "x", "w"}, [][2]string{{"x", "y"}, {"z", "x"}})

	var buf bytes.Buffer
	if err := WriteEdgeList(g, &buf); err != nil {
		t.Fatalf("WriteEdgeList: %v", err)
	}
	back, err := ReadEdgeList(&buf)
	if err != nil {
		t.Fatalf("ReadEdgeList: %v", err)
	}
	if !slices.Equal(back.Nodes(), g.Nodes()) {
		t.Errorf("nodes = %v, want %v", back.Nodes(), g.Nodes())
	}
	if !slices.Equal(back.Edges(), g.Edges()) {
		t.Errorf("edges = %v, want %v", back.Edges(), g.Edges())
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "g.json")
	if err := os.WriteFile(jsonPath, []byte(`{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"from":"a","to":"b"}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	g, err := ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("ReadFile(json): %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("json EdgeCount = %d", g.EdgeCount())
	}

	txtPath := filepath.Join(dir, "g.txt")
	if err := os.WriteFile(txtPath, []byte("a b\nb c\n"), 0644); err != nil {
		t.Fatal(err)
	}
	g, err = ReadFile(txtPath)
	if err != nil {
		t.Fatalf("ReadFile(txt): %v", err)
	}
	if g.Size() != 3 {
		t.Errorf("txt Size = %d", g.Size())
	}

	_, err = ReadFile(filepath.Join(dir, "missing.txt"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestDatasets(t *testing.T) {
	tests := []struct {
		name         string
		nodes, edges int
		k            int
	}{
		{DatasetKarate, 34, 78, 2},
		{DatasetTriangles, 6, 6, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, k, err := Dataset(tt.name)
			if err != nil {
				t.Fatalf("Dataset: %v", err)
			}
			if g.Size() != tt.nodes || g.EdgeCount() != tt.edges || k != tt.k {
				t.Errorf("got %d nodes %d edges k=%d, want %d/%d/%d",
					g.Size(), g.EdgeCount(), k, tt.nodes, tt.edges, tt.k)
			}
		})
	}

	if _, _, err := Dataset("dolphins"); !errors.Is(err, errors.ErrCodeDatasetNotFound) {
		t.Errorf("unknown dataset err = %v", err)
	}
}

func TestKarateDegrees(t *testing.T) {
	g := Karate()
	want := map[string]int{"0": 16, "33": 17, "32": 12, "11": 1}
	for id, d := range want {
		if got, _ := g.Degree(id); got != d {
			t.Errorf("Degree(%s) = %d, want %d", id, got, d)
		}
	}
}
