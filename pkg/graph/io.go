package graph

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/fluidc/pkg/errors"
)

// =============================================================================
// Document ↔ Graph Conversion
// =============================================================================

// ToDocument converts a Graph to its serialization format.
// Nodes keep insertion order (it is the visiting order); edges are canonical.
func ToDocument(g *Graph) Document {
	doc := Document{
		Nodes: make([]Node, len(g.ids)),
		Edges: g.Edges(),
	}
	for i, id := range g.ids {
		doc.Nodes[i] = Node{ID: id, Label: g.labels[id], Meta: copyMeta(g.meta[id])}
	}
	return doc
}

// FromDocument builds a Graph from its serialization format.
// Edges may reference ids missing from the node list; those nodes are
// appended in order of first appearance.
func FromDocument(doc Document) (*Graph, error) {
	g := New()
	for _, n := range doc.Nodes {
		if err := g.AddNode(n.ID); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		if n.Label != "" {
			g.labels[n.ID] = n.Label
		}
		if len(n.Meta) > 0 {
			g.meta[n.ID] = copyMeta(n.Meta)
		}
	}
	for _, e := range doc.Edges {
		if err := g.EnsureNode(e.From); err != nil {
			return nil, fmt.Errorf("edge %s-%s: %w", e.From, e.To, err)
		}
		if err := g.EnsureNode(e.To); err != nil {
			return nil, fmt.Errorf("edge %s-%s: %w", e.From, e.To, err)
		}
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("edge %s-%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// Meta returns a copy of the metadata attached to id, or nil.
func (g *Graph) Meta(id string) map[string]any {
	return copyMeta(g.meta[id])
}

func copyMeta(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}

// =============================================================================
// JSON
// =============================================================================

// Marshal converts a Graph to canonical JSON bytes. Equal graphs (same node
// order, same edge set) produce identical bytes, which makes the output
// usable as a cache key.
func Marshal(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON bytes into a Graph.
func Unmarshal(data []byte) (*Graph, error) {
	return ReadJSON(bytes.NewReader(data))
}

// WriteJSON writes a Graph as indented JSON to w.
func WriteJSON(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a node-link JSON document from r.
func ReadJSON(r io.Reader) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}
	return FromDocument(doc)
}

// =============================================================================
// Edge Lists
// =============================================================================

// ReadEdgeList parses a whitespace separated edge list.
//
// Each non-blank line holds one or two node ids; a single id declares an
// isolated node. Text after '#' is ignored. Nodes are ordered by first
// appearance.
func ReadEdgeList(r io.Reader) (*Graph, error) {
	g := New()
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		switch len(fields) {
		case 0:
			continue
		case 1:
			if err := g.EnsureNode(fields[0]); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		case 2:
			for _, id := range fields {
				if err := g.EnsureNode(id); err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
			}
			if err := g.AddEdge(fields[0], fields[1]); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		default:
			// Weighted edge lists carry a third column; weights are ignored.
			if len(fields) == 3 {
				for _, id := range fields[:2] {
					if err := g.EnsureNode(id); err != nil {
						return nil, fmt.Errorf("line %d: %w", lineNo, err)
					}
				}
				if err := g.AddEdge(fields[0], fields[1]); err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				continue
			}
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: expected 1-3 fields, got %d", lineNo, len(fields))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return g, nil
}

// WriteEdgeList writes the graph as an edge list. Every node is declared on
// its own line first, so ReadEdgeList restores both isolated nodes and the
// node order.
func WriteEdgeList(g *Graph, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, id := range g.ids {
		fmt.Fprintln(bw, id)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "%s %s\n", e.From, e.To)
	}
	return bw.Flush()
}

// =============================================================================
// Files
// =============================================================================

// ReadFile reads a graph from path, choosing the format by extension:
// ".json" is node-link JSON, everything else an edge list.
func ReadFile(path string) (*Graph, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadJSON(f)
	}
	return ReadEdgeList(f)
}
