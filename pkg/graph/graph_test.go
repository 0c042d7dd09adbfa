package graph

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spookydecs/circuitry/pkg/inventory"
)

func sampleGraph(t *testing.T) Graph {
	t.Helper()
	items := []inventory.Item{
		{ID: "D1", ClassType: "Inflatable", MaleEnds: 1, Zone: "A"},
		{ID: "A1", ClassType: "Cord", FemaleEnds: 2, MaleEnds: 1, Zone: "A"},
	}
	conns := []inventory.Connection{
		{ID: "c1", FromItemID: "A1", FromPort: "Female_1", ToItemID: "D1", ToPort: "Male_1"},
	}
	g, err := NewBuilder(nil).Build(items, conns, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestMarshalGraph(t *testing.T) {
	data, err := MarshalGraph(sampleGraph(t))
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"viz_type", "nodes", "edges", "statistics", "zones"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if _, ok := raw["warnings"]; ok {
		t.Error("warnings should be omitted when empty")
	}

	stats := raw["statistics"].(map[string]any)
	if stats["power_connections"] != float64(1) {
		t.Errorf("power_connections = %v, want 1", stats["power_connections"])
	}
	if !strings.Contains(string(data), `"incoming_connections": 1`) {
		t.Error("expected incoming_connections in output")
	}
}

func TestMarshalEmptyGraph(t *testing.T) {
	g, err := NewBuilder(nil).Build(nil, nil, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	for _, want := range []string{`"nodes": []`, `"edges": []`, `"zones": []`, `"items_by_type": {}`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("output missing %s:\n%s", want, data)
		}
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantEdges int
		wantErr   bool
	}{
		{
			name: "Valid",
			input: `{
				"viz_type": "network",
				"nodes": [{"id": "A1"}, {"id": "D1"}],
				"edges": [{"from": "A1", "to": "D1", "connection_type": "power"}]
			}`,
			wantNodes: 2,
			wantEdges: 1,
		},
		{
			name:  "Empty",
			input: `{"nodes": [], "edges": []}`,
		},
		{
			name:    "Invalid",
			input:   `{invalid json}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ReadGraph(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadGraph() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(g.Nodes) != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", len(g.Nodes), tt.wantNodes)
			}
			if len(g.Edges) != tt.wantEdges {
				t.Errorf("edges = %d, want %d", len(g.Edges), tt.wantEdges)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	orig := sampleGraph(t)

	var buf bytes.Buffer
	if err := WriteGraph(orig, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	got, err := UnmarshalGraph(buf.Bytes())
	if err != nil {
		t.Fatalf("UnmarshalGraph: %v", err)
	}

	if got.Statistics.TotalItems != orig.Statistics.TotalItems {
		t.Errorf("total_items = %d, want %d", got.Statistics.TotalItems, orig.Statistics.TotalItems)
	}
	n, ok := got.Node("D1")
	if !ok {
		t.Fatal("node D1 not found")
	}
	if n.ClassAcronym != "INF" {
		t.Errorf("class_acronym = %q, want INF", n.ClassAcronym)
	}
}

func TestWriteGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(sampleGraph(t), path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	g, err := ReadGraph(f)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if len(g.Edges) != 1 {
		t.Errorf("edges = %d, want 1", len(g.Edges))
	}
}

func TestWriteGraphFileBadPath(t *testing.T) {
	err := WriteGraphFile(Graph{}, filepath.Join(t.TempDir(), "missing", "graph.json"))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
