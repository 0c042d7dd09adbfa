package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/spookydecs/circuitry/pkg/cache"
	pkgerrors "github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/graph"
	"github.com/spookydecs/circuitry/pkg/inventory"
	"github.com/spookydecs/circuitry/pkg/render/nodelink"
	"github.com/spookydecs/circuitry/pkg/store"
)

const deployment = "halloween-2025"

func testItems() []inventory.Item {
	return []inventory.Item{
		{ID: "R1", Class: inventory.ClassReceptacle, ClassType: "Receptacle", FemaleEnds: 2, Zone: "A"},
		{ID: "A1", Class: inventory.ClassAccessory, ClassType: "Cord", ShortName: "Ext", FemaleEnds: 3, MaleEnds: 1, Zone: "A"},
		{ID: "A2", Class: inventory.ClassAccessory, ClassType: "Cord", FemaleEnds: 3, MaleEnds: 1, Zone: "B"},
		{ID: "D1", Class: inventory.ClassDecoration, ClassType: "Inflatable", ShortName: "Pumpkin", MaleEnds: 1, Zone: "A"},
		{ID: "D2", Class: inventory.ClassDecoration, ClassType: "Inflatable", MaleEnds: 1, Zone: "B"},
	}
}

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	return NewRunner(store.NewMemory(testItems()...), nil, logger, nil), &buf
}

func mustConnect(t *testing.T, r *Runner, from, fromPort, to string) inventory.Connection {
	t.Helper()
	c, err := r.Connect(context.Background(), ConnectRequest{
		Deployment: deployment,
		FromItemID: from, FromPort: fromPort,
		ToItemID: to, ToPort: "Male_1",
	})
	if err != nil {
		t.Fatalf("Connect(%s %s -> %s) error: %v", from, fromPort, to, err)
	}
	return c
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(store.NewMemory(), nil, nil, nil)
	if r.Builder == nil || r.Logger == nil || r.Hooks == nil {
		t.Errorf("NewRunner() left nil fields: %+v", r)
	}
}

func TestVisualize(t *testing.T) {
	r, logs := newTestRunner(t)
	mustConnect(t, r, "R1", "Female_1", "A1")
	mustConnect(t, r, "A1", "Female_1", "D1")

	result, err := r.Visualize(context.Background(), Options{Deployment: deployment})
	if err != nil {
		t.Fatalf("Visualize() error: %v", err)
	}

	g := result.Graph
	if g.VizType != graph.VizTypeNetwork {
		t.Errorf("VizType = %q, want network", g.VizType)
	}
	if len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Errorf("got %d nodes, %d edges; want 3, 2", len(g.Nodes), len(g.Edges))
	}
	if result.Stats.ItemCount != 5 || result.Stats.ConnectionCount != 2 {
		t.Errorf("Stats = %+v", result.Stats)
	}
	if !strings.Contains(logs.String(), "built graph") {
		t.Errorf("expected build log line, got:\n%s", logs.String())
	}
}

func TestVisualizeZoneSplit(t *testing.T) {
	r, logs := newTestRunner(t)
	mustConnect(t, r, "R1", "Female_1", "A1")
	mustConnect(t, r, "A1", "Female_1", "D2") // A to B

	result, err := r.Visualize(context.Background(), Options{Deployment: deployment, Zone: "A"})
	if err != nil {
		t.Fatalf("Visualize() error: %v", err)
	}

	if len(result.Graph.Edges) != 1 {
		t.Errorf("got %d edges, want 1", len(result.Graph.Edges))
	}
	if n := len(result.Graph.WarningsWithCode(pkgerrors.ErrCodeZoneSplitConnection)); n != 1 {
		t.Errorf("got %d zone split warnings, want 1", n)
	}
	if !strings.Contains(logs.String(), "ZONE_SPLIT_CONNECTION") {
		t.Error("zone split warning should be logged")
	}
}

func TestVisualizeInvalidOptions(t *testing.T) {
	r, _ := newTestRunner(t)

	_, err := r.Visualize(context.Background(), Options{Deployment: deployment, VizType: "tower"})
	if !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidVizType) {
		t.Errorf("Visualize() error = %v, want INVALID_VIZ_TYPE", err)
	}
}

type recordingBuildHooks struct {
	starts, completes int
	nodes             int
}

func (h *recordingBuildHooks) OnBuildStart(context.Context, string, string, int, int) { h.starts++ }

func (h *recordingBuildHooks) OnBuildComplete(_ context.Context, _ string, nodes, _, _ int, _ time.Duration, _ error) {
	h.completes++
	h.nodes = nodes
}

func TestVisualizeHooks(t *testing.T) {
	hooks := &recordingBuildHooks{}
	r := NewRunner(store.NewMemory(testItems()...), nil, nil, hooks)
	mustConnect(t, r, "R1", "Female_1", "A1")

	if _, err := r.Visualize(context.Background(), Options{Deployment: deployment, VizType: graph.VizTypeTree}); err != nil {
		t.Fatalf("Visualize() error: %v", err)
	}
	if hooks.starts != 1 || hooks.completes != 1 {
		t.Errorf("hooks called start=%d complete=%d, want 1/1", hooks.starts, hooks.completes)
	}
	if hooks.nodes != 2 {
		t.Errorf("hooks saw %d nodes, want 2", hooks.nodes)
	}
}

func TestConnect(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	c, err := r.Connect(ctx, ConnectRequest{
		Deployment: deployment,
		FromItemID: "A1", FromPort: "Female_2",
		ToItemID: "D1", ToPort: "Male_1",
		Notes: "porch",
	})
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if c.ID == "" || c.ConnectedAt.IsZero() {
		t.Errorf("store should assign ID and time: %+v", c)
	}
	if c.Type != inventory.Power {
		t.Errorf("Type = %q, want power", c.Type)
	}

	conns, _ := r.Store.ListConnections(ctx, deployment)
	if len(conns) != 1 || conns[0].ID != c.ID {
		t.Errorf("stored connections = %+v", conns)
	}
}

func TestConnectRejects(t *testing.T) {
	r, _ := newTestRunner(t)
	mustConnect(t, r, "R1", "Female_1", "A1")

	tests := []struct {
		name string
		req  ConnectRequest
		code pkgerrors.Code
	}{
		{"from port in use", ConnectRequest{FromItemID: "R1", FromPort: "Female_1", ToItemID: "A2", ToPort: "Male_1"}, pkgerrors.ErrCodePortAlreadyUsed},
		{"to port in use", ConnectRequest{FromItemID: "R1", FromPort: "Female_2", ToItemID: "A1", ToPort: "Male_1"}, pkgerrors.ErrCodePortAlreadyUsed},
		{"port beyond capacity", ConnectRequest{FromItemID: "R1", FromPort: "Female_3", ToItemID: "A2", ToPort: "Male_1"}, pkgerrors.ErrCodeInvalidPort},
		{"no male end", ConnectRequest{FromItemID: "A1", FromPort: "Female_1", ToItemID: "R1", ToPort: "Male_1"}, pkgerrors.ErrCodeInvalidPort},
		{"unknown from", ConnectRequest{FromItemID: "X9", FromPort: "Female_1", ToItemID: "A2", ToPort: "Male_1"}, pkgerrors.ErrCodeNotFound},
		{"unknown to", ConnectRequest{FromItemID: "R1", FromPort: "Female_2", ToItemID: "X9", ToPort: "Male_1"}, pkgerrors.ErrCodeNotFound},
		{"self", ConnectRequest{FromItemID: "A1", FromPort: "Female_1", ToItemID: "A1", ToPort: "Male_1"}, pkgerrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Deployment = deployment
			_, err := r.Connect(context.Background(), tt.req)
			if got := pkgerrors.GetCode(err); got != tt.code {
				t.Errorf("Connect() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}

	conns, _ := r.Store.ListConnections(context.Background(), deployment)
	if len(conns) != 1 {
		t.Errorf("rejected requests must not write: %d connections stored", len(conns))
	}
}

// racingStore behaves as if another writer claimed the port between the
// snapshot and the write.
type racingStore struct{ *store.Memory }

func (s racingStore) CreateConnection(_ context.Context, _ string, c inventory.Connection) (inventory.Connection, error) {
	return inventory.Connection{}, store.Conflict(c, "from")
}

func TestConnectStoreConflict(t *testing.T) {
	r := NewRunner(racingStore{store.NewMemory(testItems()...)}, nil, nil, nil)

	_, err := r.Connect(context.Background(), ConnectRequest{
		Deployment: deployment,
		FromItemID: "R1", FromPort: "Female_1",
		ToItemID: "A1", ToPort: "Male_1",
	})
	if !pkgerrors.Is(err, pkgerrors.ErrCodePortAlreadyUsed) {
		t.Errorf("Connect() error = %v, want PORT_ALREADY_USED", err)
	}
}

func TestDisconnect(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()
	c := mustConnect(t, r, "R1", "Female_1", "A1")

	if err := r.Disconnect(ctx, deployment, c.ID); err != nil {
		t.Fatalf("Disconnect() error: %v", err)
	}
	if err := r.Disconnect(ctx, deployment, c.ID); !pkgerrors.Is(err, pkgerrors.ErrCodeNotFound) {
		t.Errorf("second Disconnect() error = %v, want NOT_FOUND", err)
	}

	// The freed port can be used again.
	mustConnect(t, r, "R1", "Female_1", "A2")
}

func TestPorts(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()
	c := mustConnect(t, r, "A1", "Female_2", "D1")

	ps, err := r.Ports(ctx, deployment, "A1", inventory.Female)
	if err != nil {
		t.Fatalf("Ports() error: %v", err)
	}
	if len(ps) != 3 {
		t.Fatalf("got %d ports, want 3", len(ps))
	}
	if !ps[0].Available || ps[1].Available || !ps[2].Available {
		t.Errorf("availability = %v %v %v, want true false true", ps[0].Available, ps[1].Available, ps[2].Available)
	}
	if ps[1].ConnectedTo == nil || ps[1].ConnectedTo.String() != "Pumpkin [D1] Male_1" {
		t.Errorf("ConnectedTo = %v", ps[1].ConnectedTo)
	}
	if ps[1].ConnectionID != c.ID {
		t.Errorf("ConnectionID = %q, want %q", ps[1].ConnectionID, c.ID)
	}

	if _, err := r.Ports(ctx, deployment, "X9", inventory.Female); !pkgerrors.Is(err, pkgerrors.ErrCodeNotFound) {
		t.Errorf("Ports(unknown) error = %v, want NOT_FOUND", err)
	}
	if _, err := r.Ports(ctx, deployment, "A1", "both"); !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidInput) {
		t.Errorf("Ports(bad type) error = %v, want INVALID_INPUT", err)
	}
}

func TestOpenPorts(t *testing.T) {
	r, _ := newTestRunner(t)
	mustConnect(t, r, "R1", "Female_1", "A1")
	mustConnect(t, r, "R1", "Female_2", "A2")

	open, err := r.OpenPorts(context.Background(), deployment)
	if err != nil {
		t.Fatalf("OpenPorts() error: %v", err)
	}

	// R1 is full; A1 and A2 each have three free female ends.
	var ids []string
	for _, o := range open {
		ids = append(ids, o.Item.ID)
		if o.AvailableFemale != 3 || o.AvailableMale != 0 {
			t.Errorf("%s available = %d/%d, want 3/0", o.Item.ID, o.AvailableFemale, o.AvailableMale)
		}
	}
	if len(ids) != 2 {
		t.Errorf("open items = %v, want A1 and A2", ids)
	}
}

// fixedStore serves connections the memory store would refuse to hold.
type fixedStore struct {
	*store.Memory
	conns []inventory.Connection
}

func (s fixedStore) ListConnections(context.Context, string) ([]inventory.Connection, error) {
	return s.conns, nil
}

func TestCheck(t *testing.T) {
	s := fixedStore{
		Memory: store.NewMemory(testItems()...),
		conns: []inventory.Connection{
			{ID: "c1", FromItemID: "R1", FromPort: "Female_1", ToItemID: "A1", ToPort: "Male_1"},
			{ID: "c2", FromItemID: "R1", FromPort: "Female_1", ToItemID: "A2", ToPort: "Male_1"},
			{ID: "c3", FromItemID: "A1", FromPort: "Female_1", ToItemID: "D1", ToPort: "Male_1"},
			{ID: "c4", FromItemID: "A2", FromPort: "Female_1", ToItemID: "D1", ToPort: "Male_1"},
			{ID: "c5", FromItemID: "A1", FromPort: "Female_2", ToItemID: "ghost", ToPort: "Male_1"},
		},
	}
	r := NewRunner(s, nil, nil, nil)

	report, err := r.Check(context.Background(), deployment)
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if report.OK() {
		t.Fatal("Check() should report findings")
	}

	codes := map[pkgerrors.Code]int{}
	for _, w := range report.Warnings {
		codes[w.Code]++
	}
	if codes[pkgerrors.ErrCodeUnknownItem] != 1 {
		t.Errorf("UNKNOWN_ITEM = %d, want 1", codes[pkgerrors.ErrCodeUnknownItem])
	}
	if codes[pkgerrors.ErrCodePortAlreadyUsed] != 2 {
		t.Errorf("PORT_ALREADY_USED = %d, want 2 (R1 Female_1, D1 Male_1)", codes[pkgerrors.ErrCodePortAlreadyUsed])
	}
	if codes[pkgerrors.ErrCodeMultiParentNode] != 1 {
		t.Errorf("MULTI_PARENT_NODE = %d, want 1", codes[pkgerrors.ErrCodeMultiParentNode])
	}
	if report.Connections != 5 || report.Items != 5 {
		t.Errorf("report counts = %d items, %d connections", report.Items, report.Connections)
	}
}

func TestCheckClean(t *testing.T) {
	r, _ := newTestRunner(t)
	mustConnect(t, r, "R1", "Female_1", "A1")

	report, err := r.Check(context.Background(), deployment)
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if !report.OK() || report.Warnings == nil {
		t.Errorf("Check() = %+v, want OK with empty warnings", report)
	}
}

func TestRender(t *testing.T) {
	r, _ := newTestRunner(t)
	mustConnect(t, r, "R1", "Female_1", "A1")
	result, err := r.Visualize(context.Background(), Options{Deployment: deployment, VizType: graph.VizTypeTree})
	if err != nil {
		t.Fatalf("Visualize() error: %v", err)
	}
	ctx := context.Background()

	data, err := Render(ctx, result.Graph, FormatJSON, nodelink.Options{})
	if err != nil {
		t.Fatalf("Render(json) error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Render(json) is not JSON: %v", err)
	}
	if decoded["viz_type"] != "tree" {
		t.Errorf("viz_type = %v", decoded["viz_type"])
	}

	dot, err := Render(ctx, result.Graph, FormatDOT, nodelink.Options{})
	if err != nil || !strings.Contains(string(dot), `"R1" -> "A1"`) {
		t.Errorf("Render(dot) = %s, %v", dot, err)
	}

	summary, err := Render(ctx, result.Graph, FormatSummary, nodelink.Options{})
	if err != nil {
		t.Fatalf("Render(summary) error: %v", err)
	}
	for _, want := range []string{"view:        tree", "items:       2", "roots:       R1", "Cord"} {
		if !strings.Contains(string(summary), want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}

	if _, err := Render(ctx, result.Graph, "png", nodelink.Options{}); err == nil {
		t.Error("Render(png) should fail")
	}
}

func TestRendererServesCachedSVG(t *testing.T) {
	r, _ := newTestRunner(t)
	mustConnect(t, r, "R1", "Female_1", "A1")
	result, err := r.Visualize(context.Background(), Options{Deployment: deployment})
	if err != nil {
		t.Fatalf("Visualize() error: %v", err)
	}
	ctx := context.Background()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := nodelink.Options{GroupZones: true}
	key := cache.Key(FormatSVG, nodelink.ToDOT(result.Graph, opts))
	if err := c.Set(ctx, key, []byte("<svg>cached</svg>"), time.Hour); err != nil {
		t.Fatal(err)
	}

	renderer := Renderer{Cache: c, TTL: time.Hour}
	svg, err := renderer.Render(ctx, result.Graph, FormatSVG, opts)
	if err != nil {
		t.Fatalf("Render(svg) error: %v", err)
	}
	if string(svg) != "<svg>cached</svg>" {
		t.Errorf("Render(svg) = %q, want the cached entry", svg)
	}

	// Non-SVG formats bypass the cache.
	dot, err := renderer.Render(ctx, result.Graph, FormatDOT, opts)
	if err != nil || !strings.HasPrefix(string(dot), "digraph") {
		t.Errorf("Render(dot) = %q, %v", dot, err)
	}
}
