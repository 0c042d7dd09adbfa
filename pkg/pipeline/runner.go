package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	pkgerrors "github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/graph"
	"github.com/spookydecs/circuitry/pkg/inventory"
	"github.com/spookydecs/circuitry/pkg/observability"
	"github.com/spookydecs/circuitry/pkg/ports"
	"github.com/spookydecs/circuitry/pkg/store"
)

// Runner executes engine operations against a store.
// Both the CLI and tests use this so every entry point loads, validates and
// persists the same way.
//
// The Runner keeps no results between calls. Multiple goroutines can safely
// use the same Runner.
type Runner struct {
	Store   store.Store
	Builder *graph.Builder
	Logger  *log.Logger
	Hooks   observability.BuildHooks
}

// NewRunner creates a runner over s.
// If builder is nil, a builder over the default registry is used.
// If logger is nil, output is discarded.
// If hooks is nil, builds are not reported.
func NewRunner(s store.Store, builder *graph.Builder, logger *log.Logger, hooks observability.BuildHooks) *Runner {
	if builder == nil {
		builder = graph.NewBuilder(nil)
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if hooks == nil {
		hooks = observability.NoopBuildHooks{}
	}
	return &Runner{
		Store:   s,
		Builder: builder,
		Logger:  logger,
		Hooks:   hooks,
	}
}

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is one consistent read of the store for a deployment.
type Snapshot struct {
	Deployment  string
	Items       []inventory.Item
	Connections []inventory.Connection

	index map[string]inventory.Item
}

// Item looks up an item by ID.
func (s *Snapshot) Item(id string) (inventory.Item, bool) {
	if s.index == nil {
		s.index = inventory.Index(s.Items)
	}
	it, ok := s.index[id]
	return it, ok
}

// Load reads every item and the deployment's connections.
func (r *Runner) Load(ctx context.Context, deployment string) (*Snapshot, error) {
	if err := pkgerrors.ValidateID("deployment", deployment); err != nil {
		return nil, err
	}
	items, err := r.Store.ListItems(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	conns, err := r.Store.ListConnections(ctx, deployment)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	r.Logger.Debug("loaded snapshot",
		"deployment", deployment,
		"items", len(items),
		"connections", len(conns))
	return &Snapshot{Deployment: deployment, Items: items, Connections: conns}, nil
}

func (s *Snapshot) mustItem(id string) (inventory.Item, error) {
	it, ok := s.Item(id)
	if !ok {
		return inventory.Item{}, notFound("item", id)
	}
	return it, nil
}

// =============================================================================
// Visualization
// =============================================================================

// Visualize loads a fresh snapshot and builds the graph for opts.
// Data-quality findings come back in Result.Graph.Warnings and are logged;
// only invalid options or store failures return an error.
func (r *Runner) Visualize(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	snap, err := r.Load(ctx, opts.Deployment)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.ItemCount = len(snap.Items)
	result.Stats.ConnectionCount = len(snap.Connections)

	// Stage 2: Build
	r.Hooks.OnBuildStart(ctx, opts.VizType, opts.Zone, len(snap.Items), len(snap.Connections))
	buildStart := time.Now()
	g, err := r.Builder.Build(snap.Items, snap.Connections, opts.GraphOptions())
	result.Stats.BuildTime = time.Since(buildStart)
	r.Hooks.OnBuildComplete(ctx, opts.VizType, len(g.Nodes), len(g.Edges), len(g.Warnings), result.Stats.BuildTime, err)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Graph = g

	r.Logger.Info("built graph",
		"viz", opts.VizType,
		"zone", opts.Zone,
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"duration", result.Stats.BuildTime)
	for _, w := range g.Warnings {
		r.Logger.Warn(w.Message, "code", w.Code)
	}

	return result, nil
}

// =============================================================================
// Ports
// =============================================================================

// Ports lists the ports of one type on itemID with their availability in
// deployment.
func (r *Runner) Ports(ctx context.Context, deployment, itemID string, pt inventory.PortType) ([]ports.Port, error) {
	if !pt.Valid() {
		return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "invalid port type %q", pt)
	}
	snap, err := r.Load(ctx, deployment)
	if err != nil {
		return nil, err
	}
	item, err := snap.mustItem(itemID)
	if err != nil {
		return nil, err
	}
	return ports.AvailablePorts(item, snap.Connections, pt, snap.Items...), nil
}

// OpenPorts lists the deployment's wired items that still have free ports.
func (r *Runner) OpenPorts(ctx context.Context, deployment string) ([]ports.OpenItem, error) {
	snap, err := r.Load(ctx, deployment)
	if err != nil {
		return nil, err
	}
	return ports.OpenPorts(snap.Items, snap.Connections), nil
}

// =============================================================================
// Writes
// =============================================================================

// Connect validates req against a fresh snapshot and persists it once.
// It fails with PORT_ALREADY_USED if either port is taken, either before the
// write or by a concurrent writer the store catches.
func (r *Runner) Connect(ctx context.Context, req ConnectRequest) (inventory.Connection, error) {
	if err := req.Validate(); err != nil {
		return inventory.Connection{}, err
	}

	snap, err := r.Load(ctx, req.Deployment)
	if err != nil {
		return inventory.Connection{}, err
	}
	from, err := snap.mustItem(req.FromItemID)
	if err != nil {
		return inventory.Connection{}, err
	}
	to, err := snap.mustItem(req.ToItemID)
	if err != nil {
		return inventory.Connection{}, err
	}
	if err := ports.CheckAvailable(from, snap.Connections, inventory.Female, req.FromPort); err != nil {
		return inventory.Connection{}, err
	}
	if err := ports.CheckAvailable(to, snap.Connections, inventory.Male, req.ToPort); err != nil {
		return inventory.Connection{}, err
	}
	for _, id := range req.Illuminates {
		if _, ok := snap.Item(id); !ok {
			r.Logger.Warn("illuminated item not in inventory", "item", id)
		}
	}

	c := req.Connection()
	created, err := r.Store.CreateConnection(ctx, req.Deployment, c)
	switch {
	case errors.Is(err, store.ErrConflict):
		return inventory.Connection{}, pkgerrors.Wrap(pkgerrors.ErrCodePortAlreadyUsed, err, "%s", describe(c))
	case err != nil:
		return inventory.Connection{}, fmt.Errorf("create connection: %w", err)
	}

	r.Logger.Info("connected",
		"deployment", req.Deployment,
		"id", created.ID,
		"connection", created.Label(),
		"type", created.EffectiveType())
	return created, nil
}

// Disconnect deletes connection id from deployment.
func (r *Runner) Disconnect(ctx context.Context, deployment, id string) error {
	if err := pkgerrors.ValidateID("deployment", deployment); err != nil {
		return err
	}
	if err := pkgerrors.ValidateID("connection", id); err != nil {
		return err
	}
	err := r.Store.DeleteConnection(ctx, deployment, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return pkgerrors.Wrap(pkgerrors.ErrCodeNotFound, err, "connection %s in %s", id, deployment)
	case err != nil:
		return fmt.Errorf("delete connection: %w", err)
	}
	r.Logger.Info("disconnected", "deployment", deployment, "id", id)
	return nil
}

// =============================================================================
// Check
// =============================================================================

// Report summarizes the data-quality state of a deployment.
type Report struct {
	Deployment  string          `json:"deployment"`
	Items       int             `json:"items"`
	Connections int             `json:"connections"`
	Warnings    []graph.Warning `json:"warnings"`
}

// OK reports whether the deployment has no findings.
func (r *Report) OK() bool { return len(r.Warnings) == 0 }

// Check builds the tree view over the whole deployment and reports every
// finding: unknown items, reused ports and items with several power sources.
func (r *Runner) Check(ctx context.Context, deployment string) (*Report, error) {
	snap, err := r.Load(ctx, deployment)
	if err != nil {
		return nil, err
	}
	g, err := r.Builder.Build(snap.Items, snap.Connections, graph.Options{VizType: graph.VizTypeTree})
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	report := &Report{
		Deployment:  deployment,
		Items:       len(snap.Items),
		Connections: len(snap.Connections),
		Warnings:    g.Warnings,
	}
	if report.Warnings == nil {
		report.Warnings = []graph.Warning{}
	}
	r.Logger.Debug("checked deployment", "deployment", deployment, "warnings", len(report.Warnings))
	return report, nil
}

// Close releases the store.
func (r *Runner) Close() error {
	if r.Store != nil {
		return r.Store.Close()
	}
	return nil
}
