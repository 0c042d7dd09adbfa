// Package pipeline ties the store, the port model and the graph builder
// together for circuitry's entry points.
//
// Every operation reads a fresh snapshot from the store, runs the pure
// engine code over it and, for writes, persists exactly once. Nothing is
// cached between calls, so two requests never share derived state.
//
// # Architecture
//
// Visualization runs in three stages:
//
//  1. Load: list every item and the deployment's connections
//  2. Build: derive the annotated graph with zone filtering and warnings
//  3. Render: export the graph as JSON, DOT, SVG or a text summary
//
// Port operations ([Runner.Ports], [Runner.Connect], [Runner.OpenPorts])
// load the same snapshot and answer from [ports].
//
// # Usage
//
//	runner := pipeline.NewRunner(st, builder, logger, hooks)
//	result, err := runner.Visualize(ctx, pipeline.Options{
//	    Deployment: "halloween-2025",
//	    VizType:    "tree",
//	    Zone:       "Front Yard",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg, err := pipeline.Render(ctx, result.Graph, pipeline.FormatSVG, nodelink.Options{})
//
// Connect two items, failing with PORT_ALREADY_USED if either port was
// taken since the caller last looked:
//
//	conn, err := runner.Connect(ctx, pipeline.ConnectRequest{
//	    Deployment: "halloween-2025",
//	    FromItemID: "A1", FromPort: "Female_2",
//	    ToItemID:   "D1", ToPort: "Male_1",
//	})
package pipeline

import (
	"fmt"
	"slices"
	"strings"
	"time"

	pkgerrors "github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/graph"
	"github.com/spookydecs/circuitry/pkg/inventory"
)

// Format constants for output formats.
const (
	FormatJSON    = "json"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
	FormatSummary = "summary"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:    true,
	FormatDOT:     true,
	FormatSVG:     true,
	FormatSummary: true,
}

// DefaultVizType is the default visualization type.
const DefaultVizType = graph.VizTypeNetwork

// =============================================================================
// Options - Visualization Request
// =============================================================================

// Options selects the deployment and view to build.
type Options struct {
	Deployment string `json:"deployment"`
	VizType    string `json:"viz_type,omitempty"`
	Zone       string `json:"zone,omitempty"`

	// RootClassTypes overrides the classes kept as unconnected tree roots.
	RootClassTypes []string `json:"root_class_types,omitempty"`
}

// Validate checks required fields and applies defaults.
func (o *Options) Validate() error {
	if err := pkgerrors.ValidateID("deployment", o.Deployment); err != nil {
		return err
	}
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	return pkgerrors.ValidateZone(o.Zone)
}

// GraphOptions returns the builder options for o.
func (o Options) GraphOptions() graph.Options {
	return graph.Options{VizType: o.VizType, Zone: o.Zone, RootClassTypes: o.RootClassTypes}
}

// Result contains the outputs of a visualization run.
type Result struct {
	// Graph is the derived connection graph.
	Graph graph.Graph

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount       int
	ConnectionCount int
	LoadTime        time.Duration
	BuildTime       time.Duration
}

// =============================================================================
// Connect Requests
// =============================================================================

// ConnectRequest describes one new connection. FromPort must be a female
// port of FromItemID and ToPort the male port of ToItemID.
type ConnectRequest struct {
	Deployment  string                   `json:"deployment"`
	FromItemID  string                   `json:"from_item_id"`
	FromPort    string                   `json:"from_port"`
	ToItemID    string                   `json:"to_item_id"`
	ToPort      string                   `json:"to_port"`
	Type        inventory.ConnectionType `json:"connection_type,omitempty"`
	Notes       string                   `json:"notes,omitempty"`
	Illuminates []string                 `json:"illuminates,omitempty"`
}

// Connection returns the connection the request would create.
func (r ConnectRequest) Connection() inventory.Connection {
	c := inventory.Connection{
		FromItemID:  r.FromItemID,
		FromPort:    r.FromPort,
		ToItemID:    r.ToItemID,
		ToPort:      r.ToPort,
		Type:        r.Type,
		Notes:       strings.TrimSpace(r.Notes),
		Illuminates: slices.Clone(r.Illuminates),
	}
	c.Normalize()
	return c
}

// Validate checks the request shape without looking at the store.
func (r ConnectRequest) Validate() error {
	if err := pkgerrors.ValidateID("deployment", r.Deployment); err != nil {
		return err
	}
	if r.FromItemID == r.ToItemID && r.FromItemID != "" {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "cannot connect %s to itself", r.FromItemID)
	}
	return r.Connection().Validate()
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, dot, svg, summary)", format)
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !slices.Contains(graph.VizTypes, vizType) {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidVizType, "invalid viz_type: %q (must be one of: %s)", vizType, strings.Join(graph.VizTypes, ", "))
	}
	return nil
}

// ParsePortType maps "female"/"male" (or "f"/"m") to a port type.
func ParsePortType(s string) (inventory.PortType, error) {
	switch strings.ToLower(s) {
	case "female", "f":
		return inventory.Female, nil
	case "male", "m":
		return inventory.Male, nil
	}
	return "", pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "invalid port type %q (must be female or male)", s)
}

func notFound(kind, id string) error {
	return pkgerrors.New(pkgerrors.ErrCodeNotFound, "%s %s not found", kind, id)
}

func describe(c inventory.Connection) string {
	return fmt.Sprintf("%s (%s)", c.Label(), c.EffectiveType())
}
