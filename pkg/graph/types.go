package graph

import (
	"github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/inventory"
)

// Visualization types.
const (
	VizTypeNetwork = "network"
	VizTypeTree    = "tree"
)

// VizTypes lists the accepted visualization types.
var VizTypes = []string{VizTypeNetwork, VizTypeTree}

// DefaultRootClassTypes are the classes kept in a tree view even when nothing
// is plugged into them yet.
var DefaultRootClassTypes = []string{string(inventory.ClassReceptacle)}

// =============================================================================
// Graph - Connection Graph Serialization
// =============================================================================

// Graph is the derived connection graph for one deployment, optionally
// restricted to a zone. It is request-scoped: build it, render it, drop it.
type Graph struct {
	VizType    string     `json:"viz_type" bson:"viz_type"`
	Zone       string     `json:"zone,omitempty" bson:"zone,omitempty"`
	Nodes      []Node     `json:"nodes" bson:"nodes"`
	Edges      []Edge     `json:"edges" bson:"edges"`
	Statistics Statistics `json:"statistics" bson:"statistics"`
	Zones      []string   `json:"zones" bson:"zones"`
	Roots      []string   `json:"roots,omitempty" bson:"roots,omitempty"` // tree view only
	Warnings   []Warning  `json:"warnings,omitempty" bson:"warnings,omitempty"`
}

// Node returns the node with the given ID.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// WarningsWithCode returns the warnings carrying code, in order.
func (g Graph) WarningsWithCode(code errors.Code) []Warning {
	var out []Warning
	for _, w := range g.Warnings {
		if w.Code == code {
			out = append(out, w)
		}
	}
	return out
}

// =============================================================================
// Node - Item in the Graph
// =============================================================================

// Node is one item, annotated for display.
type Node struct {
	ID           string `json:"id" bson:"id"`
	ShortName    string `json:"short_name,omitempty" bson:"short_name,omitempty"`
	ClassType    string `json:"class_type" bson:"class_type"`
	Class        string `json:"class,omitempty" bson:"class,omitempty"`
	Zone         string `json:"zone,omitempty" bson:"zone,omitempty"`
	Color        string `json:"color" bson:"color"`
	ClassAcronym string `json:"class_acronym" bson:"class_acronym"`
	Size         int    `json:"size" bson:"size"`
	Shape        string `json:"shape" bson:"shape"`

	IncomingConnections int `json:"incoming_connections" bson:"incoming_connections"`
	OutgoingConnections int `json:"outgoing_connections" bson:"outgoing_connections"`

	// Tree view only.
	Parent      string   `json:"parent,omitempty" bson:"parent,omitempty"`
	Depth       *int     `json:"depth,omitempty" bson:"depth,omitempty"` // -1 when unreachable from a root
	MultiParent bool     `json:"multi_parent,omitempty" bson:"multi_parent,omitempty"`
	Parents     []string `json:"parents,omitempty" bson:"parents,omitempty"`
}

// DisplayLabel returns the short name if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.ShortName != "" {
		return n.ShortName
	}
	return n.ID
}

// =============================================================================
// Edge - One Connection
// =============================================================================

// Edge is one connection, directed from the powering item to the powered one.
type Edge struct {
	ID              string   `json:"id,omitempty" bson:"id,omitempty"`
	From            string   `json:"from" bson:"from"`
	To              string   `json:"to" bson:"to"`
	FromPort        string   `json:"from_port" bson:"from_port"`
	ToPort          string   `json:"to_port" bson:"to_port"`
	Type            string   `json:"connection_type" bson:"connection_type"`
	Notes           string   `json:"notes,omitempty" bson:"notes,omitempty"`
	Illuminates     []string `json:"illuminates,omitempty" bson:"illuminates,omitempty"`
	Color           string   `json:"color" bson:"color"`
	StrokeWidth     float64  `json:"stroke_width" bson:"stroke_width"`
	StrokeDasharray string   `json:"stroke_dasharray,omitempty" bson:"stroke_dasharray,omitempty"`
}

// =============================================================================
// Statistics and Warnings
// =============================================================================

// Statistics are aggregates over the nodes and edges of one graph.
type Statistics struct {
	TotalItems             int            `json:"total_items" bson:"total_items"`
	TotalConnections       int            `json:"total_connections" bson:"total_connections"`
	PowerConnections       int            `json:"power_connections" bson:"power_connections"`
	IlluminatesConnections int            `json:"illuminates_connections" bson:"illuminates_connections"`
	ItemsByType            map[string]int `json:"items_by_type" bson:"items_by_type"`
}

// Warning is a data-quality finding the builder recovered from.
type Warning struct {
	Code         errors.Code `json:"code" bson:"code"`
	Message      string      `json:"message" bson:"message"`
	ItemID       string      `json:"item_id,omitempty" bson:"item_id,omitempty"`
	ConnectionID string      `json:"connection_id,omitempty" bson:"connection_id,omitempty"`
}

func (w Warning) String() string { return string(w.Code) + ": " + w.Message }
