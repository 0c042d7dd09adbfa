package graph

import (
	"slices"

	"github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/inventory"
	"github.com/spookydecs/circuitry/pkg/ports"
	"github.com/spookydecs/circuitry/pkg/registry"
)

// Options select the view to build.
type Options struct {
	VizType string // VizTypeNetwork (default) or VizTypeTree
	Zone    string // empty for all zones

	// RootClassTypes names the classes or class types an unconnected item
	// must have to appear in a tree view. Nil means DefaultRootClassTypes.
	RootClassTypes []string
}

// Builder turns items and connections into a [Graph]. It holds only the
// registry, which is immutable, so one Builder may serve concurrent callers.
type Builder struct {
	reg *registry.Registry
}

// NewBuilder returns a Builder annotating nodes and edges from reg.
// A nil registry means [registry.Default].
func NewBuilder(reg *registry.Registry) *Builder {
	if reg == nil {
		reg = registry.Default()
	}
	return &Builder{reg: reg}
}

// Registry returns the registry used for annotation.
func (b *Builder) Registry() *registry.Registry { return b.reg }

// Build derives the graph. Every call is a fresh pass over its inputs.
//
// Connections of an unknown type are dropped with an INVALID_INPUT warning.
// Connections naming an item missing from items are dropped with an
// UNKNOWN_ITEM warning. Under a zone filter, a connection with exactly one
// endpoint in the zone is dropped with a ZONE_SPLIT_CONNECTION warning.
// Port reuse among the surviving connections is reported as
// PORT_ALREADY_USED, and in tree view each item with more than one power
// source is flagged with MULTI_PARENT_NODE. None of these fail the build;
// only invalid options do.
func (b *Builder) Build(items []inventory.Item, conns []inventory.Connection, opts Options) (Graph, error) {
	viz := opts.VizType
	if viz == "" {
		viz = VizTypeNetwork
	}
	if !slices.Contains(VizTypes, viz) {
		return Graph{}, errors.New(errors.ErrCodeInvalidVizType, "unknown visualization type %q (want network or tree)", opts.VizType)
	}
	if err := errors.ValidateZone(opts.Zone); err != nil {
		return Graph{}, err
	}

	s := &buildState{
		reg:   b.reg,
		zone:  opts.Zone,
		items: make(map[string]inventory.Item, len(items)),
	}
	for _, it := range items {
		if _, dup := s.items[it.ID]; !dup {
			s.items[it.ID] = it
		}
	}

	s.filter(conns)
	s.portWarnings()

	ids := s.nodeIDs()
	if viz == VizTypeTree {
		roots := opts.RootClassTypes
		if roots == nil {
			roots = DefaultRootClassTypes
		}
		ids = s.addRoots(ids, items, roots)
	}
	slices.Sort(ids)

	g := Graph{
		VizType: viz,
		Zone:    opts.Zone,
		Nodes:   make([]Node, 0, len(ids)),
		Edges:   make([]Edge, 0, len(s.kept)),
	}
	for _, id := range ids {
		g.Nodes = append(g.Nodes, s.node(id))
	}
	for _, c := range s.kept {
		g.Edges = append(g.Edges, s.edge(c))
	}

	countDegrees(&g)
	if viz == VizTypeTree {
		g.Roots = s.hierarchy(&g)
	}
	g.Statistics = ComputeStatistics(g.Nodes, g.Edges)
	g.Zones = zonesOf(g.Nodes)
	g.Warnings = s.warnings
	return g, nil
}

// buildState is the scratch space for one Build call.
type buildState struct {
	reg      *registry.Registry
	zone     string
	items    map[string]inventory.Item
	kept     []inventory.Connection
	warnings []Warning
}

func (s *buildState) warn(code errors.Code, itemID, connID, format string, args ...any) {
	s.warnings = append(s.warnings, Warning{
		Code:         code,
		Message:      errors.New(code, format, args...).Message,
		ItemID:       itemID,
		ConnectionID: connID,
	})
}

func (s *buildState) inZone(id string) bool {
	return s.zone == "" || s.items[id].Zone == s.zone
}

// filter keeps the connections of a known type whose endpoints both exist
// and, under a zone filter, both lie in the zone.
func (s *buildState) filter(conns []inventory.Connection) {
	for _, c := range conns {
		if t := c.EffectiveType(); !t.Valid() {
			s.warn(errors.ErrCodeInvalidInput, "", c.ID,
				"connection %s has unknown type %q", c.Label(), t)
			continue
		}
		_, fromOK := s.items[c.FromItemID]
		_, toOK := s.items[c.ToItemID]
		if !fromOK || !toOK {
			missing := c.FromItemID
			if fromOK {
				missing = c.ToItemID
			}
			s.warn(errors.ErrCodeUnknownItem, missing, c.ID,
				"connection %s references unknown item %s", c.Label(), missing)
			continue
		}

		fromIn, toIn := s.inZone(c.FromItemID), s.inZone(c.ToItemID)
		switch {
		case fromIn && toIn:
			s.kept = append(s.kept, c)
		case fromIn != toIn:
			outside := c.ToItemID
			if toIn {
				outside = c.FromItemID
			}
			s.warn(errors.ErrCodeZoneSplitConnection, outside, c.ID,
				"connection %s leaves zone %s (%s is in %q)", c.Label(), s.zone, outside, s.items[outside].Zone)
		}
	}
}

func (s *buildState) portWarnings() {
	for _, is := range ports.Validate(s.kept) {
		s.warn(errors.ErrCodePortAlreadyUsed, is.ItemID, is.ConnectionID, "%s", is.String())
	}
}

// nodeIDs returns the distinct endpoints of the kept connections.
func (s *buildState) nodeIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range s.kept {
		for _, id := range []string{c.FromItemID, c.ToItemID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// addRoots appends in-zone items that have no connections but whose class or
// class type marks them as a power source.
func (s *buildState) addRoots(ids []string, items []inventory.Item, rootTypes []string) []string {
	present := make(map[string]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}
	for _, it := range items {
		if present[it.ID] || !s.inZone(it.ID) {
			continue
		}
		if slices.Contains(rootTypes, it.ClassType) || slices.Contains(rootTypes, string(it.Class)) {
			present[it.ID] = true
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func (s *buildState) node(id string) Node {
	it := s.items[id]
	style := s.reg.Class(it.ClassType)
	return Node{
		ID:           it.ID,
		ShortName:    it.ShortName,
		ClassType:    it.ClassType,
		Class:        string(it.Class),
		Zone:         it.Zone,
		Color:        style.Color,
		ClassAcronym: style.Acronym,
		Size:         style.Size,
		Shape:        style.Shape,
	}
}

func (s *buildState) edge(c inventory.Connection) Edge {
	t := c.EffectiveType()
	style := s.reg.Edge(t)
	return Edge{
		ID:              c.ID,
		From:            c.FromItemID,
		To:              c.ToItemID,
		FromPort:        c.FromPort,
		ToPort:          c.ToPort,
		Type:            string(t),
		Notes:           c.Notes,
		Illuminates:     slices.Clone(c.Illuminates),
		Color:           style.Color,
		StrokeWidth:     style.StrokeWidth,
		StrokeDasharray: style.Dasharray,
	}
}

func countDegrees(g *Graph) {
	pos := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		pos[n.ID] = i
	}
	for _, e := range g.Edges {
		g.Nodes[pos[e.From]].OutgoingConnections++
		g.Nodes[pos[e.To]].IncomingConnections++
	}
}

// hierarchy assigns parents and depths along power edges and returns the
// roots. A node powered from more than one source item is flagged rather than
// given an arbitrary parent; it and everything below it get depth -1.
func (s *buildState) hierarchy(g *Graph) []string {
	parents := make(map[string][]string)
	for _, e := range g.Edges {
		if e.Type == string(inventory.Power) && !slices.Contains(parents[e.To], e.From) {
			parents[e.To] = append(parents[e.To], e.From)
		}
	}

	pos := make(map[string]int, len(g.Nodes))
	depth := make([]int, len(g.Nodes))
	children := make(map[string][]string)
	roots := []string{}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		pos[n.ID] = i
		depth[i] = -1
		switch ps := parents[n.ID]; len(ps) {
		case 0:
			roots = append(roots, n.ID)
		case 1:
			n.Parent = ps[0]
			children[ps[0]] = append(children[ps[0]], n.ID)
		default:
			n.MultiParent = true
			n.Parents = ps
			s.warn(errors.ErrCodeMultiParentNode, n.ID, "",
				"%s is powered from %d sources: %v", n.DisplayLabel(), len(ps), ps)
		}
	}

	queue := slices.Clone(roots)
	for _, id := range roots {
		depth[pos[id]] = 0
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		d := depth[pos[id]]
		for _, child := range children[id] {
			if i := pos[child]; depth[i] < 0 {
				depth[i] = d + 1
				queue = append(queue, child)
			}
		}
	}
	for i := range g.Nodes {
		g.Nodes[i].Depth = &depth[i]
	}
	return roots
}

// ComputeStatistics aggregates nodes and edges. It is recomputed on every
// call and never cached.
func ComputeStatistics(nodes []Node, edges []Edge) Statistics {
	st := Statistics{
		TotalItems:       len(nodes),
		TotalConnections: len(edges),
		ItemsByType:      make(map[string]int),
	}
	for _, n := range nodes {
		st.ItemsByType[n.ClassType]++
	}
	for _, e := range edges {
		switch inventory.ConnectionType(e.Type) {
		case inventory.Power:
			st.PowerConnections++
		case inventory.Illuminates:
			st.IlluminatesConnections++
		}
	}
	return st
}

func zonesOf(nodes []Node) []string {
	zones := []string{}
	for _, n := range nodes {
		if n.Zone != "" && !slices.Contains(zones, n.Zone) {
			zones = append(zones, n.Zone)
		}
	}
	slices.Sort(zones)
	return zones
}
