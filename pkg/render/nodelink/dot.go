package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/spookydecs/circuitry/pkg/graph"
	"github.com/spookydecs/circuitry/pkg/inventory"
	"github.com/spookydecs/circuitry/pkg/registry"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds class type, zone and degree counts to node labels and
	// port names to edge labels. When false, labels show the acronym and
	// display name only.
	Detailed bool

	// GroupZones draws each zone as a filled cluster using the registry's
	// zone styles.
	GroupZones bool

	// Registry supplies zone styles. Nil means [registry.Default].
	Registry *registry.Registry
}

var graphvizShapes = map[string]string{
	registry.ShapeCircle:   "circle",
	registry.ShapeSquare:   "box",
	registry.ShapeDiamond:  "diamond",
	registry.ShapeStar:     "star",
	registry.ShapeTriangle: "triangle",
}

// ToDOT converts a connection graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Node colours, shapes and sizes come from the annotations the graph
// builder already applied. Illuminates edges are drawn dashed.
func ToDOT(g graph.Graph, opts Options) string {
	reg := opts.Registry
	if reg == nil {
		reg = registry.Default()
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if g.VizType == graph.VizTypeTree {
		buf.WriteString("  rankdir=TB;\n")
	} else {
		buf.WriteString("  rankdir=LR;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fontcolor=white, fontsize=10, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [arrowsize=0.6, fontsize=8];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if opts.GroupZones {
		byZone := make(map[string][]graph.Node)
		for _, n := range g.Nodes {
			byZone[n.Zone] = append(byZone[n.Zone], n)
		}
		for _, zone := range g.Zones {
			style := reg.Zone(zone)
			fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+zone)
			fmt.Fprintf(&buf, "    label=%q;\n", zone)
			fmt.Fprintf(&buf, "    style=filled; fillcolor=%q; color=%q;\n", style.Fill, style.Border)
			for _, n := range byZone[zone] {
				writeNode(&buf, "    ", n, opts.Detailed)
			}
			buf.WriteString("  }\n")
		}
		for _, n := range byZone[""] {
			writeNode(&buf, "  ", n, opts.Detailed)
		}
	} else {
		for _, n := range g.Nodes {
			writeNode(&buf, "  ", n, opts.Detailed)
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(edgeAttrs(e, opts.Detailed), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, indent string, n graph.Node, detailed bool) {
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(nodeAttrs(n, fmtLabel(n, detailed)), ", "))
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := n.ClassAcronym + "\n" + n.DisplayLabel()
	if !detailed {
		return label
	}

	parts := []string{n.ClassType}
	if n.Zone != "" {
		parts = append(parts, "zone: "+n.Zone)
	}
	parts = append(parts, fmt.Sprintf("in: %d out: %d", n.IncomingConnections, n.OutgoingConnections))
	return label + "\n" + strings.Join(parts, "\n")
}

func nodeAttrs(n graph.Node, label string) []string {
	shape, ok := graphvizShapes[n.Shape]
	if !ok {
		shape = "ellipse"
	}
	// Sizes are in points; Graphviz wants inches.
	width := strconv.FormatFloat(float64(n.Size)/36, 'f', 2, 64)

	attrs := []string{
		fmt.Sprintf("label=%q", label),
		"shape=" + shape,
		fmt.Sprintf("fillcolor=%q", n.Color),
		"width=" + width,
	}
	if n.MultiParent {
		attrs = append(attrs, "penwidth=3", "color=\"#dc2626\"")
	}
	return attrs
}

func edgeAttrs(e graph.Edge, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("color=%q", e.Color),
		"penwidth=" + strconv.FormatFloat(e.StrokeWidth, 'f', -1, 64),
	}
	if e.StrokeDasharray != "" || e.Type == string(inventory.Illuminates) {
		attrs = append(attrs, "style=dashed")
	}
	if detailed {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.FromPort+" → "+e.ToPort))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
