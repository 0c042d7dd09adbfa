// Package nodelink renders connection graphs as node-link diagrams.
//
// # Overview
//
// This package turns a [graph.Graph] into Graphviz DOT source and, through
// go-graphviz, into SVG. Graphviz owns node positioning; the graph carries
// no coordinates.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{GroupZones: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Styling
//
// Nodes take the colour, shape and size the graph builder annotated them
// with, so a registry override shows up here without further wiring.
// Shapes map onto Graphviz as circle, box, diamond, star and triangle.
// Power edges are solid and illuminates edges dashed. In tree view the
// diagram flows top to bottom, otherwise left to right. Nodes flagged
// multi_parent get a thick red outline.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz install is needed.
package nodelink
