// Package registry holds the style table used to annotate graph nodes and
// edges: a colour, acronym, size and shape per class type, a stroke style per
// connection type, and fill and border colours per zone.
//
// A [Registry] is an immutable value. [Default] returns the built-in palette;
// [Registry.Merge] derives a new registry with overrides applied, which is how
// config files customise it. Lookups for unknown keys return the package
// defaults rather than failing, so a new class type shows up grey and labelled
// "UNK" until someone adds it.
package registry

import (
	"maps"
	"slices"

	"github.com/spookydecs/circuitry/pkg/inventory"
)

// Fallback values for keys the registry does not know.
const (
	DefaultColor       = "#9ca3af"
	DefaultAcronym     = "UNK"
	DefaultSize        = 18
	DefaultShape       = ShapeCircle
	DefaultStrokeWidth = 2.0
	DefaultZoneFill    = "#f3f4f6"
	DefaultZoneBorder  = "#d1d5db"
)

// Node shapes.
const (
	ShapeCircle   = "circle"
	ShapeSquare   = "square"
	ShapeDiamond  = "diamond"
	ShapeStar     = "star"
	ShapeTriangle = "triangle"
)

// Shapes lists the node shapes renderers understand.
var Shapes = []string{ShapeCircle, ShapeSquare, ShapeDiamond, ShapeStar, ShapeTriangle}

// ClassStyle is the node annotation for one class type.
type ClassStyle struct {
	Color   string `json:"color" toml:"color"`
	Acronym string `json:"acronym" toml:"acronym"`
	Size    int    `json:"size" toml:"size"`
	Shape   string `json:"shape" toml:"shape"`
}

// EdgeStyle is the stroke used for one connection type. An empty Dasharray
// means a solid line.
type EdgeStyle struct {
	Color       string  `json:"color" toml:"color"`
	StrokeWidth float64 `json:"stroke_width" toml:"stroke_width"`
	Dasharray   string  `json:"stroke_dasharray,omitempty" toml:"dasharray"`
}

// ZoneStyle is the background used to group a zone's nodes.
type ZoneStyle struct {
	Fill   string `json:"fill" toml:"fill"`
	Border string `json:"border" toml:"border"`
}

// Registry maps class types, connection types and zone names to styles.
// It is safe for concurrent use.
type Registry struct {
	classes map[string]ClassStyle
	edges   map[inventory.ConnectionType]EdgeStyle
	zones   map[string]ZoneStyle
}

// New builds a registry from the given tables. The maps are copied.
func New(classes map[string]ClassStyle, edges map[inventory.ConnectionType]EdgeStyle, zones map[string]ZoneStyle) *Registry {
	r := &Registry{
		classes: make(map[string]ClassStyle, len(classes)),
		edges:   make(map[inventory.ConnectionType]EdgeStyle, len(edges)),
		zones:   make(map[string]ZoneStyle, len(zones)),
	}
	maps.Copy(r.classes, classes)
	maps.Copy(r.edges, edges)
	maps.Copy(r.zones, zones)
	return r
}

// Default returns the built-in palette.
func Default() *Registry {
	return New(
		map[string]ClassStyle{
			"Receptacle":   {Color: "#ef4444", Acronym: "REC", Size: 24, Shape: ShapeSquare},
			"Outlet":       {Color: "#f97316", Acronym: "OUT", Size: 20, Shape: ShapeCircle},
			"Plug":         {Color: "#f59e0b", Acronym: "PLG", Size: 18, Shape: ShapeCircle},
			"Cord":         {Color: "#3b82f6", Acronym: "CRD", Size: 16, Shape: ShapeCircle},
			"Inflatable":   {Color: "#8b5cf6", Acronym: "INF", Size: 22, Shape: ShapeDiamond},
			"Static Prop":  {Color: "#ec4899", Acronym: "PRP", Size: 20, Shape: ShapeDiamond},
			"Animatronic":  {Color: "#14b8a6", Acronym: "ANI", Size: 22, Shape: ShapeDiamond},
			"Spot Light":   {Color: "#facc15", Acronym: "SPT", Size: 20, Shape: ShapeStar},
			"String Light": {Color: "#fbbf24", Acronym: "STR", Size: 18, Shape: ShapeCircle},
		},
		map[inventory.ConnectionType]EdgeStyle{
			inventory.Power:       {Color: "#3b82f6", StrokeWidth: 2},
			inventory.Illuminates: {Color: "#facc15", StrokeWidth: 1.5, Dasharray: "5,5"},
		},
		map[string]ZoneStyle{
			"Front Yard": {Fill: "#dbeafe", Border: "#93c5fd"},
			"Side Yard":  {Fill: "#dcfce7", Border: "#86efac"},
			"Back Yard":  {Fill: "#fee2e2", Border: "#fca5a5"},
		},
	)
}

// Class returns the style for classType with defaults filled in for any
// field the registry leaves empty.
func (r *Registry) Class(classType string) ClassStyle {
	s := r.classes[classType]
	if s.Color == "" {
		s.Color = DefaultColor
	}
	if s.Acronym == "" {
		s.Acronym = DefaultAcronym
	}
	if s.Size <= 0 {
		s.Size = DefaultSize
	}
	if s.Shape == "" {
		s.Shape = DefaultShape
	}
	return s
}

// HasClass reports whether classType has an explicit entry.
func (r *Registry) HasClass(classType string) bool {
	_, ok := r.classes[classType]
	return ok
}

// Edge returns the style for connection type t. An empty type is power.
func (r *Registry) Edge(t inventory.ConnectionType) EdgeStyle {
	if t == "" {
		t = inventory.Power
	}
	s := r.edges[t]
	if s.Color == "" {
		s.Color = DefaultColor
	}
	if s.StrokeWidth <= 0 {
		s.StrokeWidth = DefaultStrokeWidth
	}
	return s
}

// Zone returns the style for a zone name.
func (r *Registry) Zone(name string) ZoneStyle {
	s := r.zones[name]
	if s.Fill == "" {
		s.Fill = DefaultZoneFill
	}
	if s.Border == "" {
		s.Border = DefaultZoneBorder
	}
	return s
}

// ClassTypes returns the configured class types in sorted order.
func (r *Registry) ClassTypes() []string {
	return slices.Sorted(maps.Keys(r.classes))
}

// ConnectionTypes returns the configured connection types in sorted order.
func (r *Registry) ConnectionTypes() []inventory.ConnectionType {
	return slices.Sorted(maps.Keys(r.edges))
}

// Zones returns the configured zone names in sorted order.
func (r *Registry) Zones() []string {
	return slices.Sorted(maps.Keys(r.zones))
}

// Merge returns a new registry with the given entries layered over r.
// Non-zero fields of an override replace the corresponding field; zero
// fields keep the existing value. New keys are added. r is not modified.
func (r *Registry) Merge(classes map[string]ClassStyle, edges map[inventory.ConnectionType]EdgeStyle, zones map[string]ZoneStyle) *Registry {
	out := New(r.classes, r.edges, r.zones)
	for k, o := range classes {
		s := out.classes[k]
		s.Color = pick(o.Color, s.Color)
		s.Acronym = pick(o.Acronym, s.Acronym)
		s.Shape = pick(o.Shape, s.Shape)
		if o.Size != 0 {
			s.Size = o.Size
		}
		out.classes[k] = s
	}
	for k, o := range edges {
		s := out.edges[k]
		s.Color = pick(o.Color, s.Color)
		s.Dasharray = pick(o.Dasharray, s.Dasharray)
		if o.StrokeWidth != 0 {
			s.StrokeWidth = o.StrokeWidth
		}
		out.edges[k] = s
	}
	for k, o := range zones {
		s := out.zones[k]
		s.Fill = pick(o.Fill, s.Fill)
		s.Border = pick(o.Border, s.Border)
		out.zones[k] = s
	}
	return out
}

func pick(override, base string) string {
	if override != "" {
		return override
	}
	return base
}
