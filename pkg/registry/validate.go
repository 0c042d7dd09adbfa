package registry

import (
	"regexp"
	"slices"

	"github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/inventory"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks that every entry is complete and well formed. Each class
// type must define a colour, an acronym and a positive size, and may only use
// a known shape. Colours must be #rgb or #rrggbb. It returns one
// INVALID_CONFIG error per problem, ordered by key.
func (r *Registry) Validate() []error {
	var problems []error
	bad := func(format string, args ...any) {
		problems = append(problems, errors.New(errors.ErrCodeInvalidConfig, format, args...))
	}

	for _, ct := range r.ClassTypes() {
		s := r.classes[ct]
		switch {
		case s.Color == "":
			bad("class %q: missing color", ct)
		case !hexColor.MatchString(s.Color):
			bad("class %q: color %q is not a hex colour", ct, s.Color)
		}
		if s.Acronym == "" {
			bad("class %q: missing acronym", ct)
		}
		if s.Size <= 0 {
			bad("class %q: size must be positive, got %d", ct, s.Size)
		}
		if s.Shape != "" && !slices.Contains(Shapes, s.Shape) {
			bad("class %q: unknown shape %q", ct, s.Shape)
		}
	}

	for _, t := range r.ConnectionTypes() {
		s := r.edges[t]
		if !t.Valid() {
			bad("connection type %q is not one of %s, %s", t, inventory.Power, inventory.Illuminates)
		}
		if s.Color != "" && !hexColor.MatchString(s.Color) {
			bad("connection %q: color %q is not a hex colour", t, s.Color)
		}
		if s.StrokeWidth < 0 {
			bad("connection %q: stroke width must not be negative", t)
		}
	}

	for _, z := range r.Zones() {
		s := r.zones[z]
		for _, c := range []string{s.Fill, s.Border} {
			if c != "" && !hexColor.MatchString(c) {
				bad("zone %q: color %q is not a hex colour", z, c)
			}
		}
	}
	return problems
}
