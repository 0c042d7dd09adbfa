package pipeline

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spookydecs/circuitry/pkg/cache"
	"github.com/spookydecs/circuitry/pkg/graph"
	"github.com/spookydecs/circuitry/pkg/render/nodelink"
)

// Render exports g in format.
func Render(ctx context.Context, g graph.Graph, format string, opts nodelink.Options) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return graph.MarshalGraph(g)
	case FormatDOT:
		return []byte(nodelink.ToDOT(g, opts)), nil
	case FormatSVG:
		svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(g, opts))
		if err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
		return svg, nil
	default:
		return []byte(Summary(g)), nil
	}
}

// Renderer exports graphs like [Render] but keeps SVG output in Cache,
// keyed by the DOT source. A nil Cache disables caching.
type Renderer struct {
	Cache cache.Cache
	TTL   time.Duration
}

// Render exports g in format. Only SVG is cached; the other formats are
// cheap to produce.
func (r Renderer) Render(ctx context.Context, g graph.Graph, format string, opts nodelink.Options) ([]byte, error) {
	if format != FormatSVG || r.Cache == nil {
		return Render(ctx, g, format, opts)
	}

	dot := nodelink.ToDOT(g, opts)
	key := cache.Key(FormatSVG, dot)
	if svg, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
		return svg, nil
	}

	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	// A failed write only costs the next render.
	_ = r.Cache.Set(ctx, key, svg, r.TTL)
	return svg, nil
}

// Summary returns a plain-text overview of g: statistics, items per class
// type and warnings.
func Summary(g graph.Graph) string {
	var b strings.Builder
	s := g.Statistics

	fmt.Fprintf(&b, "view:        %s\n", g.VizType)
	if g.Zone != "" {
		fmt.Fprintf(&b, "zone:        %s\n", g.Zone)
	}
	fmt.Fprintf(&b, "items:       %d\n", s.TotalItems)
	fmt.Fprintf(&b, "connections: %d (power %d, illuminates %d)\n",
		s.TotalConnections, s.PowerConnections, s.IlluminatesConnections)
	if len(g.Zones) > 0 {
		fmt.Fprintf(&b, "zones:       %s\n", strings.Join(g.Zones, ", "))
	}
	if len(g.Roots) > 0 {
		fmt.Fprintf(&b, "roots:       %s\n", strings.Join(g.Roots, ", "))
	}

	if len(s.ItemsByType) > 0 {
		b.WriteString("\nby type:\n")
		for _, t := range slices.Sorted(maps.Keys(s.ItemsByType)) {
			fmt.Fprintf(&b, "  %-16s %d\n", t, s.ItemsByType[t])
		}
	}

	if len(g.Warnings) > 0 {
		fmt.Fprintf(&b, "\nwarnings (%d):\n", len(g.Warnings))
		for _, w := range g.Warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}
	return b.String()
}
