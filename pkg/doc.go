// Package pkg holds the libraries behind the circuitry CLI.
//
// # Overview
//
// Circuitry records how holiday decorations, cords and receptacles are
// plugged together in a deployment and turns that record into graphs. The
// packages layer as follows:
//
//  1. [inventory] - Items, connections, port names and lenient capacities
//  2. [ports] - Port availability, open-port discovery and the port selector
//  3. [registry] - Colours, acronyms, shapes and zone fills
//  4. [graph] - Network and tree views with data-quality warnings
//  5. [store] - Persistence boundary with file, memory, MongoDB and Redis adapters
//  6. [pipeline] - Load, build, connect and render in one place
//
// Supporting packages: [config] (TOML settings), [observability] (build and
// store hooks, Prometheus), [render/nodelink] (DOT and SVG), [cache] (render
// cache), [errors] (coded errors) and [buildinfo].
//
// # Data Flow
//
//	Store (items + connections)
//	         ↓
//	    [pipeline] Runner.Load
//	         ↓
//	    [graph] Builder.Build  ←  [registry]
//	         ↓
//	    JSON / DOT / SVG / summary
//
// # Quick Start
//
//	cfg, _ := config.Load("")
//	st, _ := cfg.OpenStore(ctx, nil, nil)
//	builder, _ := cfg.Builder()
//	runner := pipeline.NewRunner(st, builder, nil, nil)
//	defer runner.Close()
//
//	result, err := runner.Visualize(ctx, pipeline.Options{
//	    Deployment: "halloween-2026",
//	    VizType:    graph.VizTypeTree,
//	})
//
// [inventory]: github.com/spookydecs/circuitry/pkg/inventory
// [ports]: github.com/spookydecs/circuitry/pkg/ports
// [registry]: github.com/spookydecs/circuitry/pkg/registry
// [graph]: github.com/spookydecs/circuitry/pkg/graph
// [store]: github.com/spookydecs/circuitry/pkg/store
// [pipeline]: github.com/spookydecs/circuitry/pkg/pipeline
// [config]: github.com/spookydecs/circuitry/pkg/config
// [observability]: github.com/spookydecs/circuitry/pkg/observability
// [render/nodelink]: github.com/spookydecs/circuitry/pkg/render/nodelink
// [cache]: github.com/spookydecs/circuitry/pkg/cache
// [errors]: github.com/spookydecs/circuitry/pkg/errors
// [buildinfo]: github.com/spookydecs/circuitry/pkg/buildinfo
package pkg
