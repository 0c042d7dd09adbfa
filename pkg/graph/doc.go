// Package graph derives the connection graph of a deployment.
//
// A [Builder] consumes item and connection snapshots and produces a [Graph]:
// one [Node] per connected item, one [Edge] per connection, aggregate
// [Statistics], the zones present, and any data-quality [Warning]s found on
// the way. Nodes and edges are annotated from an injected
// [registry.Registry], so annotation does not depend on rendering code.
//
// # Views
//
//	graph.VizTypeNetwork   // "network": items with at least one connection
//	graph.VizTypeTree      // "tree": adds parents, depths and unconnected roots
//
// In tree view every node should have at most one incoming power edge. A node
// with several is kept, marked MultiParent with all its sources listed, and
// reported with a MULTI_PARENT_NODE warning; no parent is chosen for it.
//
// # Zone Filtering
//
// With Options.Zone set, only items in that zone survive, and a connection
// survives only if both ends do. Degree counts and statistics are computed
// after filtering, so they describe the zone, not the deployment.
//
// # Determinism
//
// Nodes are sorted by ID, edges keep input order and warnings keep discovery
// order. Identical inputs give identical output.
//
// # Serialization
//
//	{
//	  "viz_type": "network",
//	  "nodes": [{"id": "A1", "class_type": "Cord", "color": "#3b82f6", ...}],
//	  "edges": [{"from": "A1", "to": "D1", "connection_type": "power", ...}],
//	  "statistics": {"total_items": 2, "power_connections": 1, ...},
//	  "zones": ["A"]
//	}
//
// Use [WriteGraph], [WriteGraphFile] or [MarshalGraph] to export, and
// [ReadGraph] or [UnmarshalGraph] to load a saved graph.
//
// # Concurrency
//
// Build has no shared mutable state. A Builder may be used from several
// goroutines at once.
package graph
