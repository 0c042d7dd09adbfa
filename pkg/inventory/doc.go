// Package inventory defines the item and connection records the engine reads
// from the external store.
//
// Records are validated once, at the store-adapter boundary, by
// [ValidItems] and [ValidConnections]. Everything downstream (port model,
// selector, graph builder) may then assume required fields are present.
//
// # Ports
//
// Ports are not stored. They are derived names: an item with female_ends = N
// exposes Female_1 … Female_N, and an item with male_ends > 0 exposes a single
// Male_1. Use [FemalePort], [MalePort] and [ParsePort] rather than formatting
// names by hand.
//
// # Capacity
//
// Inventory data is hand-entered and capacity fields arrive as numbers,
// numeric strings, empty strings or not at all. [Capacity] decodes all of
// these without failing: anything that is not a non-negative integer becomes
// zero. [ParseCapacity] applies the same rule and also reports the problem.
package inventory
