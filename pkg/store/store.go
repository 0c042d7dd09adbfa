// Package store defines the boundary between the engine and wherever items
// and connections are persisted.
//
// The engine never mutates stored state itself. It reads a fresh snapshot
// per request through [Store] and hands a chosen connection back to the
// caller, who persists it with CreateConnection. Adapters:
//
//   - [Memory]: in-process, for tests and dry runs
//   - [File]: a JSON snapshot on local disk
//   - store/mongo: MongoDB collections with unique port indexes
//   - store/redis: Redis hashes with HSETNX port claims
//
// Decorators add behaviour around any adapter:
//
//	s = store.WithValidation(s, onInvalid) // drop malformed records once, here
//	s = store.WithRetry(s, store.DefaultRetryPolicy)
//	s = store.WithHooks(s, hooks.Store)
//
// Every adapter rejects a connection that would reuse an occupied port with
// an error wrapping [ErrConflict]; the engine cannot detect a port taken by
// a concurrent session between selection and write.
package store

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/spookydecs/circuitry/pkg/inventory"
)

// Store reads items and reads and writes connections.
type Store interface {
	// ListItems returns the items in zone, or all items when zone is empty.
	ListItems(ctx context.Context, zone string) ([]inventory.Item, error)

	// ListConnections returns every connection of a deployment.
	ListConnections(ctx context.Context, deployment string) ([]inventory.Connection, error)

	// CreateConnection persists c and returns it with ID and ConnectedAt
	// filled in. It fails with ErrConflict if either port is already used.
	CreateConnection(ctx context.Context, deployment string, c inventory.Connection) (inventory.Connection, error)

	// DeleteConnection removes a connection. It fails with ErrNotFound if
	// the deployment has no connection with that ID.
	DeleteConnection(ctx context.Context, deployment, id string) error

	Close() error
}

// ItemWriter is implemented by adapters that can load inventory records.
// The inventory is normally owned elsewhere; this serves imports and tests.
type ItemWriter interface {
	PutItems(ctx context.Context, items []inventory.Item) error
}

// Prepare validates c and fills in the fields an adapter assigns: a random
// UUID when ID is empty, now when ConnectedAt is zero, and the default
// connection type.
func Prepare(c inventory.Connection, now time.Time) (inventory.Connection, error) {
	if err := c.Validate(); err != nil {
		return inventory.Connection{}, err
	}
	c.Normalize()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.ConnectedAt.IsZero() {
		c.ConnectedAt = now.UTC()
	}
	c.Illuminates = slices.Clone(c.Illuminates)
	return c, nil
}

// FilterZone returns the items in zone. An empty zone returns items as is.
func FilterZone(items []inventory.Item, zone string) []inventory.Item {
	if zone == "" {
		return items
	}
	out := make([]inventory.Item, 0, len(items))
	for _, it := range items {
		if it.Zone == zone {
			out = append(out, it)
		}
	}
	return out
}

// PortKey identifies one side of one port, as used for claims.
// Side is "from" or "to".
func PortKey(side, itemID, port string) string {
	return side + ":" + itemID + ":" + port
}

// Claims returns the two port keys c occupies.
func Claims(c inventory.Connection) (from, to string) {
	return PortKey("from", c.FromItemID, c.FromPort), PortKey("to", c.ToItemID, c.ToPort)
}
