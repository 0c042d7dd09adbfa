package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/spookydecs/circuitry/pkg/inventory"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	items []inventory.Item
	conns map[string][]inventory.Connection
	now   func() time.Time
}

// NewMemory returns a Memory store holding items.
func NewMemory(items ...inventory.Item) *Memory {
	return &Memory{
		items: slices.Clone(items),
		conns: make(map[string][]inventory.Connection),
		now:   time.Now,
	}
}

func (m *Memory) ListItems(ctx context.Context, zone string) ([]inventory.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(FilterZone(m.items, zone)), nil
}

func (m *Memory) ListConnections(ctx context.Context, deployment string) ([]inventory.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.conns[deployment]), nil
}

func (m *Memory) CreateConnection(ctx context.Context, deployment string, c inventory.Connection) (inventory.Connection, error) {
	c, err := Prepare(c, m.now())
	if err != nil {
		return inventory.Connection{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkConflict(m.conns[deployment], c); err != nil {
		return inventory.Connection{}, err
	}
	m.conns[deployment] = append(m.conns[deployment], c)
	return c, nil
}

func (m *Memory) DeleteConnection(ctx context.Context, deployment, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	conns, ok := removeConnection(m.conns[deployment], id)
	if !ok {
		return ErrNotFound
	}
	m.conns[deployment] = conns
	return nil
}

// PutItems adds items, replacing any with the same ID.
func (m *Memory) PutItems(ctx context.Context, items []inventory.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = upsertItems(m.items, items)
	return nil
}

func (m *Memory) Close() error { return nil }

// checkConflict returns ErrConflict if c reuses an ID or an occupied port.
func checkConflict(existing []inventory.Connection, c inventory.Connection) error {
	from, to := Claims(c)
	for _, e := range existing {
		if e.ID == c.ID {
			return fmt.Errorf("%w: connection %s already exists", ErrConflict, c.ID)
		}
		ef, et := Claims(e)
		if ef == from {
			return Conflict(c, "from")
		}
		if et == to {
			return Conflict(c, "to")
		}
	}
	return nil
}

func removeConnection(conns []inventory.Connection, id string) ([]inventory.Connection, bool) {
	i := slices.IndexFunc(conns, func(c inventory.Connection) bool { return c.ID == id })
	if i < 0 {
		return conns, false
	}
	return slices.Delete(slices.Clone(conns), i, i+1), true
}

func upsertItems(base, items []inventory.Item) []inventory.Item {
	out := slices.Clone(base)
	for _, it := range items {
		if i := slices.IndexFunc(out, func(o inventory.Item) bool { return o.ID == it.ID }); i >= 0 {
			out[i] = it
		} else {
			out = append(out, it)
		}
	}
	return out
}

var (
	_ Store      = (*Memory)(nil)
	_ ItemWriter = (*Memory)(nil)
)
