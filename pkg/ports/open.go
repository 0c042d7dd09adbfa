package ports

import (
	"slices"
	"time"

	"github.com/spookydecs/circuitry/pkg/inventory"
)

// OpenItem is an item already wired into a deployment that still has free ports.
type OpenItem struct {
	Item            inventory.Item `json:"item"`
	LastConnected   time.Time      `json:"last_connected,omitzero"`
	AvailableFemale int            `json:"available_female"`
	AvailableMale   int            `json:"available_male"`
}

// TotalAvailable returns the number of free ports on both sides.
func (o OpenItem) TotalAvailable() int { return o.AvailableFemale + o.AvailableMale }

// OpenPorts lists items that take part in at least one connection and still
// expose a free port, most recently connected first. Ties break on item ID.
// Connections naming items absent from items are ignored.
func OpenPorts(items []inventory.Item, conns []inventory.Connection) []OpenItem {
	byID := inventory.Index(items)
	last := make(map[string]time.Time)
	touch := func(id string, at time.Time) {
		if prev, ok := last[id]; !ok || at.After(prev) {
			last[id] = at
		}
	}
	for _, c := range conns {
		touch(c.FromItemID, c.ConnectedAt)
		touch(c.ToItemID, c.ConnectedAt)
	}

	var out []OpenItem
	for id, at := range last {
		item, ok := byID[id]
		if !ok {
			continue
		}
		o := OpenItem{
			Item:            item,
			LastConnected:   at,
			AvailableFemale: AvailableCount(item, conns, inventory.Female),
			AvailableMale:   AvailableCount(item, conns, inventory.Male),
		}
		if o.TotalAvailable() > 0 {
			out = append(out, o)
		}
	}

	slices.SortFunc(out, func(a, b OpenItem) int {
		if c := b.LastConnected.Compare(a.LastConnected); c != 0 {
			return c
		}
		if a.Item.ID < b.Item.ID {
			return -1
		}
		if a.Item.ID > b.Item.ID {
			return 1
		}
		return 0
	})
	return out
}
