package ports

import (
	"fmt"

	"github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/inventory"
)

// Endpoint describes the other end of an occupied port.
type Endpoint struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name,omitempty"`
	Port     string `json:"port"`
}

// String renders the endpoint for display, e.g. "Pumpkin [D1] Male_1".
func (e Endpoint) String() string {
	if e.ItemName != "" && e.ItemName != e.ItemID {
		return fmt.Sprintf("%s [%s] %s", e.ItemName, e.ItemID, e.Port)
	}
	return fmt.Sprintf("%s %s", e.ItemID, e.Port)
}

// Port is one named port on an item and its occupancy.
type Port struct {
	Name         string             `json:"name"`
	Index        int                `json:"index"`
	Type         inventory.PortType `json:"type"`
	Available    bool               `json:"available"`
	ConnectedTo  *Endpoint          `json:"connected_to,omitempty"`
	ConnectionID string             `json:"connection_id,omitempty"`
}

// Used holds the port names of one item that appear in connections.
type Used struct {
	Female map[string]struct{}
	Male   map[string]struct{}
}

// Has reports whether the named port of the given type is used.
func (u Used) Has(pt inventory.PortType, name string) bool {
	var set map[string]struct{}
	if pt == inventory.Female {
		set = u.Female
	} else {
		set = u.Male
	}
	_, ok := set[name]
	return ok
}

// ListPorts returns the port names item exposes for pt in ascending order.
// Female ports run Female_1..Female_N; the male side is [Male_1] or empty.
func ListPorts(item inventory.Item, pt inventory.PortType) []string {
	switch pt {
	case inventory.Female:
		n := item.FemaleEnds.Int()
		names := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			names = append(names, inventory.FemalePort(i))
		}
		return names
	case inventory.Male:
		if item.MaleEnds.Int() > 0 {
			return []string{inventory.MalePort(1)}
		}
		return []string{}
	default:
		return []string{}
	}
}

// UsedPorts collects the ports of itemID that appear in conns. A female port is
// used when it is the from side of a connection, a male port when it is the to side.
func UsedPorts(itemID string, conns []inventory.Connection) Used {
	used := Used{
		Female: make(map[string]struct{}),
		Male:   make(map[string]struct{}),
	}
	for _, c := range conns {
		if c.FromItemID == itemID {
			used.Female[c.FromPort] = struct{}{}
		}
		if c.ToItemID == itemID {
			used.Male[c.ToPort] = struct{}{}
		}
	}
	return used
}

// AvailablePorts lists every port of item for pt with its occupancy. Occupied
// ports carry the peer endpoint; peers, when given, supply display names.
func AvailablePorts(item inventory.Item, conns []inventory.Connection, pt inventory.PortType, peers ...inventory.Item) []Port {
	return availablePorts(item, item.ID, conns, pt, peers)
}

func availablePorts(item inventory.Item, itemID string, conns []inventory.Connection, pt inventory.PortType, peers []inventory.Item) []Port {
	names := ListPorts(item, pt)
	if len(names) == 0 {
		return []Port{}
	}

	// First connection wins when a port is (invalidly) used twice; Validate
	// reports the duplicate.
	occupied := make(map[string]inventory.Connection)
	for _, c := range conns {
		var name string
		switch {
		case pt == inventory.Female && c.FromItemID == itemID:
			name = c.FromPort
		case pt == inventory.Male && c.ToItemID == itemID:
			name = c.ToPort
		default:
			continue
		}
		if _, dup := occupied[name]; !dup {
			occupied[name] = c
		}
	}

	var peerNames map[string]string
	if len(peers) > 0 {
		peerNames = make(map[string]string, len(peers))
		for _, p := range peers {
			peerNames[p.ID] = p.DisplayName()
		}
	}

	out := make([]Port, 0, len(names))
	for i, name := range names {
		p := Port{Name: name, Index: i + 1, Type: pt, Available: true}
		if c, ok := occupied[name]; ok {
			p.Available = false
			p.ConnectionID = c.ID
			peer := Endpoint{ItemID: c.ToItemID, Port: c.ToPort}
			if pt == inventory.Male {
				peer = Endpoint{ItemID: c.FromItemID, Port: c.FromPort}
			}
			peer.ItemName = peerNames[peer.ItemID]
			p.ConnectedTo = &peer
		}
		out = append(out, p)
	}
	return out
}

// portCount returns how many ports item exposes for pt.
func portCount(item inventory.Item, pt inventory.PortType) int {
	switch pt {
	case inventory.Female:
		return item.FemaleEnds.Int()
	case inventory.Male:
		return min(item.MaleEnds.Int(), 1)
	default:
		return 0
	}
}

// AvailableCount returns how many ports of item for pt are free. It counts
// occupied names without listing every port.
func AvailableCount(item inventory.Item, conns []inventory.Connection, pt inventory.PortType) int {
	total := portCount(item, pt)
	if total == 0 {
		return 0
	}
	used := UsedPorts(item.ID, conns)
	set := used.Female
	if pt == inventory.Male {
		set = used.Male
	}
	taken := 0
	for name := range set {
		if t, i, ok := inventory.ParsePort(name); ok && t == pt && i <= total {
			taken++
		}
	}
	return total - taken
}

// HasAvailable reports whether item has at least one free port for pt.
func HasAvailable(item inventory.Item, conns []inventory.Connection, pt inventory.PortType) bool {
	return AvailableCount(item, conns, pt) > 0
}

// FirstAvailable returns the lowest-index free port, or "" and false.
func FirstAvailable(item inventory.Item, conns []inventory.Connection, pt inventory.PortType) (string, bool) {
	for _, p := range AvailablePorts(item, conns, pt) {
		if p.Available {
			return p.Name, true
		}
	}
	return "", false
}

// ShouldSkipSelection reports whether exactly one port is free, in which case
// callers pick it without prompting.
func ShouldSkipSelection(item inventory.Item, conns []inventory.Connection, pt inventory.PortType) bool {
	return AvailableCount(item, conns, pt) == 1
}

// CheckAvailable returns nil if port is offered by item for pt and is free.
// It returns INVALID_PORT for names the item does not expose and
// PORT_ALREADY_USED for occupied ports.
func CheckAvailable(item inventory.Item, conns []inventory.Connection, pt inventory.PortType, port string) error {
	return checkIn(AvailablePorts(item, conns, pt), item, port)
}

func checkIn(ps []Port, item inventory.Item, port string) error {
	for _, p := range ps {
		if p.Name != port {
			continue
		}
		if p.Available {
			return nil
		}
		return errors.New(errors.ErrCodePortAlreadyUsed,
			"%s on %s is already connected to %s", port, item.DisplayName(), p.ConnectedTo)
	}
	return errors.New(errors.ErrCodeInvalidPort, "%s has no port %s", item.DisplayName(), port)
}
