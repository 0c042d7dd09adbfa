package ports

import (
	"github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/inventory"
)

// State is the lifecycle state of a [Selector].
type State int

const (
	// StateClosed means no session is active. This is the zero state.
	StateClosed State = iota
	// StateOpen means a snapshot has been taken and a choice is pending.
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Selector resolves one port choice for one item.
//
// Open takes a snapshot of availability. Select and Close end the session;
// only Select invokes the callback, and only once. Re-opening discards the
// previous snapshot. A Selector is meant for a single goroutine.
type Selector struct {
	state    State
	item     inventory.Item
	portType inventory.PortType
	ports    []Port
	onSelect func(port string)
}

// NewSelector returns a closed selector.
func NewSelector() *Selector {
	return &Selector{}
}

// Open starts a session for itemID's ports of type pt. Availability is
// computed once from conns and is not refreshed while open. An empty itemID
// falls back to item.ID. Any session already open is replaced without firing
// its callback.
func (s *Selector) Open(item inventory.Item, conns []inventory.Connection, itemID string, pt inventory.PortType, onSelect func(port string)) {
	if itemID == "" {
		itemID = item.ID
	}
	s.state = StateOpen
	s.item = item
	s.portType = pt
	s.ports = availablePorts(item, itemID, conns, pt, nil)
	s.onSelect = onSelect
}

// OpenOrAuto behaves like Open, except that when exactly one port is free it
// selects that port immediately and reports true. The selector is closed
// again when it returns true.
func (s *Selector) OpenOrAuto(item inventory.Item, conns []inventory.Connection, itemID string, pt inventory.PortType, onSelect func(port string)) bool {
	s.Open(item, conns, itemID, pt, onSelect)
	var only string
	free := 0
	for _, p := range s.ports {
		if p.Available {
			only = p.Name
			free++
		}
	}
	if free != 1 {
		return false
	}
	// Select cannot fail here: only is an available port of the snapshot.
	_ = s.Select(only)
	return true
}

// State returns the current lifecycle state.
func (s *Selector) State() State { return s.state }

// Item returns the item of the current session.
func (s *Selector) Item() inventory.Item { return s.item }

// PortType returns the port type of the current session.
func (s *Selector) PortType() inventory.PortType { return s.portType }

// Ports returns a copy of the snapshot taken at Open. It is empty when closed.
func (s *Selector) Ports() []Port {
	out := make([]Port, len(s.ports))
	copy(out, s.ports)
	return out
}

// Select resolves the session to port. The port must be shown as available in
// the snapshot; otherwise the session stays open and an INVALID_PORT or
// PORT_ALREADY_USED error is returned. On success the callback runs exactly
// once after the selector has closed.
func (s *Selector) Select(port string) error {
	if s.state != StateOpen {
		return errors.New(errors.ErrCodeSelectorClosed, "no port selection in progress")
	}
	if err := checkIn(s.ports, s.item, port); err != nil {
		return err
	}
	cb := s.onSelect
	s.Close()
	if cb != nil {
		cb(port)
	}
	return nil
}

// Close ends the session without a selection. The callback is not invoked.
func (s *Selector) Close() {
	s.state = StateClosed
	s.item = inventory.Item{}
	s.portType = ""
	s.ports = nil
	s.onSelect = nil
}
