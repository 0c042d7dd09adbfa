package inventory

import (
	"time"

	"github.com/spookydecs/circuitry/pkg/errors"
)

// ConnectionType distinguishes power feeds from spotlight illumination.
type ConnectionType string

// Connection types.
const (
	Power       ConnectionType = "power"
	Illuminates ConnectionType = "illuminates"
)

// Valid reports whether t is a known connection type.
func (t ConnectionType) Valid() bool { return t == Power || t == Illuminates }

// Connection links a female port on the source item to a male port on the
// destination item. Illuminates lists the items a spotlight destination lights.
type Connection struct {
	ID          string         `json:"id,omitempty" bson:"id,omitempty"`
	FromItemID  string         `json:"from_item_id" bson:"from_item_id"`
	FromPort    string         `json:"from_port" bson:"from_port"`
	ToItemID    string         `json:"to_item_id" bson:"to_item_id"`
	ToPort      string         `json:"to_port" bson:"to_port"`
	Type        ConnectionType `json:"connection_type,omitempty" bson:"connection_type,omitempty"`
	Notes       string         `json:"notes,omitempty" bson:"notes,omitempty"`
	Illuminates []string       `json:"illuminates,omitempty" bson:"illuminates,omitempty"`
	ConnectedAt time.Time      `json:"connected_at,omitzero" bson:"connected_at,omitempty"`
}

// EffectiveType returns the connection type, defaulting to power.
func (c Connection) EffectiveType() ConnectionType {
	if c.Type == "" {
		return Power
	}
	return c.Type
}

// Normalize fills defaulted fields in place.
func (c *Connection) Normalize() {
	c.Type = c.EffectiveType()
}

// Validate checks required fields and port naming. The from side must name a
// female port and the to side a male port.
func (c Connection) Validate() error {
	if err := errors.ValidateID("from item", c.FromItemID); err != nil {
		return err
	}
	if err := errors.ValidateID("to item", c.ToItemID); err != nil {
		return err
	}
	if pt, _, ok := ParsePort(c.FromPort); !ok || pt != Female {
		return errors.New(errors.ErrCodeInvalidPort, "from_port %q is not a female port name", c.FromPort)
	}
	if pt, _, ok := ParsePort(c.ToPort); !ok || pt != Male {
		return errors.New(errors.ErrCodeInvalidPort, "to_port %q is not a male port name", c.ToPort)
	}
	if !c.EffectiveType().Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "unknown connection_type %q", c.Type)
	}
	return nil
}

// Label returns a short human-readable form, e.g. "A1:Female_1 -> D1:Male_1".
func (c Connection) Label() string {
	return c.FromItemID + ":" + c.FromPort + " -> " + c.ToItemID + ":" + c.ToPort
}

// ValidConnections normalizes and validates connections, returning the valid
// ones in input order and one error per rejected record.
func ValidConnections(conns []Connection) ([]Connection, []error) {
	out := make([]Connection, 0, len(conns))
	var problems []error
	for i, c := range conns {
		if err := c.Validate(); err != nil {
			problems = append(problems, errors.Wrap(errors.GetCode(err), err, "connection #%d (%s)", i, c.ID))
			continue
		}
		c.Normalize()
		out = append(out, c)
	}
	return out, problems
}
