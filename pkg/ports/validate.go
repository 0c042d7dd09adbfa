package ports

import (
	"fmt"

	"github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/inventory"
)

// Issue is a single-use violation: one port named by two connections.
type Issue struct {
	ItemID        string             `json:"item_id"`
	Port          string             `json:"port"`
	Side          inventory.PortType `json:"side"`
	ConnectionID  string             `json:"connection_id"`  // the later, conflicting connection
	ConflictsWith string             `json:"conflicts_with"` // the first connection to claim the port
}

// Err returns the issue as a PORT_ALREADY_USED error.
func (i Issue) Err() error {
	return errors.New(errors.ErrCodePortAlreadyUsed, "%s", i.String())
}

// String describes the issue for logs and warnings.
func (i Issue) String() string {
	return fmt.Sprintf("%s %s used by connections %s and %s", i.ItemID, i.Port, label(i.ConflictsWith), label(i.ConnectionID))
}

func label(id string) string {
	if id == "" {
		return "(unsaved)"
	}
	return id
}

type portKey struct {
	item string
	port string
}

// Validate checks that each (item, port) pair appears at most once as a from
// endpoint and at most once as a to endpoint. Issues are reported in input
// order, one per connection beyond the first claim.
func Validate(conns []inventory.Connection) []Issue {
	from := make(map[portKey]string, len(conns))
	to := make(map[portKey]string, len(conns))
	var issues []Issue

	for _, c := range conns {
		fk := portKey{c.FromItemID, c.FromPort}
		if first, ok := from[fk]; ok {
			issues = append(issues, Issue{
				ItemID: c.FromItemID, Port: c.FromPort, Side: inventory.Female,
				ConnectionID: c.ID, ConflictsWith: first,
			})
		} else {
			from[fk] = c.ID
		}

		tk := portKey{c.ToItemID, c.ToPort}
		if first, ok := to[tk]; ok {
			issues = append(issues, Issue{
				ItemID: c.ToItemID, Port: c.ToPort, Side: inventory.Male,
				ConnectionID: c.ID, ConflictsWith: first,
			})
		} else {
			to[tk] = c.ID
		}
	}
	return issues
}
