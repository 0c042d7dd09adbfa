package ports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spookydecs/circuitry/pkg/inventory"
)

func TestOpenPorts(t *testing.T) {
	t0 := time.Date(2025, 10, 1, 18, 0, 0, 0, time.UTC)
	items := []inventory.Item{
		{ID: "R1", ClassType: "Receptacle", FemaleEnds: 1},
		cord("A1", 3),
		cord("A2", 1),
		{ID: "D1", ClassType: "Inflatable", MaleEnds: 1},
		cord("A9", 2), // never connected
	}
	conns := []inventory.Connection{
		{ID: "c1", FromItemID: "R1", FromPort: "Female_1", ToItemID: "A1", ToPort: "Male_1", ConnectedAt: t0},
		{ID: "c2", FromItemID: "A1", FromPort: "Female_1", ToItemID: "A2", ToPort: "Male_1", ConnectedAt: t0.Add(time.Minute)},
		{ID: "c3", FromItemID: "A2", FromPort: "Female_1", ToItemID: "D1", ToPort: "Male_1", ConnectedAt: t0.Add(2 * time.Minute)},
		{ID: "c4", FromItemID: "A1", FromPort: "Female_2", ToItemID: "GONE", ToPort: "Male_1", ConnectedAt: t0.Add(3 * time.Minute)},
	}

	open := OpenPorts(items, conns)

	// R1, A2 and D1 are fully used; A9 has never been connected; GONE is unknown.
	require.Len(t, open, 1)
	assert.Equal(t, "A1", open[0].Item.ID)
	assert.Equal(t, 1, open[0].AvailableFemale)
	assert.Equal(t, 0, open[0].AvailableMale)
	assert.Equal(t, 1, open[0].TotalAvailable())
	assert.Equal(t, t0.Add(3*time.Minute), open[0].LastConnected)
}

func TestOpenPortsOrdering(t *testing.T) {
	t0 := time.Date(2025, 10, 1, 18, 0, 0, 0, time.UTC)
	items := []inventory.Item{cord("A1", 2), cord("A2", 2), cord("A3", 2)}
	conns := []inventory.Connection{
		{ID: "c1", FromItemID: "A1", FromPort: "Female_1", ToItemID: "A2", ToPort: "Male_1", ConnectedAt: t0},
		{ID: "c2", FromItemID: "A2", FromPort: "Female_1", ToItemID: "A3", ToPort: "Male_1", ConnectedAt: t0.Add(time.Hour)},
	}

	open := OpenPorts(items, conns)
	require.Len(t, open, 3)
	// A2 and A3 share the latest time; ID breaks the tie.
	assert.Equal(t, "A2", open[0].Item.ID)
	assert.Equal(t, "A3", open[1].Item.ID)
	assert.Equal(t, "A1", open[2].Item.ID)
}
