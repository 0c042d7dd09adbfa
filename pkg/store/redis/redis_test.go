package redis

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/spookydecs/circuitry/pkg/errors"
)

func TestKeys(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer rdb.Close()

	tests := []struct {
		prefix string
		items  string
		conn   string
		ports  string
	}{
		{"", "circuitry:items", "circuitry:conn:halloween", "circuitry:ports:halloween"},
		{"test:", "test:items", "test:conn:halloween", "test:ports:halloween"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			s := New(rdb, tt.prefix)
			assert.Equal(t, tt.items, s.itemsKey())
			assert.Equal(t, tt.conn, s.connKey("halloween"))
			assert.Equal(t, tt.ports, s.portsKey("halloween"))
		})
	}
}

func TestDecodeItems(t *testing.T) {
	raw := map[string]string{
		"D1": `{"id":"D1","class_type":"Inflatable","female_ends":0,"male_ends":1}`,
		"A1": `{"id":"A1","class_type":"Cord","female_ends":"3","male_ends":"x"}`,
		"R1": `{"class_type":"Receptacle","female_ends":2}`,
	}

	items, problems := decodeItems(raw)
	assert.Empty(t, problems)
	require.Len(t, items, 3)
	assert.Equal(t, "A1", items[0].ID)
	assert.Equal(t, 3, items[0].FemaleEnds.Int())
	assert.Equal(t, 0, items[0].MaleEnds.Int())
	assert.Equal(t, "D1", items[1].ID)
	// A record without an id takes its hash field.
	assert.Equal(t, "R1", items[2].ID)

}

func TestDecodeItemsSkipsCorruptRecord(t *testing.T) {
	items, problems := decodeItems(map[string]string{
		"X":  "{not json",
		"A1": `{"id":"A1","class_type":"Cord","female_ends":2,"male_ends":1}`,
	})

	require.Len(t, items, 1)
	assert.Equal(t, "A1", items[0].ID)
	require.Len(t, problems, 1)
	assert.True(t, pkgerrors.Is(problems[0], pkgerrors.ErrCodeInvalidInput))
	assert.Contains(t, problems[0].Error(), "X")
}

func TestDecodeConnectionsOrder(t *testing.T) {
	raw := map[string]string{
		"c2": `{"id":"c2","from_item_id":"A1","from_port":"Female_2","to_item_id":"D2","to_port":"Male_1","connected_at":"2025-10-01T18:05:00Z"}`,
		"c1": `{"id":"c1","from_item_id":"A1","from_port":"Female_1","to_item_id":"D1","to_port":"Male_1","connected_at":"2025-10-01T18:00:00Z"}`,
		"c0": `{"id":"c0","from_item_id":"R1","from_port":"Female_1","to_item_id":"A1","to_port":"Male_1","connected_at":"2025-10-01T18:05:00Z"}`,
	}

	conns, err := decodeConnections(raw)
	require.NoError(t, err)
	require.Len(t, conns, 3)
	assert.Equal(t, "c1", conns[0].ID)
	assert.Equal(t, "c0", conns[1].ID)
	assert.Equal(t, "c2", conns[2].ID)
}
