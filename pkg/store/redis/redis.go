// Package redis implements store.Store on Redis.
//
// Keys, under a configurable prefix:
//
//	<prefix>items              hash: item ID -> item JSON
//	<prefix>conn:<deployment>  hash: connection ID -> connection JSON
//	<prefix>ports:<deployment> hash: port claim -> connection ID
//
// A connection is written by a Lua script that claims both ports with
// HSETNX before storing the record, so two sessions racing for the same
// port cannot both succeed.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/inventory"
	"github.com/spookydecs/circuitry/pkg/store"
)

// DefaultPrefix is used when no key prefix is configured.
const DefaultPrefix = "circuitry:"

// claimScript returns 1 on success, -1 when the from port is taken, -2 when
// the to port is taken and 0 when the connection ID already exists.
//
// KEYS[1] ports hash, KEYS[2] connections hash.
// ARGV[1] connection ID, ARGV[2] from claim, ARGV[3] to claim, ARGV[4] record.
var claimScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[2], ARGV[1]) == 1 then
  return 0
end
if redis.call('HSETNX', KEYS[1], ARGV[2], ARGV[1]) == 0 then
  return -1
end
if redis.call('HSETNX', KEYS[1], ARGV[3], ARGV[1]) == 0 then
  redis.call('HDEL', KEYS[1], ARGV[2])
  return -2
end
redis.call('HSET', KEYS[2], ARGV[1], ARGV[4])
return 1
`)

// Store is a Redis-backed store.Store. It is safe for concurrent use.
type Store struct {
	rdb       redis.UniversalClient
	prefix    string
	now       func() time.Time
	onInvalid func(error)
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr, prefix string) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, store.Unavailable("ping redis "+addr, err)
	}
	return New(rdb, prefix), nil
}

// New returns a Store using rdb. An empty prefix means DefaultPrefix.
func New(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix, now: time.Now, onInvalid: func(error) {}}
}

// OnInvalid sets the function told about item records that cannot be
// decoded. Such records are skipped by ListItems. A nil fn discards them.
func (s *Store) OnInvalid(fn func(error)) {
	if fn == nil {
		fn = func(error) {}
	}
	s.onInvalid = fn
}

func (s *Store) itemsKey() string { return s.prefix + "items" }

func (s *Store) connKey(deployment string) string { return s.prefix + "conn:" + deployment }

func (s *Store) portsKey(deployment string) string { return s.prefix + "ports:" + deployment }

func (s *Store) ListItems(ctx context.Context, zone string) ([]inventory.Item, error) {
	raw, err := s.rdb.HGetAll(ctx, s.itemsKey()).Result()
	if err != nil {
		return nil, store.Unavailable("read items", err)
	}
	items, problems := decodeItems(raw)
	for _, p := range problems {
		s.onInvalid(p)
	}
	return store.FilterZone(items, zone), nil
}

func (s *Store) ListConnections(ctx context.Context, deployment string) ([]inventory.Connection, error) {
	raw, err := s.rdb.HGetAll(ctx, s.connKey(deployment)).Result()
	if err != nil {
		return nil, store.Unavailable("read connections", err)
	}
	return decodeConnections(raw)
}

func (s *Store) CreateConnection(ctx context.Context, deployment string, c inventory.Connection) (inventory.Connection, error) {
	c, err := store.Prepare(c, s.now())
	if err != nil {
		return inventory.Connection{}, err
	}
	record, err := json.Marshal(c)
	if err != nil {
		return inventory.Connection{}, fmt.Errorf("encode connection: %w", err)
	}

	from, to := store.Claims(c)
	keys := []string{s.portsKey(deployment), s.connKey(deployment)}
	res, err := claimScript.Run(ctx, s.rdb, keys, c.ID, from, to, record).Int()
	if err != nil {
		return inventory.Connection{}, store.Unavailable("claim ports", err)
	}
	switch res {
	case 1:
		return c, nil
	case -1:
		return inventory.Connection{}, store.Conflict(c, "from")
	case -2:
		return inventory.Connection{}, store.Conflict(c, "to")
	default:
		return inventory.Connection{}, fmt.Errorf("%w: connection %s already exists", store.ErrConflict, c.ID)
	}
}

func (s *Store) DeleteConnection(ctx context.Context, deployment, id string) error {
	raw, err := s.rdb.HGet(ctx, s.connKey(deployment), id).Result()
	if errors.Is(err, redis.Nil) {
		return store.ErrNotFound
	}
	if err != nil {
		return store.Unavailable("read connection", err)
	}
	var c inventory.Connection
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return fmt.Errorf("decode connection %s: %w", id, err)
	}

	from, to := store.Claims(c)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.connKey(deployment), id)
		pipe.HDel(ctx, s.portsKey(deployment), from, to)
		return nil
	})
	if err != nil {
		return store.Unavailable("delete connection", err)
	}
	return nil
}

// PutItems stores items, replacing any with the same ID.
func (s *Store) PutItems(ctx context.Context, items []inventory.Item) error {
	if len(items) == 0 {
		return nil
	}
	fields := make(map[string]any, len(items))
	for _, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("encode item %s: %w", it.ID, err)
		}
		fields[it.ID] = data
	}
	if err := s.rdb.HSet(ctx, s.itemsKey(), fields).Err(); err != nil {
		return store.Unavailable("write items", err)
	}
	return nil
}

func (s *Store) Close() error { return s.rdb.Close() }

// decodeItems parses item records, sorted by ID. Capacities decode leniently;
// records that are not valid JSON are skipped and returned as problems.
func decodeItems(raw map[string]string) ([]inventory.Item, []error) {
	items := make([]inventory.Item, 0, len(raw))
	var problems []error
	for id, v := range raw {
		var it inventory.Item
		if err := json.Unmarshal([]byte(v), &it); err != nil {
			problems = append(problems, pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "item %s: undecodable record: %v", id, err))
			continue
		}
		if it.ID == "" {
			it.ID = id
		}
		items = append(items, it)
	}
	slices.SortFunc(items, func(a, b inventory.Item) int { return strings.Compare(a.ID, b.ID) })
	slices.SortFunc(problems, func(a, b error) int { return strings.Compare(a.Error(), b.Error()) })
	return items, problems
}

// decodeConnections parses connection records, oldest first, ties by ID.
func decodeConnections(raw map[string]string) ([]inventory.Connection, error) {
	conns := make([]inventory.Connection, 0, len(raw))
	for id, v := range raw {
		var c inventory.Connection
		if err := json.Unmarshal([]byte(v), &c); err != nil {
			return nil, fmt.Errorf("decode connection %s: %w", id, err)
		}
		conns = append(conns, c)
	}
	slices.SortFunc(conns, func(a, b inventory.Connection) int {
		if c := a.ConnectedAt.Compare(b.ConnectedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return conns, nil
}

var (
	_ store.Store      = (*Store)(nil)
	_ store.ItemWriter = (*Store)(nil)
)
