// Package mongo implements store.Store on MongoDB.
//
// Items live in the "items" collection and connections in "connections",
// one document per connection tagged with its deployment. Unique compound
// indexes on (deployment, from_item_id, from_port) and
// (deployment, to_item_id, to_port) make the database reject a second claim
// on a port, so concurrent sessions cannot both win.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spookydecs/circuitry/pkg/inventory"
	"github.com/spookydecs/circuitry/pkg/store"
)

// Collection names.
const (
	ItemsCollection       = "items"
	ConnectionsCollection = "connections"
)

// Store is a MongoDB-backed store.Store.
type Store struct {
	client *mongo.Client // nil when the caller owns the client
	items  *mongo.Collection
	conns  *mongo.Collection
	now    func() time.Time
}

// Connect dials uri, ensures indexes in database and returns a Store that
// owns the client.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, store.Unavailable("connect mongo", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, store.Unavailable("ping mongo", err)
	}

	s := New(client.Database(database))
	s.client = client
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New returns a Store on db. The caller keeps ownership of the client.
func New(db *mongo.Database) *Store {
	return &Store{
		items: db.Collection(ItemsCollection),
		conns: db.Collection(ConnectionsCollection),
		now:   time.Now,
	}
}

// EnsureIndexes creates the unique indexes the store relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.items.Indexes().CreateMany(ctx, ItemIndexes()); err != nil {
		return store.Unavailable("create item indexes", err)
	}
	if _, err := s.conns.Indexes().CreateMany(ctx, ConnectionIndexes()); err != nil {
		return store.Unavailable("create connection indexes", err)
	}
	return nil
}

// ItemIndexes returns the index models for the items collection.
func ItemIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("item_id")},
		{Keys: bson.D{{Key: "zone", Value: 1}}, Options: options.Index().SetName("item_zone")},
	}
}

// ConnectionIndexes returns the index models for the connections
// collection. The two port indexes enforce single-use ports.
func ConnectionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "deployment", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("conn_id"),
		},
		{
			Keys:    bson.D{{Key: "deployment", Value: 1}, {Key: "from_item_id", Value: 1}, {Key: "from_port", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("conn_from_port"),
		},
		{
			Keys:    bson.D{{Key: "deployment", Value: 1}, {Key: "to_item_id", Value: 1}, {Key: "to_port", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("conn_to_port"),
		},
	}
}

func (s *Store) ListItems(ctx context.Context, zone string) ([]inventory.Item, error) {
	filter := bson.D{}
	if zone != "" {
		filter = bson.D{{Key: "zone", Value: zone}}
	}
	cur, err := s.items.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, store.Unavailable("find items", err)
	}
	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, store.Unavailable("read items", err)
	}

	items := make([]inventory.Item, len(docs))
	for i, d := range docs {
		items[i] = d.item()
	}
	return items, nil
}

func (s *Store) ListConnections(ctx context.Context, deployment string) ([]inventory.Connection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "connected_at", Value: 1}, {Key: "id", Value: 1}})
	cur, err := s.conns.Find(ctx, bson.D{{Key: "deployment", Value: deployment}}, opts)
	if err != nil {
		return nil, store.Unavailable("find connections", err)
	}
	var docs []connectionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, store.Unavailable("read connections", err)
	}

	conns := make([]inventory.Connection, len(docs))
	for i, d := range docs {
		conns[i] = d.Connection
	}
	return conns, nil
}

func (s *Store) CreateConnection(ctx context.Context, deployment string, c inventory.Connection) (inventory.Connection, error) {
	c, err := store.Prepare(c, s.now())
	if err != nil {
		return inventory.Connection{}, err
	}
	// BSON dates carry millisecond precision; match what a read returns.
	c.ConnectedAt = c.ConnectedAt.Truncate(time.Millisecond)

	if _, err := s.conns.InsertOne(ctx, connectionDoc{Deployment: deployment, Connection: c}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return inventory.Connection{}, fmt.Errorf("%w: %s", store.ErrConflict, c.Label())
		}
		return inventory.Connection{}, store.Unavailable("insert connection", err)
	}
	return c, nil
}

func (s *Store) DeleteConnection(ctx context.Context, deployment, id string) error {
	res, err := s.conns.DeleteOne(ctx, bson.D{{Key: "deployment", Value: deployment}, {Key: "id", Value: id}})
	if err != nil {
		return store.Unavailable("delete connection", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// PutItems upserts items by ID.
func (s *Store) PutItems(ctx context.Context, items []inventory.Item) error {
	if len(items) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, len(items))
	for i, it := range items {
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "id", Value: it.ID}}).
			SetReplacement(it).
			SetUpsert(true)
	}
	if _, err := s.items.BulkWrite(ctx, models); err != nil {
		return store.Unavailable("upsert items", err)
	}
	return nil
}

// Close disconnects the client if the Store created it.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var (
	_ store.Store      = (*Store)(nil)
	_ store.ItemWriter = (*Store)(nil)
)
