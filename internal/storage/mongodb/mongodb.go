// Package mongodb implements storage.Storage on MongoDB. Each named
// collection maps to a Mongo collection of the same name, and the record key
// is stored as the document _id, so upserts and deletes by key hit the
// primary index.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/aanand-mishra/chapter-api/internal/config"
	"github.com/aanand-mishra/chapter-api/internal/storage"
	"github.com/aanand-mishra/chapter-api/internal/types"
)

const defaultConnectTimeout = 10 * time.Second

// MongoDB is the Mongo-backed store.
type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to cfg.Storage.MongoURI and pings the primary before
// returning.
func New(ctx context.Context, cfg *config.Config) (*MongoDB, error) {
	timeout := cfg.Storage.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Nested documents decode as bson.M so records encode to JSON objects.
	opts := options.Client().
		ApplyURI(cfg.Storage.MongoURI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb.New: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb.New: ping: %w", err)
	}

	return &MongoDB{client: client, db: client.Database(cfg.Storage.MongoDatabase)}, nil
}

// Database exposes the underlying database handle.
func (m *MongoDB) Database() *mongo.Database { return m.db }

func (m *MongoDB) FetchAll(ctx context.Context, c storage.Collection) ([]types.Record, error) {
	cur, err := m.db.Collection(c.Name).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("FetchAll: find %s: %w", c.Name, err)
	}

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("FetchAll: decode %s: %w", c.Name, err)
	}

	records := make([]types.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, toRecord(d))
	}
	return records, nil
}

func (m *MongoDB) GetItem(ctx context.Context, c storage.Collection, key string) (types.Record, error) {
	var doc bson.M
	err := m.db.Collection(c.Name).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("GetItem: %s/%s: %w", c.Name, key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetItem: %s/%s: %w", c.Name, key, err)
	}
	return toRecord(doc), nil
}

// PutItem replaces the whole document, inserting it when absent.
func (m *MongoDB) PutItem(ctx context.Context, c storage.Collection, rec types.Record) error {
	key, err := c.KeyOf(rec)
	if err != nil {
		return fmt.Errorf("PutItem: %s: %w", c.Name, err)
	}

	doc := make(bson.M, len(rec)+1)
	for k, v := range rec {
		doc[k] = v
	}
	doc["_id"] = key

	opts := options.Replace().SetUpsert(true)
	if _, err := m.db.Collection(c.Name).ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("PutItem: %s/%s: %w", c.Name, key, err)
	}
	return nil
}

func (m *MongoDB) DeleteItem(ctx context.Context, c storage.Collection, key string) error {
	if _, err := m.db.Collection(c.Name).DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("DeleteItem: %s/%s: %w", c.Name, key, err)
	}
	return nil
}

// SetAttribute issues a $set without upsert; a zero match means the record
// does not exist.
func (m *MongoDB) SetAttribute(ctx context.Context, c storage.Collection, key, attr string, value any) error {
	res, err := m.db.Collection(c.Name).UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{attr: value}},
	)
	if err != nil {
		return fmt.Errorf("SetAttribute: %s/%s: %w", c.Name, key, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("SetAttribute: %s/%s: %w", c.Name, key, storage.ErrNotFound)
	}
	return nil
}

// Close disconnects the client.
func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// toRecord drops the Mongo-only _id; the key attribute already carries it.
func toRecord(doc bson.M) types.Record {
	delete(doc, "_id")
	return types.Record(doc)
}
