package regionstore

import (
	"context"
	"errors"
	"fmt"

	"region-sync/core/codec"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no document matches the requested identity.
var ErrNotFound = errors.New("region not found")

// Collection defines the single-document operations the adapter needs.
type Collection interface {
	// FindByID returns the document with the given identity, or ErrNotFound.
	FindByID(ctx context.Context, id primitive.ObjectID) (bson.Raw, error)
	// FindByWorld returns every document stored for a world.
	FindByWorld(ctx context.Context, world string) ([]bson.Raw, error)
	// Upsert replaces or inserts the document keyed by (name, world) and
	// returns the stored document.
	Upsert(ctx context.Context, world, name string, doc bson.D) (bson.Raw, error)
	// Delete removes the document keyed by (name, world) and returns it, or
	// nil when nothing matched.
	Delete(ctx context.Context, world, name string) (bson.Raw, error)
	// Count returns the number of stored documents.
	Count(ctx context.Context) (int64, error)
}

// MongoCollection implements Collection on a MongoDB collection.
type MongoCollection struct {
	coll *mongo.Collection
}

// NewMongoCollection wraps a driver collection.
func NewMongoCollection(coll *mongo.Collection) *MongoCollection {
	return &MongoCollection{coll: coll}
}

// Namespace returns "<database>.<collection>", the value oplog entries carry
// in their ns field.
func (c *MongoCollection) Namespace() string {
	return c.coll.Database().Name() + "." + c.coll.Name()
}

// EnsureIndexes creates the unique (world, name) index used by upserts.
func (c *MongoCollection) EnsureIndexes(ctx context.Context) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: codec.FieldWorld, Value: 1}, {Key: codec.FieldName, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("world_name"),
	})
	if err != nil {
		return fmt.Errorf("failed to create region index: %w", err)
	}
	return nil
}

func (c *MongoCollection) FindByID(ctx context.Context, id primitive.ObjectID) (bson.Raw, error) {
	raw, err := c.coll.FindOne(ctx, bson.D{{Key: codec.FieldID, Value: id}}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	return raw, err
}

func (c *MongoCollection) FindByWorld(ctx context.Context, world string) ([]bson.Raw, error) {
	cursor, err := c.coll.Find(ctx, bson.D{{Key: codec.FieldWorld, Value: world}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.Raw
	for cursor.Next(ctx) {
		// Current is only valid until the next call.
		docs = append(docs, append(bson.Raw(nil), cursor.Current...))
	}
	return docs, cursor.Err()
}

func (c *MongoCollection) Upsert(ctx context.Context, world, name string, doc bson.D) (bson.Raw, error) {
	opts := options.FindOneAndReplace().
		SetUpsert(true).
		SetReturnDocument(options.After)
	return c.coll.FindOneAndReplace(ctx, byLocation(world, name), doc, opts).Raw()
}

func (c *MongoCollection) Delete(ctx context.Context, world, name string) (bson.Raw, error) {
	raw, err := c.coll.FindOneAndDelete(ctx, byLocation(world, name)).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return raw, err
}

func (c *MongoCollection) Count(ctx context.Context) (int64, error) {
	return c.coll.CountDocuments(ctx, bson.D{})
}

func byLocation(world, name string) bson.D {
	return bson.D{
		{Key: codec.FieldName, Value: name},
		{Key: codec.FieldWorld, Value: world},
	}
}
