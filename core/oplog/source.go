package oplog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrStreamUnavailable is returned when no starting position can be read
// from the oplog.
var ErrStreamUnavailable = errors.New("oplog stream unavailable")

// Cursor iterates tailed entries.
type Cursor interface {
	// TryNext advances to the next entry without waiting past one server
	// round trip. It returns false when no entry is ready.
	TryNext(ctx context.Context) bool
	// Current returns the entry TryNext advanced to. It is only valid until
	// the next call to TryNext.
	Current() bson.Raw
	Err() error
	// Alive reports whether the server still holds the cursor open.
	Alive() bool
	Close(ctx context.Context) error
}

// Source reads the oplog.
type Source interface {
	// Latest returns the position of the most recent entry.
	Latest(ctx context.Context) (primitive.Timestamp, error)
	// Tail opens a tailing cursor on entries of namespace after a position.
	Tail(ctx context.Context, after primitive.Timestamp, namespace string) (Cursor, error)
}

// MongoSource reads the oplog of a replica set member.
type MongoSource struct {
	coll      *mongo.Collection
	awaitTime time.Duration
}

// NewMongoSource creates a source over database.collection, usually
// local.oplog.rs.
func NewMongoSource(client *mongo.Client, database, collection string, awaitTime time.Duration) *MongoSource {
	return &MongoSource{
		coll:      client.Database(database).Collection(collection),
		awaitTime: awaitTime,
	}
}

func (s *MongoSource) Latest(ctx context.Context) (primitive.Timestamp, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "$natural", Value: -1}}).
		SetProjection(bson.D{{Key: "ts", Value: 1}})
	raw, err := s.coll.FindOne(ctx, bson.D{}, opts).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.Timestamp{}, fmt.Errorf("%w: %s is empty", ErrStreamUnavailable, s.coll.Name())
	}
	if err != nil {
		return primitive.Timestamp{}, fmt.Errorf("%w: %v", ErrStreamUnavailable, err)
	}
	v, err := raw.LookupErr("ts")
	if err != nil {
		return primitive.Timestamp{}, fmt.Errorf("%w: latest entry has no position", ErrStreamUnavailable)
	}
	t, i, ok := v.TimestampOK()
	if !ok {
		return primitive.Timestamp{}, fmt.Errorf("%w: latest position is %s", ErrStreamUnavailable, v.Type)
	}
	return primitive.Timestamp{T: t, I: i}, nil
}

func (s *MongoSource) Tail(ctx context.Context, after primitive.Timestamp, namespace string) (Cursor, error) {
	filter := bson.D{
		{Key: "ts", Value: bson.D{{Key: "$gt", Value: after}}},
		{Key: "ns", Value: namespace},
	}
	opts := options.Find().SetCursorType(options.TailableAwait)
	if s.awaitTime > 0 {
		opts.SetMaxAwaitTime(s.awaitTime)
	}
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to tail %s: %w", namespace, err)
	}
	return &mongoCursor{cur: cur}, nil
}

type mongoCursor struct {
	cur *mongo.Cursor
}

func (c *mongoCursor) TryNext(ctx context.Context) bool { return c.cur.TryNext(ctx) }
func (c *mongoCursor) Current() bson.Raw                { return c.cur.Current }
func (c *mongoCursor) Err() error                       { return c.cur.Err() }
func (c *mongoCursor) Alive() bool                      { return c.cur.ID() != 0 }
func (c *mongoCursor) Close(ctx context.Context) error  { return c.cur.Close(ctx) }
