package mongodb

import (
	"context"
	"fmt"
	"net/url"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectivityError reports that the database could not be reached at
// startup. The service must not continue without it.
type ConnectivityError struct {
	URI string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot reach mongodb at %s: %v", e.URI, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// Connect opens a client and pings the primary.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	timeout := cfg.Timeout()
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, &ConnectivityError{URI: Redact(cfg.URI), Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &ConnectivityError{URI: Redact(cfg.URI), Err: err}
	}
	return client, nil
}

// Verify counts the documents of the regions collection, which checks that
// the configured database accepts queries from this user.
func Verify(ctx context.Context, client *mongo.Client, cfg Config) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()
	n, err := client.Database(cfg.Database).Collection(cfg.Collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, &ConnectivityError{URI: Redact(cfg.URI), Err: fmt.Errorf("count on %s: %w", cfg.Namespace(), err)}
	}
	return n, nil
}

// Redact hides the password of a connection string.
func Redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "<invalid uri>"
	}
	return u.Redacted()
}
