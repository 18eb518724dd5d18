package mongodb

import "time"

// Config holds configuration for the MongoDB connection.
type Config struct {
	// URI is the connection string. Tailing the oplog needs a replica set.
	URI string `mapstructure:"uri" default:"mongodb://localhost:27017"`
	// Database is the database holding the regions collection.
	Database string `mapstructure:"database" default:"worldguard"`
	// Collection is the regions collection.
	Collection string `mapstructure:"collection" default:"regions"`
	// TimeoutSeconds bounds connection setup, server selection and the
	// startup checks.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
	// BatchTimeout bounds every batch write.
	BatchTimeout time.Duration `mapstructure:"batch_timeout" default:"30s"`
	// MaxConcurrency caps the operations in flight per batch.
	MaxConcurrency int `mapstructure:"max_concurrency" default:"32"`
}

// Namespace returns "<database>.<collection>" as found in oplog entries.
func (c Config) Namespace() string {
	return c.Database + "." + c.Collection
}

// Timeout returns TimeoutSeconds as a duration, defaulting to 10 seconds.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
