package oplog

import "time"

// Config holds configuration for oplog tailing.
type Config struct {
	// Enabled turns replication of remote changes on.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Database is the database holding the oplog.
	Database string `mapstructure:"database" default:"local"`
	// Collection is the oplog collection.
	Collection string `mapstructure:"collection" default:"oplog.rs"`
	// AwaitTime is how long the server holds a getMore waiting for entries.
	AwaitTime time.Duration `mapstructure:"await_time" default:"5s"`
	// RetryDelay is the pause after a failed or empty poll.
	RetryDelay time.Duration `mapstructure:"retry_delay" default:"1s"`
}
