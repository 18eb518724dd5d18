// Package database opens the relational database that backs the
// replication journal.
//
// It wraps GORM and supports two drivers: mysql for deployments and sqlite
// for single-node setups and tests. The connection is optional; the service
// keeps replicating when it cannot be reached.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read a table definition so callers can
// verify that a migrated schema carries the columns they write.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logger.Warn("Journal disabled", zap.Error(err))
//	}
package database
