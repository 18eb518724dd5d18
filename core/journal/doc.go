// Package journal keeps a relational log of the change events the
// replication session handled, with their outcome (applied, suppressed,
// skipped or failed).
//
// The journal is optional. It is enabled with database.enabled and written
// through GORM, so it runs on MySQL or on a local sqlite file.
//
// # Usage
//
//	j := journal.New(db)
//	if err := j.Migrate(ctx); err != nil {
//	    return err
//	}
//	entries, err := j.Recent(ctx, 20)
package journal
