// Package mongodb connects to the MongoDB deployment that stores regions.
//
// Connect pings the primary and Verify runs a count on the regions
// collection. Both fail with *ConnectivityError, which callers treat as
// fatal: the region store is never handed out half initialized.
//
// Tailing the oplog requires a replica set (a single-member set is enough).
package mongodb
