// Package oplog streams MongoDB oplog entries for one namespace.
//
// # Tailer
//
// Tailer.Run reads the position of the newest oplog entry and then polls
// with a tailable await cursor for entries after it:
//
//	{ts: {$gt: <last position>}, ns: "<database>.<collection>"}
//
// When the server closes the cursor the query is issued again from the last
// observed position. Entries older than that position are dropped; entries
// at the same position are all delivered. Run returns when its context is
// cancelled, or with ErrStreamUnavailable when the oplog is empty or cannot
// be read (for example on a standalone server).
//
// # Router
//
// Router.Emit turns an entry into an Event and calls exactly one Handler
// method: OnCreate for inserts (with the inserted document), OnUpdate and
// OnDelete for updates and deletes (with the identity only), or OnException
// for malformed entries, unknown operations and handler panics.
package oplog
