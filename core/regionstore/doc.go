// Package regionstore persists regions in MongoDB.
//
// # Adapter
//
// Adapter turns single-document operations into blocking batch calls:
//
//   - SaveAll upserts a set of regions of one world.
//   - SaveChanges upserts changed regions and deletes removed ones.
//   - Load fetches one region by database identity.
//   - LoadAll fetches a world and relinks parents.
//
// A batch notifies the Listener's before hooks for every region, dispatches
// all operations concurrently (bounded by Options.MaxConcurrency), runs the
// after hook of each operation as soon as it completes, and returns only when
// every operation is done. Failures do not cancel sibling operations and
// nothing is rolled back; they are reported together in a *StorageError.
// Options.BatchTimeout puts a deadline on the whole batch.
//
// # Identity Index
//
// The adapter remembers the (world, id) of every database identity it has
// loaded or written. The replication feature uses ResolveLocation to map
// update and delete events, which only carry the identity, back to a region.
// The index is a cache: identities never seen by this process are unknown.
//
// # Collection
//
// Collection is the port to the database. MongoCollection implements it with
// the official driver; mocks.Collection is used by tests.
package regionstore
