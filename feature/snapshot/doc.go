// Package snapshot exports and restores the regions of a world through
// object storage.
//
// A snapshot is one canonical Extended JSON document:
//
//	{"world": "world", "exported_at": {"$date": ...}, "regions": [ ... ]}
//
// where every element of regions uses the same layout as the region
// collection, without the database identity. Objects are written under
// snapshots/<world>/ and named after their UTC export time so they sort
// chronologically.
//
// # Endpoints
//
//   - POST /snapshot/:world: export the stored regions of a world.
//   - GET /snapshot/:world: list the snapshots of a world.
//   - POST /snapshot/:world/import?object=<name>: upsert the regions of a snapshot.
package snapshot
