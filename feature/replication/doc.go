// Package replication keeps the in-memory region managers consistent with
// the regions collection while other processes write to it.
//
// # Session
//
// A Session wires three parts together and owns their state:
//
//   - EchoSuppressor, installed as the region store listener. A batch write
//     marks each (world, id) before the operation and clears it when the
//     operation completes. An oplog event for a marked location consumes the
//     mark and is dropped.
//   - Applier, the oplog.Handler that applies remote changes. Creates are
//     decoded from the event, updates are reloaded by identity and replace
//     the manager's region, deletes are resolved through the store's identity
//     index. Circular parents are logged and left unlinked.
//   - oplog.Tailer, running on its own goroutine until Stop.
//
// Several sessions can run side by side; nothing is global.
//
// # HTTP
//
//   - GET  /replication/status   session status and counters
//   - GET  /replication/journal  recent journal entries (?limit=N)
//   - GET  /regions/:world       regions held by the world's manager
//   - POST /regions/:world/save  write the world's regions to the database
package replication
