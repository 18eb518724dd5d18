// Package region defines the region model shared by the codec, the storage
// adapter and the replication feature.
//
// # Model
//
// A Region has an id that is unique within its world, a Shape (Cuboid,
// Polygon or Global), a priority, owner and member domains, typed flags and
// an optional parent. Shapes and flag values are closed sets: code that
// handles them uses a type switch over the types declared here.
//
// # Host interfaces
//
// Manager and Registry describe the in-memory authority the replication
// engine keeps consistent. MemoryManager and MemoryRegistry are the bundled
// implementations used by the CLI.
//
// # Relinking
//
// RelinkParents turns flat child -> parent-id records into parent pointers
// after a bulk load, skipping (and reporting) unknown or circular parents.
package region
