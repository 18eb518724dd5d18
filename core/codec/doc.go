// Package codec converts regions to and from their MongoDB document form.
//
// # Document Schema
//
//	{
//	  name: string, world: string, type: "cuboid"|"polygon"|"global",
//	  parent?: string, priority?: int,
//	  min?: {x,y,z}, max?: {x,y,z},            // cuboid
//	  points?: [{x,z}], min_y?: int, max_y?: int, // polygon
//	  flags?: {<name>: <value>},
//	  owners: {players: [uuid], groups: [string]},
//	  members: {players: [uuid], groups: [string]}
//	}
//
// Encode never writes _id; the store upserts by (name, world) and the server
// assigns the identity. Decode ignores unknown keys so newer writers can add
// fields without breaking older readers.
//
// # Errors
//
// Every error returned by Decode matches ErrDecode. Use errors.As with
// *MissingFieldError, *UnsupportedVariantError or *DecodeError for details.
package codec
