package oplog

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind classifies a change event.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Oplog operation codes.
const (
	opInsert = "i"
	opUpdate = "u"
	opDelete = "d"
)

// Event is a typed change read from the oplog.
// Create events carry the inserted Document. Update and delete events only
// carry the database identity of the changed document.
type Event struct {
	Kind      Kind
	Position  primitive.Timestamp
	Namespace string
	Document  bson.Raw
	ID        primitive.ObjectID
}

// ComparePositions returns -1, 0 or 1 as a is before, equal to or after b.
func ComparePositions(a, b primitive.Timestamp) int {
	switch {
	case a.T < b.T:
		return -1
	case a.T > b.T:
		return 1
	case a.I < b.I:
		return -1
	case a.I > b.I:
		return 1
	default:
		return 0
	}
}
