package oplog

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrMalformedEntry is returned for entries missing a required field or
	// carrying a field of the wrong type.
	ErrMalformedEntry = errors.New("malformed oplog entry")
	// ErrUnknownOperation is returned for entries with an unsupported op.
	ErrUnknownOperation = errors.New("unknown oplog operation")
)

// Handler receives routed events. Every entry handed to the router results
// in exactly one call.
type Handler interface {
	OnCreate(Event)
	OnUpdate(Event)
	OnDelete(Event)
	OnException(error)
}

// Router classifies raw oplog entries and dispatches them to a Handler.
type Router struct {
	handler Handler
}

// NewRouter creates a router dispatching to h.
func NewRouter(h Handler) *Router {
	return &Router{handler: h}
}

// Emit routes one entry. Parse failures and panics raised by the handler are
// reported through OnException and never escape.
func (r *Router) Emit(entry bson.Raw) {
	ev, err := Parse(entry)
	if err == nil {
		err = r.dispatch(ev)
	}
	if err != nil {
		r.handler.OnException(err)
	}
}

func (r *Router) dispatch(ev Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handling %s event at %d.%d panicked: %v", ev.Kind, ev.Position.T, ev.Position.I, p)
		}
	}()

	switch ev.Kind {
	case KindCreate:
		r.handler.OnCreate(ev)
	case KindUpdate:
		r.handler.OnUpdate(ev)
	case KindDelete:
		r.handler.OnDelete(ev)
	}
	return nil
}

// Parse turns an oplog entry into an Event.
func Parse(entry bson.Raw) (Event, error) {
	var ev Event

	opValue, err := entry.LookupErr("op")
	if err != nil {
		return ev, fmt.Errorf("%w: missing field %q", ErrMalformedEntry, "op")
	}
	op, ok := opValue.StringValueOK()
	if !ok {
		return ev, fmt.Errorf("%w: field %q is %s", ErrMalformedEntry, "op", opValue.Type)
	}

	if ts, err := entry.LookupErr("ts"); err == nil {
		t, i, ok := ts.TimestampOK()
		if !ok {
			return ev, fmt.Errorf("%w: field %q is %s", ErrMalformedEntry, "ts", ts.Type)
		}
		ev.Position = primitive.Timestamp{T: t, I: i}
	}
	if ns, err := entry.LookupErr("ns"); err == nil {
		ev.Namespace, _ = ns.StringValueOK()
	}

	switch op {
	case opInsert:
		doc, err := document(entry, "o")
		if err != nil {
			return ev, err
		}
		ev.Kind = KindCreate
		ev.Document = doc
		if id, ok := identity(doc); ok {
			ev.ID = id
		}
	case opUpdate:
		doc, err := document(entry, "o2")
		if err != nil {
			return ev, err
		}
		id, ok := identity(doc)
		if !ok {
			return ev, fmt.Errorf("%w: missing object id in %q", ErrMalformedEntry, "o2")
		}
		ev.Kind = KindUpdate
		ev.ID = id
	case opDelete:
		doc, err := document(entry, "o")
		if err != nil {
			return ev, err
		}
		id, ok := identity(doc)
		if !ok {
			return ev, fmt.Errorf("%w: missing object id in %q", ErrMalformedEntry, "o")
		}
		ev.Kind = KindDelete
		ev.ID = id
	default:
		return ev, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	return ev, nil
}

func document(entry bson.Raw, field string) (bson.Raw, error) {
	v, err := entry.LookupErr(field)
	if err != nil {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformedEntry, field)
	}
	doc, ok := v.DocumentOK()
	if !ok {
		return nil, fmt.Errorf("%w: field %q is %s", ErrMalformedEntry, field, v.Type)
	}
	return doc, nil
}

// identity reads the object id of a document from _id, or from id as
// written by some legacy producers.
func identity(doc bson.Raw) (primitive.ObjectID, bool) {
	for _, key := range []string{"_id", "id"} {
		v, err := doc.LookupErr(key)
		if err != nil {
			continue
		}
		return v.ObjectIDOK()
	}
	return primitive.NilObjectID, false
}
