package oplog_test

import (
	"errors"
	"testing"

	"region-sync/core/oplog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingHandler struct {
	creates    []oplog.Event
	updates    []oplog.Event
	deletes    []oplog.Event
	exceptions []error
	panicOn    oplog.Kind
}

func (h *recordingHandler) OnCreate(ev oplog.Event) {
	if h.panicOn == oplog.KindCreate {
		panic("boom")
	}
	h.creates = append(h.creates, ev)
}

func (h *recordingHandler) OnUpdate(ev oplog.Event) { h.updates = append(h.updates, ev) }
func (h *recordingHandler) OnDelete(ev oplog.Event) { h.deletes = append(h.deletes, ev) }
func (h *recordingHandler) OnException(err error)   { h.exceptions = append(h.exceptions, err) }

func (h *recordingHandler) calls() int {
	return len(h.creates) + len(h.updates) + len(h.deletes) + len(h.exceptions)
}

func entry(t *testing.T, doc bson.D) bson.Raw {
	t.Helper()
	b, err := bson.Marshal(doc)
	require.NoError(t, err)
	return bson.Raw(b)
}

func TestRouter_Emit(t *testing.T) {
	ts := primitive.Timestamp{T: 1700000000, I: 3}

	t.Run("Create", func(t *testing.T) {
		h := &recordingHandler{}
		id := primitive.NewObjectID()
		oplog.NewRouter(h).Emit(entry(t, bson.D{
			{Key: "ts", Value: ts},
			{Key: "op", Value: "i"},
			{Key: "ns", Value: "worldguard.regions"},
			{Key: "o", Value: bson.D{{Key: "_id", Value: id}, {Key: "name", Value: "spawn"}}},
		}))

		require.Len(t, h.creates, 1)
		assert.Equal(t, 1, h.calls())
		ev := h.creates[0]
		assert.Equal(t, oplog.KindCreate, ev.Kind)
		assert.Equal(t, ts, ev.Position)
		assert.Equal(t, "worldguard.regions", ev.Namespace)
		assert.Equal(t, id, ev.ID)
		assert.Equal(t, "spawn", ev.Document.Lookup("name").StringValue())
	})

	t.Run("UpdateCarriesOnlyIdentity", func(t *testing.T) {
		h := &recordingHandler{}
		x := primitive.NewObjectID()
		oplog.NewRouter(h).Emit(entry(t, bson.D{
			{Key: "op", Value: "u"},
			{Key: "o2", Value: bson.D{{Key: "id", Value: x}}},
		}))

		require.Len(t, h.updates, 1)
		assert.Equal(t, 1, h.calls())
		assert.Equal(t, x, h.updates[0].ID)
		assert.Nil(t, h.updates[0].Document)
	})

	t.Run("Delete", func(t *testing.T) {
		h := &recordingHandler{}
		id := primitive.NewObjectID()
		oplog.NewRouter(h).Emit(entry(t, bson.D{
			{Key: "ts", Value: ts},
			{Key: "op", Value: "d"},
			{Key: "o", Value: bson.D{{Key: "_id", Value: id}}},
		}))

		require.Len(t, h.deletes, 1)
		assert.Equal(t, 1, h.calls())
		assert.Equal(t, id, h.deletes[0].ID)
	})

	exceptions := map[string]bson.D{
		"UnknownOperation": {{Key: "op", Value: "c"}, {Key: "o", Value: bson.D{}}},
		"MissingOperation": {{Key: "o", Value: bson.D{}}},
		"MissingDocument":  {{Key: "op", Value: "i"}},
		"MissingIdentity":  {{Key: "op", Value: "u"}, {Key: "o2", Value: bson.D{{Key: "name", Value: "x"}}}},
		"WrongPosition":    {{Key: "op", Value: "d"}, {Key: "ts", Value: "yesterday"}},
	}
	for name, doc := range exceptions {
		t.Run(name, func(t *testing.T) {
			h := &recordingHandler{}
			oplog.NewRouter(h).Emit(entry(t, doc))

			require.Len(t, h.exceptions, 1)
			assert.Equal(t, 1, h.calls())
		})
	}

	t.Run("UnknownOperationIsDistinguishable", func(t *testing.T) {
		h := &recordingHandler{}
		oplog.NewRouter(h).Emit(entry(t, bson.D{{Key: "op", Value: "n"}}))

		require.Len(t, h.exceptions, 1)
		assert.True(t, errors.Is(h.exceptions[0], oplog.ErrUnknownOperation))
	})

	t.Run("HandlerPanic", func(t *testing.T) {
		h := &recordingHandler{panicOn: oplog.KindCreate}
		assert.NotPanics(t, func() {
			oplog.NewRouter(h).Emit(entry(t, bson.D{
				{Key: "op", Value: "i"},
				{Key: "o", Value: bson.D{{Key: "name", Value: "x"}}},
			}))
		})

		require.Len(t, h.exceptions, 1)
		assert.Contains(t, h.exceptions[0].Error(), "boom")
	})
}

func TestComparePositions(t *testing.T) {
	a := primitive.Timestamp{T: 10, I: 1}
	assert.Equal(t, 0, oplog.ComparePositions(a, a))
	assert.Equal(t, -1, oplog.ComparePositions(a, primitive.Timestamp{T: 10, I: 2}))
	assert.Equal(t, 1, oplog.ComparePositions(primitive.Timestamp{T: 11}, a))
}
