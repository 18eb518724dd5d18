package oplog_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"region-sync/core/oplog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeCursor struct {
	entries []bson.Raw
	pos     int
}

func (c *fakeCursor) TryNext(context.Context) bool {
	if c.pos >= len(c.entries) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Current() bson.Raw           { return c.entries[c.pos-1] }
func (c *fakeCursor) Err() error                  { return nil }
func (c *fakeCursor) Alive() bool                 { return false }
func (c *fakeCursor) Close(context.Context) error { return nil }

// fakeSource serves one scripted response per Tail call and cancels the run
// once the script is exhausted.
type fakeSource struct {
	mu     sync.Mutex
	latest primitive.Timestamp
	err    error
	script []func() (oplog.Cursor, error)
	afters []primitive.Timestamp
	spaces []string
	cancel context.CancelFunc
}

func (s *fakeSource) Latest(context.Context) (primitive.Timestamp, error) {
	return s.latest, s.err
}

func (s *fakeSource) Tail(_ context.Context, after primitive.Timestamp, namespace string) (oplog.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afters = append(s.afters, after)
	s.spaces = append(s.spaces, namespace)
	if len(s.script) == 0 {
		s.cancel()
		return &fakeCursor{}, nil
	}
	next := s.script[0]
	s.script = s.script[1:]
	return next()
}

func oplogEntry(t *testing.T, ts primitive.Timestamp, op string, id primitive.ObjectID) bson.Raw {
	t.Helper()
	doc := bson.D{{Key: "ts", Value: ts}, {Key: "op", Value: op}, {Key: "ns", Value: "worldguard.regions"}}
	switch op {
	case "u":
		doc = append(doc, bson.E{Key: "o2", Value: bson.D{{Key: "_id", Value: id}}})
	default:
		doc = append(doc, bson.E{Key: "o", Value: bson.D{{Key: "_id", Value: id}}})
	}
	return entry(t, doc)
}

func TestTailer_Run(t *testing.T) {
	t.Run("Unavailable", func(t *testing.T) {
		src := &fakeSource{err: errors.New("not a replica set")}
		tailer := oplog.NewTailer(src, oplog.NewRouter(&recordingHandler{}), oplog.TailerOptions{Namespace: "worldguard.regions"})

		err := tailer.Run(context.Background())

		assert.True(t, errors.Is(err, oplog.ErrStreamUnavailable))
		assert.Empty(t, src.afters)
		assert.False(t, tailer.Running())
	})

	t.Run("DeliversInOrderAndResumes", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		start := primitive.Timestamp{T: 100, I: 0}
		id := primitive.NewObjectID()
		src := &fakeSource{latest: start, cancel: cancel}
		src.script = []func() (oplog.Cursor, error){
			func() (oplog.Cursor, error) {
				return &fakeCursor{entries: []bson.Raw{
					oplogEntry(t, primitive.Timestamp{T: 99}, "i", id),
					oplogEntry(t, primitive.Timestamp{T: 101}, "i", id),
					oplogEntry(t, primitive.Timestamp{T: 101}, "u", id),
					oplogEntry(t, primitive.Timestamp{T: 102}, "d", id),
				}}, nil
			},
		}
		h := &recordingHandler{}
		tailer := oplog.NewTailer(src, oplog.NewRouter(h), oplog.TailerOptions{
			Namespace:  "worldguard.regions",
			RetryDelay: time.Millisecond,
		})

		err := tailer.Run(ctx)

		require.NoError(t, err)
		assert.Len(t, h.creates, 1)
		assert.Len(t, h.updates, 1)
		assert.Len(t, h.deletes, 1)
		assert.Empty(t, h.exceptions)
		assert.Equal(t, primitive.Timestamp{T: 101}, h.creates[0].Position)
		require.Len(t, src.afters, 2)
		assert.Equal(t, start, src.afters[0])
		assert.Equal(t, primitive.Timestamp{T: 102}, src.afters[1])
		assert.Equal(t, []string{"worldguard.regions", "worldguard.regions"}, src.spaces)
		assert.Equal(t, primitive.Timestamp{T: 102}, tailer.Position())
	})

	t.Run("RetriesAfterTailError", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		src := &fakeSource{latest: primitive.Timestamp{T: 5}, cancel: cancel}
		src.script = []func() (oplog.Cursor, error){
			func() (oplog.Cursor, error) { return nil, errors.New("connection reset") },
		}
		tailer := oplog.NewTailer(src, oplog.NewRouter(&recordingHandler{}), oplog.TailerOptions{RetryDelay: time.Millisecond})

		require.NoError(t, tailer.Run(ctx))
		assert.Len(t, src.afters, 2)
		assert.Equal(t, primitive.Timestamp{T: 5}, tailer.Position())
	})

	t.Run("MalformedEntryDoesNotStopLoop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		id := primitive.NewObjectID()
		src := &fakeSource{latest: primitive.Timestamp{T: 1}, cancel: cancel}
		src.script = []func() (oplog.Cursor, error){
			func() (oplog.Cursor, error) {
				return &fakeCursor{entries: []bson.Raw{
					entry(t, bson.D{{Key: "ts", Value: primitive.Timestamp{T: 2}}, {Key: "op", Value: "x"}}),
					oplogEntry(t, primitive.Timestamp{T: 3}, "d", id),
				}}, nil
			},
		}
		h := &recordingHandler{}
		tailer := oplog.NewTailer(src, oplog.NewRouter(h), oplog.TailerOptions{RetryDelay: time.Millisecond})

		require.NoError(t, tailer.Run(ctx))
		assert.Len(t, h.exceptions, 1)
		assert.Len(t, h.deletes, 1)
	})
}

func TestTailer_PollRequiresInit(t *testing.T) {
	tailer := oplog.NewTailer(&fakeSource{}, oplog.NewRouter(&recordingHandler{}), oplog.TailerOptions{})

	err := tailer.Poll(context.Background())

	assert.True(t, errors.Is(err, oplog.ErrStreamUnavailable))
}
