package replication

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"region-sync/core/codec"
	"region-sync/core/journal"
	"region-sync/core/reconcile"
	"region-sync/core/region"
	"region-sync/core/regionstore"
	"region-sync/core/regionstore/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeJournal struct {
	entries []journal.Entry
	err     error
	limit   int
}

func (j *fakeJournal) Recent(_ context.Context, limit int) ([]journal.Entry, error) {
	j.limit = limit
	return j.entries, j.err
}

func setupTestApp(t *testing.T, j JournalReader) (*fiber.App, *mocks.Collection, *region.MemoryRegistry) {
	coll := new(mocks.Collection)
	adapter := regionstore.New(coll, regionstore.Options{})
	registry := region.NewMemoryRegistry("world")
	session := NewSession(adapter, registry, idleSource{}, Options{Namespace: "worldguard.regions"})
	driver := regionstore.NewDriver(adapter, []string{"world"})

	app := fiber.New()
	feature := NewFeature(session, registry, driver, j, zap.NewNop())
	assert.Equal(t, "replication", feature.Name())
	assert.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(app))
	return app, coll, registry
}

func TestHandleStatus(t *testing.T) {
	app, _, _ := setupTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/replication/status", nil))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var body Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "worldguard.regions", body.Namespace)
	assert.False(t, body.Running)
}

func TestHandleJournal(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		app, _, _ := setupTestApp(t, nil)

		resp, err := app.Test(httptest.NewRequest("GET", "/replication/journal", nil))

		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
	})

	t.Run("Entries", func(t *testing.T) {
		j := &fakeJournal{entries: []journal.Entry{{ID: 1, Kind: "create", Outcome: journal.OutcomeApplied}}}
		app, _, _ := setupTestApp(t, j)

		resp, err := app.Test(httptest.NewRequest("GET", "/replication/journal?limit=5", nil))

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 5, j.limit)
		var body []journal.Entry
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body, 1)
		assert.Equal(t, "create", body[0].Kind)
	})

	t.Run("BadLimit", func(t *testing.T) {
		app, _, _ := setupTestApp(t, &fakeJournal{})

		resp, err := app.Test(httptest.NewRequest("GET", "/replication/journal?limit=abc", nil))

		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("ReadError", func(t *testing.T) {
		app, _, _ := setupTestApp(t, &fakeJournal{err: errors.New("db down")})

		resp, err := app.Test(httptest.NewRequest("GET", "/replication/journal", nil))

		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
	})
}

func TestHandleRegions(t *testing.T) {
	app, _, registry := setupTestApp(t, nil)
	manager, _ := registry.World("world")
	root := region.New("root", region.Global{})
	shop := region.New("shop", region.Cuboid{Max: region.BlockVector{X: 3, Y: 3, Z: 3}})
	shop.Priority = 2
	shop.SetFlag("pvp", region.BoolFlag(false))
	require.NoError(t, shop.SetParent(root))
	manager.AddRegion(root)
	manager.AddRegion(shop)

	resp, err := app.Test(httptest.NewRequest("GET", "/regions/world", nil))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var body []RegionView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, RegionView{ID: "shop", Type: "cuboid", Priority: 2, Parent: "root", Flags: []string{"pvp"}}, body[1])

	resp, err = app.Test(httptest.NewRequest("GET", "/regions/the_end", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleSave(t *testing.T) {
	t.Run("Saves", func(t *testing.T) {
		app, coll, registry := setupTestApp(t, nil)
		manager, _ := registry.World("world")
		manager.AddRegion(region.New("spawn", region.Global{}))
		b, err := bson.Marshal(bson.D{{Key: "_id", Value: primitive.NewObjectID()}})
		require.NoError(t, err)
		coll.On("Upsert", mock.Anything, "world", "spawn", mock.Anything).Return(bson.Raw(b), nil)

		resp, err := app.Test(httptest.NewRequest("POST", "/regions/world/save", nil))

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		coll.AssertExpectations(t)
	})

	t.Run("StorageFailure", func(t *testing.T) {
		app, coll, registry := setupTestApp(t, nil)
		manager, _ := registry.World("world")
		manager.AddRegion(region.New("spawn", region.Global{}))
		coll.On("Upsert", mock.Anything, "world", "spawn", mock.Anything).Return(nil, errors.New("write conflict"))

		resp, err := app.Test(httptest.NewRequest("POST", "/regions/world/save", nil))

		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
	})
}

func storedRegion(t *testing.T, r *region.Region) bson.Raw {
	t.Helper()
	doc := append(bson.D{{Key: "_id", Value: primitive.NewObjectID()}}, codec.Encode(codec.NewRecord("world", r))...)
	b, err := bson.Marshal(doc)
	require.NoError(t, err)
	return bson.Raw(b)
}

func TestHandleDrift(t *testing.T) {
	app, coll, registry := setupTestApp(t, nil)
	manager, _ := registry.World("world")
	manager.AddRegion(region.New("spawn", region.Global{}))
	coll.On("FindByWorld", mock.Anything, "world").Return([]bson.Raw{
		storedRegion(t, region.New("stale", region.Global{})),
	}, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/regions/world/drift", nil))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var body struct {
		Plan     reconcile.Plan `json:"plan"`
		Executed int            `json:"executed"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Zero(t, body.Executed)
	assert.Equal(t, 1, body.Plan.Summary.MissingMemory)
	assert.Equal(t, 1, body.Plan.Summary.MissingStore)
	assert.Len(t, body.Plan.Actions, 2)
	coll.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleReconcile(t *testing.T) {
	app, coll, registry := setupTestApp(t, nil)
	manager, _ := registry.World("world")
	manager.AddRegion(region.New("spawn", region.Global{}))
	coll.On("FindByWorld", mock.Anything, "world").Return([]bson.Raw{
		storedRegion(t, region.New("stale", region.Global{})),
	}, nil)
	coll.On("Upsert", mock.Anything, "world", "spawn", mock.Anything).Return(nil, nil).Once()
	coll.On("Delete", mock.Anything, "world", "stale").Return(nil, nil).Once()

	resp, err := app.Test(httptest.NewRequest("POST", "/regions/world/reconcile?purge=true&confirm=true", nil))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var body struct {
		Executed int `json:"executed"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Executed)
	coll.AssertExpectations(t)
}
