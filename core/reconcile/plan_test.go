package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"region-sync/core/reconcile"
	"region-sync/core/region"
	"region-sync/core/regionstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	regions []*region.Region
	loadErr error
	saveErr error
	diffs   []regionstore.Difference
}

func (s *fakeStore) LoadAll(ctx context.Context) ([]*region.Region, error) {
	return s.regions, s.loadErr
}

func (s *fakeStore) SaveChanges(ctx context.Context, diff regionstore.Difference) error {
	s.diffs = append(s.diffs, diff)
	return s.saveErr
}

func drifted() (*region.MemoryManager, *fakeStore) {
	manager := region.NewMemoryManager()
	changed := region.New("changed", region.Global{})
	changed.Priority = 2
	manager.AddRegion(region.New("same", region.Global{}))
	manager.AddRegion(changed)
	manager.AddRegion(region.New("new", region.Global{}))

	store := &fakeStore{regions: []*region.Region{
		region.New("same", region.Global{}),
		region.New("changed", region.Global{}),
		region.New("stale", region.Global{}),
	}}
	return manager, store
}

func TestBuildPlan(t *testing.T) {
	t.Run("ReportOnly", func(t *testing.T) {
		manager, store := drifted()

		plan, err := reconcile.BuildPlan(context.Background(), "world", manager, store, reconcile.Options{})

		require.NoError(t, err)
		assert.Equal(t, "world", plan.World)
		assert.Empty(t, plan.Actions)
		assert.Equal(t, reconcile.PlanSummary{TotalItems: 4, MissingMemory: 1, MissingStore: 1, Mismatches: 1}, plan.Summary)
	})

	t.Run("SyncAndPurge", func(t *testing.T) {
		manager, store := drifted()

		plan, err := reconcile.BuildPlan(context.Background(), "world", manager, store, reconcile.Options{DoSync: true, DoPurge: true})

		require.NoError(t, err)
		assert.Equal(t, []reconcile.Action{
			{Type: reconcile.ActionSyncStore, Key: "changed", Reason: "fields differ"},
			{Type: reconcile.ActionSyncStore, Key: "new", Reason: "missing in store"},
			{Type: reconcile.ActionDeleteStore, Key: "stale", Reason: "not held by the manager"},
		}, plan.Actions)
		assert.Equal(t, 2, plan.Summary.SyncActions)
		assert.Equal(t, 1, plan.Summary.PurgeActions)
	})

	t.Run("LoadFails", func(t *testing.T) {
		manager, store := drifted()
		store.loadErr = errors.New("connection reset")

		_, err := reconcile.BuildPlan(context.Background(), "world", manager, store, reconcile.Options{})

		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestApplyPlan(t *testing.T) {
	opts := reconcile.Options{DoSync: true, DoPurge: true}

	t.Run("RequiresConfirmation", func(t *testing.T) {
		manager, store := drifted()

		_, executed, err := reconcile.ReconcileAndApply(context.Background(), "world", manager, store, opts)

		require.NoError(t, err)
		assert.Zero(t, executed)
		assert.Empty(t, store.diffs)
	})

	t.Run("DryRun", func(t *testing.T) {
		manager, store := drifted()
		dry := opts
		dry.Confirmed, dry.DryRun = true, true

		_, executed, err := reconcile.ReconcileAndApply(context.Background(), "world", manager, store, dry)

		require.NoError(t, err)
		assert.Zero(t, executed)
		assert.Empty(t, store.diffs)
	})

	t.Run("Confirmed", func(t *testing.T) {
		manager, store := drifted()
		confirmed := opts
		confirmed.Confirmed = true

		_, executed, err := reconcile.ReconcileAndApply(context.Background(), "world", manager, store, confirmed)

		require.NoError(t, err)
		assert.Equal(t, 3, executed)
		require.Len(t, store.diffs, 1)
		diff := store.diffs[0]
		require.Len(t, diff.Changed, 2)
		assert.Equal(t, "changed", diff.Changed[0].ID)
		assert.Equal(t, 2, diff.Changed[0].Priority)
		assert.Equal(t, "new", diff.Changed[1].ID)
		require.Len(t, diff.Removed, 1)
		assert.Equal(t, "stale", diff.Removed[0].ID)
	})

	t.Run("SaveFails", func(t *testing.T) {
		manager, store := drifted()
		store.saveErr = &regionstore.StorageError{}
		confirmed := opts
		confirmed.Confirmed = true

		_, executed, err := reconcile.ReconcileAndApply(context.Background(), "world", manager, store, confirmed)

		assert.Error(t, err)
		assert.Zero(t, executed)
	})
}
