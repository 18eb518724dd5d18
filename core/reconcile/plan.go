package reconcile

import (
	"context"

	"region-sync/core/region"
	"region-sync/core/regionstore"
)

// Store is the per-world view of the regions collection.
type Store interface {
	LoadAll(ctx context.Context) ([]*region.Region, error)
	SaveChanges(ctx context.Context, diff regionstore.Difference) error
}

// BuildPlan reconciles a manager against the store and plans the actions
// the options allow. It does NOT execute actions; use ApplyPlan for that.
func BuildPlan(ctx context.Context, world string, manager *region.MemoryManager, store Store, opts Options) (*Plan, error) {
	stored, err := store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	results := Reconcile(manager.Regions(), stored)
	plan := &Plan{World: world, Results: results, Actions: []Action{}}
	plan.Summary.TotalItems = len(results)

	for _, r := range results {
		switch {
		case !r.MemoryPresent:
			plan.Summary.MissingMemory++
			if opts.DoPurge {
				plan.Actions = append(plan.Actions, Action{Type: ActionDeleteStore, Key: r.ID, Reason: "not held by the manager"})
				plan.Summary.PurgeActions++
			}
		case !r.StorePresent:
			plan.Summary.MissingStore++
			if opts.DoSync {
				plan.Actions = append(plan.Actions, Action{Type: ActionSyncStore, Key: r.ID, Reason: "missing in store"})
				plan.Summary.SyncActions++
			}
		case len(r.Mismatch) > 0:
			plan.Summary.Mismatches++
			if opts.DoSync {
				plan.Actions = append(plan.Actions, Action{Type: ActionSyncStore, Key: r.ID, Reason: "fields differ"})
				plan.Summary.SyncActions++
			}
		}
	}

	return plan, nil
}

// ApplyPlan executes the actions of a plan as one batch. It returns the
// number of actions executed. Requires opts.Confirmed=true and
// opts.DryRun=false to actually execute.
func ApplyPlan(ctx context.Context, manager *region.MemoryManager, store Store, plan *Plan, opts Options) (int, error) {
	if !opts.Confirmed || opts.DryRun || len(plan.Actions) == 0 {
		return 0, nil
	}

	var diff regionstore.Difference
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionSyncStore:
			if r, ok := manager.GetRegion(action.Key); ok {
				diff.Changed = append(diff.Changed, r)
			}
		case ActionDeleteStore:
			diff.Removed = append(diff.Removed, region.New(action.Key, region.Global{}))
		}
	}

	if err := store.SaveChanges(ctx, diff); err != nil {
		return 0, err
	}
	return len(diff.Changed) + len(diff.Removed), nil
}

// ReconcileAndApply is a convenience wrapper that plans and optionally applies actions.
func ReconcileAndApply(ctx context.Context, world string, manager *region.MemoryManager, store Store, opts Options) (*Plan, int, error) {
	plan, err := BuildPlan(ctx, world, manager, store, opts)
	if err != nil {
		return nil, 0, err
	}

	executed, err := ApplyPlan(ctx, manager, store, plan, opts)
	return plan, executed, err
}
