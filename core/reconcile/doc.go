// Package reconcile detects drift between the regions a world's manager holds
// and the regions stored in the database.
//
// Replication keeps both sides converged, but events that fail to apply or a
// stream that was down for a while leave differences behind. The reconciler
// builds the union of region ids from both sides, flags what is missing where
// and lists field mismatches for regions present on both.
//
// # Plans
//
// BuildPlan turns the results into actions. The manager is the authority:
//   - sync_store writes a region that is missing or different in the store.
//   - delete_store removes a region only the store holds.
//
// ApplyPlan executes the actions as a single regionstore batch, so every write
// and delete goes through the same listener hooks as any other save. Nothing
// runs unless Options.Confirmed is set and Options.DryRun is not.
//
// # Usage Example
//
//	manager, _ := registry.World("world")
//	plan, executed, err := reconcile.ReconcileAndApply(ctx, "world", manager, driver.Get("world"),
//	    reconcile.Options{DoSync: true, DoPurge: true, Confirmed: true})
package reconcile
