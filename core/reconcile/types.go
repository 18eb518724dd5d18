package reconcile

// Result represents the reconciliation output for a single region.
// It contains presence flags for each source and any detected mismatches.
type Result struct {
	// ID is the region id.
	ID string `json:"id"`

	// MemoryPresent indicates whether the manager holds the region.
	MemoryPresent bool `json:"memory_present"`

	// StorePresent indicates whether the database holds the region.
	StorePresent bool `json:"store_present"`

	// Mismatch contains descriptions of field mismatches between memory and store.
	// Each string describes a specific mismatch, e.g., "priority: memory=5 store=3".
	Mismatch []string `json:"mismatch"`
}

// InSync reports whether both sources agree on the region.
func (r Result) InSync() bool {
	return r.MemoryPresent && r.StorePresent && len(r.Mismatch) == 0
}

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionDeleteStore deletes a region only the database holds.
	ActionDeleteStore ActionType = "delete_store"
	// ActionSyncStore writes the manager's region to the database.
	ActionSyncStore ActionType = "sync_store"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the region id.
	Key string `json:"key"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// Plan contains reconciliation results and planned actions.
type Plan struct {
	// World is the reconciled world.
	World string `json:"world"`

	// Results contains per-region reconciliation data.
	Results []Result `json:"results"`

	// Actions contains planned mutation operations.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// TotalItems is the total number of unique regions.
	TotalItems int `json:"total_items"`

	// MissingMemory counts regions only the database holds.
	MissingMemory int `json:"missing_memory"`

	// MissingStore counts regions only the manager holds.
	MissingStore int `json:"missing_store"`

	// Mismatches counts regions with field discrepancies.
	Mismatches int `json:"mismatches"`

	// PurgeActions counts planned purge (delete) actions.
	PurgeActions int `json:"purge_actions"`

	// SyncActions counts planned sync (write) actions.
	SyncActions int `json:"sync_actions"`
}

// Options controls reconcile behavior for purge/sync operations.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// DoPurge enables deletion of regions the manager does not hold.
	DoPurge bool

	// DoSync enables writing missing or mismatched regions from the manager.
	DoSync bool

	// Confirmed indicates the caller has confirmed destructive actions.
	// If false, mutations will not execute regardless of DryRun.
	Confirmed bool
}
