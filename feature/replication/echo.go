package replication

import (
	"sync"

	"region-sync/core/region"
)

// EchoSuppressor tracks regions this process is writing so their oplog
// reflection is not applied back to the local manager. It implements
// regionstore.Listener.
type EchoSuppressor struct {
	mu      sync.Mutex
	pending map[region.Location]struct{}
}

// NewEchoSuppressor creates an empty suppressor.
func NewEchoSuppressor() *EchoSuppressor {
	return &EchoSuppressor{pending: make(map[region.Location]struct{})}
}

// Mark flags a location as pending echo.
func (e *EchoSuppressor) Mark(loc region.Location) {
	e.mu.Lock()
	e.pending[loc] = struct{}{}
	e.mu.Unlock()
}

// Clear removes the pending flag of a location.
func (e *EchoSuppressor) Clear(loc region.Location) {
	e.mu.Lock()
	delete(e.pending, loc)
	e.mu.Unlock()
}

// Consume reports whether loc was pending and removes the flag, so a mark
// suppresses at most one event.
func (e *EchoSuppressor) Consume(loc region.Location) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.pending[loc]; !ok {
		return false
	}
	delete(e.pending, loc)
	return true
}

// Pending returns the number of locations awaiting their echo.
func (e *EchoSuppressor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

func (e *EchoSuppressor) BeforeWrite(world string, r *region.Region) {
	e.Mark(region.Location{World: world, ID: r.ID})
}

func (e *EchoSuppressor) AfterWrite(world string, r *region.Region) {
	e.Clear(region.Location{World: world, ID: r.ID})
}

func (e *EchoSuppressor) BeforeDelete(world string, r *region.Region) {
	e.Mark(region.Location{World: world, ID: r.ID})
}

func (e *EchoSuppressor) AfterDelete(world string, r *region.Region) {
	e.Clear(region.Location{World: world, ID: r.ID})
}
