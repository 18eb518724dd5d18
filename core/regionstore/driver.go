package regionstore

import (
	"context"
	"fmt"

	"region-sync/core/region"
)

// Database is the adapter bound to a single world.
type Database struct {
	adapter *Adapter
	world   string
}

// World returns the world this view is bound to.
func (d *Database) World() string {
	return d.world
}

// LoadAll returns every region of the world.
func (d *Database) LoadAll(ctx context.Context) ([]*region.Region, error) {
	return d.adapter.LoadAll(ctx, d.world)
}

// SaveAll upserts every given region of the world.
func (d *Database) SaveAll(ctx context.Context, regions []*region.Region) error {
	return d.adapter.SaveAll(ctx, d.world, regions)
}

// SaveChanges applies a difference to the world.
func (d *Database) SaveChanges(ctx context.Context, diff Difference) error {
	return d.adapter.SaveChanges(ctx, d.world, diff)
}

// Driver hands out per-world databases over one adapter.
type Driver struct {
	adapter *Adapter
	worlds  []string
}

// NewDriver creates a driver for the configured worlds.
func NewDriver(adapter *Adapter, worlds []string) *Driver {
	return &Driver{adapter: adapter, worlds: append([]string(nil), worlds...)}
}

// Adapter returns the shared adapter.
func (d *Driver) Adapter() *Adapter {
	return d.adapter
}

// Get returns the database of a world.
func (d *Driver) Get(world string) *Database {
	return &Database{adapter: d.adapter, world: world}
}

// GetAll returns one database per configured world.
func (d *Driver) GetAll() []*Database {
	out := make([]*Database, 0, len(d.worlds))
	for _, w := range d.worlds {
		out = append(out, d.Get(w))
	}
	return out
}

// Populate loads every configured world into its manager. Worlds unknown to
// the registry are skipped. It returns the number of regions loaded.
func (d *Driver) Populate(ctx context.Context, registry region.Registry) (int, error) {
	total := 0
	for _, db := range d.GetAll() {
		manager, ok := registry.Manager(db.World())
		if !ok {
			d.adapter.logger.Sugar().Warnf("World %q has no region manager, skipping load", db.World())
			continue
		}
		regions, err := db.LoadAll(ctx)
		if err != nil {
			return total, fmt.Errorf("failed to populate world %q: %w", db.World(), err)
		}
		for _, r := range regions {
			manager.AddRegion(r)
		}
		total += len(regions)
	}
	return total, nil
}
