package regionstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"region-sync/core/codec"
	"region-sync/core/region"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Listener is notified around every write and delete issued by a batch.
// After hooks run once the operation completed, whether it failed or not.
type Listener interface {
	BeforeWrite(world string, r *region.Region)
	AfterWrite(world string, r *region.Region)
	BeforeDelete(world string, r *region.Region)
	AfterDelete(world string, r *region.Region)
}

// Difference is the set of regions to upsert and remove in one batch.
type Difference struct {
	Changed []*region.Region
	Removed []*region.Region
}

// Options tune an Adapter.
type Options struct {
	// BatchTimeout bounds every batch call. Zero disables the deadline.
	BatchTimeout time.Duration
	// MaxConcurrency caps the operations in flight per batch. Zero or less
	// means unbounded.
	MaxConcurrency int
	Logger         *zap.Logger
}

// Adapter persists regions through a Collection. Batch calls dispatch one
// operation per region concurrently and return once all of them completed.
type Adapter struct {
	coll   Collection
	opts   Options
	logger *zap.Logger

	mu       sync.RWMutex
	index    map[primitive.ObjectID]region.Location
	listener Listener

	loads singleflight.Group
}

// New creates an adapter over coll.
func New(coll Collection, opts Options) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		coll:   coll,
		opts:   opts,
		logger: logger,
		index:  make(map[primitive.ObjectID]region.Location),
	}
}

// SetListener installs the hooks called around batch operations. A nil
// listener disables them.
func (a *Adapter) SetListener(l Listener) {
	a.mu.Lock()
	a.listener = l
	a.mu.Unlock()
}

// Load fetches a single region by database identity and indexes it.
// Concurrent loads of the same identity share one query.
func (a *Adapter) Load(ctx context.Context, id primitive.ObjectID) (*codec.Record, error) {
	v, err, _ := a.loads.Do(id.Hex(), func() (interface{}, error) {
		raw, err := a.coll.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		rec, err := codec.Decode(raw)
		if err != nil {
			return nil, err
		}
		if rec.ID.IsZero() {
			rec.ID = id
		}
		a.Remember(rec)
		return rec, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("region %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load region %s: %w", id.Hex(), err)
	}
	return v.(*codec.Record), nil
}

// LoadAll returns every region of a world with parent links resolved.
// Documents that fail to decode or belong to another world are skipped.
func (a *Adapter) LoadAll(ctx context.Context, world string) ([]*region.Region, error) {
	raws, err := a.coll.FindByWorld(ctx, world)
	if err != nil {
		return nil, fmt.Errorf("failed to load regions of %q: %w", world, err)
	}

	regions := make(map[string]*region.Region, len(raws))
	parents := make(map[*region.Region]string)
	for _, raw := range raws {
		rec, err := codec.Decode(raw)
		if err != nil {
			a.logger.Warn("Skipping undecodable region document", zap.String("world", world), zap.Error(err))
			continue
		}
		if rec.World != world {
			a.logger.Warn("Skipping region stored for another world",
				zap.String("world", world), zap.String("region", rec.Region.ID), zap.String("stored_world", rec.World))
			continue
		}
		if _, dup := regions[rec.Region.ID]; dup {
			a.logger.Warn("Skipping duplicate region", zap.String("world", world), zap.String("region", rec.Region.ID))
			continue
		}
		if !rec.ID.IsZero() {
			a.Remember(rec)
		}
		regions[rec.Region.ID] = rec.Region
		if rec.Parent != "" {
			parents[rec.Region] = rec.Parent
		}
	}

	for _, s := range region.RelinkParents(regions, parents) {
		a.logger.Warn("Region parent not linked",
			zap.String("world", world), zap.String("region", s.Region), zap.String("parent", s.Parent), zap.String("reason", s.Reason))
	}

	out := make([]*region.Region, 0, len(regions))
	for _, r := range regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveAll upserts every region of a world keyed by (name, world).
func (a *Adapter) SaveAll(ctx context.Context, world string, regions []*region.Region) error {
	ops := make([]operation, 0, len(regions))
	for _, r := range regions {
		ops = append(ops, operation{op: OpWrite, world: world, region: r})
	}
	return a.run(ctx, ops)
}

// SaveChanges upserts the changed regions and deletes the removed ones in a
// single batch.
func (a *Adapter) SaveChanges(ctx context.Context, world string, diff Difference) error {
	ops := make([]operation, 0, len(diff.Changed)+len(diff.Removed))
	for _, r := range diff.Changed {
		ops = append(ops, operation{op: OpWrite, world: world, region: r})
	}
	for _, r := range diff.Removed {
		ops = append(ops, operation{op: OpDelete, world: world, region: r})
	}
	return a.run(ctx, ops)
}

// ResolveLocation maps a database identity to the region it was last seen
// as. Only identities observed by this adapter are known.
func (a *Adapter) ResolveLocation(id primitive.ObjectID) (region.Location, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	loc, ok := a.index[id]
	return loc, ok
}

// Remember indexes a decoded record.
func (a *Adapter) Remember(rec *codec.Record) {
	a.mu.Lock()
	a.index[rec.ID] = rec.Location()
	a.mu.Unlock()
}

// Forget drops an identity from the index.
func (a *Adapter) Forget(id primitive.ObjectID) {
	a.mu.Lock()
	delete(a.index, id)
	a.mu.Unlock()
}

// IndexSize returns the number of indexed identities.
func (a *Adapter) IndexSize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.index)
}

// Ping checks that the collection answers a count query.
func (a *Adapter) Ping(ctx context.Context) (int64, error) {
	return a.coll.Count(ctx)
}

type operation struct {
	op     string
	world  string
	region *region.Region
}

func (o operation) location() region.Location {
	return region.Location{World: o.world, ID: o.region.ID}
}

func (a *Adapter) currentListener() Listener {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.listener
}

// run dispatches ops concurrently and waits for all of them. A failing
// operation never cancels its siblings.
func (a *Adapter) run(ctx context.Context, ops []operation) error {
	if len(ops) == 0 {
		return nil
	}
	if a.opts.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.BatchTimeout)
		defer cancel()
	}

	listener := a.currentListener()
	if listener != nil {
		for _, o := range ops {
			if o.op == OpDelete {
				listener.BeforeDelete(o.world, o.region)
			} else {
				listener.BeforeWrite(o.world, o.region)
			}
		}
	}

	var (
		g        errgroup.Group
		mu       sync.Mutex
		failures []Failure
	)
	if a.opts.MaxConcurrency > 0 {
		g.SetLimit(a.opts.MaxConcurrency)
	}

	for _, o := range ops {
		o := o
		g.Go(func() error {
			var err error
			if o.op == OpDelete {
				err = a.delete(ctx, o)
			} else {
				err = a.write(ctx, o)
			}

			if listener != nil {
				if o.op == OpDelete {
					listener.AfterDelete(o.world, o.region)
				} else {
					listener.AfterWrite(o.world, o.region)
				}
			}

			if err != nil {
				a.logger.Debug("Region operation failed",
					zap.String("op", o.op), zap.String("location", o.location().String()), zap.Error(err))
				mu.Lock()
				failures = append(failures, Failure{Location: o.location(), Op: o.op, Err: err})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		return &StorageError{Failures: failures}
	}
	return nil
}

func (a *Adapter) write(ctx context.Context, o operation) error {
	rec := codec.NewRecord(o.world, o.region)
	stored, err := a.coll.Upsert(ctx, o.world, o.region.ID, codec.Encode(rec))
	if err != nil {
		return err
	}
	if id, ok := objectID(stored); ok {
		rec.ID = id
		a.Remember(rec)
	}
	return nil
}

func (a *Adapter) delete(ctx context.Context, o operation) error {
	removed, err := a.coll.Delete(ctx, o.world, o.region.ID)
	if err != nil {
		return err
	}
	if id, ok := objectID(removed); ok {
		a.Forget(id)
	}
	return nil
}

func objectID(raw bson.Raw) (primitive.ObjectID, bool) {
	if len(raw) == 0 {
		return primitive.NilObjectID, false
	}
	v, err := raw.LookupErr(codec.FieldID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return v.ObjectIDOK()
}
