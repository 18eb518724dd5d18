package replication

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"region-sync/core/codec"
	"region-sync/core/journal"
	"region-sync/core/oplog"
	"region-sync/core/region"
	"region-sync/core/regionstore"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the part of the region store the applier needs.
type Store interface {
	Load(ctx context.Context, id primitive.ObjectID) (*codec.Record, error)
	ResolveLocation(id primitive.ObjectID) (region.Location, bool)
	Remember(rec *codec.Record)
	Forget(id primitive.ObjectID)
}

// Recorder persists handled events. *journal.Journal implements it.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Counters summarizes handled events.
type Counters struct {
	Applied    uint64 `json:"applied"`
	Suppressed uint64 `json:"suppressed"`
	Skipped    uint64 `json:"skipped"`
	Failed     uint64 `json:"failed"`
}

// Applier applies remote changes to the region managers. It implements
// oplog.Handler.
type Applier struct {
	store    Store
	registry region.Registry
	echoes   *EchoSuppressor
	recorder Recorder
	logger   *zap.Logger
	timeout  time.Duration

	applied    atomic.Uint64
	suppressed atomic.Uint64
	skipped    atomic.Uint64
	failed     atomic.Uint64
}

// NewApplier creates an applier. recorder may be nil. timeout bounds each
// region load; zero means no bound.
func NewApplier(store Store, registry region.Registry, echoes *EchoSuppressor, recorder Recorder, timeout time.Duration, logger *zap.Logger) *Applier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{
		store:    store,
		registry: registry,
		echoes:   echoes,
		recorder: recorder,
		logger:   logger,
		timeout:  timeout,
	}
}

// Counters returns a snapshot of the event counters.
func (a *Applier) Counters() Counters {
	return Counters{
		Applied:    a.applied.Load(),
		Suppressed: a.suppressed.Load(),
		Skipped:    a.skipped.Load(),
		Failed:     a.failed.Load(),
	}
}

func (a *Applier) OnCreate(ev oplog.Event) {
	rec, err := codec.Decode(ev.Document)
	if err != nil {
		a.fail(ev, region.Location{}, fmt.Errorf("decoding created region: %w", err))
		return
	}
	if rec.ID.IsZero() {
		rec.ID = ev.ID
	}
	loc := rec.Location()
	if a.echoes.Consume(loc) {
		a.suppress(ev, loc)
		return
	}

	manager, ok := a.registry.Manager(loc.World)
	if !ok {
		a.skip(ev, loc, "unknown world")
		return
	}
	a.store.Remember(rec)
	a.linkParent(manager, loc, rec)
	manager.AddRegion(rec.Region)
	a.apply(ev, loc)
}

func (a *Applier) OnUpdate(ev oplog.Event) {
	loc, known := a.store.ResolveLocation(ev.ID)
	if known && a.echoes.Consume(loc) {
		a.suppress(ev, loc)
		return
	}

	ctx, cancel := a.context()
	defer cancel()
	rec, err := a.store.Load(ctx, ev.ID)
	if errors.Is(err, regionstore.ErrNotFound) {
		// Deleted before we could read it, the delete event follows.
		a.skip(ev, loc, "document no longer exists")
		return
	}
	if err != nil {
		a.fail(ev, loc, err)
		return
	}

	if !known {
		loc = rec.Location()
		if a.echoes.Consume(loc) {
			a.suppress(ev, loc)
			return
		}
	}

	manager, ok := a.registry.Manager(loc.World)
	if !ok {
		a.skip(ev, loc, "unknown world")
		return
	}
	a.linkParent(manager, loc, rec)
	manager.RemoveRegion(rec.Region.ID)
	manager.AddRegion(rec.Region)
	a.apply(ev, loc)
}

func (a *Applier) OnDelete(ev oplog.Event) {
	loc, ok := a.store.ResolveLocation(ev.ID)
	if !ok {
		a.logger.Info("Cannot resolve deleted region, skipping", zap.String("object_id", ev.ID.Hex()))
		a.skip(ev, loc, "unresolved identity")
		return
	}
	if a.echoes.Consume(loc) {
		a.suppress(ev, loc)
		return
	}

	manager, found := a.registry.Manager(loc.World)
	if !found {
		a.skip(ev, loc, "unknown world")
		return
	}
	manager.RemoveRegion(loc.ID)
	a.store.Forget(ev.ID)
	a.apply(ev, loc)
}

// OnException records an entry the router could not handle.
func (a *Applier) OnException(err error) {
	a.failed.Add(1)
	a.logger.Error("Failed to handle oplog entry", zap.Error(err))
	a.record(journal.Entry{Kind: "exception", Outcome: journal.OutcomeFailed, Detail: err.Error()})
}

// linkParent attaches the declared parent when the manager holds it. It runs
// before the region is published to the manager. A cyclic parent is logged
// and the region stays unlinked.
func (a *Applier) linkParent(manager region.Manager, loc region.Location, rec *codec.Record) {
	if rec.Parent == "" {
		return
	}
	if rec.Parent == rec.Region.ID {
		a.logger.Warn("Ignoring circular parent", zap.String("location", loc.String()), zap.String("parent", rec.Parent))
		return
	}
	parent, ok := manager.GetRegion(rec.Parent)
	if !ok {
		a.logger.Warn("Parent region not loaded",
			zap.String("location", loc.String()), zap.String("parent", rec.Parent))
		return
	}
	if err := rec.Region.SetParent(parent); err != nil {
		if errors.Is(err, region.ErrCircularInheritance) {
			a.logger.Warn("Ignoring circular parent", zap.String("location", loc.String()), zap.Error(err))
			return
		}
		a.logger.Warn("Cannot link parent", zap.String("location", loc.String()), zap.Error(err))
	}
}

func (a *Applier) context() (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(context.Background(), a.timeout)
	}
	return context.WithCancel(context.Background())
}

func (a *Applier) apply(ev oplog.Event, loc region.Location) {
	a.applied.Add(1)
	a.logger.Debug("Applied remote change", zap.String("kind", string(ev.Kind)), zap.String("location", loc.String()))
	a.record(entryFor(ev, loc, journal.OutcomeApplied, ""))
}

func (a *Applier) suppress(ev oplog.Event, loc region.Location) {
	a.suppressed.Add(1)
	a.logger.Debug("Suppressed own echo", zap.String("kind", string(ev.Kind)), zap.String("location", loc.String()))
	a.record(entryFor(ev, loc, journal.OutcomeSuppressed, ""))
}

func (a *Applier) skip(ev oplog.Event, loc region.Location, reason string) {
	a.skipped.Add(1)
	a.record(entryFor(ev, loc, journal.OutcomeSkipped, reason))
}

func (a *Applier) fail(ev oplog.Event, loc region.Location, err error) {
	a.failed.Add(1)
	a.logger.Error("Failed to apply remote change",
		zap.String("kind", string(ev.Kind)), zap.String("object_id", ev.ID.Hex()), zap.Error(err))
	a.record(entryFor(ev, loc, journal.OutcomeFailed, err.Error()))
}

func (a *Applier) record(e journal.Entry) {
	if a.recorder == nil {
		return
	}
	ctx, cancel := a.context()
	defer cancel()
	if err := a.recorder.Record(ctx, e); err != nil {
		a.logger.Warn("Failed to write journal entry", zap.Error(err))
	}
}

func entryFor(ev oplog.Event, loc region.Location, outcome, detail string) journal.Entry {
	e := journal.Entry{
		Kind:     string(ev.Kind),
		World:    loc.World,
		Region:   loc.ID,
		Position: fmt.Sprintf("%d.%d", ev.Position.T, ev.Position.I),
		Outcome:  outcome,
		Detail:   detail,
	}
	if !ev.ID.IsZero() {
		e.ObjectID = ev.ID.Hex()
	}
	return e
}
