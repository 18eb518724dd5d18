package oplog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TailerOptions configure a Tailer.
type TailerOptions struct {
	// Namespace is "<database>.<collection>" of the tailed collection.
	Namespace string
	// RetryDelay is the pause after a failed or empty poll.
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Tailer streams the oplog entries of one namespace to a Router, resuming
// from the last position it observed.
type Tailer struct {
	source Source
	router *Router
	opts   TailerOptions
	logger *zap.Logger

	mu          sync.RWMutex
	position    primitive.Timestamp
	initialized bool
	running     bool
}

// NewTailer creates a tailer.
func NewTailer(source Source, router *Router, opts TailerOptions) *Tailer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &Tailer{source: source, router: router, opts: opts, logger: logger}
}

// Position returns the last observed position.
func (t *Tailer) Position() primitive.Timestamp {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.position
}

// Running reports whether Run is polling.
func (t *Tailer) Running() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

// Run initializes the tailer and polls until ctx is cancelled, in which
// case it returns nil. It fails with ErrStreamUnavailable when no starting
// position can be read.
func (t *Tailer) Run(ctx context.Context) error {
	if err := t.Init(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return t.Poll(ctx)
}

// Init reads the position of the newest oplog entry and resumes from it.
func (t *Tailer) Init(ctx context.Context) error {
	start, err := t.source.Latest(ctx)
	if err != nil {
		t.logger.Error("Cannot read oplog position, replication disabled", zap.Error(err))
		if !errors.Is(err, ErrStreamUnavailable) {
			err = fmt.Errorf("%w: %v", ErrStreamUnavailable, err)
		}
		return err
	}

	t.mu.Lock()
	t.position = start
	t.initialized = true
	t.mu.Unlock()
	return nil
}

// Poll tails from the current position until ctx is cancelled. Init must
// have succeeded first.
func (t *Tailer) Poll(ctx context.Context) error {
	t.mu.Lock()
	if !t.initialized {
		t.mu.Unlock()
		return fmt.Errorf("%w: tailer has no starting position", ErrStreamUnavailable)
	}
	t.running = true
	start := t.position
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
	}()

	t.logger.Info("Tailing oplog",
		zap.String("namespace", t.opts.Namespace), zap.Uint32("ts", start.T), zap.Uint32("inc", start.I))

	for {
		delivered, err := t.poll(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			t.logger.Warn("Oplog poll failed, retrying", zap.Error(err), zap.Duration("delay", t.opts.RetryDelay))
		}
		if err != nil || delivered == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(t.opts.RetryDelay):
			}
		}
	}
}

// poll opens one cursor from the current position and drains it until the
// server closes it.
func (t *Tailer) poll(ctx context.Context) (int, error) {
	cursor, err := t.source.Tail(ctx, t.Position(), t.opts.Namespace)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(context.Background())

	delivered := 0
	for {
		if cursor.TryNext(ctx) {
			if t.deliver(cursor.Current()) {
				delivered++
			}
			continue
		}
		if err := cursor.Err(); err != nil {
			return delivered, err
		}
		if !cursor.Alive() || ctx.Err() != nil {
			return delivered, nil
		}
	}
}

// deliver hands an entry to the router unless it is older than the last
// observed position. Entries at the same position are all delivered.
func (t *Tailer) deliver(current bson.Raw) bool {
	entry := append(bson.Raw(nil), current...)

	if v, err := entry.LookupErr("ts"); err == nil {
		if sec, inc, ok := v.TimestampOK(); ok {
			pos := primitive.Timestamp{T: sec, I: inc}
			t.mu.Lock()
			cmp := ComparePositions(pos, t.position)
			if cmp > 0 {
				t.position = pos
			}
			t.mu.Unlock()
			if cmp < 0 {
				t.logger.Debug("Dropping stale oplog entry", zap.Uint32("ts", sec), zap.Uint32("inc", inc))
				return false
			}
		}
	}

	t.router.Emit(entry)
	return true
}
