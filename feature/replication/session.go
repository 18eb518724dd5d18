package replication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"region-sync/core/oplog"
	"region-sync/core/region"
	"region-sync/core/regionstore"

	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned when Start is called on a running session.
var ErrAlreadyRunning = errors.New("replication session already running")

// Options configure a Session.
type Options struct {
	Config oplog.Config
	// Namespace is "<database>.<collection>" of the regions collection.
	Namespace string
	// LoadTimeout bounds each region load done while applying an update.
	LoadTimeout time.Duration
	// Recorder receives every handled event. It may be nil.
	Recorder Recorder
	Logger   *zap.Logger
}

// Status reports the state of a session.
type Status struct {
	Enabled       bool   `json:"enabled"`
	Running       bool   `json:"running"`
	Namespace     string `json:"namespace"`
	Position      string `json:"position"`
	PendingEchoes int    `json:"pending_echoes"`
	IndexedIDs    int    `json:"indexed_ids"`
	LastError     string `json:"last_error,omitempty"`
	Counters
}

// Session owns the state of one replication stream: the echo suppressor,
// the applier and the tailer goroutine.
type Session struct {
	opts    Options
	adapter *regionstore.Adapter
	echoes  *EchoSuppressor
	applier *Applier
	tailer  *oplog.Tailer
	logger  *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
}

// NewSession wires a session and installs its echo suppressor as the
// adapter's listener.
func NewSession(adapter *regionstore.Adapter, registry region.Registry, source oplog.Source, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("namespace", opts.Namespace))

	echoes := NewEchoSuppressor()
	adapter.SetListener(echoes)

	applier := NewApplier(adapter, registry, echoes, opts.Recorder, opts.LoadTimeout, logger)
	tailer := oplog.NewTailer(source, oplog.NewRouter(applier), oplog.TailerOptions{
		Namespace:  opts.Namespace,
		RetryDelay: opts.Config.RetryDelay,
		Logger:     logger,
	})

	return &Session{
		opts:    opts,
		adapter: adapter,
		echoes:  echoes,
		applier: applier,
		tailer:  tailer,
		logger:  logger,
	}
}

// Echoes returns the session's echo suppressor.
func (s *Session) Echoes() *EchoSuppressor {
	return s.echoes
}

// Start reads the starting oplog position and launches the tailer. It is a
// no-op when replication is disabled, and fails with
// oplog.ErrStreamUnavailable when no position can be read.
func (s *Session) Start(ctx context.Context) error {
	if !s.opts.Config.Enabled {
		s.logger.Info("Replication disabled by configuration")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return ErrAlreadyRunning
	}

	if err := s.tailer.Init(ctx); err != nil {
		s.lastErr = err
		return fmt.Errorf("failed to start replication: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		if err := s.tailer.Poll(runCtx); err != nil {
			s.logger.Error("Replication stopped", zap.Error(err))
			s.mu.Lock()
			s.lastErr = err
			s.mu.Unlock()
		}
	}()
	return nil
}

// Stop cancels the tailer and waits for it to exit or for ctx to expire.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		s.logger.Info("Replication stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("replication did not stop: %w", ctx.Err())
	}
}

// Status returns the current state of the session.
func (s *Session) Status() Status {
	pos := s.tailer.Position()
	st := Status{
		Enabled:       s.opts.Config.Enabled,
		Running:       s.tailer.Running(),
		Namespace:     s.opts.Namespace,
		Position:      fmt.Sprintf("%d.%d", pos.T, pos.I),
		PendingEchoes: s.echoes.Pending(),
		IndexedIDs:    s.adapter.IndexSize(),
		Counters:      s.applier.Counters(),
	}
	s.mu.Lock()
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	s.mu.Unlock()
	return st
}
