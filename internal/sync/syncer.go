// Package sync keeps a client-side projection of one remote table consistent
// with server state. The policy is invalidate-and-reload: any change signal
// discards the projection and re-runs the scoped query. Nothing here patches
// rows incrementally.
package sync

import (
	"context"
	stdsync "sync"
	"sync/atomic"

	"go.uber.org/zap"

	"duet-cli/internal/remote"
)

// LoadFunc runs the scoped, filtered, ordered read for one table. Ordering
// and owner/partner filtering live in the remote service implementation.
type LoadFunc[T any] func(ctx context.Context) ([]T, error)

// Syncer owns the projection for one table. It is the only writer of that
// projection; mutations elsewhere in the app never touch it and rely on the
// change feed to show up here.
//
// Overlapping loads are resolved by sequence: each Load is stamped before the
// read is issued, and a completed read is applied only if no newer read has
// been applied already. A stale response that arrives late is dropped, so the
// last-issued load wins regardless of network reordering.
type Syncer[T any] struct {
	load LoadFunc[T]
	log  *zap.Logger

	seq atomic.Uint64

	mu      stdsync.Mutex
	applied uint64
	rows    []T
	loaded  bool
}

func New[T any](load LoadFunc[T], log *zap.Logger) *Syncer[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer[T]{load: load, log: log}
}

// Load issues a read and, if it is still the freshest, replaces the
// projection with the result. The returned slice is the current projection
// after the call (which may be an older one if this read lost the race or
// failed). Read failures are logged and otherwise swallowed: the view simply
// does not advance.
func (s *Syncer[T]) Load(ctx context.Context) []T {
	seq := s.seq.Add(1)

	rows, err := s.load(ctx)
	if err != nil {
		s.log.Warn("projection reload failed", zap.Uint64("seq", seq), zap.Error(err))
		return s.Projection()
	}

	s.mu.Lock()
	if seq > s.applied {
		s.applied = seq
		s.rows = rows
		s.loaded = true
	} else {
		s.log.Debug("stale reload discarded",
			zap.Uint64("seq", seq), zap.Uint64("applied", s.applied))
	}
	s.mu.Unlock()
	return s.Projection()
}

// Projection returns a copy of the current projection.
func (s *Syncer[T]) Projection() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.rows))
	copy(out, s.rows)
	return out
}

// Loaded reports whether at least one read has been applied.
func (s *Syncer[T]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Watch performs an initial load and then reloads on every change signal,
// invoking onUpdate with the fresh projection each time the projection
// advanced. It returns when ctx is cancelled or the change channel closes.
//
// The change feed is table-wide and carries no authorization predicate, so
// correctness comes from the reload re-running the scoped query, not from
// inspecting the signal.
func (s *Syncer[T]) Watch(ctx context.Context, changes <-chan remote.Change, onUpdate func([]T)) {
	onUpdate(s.Load(ctx))
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			onUpdate(s.Load(ctx))
		}
	}
}
