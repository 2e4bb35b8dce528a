package leaderboard

import (
	"context"
	"sync"
	"time"

	"github.com/samfeldman824/putr/internal/logger"
	"github.com/samfeldman824/putr/internal/models"
	"github.com/samfeldman824/putr/internal/repository"
)

// State describes where the syncer's snapshot came from.
type State int

const (
	// StateEmpty means no snapshot is held at all.
	StateEmpty State = iota
	// StateCachedStale means the snapshot came from the session cache and no
	// live subscription backs it.
	StateCachedStale
	// StateLive means a store subscription is feeding the snapshot.
	StateLive
	// StateDegraded means the subscription failed; the last snapshot is kept
	// but no longer updated. Recovery is manual via ForceRefresh.
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateCachedStale:
		return "cached-stale"
	case StateLive:
		return "live"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Syncer owns the in-memory leaderboard snapshot. It loads the session cache
// at startup, subscribes to the store for pushes that replace the snapshot
// wholesale, and exposes an explicit force-refresh for after uploads. There
// are no ambient globals: all state lives here and every operation takes a
// context.
type Syncer struct {
	repo  repository.PlayerRepository
	cache *Cache
	log   *logger.Logger

	mu       sync.RWMutex
	snapshot *models.LeaderboardSnapshot
	state    State
	sub      repository.Subscription
}

// NewSyncer creates a Syncer over the given store and session cache.
func NewSyncer(repo repository.PlayerRepository, cache *Cache) *Syncer {
	return &Syncer{
		repo:  repo,
		cache: cache,
		log:   logger.Default().WithPrefix("board_sync"),
	}
}

// Start loads the cached snapshot if one is fresh enough, performs the
// initial full read, and establishes the store subscription. A subscription
// failure leaves the syncer degraded rather than failing startup.
func (s *Syncer) Start(ctx context.Context) error {
	if cached, err := s.cache.Load(ctx); err != nil {
		s.log.Warn("session cache unavailable: %v", err)
	} else if cached != nil && cached.Fresh(s.cache.Window(), time.Now()) {
		s.log.Info("loaded fresh snapshot from session cache (%d players)", len(cached.Players))
		cached.Live = false
		s.setSnapshot(cached, StateCachedStale)
	} else if cached != nil {
		s.log.Debug("cached snapshot is stale, ignoring")
	}

	players, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("initial leaderboard read failed: %v", err)
		if s.currentState() == StateEmpty {
			return err
		}
	} else {
		s.replace(ctx, players, false)
	}

	sub, err := s.repo.Watch(ctx)
	if err != nil {
		s.log.Error("store subscription failed, staying degraded: %v", err)
		s.degrade(ctx)
		return nil
	}

	s.mu.Lock()
	s.sub = sub
	if s.snapshot != nil {
		// Handed-out snapshots are immutable; swap in a copy with the new
		// liveness rather than writing through the shared pointer.
		live := *s.snapshot
		live.Live = true
		s.snapshot = &live
		s.state = StateLive
	}
	s.mu.Unlock()
	if err := s.cache.MarkListener(ctx, true); err != nil {
		s.log.Warn("failed to mark listener active: %v", err)
	}

	go s.consume(ctx, sub)
	return nil
}

// consume replaces the snapshot on every store push until the subscription
// errors or the context ends. A subscription error degrades the syncer; it
// does not retry.
func (s *Syncer) consume(ctx context.Context, sub repository.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sub.Errs():
			s.log.Error("subscription error, keeping last snapshot: %v", err)
			s.degrade(ctx)
			return
		case players, ok := <-sub.Snapshots():
			if !ok {
				s.degrade(ctx)
				return
			}
			s.replace(ctx, players, true)
		}
	}
}

// Stop cancels the subscription. Idempotent.
func (s *Syncer) Stop() {
	s.mu.Lock()
	sub := s.sub
	s.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

// Snapshot returns the current snapshot (nil when empty) and the sync state.
func (s *Syncer) Snapshot() (*models.LeaderboardSnapshot, State) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.state
}

// ForceRefresh discards the cache and the in-memory snapshot, re-reads the
// full collection once, and re-persists. Used after uploads and for the
// explicit refresh control.
func (s *Syncer) ForceRefresh(ctx context.Context) error {
	s.log.Info("force refresh requested")

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("cache invalidation failed: %v", err)
	}
	s.mu.Lock()
	s.snapshot = nil
	s.state = StateEmpty
	s.mu.Unlock()

	players, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("refresh read failed: %v", err)
		return err
	}

	s.mu.RLock()
	live := s.sub != nil && s.state != StateDegraded
	s.mu.RUnlock()
	s.replace(ctx, players, live)
	return nil
}

func (s *Syncer) replace(ctx context.Context, players map[string]models.PlayerStats, live bool) {
	snapshot := &models.LeaderboardSnapshot{
		Players:   players,
		FetchedAt: time.Now(),
		Live:      live,
	}
	state := StateCachedStale
	if live {
		state = StateLive
	}
	s.setSnapshot(snapshot, state)

	if err := s.cache.Store(ctx, snapshot); err != nil {
		s.log.Warn("failed to persist snapshot to session cache: %v", err)
	}
}

func (s *Syncer) setSnapshot(snapshot *models.LeaderboardSnapshot, state State) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.state = state
	s.mu.Unlock()
}

func (s *Syncer) degrade(ctx context.Context) {
	s.mu.Lock()
	if s.snapshot != nil {
		stale := *s.snapshot
		stale.Live = false
		s.snapshot = &stale
		s.state = StateDegraded
	} else {
		s.state = StateEmpty
	}
	s.mu.Unlock()

	if err := s.cache.MarkListener(ctx, false); err != nil && ctx.Err() == nil {
		s.log.Warn("failed to mark listener inactive: %v", err)
	}
}

func (s *Syncer) currentState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
