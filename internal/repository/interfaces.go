package repository

import (
	"context"

	"github.com/samfeldman824/putr/internal/models"
)

// NicknameMatch ties a CSV alias to the canonical player it resolved to.
type NicknameMatch struct {
	Canonical string
	Record    models.PlayerStats
}

// MatchResult is the outcome of resolving a batch of CSV nicknames against
// the store. Unmatched aliases are reported, never silently created.
type MatchResult struct {
	Matched   map[string]NicknameMatch
	Unmatched []string
}

// KeyError records a per-key failure inside a batch write.
type KeyError struct {
	Key string
	Err error
}

// BatchResult reports a best-effort batch write: how many keys succeeded and
// which failed.
type BatchResult struct {
	SuccessCount int
	Errors       []KeyError
}

// Subscription is a cancellable stream of full-collection snapshots pushed by
// the store. Cancel is idempotent.
type Subscription interface {
	Snapshots() <-chan map[string]models.PlayerStats
	Errs() <-chan error
	Cancel()
}

// PlayerRepository handles player statistics persistence. Records are whole
// documents keyed by canonical player name; writes are last-write-wins
// overwrites of the full record. There is no cross-key transaction: callers
// needing atomicity must Backup before a batch and Restore on failure.
type PlayerRepository interface {
	// Get returns the player's record, or nil when the key is absent.
	Get(ctx context.Context, name string) (*models.PlayerStats, error)
	// GetMultiple returns the records for the given keys; absent keys are
	// simply missing from the result.
	GetMultiple(ctx context.Context, names []string) (map[string]models.PlayerStats, error)
	// Set overwrites the full record for a key, creating it if absent.
	Set(ctx context.Context, name string, record models.PlayerStats) error
	// FindByNicknames resolves CSV aliases: exact key match first, then the
	// nickname index.
	FindByNicknames(ctx context.Context, nicknames []string) (*MatchResult, error)
	// Backup snapshots the current records for the given keys.
	Backup(ctx context.Context, names []string) (map[string]models.PlayerStats, error)
	// Restore overwrites each key in the map back to its backed-up value.
	// Keys not present in the backup are left untouched.
	Restore(ctx context.Context, backup map[string]models.PlayerStats) error
	// BatchUpdate applies writes independently per key; one key's failure
	// does not block the others.
	BatchUpdate(ctx context.Context, records map[string]models.PlayerStats) (*BatchResult, error)
	// List reads the whole collection.
	List(ctx context.Context) (map[string]models.PlayerStats, error)
	// Watch subscribes to store changes, yielding a full snapshot per push.
	Watch(ctx context.Context) (Subscription, error)
}
