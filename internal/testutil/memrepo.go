package testutil

import (
	"context"
	"sync"

	"github.com/samfeldman824/putr/internal/models"
	"github.com/samfeldman824/putr/internal/repository"
)

// MemoryPlayerRepository is an in-memory PlayerRepository for tests. FailKeys
// injects per-key write failures so best-effort batch and backup/restore
// behavior can be exercised without a real store.
type MemoryPlayerRepository struct {
	mu       sync.Mutex
	records  map[string]models.PlayerStats
	FailKeys map[string]error

	subs []*memorySubscription
}

func NewMemoryPlayerRepository() *MemoryPlayerRepository {
	return &MemoryPlayerRepository{
		records:  make(map[string]models.PlayerStats),
		FailKeys: make(map[string]error),
	}
}

// Seed inserts a record directly, bypassing failure injection.
func (r *MemoryPlayerRepository) Seed(record models.PlayerStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.Name] = copyRecord(record)
}

// Len returns how many records are stored.
func (r *MemoryPlayerRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *MemoryPlayerRepository) Get(ctx context.Context, name string) (*models.PlayerStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[name]
	if !ok {
		return nil, nil
	}
	c := copyRecord(record)
	return &c, nil
}

func (r *MemoryPlayerRepository) GetMultiple(ctx context.Context, names []string) (map[string]models.PlayerStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[string]models.PlayerStats, len(names))
	for _, name := range names {
		if record, ok := r.records[name]; ok {
			result[name] = copyRecord(record)
		}
	}
	return result, nil
}

func (r *MemoryPlayerRepository) Set(ctx context.Context, name string, record models.PlayerStats) error {
	r.mu.Lock()
	if err, ok := r.FailKeys[name]; ok {
		r.mu.Unlock()
		return err
	}
	record.Name = name
	r.records[name] = copyRecord(record)
	r.mu.Unlock()

	r.broadcast(ctx)
	return nil
}

func (r *MemoryPlayerRepository) FindByNicknames(ctx context.Context, nicknames []string) (*repository.MatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := &repository.MatchResult{
		Matched: make(map[string]repository.NicknameMatch),
	}
	for _, alias := range nicknames {
		if record, ok := r.records[alias]; ok {
			result.Matched[alias] = repository.NicknameMatch{Canonical: alias, Record: copyRecord(record)}
			continue
		}
		found := false
		for _, record := range r.records {
			for _, nick := range record.PlayerNicknames {
				if nick == alias {
					result.Matched[alias] = repository.NicknameMatch{Canonical: record.Name, Record: copyRecord(record)}
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			result.Unmatched = append(result.Unmatched, alias)
		}
	}
	return result, nil
}

func (r *MemoryPlayerRepository) Backup(ctx context.Context, names []string) (map[string]models.PlayerStats, error) {
	return r.GetMultiple(ctx, names)
}

func (r *MemoryPlayerRepository) Restore(ctx context.Context, backup map[string]models.PlayerStats) error {
	for name, record := range backup {
		if err := r.Set(ctx, name, record); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemoryPlayerRepository) BatchUpdate(ctx context.Context, records map[string]models.PlayerStats) (*repository.BatchResult, error) {
	result := &repository.BatchResult{}
	for name, record := range records {
		if err := r.Set(ctx, name, record); err != nil {
			result.Errors = append(result.Errors, repository.KeyError{Key: name, Err: err})
			continue
		}
		result.SuccessCount++
	}
	return result, nil
}

func (r *MemoryPlayerRepository) List(ctx context.Context) (map[string]models.PlayerStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[string]models.PlayerStats, len(r.records))
	for name, record := range r.records {
		result[name] = copyRecord(record)
	}
	return result, nil
}

func (r *MemoryPlayerRepository) Watch(ctx context.Context) (repository.Subscription, error) {
	sub := &memorySubscription{
		snapshots: make(chan map[string]models.PlayerStats, 8),
		errs:      make(chan error, 1),
	}
	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()
	return sub, nil
}

// FailSubscriptions pushes an error to every open subscription, simulating a
// dropped listener.
func (r *MemoryPlayerRepository) FailSubscriptions(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		select {
		case sub.errs <- err:
		default:
		}
	}
}

func (r *MemoryPlayerRepository) broadcast(ctx context.Context) {
	players, _ := r.List(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		sub.push(players)
	}
}

type memorySubscription struct {
	mu        sync.Mutex
	snapshots chan map[string]models.PlayerStats
	errs      chan error
	cancelled bool
}

// push delivers a snapshot unless the subscription was cancelled. The
// cancelled check and the send share the subscription lock so Cancel can
// never close the channel between them.
func (s *memorySubscription) push(players map[string]models.PlayerStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	select {
	case s.snapshots <- players:
	default:
	}
}

func (s *memorySubscription) Snapshots() <-chan map[string]models.PlayerStats {
	return s.snapshots
}

func (s *memorySubscription) Errs() <-chan error {
	return s.errs
}

func (s *memorySubscription) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	s.cancelled = true
	close(s.snapshots)
}

func copyRecord(p models.PlayerStats) models.PlayerStats {
	c := p
	c.GamesPlayed = append([]models.Game(nil), p.GamesPlayed...)
	c.PlayerNicknames = append([]string(nil), p.PlayerNicknames...)
	if p.NetHistory != nil {
		c.NetHistory = make(map[string]float64, len(p.NetHistory))
		for k, v := range p.NetHistory {
			c.NetHistory[k] = v
		}
	}
	if p.PUTR != nil {
		v := *p.PUTR
		c.PUTR = &v
	}
	return c
}
