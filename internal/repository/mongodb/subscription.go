package mongodb

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/samfeldman824/putr/internal/logger"
	"github.com/samfeldman824/putr/internal/models"
	"github.com/samfeldman824/putr/internal/repository"
)

// changeStreamSubscription adapts a MongoDB change stream into the
// full-snapshot subscription the leaderboard consumes: any change to the
// collection triggers one full re-read, pushed as a complete snapshot.
type changeStreamSubscription struct {
	snapshots chan map[string]models.PlayerStats
	errs      chan error
	cancel    context.CancelFunc
	once      sync.Once
}

func (s *changeStreamSubscription) Snapshots() <-chan map[string]models.PlayerStats {
	return s.snapshots
}

func (s *changeStreamSubscription) Errs() <-chan error {
	return s.errs
}

// Cancel tears down the underlying change stream. Safe to call more than once.
func (s *changeStreamSubscription) Cancel() {
	s.once.Do(s.cancel)
}

func (r *playerRepository) Watch(ctx context.Context) (repository.Subscription, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := r.collection.Watch(streamCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		log.Error("failed to open change stream: %v", err)
		return nil, err
	}
	log.Info("change stream established")

	sub := &changeStreamSubscription{
		snapshots: make(chan map[string]models.PlayerStats, 1),
		errs:      make(chan error, 1),
		cancel:    cancel,
	}

	go func() {
		defer close(sub.snapshots)
		defer stream.Close(context.Background())

		for stream.Next(streamCtx) {
			players, err := r.List(streamCtx)
			if err != nil {
				sub.errs <- err
				return
			}
			select {
			case sub.snapshots <- players:
			case <-streamCtx.Done():
				return
			}
		}

		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			log.Error("change stream failed: %v", err)
			sub.errs <- err
		}
	}()

	return sub, nil
}
