package leaderboard_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samfeldman824/putr/internal/leaderboard"
	"github.com/samfeldman824/putr/internal/models"
	"github.com/samfeldman824/putr/internal/testutil"
)

// deadCache is a cache backed by an unreachable Redis. The syncer treats
// every cache error as advisory, so tests can run against it without a
// server.
func deadCache() *leaderboard.Cache {
	client := redis.NewClient(&redis.Options{
		Addr:            "127.0.0.1:1",
		DialTimeout:     50 * time.Millisecond,
		MaxRetries:      -1,
		PoolTimeout:     50 * time.Millisecond,
		ReadTimeout:     50 * time.Millisecond,
		WriteTimeout:    50 * time.Millisecond,
		MinRetryBackoff: -1,
		MaxRetryBackoff: -1,
	})
	return leaderboard.NewCache(client, "test", 30*time.Second)
}

func TestSyncer_StartGoesLive(t *testing.T) {
	repo := testutil.NewMemoryPlayerRepository()
	repo.Seed(models.PlayerStats{Name: "alice", Net: 50})
	syncer := leaderboard.NewSyncer(repo, deadCache())
	defer syncer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, syncer.Start(ctx))

	snapshot, state := syncer.Snapshot()
	require.NotNil(t, snapshot)
	assert.Equal(t, leaderboard.StateLive, state)
	assert.True(t, snapshot.Live)
	assert.Contains(t, snapshot.Players, "alice")
}

func TestSyncer_StorePushReplacesSnapshot(t *testing.T) {
	repo := testutil.NewMemoryPlayerRepository()
	syncer := leaderboard.NewSyncer(repo, deadCache())
	defer syncer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, syncer.Start(ctx))

	require.NoError(t, repo.Set(ctx, "bob", models.PlayerStats{Name: "bob", Net: -10}))

	require.Eventually(t, func() bool {
		snapshot, _ := syncer.Snapshot()
		if snapshot == nil {
			return false
		}
		_, ok := snapshot.Players["bob"]
		return ok
	}, time.Second, 10*time.Millisecond, "push should replace the snapshot wholesale")
}

func TestSyncer_SubscriptionErrorDegrades(t *testing.T) {
	repo := testutil.NewMemoryPlayerRepository()
	repo.Seed(models.PlayerStats{Name: "alice", Net: 50})
	syncer := leaderboard.NewSyncer(repo, deadCache())
	defer syncer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, syncer.Start(ctx))

	repo.FailSubscriptions(fmt.Errorf("listener dropped"))

	require.Eventually(t, func() bool {
		_, state := syncer.Snapshot()
		return state == leaderboard.StateDegraded
	}, time.Second, 10*time.Millisecond)

	// The last snapshot is kept, just no longer live.
	snapshot, _ := syncer.Snapshot()
	require.NotNil(t, snapshot)
	assert.False(t, snapshot.Live)
	assert.Contains(t, snapshot.Players, "alice")
}

func TestSyncer_DegradeDoesNotMutateHandedOutSnapshot(t *testing.T) {
	repo := testutil.NewMemoryPlayerRepository()
	repo.Seed(models.PlayerStats{Name: "alice", Net: 50})
	syncer := leaderboard.NewSyncer(repo, deadCache())
	defer syncer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, syncer.Start(ctx))

	held, state := syncer.Snapshot()
	require.NotNil(t, held)
	require.Equal(t, leaderboard.StateLive, state)
	require.True(t, held.Live)

	// Readers keep using snapshots after Snapshot returns, so the degrade
	// transition must swap the pointer instead of writing through it.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			if snapshot, _ := syncer.Snapshot(); snapshot != nil {
				_ = snapshot.Live
				_ = len(snapshot.Players)
			}
		}
	}()

	repo.FailSubscriptions(fmt.Errorf("listener dropped"))

	require.Eventually(t, func() bool {
		_, state := syncer.Snapshot()
		return state == leaderboard.StateDegraded
	}, time.Second, 10*time.Millisecond)
	<-done

	assert.True(t, held.Live, "a snapshot handed out while live must stay as published")
	current, _ := syncer.Snapshot()
	require.NotNil(t, current)
	assert.False(t, current.Live)
	assert.Contains(t, current.Players, "alice")
}

func TestSyncer_ForceRefreshRereadsStore(t *testing.T) {
	repo := testutil.NewMemoryPlayerRepository()
	repo.Seed(models.PlayerStats{Name: "alice", Net: 50})
	syncer := leaderboard.NewSyncer(repo, deadCache())
	defer syncer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, syncer.Start(ctx))

	repo.Seed(models.PlayerStats{Name: "carol", Net: 5})
	require.NoError(t, syncer.ForceRefresh(ctx))

	snapshot, _ := syncer.Snapshot()
	require.NotNil(t, snapshot)
	assert.Contains(t, snapshot.Players, "carol")
}

func TestSyncer_StopIsIdempotent(t *testing.T) {
	repo := testutil.NewMemoryPlayerRepository()
	syncer := leaderboard.NewSyncer(repo, deadCache())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, syncer.Start(ctx))

	syncer.Stop()
	syncer.Stop()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "empty", leaderboard.StateEmpty.String())
	assert.Equal(t, "cached-stale", leaderboard.StateCachedStale.String())
	assert.Equal(t, "live", leaderboard.StateLive.String())
	assert.Equal(t, "degraded", leaderboard.StateDegraded.String())
}
