package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samfeldman824/putr/internal/logger"
	"github.com/samfeldman824/putr/internal/models"
)

// Cache persists the session-local leaderboard snapshot in Redis: the
// serialized player map, a millisecond timestamp, and a flag recording
// whether a live subscription was active when it was written. A cached
// snapshot is only trusted within the freshness window.
type Cache struct {
	client *redis.Client
	prefix string
	window time.Duration
}

const (
	snapshotKey  = "%s:leaderboard:snapshot"
	updatedAtKey = "%s:leaderboard:updated_at"
	listenerKey  = "%s:leaderboard:listener_active"
)

// NewCache creates a snapshot cache. The namespace keeps development and
// production snapshots apart, mirroring the player collections.
func NewCache(client *redis.Client, namespace string, window time.Duration) *Cache {
	return &Cache{client: client, prefix: namespace, window: window}
}

// ConnectRedis establishes and pings a Redis connection.
func ConnectRedis(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Window returns the freshness window.
func (c *Cache) Window() time.Duration {
	return c.window
}

// Store persists a snapshot and its metadata.
func (c *Cache) Store(ctx context.Context, snapshot *models.LeaderboardSnapshot) error {
	log := logger.FromContext(ctx).WithPrefix("board_cache")

	payload, err := json.Marshal(snapshot.Players)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, fmt.Sprintf(snapshotKey, c.prefix), payload, 0)
	pipe.Set(ctx, fmt.Sprintf(updatedAtKey, c.prefix), snapshot.FetchedAt.UnixMilli(), 0)
	pipe.Set(ctx, fmt.Sprintf(listenerKey, c.prefix), strconv.FormatBool(snapshot.Live), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error("failed to persist snapshot: %v", err)
		return err
	}

	log.Debug("persisted snapshot with %d players", len(snapshot.Players))
	return nil
}

// Load reads the cached snapshot. Returns nil when no snapshot is cached.
// Staleness is the caller's call, via Fresh on the returned snapshot.
func (c *Cache) Load(ctx context.Context) (*models.LeaderboardSnapshot, error) {
	log := logger.FromContext(ctx).WithPrefix("board_cache")

	payload, err := c.client.Get(ctx, fmt.Sprintf(snapshotKey, c.prefix)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snapshot := &models.LeaderboardSnapshot{}
	if err := json.Unmarshal([]byte(payload), &snapshot.Players); err != nil {
		log.Warn("discarding undecodable cached snapshot: %v", err)
		return nil, nil
	}

	if ms, err := c.client.Get(ctx, fmt.Sprintf(updatedAtKey, c.prefix)).Int64(); err == nil {
		snapshot.FetchedAt = time.UnixMilli(ms)
	}
	if live, err := c.client.Get(ctx, fmt.Sprintf(listenerKey, c.prefix)).Result(); err == nil {
		snapshot.Live, _ = strconv.ParseBool(live)
	}

	log.Debug("loaded cached snapshot with %d players", len(snapshot.Players))
	return snapshot, nil
}

// MarkListener records whether a live subscription is currently feeding the
// cache, without touching the snapshot payload.
func (c *Cache) MarkListener(ctx context.Context, active bool) error {
	return c.client.Set(ctx, fmt.Sprintf(listenerKey, c.prefix), strconv.FormatBool(active), 0).Err()
}

// Invalidate discards the cached snapshot and its metadata.
func (c *Cache) Invalidate(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("board_cache")
	log.Debug("invalidating cached snapshot")

	return c.client.Del(ctx,
		fmt.Sprintf(snapshotKey, c.prefix),
		fmt.Sprintf(updatedAtKey, c.prefix),
		fmt.Sprintf(listenerKey, c.prefix),
	).Err()
}
