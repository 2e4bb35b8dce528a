package leaderboard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samfeldman824/putr/internal/leaderboard"
	"github.com/samfeldman824/putr/internal/models"
)

func rating(v float64) *float64 { return &v }

func snapshotOf(players ...models.PlayerStats) *models.LeaderboardSnapshot {
	m := make(map[string]models.PlayerStats, len(players))
	for _, p := range players {
		m[p.Name] = p
	}
	return &models.LeaderboardSnapshot{Players: m, FetchedAt: time.Now()}
}

func TestRows_DescendingByRating(t *testing.T) {
	rows := leaderboard.Rows(snapshotOf(
		models.PlayerStats{Name: "alice", PUTR: rating(1200)},
		models.PlayerStats{Name: "bob", PUTR: rating(3400)},
		models.PlayerStats{Name: "carol", PUTR: rating(800)},
	))

	require.Len(t, rows, 3)
	assert.Equal(t, "bob", rows[0].Name)
	assert.Equal(t, "alice", rows[1].Name)
	assert.Equal(t, "carol", rows[2].Name)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Rank)
	}
}

func TestRows_UnratedSortBelowRated(t *testing.T) {
	rows := leaderboard.Rows(snapshotOf(
		models.PlayerStats{Name: "newbie", Net: 500},
		models.PlayerStats{Name: "alice", PUTR: rating(100), Net: -20},
	))

	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].Name)
	assert.Equal(t, "newbie", rows[1].Name)
	assert.Equal(t, leaderboard.UnratedDisplay, rows[1].PUTR)
	assert.Nil(t, rows[1].Rating)
}

func TestRows_RatingFormatting(t *testing.T) {
	rows := leaderboard.Rows(snapshotOf(
		models.PlayerStats{Name: "alice", PUTR: rating(1234.5)},
	))

	require.Len(t, rows, 1)
	assert.Equal(t, "1234.50", rows[0].PUTR)
}

func TestRows_TiesBreakOnNetThenName(t *testing.T) {
	rows := leaderboard.Rows(snapshotOf(
		models.PlayerStats{Name: "bob", PUTR: rating(1000), Net: 10},
		models.PlayerStats{Name: "alice", PUTR: rating(1000), Net: 50},
		models.PlayerStats{Name: "dave", PUTR: rating(1000), Net: 10},
	))

	require.Len(t, rows, 3)
	assert.Equal(t, "alice", rows[0].Name)
	assert.Equal(t, "bob", rows[1].Name)
	assert.Equal(t, "dave", rows[2].Name)
}

func TestRows_NilSnapshot(t *testing.T) {
	assert.Nil(t, leaderboard.Rows(nil))
}

func TestSnapshotFresh(t *testing.T) {
	now := time.Now()

	fresh := &models.LeaderboardSnapshot{FetchedAt: now.Add(-10 * time.Second)}
	stale := &models.LeaderboardSnapshot{FetchedAt: now.Add(-45 * time.Second)}

	assert.True(t, fresh.Fresh(30*time.Second, now))
	assert.False(t, stale.Fresh(30*time.Second, now))

	var nilSnap *models.LeaderboardSnapshot
	assert.False(t, nilSnap.Fresh(30*time.Second, now))
	assert.False(t, (&models.LeaderboardSnapshot{}).Fresh(30*time.Second, now))
}
