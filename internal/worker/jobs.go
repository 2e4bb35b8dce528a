package worker

import (
	"context"
)

// Refresher is the slice of the leaderboard syncer that jobs need.
type Refresher interface {
	ForceRefresh(ctx context.Context) error
}

// RefreshLeaderboardJob rebuilds the leaderboard snapshot after an upload has
// changed player records.
type RefreshLeaderboardJob struct {
	Board Refresher
}

func (j *RefreshLeaderboardJob) Name() string {
	return "refresh-leaderboard"
}

func (j *RefreshLeaderboardJob) Run(ctx context.Context) error {
	return j.Board.ForceRefresh(ctx)
}
