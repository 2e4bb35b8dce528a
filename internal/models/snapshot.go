package models

import "time"

// LeaderboardSnapshot is the in-memory view of every player's stored stats,
// owned by a single client session. It is replaced wholesale on every store
// push and invalidated on upload or explicit refresh.
type LeaderboardSnapshot struct {
	Players   map[string]PlayerStats `json:"players"`
	FetchedAt time.Time              `json:"fetched_at"`
	Live      bool                   `json:"live"`
}

// Fresh reports whether the snapshot was fetched within the given window.
func (s *LeaderboardSnapshot) Fresh(window time.Duration, now time.Time) bool {
	if s == nil || s.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(s.FetchedAt) <= window
}
