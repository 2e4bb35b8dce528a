package api

import (
	"net/http"

	"github.com/samfeldman824/putr/internal/leaderboard"
	"github.com/samfeldman824/putr/internal/logger"
)

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	snapshot, state := s.Board.Snapshot()
	if snapshot == nil {
		// Nothing cached and no live data yet: read through once.
		log.Debug("no snapshot held, forcing refresh")
		if err := s.Board.ForceRefresh(r.Context()); err != nil {
			handleError(w, r, err)
			return
		}
		snapshot, state = s.Board.Snapshot()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rows":       leaderboard.Rows(snapshot),
		"state":      state.String(),
		"fetched_at": snapshot.FetchedAt,
		"live":       snapshot.Live,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Info("explicit leaderboard refresh")

	if err := s.Board.ForceRefresh(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}

	snapshot, state := s.Board.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":       leaderboard.Rows(snapshot),
		"state":      state.String(),
		"fetched_at": snapshot.FetchedAt,
		"live":       snapshot.Live,
	})
}
