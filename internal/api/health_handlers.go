package api

import (
	"net/http"

	"github.com/samfeldman824/putr/internal/leaderboard"
	"github.com/samfeldman824/putr/internal/logger"
)

// handleHealth returns a liveness probe - always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleReady returns a readiness probe: 200 once a leaderboard snapshot is
// held, 503 while the syncer has nothing to serve.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	snapshot, state := s.Board.Snapshot()
	if snapshot == nil || state == leaderboard.StateEmpty {
		log.Warn("readiness check failed - no leaderboard snapshot")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("No snapshot"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
