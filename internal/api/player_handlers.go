package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/samfeldman824/putr/internal/errors"
	"github.com/samfeldman824/putr/internal/logger"
)

// playerName resolves the player identifier from the URL. The profile page
// addresses players by name in the path; a `player` query parameter is also
// honored for old bookmarked links.
func playerName(r *http.Request) string {
	if name := chi.URLParam(r, "name"); name != "" {
		return name
	}
	return r.URL.Query().Get("player")
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	name := playerName(r)
	if name == "" {
		handleError(w, r, errors.NewBadRequestError("player name required"))
		return
	}
	log.Debug("fetching player profile: name=%s", name)

	record, err := s.PlayerService.GetPlayer(r.Context(), name)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handlePlayerHistory(w http.ResponseWriter, r *http.Request) {
	name := playerName(r)
	if name == "" {
		handleError(w, r, errors.NewBadRequestError("player name required"))
		return
	}

	points, err := s.PlayerService.NetHistory(r.Context(), name)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":    name,
		"history": points,
	})
}

func (s *Server) handlePlayerRecent(w http.ResponseWriter, r *http.Request) {
	name := playerName(r)
	if name == "" {
		handleError(w, r, errors.NewBadRequestError("player name required"))
		return
	}

	count := 5
	if v, err := strconv.Atoi(r.URL.Query().Get("games")); err == nil && v > 0 {
		count = v
	}

	summary, err := s.PlayerService.RecentGames(r.Context(), name, count)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
