package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/samfeldman824/putr/internal/leaderboard"
	"github.com/samfeldman824/putr/internal/services"
	"github.com/samfeldman824/putr/internal/worker"
)

type Server struct {
	PlayerService  services.PlayerService
	UploadService  services.UploadService
	Board          *leaderboard.Syncer
	RefreshPool    *worker.Pool
	UploadMaxBytes int64
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Post("/leaderboard/refresh", s.handleRefresh)
		r.Post("/upload", s.handleUpload)
		r.Get("/players/{name}", s.handlePlayer)
		r.Get("/players/{name}/history", s.handlePlayerHistory)
		r.Get("/players/{name}/recent", s.handlePlayerRecent)
	})

	return r
}
