package api

import (
	"net/http"
	"strconv"

	"github.com/samfeldman824/putr/internal/errors"
	"github.com/samfeldman824/putr/internal/logger"
	"github.com/samfeldman824/putr/internal/services"
	"github.com/samfeldman824/putr/internal/worker"
)

// handleUpload ingests one ledger CSV. Multipart form fields:
//
//	file     - the CSV (required)
//	date     - game date key, e.g. "24_12_18" (required)
//	location - where the game was played (optional)
//	dry_run  - parse and preview only
//	atomic   - roll every record back if any player's write fails
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.UploadMaxBytes)
	if err := r.ParseMultipartForm(s.UploadMaxBytes); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("missing CSV file"))
		return
	}
	defer file.Close()

	opts := services.UploadOptions{
		Date:     r.FormValue("date"),
		Location: r.FormValue("location"),
		DryRun:   parseBoolField(r.FormValue("dry_run")),
		Atomic:   parseBoolField(r.FormValue("atomic")),
	}
	log.Info("processing ledger upload: file=%s date=%s dry_run=%t", header.Filename, opts.Date, opts.DryRun)

	report, err := s.UploadService.ProcessLedger(r.Context(), file, opts)
	if err != nil {
		handleError(w, r, err)
		return
	}

	// The snapshot rebuild runs behind so the caller gets its counts now. A
	// full queue just drops this refresh; one is already pending.
	if !report.DryRun && report.SuccessCount > 0 {
		if s.RefreshPool.Submit(&worker.RefreshLeaderboardJob{Board: s.Board}) {
			log.Debug("queued leaderboard refresh (%d pending)", s.RefreshPool.QueueSize())
		}
	}

	status := http.StatusOK
	if report.FailureCount > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, report)
}

func parseBoolField(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
