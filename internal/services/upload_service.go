package services

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/samfeldman824/putr/internal/errors"
	"github.com/samfeldman824/putr/internal/ledger"
	"github.com/samfeldman824/putr/internal/logger"
	"github.com/samfeldman824/putr/internal/models"
	"github.com/samfeldman824/putr/internal/repository"
	"github.com/samfeldman824/putr/internal/stats"
)

// UploadOptions carries the per-upload facts and submission mode.
type UploadOptions struct {
	Date     string
	Location string
	// DryRun parses and previews without touching the store.
	DryRun bool
	// Atomic restores every backed-up record when any per-player write
	// fails, instead of leaving a partial batch behind.
	Atomic bool
}

// UploadReport is what the user sees after a submission: row accounting,
// per-player success/failure counts, and any per-key errors.
type UploadReport struct {
	BatchID      string   `json:"batch_id"`
	Date         string   `json:"date"`
	Location     string   `json:"location"`
	Sessions     int      `json:"sessions"`
	SkippedRows  int      `json:"skipped_rows"`
	Players      []string `json:"players"`
	Created      []string `json:"created"`
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Errors       []string `json:"errors,omitempty"`
	Restored     bool     `json:"restored"`
	DryRun       bool     `json:"dry_run"`
}

// UploadService handles CSV ledger ingestion.
type UploadService interface {
	ProcessLedger(ctx context.Context, csv io.Reader, opts UploadOptions) (*UploadReport, error)
}

type uploadService struct {
	repo repository.PlayerRepository
}

// NewUploadService creates a new UploadService.
func NewUploadService(repo repository.PlayerRepository) UploadService {
	return &uploadService{repo: repo}
}

// ProcessLedger runs the whole ingestion pipeline: parse, group by nickname,
// resolve nicknames against the store, fold each player's sessions into their
// stored record, and batch-write the results. Nicknames never seen before
// start from a zero-valued record. Writes are best-effort per key; with
// Atomic set, any failure rolls every affected record back to its pre-upload
// backup.
func (s *uploadService) ProcessLedger(ctx context.Context, csv io.Reader, opts UploadOptions) (*UploadReport, error) {
	log := logger.FromContext(ctx)

	if opts.Date == "" {
		return nil, errors.NewValidationError("date", "cannot be empty")
	}

	parsed, err := ledger.Parse(csv)
	if err != nil {
		return nil, err
	}
	if len(parsed.Sessions) == 0 {
		return nil, errors.NewBadRequestError("CSV contains no usable session rows")
	}

	groups := ledger.Group(parsed.Sessions)
	totals := groups.NetTotals()
	upMost, downMost := ledger.ExtremeNicknames(totals)

	report := &UploadReport{
		BatchID:     uuid.NewString(),
		Date:        opts.Date,
		Location:    opts.Location,
		Sessions:    len(parsed.Sessions),
		SkippedRows: parsed.SkippedRows,
		DryRun:      opts.DryRun,
	}

	log = log.WithFields(map[string]any{
		"batch_id": report.BatchID,
		"date":     opts.Date,
		"players":  len(groups.Order),
	})

	if opts.DryRun {
		report.Players = groups.Order
		log.Info("dry run: parsed %d sessions for %d players", report.Sessions, len(groups.Order))
		return report, nil
	}

	match, err := s.repo.FindByNicknames(ctx, groups.Order)
	if err != nil {
		return nil, errors.NewStoreError(err)
	}

	updates := make(map[string]models.PlayerStats, len(groups.Order))
	var backupKeys []string
	for _, alias := range groups.Order {
		var (
			key string
			old models.PlayerStats
		)
		if m, ok := match.Matched[alias]; ok {
			key = m.Canonical
			old = m.Record
			backupKeys = append(backupKeys, key)
		} else {
			// First upload for this nickname: start from zero-valued defaults.
			key = alias
			old = stats.NewPlayerStats(alias, []string{alias})
			report.Created = append(report.Created, alias)
		}

		updates[key] = stats.ApplyGame(old, groups.ByNickname[alias], stats.GameContext{
			Date:     opts.Date,
			Location: opts.Location,
			UpMost:   contains(upMost, alias),
			DownMost: contains(downMost, alias),
		})
		report.Players = append(report.Players, key)
	}

	backup, err := s.repo.Backup(ctx, backupKeys)
	if err != nil {
		return nil, errors.NewStoreError(err)
	}

	batch, err := s.repo.BatchUpdate(ctx, updates)
	if err != nil {
		return nil, errors.NewStoreError(err)
	}

	report.SuccessCount = batch.SuccessCount
	report.FailureCount = len(batch.Errors)
	for _, keyErr := range batch.Errors {
		log.Error("failed to update player %s: %v", keyErr.Key, keyErr.Err)
		report.Errors = append(report.Errors, keyErr.Key+": "+keyErr.Err.Error())
	}

	if opts.Atomic && report.FailureCount > 0 {
		log.Warn("atomic upload had %d failures, restoring backup", report.FailureCount)
		if err := s.repo.Restore(ctx, backup); err != nil {
			log.Error("restore failed: %v", err)
			report.Errors = append(report.Errors, "restore: "+err.Error())
		} else {
			report.Restored = true
		}
		return report, nil
	}

	log.Info("upload complete: %d updated, %d failed, %d created",
		report.SuccessCount, report.FailureCount, len(report.Created))
	return report, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
