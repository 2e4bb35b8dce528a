package services

import (
	"context"
	"sort"

	"github.com/samfeldman824/putr/internal/errors"
	"github.com/samfeldman824/putr/internal/logger"
	"github.com/samfeldman824/putr/internal/models"
	"github.com/samfeldman824/putr/internal/repository"
)

// HistoryPoint is one chart point: cumulative net at an upload date.
type HistoryPoint struct {
	Date string  `json:"date"`
	Net  float64 `json:"net"`
}

// RecentGame is one line of the recent-games summary: the game's own net
// plus the cumulative net after it.
type RecentGame struct {
	Date     string  `json:"date"`
	Location string  `json:"location"`
	Net      float64 `json:"net"`
	Running  float64 `json:"running"`
}

// RecentSummary covers a player's last few games.
type RecentSummary struct {
	Name    string       `json:"name"`
	Games   []RecentGame `json:"games"`
	Net     float64      `json:"net"`
	Average float64      `json:"average"`
}

// PlayerService handles profile lookups.
type PlayerService interface {
	GetPlayer(ctx context.Context, name string) (*models.PlayerStats, error)
	NetHistory(ctx context.Context, name string) ([]HistoryPoint, error)
	RecentGames(ctx context.Context, name string, count int) (*RecentSummary, error)
}

type playerService struct {
	repo repository.PlayerRepository
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(repo repository.PlayerRepository) PlayerService {
	return &playerService{repo: repo}
}

func (s *playerService) GetPlayer(ctx context.Context, name string) (*models.PlayerStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting player profile: name=%s", name)

	record, err := s.repo.Get(ctx, name)
	if err != nil {
		log.Error("failed to get player %s: %v", name, err)
		return nil, errors.NewStoreError(err)
	}
	if record == nil {
		return nil, errors.NewNotFoundError("player", name)
	}
	return record, nil
}

// NetHistory returns the player's cumulative-net-by-date series in date-key
// order, ready for the profile chart.
func (s *playerService) NetHistory(ctx context.Context, name string) ([]HistoryPoint, error) {
	record, err := s.GetPlayer(ctx, name)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(record.NetHistory))
	for date := range record.NetHistory {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	points := make([]HistoryPoint, 0, len(dates))
	for _, date := range dates {
		points = append(points, HistoryPoint{Date: date, Net: record.NetHistory[date]})
	}
	return points, nil
}

// RecentGames summarizes the player's last count games, newest first.
func (s *playerService) RecentGames(ctx context.Context, name string, count int) (*RecentSummary, error) {
	record, err := s.GetPlayer(ctx, name)
	if err != nil {
		return nil, err
	}

	games := record.GamesPlayed
	if count > 0 && len(games) > count {
		games = games[len(games)-count:]
	}

	summary := &RecentSummary{Name: record.Name}

	running := record.Net
	// Walk backwards so the running totals line up with the stored net.
	for i := len(games) - 1; i >= 0; i-- {
		g := games[i]
		summary.Games = append(summary.Games, RecentGame{
			Date:     g.Date,
			Location: g.Location,
			Net:      g.Net,
			Running:  running,
		})
		running -= g.Net
		summary.Net += g.Net
	}
	if len(summary.Games) > 0 {
		summary.Average = summary.Net / float64(len(summary.Games))
	}
	return summary, nil
}
