package stats

import (
	"math"

	"github.com/samfeldman824/putr/internal/ledger"
	"github.com/samfeldman824/putr/internal/models"
)

const (
	// MinGamesForRating is how many games a player needs before a PUTR is
	// computed; below this the player shows as unrated ("UR").
	MinGamesForRating = 5

	// RatingWindow bounds the rating to the most recent games.
	RatingWindow = 10

	// RatingScaleFactor converts the windowed mean net into the displayed
	// rating scale.
	RatingScaleFactor = 100

	// initialHistoryKey seeds the net history so the profile chart always has
	// an origin point.
	initialHistoryKey = "01_01"
)

// GameContext carries the per-upload facts the aggregator cannot derive from
// the sessions alone.
type GameContext struct {
	Date     string
	Location string
	// UpMost and DownMost mark whether this player had the best or worst net
	// of the whole game.
	UpMost   bool
	DownMost bool
}

// NewPlayerStats returns the zero-valued record created the first time a
// nickname shows up in an upload.
func NewPlayerStats(name string, nicknames []string) models.PlayerStats {
	return models.PlayerStats{
		Name:            name,
		PlayerNicknames: nicknames,
		NetHistory:      map[string]float64{initialHistoryKey: 0},
	}
}

// ApplyGame folds one game's sessions into a player's stored statistics and
// returns the updated record. It is a pure function: the input record is not
// mutated, and the same inputs always produce the same output.
func ApplyGame(old models.PlayerStats, sessions []models.Session, gc GameContext) models.PlayerStats {
	var netCents, buyInCents int64
	for _, s := range sessions {
		netCents += s.NetCents
		buyInCents += s.BuyInCents
	}
	gameNet := float64(netCents) / ledger.CentsToDollars
	gameBuyIn := float64(buyInCents) / ledger.CentsToDollars

	updated := clone(old)
	updated.Net = old.Net + gameNet

	updated.GamesPlayed = append(updated.GamesPlayed, models.Game{
		Date:         gc.Date,
		Location:     gc.Location,
		BuyIn:        gameBuyIn,
		CashOut:      gameBuyIn + gameNet,
		Net:          gameNet,
		SessionCount: len(sessions),
	})

	// Same-date uploads overwrite the history point; there is no merge.
	if updated.NetHistory == nil {
		updated.NetHistory = make(map[string]float64)
	}
	updated.NetHistory[gc.Date] = updated.Net

	updated.BiggestWin = math.Max(old.BiggestWin, gameNet)
	updated.BiggestLoss = math.Min(old.BiggestLoss, gameNet)
	updated.HighestNet = math.Max(old.HighestNet, updated.Net)
	updated.LowestNet = math.Min(old.LowestNet, updated.Net)

	if gameNet > 0 {
		updated.GamesUp++
	}
	if gameNet < 0 {
		updated.GamesDown++
	}

	// High-water mark of the win/loss counters, not a consecutive-run streak.
	updated.BestWinStreak = maxInt(old.BestWinStreak, updated.GamesUp)
	updated.BestLoseStreak = maxInt(old.BestLoseStreak, updated.GamesDown)

	if gc.UpMost {
		updated.GamesUpMost++
	}
	if gc.DownMost {
		updated.GamesDownMost++
	}

	updated.AverageNet = updated.Net / float64(len(updated.GamesPlayed))
	updated.PUTR = Rating(updated.GamesPlayed)

	return updated
}

// Rating computes PUTR from the recorded games: the mean net of the last
// RatingWindow games, floored at 0 and scaled by RatingScaleFactor. Returns
// nil while the player has fewer than MinGamesForRating games.
func Rating(games []models.Game) *float64 {
	if len(games) < MinGamesForRating {
		return nil
	}

	window := games
	if len(window) > RatingWindow {
		window = window[len(window)-RatingWindow:]
	}

	var sum float64
	for _, g := range window {
		sum += g.Net
	}
	mean := sum / float64(len(window))
	if mean < 0 {
		mean = 0
	}

	rating := mean * RatingScaleFactor
	return &rating
}

// clone deep-copies the mutable parts of a record so ApplyGame never aliases
// its input.
func clone(p models.PlayerStats) models.PlayerStats {
	c := p

	c.GamesPlayed = make([]models.Game, len(p.GamesPlayed), len(p.GamesPlayed)+1)
	copy(c.GamesPlayed, p.GamesPlayed)

	c.PlayerNicknames = append([]string(nil), p.PlayerNicknames...)

	if p.NetHistory != nil {
		c.NetHistory = make(map[string]float64, len(p.NetHistory)+1)
		for k, v := range p.NetHistory {
			c.NetHistory[k] = v
		}
	}

	if p.PUTR != nil {
		v := *p.PUTR
		c.PUTR = &v
	}

	return c
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
