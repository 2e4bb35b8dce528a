package leaderboard

import (
	"fmt"
	"sort"

	"github.com/samfeldman824/putr/internal/models"
)

// UnratedDisplay is shown for players below the rating threshold.
const UnratedDisplay = "UR"

// Row is one rendered leaderboard line.
type Row struct {
	Rank        int      `json:"rank"`
	Name        string   `json:"name"`
	PUTR        string   `json:"putr"`
	Rating      *float64 `json:"rating"`
	Net         float64  `json:"net"`
	AverageNet  float64  `json:"average_net"`
	BiggestWin  float64  `json:"biggest_win"`
	BiggestLoss float64  `json:"biggest_loss"`
	GamesPlayed int      `json:"games_played"`
	GamesUp     int      `json:"games_up"`
	GamesDown   int      `json:"games_down"`
	Flag        string   `json:"flag"`
}

// Rows renders a snapshot into ranked rows, descending by rating. Unrated
// players sort below every rated player; ties break on net, then name so the
// ordering is stable across renders.
func Rows(snapshot *models.LeaderboardSnapshot) []Row {
	if snapshot == nil {
		return nil
	}

	rows := make([]Row, 0, len(snapshot.Players))
	for _, p := range snapshot.Players {
		row := Row{
			Name:        p.Name,
			PUTR:        UnratedDisplay,
			Rating:      p.PUTR,
			Net:         p.Net,
			AverageNet:  p.AverageNet,
			BiggestWin:  p.BiggestWin,
			BiggestLoss: p.BiggestLoss,
			GamesPlayed: len(p.GamesPlayed),
			GamesUp:     p.GamesUp,
			GamesDown:   p.GamesDown,
			Flag:        p.Flag,
		}
		if p.Rated() {
			row.PUTR = fmt.Sprintf("%.2f", *p.PUTR)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].Rating, rows[j].Rating
		switch {
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		case a != nil && b != nil && *a != *b:
			return *a > *b
		}
		if rows[i].Net != rows[j].Net {
			return rows[i].Net > rows[j].Net
		}
		return rows[i].Name < rows[j].Name
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
