package ledger

import "github.com/samfeldman824/putr/internal/models"

// CentsToDollars converts ledger cents to dollars, the unit every stored
// statistic uses.
const CentsToDollars = 100.0

// Groups partitions parsed sessions by player nickname while remembering the
// order nicknames first appeared in the file.
type Groups struct {
	ByNickname map[string][]models.Session
	Order      []string
}

// Group partitions the session sequence by nickname, preserving the original
// relative order of each player's sessions.
func Group(sessions []models.Session) *Groups {
	g := &Groups{ByNickname: make(map[string][]models.Session)}
	for _, s := range sessions {
		if _, seen := g.ByNickname[s.PlayerNickname]; !seen {
			g.Order = append(g.Order, s.PlayerNickname)
		}
		g.ByNickname[s.PlayerNickname] = append(g.ByNickname[s.PlayerNickname], s)
	}
	return g
}

// NetTotals sums each player's session nets into a per-nickname game net,
// in dollars.
func (g *Groups) NetTotals() map[string]float64 {
	totals := make(map[string]float64, len(g.ByNickname))
	for nickname, sessions := range g.ByNickname {
		var cents int64
		for _, s := range sessions {
			cents += s.NetCents
		}
		totals[nickname] = float64(cents) / CentsToDollars
	}
	return totals
}

// ExtremeNicknames returns the nicknames that won the most and lost the most
// in a game, ties included. Both lists are empty for an empty game.
func ExtremeNicknames(netByNickname map[string]float64) (upMost, downMost []string) {
	first := true
	var maxNet, minNet float64
	for _, net := range netByNickname {
		if first || net > maxNet {
			maxNet = net
		}
		if first || net < minNet {
			minNet = net
		}
		first = false
	}
	for nickname, net := range netByNickname {
		if net == maxNet {
			upMost = append(upMost, nickname)
		}
		if net == minNet {
			downMost = append(downMost, nickname)
		}
	}
	return upMost, downMost
}
