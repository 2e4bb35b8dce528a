package models

// Game is one real-world poker night for a single player, consolidating all
// of that player's sessions sharing a date and location.
type Game struct {
	Date         string  `bson:"date" json:"date"`
	Location     string  `bson:"location" json:"location"`
	BuyIn        float64 `bson:"buy_in" json:"buy_in"`
	CashOut      float64 `bson:"cash_out" json:"cash_out"`
	Net          float64 `bson:"net" json:"net"`
	SessionCount int     `bson:"session_count" json:"session_count"`
}

// PlayerStats is the persisted per-player document, keyed by the canonical
// player name. PUTR stays nil until the player has recorded enough games to
// be rated.
type PlayerStats struct {
	Name            string             `bson:"_id" json:"name"`
	PlayerNicknames []string           `bson:"player_nicknames" json:"player_nicknames"`
	Net             float64            `bson:"net" json:"net"`
	PUTR            *float64           `bson:"putr" json:"putr"`
	GamesPlayed     []Game             `bson:"games_played" json:"games_played"`
	NetHistory      map[string]float64 `bson:"net_dictionary" json:"net_dictionary"`
	BiggestWin      float64            `bson:"biggest_win" json:"biggest_win"`
	BiggestLoss     float64            `bson:"biggest_loss" json:"biggest_loss"`
	HighestNet      float64            `bson:"highest_net" json:"highest_net"`
	LowestNet       float64            `bson:"lowest_net" json:"lowest_net"`
	GamesUp         int                `bson:"games_up" json:"games_up"`
	GamesDown       int                `bson:"games_down" json:"games_down"`
	GamesUpMost     int                `bson:"games_up_most" json:"games_up_most"`
	GamesDownMost   int                `bson:"games_down_most" json:"games_down_most"`
	BestWinStreak   int                `bson:"best_win_streak" json:"best_win_streak"`
	BestLoseStreak  int                `bson:"best_lose_streak" json:"best_lose_streak"`
	AverageNet      float64            `bson:"average_net" json:"average_net"`
	Flag            string             `bson:"flag" json:"flag"`
}

// Rated reports whether the player has a PUTR yet.
func (p *PlayerStats) Rated() bool {
	return p.PUTR != nil
}
