package models

// Session is one raw buy-in/buy-out row from an uploaded ledger CSV.
// Monetary amounts are in cents, matching the ledger export format; the
// aggregation layer converts to dollars.
type Session struct {
	PlayerNickname string `json:"player_nickname"`
	PlayerID       string `json:"player_id"`
	StartAt        string `json:"session_start_at"`
	EndAt          string `json:"session_end_at"`
	BuyInCents     int64  `json:"buy_in"`
	BuyOutCents    int64  `json:"buy_out"`
	StackCents     int64  `json:"stack"`
	NetCents       int64  `json:"net"`
}
