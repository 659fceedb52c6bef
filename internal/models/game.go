package models

import "github.com/shopspring/decimal"

type GameStatus string

const (
	StatusPlanned  GameStatus = "planned"
	StatusFinished GameStatus = "finished"
	StatusWalkover GameStatus = "walkover"
)

// GameStatuses lists the accepted statuses in display order.
var GameStatuses = []GameStatus{StatusPlanned, StatusFinished, StatusWalkover}

func (s GameStatus) Valid() bool {
	for _, st := range GameStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type Game struct {
	ID            int64           `json:"id"`
	RoundID       int64           `json:"round_id"`
	PlayerID      int64           `json:"player_id"`
	OpponentID    int64           `json:"opponent_id"`
	PlayerScore   decimal.Decimal `json:"player_score"`
	OpponentScore decimal.Decimal `json:"opponent_score"`
	Status        GameStatus      `json:"status"`
}

// TotalScore is player_score + opponent_score.
func (g Game) TotalScore() decimal.Decimal {
	return g.PlayerScore.Add(g.OpponentScore)
}
