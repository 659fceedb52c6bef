package rules

import (
	"errors"

	"github.com/vytor/tourneydesk/internal/models"
)

var (
	ErrPreviousRoundEmpty      = errors.New("The previous round doesn't have any games.")
	ErrPreviousRoundUnfinished = errors.New("The previous round has unfinished games.")
)

// CheckRound decides whether roundID may be saved given latest, the most
// recent round of the same tournament by round date. roundID is zero for a
// round that has not been stored yet; latest is nil when the tournament has
// no rounds.
func CheckRound(roundID int64, latest *models.RoundSummary) error {
	if latest == nil {
		return nil
	}
	if roundID != 0 && latest.RoundID == roundID {
		return nil
	}
	if latest.GameCount == 0 {
		return ErrPreviousRoundEmpty
	}
	if latest.PlannedCount > 0 {
		return ErrPreviousRoundUnfinished
	}
	return nil
}
