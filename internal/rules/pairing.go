package rules

import (
	"fmt"

	"github.com/vytor/tourneydesk/internal/models"
)

// Pairing is one proposed first-round game. Opponent is nil for the player
// left over by an odd roster.
type Pairing struct {
	Player   models.Player
	Opponent *models.Player
}

// Bye reports whether the pairing has no opponent.
func (p Pairing) Bye() bool {
	return p.Opponent == nil
}

// SeedPairings pairs the top half of a rating-ordered roster against the
// bottom half: R[i] meets R[n+i] with n = ceil(len/2). The roster must
// already be sorted by rating, highest first.
func SeedPairings(roster []models.Player) []Pairing {
	n := GameCount(len(roster))
	pairs := make([]Pairing, 0, n)
	for i := 0; i < n; i++ {
		p := Pairing{Player: roster[i]}
		if j := n + i; j < len(roster) {
			opp := roster[j]
			p.Opponent = &opp
		}
		pairs = append(pairs, p)
	}
	return pairs
}

// GameCount is the number of boards needed for a roster of size m.
func GameCount(m int) int {
	return (m + 1) / 2
}

// RoundsCell renders the tournament list cell linking to the next round's
// add form.
func RoundsCell(roundCount int, tournamentID int64) string {
	return fmt.Sprintf(`%d (<a href="../round/add?tournament=%d&name=Round %d">add new</a>)`,
		roundCount, tournamentID, roundCount+1)
}
