package tournament

import (
	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

// WinnerBonus is added to the finish score of a player holding every landmark.
const WinnerBonus = 25

// FinishScore rates how far a player got: landmark cost x3, other cards
// cost x2, plus the bank, plus WinnerBonus for a winner.
func FinishScore(p *ledger.Player) int {
	score := p.Bank
	for _, c := range p.Deck.Cards() {
		if c.Kind == card.KindUpgrade {
			score += 3 * c.Cost
		} else {
			score += 2 * c.Cost
		}
	}
	if p.Winner() {
		score += WinnerBonus
	}
	return score
}
