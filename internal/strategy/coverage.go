package strategy

import (
	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

// activatesOwnTurn reports whether c can fire when its owner rolls.
func activatesOwnTurn(c *card.Card) bool {
	return c.Kind != card.KindToll && c.Kind != card.KindUpgrade
}

// activatesOpponentTurn reports whether c can fire when someone else rolls.
func activatesOpponentTurn(c *card.Card) bool {
	return c.Kind == card.KindToll || c.Kind == card.KindBankToOwner
}

func covered(p *ledger.Player, keep func(*card.Card) bool) map[int]bool {
	out := map[int]bool{}
	for _, c := range p.Deck.Cards() {
		if !keep(c) {
			continue
		}
		for _, v := range c.HitsOn {
			out[v] = true
		}
	}
	return out
}

func coverageOf(values map[int]bool, dice int) float64 {
	dist := Dist(dice)
	total := 0.0
	for _, r := range rolls(dice) {
		if values[r] {
			total += dist[r]
		}
	}
	return total
}

// OwnTurnCoverage is the chance that a roll of dice dice activates at least
// one of p's cards on p's own turn.
func OwnTurnCoverage(p *ledger.Player, dice int) float64 {
	return coverageOf(covered(p, activatesOwnTurn), dice)
}

// CoverageValue is the expected number of rolls per round that activate at
// least one of p's cards.
func CoverageValue(p *ledger.Player, players []*ledger.Player) float64 {
	total := OwnTurnCoverage(p, NumDice(p)) * TurnMultiplier(p)
	opp := covered(p, activatesOpponentTurn)
	for _, q := range opponents(p, players) {
		total += coverageOf(opp, NumDice(q))
	}
	return total
}

// DeltaCoverage is the coverage p gains from acquiring c. Ordinary cards
// only count roll values p does not already cover. Upgrades:
//
//   - Train Station: two-dice coverage minus one-die coverage.
//   - Radio Tower: a reroll after a miss, (1-cov)*cov.
//   - Amusement Park: bonus turns on doubles, PDoubles*cov; none on one die.
//   - Shopping Mall: none.
func DeltaCoverage(c *card.Card, p *ledger.Player, players []*ledger.Player) float64 {
	if c.Kind == card.KindUpgrade {
		if p.Has(c.Upgrade) {
			return 0
		}
		cov := OwnTurnCoverage(p, NumDice(p))
		switch c.Upgrade {
		case card.UpgradeTrainStation:
			return OwnTurnCoverage(p, 2) - OwnTurnCoverage(p, 1)
		case card.UpgradeRadioTower:
			return (1 - cov) * cov
		case card.UpgradeAmusementPark:
			if NumDice(p) < 2 {
				return 0
			}
			return PDoubles * cov
		}
		return 0
	}

	total := 0.0
	if activatesOwnTurn(c) {
		have := covered(p, activatesOwnTurn)
		dist := Dist(NumDice(p))
		for _, v := range uniqueHits(c) {
			if !have[v] {
				total += dist[v] * TurnMultiplier(p)
			}
		}
	}
	if activatesOpponentTurn(c) {
		have := covered(p, activatesOpponentTurn)
		for _, q := range opponents(p, players) {
			dist := Dist(NumDice(q))
			for _, v := range uniqueHits(c) {
				if !have[v] {
					total += dist[v]
				}
			}
		}
	}
	return total
}

func uniqueHits(c *card.Card) []int {
	seen := map[int]bool{}
	var out []int
	for _, v := range c.HitsOn {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
