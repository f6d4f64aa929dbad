// Package strategy values cards and upgrades without playing them.
//
// Every function here is pure: players, decks, and markets passed in are
// never changed. Hypothetical positions ("what if this player owned X") are
// evaluated on a ledger.Player clone.
package strategy

import (
	"sort"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

// OneDie maps each face of a single die to its probability.
var OneDie = map[int]float64{
	1: 1.0 / 6, 2: 1.0 / 6, 3: 1.0 / 6, 4: 1.0 / 6, 5: 1.0 / 6, 6: 1.0 / 6,
}

// TwoDice maps each total of two dice to its probability.
var TwoDice = map[int]float64{
	2: 1.0 / 36, 3: 2.0 / 36, 4: 3.0 / 36, 5: 4.0 / 36, 6: 5.0 / 36,
	7: 6.0 / 36, 8: 5.0 / 36, 9: 4.0 / 36, 10: 3.0 / 36, 11: 2.0 / 36, 12: 1.0 / 36,
}

// PDoubles is the chance that two dice show the same face.
const PDoubles = 6.0 / 36

// Dist returns the roll distribution for dice dice (1 or 2).
func Dist(dice int) map[int]float64 {
	if dice >= 2 {
		return TwoDice
	}
	return OneDie
}

// PHits returns the chance a roll of dice dice lands on any value in hits.
// Values the dice cannot produce, such as 7 on one die or the upgrade
// sentinel, contribute nothing.
func PHits(hits []int, dice int) float64 {
	dist := Dist(dice)
	total := 0.0
	for _, v := range hits {
		total += dist[v]
	}
	return total
}

// NumDice returns how many dice p rolls: two with the Train Station.
func NumDice(p *ledger.Player) int {
	if p.Has(card.UpgradeTrainStation) {
		return 2
	}
	return 1
}

// TurnMultiplier returns the expected own turns per round. The Amusement
// Park repeats the turn on doubles, which needs two dice.
func TurnMultiplier(p *ledger.Player) float64 {
	if bonusTurns(p) {
		return 1 / (1 - PDoubles)
	}
	return 1
}

func bonusTurns(p *ledger.Player) bool {
	return p.Has(card.UpgradeAmusementPark) && NumDice(p) == 2
}

// doublesChance is the chance that two dice totaling roll show the same face.
func doublesChance(roll int) float64 {
	if roll%2 == 0 && roll >= 2 && roll <= 12 {
		return 1.0 / 36
	}
	return 0
}

// rolls returns the totals dice can produce in ascending order.
func rolls(dice int) []int {
	dist := Dist(dice)
	out := make([]int, 0, len(dist))
	for r := range dist {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// hypothetical returns a clone of p and a copy of players with the clone in
// p's seat.
func hypothetical(p *ledger.Player, players []*ledger.Player) (*ledger.Player, []*ledger.Player) {
	clone := p.Clone()
	out := make([]*ledger.Player, len(players))
	for i, q := range players {
		if q == p {
			out[i] = clone
		} else {
			out[i] = q
		}
	}
	return clone, out
}

func opponents(owner *ledger.Player, players []*ledger.Player) []*ledger.Player {
	out := make([]*ledger.Player, 0, len(players))
	for _, p := range players {
		if p != owner {
			out = append(out, p)
		}
	}
	return out
}

// mallPayout is c's payout for owner, plus the Shopping Mall bonus.
func mallPayout(owner *ledger.Player, c *card.Card) int {
	if c.MallBonus && owner.Has(card.UpgradeShoppingMall) {
		return c.Payout + 1
	}
	return c.Payout
}
