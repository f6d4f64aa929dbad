package strategy

import (
	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

// EV returns the coins owner expects from c over n rounds, following the
// same payout rules the engine applies. Upgrades are worth nothing on their
// own; DeltaEV values them.
func EV(c *card.Card, owner *ledger.Player, players []*ledger.Player, n int) float64 {
	rounds := float64(n)
	switch c.Kind {
	case card.KindBankToOwner:
		hits := PHits(c.HitsOn, NumDice(owner)) * TurnMultiplier(owner)
		for _, p := range opponents(owner, players) {
			hits += PHits(c.HitsOn, NumDice(p))
		}
		return float64(mallPayout(owner, c)) * hits * rounds
	case card.KindBankToRoller:
		amount := mallPayout(owner, c)
		if c.Factory() {
			amount = c.Payout * owner.CountCategory(c.Multiplies)
		}
		return float64(amount) * PHits(c.HitsOn, NumDice(owner)) * TurnMultiplier(owner) * rounds
	case card.KindToll:
		total := 0.0
		amount := mallPayout(owner, c)
		for _, p := range opponents(owner, players) {
			total += float64(min(amount, p.Bank)) * PHits(c.HitsOn, NumDice(p))
		}
		return total * rounds
	case card.KindCollectAll:
		others := len(players) - 1
		if others < 0 {
			others = 0
		}
		return float64(c.Payout*others) * PHits(c.HitsOn, NumDice(owner)) * TurnMultiplier(owner) * rounds
	case card.KindCollectOne:
		opps := opponents(owner, players)
		if len(opps) == 0 {
			return 0
		}
		richest := 0
		for _, p := range opps {
			richest = max(richest, p.Bank)
		}
		return float64(min(c.Payout, richest)) * PHits(c.HitsOn, NumDice(owner)) * TurnMultiplier(owner) * rounds
	case card.KindSwap:
		return SwapValue(c, owner, players, n)
	case card.KindUpgrade:
		return 0
	}
	return 0
}

// PortfolioEV sums EV over everything p holds.
func PortfolioEV(p *ledger.Player, players []*ledger.Player, n int) float64 {
	total := 0.0
	for _, c := range p.Deck.Cards() {
		total += EV(c, p, players, n)
	}
	return total
}
