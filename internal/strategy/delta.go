package strategy

import (
	"sort"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

// DeltaEV returns what p gains over n rounds by acquiring c.
//
// Ordinary cards are worth their own EV, valued as if p held them, plus the
// boost they give to factories p already owns. Upgrades are worth the
// portfolio difference they make, with two closed forms:
//
//   - Radio Tower: the option value of rerolling any own roll that pays
//     less than the expected own-turn income.
//   - Train Station: given a market, the gap between the median non-zero
//     EV of the two-dice cards in it and the median EV of the one-die ones,
//     since a fresh deck holds nothing a second die could reach. Without a
//     market it falls back to the portfolio difference.
//
// An upgrade p already has is worth nothing.
func DeltaEV(c *card.Card, p *ledger.Player, players []*ledger.Player, n int, market ...*card.Card) float64 {
	if c.Kind == card.KindUpgrade {
		return upgradeDelta(c.Upgrade, p, players, n, market)
	}
	clone, view := hypothetical(p, players)
	if !p.Deck.Contains(c) {
		clone.Deck.Insert(c)
	}
	return EV(c, clone, view, n) + synergy(c, p, n)
}

// synergy is the EV the factories p owns gain from one more card in c's
// category.
func synergy(c *card.Card, p *ledger.Player, n int) float64 {
	total := 0.0
	for _, held := range p.Deck.Cards() {
		if held == c || !held.Factory() || held.Multiplies != c.Category {
			continue
		}
		total += float64(held.Payout) * PHits(held.HitsOn, NumDice(p)) * TurnMultiplier(p) * float64(n)
	}
	return total
}

func upgradeDelta(u card.Upgrade, p *ledger.Player, players []*ledger.Player, n int, market []*card.Card) float64 {
	if p.Has(u) {
		return 0
	}
	switch u {
	case card.UpgradeRadioTower:
		return rerollValue(p, players) * TurnMultiplier(p) * float64(n)
	case card.UpgradeTrainStation:
		if len(market) == 0 {
			return portfolioDiff(u, p, players, n)
		}
		return trainStationForward(p, players, n, market)
	default:
		return portfolioDiff(u, p, players, n)
	}
}

func portfolioDiff(u card.Upgrade, p *ledger.Player, players []*ledger.Player, n int) float64 {
	clone, view := hypothetical(p, players)
	clone.Grant(u)
	return PortfolioEV(clone, view, n) - PortfolioEV(p, players, n)
}

// rerollValue is E[max(V(r), E)] - E over p's own rolls, where V(r) is the
// income of roll r and E its mean.
func rerollValue(p *ledger.Player, players []*ledger.Player) float64 {
	dice := NumDice(p)
	dist := Dist(dice)
	expected := 0.0
	for _, r := range rolls(dice) {
		expected += dist[r] * float64(RollIncome(p, r, players))
	}
	withReroll := 0.0
	for _, r := range rolls(dice) {
		withReroll += dist[r] * max(float64(RollIncome(p, r, players)), expected)
	}
	return withReroll - expected
}

// trainStationForward compares market cards a second die reaches against
// those one die already reaches. Tolls are skipped because they fire on
// opponents' rolls, which the Train Station does not change.
func trainStationForward(p *ledger.Player, players []*ledger.Player, n int, market []*card.Card) float64 {
	clone, view := hypothetical(p, players)
	clone.Grant(card.UpgradeTrainStation)

	var twoDie, oneDie []float64
	for _, c := range market {
		if c.Kind == card.KindToll || c.Kind == card.KindUpgrade {
			continue
		}
		if twoDieRange(c) {
			if v := DeltaEV(c, clone, view, n); v > 0 {
				twoDie = append(twoDie, v)
			}
			continue
		}
		oneDie = append(oneDie, DeltaEV(c, p, players, n))
	}
	return max(0, median(twoDie)-median(oneDie))
}

// twoDieRange reports whether c only hits totals a single die cannot roll.
func twoDieRange(c *card.Card) bool {
	for _, v := range c.HitsOn {
		if v <= 6 {
			return false
		}
	}
	return len(c.HitsOn) > 0
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Scored pairs a card with its value.
type Scored struct {
	Card  *card.Card
	Value float64
}

// ScorePurchaseOptions ranks options by DeltaEV for p, best first. Ties keep
// the order of options.
func ScorePurchaseOptions(p *ledger.Player, options []*card.Card, players []*ledger.Player, n int) []Scored {
	scored := make([]Scored, len(options))
	for i, c := range options {
		scored[i] = Scored{Card: c, Value: DeltaEV(c, p, players, n, options...)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Value > scored[j].Value
	})
	return scored
}
