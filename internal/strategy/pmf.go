package strategy

import (
	"sort"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

// PMF maps an income amount to its probability. Sums over a PMF run in
// ascending income order so results are bit-for-bit reproducible.
type PMF map[int]float64

// Mean returns the probability-weighted income.
func (m PMF) Mean() float64 {
	total := 0.0
	for _, v := range m.Values() {
		total += float64(v) * m[v]
	}
	return total
}

// Variance returns the spread of income around Mean.
func (m PMF) Variance() float64 {
	mean := m.Mean()
	total := 0.0
	for _, v := range m.Values() {
		d := float64(v) - mean
		total += d * d * m[v]
	}
	return total
}

// Total returns the summed probability, 1 for a well-formed distribution.
func (m PMF) Total() float64 {
	total := 0.0
	for _, v := range m.Values() {
		total += m[v]
	}
	return total
}

// Values returns the incomes with non-zero probability in ascending order.
func (m PMF) Values() []int {
	out := make([]int, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Convolve returns the distribution of the sum of independent draws from a
// and b.
func Convolve(a, b PMF) PMF {
	out := make(PMF, len(a)*len(b))
	for _, va := range a.Values() {
		for _, vb := range b.Values() {
			out[va+vb] += a[va] * b[vb]
		}
	}
	return out
}

// RollIncome returns what p earns from the bank and from collect cards when
// p rolls roll. Tolls p pays out are not subtracted.
func RollIncome(p *ledger.Player, roll int, players []*ledger.Player) int {
	income := 0
	for _, c := range p.Deck.Cards() {
		if !c.Hits(roll) {
			continue
		}
		switch c.Kind {
		case card.KindBankToOwner:
			income += mallPayout(p, c)
		case card.KindBankToRoller:
			if c.Factory() {
				income += c.Payout * p.CountCategory(c.Multiplies)
			} else {
				income += mallPayout(p, c)
			}
		case card.KindCollectAll:
			income += c.Payout * max(0, len(players)-1)
		case card.KindCollectOne:
			richest := 0
			for _, q := range opponents(p, players) {
				richest = max(richest, q.Bank)
			}
			income += min(c.Payout, richest)
		}
	}
	return income
}

// opponentRollIncome returns what p earns when opp rolls roll.
func opponentRollIncome(p, opp *ledger.Player, roll int) int {
	income := 0
	for _, c := range p.Deck.Cards() {
		if !c.Hits(roll) {
			continue
		}
		switch c.Kind {
		case card.KindBankToOwner:
			income += mallPayout(p, c)
		case card.KindToll:
			income += min(mallPayout(p, c), opp.Bank)
		}
	}
	return income
}

// bonusTurnDepth bounds how many Amusement Park repeats OwnTurnPMF follows;
// the chance of going deeper is below 1e-13.
const bonusTurnDepth = 16

// OwnTurnPMF is p's income distribution over one own turn, including the
// repeats the Amusement Park grants on doubles.
func OwnTurnPMF(p *ledger.Player, players []*ledger.Player) PMF {
	dice := NumDice(p)
	dist := Dist(dice)
	out := PMF{}
	for _, r := range rolls(dice) {
		out[RollIncome(p, r, players)] += dist[r]
	}
	if !bonusTurns(p) {
		return out
	}

	plain, doubles := PMF{}, PMF{}
	for _, r := range rolls(dice) {
		income := RollIncome(p, r, players)
		pd := doublesChance(r)
		if rest := dist[r] - pd; rest > 1e-15 {
			plain[income] += rest
		}
		if pd > 0 {
			doubles[income] += pd
		}
	}
	for range bonusTurnDepth {
		next := Convolve(doubles, out)
		for _, v := range plain.Values() {
			next[v] += plain[v]
		}
		out = next
	}
	return out
}

// OpponentTurnPMF is p's income distribution over one roll by opp.
func OpponentTurnPMF(p, opp *ledger.Player) PMF {
	dice := NumDice(opp)
	dist := Dist(dice)
	out := PMF{}
	for _, r := range rolls(dice) {
		out[opponentRollIncome(p, opp, r)] += dist[r]
	}
	return out
}

// RoundPMF is p's income distribution over one round: its own turn plus one
// turn per opponent. Its mean equals PortfolioEV over one round for decks
// without a swap card.
func RoundPMF(p *ledger.Player, players []*ledger.Player) PMF {
	round := OwnTurnPMF(p, players)
	for _, opp := range opponents(p, players) {
		round = Convolve(round, OpponentTurnPMF(p, opp))
	}
	return round
}
