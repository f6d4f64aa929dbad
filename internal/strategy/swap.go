package strategy

import (
	"sort"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

// SwapGiveCandidates bounds how many of the owner's lowest-EV cards are
// considered as the card to give away in a swap.
var SwapGiveCandidates = 4

// Swap is a proposed exchange: Give leaves the owner, Take comes from Target.
// Net is the owner's per-round EV change.
type Swap struct {
	Target *ledger.Player
	Give   *card.Card
	Take   *card.Card
	Net    float64
}

// Tradeable reports whether c may change hands in a swap.
func Tradeable(c *card.Card) bool {
	return c.Swappable()
}

// receivable filters cards down to those p can take without doubling a
// unique card.
func receivable(cards []*card.Card, p *ledger.Player) []*card.Card {
	var out []*card.Card
	for _, c := range cards {
		if p.CanReceive(c) {
			out = append(out, c)
		}
	}
	return out
}

func tradeable(p *ledger.Player) []*card.Card {
	var out []*card.Card
	for _, c := range p.Deck.Cards() {
		if Tradeable(c) {
			out = append(out, c)
		}
	}
	return out
}

// BestSwap searches every opponent for the exchange that most improves
// owner. For each opponent it takes the card with the highest DeltaEV to the
// owner and gives, among the owner's SwapGiveCandidates lowest-EV cards, the
// one worth least to that opponent. It reports false when no exchange has a
// positive net.
func BestSwap(owner *ledger.Player, players []*ledger.Player) (Swap, bool) {
	own := tradeable(owner)
	if len(own) == 0 {
		return Swap{}, false
	}
	sort.SliceStable(own, func(i, j int) bool {
		return EV(own[i], owner, players, 1) < EV(own[j], owner, players, 1)
	})
	lowest := own
	if SwapGiveCandidates > 0 && len(lowest) > SwapGiveCandidates {
		lowest = lowest[:SwapGiveCandidates]
	}

	var best Swap
	found := false
	for _, target := range opponents(owner, players) {
		theirs := receivable(tradeable(target), owner)
		candidates := receivable(lowest, target)
		if len(theirs) == 0 || len(candidates) == 0 {
			continue
		}
		take, takeValue := theirs[0], DeltaEV(theirs[0], owner, players, 1)
		for _, c := range theirs[1:] {
			if v := DeltaEV(c, owner, players, 1); v > takeValue {
				take, takeValue = c, v
			}
		}
		give, giveSpite := candidates[0], DeltaEV(candidates[0], target, players, 1)
		for _, c := range candidates[1:] {
			if v := DeltaEV(c, target, players, 1); v < giveSpite {
				give, giveSpite = c, v
			}
		}
		net := takeValue - EV(give, owner, players, 1)
		if net > 0 && (!found || net > best.Net) {
			best = Swap{Target: target, Give: give, Take: take, Net: net}
			found = true
		}
	}
	return best, found
}

// SwapValue is the EV over n rounds of owning the swap card c: the best
// exchange's net gain, weighted by how often c activates.
func SwapValue(c *card.Card, owner *ledger.Player, players []*ledger.Player, n int) float64 {
	best, ok := BestSwap(owner, players)
	if !ok {
		return 0
	}
	return best.Net * PHits(c.HitsOn, NumDice(owner)) * TurnMultiplier(owner) * float64(n)
}
