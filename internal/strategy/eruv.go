package strategy

import (
	"math"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

// LandmarksRemaining counts the upgrades p still needs to win.
func LandmarksRemaining(p *ledger.Player) int {
	return len(p.Remaining())
}

// LandmarkCostRemaining sums the catalog cost of the upgrades p still needs.
func LandmarkCostRemaining(p *ledger.Player, catalog *card.Catalog) int {
	total := 0
	for _, u := range p.Remaining() {
		if t, ok := catalog.UpgradeTemplate(u); ok {
			total += t.Cost
		}
	}
	return total
}

// ERUV is the expected number of rounds until p can have bought every
// missing upgrade: at least one round per upgrade, and at least the rounds
// the mean round income needs to cover the shortfall. With no income it is
// the upgrade count.
func ERUV(p *ledger.Player, players []*ledger.Player, catalog *card.Catalog) float64 {
	remaining := float64(LandmarksRemaining(p))
	income := RoundPMF(p, players).Mean()
	if income <= 0 {
		return remaining
	}
	deficit := max(0, LandmarkCostRemaining(p, catalog)-p.Bank)
	return max(remaining, math.Ceil(float64(deficit)/income))
}

// ERUVAfterBuy is ERUV once p has paid for and received c.
func ERUVAfterBuy(c *card.Card, p *ledger.Player, players []*ledger.Player, catalog *card.Catalog) float64 {
	clone, view := withCard(c, p, players)
	clone.Bank -= c.Cost
	return ERUV(clone, view, catalog)
}

// ERUVAfterAdd is ERUV once p holds c without paying for it.
func ERUVAfterAdd(c *card.Card, p *ledger.Player, players []*ledger.Player, catalog *card.Catalog) float64 {
	clone, view := withCard(c, p, players)
	return ERUV(clone, view, catalog)
}

// ERUVAfterRemove is ERUV once p no longer holds c.
func ERUVAfterRemove(c *card.Card, p *ledger.Player, players []*ledger.Player, catalog *card.Catalog) float64 {
	clone, view := hypothetical(p, players)
	if clone.Deck.Remove(c) && c.Kind == card.KindUpgrade {
		clone.Revoke(c.Upgrade)
	}
	return ERUV(clone, view, catalog)
}

// VarianceAfterBuy is the round income variance once p holds c.
func VarianceAfterBuy(c *card.Card, p *ledger.Player, players []*ledger.Player) float64 {
	clone, view := withCard(c, p, players)
	return RoundPMF(clone, view).Variance()
}

func withCard(c *card.Card, p *ledger.Player, players []*ledger.Player) (*ledger.Player, []*ledger.Player) {
	clone, view := hypothetical(p, players)
	clone.Deck.Insert(c)
	if c.Kind == card.KindUpgrade {
		clone.Grant(c.Upgrade)
	}
	return clone, view
}
