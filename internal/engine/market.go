package engine

import (
	"fmt"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

// NewMarket stocks the shared market for a table of seats players. Ordinary
// cards get their catalog copies; each unique card gets one market copy and
// seats-1 reserve copies so every player can own one.
func NewMarket(catalog *card.Catalog, seats int) (market, reserve *ledger.Store) {
	market = ledger.NewStore()
	reserve = ledger.NewStore()
	for _, t := range catalog.Templates() {
		if !t.Unique() {
			for i := 0; i < t.Copies; i++ {
				market.Insert(card.New(t))
			}
			continue
		}
		market.Insert(card.New(t))
		for i := 1; i < seats; i++ {
			reserve.Insert(card.New(t))
		}
	}
	return market, reserve
}

// Reconcile aligns the unique cards on the market with what player holds:
// owned uniques leave the market for the reserve, missing ones come back
// from it. Running it twice changes nothing.
func Reconcile(catalog *card.Catalog, player *ledger.Player, market, reserve *ledger.Store) {
	for _, t := range catalog.Unique() {
		owned := player.Owns(t.Name)
		listed := market.Has(t.Name)
		switch {
		case owned && listed:
			c, _ := market.Take(t.Name)
			reserve.Insert(c)
		case !owned && !listed:
			if c, ok := reserve.Take(t.Name); ok {
				market.Insert(c)
			}
		}
	}
}

// CheckInvariant panics if player could buy a second copy of a unique card.
func CheckInvariant(catalog *card.Catalog, player *ledger.Player, market *ledger.Store) {
	for _, t := range catalog.Unique() {
		if player.Owns(t.Name) && market.Has(t.Name) {
			panic(fmt.Sprintf("engine: %s owns %s while the market still lists it", player.Name, t.Name))
		}
	}
}
