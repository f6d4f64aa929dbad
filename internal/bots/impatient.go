package bots

import (
	"context"
	"math"
	"sort"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/engine"
	"github.com/louisbranch/harmonictook/internal/ledger"
	"github.com/louisbranch/harmonictook/internal/strategy"
)

// rerollRank is the position, in the sorted incomes of rolls 1 through 12,
// at or below which ImpatientBot rerolls: the bottom third.
const rerollRank = 3

// ImpatientBot minimizes the expected rounds until it holds every upgrade
// (ERUV). Lower round income variance breaks ties.
type ImpatientBot struct {
	*Bot
}

func NewImpatientBot(src Source) *ImpatientBot {
	return &ImpatientBot{Bot: NewBot(src)}
}

func (b *ImpatientBot) ChooseDice(_ context.Context, view engine.View) int {
	return diceByIncome(view)
}

// ChooseReroll rerolls a roll whose income sits in the bottom third of
// every roll value.
func (b *ImpatientBot) ChooseReroll(_ context.Context, view engine.View, roll int) bool {
	if !view.Self.Has(card.UpgradeRadioTower) {
		return false
	}
	players := playersOf(view)
	incomes := make([]int, 0, 12)
	for v := 1; v <= 12; v++ {
		incomes = append(incomes, strategy.RollIncome(view.Self, v, players))
	}
	sort.Ints(incomes)
	return strategy.RollIncome(view.Self, roll, players) <= incomes[rerollRank]
}

// ChooseAction buys when an upgrade is affordable or some affordable card
// lowers ERUV.
func (b *ImpatientBot) ChooseAction(_ context.Context, view engine.View) engine.Action {
	options := view.Market.Distinct(view.Self.Bank)
	if len(options) == 0 {
		return engine.ActionPass
	}
	players := playersOf(view)
	catalog := catalogOf(view)
	base := strategy.ERUV(view.Self, players, catalog)
	for _, c := range options {
		if c.Kind == card.KindUpgrade && !view.Self.Has(c.Upgrade) {
			return engine.ActionBuy
		}
		if strategy.ERUVAfterBuy(c, view.Self, players, catalog) < base {
			return engine.ActionBuy
		}
	}
	return engine.ActionPass
}

func (b *ImpatientBot) ChooseCard(_ context.Context, view engine.View, options []*card.Card) string {
	players := playersOf(view)
	catalog := catalogOf(view)
	best := ""
	bestRounds, bestVar := math.Inf(1), math.Inf(1)
	for _, c := range options {
		rounds := strategy.ERUVAfterBuy(c, view.Self, players, catalog)
		variance := strategy.VarianceAfterBuy(c, view.Self, players)
		if rounds < bestRounds || (rounds == bestRounds && variance < bestVar) {
			best, bestRounds, bestVar = c.Name, rounds, variance
		}
	}
	return best
}

// ChooseSwap gives away the card whose loss hurts ERUV least and takes the
// card that helps it most, from whichever opponent offers the best take.
func (b *ImpatientBot) ChooseSwap(_ context.Context, view engine.View) engine.SwapDecision {
	mine := tradeable(view.Self)
	if len(mine) == 0 {
		return engine.SwapDecision{Coins: true}
	}
	players := playersOf(view)
	catalog := catalogOf(view)

	var (
		target *ledger.Player
		take   *card.Card
	)
	bestAdd := math.Inf(1)
	for _, opp := range view.Targets() {
		for _, c := range receivableBy(tradeable(opp), view.Self) {
			if rounds := strategy.ERUVAfterAdd(c, view.Self, players, catalog); rounds < bestAdd {
				target, take, bestAdd = opp, c, rounds
			}
		}
	}
	if take == nil {
		return engine.SwapDecision{Coins: true}
	}
	if mine = receivableBy(mine, target); len(mine) == 0 {
		return engine.SwapDecision{Coins: true}
	}

	give := mine[0]
	bestRemove := strategy.ERUVAfterRemove(give, view.Self, players, catalog)
	for _, c := range mine[1:] {
		if rounds := strategy.ERUVAfterRemove(c, view.Self, players, catalog); rounds < bestRemove {
			give, bestRemove = c, rounds
		}
	}
	return engine.SwapDecision{Target: target, Give: give, Take: take}
}
