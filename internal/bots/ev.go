package bots

import (
	"context"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/engine"
	"github.com/louisbranch/harmonictook/internal/strategy"
)

// EVBot buys the card with the highest DeltaEV over its planning horizon.
type EVBot struct {
	*Bot
	// Horizon is the number of rounds purchases are valued over.
	Horizon int
}

func NewEVBot(src Source, horizon int) *EVBot {
	if horizon < 1 {
		horizon = 1
	}
	return &EVBot{Bot: NewBot(src), Horizon: horizon}
}

func (b *EVBot) ChooseDice(_ context.Context, view engine.View) int {
	return diceByIncome(view)
}

func (b *EVBot) ChooseCard(_ context.Context, view engine.View, options []*card.Card) string {
	scored := strategy.ScorePurchaseOptions(view.Self, options, playersOf(view), b.Horizon)
	if len(scored) == 0 {
		return ""
	}
	return scored[0].Card.Name
}

// ChooseSwap makes the best positive swap, or takes the coins.
func (b *EVBot) ChooseSwap(_ context.Context, view engine.View) engine.SwapDecision {
	best, ok := strategy.BestSwap(view.Self, targetsOf(view))
	if !ok {
		return engine.SwapDecision{Coins: true}
	}
	return engine.SwapDecision{Target: best.Target, Give: best.Give, Take: best.Take}
}
