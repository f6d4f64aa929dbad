package bots

import (
	"context"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/engine"
)

var (
	upgradePriority = []string{
		"Radio Tower",
		"Amusement Park",
		"Shopping Mall",
		"Train Station",
	}
	earlyPriority = []string{
		"TV Station",
		"Business Center",
		"Stadium",
		"Forest",
		"Convenience Store",
		"Ranch",
		"Wheat Field",
		"Cafe",
		"Bakery",
	}
	latePriority = []string{
		"Mine",
		"Furniture Factory",
		"Cheese Factory",
		"Family Restaurant",
		"Apple Orchard",
		"Fruit and Vegetable Market",
	}
)

// ThoughtfulBot buys from a fixed preference list: upgrades first, then
// one-die cards, and two-dice cards once it owns the Train Station.
type ThoughtfulBot struct {
	*Bot
}

func NewThoughtfulBot(src Source) *ThoughtfulBot {
	return &ThoughtfulBot{Bot: NewBot(src)}
}

func (b *ThoughtfulBot) ChooseDice(_ context.Context, view engine.View) int {
	return diceByIncome(view)
}

func (b *ThoughtfulBot) ChooseCard(ctx context.Context, view engine.View, options []*card.Card) string {
	if len(options) == 0 {
		return ""
	}
	preferences := append([]string{}, upgradePriority...)
	if view.Self.Has(card.UpgradeTrainStation) {
		preferences = append(preferences, latePriority...)
	}
	preferences = append(preferences, earlyPriority...)
	for _, name := range preferences {
		if byName(options, name) != nil {
			return name
		}
	}
	return b.Bot.ChooseCard(ctx, view, options)
}

func (b *ThoughtfulBot) ChooseSwap(ctx context.Context, view engine.View) engine.SwapDecision {
	return b.swap(ctx, view, b.ChooseCard)
}
