package bots

import (
	"context"
	"fmt"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/engine"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

// Human asks a person for every decision through a display. When the
// display fails, usually because ctx was canceled, Human falls back to the
// most passive answer: one die, no reroll, pass, coins.
type Human struct {
	Display engine.Display
}

func NewHuman(display engine.Display) *Human {
	return &Human{Display: display}
}

func (h *Human) ChooseDice(ctx context.Context, view engine.View) int {
	if !view.Self.Has(card.UpgradeTrainStation) {
		return 1
	}
	two, err := h.Display.Confirm(ctx, "Roll two dice?")
	if err != nil || !two {
		return 1
	}
	return 2
}

func (h *Human) ChooseReroll(ctx context.Context, _ engine.View, roll int) bool {
	ok, err := h.Display.Confirm(ctx, fmt.Sprintf("You rolled %d. Use the Radio Tower to reroll?", roll))
	return err == nil && ok
}

func (h *Human) ChooseTarget(ctx context.Context, view engine.View) *ledger.Player {
	return h.pickPlayer(ctx, "Choose a player to target:", view.Targets())
}

func (h *Human) ChooseAction(ctx context.Context, view engine.View) engine.Action {
	if len(view.Market.Distinct(view.Self.Bank)) == 0 {
		return engine.ActionPass
	}
	buy, err := h.Display.Confirm(ctx, fmt.Sprintf("You have %d coins. Buy a card?", view.Self.Bank))
	if err != nil || !buy {
		return engine.ActionPass
	}
	return engine.ActionBuy
}

func (h *Human) ChooseCard(ctx context.Context, _ engine.View, options []*card.Card) string {
	c := h.pickCard(ctx, "Choose a card to buy:", options, true)
	if c == nil {
		return ""
	}
	return c.Name
}

func (h *Human) ChooseSwap(ctx context.Context, view engine.View) engine.SwapDecision {
	coins := engine.SwapDecision{Coins: true}
	swap, err := h.Display.Confirm(ctx, "Swap a card with another player instead of taking coins?")
	if err != nil || !swap {
		return coins
	}
	target := h.pickPlayer(ctx, "Swap with:", view.Targets())
	if target == nil {
		return coins
	}
	give := h.pickCard(ctx, "Give which card?", receivableBy(tradeable(view.Self), target), false)
	if give == nil {
		return coins
	}
	take := h.pickCard(ctx, fmt.Sprintf("Take which card from %s?", target.Name), receivableBy(tradeable(target), view.Self), false)
	if take == nil {
		return coins
	}
	return engine.SwapDecision{Target: target, Give: give, Take: take}
}

func (h *Human) pickPlayer(ctx context.Context, prompt string, players []*ledger.Player) *ledger.Player {
	if len(players) == 0 {
		return nil
	}
	labels := make([]string, len(players))
	for i, p := range players {
		labels[i] = fmt.Sprintf("%s (%d coins)", p.Name, p.Bank)
	}
	i, err := h.Display.PickOne(ctx, prompt, labels)
	if err != nil || i < 0 || i >= len(players) {
		return nil
	}
	return players[i]
}

func (h *Human) pickCard(ctx context.Context, prompt string, cards []*card.Card, withCost bool) *card.Card {
	if len(cards) == 0 {
		return nil
	}
	labels := make([]string, len(cards))
	for i, c := range cards {
		labels[i] = c.Name
		if withCost {
			labels[i] = fmt.Sprintf("%s (%d)", c.Name, c.Cost)
		}
	}
	i, err := h.Display.PickOne(ctx, prompt, labels)
	if err != nil || i < 0 || i >= len(cards) {
		return nil
	}
	return cards[i]
}
