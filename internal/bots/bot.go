// Package bots implements engine.Policy for computer and human players.
package bots

import (
	"context"
	"time"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/core/dice"
	"github.com/louisbranch/harmonictook/internal/engine"
	"github.com/louisbranch/harmonictook/internal/ledger"
	"github.com/louisbranch/harmonictook/internal/strategy"
)

// Source draws uniform integers in [0, n).
type Source interface {
	IntN(n int) int
}

// rerollBelow is the roll under which the default bot rerolls.
const rerollBelow = 5

// Bot plays at random: it buys whatever it can afford and rolls every die
// it is allowed.
type Bot struct {
	src Source
}

// NewBot returns a random bot drawing from src. A nil src is seeded from
// the clock.
func NewBot(src Source) *Bot {
	if src == nil {
		src = dice.NewSource(time.Now().UnixNano())
	}
	return &Bot{src: src}
}

func (b *Bot) ChooseDice(_ context.Context, view engine.View) int {
	if view.Self.Has(card.UpgradeTrainStation) {
		return 2
	}
	return 1
}

func (b *Bot) ChooseReroll(_ context.Context, view engine.View, roll int) bool {
	return view.Self.Has(card.UpgradeRadioTower) && roll < rerollBelow
}

// ChooseTarget picks a random opponent that is not rolling.
func (b *Bot) ChooseTarget(_ context.Context, view engine.View) *ledger.Player {
	targets := view.Targets()
	if len(targets) == 0 {
		return nil
	}
	return targets[b.src.IntN(len(targets))]
}

func (b *Bot) ChooseAction(_ context.Context, view engine.View) engine.Action {
	if len(view.Market.Distinct(view.Self.Bank)) == 0 {
		return engine.ActionPass
	}
	return engine.ActionBuy
}

func (b *Bot) ChooseCard(_ context.Context, _ engine.View, options []*card.Card) string {
	if len(options) == 0 {
		return ""
	}
	return options[b.src.IntN(len(options))].Name
}

func (b *Bot) ChooseSwap(ctx context.Context, view engine.View) engine.SwapDecision {
	return b.swap(ctx, view, b.ChooseCard)
}

type chooser func(ctx context.Context, view engine.View, options []*card.Card) string

// swap takes the card choose prefers from a random target and gives away
// the lowest-scoring card. Without a target or cards on both sides it takes
// the coins.
func (b *Bot) swap(ctx context.Context, view engine.View, choose chooser) engine.SwapDecision {
	target := b.ChooseTarget(ctx, view)
	if target == nil {
		return engine.SwapDecision{Coins: true}
	}
	mine := receivableBy(tradeable(view.Self), target)
	theirs := receivableBy(tradeable(target), view.Self)
	if len(mine) == 0 || len(theirs) == 0 {
		return engine.SwapDecision{Coins: true}
	}
	name := choose(ctx, view, theirs)
	take := byName(theirs, name)
	if take == nil {
		return engine.SwapDecision{Coins: true}
	}
	give := mine[0]
	for _, c := range mine[1:] {
		if card.Score(c) < card.Score(give) {
			give = c
		}
	}
	return engine.SwapDecision{Target: target, Give: give, Take: take}
}

func tradeable(p *ledger.Player) []*card.Card {
	var out []*card.Card
	for _, c := range p.Deck.Cards() {
		if strategy.Tradeable(c) {
			out = append(out, c)
		}
	}
	return out
}

func receivableBy(cards []*card.Card, p *ledger.Player) []*card.Card {
	var out []*card.Card
	for _, c := range cards {
		if p.CanReceive(c) {
			out = append(out, c)
		}
	}
	return out
}

func byName(cards []*card.Card, name string) *card.Card {
	for _, c := range cards {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func catalogOf(view engine.View) *card.Catalog {
	if view.Catalog != nil {
		return view.Catalog
	}
	return card.Standard()
}

func playersOf(view engine.View) []*ledger.Player {
	if len(view.Players) > 0 {
		return view.Players
	}
	return []*ledger.Player{view.Self}
}

// diceByIncome returns the dice count with the higher mean own-turn income.
// Ties go to two dice.
func diceByIncome(view engine.View) int {
	p := view.Self
	if !p.Has(card.UpgradeTrainStation) {
		return 1
	}
	players := playersOf(view)
	one := p.Clone()
	one.Revoke(card.UpgradeTrainStation)
	oneView := swapIn(players, p, one)
	if strategy.OwnTurnPMF(p, players).Mean() >= strategy.OwnTurnPMF(one, oneView).Mean() {
		return 2
	}
	return 1
}

func swapIn(players []*ledger.Player, old, replacement *ledger.Player) []*ledger.Player {
	out := make([]*ledger.Player, len(players))
	for i, p := range players {
		if p == old {
			out[i] = replacement
		} else {
			out[i] = p
		}
	}
	return out
}

// targetsOf returns Self followed by the opponents a swap may reach.
func targetsOf(view engine.View) []*ledger.Player {
	return append([]*ledger.Player{view.Self}, view.Targets()...)
}
