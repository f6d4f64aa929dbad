package bots

import (
	"context"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/engine"
	"github.com/louisbranch/harmonictook/internal/strategy"
)

// CoverageBot builds toward a deck that pays on as many roll values as
// possible. It always buys an upgrade when it can; otherwise it ranks cards
// by new coverage, then by DeltaEV.
type CoverageBot struct {
	*Bot
}

func NewCoverageBot(src Source) *CoverageBot {
	return &CoverageBot{Bot: NewBot(src)}
}

// ChooseDice rolls two dice only when they cover strictly more of the deck.
func (b *CoverageBot) ChooseDice(_ context.Context, view engine.View) int {
	p := view.Self
	if !p.Has(card.UpgradeTrainStation) {
		return 1
	}
	if strategy.OwnTurnCoverage(p, 2) > strategy.OwnTurnCoverage(p, 1) {
		return 2
	}
	return 1
}

func (b *CoverageBot) ChooseCard(_ context.Context, view engine.View, options []*card.Card) string {
	if len(options) == 0 {
		return ""
	}
	var pool []*card.Card
	for _, c := range options {
		if c.Kind == card.KindUpgrade {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = options
	}

	players := playersOf(view)
	var (
		best            *card.Card
		bestCov, bestEV float64
	)
	for _, c := range pool {
		cov := strategy.DeltaCoverage(c, view.Self, players)
		ev := strategy.DeltaEV(c, view.Self, players, 1, options...)
		if best == nil || cov > bestCov || (cov == bestCov && ev > bestEV) {
			best, bestCov, bestEV = c, cov, ev
		}
	}
	return best.Name
}

func (b *CoverageBot) ChooseSwap(ctx context.Context, view engine.View) engine.SwapDecision {
	return b.swap(ctx, view, b.ChooseCard)
}
