package engine

import (
	"context"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

// Action is a buy-phase decision.
type Action int

const (
	ActionPass Action = iota
	ActionBuy
)

// String returns "buy" or "pass".
func (a Action) String() string {
	if a == ActionBuy {
		return "buy"
	}
	return "pass"
}

// View is what a policy sees when asked for a decision. Policies must treat
// it as read-only.
type View struct {
	Self    *ledger.Player
	Players []*ledger.Player
	// Roller is the player whose turn it is.
	Roller  *ledger.Player
	Market  *ledger.Store
	Catalog *card.Catalog
}

// Opponents returns every player except Self, in seating order.
func (v View) Opponents() []*ledger.Player {
	out := make([]*ledger.Player, 0, len(v.Players))
	for _, p := range v.Players {
		if p != v.Self {
			out = append(out, p)
		}
	}
	return out
}

// Targets returns the opponents that are not rolling.
func (v View) Targets() []*ledger.Player {
	out := make([]*ledger.Player, 0, len(v.Players))
	for _, p := range v.Players {
		if p != v.Self && p != v.Roller {
			out = append(out, p)
		}
	}
	return out
}

// SwapDecision is a policy's answer to a swap card activation. Coins takes
// the card's substitute payout; otherwise Give (held by the owner) and Take
// (held by Target) are exchanged. The zero value declines.
type SwapDecision struct {
	Coins  bool
	Target *ledger.Player
	Give   *card.Card
	Take   *card.Card
}

// Swappable reports whether c can change hands in a swap.
func Swappable(c *card.Card) bool {
	return c != nil && c.Swappable()
}

// Policy makes a seat's decisions. Calls happen synchronously from the turn
// and may block for as long as the implementation needs; empty option lists
// must yield "" or ActionPass.
type Policy interface {
	// ChooseDice returns 1 or 2.
	ChooseDice(ctx context.Context, view View) int
	// ChooseReroll reports whether to replace roll. Only asked with the Radio Tower.
	ChooseReroll(ctx context.Context, view View, roll int) bool
	// ChooseTarget picks an opponent for a targeted card, or nil.
	ChooseTarget(ctx context.Context, view View) *ledger.Player
	// ChooseAction decides whether to buy this turn.
	ChooseAction(ctx context.Context, view View) Action
	// ChooseCard picks a card name from options, or "".
	ChooseCard(ctx context.Context, view View, options []*card.Card) string
	// ChooseSwap answers a swap card activation.
	ChooseSwap(ctx context.Context, view View) SwapDecision
}
