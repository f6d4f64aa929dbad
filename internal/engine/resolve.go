package engine

import (
	"context"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

// Seat pairs a player's ledger with the policy that decides for it.
type Seat struct {
	Player *ledger.Player
	Policy Policy
}

// phases is the fixed activation order of the ordinary card kinds. Special
// cards resolve after all of them.
var phases = []card.Kind{card.KindToll, card.KindBankToRoller, card.KindBankToOwner}

// Resolve activates every card matching roll for the seat at index active
// and returns the resulting events in order. Tolls resolve first, then
// roller payouts, then owner payouts, then the special cards; within each
// kind, seats fire in seating order.
func Resolve(ctx context.Context, roll int, seats []*Seat, active int) []Event {
	r := resolver{seats: seats, active: active}
	return r.resolve(ctx, roll)
}

type resolver struct {
	seats   []*Seat
	active  int
	market  *ledger.Store
	catalog *card.Catalog
	events  []Event
}

func (r *resolver) resolve(ctx context.Context, roll int) []Event {
	if r.active < 0 || r.active >= len(r.seats) {
		return nil
	}
	for _, kind := range phases {
		for _, seat := range r.seats {
			for _, c := range seat.Player.Deck.Cards() {
				if c.Kind == kind && c.Hits(roll) {
					r.activate(ctx, seat, c)
				}
			}
		}
	}
	for _, seat := range r.seats {
		for _, c := range seat.Player.Deck.Cards() {
			if c.Kind.Special() && c.Hits(roll) {
				r.activate(ctx, seat, c)
			}
		}
	}
	return r.events
}

func (r *resolver) roller() *ledger.Player {
	return r.seats[r.active].Player
}

func (r *resolver) players() []*ledger.Player {
	out := make([]*ledger.Player, len(r.seats))
	for i, s := range r.seats {
		out[i] = s.Player
	}
	return out
}

func (r *resolver) view(seat *Seat) View {
	return View{
		Self:    seat.Player,
		Players: r.players(),
		Roller:  r.roller(),
		Market:  r.market,
		Catalog: r.catalog,
	}
}

func (r *resolver) emit(e Event) {
	r.events = append(r.events, e)
}

func (r *resolver) activate(ctx context.Context, seat *Seat, c *card.Card) {
	owner := seat.Player
	roller := r.roller()
	switch c.Kind {
	case card.KindToll:
		if owner == roller {
			return
		}
		moved := roller.Deduct(payout(owner, c))
		owner.Deposit(moved)
		r.emit(Event{Type: EventSteal, Player: owner.Name, Target: roller.Name, Card: c.Name, Value: moved, Balance: owner.Bank})
	case card.KindBankToRoller:
		if owner != roller {
			return
		}
		amount := payout(owner, c)
		if c.Factory() {
			count := owner.CountCategory(c.Multiplies)
			r.emit(Event{Type: EventFactoryCount, Player: owner.Name, Card: c.Name, Category: c.Multiplies, Value: count, Balance: owner.Bank})
			amount = c.Payout * count
		}
		owner.Deposit(amount)
		r.emit(Event{Type: EventPayout, Player: owner.Name, Card: c.Name, Value: amount, Balance: owner.Bank})
	case card.KindBankToOwner:
		amount := payout(owner, c)
		owner.Deposit(amount)
		r.emit(Event{Type: EventPayout, Player: owner.Name, Card: c.Name, Value: amount, Balance: owner.Bank})
	case card.KindCollectAll:
		if owner != roller {
			r.emit(Event{Type: EventInactive, Player: owner.Name, Card: c.Name, Balance: owner.Bank})
			return
		}
		for _, s := range r.seats {
			if s.Player == owner {
				continue
			}
			moved := s.Player.Deduct(c.Payout)
			owner.Deposit(moved)
			r.emit(Event{Type: EventCollect, Player: owner.Name, Target: s.Player.Name, Card: c.Name, Value: moved, Balance: owner.Bank})
		}
	case card.KindCollectOne:
		if owner != roller {
			r.emit(Event{Type: EventInactive, Player: owner.Name, Card: c.Name, Balance: owner.Bank})
			return
		}
		var target *ledger.Player
		if seat.Policy != nil {
			target = seat.Policy.ChooseTarget(ctx, r.view(seat))
		}
		if !r.isOpponent(owner, target) {
			r.emit(Event{Type: EventNoTarget, Player: owner.Name, Card: c.Name, Balance: owner.Bank})
			return
		}
		moved := target.Deduct(c.Payout)
		owner.Deposit(moved)
		r.emit(Event{Type: EventSteal, Player: owner.Name, Target: target.Name, Card: c.Name, Value: moved, Balance: owner.Bank})
	case card.KindSwap:
		if owner != roller {
			r.emit(Event{Type: EventInactive, Player: owner.Name, Card: c.Name, Balance: owner.Bank})
			return
		}
		r.swap(ctx, seat, c)
	}
}

func (r *resolver) swap(ctx context.Context, seat *Seat, c *card.Card) {
	owner := seat.Player
	var d SwapDecision
	if seat.Policy != nil {
		d = seat.Policy.ChooseSwap(ctx, r.view(seat))
	}
	if d.Coins {
		owner.Deposit(c.Substitute)
		r.emit(Event{Type: EventSwapCoins, Player: owner.Name, Card: c.Name, Value: c.Substitute, Balance: owner.Bank})
		return
	}
	if !r.isOpponent(owner, d.Target) || !Swappable(d.Give) || !Swappable(d.Take) {
		r.emit(Event{Type: EventNoTarget, Player: owner.Name, Card: c.Name, Balance: owner.Bank})
		return
	}
	if err := owner.Swap(d.Give, d.Target, d.Take); err != nil {
		r.emit(Event{Type: EventNoTarget, Player: owner.Name, Card: c.Name, Balance: owner.Bank})
		return
	}
	r.emit(Event{Type: EventSwap, Player: owner.Name, Target: d.Target.Name, Card: d.Take.Name, Given: d.Give.Name, Balance: owner.Bank})
}

func (r *resolver) isOpponent(owner, target *ledger.Player) bool {
	if target == nil || target == owner {
		return false
	}
	for _, s := range r.seats {
		if s.Player == target {
			return true
		}
	}
	return false
}

// payout returns the per-activation amount of c for owner, including the
// Shopping Mall bonus.
func payout(owner *ledger.Player, c *card.Card) int {
	amount := c.Payout
	if c.MallBonus && owner.Has(card.UpgradeShoppingMall) {
		amount++
	}
	return amount
}
