package engine

// EventType identifies the kind of a game event.
type EventType string

// Dice events.
const (
	// EventRoll records the dice a player rolled.
	EventRoll EventType = "dice.rolled"
	// EventReroll records a Radio Tower reroll that replaced the first roll.
	EventReroll EventType = "dice.rerolled"
)

// Card activation events.
const (
	// EventSteal records coins moved from one player to another by a card.
	EventSteal EventType = "card.steal"
	// EventPayout records coins paid from the bank to a card owner.
	EventPayout EventType = "card.payout"
	// EventFactoryCount records the category count a factory multiplied by.
	EventFactoryCount EventType = "card.factory_count"
	// EventCollect records coins collected from one player by a collect-all card.
	EventCollect EventType = "card.collect"
	// EventNoTarget records a targeted card that found nobody to act on.
	EventNoTarget EventType = "card.no_target"
	// EventInactive records a card that matched the roll but did not activate.
	EventInactive EventType = "card.inactive"
	// EventSwap records an exchange of cards between two players.
	EventSwap EventType = "card.swap"
	// EventSwapCoins records coins taken instead of a swap.
	EventSwapCoins EventType = "card.swap_coins"
)

// Market events.
const (
	// EventBuy records a completed purchase.
	EventBuy EventType = "market.buy"
	// EventBuyFailed records a purchase that named an unknown or unaffordable card.
	EventBuyFailed EventType = "market.buy_failed"
	// EventPass records a player declining to buy.
	EventPass EventType = "market.pass"
)

// Turn and game events.
const (
	// EventDoublesBonus records an extra turn earned by doubles.
	EventDoublesBonus EventType = "turn.doubles_bonus"
	// EventWin records the player who completed all four upgrades.
	EventWin EventType = "game.won"
)

// Domain returns the prefix of the event type (for example "card").
func (t EventType) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

// Event is an immutable record of one observable game occurrence.
type Event struct {
	Type EventType
	// Player is the actor or recipient.
	Player string
	// Target is the counterpart: the payer of a steal or collect, or the
	// other side of a swap.
	Target string
	// Card names the card involved; for swaps, the card taken.
	Card string
	// Given names the card handed over in a swap.
	Given string
	// Value is the coin amount moved, the roll total, or the factory count.
	Value int
	// Category is set on factory counts.
	Category int
	Dice     []int
	Doubles  bool
	// Balance is Player's bank after the event.
	Balance int
}

// Filter returns the events of type t.
func Filter(events []Event, t EventType) []Event {
	var out []Event
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
