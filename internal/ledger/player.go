package ledger

import (
	"errors"
	"fmt"

	"github.com/louisbranch/harmonictook/internal/card"
)

var (
	// ErrUnknownCard is returned when a purchase names a card the market lacks.
	ErrUnknownCard = errors.New("card not available")
	// ErrInsufficientFunds is returned when a purchase costs more than the bank.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNotHeld is returned when a swap names a card its side does not hold.
	ErrNotHeld = errors.New("card not held")
	// ErrAlreadyOwned is returned when a swap would give a player a second
	// copy of a unique card.
	ErrAlreadyOwned = errors.New("unique card already owned")
)

// Player is one seat's ownership ledger.
type Player struct {
	Name     string
	Bank     int
	Deck     *Store
	Upgrades card.Upgrade
}

// NewPlayer returns a player holding fresh copies of the catalog's starting
// cards and its starting bank.
func NewPlayer(name string, catalog *card.Catalog) *Player {
	p := &Player{Name: name, Bank: catalog.StartingBank(), Deck: NewStore()}
	for _, t := range catalog.Starting() {
		c := card.New(t)
		c.Owner = name
		p.Deck.Insert(c)
	}
	return p
}

// Deposit adds amount to the bank.
func (p *Player) Deposit(amount int) {
	if amount > 0 {
		p.Bank += amount
	}
}

// Deduct removes up to amount from the bank and returns what was removed.
// The bank never goes below zero.
func (p *Player) Deduct(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > p.Bank {
		amount = p.Bank
	}
	p.Bank -= amount
	return amount
}

// Has reports whether the player holds the capability u.
func (p *Player) Has(u card.Upgrade) bool {
	return p.Upgrades&u == u
}

// Grant sets the capability u.
func (p *Player) Grant(u card.Upgrade) {
	p.Upgrades |= u
}

// Revoke clears the capability u.
func (p *Player) Revoke(u card.Upgrade) {
	p.Upgrades &^= u
}

// Winner reports whether all four capabilities are held.
func (p *Player) Winner() bool {
	return p.Has(card.AllUpgrades)
}

// Remaining lists the capabilities not yet held, cheapest first.
func (p *Player) Remaining() []card.Upgrade {
	var out []card.Upgrade
	for _, u := range card.Upgrades() {
		if !p.Has(u) {
			out = append(out, u)
		}
	}
	return out
}

// Landmarks counts held capabilities.
func (p *Player) Landmarks() int {
	return 4 - len(p.Remaining())
}

// CountCategory counts held cards in category.
func (p *Player) CountCategory(category int) int {
	n := 0
	for _, c := range p.Deck.cards {
		if c.Category == category {
			n++
		}
	}
	return n
}

// Establishments counts held cards that are not upgrades.
func (p *Player) Establishments() int {
	n := 0
	for _, c := range p.Deck.cards {
		if c.Kind != card.KindUpgrade {
			n++
		}
	}
	return n
}

// Owns reports whether the player holds a card named name.
func (p *Player) Owns(name string) bool {
	return p.Deck.Has(name)
}

// Buy moves the first affordable copy of name from market into the deck,
// pays for it, and grants its capability if it is an upgrade.
func (p *Player) Buy(name string, market *Store) (*card.Card, error) {
	c, ok := market.Find(name, -1)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCard, name)
	}
	if c.Cost > p.Bank {
		return nil, fmt.Errorf("%w: %s costs %d, bank is %d", ErrInsufficientFunds, name, c.Cost, p.Bank)
	}
	market.Remove(c)
	p.Bank -= c.Cost
	p.Acquire(c)
	return c, nil
}

// Acquire takes ownership of c without payment.
func (p *Player) Acquire(c *card.Card) {
	c.Owner = p.Name
	p.Deck.Insert(c)
	if c.Kind == card.KindUpgrade {
		p.Grant(c.Upgrade)
	}
}

// Release gives up ownership of c and reports whether it was held.
func (p *Player) Release(c *card.Card) bool {
	if !p.Deck.Remove(c) {
		return false
	}
	c.Owner = ""
	if c.Kind == card.KindUpgrade {
		p.Revoke(c.Upgrade)
	}
	return true
}

// CanReceive reports whether c may join p's deck without a second copy of a
// unique card.
func (p *Player) CanReceive(c *card.Card) bool {
	return !c.Unique() || !p.Owns(c.Name)
}

// Swap exchanges give (held by p) for take (held by other). Both moves happen
// or neither does.
func (p *Player) Swap(give *card.Card, other *Player, take *card.Card) error {
	if !p.Deck.Contains(give) {
		return fmt.Errorf("%w: %s by %s", ErrNotHeld, give.Name, p.Name)
	}
	if !other.Deck.Contains(take) {
		return fmt.Errorf("%w: %s by %s", ErrNotHeld, take.Name, other.Name)
	}
	if !p.CanReceive(take) {
		return fmt.Errorf("%w: %s by %s", ErrAlreadyOwned, take.Name, p.Name)
	}
	if !other.CanReceive(give) {
		return fmt.Errorf("%w: %s by %s", ErrAlreadyOwned, give.Name, other.Name)
	}
	p.Deck.Remove(give)
	other.Deck.Remove(take)
	give.Owner = other.Name
	take.Owner = p.Name
	other.Deck.Insert(give)
	p.Deck.Insert(take)
	return nil
}

// Unbuy reverses a purchase of c: the card returns to market, the cost is
// refunded, and an upgrade capability is cleared. It reports whether c was
// held.
func (p *Player) Unbuy(c *card.Card, market *Store) bool {
	if !p.Release(c) {
		return false
	}
	p.Bank += c.Cost
	market.Insert(c)
	return true
}

// Clone returns a hypothetical copy: the deck and flags can be changed without
// touching p, while the cards themselves are shared.
func (p *Player) Clone() *Player {
	clone := *p
	clone.Deck = p.Deck.Clone()
	return &clone
}
