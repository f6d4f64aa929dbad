// Package ledger holds ownership state: sorted card stores and players.
package ledger

import (
	"sort"

	"github.com/louisbranch/harmonictook/internal/card"
)

// Store is an ordered multiset of cards kept sorted by card.Compare. The
// market, the reserve, and every player deck are stores.
type Store struct {
	cards []*card.Card
}

// NewStore returns a store holding cards in sorted order.
func NewStore(cards ...*card.Card) *Store {
	s := &Store{}
	for _, c := range cards {
		s.Insert(c)
	}
	return s
}

// Len returns the number of cards.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.cards)
}

// Cards returns a copy of the sorted contents.
func (s *Store) Cards() []*card.Card {
	if s == nil {
		return nil
	}
	out := make([]*card.Card, len(s.cards))
	copy(out, s.cards)
	return out
}

// Insert adds c after any cards that compare equal to it.
func (s *Store) Insert(c *card.Card) {
	if c == nil {
		return
	}
	i := sort.Search(len(s.cards), func(i int) bool {
		return card.Compare(s.cards[i], c) > 0
	})
	s.cards = append(s.cards, nil)
	copy(s.cards[i+1:], s.cards[i:])
	s.cards[i] = c
}

// Remove deletes c by identity. It reports whether c was present.
func (s *Store) Remove(c *card.Card) bool {
	for i, held := range s.cards {
		if held == c {
			s.cards = append(s.cards[:i], s.cards[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether c is held by identity.
func (s *Store) Contains(c *card.Card) bool {
	for _, held := range s.cards {
		if held == c {
			return true
		}
	}
	return false
}

// Find returns the first card named name whose cost does not exceed maxCost.
// A negative maxCost means no ceiling.
func (s *Store) Find(name string, maxCost int) (*card.Card, bool) {
	if s == nil {
		return nil, false
	}
	for _, c := range s.cards {
		if c.Name == name && (maxCost < 0 || c.Cost <= maxCost) {
			return c, true
		}
	}
	return nil, false
}

// Has reports whether any card is named name.
func (s *Store) Has(name string) bool {
	_, ok := s.Find(name, -1)
	return ok
}

// Take removes and returns the first card named name.
func (s *Store) Take(name string) (*card.Card, bool) {
	c, ok := s.Find(name, -1)
	if !ok {
		return nil, false
	}
	s.Remove(c)
	return c, true
}

// Names returns the distinct card names affordable under maxCost, in deck
// order. A negative maxCost means no ceiling.
func (s *Store) Names(maxCost int) []string {
	var names []string
	for _, c := range s.Distinct(maxCost) {
		names = append(names, c.Name)
	}
	return names
}

// Distinct returns one card per name affordable under maxCost, in deck order.
func (s *Store) Distinct(maxCost int) []*card.Card {
	if s == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []*card.Card
	for _, c := range s.cards {
		if seen[c.Name] || (maxCost >= 0 && c.Cost > maxCost) {
			continue
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	return out
}

// Freq counts copies per card name.
func (s *Store) Freq() map[string]int {
	freq := make(map[string]int)
	if s == nil {
		return freq
	}
	for _, c := range s.cards {
		freq[c.Name]++
	}
	return freq
}

// Clone returns a store sharing card pointers but not the backing slice.
func (s *Store) Clone() *Store {
	if s == nil {
		return &Store{}
	}
	return &Store{cards: s.Cards()}
}
