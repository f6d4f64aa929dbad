package engine

import (
	"context"
	"time"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

// TurnRecord is the immutable account of one completed turn.
type TurnRecord struct {
	GameID    string
	Turn      int
	Player    string
	Dice      []int
	Roll      int
	Doubles   bool
	Events    []Event
	Players   []PlayerSnapshot
	Completed time.Time
}

// PlayerSnapshot is a player's holdings at the end of a turn.
type PlayerSnapshot struct {
	Name     string
	Bank     int
	Cards    []string
	Upgrades card.Upgrade
}

// Recorder receives each turn record as the game appends it.
type Recorder interface {
	AppendTurn(ctx context.Context, record TurnRecord) error
}

func snapshot(p *ledger.Player) PlayerSnapshot {
	return PlayerSnapshot{
		Name:     p.Name,
		Bank:     p.Bank,
		Cards:    cardNames(p.Deck),
		Upgrades: p.Upgrades,
	}
}

func cardNames(s *ledger.Store) []string {
	cards := s.Cards()
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Name
	}
	return names
}
