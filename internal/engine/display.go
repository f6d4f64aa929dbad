package engine

import (
	"context"

	"github.com/louisbranch/harmonictook/internal/card"
)

// Display renders game output and collects human input. The game calls it
// synchronously from the turn; implementations that hand off to another
// goroutine must not touch game state after returning.
type Display interface {
	ShowEvents(events []Event)
	ShowState(state GameState)
	ShowInfo(text string)
	// PickOne returns the index of the chosen option.
	PickOne(ctx context.Context, prompt string, options []string) (int, error)
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// GameState is a read-only snapshot of the table.
type GameState struct {
	GameID  string
	Turn    int
	Current string
	Players []PlayerState
	// Market counts copies per card name, in market order.
	Market []Listing
}

// PlayerState is one seat's snapshot.
type PlayerState struct {
	Name           string
	Bank           int
	Cards          []string
	Upgrades       card.Upgrade
	Landmarks      int
	Establishments int
}

// Listing is a card available on the market.
type Listing struct {
	Name   string
	Cost   int
	Copies int
}

type nopDisplay struct{}

func (nopDisplay) ShowEvents([]Event)  {}
func (nopDisplay) ShowState(GameState) {}
func (nopDisplay) ShowInfo(string)     {}

func (nopDisplay) PickOne(context.Context, string, []string) (int, error) {
	return 0, nil
}

func (nopDisplay) Confirm(context.Context, string) (bool, error) {
	return false, nil
}
