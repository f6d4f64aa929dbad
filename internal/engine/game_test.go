package engine

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/core/dice"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

type memoryRecorder struct {
	records []TurnRecord
	err     error
}

func (m *memoryRecorder) AppendTurn(_ context.Context, rec TurnRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func newTestGame(t *testing.T, src dice.Source, seats ...*Seat) *Game {
	t.Helper()
	g, err := New(Config{ID: "game-1", Seats: seats, Dice: src})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func TestNewValidatesSeats(t *testing.T) {
	one := []*Seat{{Player: ledger.NewPlayer("a", card.Standard())}}
	if _, err := New(Config{Seats: one}); !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("expected ErrTooFewPlayers, got %v", err)
	}
	five := make([]*Seat, 5)
	for i := range five {
		five[i] = &Seat{Player: ledger.NewPlayer("p", card.Standard())}
	}
	if _, err := New(Config{Seats: five}); !errors.Is(err, ErrTooManyPlayers) {
		t.Fatalf("expected ErrTooManyPlayers, got %v", err)
	}
	if _, err := New(Config{Seats: []*Seat{one[0], {}}}); !errors.Is(err, ErrMissingPlayer) {
		t.Fatalf("expected ErrMissingPlayer, got %v", err)
	}
}

func TestNewStocksMarketAndReserve(t *testing.T) {
	seats := seatsOf(ledger.NewPlayer("a", card.Standard()), ledger.NewPlayer("b", card.Standard()), ledger.NewPlayer("c", card.Standard()))
	g := newTestGame(t, dice.NewSequence(1), seats...)

	market := g.Market.Freq()
	reserve := g.Reserve.Freq()
	for _, tmpl := range card.Standard().Unique() {
		if market[tmpl.Name] != 1 || reserve[tmpl.Name] != 2 {
			t.Fatalf("%s: market %d reserve %d, want 1/2", tmpl.Name, market[tmpl.Name], reserve[tmpl.Name])
		}
	}
	if market["Wheat Field"] != 6 || reserve["Wheat Field"] != 0 {
		t.Fatalf("wheat field: market %d reserve %d", market["Wheat Field"], reserve["Wheat Field"])
	}
}

func TestNextTurnBuysAndAdvances(t *testing.T) {
	a := ledger.NewPlayer("a", card.Standard())
	b := ledger.NewPlayer("b", card.Standard())
	seats := seatsOf(a, b)
	seats[0].Policy = &scriptPolicy{buy: "Ranch"}
	rec := &memoryRecorder{}
	g, err := New(Config{ID: "game-1", Seats: seats, Dice: dice.NewSequence(4), Recorder: rec})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}

	events, err := g.NextTurn(context.Background())
	if err != nil {
		t.Fatalf("next turn: %v", err)
	}

	assertTypes(t, events, EventRoll, EventBuy)
	if a.Bank != 2 || !a.Owns("Ranch") {
		t.Fatalf("bank = %d deck = %v", a.Bank, a.Deck.Names(-1))
	}
	if g.Current() != seats[1] || g.Turn() != 1 {
		t.Fatalf("current = %s turn = %d", g.Current().Player.Name, g.Turn())
	}
	if len(g.History()) != 1 || len(rec.records) != 1 {
		t.Fatalf("history = %d records = %d", len(g.History()), len(rec.records))
	}
	got := rec.records[0]
	if got.GameID != "game-1" || got.Player != "a" || got.Roll != 4 || len(got.Players) != 2 {
		t.Fatalf("record = %+v", got)
	}
	if got.Players[0].Bank != 2 {
		t.Fatalf("snapshot bank = %d", got.Players[0].Bank)
	}
}

func TestNextTurnPassesWhenNothingAffordable(t *testing.T) {
	a := newPlayer(t, "a", 0)
	seats := seatsOf(a, newPlayer(t, "b", 0))
	seats[0].Policy = &scriptPolicy{buy: "Mine"}
	g := newTestGame(t, dice.NewSequence(4), seats...)

	events, err := g.NextTurn(context.Background())
	if err != nil {
		t.Fatalf("next turn: %v", err)
	}
	assertTypes(t, events, EventRoll, EventPass)
}

func TestNextTurnRecordsFailedPurchase(t *testing.T) {
	a := newPlayer(t, "a", 3)
	seats := seatsOf(a, newPlayer(t, "b", 0))
	seats[0].Policy = &scriptPolicy{buy: "Mine"}
	var logs bytes.Buffer
	g, err := New(Config{Seats: seats, Dice: dice.NewSequence(4), Logger: log.New(&logs, "", 0)})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}

	events, err := g.NextTurn(context.Background())
	if err != nil {
		t.Fatalf("next turn: %v", err)
	}
	assertTypes(t, events, EventRoll, EventBuyFailed)
	if a.Bank != 3 {
		t.Fatalf("bank = %d, want 3", a.Bank)
	}
	if !strings.Contains(logs.String(), "failed to buy") {
		t.Fatalf("log = %q", logs.String())
	}
}

func TestNextTurnOneDieWithoutTrainStation(t *testing.T) {
	seats := seatsOf(newPlayer(t, "a", 0), newPlayer(t, "b", 0))
	seats[0].Policy = &scriptPolicy{dice: 2}
	src := dice.NewSequence(2, 2)
	g := newTestGame(t, src, seats...)

	if _, err := g.NextTurn(context.Background()); err != nil {
		t.Fatalf("next turn: %v", err)
	}
	if src.Calls() != 1 || len(g.LastRoll().Dice) != 1 {
		t.Fatalf("rolled %d dice", src.Calls())
	}
}

func TestDoublesBonusKeepsTurn(t *testing.T) {
	a := newPlayer(t, "a", 0, "Train Station", "Amusement Park")
	seats := seatsOf(a, newPlayer(t, "b", 0))
	seats[0].Policy = &scriptPolicy{dice: 2}
	g := newTestGame(t, dice.NewSequence(3, 3), seats...)

	events, err := g.NextTurn(context.Background())
	if err != nil {
		t.Fatalf("next turn: %v", err)
	}

	assertTypes(t, events, EventRoll, EventPass, EventDoublesBonus)
	if !events[0].Doubles || events[0].Value != 6 {
		t.Fatalf("roll = %+v", events[0])
	}
	if g.Current() != seats[0] {
		t.Fatal("doubles with the Amusement Park must keep the turn")
	}
}

func TestDoublesWithoutParkAdvances(t *testing.T) {
	a := newPlayer(t, "a", 0, "Train Station")
	seats := seatsOf(a, newPlayer(t, "b", 0))
	seats[0].Policy = &scriptPolicy{dice: 2}
	g := newTestGame(t, dice.NewSequence(3, 3), seats...)

	events, err := g.NextTurn(context.Background())
	if err != nil {
		t.Fatalf("next turn: %v", err)
	}
	assertTypes(t, events, EventRoll, EventPass)
	if g.Current() != seats[1] {
		t.Fatal("expected the turn to pass")
	}
}

func TestRadioTowerReroll(t *testing.T) {
	a := newPlayer(t, "a", 0, "Wheat Field", "Radio Tower")
	policy := &scriptPolicy{reroll: true}
	seats := seatsOf(a, newPlayer(t, "b", 0))
	seats[0].Policy = policy
	g := newTestGame(t, dice.NewSequence(1, 4), seats...)

	events, err := g.NextTurn(context.Background())
	if err != nil {
		t.Fatalf("next turn: %v", err)
	}

	assertTypes(t, events, EventRoll, EventReroll, EventPass)
	if len(policy.rerollFor) != 1 || policy.rerollFor[0] != 1 {
		t.Fatalf("reroll asked for %v", policy.rerollFor)
	}
	if g.LastRoll().Total != 4 || a.Bank != 0 {
		t.Fatalf("last roll = %d bank = %d; the first roll must not resolve", g.LastRoll().Total, a.Bank)
	}
}

func TestWinEndsGame(t *testing.T) {
	a := newPlayer(t, "a", 30, "Wheat Field", "Train Station", "Shopping Mall", "Amusement Park")
	seats := seatsOf(a, newPlayer(t, "b", 0))
	seats[0].Policy = &scriptPolicy{buy: "Radio Tower"}
	g := newTestGame(t, dice.NewSequence(1), seats...)

	events, err := g.NextTurn(context.Background())
	if err != nil {
		t.Fatalf("next turn: %v", err)
	}

	assertTypes(t, events, EventRoll, EventPayout, EventBuy, EventWin)
	if g.Winner() != seats[0] {
		t.Fatal("expected a to win")
	}
	if _, err := g.NextTurn(context.Background()); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestRunReturnsExistingWinner(t *testing.T) {
	a := newPlayer(t, "a", 0, "Train Station", "Shopping Mall", "Amusement Park", "Radio Tower")
	g := newTestGame(t, dice.NewSequence(1), seatsOf(newPlayer(t, "b", 0), a)...)

	winner, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if winner.Player != a || g.Turn() != 0 {
		t.Fatalf("winner = %s after %d turns", winner.Player.Name, g.Turn())
	}
}

func TestRunStopsAtTurnLimit(t *testing.T) {
	seats := seatsOf(newPlayer(t, "a", 0), newPlayer(t, "b", 0))
	g, err := New(Config{Seats: seats, Dice: dice.NewSequence(4), MaxTurns: 3})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if _, err := g.Run(context.Background()); !errors.Is(err, ErrTurnLimit) {
		t.Fatalf("expected ErrTurnLimit, got %v", err)
	}
	if g.Turn() != 3 {
		t.Fatalf("turns = %d, want 3", g.Turn())
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	seats := seatsOf(newPlayer(t, "a", 0), newPlayer(t, "b", 0))
	g := newTestGame(t, dice.NewSequence(4), seats...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNextTurnRejectsReentry(t *testing.T) {
	seats := seatsOf(newPlayer(t, "a", 3), newPlayer(t, "b", 0))
	var g *Game
	var nested error
	seats[0].Policy = &scriptPolicy{onAction: func() {
		_, nested = g.NextTurn(context.Background())
	}}
	g = newTestGame(t, dice.NewSequence(4), seats...)

	if _, err := g.NextTurn(context.Background()); err != nil {
		t.Fatalf("next turn: %v", err)
	}
	if !errors.Is(nested, ErrTurnInProgress) {
		t.Fatalf("nested turn error = %v, want ErrTurnInProgress", nested)
	}
}

func TestRecorderFailureStopsTurn(t *testing.T) {
	seats := seatsOf(newPlayer(t, "a", 0), newPlayer(t, "b", 0))
	boom := errors.New("disk full")
	g, err := New(Config{Seats: seats, Dice: dice.NewSequence(4), Recorder: &memoryRecorder{err: boom}})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if _, err := g.NextTurn(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected recorder error, got %v", err)
	}
}

func TestPurchaseOptionsAreAffordableAndDistinct(t *testing.T) {
	seats := seatsOf(newPlayer(t, "a", 1), newPlayer(t, "b", 0))
	g := newTestGame(t, dice.NewSequence(4), seats...)

	options := g.PurchaseOptions()
	names := map[string]bool{}
	for _, c := range options {
		if c.Cost > 1 {
			t.Fatalf("%s costs %d", c.Name, c.Cost)
		}
		if names[c.Name] {
			t.Fatalf("%s listed twice", c.Name)
		}
		names[c.Name] = true
	}
	if len(options) != 3 {
		t.Fatalf("options = %d, want 3", len(options))
	}
}

func TestStateSnapshot(t *testing.T) {
	seats := seatsOf(ledger.NewPlayer("a", card.Standard()), ledger.NewPlayer("b", card.Standard()))
	g := newTestGame(t, dice.NewSequence(4), seats...)

	state := g.State()
	if state.Current != "a" || len(state.Players) != 2 {
		t.Fatalf("state = %+v", state)
	}
	if state.Players[0].Bank != 3 || state.Players[0].Establishments != 2 {
		t.Fatalf("player state = %+v", state.Players[0])
	}
	for _, l := range state.Market {
		if l.Name == "Wheat Field" && l.Copies != 6 {
			t.Fatalf("wheat field copies = %d", l.Copies)
		}
	}
}
