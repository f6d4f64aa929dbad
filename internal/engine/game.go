// Package engine runs the turn state machine: dice, card activation,
// purchases, and the unique-card market bookkeeping.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/core/dice"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

const tracerName = "github.com/louisbranch/harmonictook/internal/engine"

var (
	// ErrTooFewPlayers is returned when a game is created with fewer than two seats.
	ErrTooFewPlayers = errors.New("a game needs at least two players")
	// ErrTooManyPlayers is returned when a game is created with more than four seats.
	ErrTooManyPlayers = errors.New("a game seats at most four players")
	// ErrMissingPlayer is returned when a seat has no player ledger.
	ErrMissingPlayer = errors.New("seat has no player")
	// ErrTurnInProgress is returned when NextTurn is called while another turn runs.
	ErrTurnInProgress = errors.New("turn already in progress")
	// ErrGameOver is returned when NextTurn is called after a player has won.
	ErrGameOver = errors.New("game is over")
	// ErrTurnLimit is returned by Run when MaxTurns pass without a winner.
	ErrTurnLimit = errors.New("turn limit reached")
)

// Phase is a step of the turn state machine.
type Phase int

const (
	PhaseTurnStart Phase = iota
	PhaseRolling
	PhaseRerolling
	PhaseTriggering
	PhaseBuying
	PhaseTurnEnd
)

var phaseNames = [...]string{"turn_start", "rolling", "rerolling", "triggering", "buying", "turn_end"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Config holds the dependencies of a game.
type Config struct {
	// ID identifies the game in records. Optional.
	ID      string
	Catalog *card.Catalog
	Seats   []*Seat
	// Dice defaults to a source seeded from the clock.
	Dice dice.Source
	// Display defaults to discarding all output.
	Display Display
	// Recorder is optional.
	Recorder Recorder
	// Logger is optional; nil disables turn logging.
	Logger *log.Logger
	// MaxTurns bounds Run; zero means unbounded.
	MaxTurns int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Game is a running table. Only one turn may run at a time.
type Game struct {
	ID      string
	Seats   []*Seat
	Market  *ledger.Store
	Reserve *ledger.Store

	catalog  *card.Catalog
	dice     dice.Source
	display  Display
	recorder Recorder
	logger   *log.Logger
	tracer   trace.Tracer
	maxTurns int
	now      func() time.Time

	mu      sync.Mutex
	turn    int
	current int
	phase   Phase
	last    dice.Result
	winner  *Seat
	history []TurnRecord
}

// New builds a game with a freshly stocked market.
func New(cfg Config) (*Game, error) {
	if len(cfg.Seats) < 2 {
		return nil, ErrTooFewPlayers
	}
	if len(cfg.Seats) > 4 {
		return nil, ErrTooManyPlayers
	}
	for i, s := range cfg.Seats {
		if s == nil || s.Player == nil {
			return nil, fmt.Errorf("%w: seat %d", ErrMissingPlayer, i)
		}
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = card.Standard()
	}
	g := &Game{
		ID:       cfg.ID,
		Seats:    cfg.Seats,
		catalog:  catalog,
		dice:     cfg.Dice,
		display:  cfg.Display,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
		tracer:   otel.Tracer(tracerName),
		maxTurns: cfg.MaxTurns,
		now:      cfg.Now,
	}
	if g.dice == nil {
		g.dice = dice.NewSource(time.Now().UnixNano())
	}
	if g.display == nil {
		g.display = nopDisplay{}
	}
	if g.now == nil {
		g.now = time.Now
	}
	g.Market, g.Reserve = NewMarket(catalog, len(cfg.Seats))
	return g, nil
}

// Catalog returns the card catalog in play.
func (g *Game) Catalog() *card.Catalog {
	return g.catalog
}

// Turn returns the number of turns started so far.
func (g *Game) Turn() int {
	return g.turn
}

// Current returns the seat whose turn is next.
func (g *Game) Current() *Seat {
	return g.Seats[g.current]
}

// Phase returns the state machine position of the running or last turn.
func (g *Game) Phase() Phase {
	return g.phase
}

// LastRoll returns the roll that resolved most recently.
func (g *Game) LastRoll() dice.Result {
	return g.last
}

// Winner returns the winning seat, or nil while the game is open.
func (g *Game) Winner() *Seat {
	if g.winner != nil {
		return g.winner
	}
	for _, s := range g.Seats {
		if s.Player.Winner() {
			g.winner = s
			return s
		}
	}
	return nil
}

// History returns the records of completed turns.
func (g *Game) History() []TurnRecord {
	out := make([]TurnRecord, len(g.history))
	copy(out, g.history)
	return out
}

// Players returns the players in seating order.
func (g *Game) Players() []*ledger.Player {
	out := make([]*ledger.Player, len(g.Seats))
	for i, s := range g.Seats {
		out[i] = s.Player
	}
	return out
}

// View returns what seat sees on the current turn.
func (g *Game) View(seat *Seat) View {
	return View{
		Self:    seat.Player,
		Players: g.Players(),
		Roller:  g.Seats[g.current].Player,
		Market:  g.Market,
		Catalog: g.catalog,
	}
}

// PurchaseOptions lists one market copy per card the current player can
// afford, cheapest hit first.
func (g *Game) PurchaseOptions() []*card.Card {
	return g.Market.Distinct(g.Seats[g.current].Player.Bank)
}

// Reconcile runs the unique-card market pass for the seat at index active.
func (g *Game) Reconcile(active int) {
	Reconcile(g.catalog, g.Seats[active].Player, g.Market, g.Reserve)
}

// CheckInvariant panics if the seat at index active could buy a duplicate
// unique card.
func (g *Game) CheckInvariant(active int) {
	CheckInvariant(g.catalog, g.Seats[active].Player, g.Market)
}

// State returns a snapshot of the table.
func (g *Game) State() GameState {
	state := GameState{GameID: g.ID, Turn: g.turn, Current: g.Seats[g.current].Player.Name}
	for _, s := range g.Seats {
		p := s.Player
		state.Players = append(state.Players, PlayerState{
			Name:           p.Name,
			Bank:           p.Bank,
			Cards:          cardNames(p.Deck),
			Upgrades:       p.Upgrades,
			Landmarks:      p.Landmarks(),
			Establishments: p.Establishments(),
		})
	}
	freq := g.Market.Freq()
	for _, c := range g.Market.Distinct(-1) {
		state.Market = append(state.Market, Listing{Name: c.Name, Cost: c.Cost, Copies: freq[c.Name]})
	}
	return state
}

// Run plays turns until a player wins, the context ends, or MaxTurns pass.
func (g *Game) Run(ctx context.Context) (*Seat, error) {
	ctx, span := g.tracer.Start(ctx, "engine.game", trace.WithAttributes(
		attribute.String("game.id", g.ID),
		attribute.Int("game.players", len(g.Seats)),
	))
	defer span.End()

	for {
		if w := g.Winner(); w != nil {
			span.SetAttributes(attribute.String("game.winner", w.Player.Name), attribute.Int("game.turns", g.turn))
			g.display.ShowInfo(fmt.Sprintf("%s wins after %d turns", w.Player.Name, g.turn))
			return w, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.maxTurns > 0 && g.turn >= g.maxTurns {
			span.SetStatus(codes.Error, ErrTurnLimit.Error())
			return nil, ErrTurnLimit
		}
		if _, err := g.NextTurn(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}
}

// NextTurn plays one turn for the current seat and returns its events.
func (g *Game) NextTurn(ctx context.Context) ([]Event, error) {
	if !g.mu.TryLock() {
		return nil, ErrTurnInProgress
	}
	defer g.mu.Unlock()

	if g.Winner() != nil {
		return nil, ErrGameOver
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seat := g.Seats[g.current]
	player := seat.Player
	g.turn++
	ctx, span := g.tracer.Start(ctx, "engine.turn", trace.WithAttributes(
		attribute.String("game.id", g.ID),
		attribute.Int("turn.number", g.turn),
		attribute.String("turn.player", player.Name),
	))
	defer span.End()

	g.enter(PhaseTurnStart, player)
	g.Reconcile(g.current)
	g.CheckInvariant(g.current)

	var events []Event
	g.enter(PhaseRolling, player)
	view := g.View(seat)
	result, err := dice.Roll(g.dice, g.diceCount(ctx, seat, view))
	if err != nil {
		return events, fmt.Errorf("roll for %s: %w", player.Name, err)
	}
	events = append(events, Event{Type: EventRoll, Player: player.Name, Dice: result.Dice, Value: result.Total, Doubles: result.Doubles, Balance: player.Bank})

	if player.Has(card.UpgradeRadioTower) && seat.Policy != nil && seat.Policy.ChooseReroll(ctx, view, result.Total) {
		g.enter(PhaseRerolling, player)
		result, err = dice.Roll(g.dice, len(result.Dice))
		if err != nil {
			return events, fmt.Errorf("reroll for %s: %w", player.Name, err)
		}
		events = append(events, Event{Type: EventReroll, Player: player.Name, Dice: result.Dice, Value: result.Total, Doubles: result.Doubles, Balance: player.Bank})
	}
	g.last = result
	span.SetAttributes(attribute.Int("turn.roll", result.Total), attribute.Bool("turn.doubles", result.Doubles))

	g.enter(PhaseTriggering, player)
	r := resolver{seats: g.Seats, active: g.current, market: g.Market, catalog: g.catalog}
	events = append(events, r.resolve(ctx, result.Total)...)
	g.Reconcile(g.current)
	g.display.ShowEvents(events)
	g.display.ShowState(g.State())

	g.enter(PhaseBuying, player)
	bought := g.buy(ctx, seat)
	events = append(events, bought...)

	g.enter(PhaseTurnEnd, player)
	if player.Winner() {
		g.winner = seat
		win := Event{Type: EventWin, Player: player.Name, Balance: player.Bank}
		bought = append(bought, win)
		events = append(events, win)
	} else if result.Doubles && player.Has(card.UpgradeAmusementPark) {
		bonus := Event{Type: EventDoublesBonus, Player: player.Name, Balance: player.Bank}
		bought = append(bought, bonus)
		events = append(events, bonus)
	} else {
		g.current = (g.current + 1) % len(g.Seats)
	}
	g.display.ShowEvents(bought)

	if err := g.record(ctx, player, result, events); err != nil {
		span.RecordError(err)
		return events, err
	}
	return events, nil
}

func (g *Game) diceCount(ctx context.Context, seat *Seat, view View) int {
	if !seat.Player.Has(card.UpgradeTrainStation) || seat.Policy == nil {
		return 1
	}
	if seat.Policy.ChooseDice(ctx, view) >= 2 {
		return 2
	}
	return 1
}

func (g *Game) buy(ctx context.Context, seat *Seat) []Event {
	player := seat.Player
	pass := []Event{{Type: EventPass, Player: player.Name, Balance: player.Bank}}
	options := g.PurchaseOptions()
	if len(options) == 0 || seat.Policy == nil {
		return pass
	}
	view := g.View(seat)
	if seat.Policy.ChooseAction(ctx, view) != ActionBuy {
		return pass
	}
	name := seat.Policy.ChooseCard(ctx, view, options)
	if name == "" {
		return pass
	}
	c, err := player.Buy(name, g.Market)
	if err != nil {
		g.logf("turn %d: %s failed to buy %q: %v", g.turn, player.Name, name, err)
		return []Event{{Type: EventBuyFailed, Player: player.Name, Card: name, Balance: player.Bank}}
	}
	return []Event{{Type: EventBuy, Player: player.Name, Card: c.Name, Value: c.Cost, Balance: player.Bank}}
}

func (g *Game) record(ctx context.Context, player *ledger.Player, result dice.Result, events []Event) error {
	rec := TurnRecord{
		GameID:    g.ID,
		Turn:      g.turn,
		Player:    player.Name,
		Dice:      result.Dice,
		Roll:      result.Total,
		Doubles:   result.Doubles,
		Events:    events,
		Completed: g.now().UTC(),
	}
	for _, s := range g.Seats {
		rec.Players = append(rec.Players, snapshot(s.Player))
	}
	g.history = append(g.history, rec)
	if g.recorder == nil {
		return nil
	}
	if err := g.recorder.AppendTurn(ctx, rec); err != nil {
		return fmt.Errorf("record turn %d: %w", g.turn, err)
	}
	return nil
}

func (g *Game) enter(phase Phase, player *ledger.Player) {
	g.phase = phase
	g.logf("turn %d: %s %s", g.turn, player.Name, phase)
}

func (g *Game) logf(format string, args ...any) {
	if g.logger != nil {
		g.logger.Printf(format, args...)
	}
}
