// Package script runs player policies written in Lua.
//
// A script defines any of these global functions; decisions it leaves out
// go to a fallback policy:
//
//	choose_dice(view) -> 1 or 2
//	choose_reroll(view, roll) -> boolean
//	choose_target(view) -> player name or nil
//	choose_action(view) -> "buy" or "pass"
//	choose_card(view, options) -> card name
//	choose_swap(view) -> nil for coins, or {target=, give=, take=}
//
// The view is a table with self, roller, bank, players and market fields.
// The harmonic table offers delta_ev(name) and coverage(name), valuing a
// catalog card for the player deciding.
package script

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Shopify/go-lua"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/engine"
	"github.com/louisbranch/harmonictook/internal/ledger"
	"github.com/louisbranch/harmonictook/internal/strategy"
)

// ErrNoFallback is returned when a policy is loaded without a fallback.
var ErrNoFallback = errors.New("script policy needs a fallback")

// Policy answers decisions by calling into a Lua state. Calls are
// serialized; a Lua state is not safe for concurrent use.
type Policy struct {
	// Logger receives script runtime errors. Nil discards them.
	Logger *log.Logger

	mu       sync.Mutex
	state    *lua.State
	fallback engine.Policy
	// view is the decision in progress, read by the harmonic helpers.
	view engine.View
}

// Load runs the script at path and returns a policy backed by it.
func Load(path string, fallback engine.Policy) (*Policy, error) {
	return load(fallback, func(l *lua.State) error { return lua.LoadFile(l, path, "") })
}

// LoadString is Load for a script held in memory.
func LoadString(name, source string, fallback engine.Policy) (*Policy, error) {
	return load(fallback, func(l *lua.State) error { return lua.LoadBuffer(l, source, name, "") })
}

func load(fallback engine.Policy, chunk func(*lua.State) error) (*Policy, error) {
	if fallback == nil {
		return nil, ErrNoFallback
	}
	p := &Policy{state: lua.NewState(), fallback: fallback}
	lua.OpenLibraries(p.state)
	p.registerHelpers()
	if err := chunk(p.state); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := p.state.ProtectedCall(0, 0, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	return p, nil
}

func (p *Policy) registerHelpers() {
	l := p.state
	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "delta_ev", Function: p.deltaEV},
		{Name: "coverage", Function: p.coverage},
	}, 0)
	l.SetGlobal("harmonic")
}

func (p *Policy) helperCard(l *lua.State) *card.Card {
	name := lua.CheckString(l, 1)
	catalog := p.view.Catalog
	if catalog == nil {
		catalog = card.Standard()
	}
	t, ok := catalog.Lookup(name)
	if !ok {
		lua.Errorf(l, "unknown card %s", name)
		return nil
	}
	return card.New(t)
}

func (p *Policy) deltaEV(l *lua.State) int {
	c := p.helperCard(l)
	l.PushNumber(strategy.DeltaEV(c, p.view.Self, p.view.Players, 1))
	return 1
}

func (p *Policy) coverage(l *lua.State) int {
	c := p.helperCard(l)
	l.PushNumber(strategy.DeltaCoverage(c, p.view.Self, p.view.Players))
	return 1
}

// call invokes the global fn with the view and extra arguments, leaving one
// result on the stack. It reports false when fn is missing or fails; the
// stack is then unchanged.
func (p *Policy) call(fn string, view engine.View, args ...func(*lua.State)) bool {
	l := p.state
	l.Global(fn)
	if !l.IsFunction(-1) {
		l.Pop(1)
		return false
	}
	p.view = view
	pushView(l, view)
	for _, push := range args {
		push(l)
	}
	if err := l.ProtectedCall(1+len(args), 1, 0); err != nil {
		l.Pop(1)
		if p.Logger != nil {
			p.Logger.Printf("script %s: %v", fn, err)
		}
		return false
	}
	return true
}

func (p *Policy) ChooseDice(ctx context.Context, view engine.View) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.call("choose_dice", view) {
		n, ok := p.state.ToInteger(-1)
		p.state.Pop(1)
		if ok && (n == 1 || n == 2) {
			return n
		}
	}
	return p.fallback.ChooseDice(ctx, view)
}

func (p *Policy) ChooseReroll(ctx context.Context, view engine.View, roll int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.call("choose_reroll", view, func(l *lua.State) { l.PushInteger(roll) }) {
		ok := p.state.ToBoolean(-1)
		p.state.Pop(1)
		return ok
	}
	return p.fallback.ChooseReroll(ctx, view, roll)
}

func (p *Policy) ChooseTarget(ctx context.Context, view engine.View) *ledger.Player {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.call("choose_target", view) {
		name, _ := p.state.ToString(-1)
		p.state.Pop(1)
		for _, t := range view.Targets() {
			if t.Name == name {
				return t
			}
		}
		return nil
	}
	return p.fallback.ChooseTarget(ctx, view)
}

func (p *Policy) ChooseAction(ctx context.Context, view engine.View) engine.Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.call("choose_action", view) {
		action, _ := p.state.ToString(-1)
		p.state.Pop(1)
		if action == engine.ActionBuy.String() {
			return engine.ActionBuy
		}
		return engine.ActionPass
	}
	return p.fallback.ChooseAction(ctx, view)
}

func (p *Policy) ChooseCard(ctx context.Context, view engine.View, options []*card.Card) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.call("choose_card", view, func(l *lua.State) { pushCards(l, options) }) {
		name, _ := p.state.ToString(-1)
		p.state.Pop(1)
		return name
	}
	return p.fallback.ChooseCard(ctx, view, options)
}

func (p *Policy) ChooseSwap(ctx context.Context, view engine.View) engine.SwapDecision {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.call("choose_swap", view) {
		return p.fallback.ChooseSwap(ctx, view)
	}
	l := p.state
	defer l.Pop(1)
	if !l.IsTable(-1) {
		return engine.SwapDecision{Coins: true}
	}
	targetName := stringField(l, "target")
	giveName := stringField(l, "give")
	takeName := stringField(l, "take")

	var target *ledger.Player
	for _, t := range view.Targets() {
		if t.Name == targetName {
			target = t
		}
	}
	if target == nil {
		return engine.SwapDecision{Coins: true}
	}
	give, ok := view.Self.Deck.Find(giveName, -1)
	if !ok {
		return engine.SwapDecision{Coins: true}
	}
	take, ok := target.Deck.Find(takeName, -1)
	if !ok {
		return engine.SwapDecision{Coins: true}
	}
	return engine.SwapDecision{Target: target, Give: give, Take: take}
}

func stringField(l *lua.State, key string) string {
	l.Field(-1, key)
	s, _ := l.ToString(-1)
	l.Pop(1)
	return s
}

func pushView(l *lua.State, view engine.View) {
	l.NewTable()
	l.PushString(view.Self.Name)
	l.SetField(-2, "self")
	l.PushInteger(view.Self.Bank)
	l.SetField(-2, "bank")
	if view.Roller != nil {
		l.PushString(view.Roller.Name)
		l.SetField(-2, "roller")
	}

	l.CreateTable(len(view.Players), 0)
	for i, pl := range view.Players {
		pushPlayer(l, pl)
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "players")

	if view.Market != nil {
		pushCards(l, view.Market.Distinct(-1))
		l.SetField(-2, "market")
	}
}

func pushPlayer(l *lua.State, pl *ledger.Player) {
	l.NewTable()
	l.PushString(pl.Name)
	l.SetField(-2, "name")
	l.PushInteger(pl.Bank)
	l.SetField(-2, "bank")

	cards := pl.Deck.Cards()
	l.CreateTable(len(cards), 0)
	for i, c := range cards {
		l.PushString(c.Name)
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "cards")

	l.NewTable()
	for _, u := range card.Upgrades() {
		l.PushBoolean(pl.Has(u))
		l.SetField(-2, u.String())
	}
	l.SetField(-2, "upgrades")
}

func pushCards(l *lua.State, cards []*card.Card) {
	l.CreateTable(len(cards), 0)
	for i, c := range cards {
		l.NewTable()
		l.PushString(c.Name)
		l.SetField(-2, "name")
		l.PushInteger(c.Cost)
		l.SetField(-2, "cost")
		l.PushString(c.Kind.String())
		l.SetField(-2, "kind")
		l.RawSetInt(-2, i+1)
	}
}
