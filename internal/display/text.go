// Package display implements engine.Display for terminals, tests and
// asynchronous front ends.
package display

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/engine"
	"github.com/louisbranch/harmonictook/internal/platform/i18n/catalog"
)

var (
	// ErrNoInput is returned by displays that cannot ask anyone.
	ErrNoInput = errors.New("display has no input")
	// ErrTooManyAttempts is returned when a prompt got only invalid answers.
	ErrTooManyAttempts = errors.New("too many invalid answers")
)

// Text renders the game as lines of text and reads answers line by line.
// Numbers are formatted for its locale.
type Text struct {
	mu      sync.Mutex
	out     io.Writer
	in      *bufio.Reader
	printer *message.Printer
	// Attempts bounds the answers read for one prompt. Zero means no bound.
	Attempts int
	// Verbose also prints idle cards and factory counts.
	Verbose bool
}

// NewText reads answers from in and writes to out. A nil in never answers.
// Output is translated when tag matches a bundled locale.
func NewText(in io.Reader, out io.Writer, tag language.Tag) *Text {
	t := &Text{out: out, printer: message.NewPrinter(catalog.Default().Match(tag))}
	if in != nil {
		t.in = bufio.NewReader(in)
	}
	return t
}

func (t *Text) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printer.Fprintf(t.out, format, args...)
}

func (t *Text) ShowInfo(text string) {
	t.printf("%s\n", text)
}

func (t *Text) ShowEvents(events []engine.Event) {
	for _, e := range events {
		if line := t.describe(e); line != "" {
			t.printf("%s\n", line)
		}
	}
}

func (t *Text) describe(e engine.Event) string {
	p := t.printer
	switch e.Type {
	case engine.EventRoll:
		line := p.Sprintf("%s rolled %d %v", e.Player, e.Value, e.Dice)
		if e.Doubles {
			line += p.Sprintf(" (doubles)")
		}
		return line
	case engine.EventReroll:
		return p.Sprintf("%s used the Radio Tower and rolled %d %v", e.Player, e.Value, e.Dice)
	case engine.EventSteal:
		return p.Sprintf("%s's %s took %d from %s (now %d)", e.Player, e.Card, e.Value, e.Target, e.Balance)
	case engine.EventPayout:
		return p.Sprintf("%s's %s paid %d (now %d)", e.Player, e.Card, e.Value, e.Balance)
	case engine.EventCollect:
		return p.Sprintf("%s's %s collected %d from %s (now %d)", e.Player, e.Card, e.Value, e.Target, e.Balance)
	case engine.EventFactoryCount:
		if !t.Verbose {
			return ""
		}
		return p.Sprintf("%s's %s counts %d cards", e.Player, e.Card, e.Value)
	case engine.EventInactive:
		if !t.Verbose {
			return ""
		}
		return p.Sprintf("%s's %s only works on its owner's turn", e.Player, e.Card)
	case engine.EventNoTarget:
		return p.Sprintf("%s's %s found no one to act on", e.Player, e.Card)
	case engine.EventSwap:
		return p.Sprintf("%s traded %s for %s's %s", e.Player, e.Given, e.Target, e.Card)
	case engine.EventSwapCoins:
		return p.Sprintf("%s's %s paid %d instead of a trade (now %d)", e.Player, e.Card, e.Value, e.Balance)
	case engine.EventBuy:
		return p.Sprintf("%s bought %s for %d (now %d)", e.Player, e.Card, e.Value, e.Balance)
	case engine.EventBuyFailed:
		return p.Sprintf("%s could not buy %q", e.Player, e.Card)
	case engine.EventPass:
		return p.Sprintf("%s passed with %d coins", e.Player, e.Balance)
	case engine.EventDoublesBonus:
		return p.Sprintf("%s rolled doubles and goes again", e.Player)
	case engine.EventWin:
		return p.Sprintf("%s completed every landmark and wins!", e.Player)
	}
	return p.Sprintf("%s: %s", e.Type, e.Player)
}

func (t *Text) ShowState(state engine.GameState) {
	var b strings.Builder
	p := t.printer
	b.WriteString(p.Sprintf("-- turn %d: %s --\n", state.Turn, state.Current))
	for _, ps := range state.Players {
		b.WriteString(p.Sprintf("%-12s %6d coins  %d/%d landmarks  %s\n",
			ps.Name, ps.Bank, ps.Landmarks, len(card.Upgrades()), strings.Join(ps.Cards, ", ")))
	}
	if len(state.Market) > 0 {
		listings := make([]string, len(state.Market))
		for i, l := range state.Market {
			listings[i] = p.Sprintf("%s %d x%d", l.Name, l.Cost, l.Copies)
		}
		b.WriteString(p.Sprintf("market: %s\n", strings.Join(listings, ", ")))
	}
	t.printf("%s", b.String())
}

// PickOne lists options and accepts a 1-based number or a card name.
func (t *Text) PickOne(ctx context.Context, prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("pick %q: no options", prompt)
	}
	var menu strings.Builder
	menu.WriteString(prompt + "\n")
	for i, o := range options {
		fmt.Fprintf(&menu, "  %d) %s\n", i+1, o)
	}
	return ask(ctx, t, menu.String()+"> ", func(answer string) (int, bool) {
		if n, err := strconv.Atoi(answer); err == nil {
			return n - 1, n >= 1 && n <= len(options)
		}
		return Match(answer, options)
	})
}

// Confirm accepts y, yes, n or no.
func (t *Text) Confirm(ctx context.Context, prompt string) (bool, error) {
	return ask(ctx, t, prompt+" [y/n] ", func(answer string) (bool, bool) {
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, true
		case "n", "no":
			return false, true
		}
		return false, false
	})
}

func ask[T any](ctx context.Context, t *Text, prompt string, parse func(string) (T, bool)) (T, error) {
	var zero T
	if t.in == nil {
		return zero, ErrNoInput
	}
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		t.printf("%s", prompt)
		line, err := t.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer != "" {
			if v, ok := parse(answer); ok {
				return v, nil
			}
			t.printf("%q is not a valid answer.\n", answer)
		}
		if err != nil {
			return zero, fmt.Errorf("read answer: %w", err)
		}
		if t.Attempts > 0 && attempt >= t.Attempts {
			return zero, ErrTooManyAttempts
		}
	}
}
