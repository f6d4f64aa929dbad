package display

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/louisbranch/harmonictook/internal/engine"
)

// ErrClosed is returned by a closed Bridge.
var ErrClosed = errors.New("display bridge closed")

// Update is one batch of output for an asynchronous front end. Exactly one
// field is set.
type Update struct {
	Events []engine.Event
	State  *engine.GameState
	Info   string
}

// Prompt is a question waiting for an answer from the front end. Yes/no
// prompts have no options and take 1 for yes and 0 for no.
type Prompt struct {
	Text    string
	Options []string

	answer chan int
}

// YesNo reports whether the prompt is a confirmation.
func (p Prompt) YesNo() bool {
	return p.Options == nil
}

// Answer replies with an option index. Only the first answer counts.
func (p Prompt) Answer(i int) {
	select {
	case p.answer <- i:
	default:
	}
}

// Bridge hands game output and prompts to another goroutine, typically a UI
// loop. The front end must drain Updates; prompts block until answered or
// until the caller's context ends.
type Bridge struct {
	updates chan Update
	prompts chan Prompt

	once sync.Once
	done chan struct{}
}

// NewBridge buffers up to buffer updates.
func NewBridge(buffer int) *Bridge {
	return &Bridge{
		updates: make(chan Update, buffer),
		prompts: make(chan Prompt),
		done:    make(chan struct{}),
	}
}

// Updates delivers output in order.
func (b *Bridge) Updates() <-chan Update {
	return b.updates
}

// Prompts delivers questions one at a time.
func (b *Bridge) Prompts() <-chan Prompt {
	return b.prompts
}

// Done is closed by Close.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Close ends the bridge: pending prompts fail and later output is dropped.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bridge) send(u Update) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.updates <- u:
	case <-b.done:
	}
}

func (b *Bridge) ShowEvents(events []engine.Event) {
	b.send(Update{Events: append([]engine.Event(nil), events...)})
}

func (b *Bridge) ShowState(state engine.GameState) {
	b.send(Update{State: &state})
}

func (b *Bridge) ShowInfo(text string) {
	b.send(Update{Info: text})
}

func (b *Bridge) ask(ctx context.Context, p Prompt) (int, error) {
	p.answer = make(chan int, 1)
	select {
	case b.prompts <- p:
	case <-b.done:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case i := <-p.answer:
		return i, nil
	case <-b.done:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (b *Bridge) PickOne(ctx context.Context, prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("pick %q: no options", prompt)
	}
	i, err := b.ask(ctx, Prompt{Text: prompt, Options: append([]string(nil), options...)})
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(options) {
		return 0, fmt.Errorf("pick %q: answer %d out of range", prompt, i)
	}
	return i, nil
}

func (b *Bridge) Confirm(ctx context.Context, prompt string) (bool, error) {
	i, err := b.ask(ctx, Prompt{Text: prompt})
	if err != nil {
		return false, err
	}
	return i != 0, nil
}
