package display

import (
	"context"
	"sync"

	"github.com/louisbranch/harmonictook/internal/engine"
)

// Null discards all output and cannot answer prompts.
type Null struct{}

func (Null) ShowEvents([]engine.Event)  {}
func (Null) ShowState(engine.GameState) {}
func (Null) ShowInfo(string)            {}

func (Null) PickOne(context.Context, string, []string) (int, error) {
	return 0, ErrNoInput
}

func (Null) Confirm(context.Context, string) (bool, error) {
	return false, ErrNoInput
}

// Recording keeps everything shown to it and forwards to Next. Prompts go to
// Next; without one they fail with ErrNoInput.
type Recording struct {
	Next engine.Display

	mu     sync.Mutex
	events []engine.Event
	states []engine.GameState
	info   []string
}

func (r *Recording) ShowEvents(events []engine.Event) {
	r.mu.Lock()
	r.events = append(r.events, events...)
	r.mu.Unlock()
	if r.Next != nil {
		r.Next.ShowEvents(events)
	}
}

func (r *Recording) ShowState(state engine.GameState) {
	r.mu.Lock()
	r.states = append(r.states, state)
	r.mu.Unlock()
	if r.Next != nil {
		r.Next.ShowState(state)
	}
}

func (r *Recording) ShowInfo(text string) {
	r.mu.Lock()
	r.info = append(r.info, text)
	r.mu.Unlock()
	if r.Next != nil {
		r.Next.ShowInfo(text)
	}
}

func (r *Recording) PickOne(ctx context.Context, prompt string, options []string) (int, error) {
	if r.Next == nil {
		return 0, ErrNoInput
	}
	return r.Next.PickOne(ctx, prompt, options)
}

func (r *Recording) Confirm(ctx context.Context, prompt string) (bool, error) {
	if r.Next == nil {
		return false, ErrNoInput
	}
	return r.Next.Confirm(ctx, prompt)
}

// Events returns a copy of every event shown so far.
func (r *Recording) Events() []engine.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]engine.Event(nil), r.events...)
}

// States returns a copy of every state shown so far.
func (r *Recording) States() []engine.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]engine.GameState(nil), r.states...)
}

// Info returns a copy of every info line shown so far.
func (r *Recording) Info() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.info...)
}
