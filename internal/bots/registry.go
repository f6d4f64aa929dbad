package bots

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/harmonictook/internal/engine"
)

// ErrUnknownKind is returned by New for a kind with no registered bot.
var ErrUnknownKind = errors.New("unknown bot kind")

var registry = map[string]func(Source) engine.Policy{
	"random":     func(src Source) engine.Policy { return NewBot(src) },
	"thoughtful": func(src Source) engine.Policy { return NewThoughtfulBot(src) },
	"ev":         func(src Source) engine.Policy { return NewEVBot(src, 1) },
	"coverage":   func(src Source) engine.Policy { return NewCoverageBot(src) },
	"impatient":  func(src Source) engine.Policy { return NewImpatientBot(src) },
}

// Kinds lists the registered bot kinds in alphabetical order.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// New builds the bot registered under kind, case-insensitively.
func New(kind string, src Source) (engine.Policy, error) {
	build, ok := registry[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownKind, kind, strings.Join(Kinds(), ", "))
	}
	return build(src), nil
}
