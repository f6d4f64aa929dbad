// Package card defines the asset model: card templates, the closed set of
// payout kinds, and the comparator that orders every deck.
//
// A Template is immutable and shared by every copy of a listing. A Card is one
// physical copy; ownership moves a *Card between containers and updates its
// Owner in the same step.
package card

import (
	"errors"
	"fmt"
	"strings"
)

// SentinelHit is the hit value given to upgrades. No dice total reaches it, so
// upgrades never self-trigger and sort after every establishment.
const SentinelHit = 99

// Kind is the payout rule of a card.
type Kind int

const (
	// KindToll deducts from the die roller and credits the owner.
	KindToll Kind = iota + 1
	// KindBankToRoller pays the owner from the bank when the owner rolls.
	KindBankToRoller
	// KindBankToOwner pays the owner from the bank on every roll.
	KindBankToOwner
	// KindCollectAll collects a fixed amount from every other player.
	KindCollectAll
	// KindCollectOne steals up to a cap from one chosen opponent.
	KindCollectOne
	// KindSwap exchanges one card with a chosen opponent.
	KindSwap
	// KindUpgrade grants a standing capability instead of a coin flow.
	KindUpgrade
)

var kindNames = map[Kind]string{
	KindToll:         "toll",
	KindBankToRoller: "bank_to_roller",
	KindBankToOwner:  "bank_to_owner",
	KindCollectAll:   "collect_all",
	KindCollectOne:   "collect_one",
	KindSwap:         "swap",
	KindUpgrade:      "upgrade",
}

// String returns the catalog spelling of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind parses the catalog spelling of a kind.
func ParseKind(value string) (Kind, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	for kind, name := range kindNames {
		if name == value {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, value)
}

// Role names a party in a coin flow.
type Role int

const (
	RoleNone Role = iota
	RoleBank
	RoleRoller
	RoleOthers
	RoleOwner
	RoleChosen
)

// Roles returns the payer and recipient of the kind. Upgrades have neither.
func (k Kind) Roles() (payer, recipient Role) {
	switch k {
	case KindToll:
		return RoleRoller, RoleOwner
	case KindBankToRoller:
		return RoleBank, RoleRoller
	case KindBankToOwner:
		return RoleBank, RoleOwner
	case KindCollectAll:
		return RoleOthers, RoleRoller
	case KindCollectOne, KindSwap:
		return RoleChosen, RoleRoller
	default:
		return RoleNone, RoleNone
	}
}

// Special reports whether the kind resolves after all income kinds.
func (k Kind) Special() bool {
	return k == KindCollectAll || k == KindCollectOne || k == KindSwap
}

var (
	// ErrUnknownKind is returned when a catalog names an unsupported kind.
	ErrUnknownKind = errors.New("unknown card kind")
	// ErrUnknownUpgrade is returned when a catalog names an unsupported upgrade.
	ErrUnknownUpgrade = errors.New("unknown upgrade")
	// ErrInvalidTemplate is returned for templates that break the asset model.
	ErrInvalidTemplate = errors.New("invalid card template")
)

// Template is the immutable description of a listing.
type Template struct {
	Name     string `yaml:"name"`
	Kind     Kind   `yaml:"kind"`
	Category int    `yaml:"category"`
	Cost     int    `yaml:"cost"`
	Payout   int    `yaml:"payout"`
	HitsOn   []int  `yaml:"hits_on"`
	// Multiplies is the category counted by factory cards; zero means none.
	Multiplies int `yaml:"multiplies"`
	// MallBonus adds one coin to the payout while the owner has the Shopping Mall.
	MallBonus bool    `yaml:"mall_bonus"`
	Upgrade   Upgrade `yaml:"upgrade"`
	Copies    int     `yaml:"copies"`
	// Substitute is the coin amount a bot takes instead of running a swap.
	Substitute int `yaml:"substitute"`
}

// Unique reports whether at most one copy may be held per player. Unique
// templates are the ones the market reconciliation pass tracks.
// Swappable reports whether a copy of t may change hands in a Business
// Center exchange. Upgrades and swap cards never move.
func (t *Template) Swappable() bool {
	return t.Kind != KindUpgrade && t.Kind != KindSwap
}

func (t *Template) Unique() bool {
	switch t.Kind {
	case KindCollectAll, KindCollectOne, KindSwap, KindUpgrade:
		return true
	}
	return false
}

// Factory reports whether the payout scales with a category count.
func (t *Template) Factory() bool {
	return t.Multiplies != 0
}

// Hits reports whether the card activates on roll.
func (t *Template) Hits(roll int) bool {
	for _, v := range t.HitsOn {
		if v == roll {
			return true
		}
	}
	return false
}

// Validate checks the template against the asset model.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTemplate)
	}
	if _, ok := kindNames[t.Kind]; !ok {
		return fmt.Errorf("%w: %s has no kind", ErrInvalidTemplate, t.Name)
	}
	if t.Cost <= 0 {
		return fmt.Errorf("%w: %s cost must be positive", ErrInvalidTemplate, t.Name)
	}
	if len(t.HitsOn) == 0 {
		return fmt.Errorf("%w: %s has no hit values", ErrInvalidTemplate, t.Name)
	}
	if t.Kind == KindUpgrade {
		if t.Upgrade == 0 {
			return fmt.Errorf("%w: upgrade %s has no capability", ErrInvalidTemplate, t.Name)
		}
		if len(t.HitsOn) != 1 || t.HitsOn[0] != SentinelHit {
			return fmt.Errorf("%w: upgrade %s must hit only on %d", ErrInvalidTemplate, t.Name, SentinelHit)
		}
		return nil
	}
	if t.Upgrade != 0 {
		return fmt.Errorf("%w: %s grants a capability but is not an upgrade", ErrInvalidTemplate, t.Name)
	}
	if t.Factory() && t.Kind != KindBankToRoller {
		return fmt.Errorf("%w: factory %s must pay the roller", ErrInvalidTemplate, t.Name)
	}
	return nil
}

// Card is one physical copy of a template.
type Card struct {
	*Template
	// Owner is the owning player's name; empty while in the market or reserve.
	Owner string
}

// New returns an unowned copy of t.
func New(t *Template) *Card {
	return &Card{Template: t}
}

// String renders the card the way the text display lists it.
func (c *Card) String() string {
	if c.Kind == KindUpgrade {
		return c.Name
	}
	hits := make([]string, len(c.HitsOn))
	for i, v := range c.HitsOn {
		hits[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("[%s] %s", strings.Join(hits, ","), c.Name)
}
