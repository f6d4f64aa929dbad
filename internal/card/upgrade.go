package card

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Upgrade is a set of standing capabilities. Each constant is one bit.
type Upgrade uint8

const (
	// UpgradeTrainStation lets the owner roll two dice.
	UpgradeTrainStation Upgrade = 1 << iota
	// UpgradeShoppingMall adds one coin to mall-bonus cards.
	UpgradeShoppingMall
	// UpgradeAmusementPark grants an extra turn on doubles.
	UpgradeAmusementPark
	// UpgradeRadioTower allows one reroll per turn.
	UpgradeRadioTower
)

// AllUpgrades is the winning set.
const AllUpgrades = UpgradeTrainStation | UpgradeShoppingMall | UpgradeAmusementPark | UpgradeRadioTower

// Upgrades lists the four capabilities in purchase-cost order.
func Upgrades() []Upgrade {
	return []Upgrade{UpgradeTrainStation, UpgradeShoppingMall, UpgradeAmusementPark, UpgradeRadioTower}
}

var upgradeNames = map[Upgrade]string{
	UpgradeTrainStation:  "Train Station",
	UpgradeShoppingMall:  "Shopping Mall",
	UpgradeAmusementPark: "Amusement Park",
	UpgradeRadioTower:    "Radio Tower",
}

// String returns the display name of a single capability.
func (u Upgrade) String() string {
	if name, ok := upgradeNames[u]; ok {
		return name
	}
	parts := make([]string, 0, 4)
	for _, one := range Upgrades() {
		if u&one != 0 {
			parts = append(parts, upgradeNames[one])
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// ParseUpgrade parses a capability by display name.
func ParseUpgrade(value string) (Upgrade, error) {
	value = strings.TrimSpace(value)
	for u, name := range upgradeNames {
		if strings.EqualFold(name, value) {
			return u, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUpgrade, value)
}

// UnmarshalYAML decodes a kind from its catalog spelling.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseKind(raw)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UnmarshalYAML decodes a capability from its display name.
func (u *Upgrade) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseUpgrade(raw)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
