package card

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// standardCatalog parses on first use; upgrade names must be initialized
// before the YAML decoder can resolve them.
var standardCatalog = sync.OnceValue(func() *Catalog {
	return mustLoad(embeddedCatalog)
})

type catalogFile struct {
	StartingBank int         `yaml:"starting_bank"`
	StartingDeck []string    `yaml:"starting_deck"`
	Cards        []*Template `yaml:"cards"`
}

// Catalog is the set of listings a game is built from.
type Catalog struct {
	startingBank int
	starting     []*Template
	templates    []*Template
	byName       map[string]*Template
}

// Standard returns the embedded base-game catalog.
func Standard() *Catalog {
	return standardCatalog()
}

// Load parses a YAML catalog.
func Load(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Cards) == 0 {
		return nil, fmt.Errorf("%w: catalog has no cards", ErrInvalidTemplate)
	}

	catalog := &Catalog{
		startingBank: file.StartingBank,
		byName:       make(map[string]*Template, len(file.Cards)),
	}
	for _, t := range file.Cards {
		if t.Kind == KindUpgrade && len(t.HitsOn) == 0 {
			t.HitsOn = []int{SentinelHit}
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := catalog.byName[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate listing %q", ErrInvalidTemplate, t.Name)
		}
		if t.Unique() {
			t.Copies = 1
		} else if t.Copies <= 0 {
			return nil, fmt.Errorf("%w: %s needs at least one copy", ErrInvalidTemplate, t.Name)
		}
		catalog.byName[t.Name] = t
		catalog.templates = append(catalog.templates, t)
	}
	sort.SliceStable(catalog.templates, func(i, j int) bool {
		return CompareTemplates(catalog.templates[i], catalog.templates[j]) < 0
	})

	for _, name := range file.StartingDeck {
		t, ok := catalog.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: starting card %q is not listed", ErrInvalidTemplate, name)
		}
		catalog.starting = append(catalog.starting, t)
	}
	return catalog, nil
}

func mustLoad(data []byte) *Catalog {
	catalog, err := Load(data)
	if err != nil {
		panic(fmt.Sprintf("load embedded catalog: %v", err))
	}
	return catalog
}

// Lookup returns the template with the given name.
func (c *Catalog) Lookup(name string) (*Template, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Templates returns every listing in deck order.
func (c *Catalog) Templates() []*Template {
	out := make([]*Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Unique returns the listings tracked by market reconciliation.
func (c *Catalog) Unique() []*Template {
	var out []*Template
	for _, t := range c.templates {
		if t.Unique() {
			out = append(out, t)
		}
	}
	return out
}

// Starting returns the free cards every player begins with.
func (c *Catalog) Starting() []*Template {
	out := make([]*Template, len(c.starting))
	copy(out, c.starting)
	return out
}

// StartingBank is the coin balance every player begins with.
func (c *Catalog) StartingBank() int {
	return c.startingBank
}

// UpgradeTemplate returns the listing that grants u.
func (c *Catalog) UpgradeTemplate(u Upgrade) (*Template, bool) {
	for _, t := range c.templates {
		if t.Kind == KindUpgrade && t.Upgrade == u {
			return t, true
		}
	}
	return nil, false
}
