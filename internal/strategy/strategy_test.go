package strategy

import (
	"math"
	"testing"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func stdCard(t *testing.T, name string) *card.Card {
	t.Helper()
	tmpl, ok := card.Standard().Lookup(name)
	if !ok {
		t.Fatalf("unknown card %q", name)
	}
	return card.New(tmpl)
}

func player(t *testing.T, name string, bank int, cards ...string) *ledger.Player {
	t.Helper()
	p := &ledger.Player{Name: name, Bank: bank, Deck: ledger.NewStore()}
	for _, n := range cards {
		p.Acquire(stdCard(t, n))
	}
	return p
}

// richTable returns two players with the starting deck and 103 coins each.
func richTable(t *testing.T) (*ledger.Player, *ledger.Player, []*ledger.Player) {
	t.Helper()
	a := ledger.NewPlayer("a", card.Standard())
	b := ledger.NewPlayer("b", card.Standard())
	a.Deposit(100)
	b.Deposit(100)
	return a, b, []*ledger.Player{a, b}
}

func custom(kind card.Kind, payout int, hits ...int) *card.Card {
	return card.New(&card.Template{Name: "Custom", Kind: kind, Category: 1, Cost: 1, Payout: payout, HitsOn: hits})
}

func TestProbabilityTables(t *testing.T) {
	for name, dist := range map[string]map[int]float64{"one die": OneDie, "two dice": TwoDice} {
		total := 0.0
		for _, p := range dist {
			total += p
		}
		if !almostEqual(total, 1) {
			t.Fatalf("%s sums to %v", name, total)
		}
	}
	if !almostEqual(PDoubles, 1.0/6) {
		t.Fatalf("PDoubles = %v", PDoubles)
	}
}

func TestPHits(t *testing.T) {
	tests := []struct {
		name string
		hits []int
		dice int
		want float64
	}{
		{name: "single face", hits: []int{3}, dice: 1, want: 1.0 / 6},
		{name: "all faces", hits: []int{1, 2, 3, 4, 5, 6}, dice: 1, want: 1},
		{name: "seven on one die", hits: []int{7}, dice: 1, want: 0},
		{name: "seven on two dice", hits: []int{7}, dice: 2, want: 6.0 / 36},
		{name: "two on two dice", hits: []int{2}, dice: 2, want: 1.0 / 36},
		{name: "several totals", hits: []int{11, 12}, dice: 2, want: 3.0 / 36},
		{name: "upgrade sentinel", hits: []int{card.SentinelHit}, dice: 2, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PHits(tt.hits, tt.dice); !almostEqual(got, tt.want) {
				t.Fatalf("PHits(%v, %d) = %v, want %v", tt.hits, tt.dice, got, tt.want)
			}
		})
	}
}

func TestEVByKind(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player)
		n     int
		want  float64
	}{
		{
			name: "owner payout fires on both players' rolls",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a, _, players := richTable(t)
				return stdCard(t, "Wheat Field"), a, players
			},
			n: 1, want: 2.0 / 6,
		},
		{
			name: "scales with rounds",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a, _, players := richTable(t)
				return stdCard(t, "Wheat Field"), a, players
			},
			n: 3, want: 1,
		},
		{
			name: "upgrade is worth nothing alone",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a, _, players := richTable(t)
				return stdCard(t, "Radio Tower"), a, players
			},
			n: 1, want: 0,
		},
		{
			name: "roller payout with the amusement park",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a, _, players := richTable(t)
				a.Grant(card.UpgradeTrainStation)
				a.Grant(card.UpgradeAmusementPark)
				return stdCard(t, "Bakery"), a, players
			},
			n: 1, want: 3.0 / 36 / (1 - PDoubles),
		},
		{
			name: "amusement park needs two dice",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a, _, players := richTable(t)
				a.Grant(card.UpgradeAmusementPark)
				return stdCard(t, "Bakery"), a, players
			},
			n: 1, want: 2.0 / 6,
		},
		{
			name: "own rolls repeat for blue cards",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a, _, players := richTable(t)
				a.Grant(card.UpgradeTrainStation)
				a.Grant(card.UpgradeAmusementPark)
				return stdCard(t, "Ranch"), a, players
			},
			n: 1, want: 1.0/36/(1-PDoubles) + 1.0/6,
		},
		{
			name: "convenience store under the mall",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a, _, players := richTable(t)
				a.Grant(card.UpgradeShoppingMall)
				return stdCard(t, "Convenience Store"), a, players
			},
			n: 1, want: 4.0 / 6,
		},
		{
			name: "factory counts its category",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a := player(t, "a", 0, "Train Station", "Ranch", "Ranch")
				return stdCard(t, "Cheese Factory"), a, []*ledger.Player{a}
			},
			n: 1, want: 3 * 2 * 6.0 / 36,
		},
		{
			name: "factory with nothing to count",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a := player(t, "a", 0, "Train Station")
				return stdCard(t, "Cheese Factory"), a, []*ledger.Player{a}
			},
			n: 1, want: 0,
		},
		{
			name: "toll clamped by a poor opponent",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a := player(t, "a", 0)
				b := player(t, "b", 1)
				return custom(card.KindToll, 3, 1, 2, 3, 4, 5, 6), a, []*ledger.Player{a, b}
			},
			n: 1, want: 1,
		},
		{
			name: "toll across two opponents",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a := player(t, "a", 0)
				b := player(t, "b", 10)
				c := player(t, "c", 10)
				return stdCard(t, "Cafe"), a, []*ledger.Player{a, b, c}
			},
			n: 1, want: 2.0 / 6,
		},
		{
			name: "stadium with three players",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a := player(t, "a", 0)
				return stdCard(t, "Stadium"), a, []*ledger.Player{a, player(t, "b", 0), player(t, "c", 0)}
			},
			n: 1, want: 4.0 / 6,
		},
		{
			name: "tv station against a rich opponent",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a, _, players := richTable(t)
				return stdCard(t, "TV Station"), a, players
			},
			n: 1, want: 5.0 / 6,
		},
		{
			name: "tv station against a poor opponent",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a := player(t, "a", 0)
				return stdCard(t, "TV Station"), a, []*ledger.Player{a, player(t, "b", 2)}
			},
			n: 1, want: 2.0 / 6,
		},
		{
			name: "tv station alone",
			setup: func(t *testing.T) (*card.Card, *ledger.Player, []*ledger.Player) {
				a := player(t, "a", 0)
				return stdCard(t, "TV Station"), a, []*ledger.Player{a}
			},
			n: 1, want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, owner, players := tt.setup(t)
			if got := EV(c, owner, players, tt.n); !almostEqual(got, tt.want) {
				t.Fatalf("EV = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPortfolioEVStartingDeck(t *testing.T) {
	a, _, players := richTable(t)
	if got := PortfolioEV(a, players, 1); !almostEqual(got, 4.0/6) {
		t.Fatalf("one round = %v, want 4/6", got)
	}
	if got := PortfolioEV(a, players, 6); !almostEqual(got, 4) {
		t.Fatalf("six rounds = %v, want 4", got)
	}
}

func TestDeltaEVPlainCardEqualsEV(t *testing.T) {
	a, _, players := richTable(t)
	ranch := stdCard(t, "Ranch")
	if got, want := DeltaEV(ranch, a, players, 1), EV(ranch, a, players, 1); !almostEqual(got, want) {
		t.Fatalf("DeltaEV = %v, EV = %v", got, want)
	}
}

func TestDeltaEVFactorySynergy(t *testing.T) {
	a, _, players := richTable(t)
	a.Grant(card.UpgradeTrainStation)
	a.Acquire(stdCard(t, "Cheese Factory"))

	ranch := stdCard(t, "Ranch")
	if DeltaEV(ranch, a, players, 1) <= EV(ranch, a, players, 1) {
		t.Fatal("a ranch must be worth more to a cheese factory owner")
	}

	factory := stdCard(t, "Cheese Factory")
	before := DeltaEV(factory, a, players, 1)
	a.Acquire(stdCard(t, "Ranch"))
	if after := DeltaEV(factory, a, players, 1); after <= before {
		t.Fatalf("factory delta after a ranch = %v, before = %v", after, before)
	}
}

func TestDeltaEVLeavesPlayerUntouched(t *testing.T) {
	a, _, players := richTable(t)
	a.Acquire(stdCard(t, "Mine"))
	deck := a.Deck.Names(-1)
	market := []*card.Card{stdCard(t, "Mine"), stdCard(t, "Apple Orchard")}

	for _, name := range []string{"Train Station", "Shopping Mall", "Amusement Park", "Radio Tower", "Forest"} {
		DeltaEV(stdCard(t, name), a, players, 1, market...)
	}
	if a.Upgrades != 0 || len(a.Deck.Names(-1)) != len(deck) || a.Deck.Len() != 3 {
		t.Fatalf("valuation mutated the player: flags=%v deck=%v", a.Upgrades, a.Deck.Names(-1))
	}
}

func TestDeltaEVRadioTower(t *testing.T) {
	t.Run("sparse starting deck", func(t *testing.T) {
		a, _, players := richTable(t)
		if DeltaEV(stdCard(t, "Radio Tower"), a, players, 1) <= 0 {
			t.Fatal("expected a positive reroll value")
		}
	})

	t.Run("flat deck", func(t *testing.T) {
		a := player(t, "a", 0)
		a.Acquire(custom(card.KindBankToOwner, 3, 1, 2, 3, 4, 5, 6))
		if got := DeltaEV(stdCard(t, "Radio Tower"), a, []*ledger.Player{a}, 1); !almostEqual(got, 0) {
			t.Fatalf("flat deck reroll value = %v", got)
		}
	})

	t.Run("jackpot on six", func(t *testing.T) {
		a := player(t, "a", 0)
		a.Acquire(custom(card.KindBankToOwner, 10, 6))
		if got := DeltaEV(stdCard(t, "Radio Tower"), a, []*ledger.Player{a}, 1); !almostEqual(got, 50.0/36) {
			t.Fatalf("reroll value = %v, want 50/36", got)
		}
	})

	t.Run("already owned", func(t *testing.T) {
		a := player(t, "a", 0, "Radio Tower")
		a.Acquire(custom(card.KindBankToOwner, 10, 6))
		if got := DeltaEV(stdCard(t, "Radio Tower"), a, []*ledger.Player{a}, 1); got != 0 {
			t.Fatalf("owned radio tower = %v", got)
		}
	})
}

func TestDeltaEVTrainStation(t *testing.T) {
	tests := []struct {
		name     string
		deck     []string
		market   []string
		positive bool
	}{
		{name: "mine in deck", deck: []string{"Mine"}, positive: true},
		{name: "two-dice cards on the market", market: []string{"Mine", "Apple Orchard"}, positive: true},
		{name: "only one-die cards on the market", market: []string{"Wheat Field"}},
		{name: "tolls do not count", market: []string{"Family Restaurant"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, players := richTable(t)
			for _, n := range tt.deck {
				a.Acquire(stdCard(t, n))
			}
			var market []*card.Card
			for _, n := range tt.market {
				market = append(market, stdCard(t, n))
			}
			got := DeltaEV(stdCard(t, "Train Station"), a, players, 1, market...)
			if tt.positive && got <= 0 {
				t.Fatalf("DeltaEV = %v, want > 0", got)
			}
			if !tt.positive && !almostEqual(got, 0) {
				t.Fatalf("DeltaEV = %v, want 0", got)
			}
		})
	}
}

func TestDeltaEVTrainStationUsesMarketAlone(t *testing.T) {
	a, _, players := richTable(t)
	a.Acquire(stdCard(t, "Mine"))
	station := stdCard(t, "Train Station")

	if got := DeltaEV(station, a, players, 1); got <= 0 {
		t.Fatalf("without a market DeltaEV = %v, want the positive portfolio difference", got)
	}
	if got := DeltaEV(station, a, players, 1, stdCard(t, "Wheat Field")); !almostEqual(got, 0) {
		t.Fatalf("one-die market DeltaEV = %v, want 0", got)
	}

	// Worthless one-die cards still pull the one-die median down.
	mine := stdCard(t, "Mine")
	market := []*card.Card{mine, stdCard(t, "Wheat Field"), custom(card.KindBankToOwner, 0, 3), custom(card.KindBankToOwner, 0, 4)}
	clone, view := hypothetical(a, players)
	clone.Grant(card.UpgradeTrainStation)
	want := DeltaEV(mine, clone, view, 1)
	if got := DeltaEV(station, a, players, 1, market...); !almostEqual(got, want) {
		t.Fatalf("DeltaEV = %v, want %v", got, want)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{values: nil, want: 0},
		{values: []float64{3}, want: 3},
		{values: []float64{4, 1, 2}, want: 2},
		{values: []float64{4, 1, 2, 3}, want: 2.5},
	}
	for _, tt := range tests {
		if got := median(tt.values); got != tt.want {
			t.Fatalf("median(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
}

func TestScorePurchaseOptionsSorted(t *testing.T) {
	a, _, players := richTable(t)
	options := []*card.Card{stdCard(t, "Wheat Field"), stdCard(t, "Mine"), stdCard(t, "Forest"), stdCard(t, "TV Station")}

	scored := ScorePurchaseOptions(a, options, players, 1)

	if len(scored) != len(options) {
		t.Fatalf("scored %d options", len(scored))
	}
	for i := 1; i < len(scored); i++ {
		if scored[i-1].Value < scored[i].Value {
			t.Fatalf("not sorted: %v before %v", scored[i-1].Value, scored[i].Value)
		}
	}
	if scored[0].Card.Name != "TV Station" {
		t.Fatalf("best = %s, want TV Station", scored[0].Card.Name)
	}
}
