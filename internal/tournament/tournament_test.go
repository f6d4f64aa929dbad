package tournament

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/louisbranch/harmonictook/internal/bots"
	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/engine"
	"github.com/louisbranch/harmonictook/internal/ledger"
)

func acquire(t *testing.T, p *ledger.Player, names ...string) {
	t.Helper()
	for _, name := range names {
		tmpl, ok := card.Standard().Lookup(name)
		if !ok {
			t.Fatalf("unknown card %q", name)
		}
		p.Acquire(card.New(tmpl))
	}
}

func TestFinishScore(t *testing.T) {
	p := ledger.NewPlayer("p", card.Standard())
	// Wheat Field and Bakery at x2 plus a bank of 3.
	if got := FinishScore(p); got != 7 {
		t.Fatalf("starting score = %d, want 7", got)
	}

	acquire(t, p, "Train Station")
	if got := FinishScore(p); got != 7+12 {
		t.Fatalf("with Train Station = %d, want 19", got)
	}

	winner := ledger.NewPlayer("w", card.Standard())
	loser := ledger.NewPlayer("l", card.Standard())
	for _, q := range []*ledger.Player{winner, loser} {
		acquire(t, q, "Train Station", "Shopping Mall", "Amusement Park")
		q.Bank = 10
	}
	acquire(t, winner, "Radio Tower")
	if !winner.Winner() || loser.Winner() {
		t.Fatal("landmarks not granted")
	}
	if diff := FinishScore(winner) - FinishScore(loser); diff != 22*3+WinnerBonus {
		t.Fatalf("winner margin = %d, want %d", diff, 22*3+WinnerBonus)
	}
}

func TestBracketRates(t *testing.T) {
	var b Bracket
	if b.WinRate() != 0 || b.MeanScore() != 0 {
		t.Fatal("empty bracket should rate zero")
	}
	b.add(Match{Won: true, Finished: true, Score: 90})
	b.add(Match{Score: 30})
	if b.Games() != 2 || b.Wins != 1 || b.Losses != 1 || b.Unfinished != 1 {
		t.Fatalf("bracket = %+v", b)
	}
	if b.WinRate() != 0.5 || b.MeanScore() != 60 {
		t.Fatalf("rate = %v, mean = %v", b.WinRate(), b.MeanScore())
	}
}

func TestRunValidates(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"no games", Config{BUE: "ev"}, ErrNoGames},
		{"unknown bue", Config{BUE: "oracle", Games: 1}, bots.ErrUnknownKind},
		{"unknown sparring", Config{BUE: "ev", Sparring: "oracle", Games: 1}, bots.ErrUnknownKind},
		{"table too big", Config{BUE: "ev", Games: 1, Sizes: []int{5}}, ErrTableSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Run(ctx, tt.cfg); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

type countingRecorder struct {
	turns chan engine.TurnRecord
}

func (r countingRecorder) AppendTurn(_ context.Context, rec engine.TurnRecord) error {
	r.turns <- rec
	return nil
}

func TestRunIsReproducible(t *testing.T) {
	ctx := context.Background()
	cfg := Config{BUE: "thoughtful", Games: 3, Seed: 99, MaxTurns: 60}

	serial, err := Run(ctx, cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	cfg.Workers = 4
	parallel, err := Run(ctx, cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(serial.Brackets) != 3 || len(serial.Matches) != 9 {
		t.Fatalf("results = %+v", serial)
	}
	for i, b := range serial.Brackets {
		if b.Players != DefaultSizes[i] || b.Games() != 3 {
			t.Fatalf("bracket %d = %+v", i, b)
		}
		if parallel.Brackets[i] != b {
			t.Fatalf("bracket %d differs: %+v vs %+v", i, b, parallel.Brackets[i])
		}
	}
	for i, m := range serial.Matches {
		if m.Turns == 0 || m.Turns > 60 || (m.Won && !m.Finished) {
			t.Fatalf("match %d = %+v", i, m)
		}
		if m.GameID == "" || m.GameID == parallel.Matches[i].GameID {
			t.Fatalf("match %d reused id %q", i, m.GameID)
		}
	}
	if total := serial.Overall(); total.Games() != 9 {
		t.Fatalf("overall = %+v", total)
	}
}

func TestRunRecordsTurns(t *testing.T) {
	rec := countingRecorder{turns: make(chan engine.TurnRecord, 1000)}
	res, err := Run(context.Background(), Config{
		BUE:      "thoughtful",
		Sparring: "impatient",
		Games:    1,
		Sizes:    []int{2},
		Seed:     5,
		MaxTurns: 40,
		Recorder: rec,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	close(rec.turns)
	n := 0
	for r := range rec.turns {
		if r.GameID != res.Matches[0].GameID {
			t.Fatalf("turn recorded under %q", r.GameID)
		}
		n++
	}
	if n != res.Matches[0].Turns {
		t.Fatalf("recorded %d turns, played %d", n, res.Matches[0].Turns)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Config{BUE: "ev", Games: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestReport(t *testing.T) {
	res := Results{
		BUE:      "ev",
		Sparring: "random",
		Seed:     7,
		Brackets: []Bracket{
			{Players: 2, Wins: 1, Losses: 1, TotalScore: 100},
			{Players: 3, Wins: 2, Losses: 1, Unfinished: 1, TotalScore: 300},
		},
	}
	var out bytes.Buffer
	if err := Report(&out, language.English, res); err != nil {
		t.Fatalf("report: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"ev vs random (seed 7)",
		"2-player:",
		"1W / 1L  (50%)",
		"2W / 1L  (66.7%)",
		"mean score 100.0",
		"[1 unfinished]",
		"Overall:",
		"3W / 2L  (60%)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
}

func TestReportTranslates(t *testing.T) {
	res := Results{BUE: "ev", Sparring: "random", Seed: 1, Brackets: []Bracket{{Players: 4, Wins: 1, Losses: 3, TotalScore: 40}}}
	var out bytes.Buffer
	if err := Report(&out, language.BrazilianPortuguese, res); err != nil {
		t.Fatalf("report: %v", err)
	}
	for _, want := range []string{"Resultados do torneio: ev contra random", "4 jogadores:", "1V / 3D", "Geral:", "pontuação média 10,0"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("report missing %q:\n%s", want, out.String())
		}
	}
}
