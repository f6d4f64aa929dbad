// Package tournament plays a bot under evaluation against sparring bots
// across table sizes and tallies the outcome.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/harmonictook/internal/bots"
	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/core/dice"
	"github.com/louisbranch/harmonictook/internal/engine"
	"github.com/louisbranch/harmonictook/internal/ledger"
	"github.com/louisbranch/harmonictook/internal/platform/id"
	"github.com/louisbranch/harmonictook/internal/random"
)

const (
	// BUEName is the seat name of the bot under evaluation.
	BUEName = "BUE"

	defaultSparring = "random"
	defaultMaxTurns = 500
)

// DefaultSizes are the table sizes played when none are configured.
var DefaultSizes = []int{2, 3, 4}

var (
	// ErrNoGames is returned when no games per bracket are requested.
	ErrNoGames = errors.New("games per bracket must be positive")
	// ErrTableSize is returned for a table size outside 2..4.
	ErrTableSize = errors.New("table size must be between 2 and 4")
)

// Config describes a tournament.
type Config struct {
	// BUE is the bot kind under evaluation; it always sits first.
	BUE string
	// Sparring is the bot kind filling the other seats. Defaults to "random".
	Sparring string
	// Games is the number of games per table size.
	Games int
	Sizes []int
	Seed  int64
	// MaxTurns bounds each game. Defaults to 500.
	MaxTurns int
	// Workers is how many games run at once. Defaults to 1.
	Workers  int
	Catalog  *card.Catalog
	Recorder engine.Recorder
	Logger   *log.Logger
}

// Match is the outcome of one game.
type Match struct {
	GameID  string
	Players int
	Won     bool
	// Finished is false when the turn limit ended the game.
	Finished bool
	Turns    int
	// Score is the BUE's finish score.
	Score int
}

// Bracket tallies the games played at one table size.
type Bracket struct {
	Players    int
	Wins       int
	Losses     int
	Unfinished int
	TotalScore int
}

// Games returns the number of games in the bracket.
func (b Bracket) Games() int {
	return b.Wins + b.Losses
}

// WinRate returns wins over games, or zero for an empty bracket.
func (b Bracket) WinRate() float64 {
	if b.Games() == 0 {
		return 0
	}
	return float64(b.Wins) / float64(b.Games())
}

// MeanScore returns the BUE's average finish score.
func (b Bracket) MeanScore() float64 {
	if b.Games() == 0 {
		return 0
	}
	return float64(b.TotalScore) / float64(b.Games())
}

func (b *Bracket) add(m Match) {
	if m.Won {
		b.Wins++
	} else {
		b.Losses++
	}
	if !m.Finished {
		b.Unfinished++
	}
	b.TotalScore += m.Score
}

// Results is a finished tournament.
type Results struct {
	BUE      string
	Sparring string
	Seed     int64
	Brackets []Bracket
	Matches  []Match
}

// Overall sums every bracket. Its Players field is zero.
func (r Results) Overall() Bracket {
	var total Bracket
	for _, b := range r.Brackets {
		total.Wins += b.Wins
		total.Losses += b.Losses
		total.Unfinished += b.Unfinished
		total.TotalScore += b.TotalScore
	}
	return total
}

// Run plays cfg.Games games at every table size. The same seed replays the
// same games regardless of Workers.
func Run(ctx context.Context, cfg Config) (Results, error) {
	cfg, err := normalize(cfg)
	if err != nil {
		return Results{}, err
	}
	type job struct {
		players int
		index   int
		slot    int
	}
	var jobs []job
	for _, n := range cfg.Sizes {
		for i := 0; i < cfg.Games; i++ {
			jobs = append(jobs, job{players: n, index: i, slot: len(jobs)})
		}
	}

	matches := make([]Match, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, j := range jobs {
		g.Go(func() error {
			m, err := play(gctx, cfg, j.players, random.Derive(cfg.Seed, j.slot))
			if err != nil {
				return fmt.Errorf("%d-player game %d: %w", j.players, j.index+1, err)
			}
			matches[j.slot] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Results{}, err
	}

	res := Results{BUE: cfg.BUE, Sparring: cfg.Sparring, Seed: cfg.Seed, Matches: matches}
	for _, n := range cfg.Sizes {
		b := Bracket{Players: n}
		for _, m := range matches {
			if m.Players == n {
				b.add(m)
			}
		}
		res.Brackets = append(res.Brackets, b)
	}
	return res, nil
}

func normalize(cfg Config) (Config, error) {
	if cfg.Games <= 0 {
		return cfg, ErrNoGames
	}
	if cfg.Sparring == "" {
		cfg.Sparring = defaultSparring
	}
	for _, kind := range []string{cfg.BUE, cfg.Sparring} {
		if _, err := bots.New(kind, nil); err != nil {
			return cfg, err
		}
	}
	if len(cfg.Sizes) == 0 {
		cfg.Sizes = DefaultSizes
	}
	for _, n := range cfg.Sizes {
		if n < 2 || n > 4 {
			return cfg, fmt.Errorf("%w: %d", ErrTableSize, n)
		}
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = defaultMaxTurns
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Catalog == nil {
		cfg.Catalog = card.Standard()
	}
	return cfg, nil
}

func play(ctx context.Context, cfg Config, players int, seed int64) (Match, error) {
	gameID, err := id.NewID()
	if err != nil {
		return Match{}, err
	}
	seats := make([]*engine.Seat, players)
	for i := range seats {
		kind, name := cfg.Sparring, fmt.Sprintf("Bot %d", i)
		if i == 0 {
			kind, name = cfg.BUE, BUEName
		}
		policy, err := bots.New(kind, dice.NewSource(random.Derive(seed, i+1)))
		if err != nil {
			return Match{}, err
		}
		seats[i] = &engine.Seat{Player: ledger.NewPlayer(name, cfg.Catalog), Policy: policy}
	}
	game, err := engine.New(engine.Config{
		ID:       gameID,
		Catalog:  cfg.Catalog,
		Seats:    seats,
		Dice:     dice.NewSource(random.Derive(seed, 0)),
		Recorder: cfg.Recorder,
		MaxTurns: cfg.MaxTurns,
	})
	if err != nil {
		return Match{}, err
	}

	winner, err := game.Run(ctx)
	if err != nil && !errors.Is(err, engine.ErrTurnLimit) {
		return Match{}, err
	}
	bue := seats[0]
	m := Match{
		GameID:   gameID,
		Players:  players,
		Won:      winner == bue,
		Finished: winner != nil,
		Turns:    game.Turn(),
		Score:    FinishScore(bue.Player),
	}
	if cfg.Logger != nil {
		cfg.Logger.Printf("game %s: %d players, %d turns, bue won=%t score=%d", gameID, players, m.Turns, m.Won, m.Score)
	}
	return m, nil
}
