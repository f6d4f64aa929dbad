// Package harmonic parses the play command's configuration and runs one game.
package harmonic

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/louisbranch/harmonictook/internal/bots"
	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/core/dice"
	"github.com/louisbranch/harmonictook/internal/display"
	"github.com/louisbranch/harmonictook/internal/engine"
	"github.com/louisbranch/harmonictook/internal/ledger"
	entrypoint "github.com/louisbranch/harmonictook/internal/platform/cmd"
	"github.com/louisbranch/harmonictook/internal/platform/config"
	"github.com/louisbranch/harmonictook/internal/platform/id"
	"github.com/louisbranch/harmonictook/internal/random"
	"github.com/louisbranch/harmonictook/internal/script"
	"github.com/louisbranch/harmonictook/internal/storage/sqlite"
)

const (
	minSeats = 2
	maxSeats = 4
)

// Config holds play command configuration.
type Config struct {
	Bots     int    `env:"BOTS" envDefault:"1"`
	Humans   int    `env:"HUMANS" envDefault:"1"`
	BotKind  string `env:"BOT_KIND" envDefault:"thoughtful"`
	Seed     int64  `env:"SEED"`
	MaxTurns int    `env:"MAX_TURNS" envDefault:"1000"`
	// Script is a Lua policy file driving the first bot seat.
	Script string `env:"SCRIPT"`
	// Catalog is a YAML card catalog replacing the embedded one.
	Catalog   string `env:"CATALOG"`
	HistoryDB string `env:"HISTORY_DB"`
	// ListHistory prints the games recorded in HistoryDB instead of playing.
	ListHistory bool   `env:"LIST_HISTORY"`
	Verbose     bool   `env:"VERBOSE"`
	Locale      string `env:"LOCALE" envDefault:"en"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Bots, "bots", cfg.Bots, "Number of bot players")
	fs.IntVar(&cfg.Humans, "humans", cfg.Humans, "Number of human players")
	fs.StringVar(&cfg.BotKind, "bot", cfg.BotKind, "Bot kind: "+strings.Join(bots.Kinds(), ", "))
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed (0 picks one)")
	fs.IntVar(&cfg.MaxTurns, "max-turns", cfg.MaxTurns, "Stop after this many turns (0 for no limit)")
	fs.StringVar(&cfg.Script, "script", cfg.Script, "Lua policy script for the first bot")
	fs.StringVar(&cfg.Catalog, "catalog", cfg.Catalog, "YAML card catalog file")
	fs.StringVar(&cfg.HistoryDB, "history", cfg.HistoryDB, "SQLite file recording every turn")
	fs.BoolVar(&cfg.ListHistory, "list", cfg.ListHistory, "List the games in -history and exit")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Show idle cards and per-phase traces")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for number formatting")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Bots < 0 || cfg.Humans < 0 {
		return Config{}, fmt.Errorf("%w: player counts must not be negative", config.ErrUsage)
	}
	if cfg.ListHistory && cfg.HistoryDB == "" {
		return Config{}, fmt.Errorf("%w: -list needs -history", config.ErrUsage)
	}
	return cfg, nil
}

// Seats clamps the table to 2..4 players. Missing seats go to bots; extra
// seats are taken from bots first.
func Seats(nBots, nHumans int) (int, int) {
	nHumans = min(max(nHumans, 0), maxSeats)
	nBots = max(nBots, 0)
	if nBots+nHumans < minSeats {
		nBots = minSeats - nHumans
	}
	if nBots+nHumans > maxSeats {
		nBots = maxSeats - nHumans
	}
	return nBots, nHumans
}

// Run plays one game, or lists recorded games when cfg.ListHistory is set.
func Run(ctx context.Context, cfg Config, in io.Reader, out, errOut io.Writer) error {
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceHarmonic,
		entrypoint.RunOptions{Logger: log.New(errOut, "", 0)},
		func(ctx context.Context) error {
			if cfg.ListHistory {
				return list(ctx, cfg.HistoryDB, out)
			}
			return play(ctx, cfg, in, out, errOut)
		})
}

func play(ctx context.Context, cfg Config, in io.Reader, out, errOut io.Writer) error {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return fmt.Errorf("%w: locale %q: %w", config.ErrUsage, cfg.Locale, err)
	}
	catalog, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}
	seed, err := random.Resolve(cfg.Seed)
	if err != nil {
		return err
	}
	logger := log.New(errOut, "", 0)

	text := display.NewText(in, out, tag)
	text.Verbose = cfg.Verbose
	seats, err := buildSeats(cfg, catalog, seed, text, logger)
	if err != nil {
		return err
	}

	gameID, err := id.NewID()
	if err != nil {
		return err
	}
	gameCfg := engine.Config{
		ID:       gameID,
		Catalog:  catalog,
		Seats:    seats,
		Dice:     dice.NewSource(random.Derive(seed, 0)),
		Display:  text,
		MaxTurns: cfg.MaxTurns,
	}
	if cfg.Verbose {
		gameCfg.Logger = logger
		logger.Printf("game %s seed %d", gameID, seed)
	}
	if cfg.HistoryDB != "" {
		store, err := sqlite.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Printf("close history: %v", err)
			}
		}()
		gameCfg.Recorder = store
	}

	game, err := engine.New(gameCfg)
	if err != nil {
		return err
	}
	if _, err := game.Run(ctx); err != nil {
		if errors.Is(err, engine.ErrTurnLimit) {
			text.ShowInfo(fmt.Sprintf("no winner after %d turns", game.Turn()))
			return nil
		}
		return err
	}
	return nil
}

func buildSeats(cfg Config, catalog *card.Catalog, seed int64, text *display.Text, logger *log.Logger) ([]*engine.Seat, error) {
	nBots, nHumans := Seats(cfg.Bots, cfg.Humans)
	var seats []*engine.Seat
	for i := 0; i < nHumans; i++ {
		name := "Player"
		if nHumans > 1 {
			name = fmt.Sprintf("Player %d", i+1)
		}
		seats = append(seats, &engine.Seat{
			Player: ledger.NewPlayer(name, catalog),
			Policy: bots.NewHuman(text),
		})
	}
	for i := 0; i < nBots; i++ {
		policy, err := bots.New(cfg.BotKind, dice.NewSource(random.Derive(seed, len(seats)+1)))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrUsage, err)
		}
		name := fmt.Sprintf("Bot %d", i+1)
		if i == 0 && cfg.Script != "" {
			scripted, err := script.Load(cfg.Script, policy)
			if err != nil {
				return nil, err
			}
			scripted.Logger = logger
			policy = scripted
			name = "Script"
		}
		seats = append(seats, &engine.Seat{Player: ledger.NewPlayer(name, catalog), Policy: policy})
	}
	return seats, nil
}

func loadCatalog(path string) (*card.Catalog, error) {
	if path == "" {
		return card.Standard(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return card.Load(data)
}

func list(ctx context.Context, path string, out io.Writer) error {
	store, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.Games(ctx)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		_, err := fmt.Fprintln(out, "no games recorded")
		return err
	}
	for _, g := range games {
		winner := g.Winner
		if winner == "" {
			winner = "-"
		}
		if _, err := fmt.Fprintf(out, "%s  %s  %4d turns  winner %s\n",
			g.ID, g.Started.Format("2006-01-02 15:04"), g.Turns, winner); err != nil {
			return err
		}
	}
	return nil
}
