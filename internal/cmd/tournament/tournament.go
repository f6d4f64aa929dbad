// Package tournament parses bracket runner configuration and reports results.
package tournament

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"

	"golang.org/x/text/language"

	"github.com/louisbranch/harmonictook/internal/bots"
	entrypoint "github.com/louisbranch/harmonictook/internal/platform/cmd"
	"github.com/louisbranch/harmonictook/internal/platform/config"
	"github.com/louisbranch/harmonictook/internal/random"
	"github.com/louisbranch/harmonictook/internal/storage/sqlite"
	"github.com/louisbranch/harmonictook/internal/tournament"
)

// Config holds tournament command configuration.
type Config struct {
	Games     int    `env:"TOURNAMENT_GAMES" envDefault:"5"`
	BUE       string `env:"TOURNAMENT_BUE" envDefault:"ev"`
	Sparring  string `env:"TOURNAMENT_SPARRING" envDefault:"random"`
	Seed      int64  `env:"SEED"`
	MaxTurns  int    `env:"MAX_TURNS" envDefault:"500"`
	Workers   int    `env:"TOURNAMENT_WORKERS"`
	HistoryDB string `env:"HISTORY_DB"`
	Verbose   bool   `env:"VERBOSE"`
	Locale    string `env:"LOCALE" envDefault:"en"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	kinds := strings.Join(bots.Kinds(), ", ")
	fs.IntVar(&cfg.Games, "games", cfg.Games, "Games per bracket")
	fs.StringVar(&cfg.BUE, "bue", cfg.BUE, "Bot under evaluation: "+kinds)
	fs.StringVar(&cfg.Sparring, "sparring", cfg.Sparring, "Sparring partner kind: "+kinds)
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed (0 picks one)")
	fs.IntVar(&cfg.MaxTurns, "max-turns", cfg.MaxTurns, "Turn limit per game")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Games played at once (0 uses every CPU)")
	fs.StringVar(&cfg.HistoryDB, "history", cfg.HistoryDB, "SQLite file recording every turn")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Log each game")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for the report")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Games <= 0 {
		return Config{}, fmt.Errorf("%w: -games must be positive", config.ErrUsage)
	}
	return cfg, nil
}

// Run plays the tournament and writes the report to out.
func Run(ctx context.Context, cfg Config, out, errOut io.Writer) error {
	logger := log.New(errOut, "", 0)
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceTournament,
		entrypoint.RunOptions{Logger: logger},
		func(ctx context.Context) error {
			tag, err := language.Parse(cfg.Locale)
			if err != nil {
				return fmt.Errorf("%w: locale %q: %w", config.ErrUsage, cfg.Locale, err)
			}
			seed, err := random.Resolve(cfg.Seed)
			if err != nil {
				return err
			}
			workers := cfg.Workers
			if workers <= 0 {
				workers = runtime.GOMAXPROCS(0)
			}
			tcfg := tournament.Config{
				BUE:      cfg.BUE,
				Sparring: cfg.Sparring,
				Games:    cfg.Games,
				Seed:     seed,
				MaxTurns: cfg.MaxTurns,
				Workers:  workers,
			}
			if cfg.Verbose {
				tcfg.Logger = logger
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
				tcfg.Recorder = store
			}

			res, err := tournament.Run(ctx, tcfg)
			if err != nil {
				return err
			}
			return tournament.Report(out, tag, res)
		})
}
