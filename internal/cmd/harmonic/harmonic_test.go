package harmonic

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/harmonictook/internal/bots"
	"github.com/louisbranch/harmonictook/internal/platform/config"
	"github.com/louisbranch/harmonictook/internal/storage/sqlite"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("harmonic", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Bots != 1 || cfg.Humans != 1 || cfg.BotKind != "thoughtful" {
		t.Fatalf("seats = %+v", cfg)
	}
	if cfg.MaxTurns != 1000 || cfg.Locale != "en" || cfg.Seed != 0 || cfg.Verbose {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("HARMONICTOOK_BOT_KIND", "coverage")
	t.Setenv("HARMONICTOOK_SEED", "17")

	fs := flag.NewFlagSet("harmonic", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-bots", "3", "-humans", "0", "-seed", "21", "-history", "h.db", "-v"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Bots != 3 || cfg.Humans != 0 || cfg.Seed != 21 || cfg.HistoryDB != "h.db" || !cfg.Verbose {
		t.Fatalf("flags = %+v", cfg)
	}
	if cfg.BotKind != "coverage" {
		t.Fatalf("bot kind = %q, want env value", cfg.BotKind)
	}
}

func TestParseConfigRejects(t *testing.T) {
	tests := [][]string{
		{"-bots", "-1"},
		{"-list"},
		{"extra"},
	}
	for _, args := range tests {
		fs := flag.NewFlagSet("harmonic", flag.ContinueOnError)
		fs.SetOutput(&bytes.Buffer{})
		if _, err := ParseConfig(fs, args); !errors.Is(err, config.ErrUsage) {
			t.Fatalf("ParseConfig(%v) err = %v, want ErrUsage", args, err)
		}
	}
}

func TestSeats(t *testing.T) {
	tests := []struct {
		bots, humans         int
		wantBots, wantHumans int
	}{
		{1, 1, 1, 1},
		{0, 0, 2, 0},
		{0, 1, 1, 1},
		{3, 0, 3, 0},
		{5, 0, 4, 0},
		{3, 2, 2, 2},
		{2, 6, 0, 4},
	}
	for _, tt := range tests {
		b, h := Seats(tt.bots, tt.humans)
		if b != tt.wantBots || h != tt.wantHumans {
			t.Fatalf("Seats(%d, %d) = %d, %d, want %d, %d", tt.bots, tt.humans, b, h, tt.wantBots, tt.wantHumans)
		}
	}
}

func TestRunRecordsHistory(t *testing.T) {
	ctx := context.Background()
	t.Setenv("HARMONICTOOK_OTEL_ENDPOINT", "")
	dbPath := filepath.Join(t.TempDir(), "history.db")
	cfg := Config{Bots: 3, BotKind: "ev", Seed: 3, MaxTurns: 80, HistoryDB: dbPath, Locale: "en"}

	var out, errOut bytes.Buffer
	if err := Run(ctx, cfg, strings.NewReader(""), &out, &errOut); err != nil {
		t.Fatalf("run: %v\n%s", err, errOut.String())
	}
	if !strings.Contains(out.String(), "-- turn 1:") {
		t.Fatalf("no state shown:\n%s", out.String())
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	games, err := store.Games(ctx)
	_ = store.Close()
	if err != nil || len(games) != 1 || games[0].Turns == 0 {
		t.Fatalf("games = %+v, %v", games, err)
	}

	var listing bytes.Buffer
	cfg.ListHistory = true
	if err := Run(ctx, cfg, nil, &listing, &errOut); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(listing.String(), games[0].ID) {
		t.Fatalf("listing = %q", listing.String())
	}
}

func TestRunWithHumanAndScript(t *testing.T) {
	t.Setenv("HARMONICTOOK_OTEL_ENDPOINT", "")
	path := filepath.Join(t.TempDir(), "pass.lua")
	if err := os.WriteFile(path, []byte(`function choose_action(view) return "pass" end`), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	// The human runs out of input at once and falls back to passing.
	cfg := Config{Bots: 1, Humans: 1, BotKind: "random", Seed: 11, MaxTurns: 12, Script: path, Locale: "en"}

	var out, errOut bytes.Buffer
	if err := Run(context.Background(), cfg, strings.NewReader(""), &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Script") || !strings.Contains(got, "Player") {
		t.Fatalf("seats missing from output:\n%s", got)
	}
	if !strings.Contains(got, "no winner after 12 turns") {
		t.Fatalf("turn limit not reported:\n%s", got)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	t.Setenv("HARMONICTOOK_OTEL_ENDPOINT", "")
	ctx := context.Background()
	var out bytes.Buffer

	err := Run(ctx, Config{Bots: 2, BotKind: "oracle", Locale: "en"}, nil, &out, &out)
	if !errors.Is(err, bots.ErrUnknownKind) || !errors.Is(err, config.ErrUsage) {
		t.Fatalf("err = %v, want unknown kind usage error", err)
	}
	if err := Run(ctx, Config{Bots: 2, BotKind: "ev", Locale: "not a locale!"}, nil, &out, &out); !errors.Is(err, config.ErrUsage) {
		t.Fatalf("err = %v, want usage error", err)
	}
	if err := Run(ctx, Config{Bots: 2, BotKind: "ev", Locale: "en", Catalog: "missing.yaml"}, nil, &out, &out); err == nil {
		t.Fatal("expected missing catalog error")
	}
}
