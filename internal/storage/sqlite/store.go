// Package sqlite stores turn history in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/louisbranch/harmonictook/internal/card"
	"github.com/louisbranch/harmonictook/internal/engine"
	"github.com/louisbranch/harmonictook/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/harmonictook/internal/storage/sqlite/migrations"
)

// ErrDuplicateTurn is returned when a game's turn number is recorded twice.
var ErrDuplicateTurn = errors.New("turn already recorded")

// cardSep joins card names in one column; no card name contains it.
const cardSep = "|"

// Store is an engine.Recorder backed by SQLite.
type Store struct {
	sqlDB *sql.DB
}

// GameSummary describes one recorded game.
type GameSummary struct {
	ID      string
	Started time.Time
	Turns   int
	// Winner is empty for unfinished games.
	Winner string
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the history database at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendTurn writes one turn record and its snapshots and events atomically.
func (s *Store) AppendTurn(ctx context.Context, rec engine.TurnRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(rec.GameID) == "" {
		return fmt.Errorf("game id is required")
	}
	completed := rec.Completed
	if completed.IsZero() {
		completed = time.Now()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin turn %d: %w", rec.Turn, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO games (id, started_at) VALUES (?, ?)`,
		rec.GameID, toMillis(completed),
	); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (game_id, turn, player, dice, roll, doubles, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.GameID, rec.Turn, rec.Player, joinInts(rec.Dice), rec.Roll, rec.Doubles, toMillis(completed),
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: game %s turn %d", ErrDuplicateTurn, rec.GameID, rec.Turn)
		}
		return fmt.Errorf("insert turn %d: %w", rec.Turn, err)
	}
	for i, p := range rec.Players {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turn_players (game_id, turn, seat, name, bank, cards, upgrades)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.GameID, rec.Turn, i, p.Name, p.Bank, strings.Join(p.Cards, cardSep), int(p.Upgrades),
		); err != nil {
			return fmt.Errorf("insert snapshot %s: %w", p.Name, err)
		}
	}
	for i, e := range rec.Events {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turn_events (game_id, turn, seq, type, player, target, card, given, value, category, dice, doubles, balance)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.GameID, rec.Turn, i, string(e.Type), e.Player, e.Target, e.Card, e.Given,
			e.Value, e.Category, joinInts(e.Dice), e.Doubles, e.Balance,
		); err != nil {
			return fmt.Errorf("insert event %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit turn %d: %w", rec.Turn, err)
	}
	return nil
}

// Turns returns a game's records in turn order.
func (s *Store) Turns(ctx context.Context, gameID string) ([]engine.TurnRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT turn, player, dice, roll, doubles, completed_at
		 FROM turns WHERE game_id = ? ORDER BY turn`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var records []engine.TurnRecord
	for rows.Next() {
		rec := engine.TurnRecord{GameID: gameID}
		var dice string
		var completed int64
		if err := rows.Scan(&rec.Turn, &rec.Player, &dice, &rec.Roll, &rec.Doubles, &completed); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if rec.Dice, err = splitInts(dice); err != nil {
			return nil, fmt.Errorf("turn %d dice: %w", rec.Turn, err)
		}
		rec.Completed = fromMillis(completed)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	for i := range records {
		if records[i].Players, err = s.snapshots(ctx, gameID, records[i].Turn); err != nil {
			return nil, err
		}
		if records[i].Events, err = s.events(ctx, gameID, records[i].Turn); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *Store) snapshots(ctx context.Context, gameID string, turn int) ([]engine.PlayerSnapshot, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT name, bank, cards, upgrades FROM turn_players
		 WHERE game_id = ? AND turn = ? ORDER BY seat`,
		gameID, turn,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []engine.PlayerSnapshot
	for rows.Next() {
		var p engine.PlayerSnapshot
		var cards string
		var upgrades int
		if err := rows.Scan(&p.Name, &p.Bank, &cards, &upgrades); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if cards != "" {
			p.Cards = strings.Split(cards, cardSep)
		}
		p.Upgrades = card.Upgrade(upgrades)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) events(ctx context.Context, gameID string, turn int) ([]engine.Event, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT type, player, target, card, given, value, category, dice, doubles, balance
		 FROM turn_events WHERE game_id = ? AND turn = ? ORDER BY seq`,
		gameID, turn,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []engine.Event
	for rows.Next() {
		var e engine.Event
		var typ, dice string
		if err := rows.Scan(&typ, &e.Player, &e.Target, &e.Card, &e.Given, &e.Value, &e.Category, &dice, &e.Doubles, &e.Balance); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = engine.EventType(typ)
		if e.Dice, err = splitInts(dice); err != nil {
			return nil, fmt.Errorf("event dice: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Games summarizes every recorded game, most recent first.
func (s *Store) Games(ctx context.Context) ([]GameSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT g.id, g.started_at,
		        (SELECT COUNT(*) FROM turns t WHERE t.game_id = g.id),
		        COALESCE((SELECT e.player FROM turn_events e WHERE e.game_id = g.id AND e.type = ? LIMIT 1), '')
		 FROM games g ORDER BY g.started_at DESC, g.id`,
		string(engine.EventWin),
	)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []GameSummary
	for rows.Next() {
		var g GameSummary
		var started int64
		if err := rows.Scan(&g.ID, &started, &g.Turns, &g.Winner); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.Started = fromMillis(started)
		out = append(out, g)
	}
	return out, rows.Err()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func splitInts(value string) ([]int, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
