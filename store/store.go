// Package store archives game records in sqlite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
	"github.com/domino14/dobutsu/recordio"
)

var ErrNotFound = errors.New("game not found")

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	first_name TEXT NOT NULL,
	second_name TEXT NOT NULL,
	starter TEXT NOT NULL,
	allow_chick_drop_mate INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	termination TEXT NOT NULL,
	plies INTEGER NOT NULL,
	actions_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS games_created_at ON games(created_at);
`

type Store struct {
	db *sql.DB
}

// Open creates the schema if needed. ":memory:" gives a private
// in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Every connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("opened-game-store")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveGame inserts r, or replaces the row with the same id.
func (s *Store) SaveGame(ctx context.Context, r *recordio.Record) error {
	actions, err := json.Marshal(r.Actions)
	if err != nil {
		return err
	}
	outcome, err := r.Outcome.MarshalText()
	if err != nil {
		return err
	}
	starter, err := r.Starter.MarshalText()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO games
		(id, created_at, first_name, second_name, starter, allow_chick_drop_mate,
		 outcome, termination, plies, actions_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Created.UnixMilli(), r.Players[0], r.Players[1], string(starter),
		r.Rules.AllowChickDropMate, string(outcome), string(r.Termination),
		len(r.Actions), string(actions))
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*recordio.Record, error) {
	var (
		r                         recordio.Record
		created                   int64
		starter, outcome, actions string
		termination               string
	)
	err := row.Scan(&r.ID, &created, &r.Players[0], &r.Players[1], &starter,
		&r.Rules.AllowChickDropMate, &outcome, &termination, &actions)
	if err != nil {
		return nil, err
	}
	r.Created = time.UnixMilli(created).UTC()
	r.Termination = recordio.Termination(termination)
	if err := r.Starter.UnmarshalText([]byte(starter)); err != nil {
		return nil, err
	}
	if err := r.Outcome.UnmarshalText([]byte(outcome)); err != nil {
		return nil, err
	}
	var as []move.Action
	if err := json.Unmarshal([]byte(actions), &as); err != nil {
		return nil, fmt.Errorf("game %s: %w", r.ID, err)
	}
	r.Actions = as
	return &r, nil
}

const columns = `id, created_at, first_name, second_name, starter, allow_chick_drop_mate,
	outcome, termination, actions_json`

func (s *Store) GetGame(ctx context.Context, id string) (*recordio.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM games WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

// ListGames returns the newest games first.
func (s *Store) ListGames(ctx context.Context, limit int) ([]*recordio.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+columns+` FROM games ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*recordio.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Tally counts finished games by outcome.
func (s *Store) Tally(ctx context.Context) (map[game.Outcome]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM games WHERE outcome != '' GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tally := map[game.Outcome]int{}
	for rows.Next() {
		var text string
		var n int
		if err := rows.Scan(&text, &n); err != nil {
			return nil, err
		}
		var o game.Outcome
		if err := o.UnmarshalText([]byte(text)); err != nil {
			return nil, err
		}
		tally[o] = n
	}
	return tally, rows.Err()
}
