// internal/store/sqlite.go
//
// SQLite-backed implementation of the Store interface.
// The rooms table carries a unique index on code; grids are stored as JSON
// text in the null-padded 9x9 shape the clients use. Schema lives in
// ./sql and is applied by the migration runner in package main.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sudokuduo/go-server/internal/grid"
	"github.com/sudokuduo/go-server/internal/room"
)

// sqlite persists rooms in a *sql.DB opened with the sqlite3 driver.
type sqlite struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database handle.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqlite{db: db}
}

func (s *sqlite) Create(ctx context.Context, r *room.Room) error {
	puzzle, err := json.Marshal(r.Puzzle)
	if err != nil {
		return fmt.Errorf("encode puzzle: %w", err)
	}
	solution, err := json.Marshal(r.Solution)
	if err != nil {
		return fmt.Errorf("encode solution: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO rooms (id, code, mode, difficulty, puzzle, solution, status, created_at)
        VALUES (?,?,?,?,?,?,?,?)`,
		r.ID, r.Code, string(r.Mode), string(r.Difficulty),
		string(puzzle), string(solution), string(r.Status),
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *sqlite) FindByCode(ctx context.Context, code string) (*room.Room, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, code, mode, difficulty, puzzle, solution, status, created_at
        FROM rooms WHERE code=?`, code)
	return scanRoom(row)
}

func (s *sqlite) UpdateStatus(ctx context.Context, code string, status room.Status) (*room.Room, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE rooms SET status=? WHERE code=?`, string(status), code)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, room.ErrNotFound
	}
	return s.FindByCode(ctx, code)
}

func (s *sqlite) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	ts := cutoff.UTC().Format(time.RFC3339)
	rows, err := s.db.QueryContext(ctx, `SELECT code FROM rooms WHERE created_at < ?`, ts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE created_at < ?`, ts); err != nil {
		return nil, err
	}
	return codes, nil
}

// scanRoom converts a rooms row into a *room.Room.
func scanRoom(row *sql.Row) (*room.Room, error) {
	var r room.Room
	var mode, diff, status string
	var puzzle, solution, created string
	err := row.Scan(&r.ID, &r.Code, &mode, &diff, &puzzle, &solution, &status, &created)
	if err == sql.ErrNoRows {
		return nil, room.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Mode = room.Mode(mode)
	r.Difficulty = room.Difficulty(diff)
	r.Status = room.Status(status)
	var pg, sg grid.Grid
	if err := json.Unmarshal([]byte(puzzle), &pg); err != nil {
		return nil, fmt.Errorf("decode puzzle: %w", err)
	}
	if err := json.Unmarshal([]byte(solution), &sg); err != nil {
		return nil, fmt.Errorf("decode solution: %w", err)
	}
	r.Puzzle, r.Solution = pg, sg
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		r.CreatedAt = t
	}
	return &r, nil
}
