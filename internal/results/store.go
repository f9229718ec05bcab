// internal/results/store.go
//
// Round-result history for competitive rooms. One row per completed
// pairing round; powers the recent-winners leaderboard. Recording is
// best-effort from the coordinator's point of view — a failed insert is
// logged there and never affects the round itself.

package results

import (
	"context"
	"database/sql"
	"time"

	"github.com/sudokuduo/go-server/internal/coordinator"
)

// Store persists round results in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordRound inserts one row for a completed competitive round.
// Implements coordinator.RoundRecorder.
func (s *Store) RecordRound(ctx context.Context, roomCode string, subs []coordinator.ScoredSubmission, result coordinator.ValidationResult) error {
	winnerName := ""
	bestMistakes := 0
	for i, sub := range subs {
		if i == 0 || sub.Mistakes < bestMistakes {
			bestMistakes = sub.Mistakes
		}
		if sub.ClientID == result.Winner {
			winnerName = sub.Name
		}
	}
	tie := 0
	if result.Tie {
		tie = 1
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO results (room_code, winner_client_id, winner_name, tie, best_mistakes, created_at)
        VALUES (?,?,?,?,?,?)`,
		roomCode, result.Winner, winnerName, tie, bestMistakes,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Row is one leaderboard entry.
type Row struct {
	RoomCode     string `json:"roomCode"`
	WinnerName   string `json:"winnerName,omitempty"`
	Tie          bool   `json:"tie,omitempty"`
	BestMistakes int    `json:"bestMistakes"`
	CreatedAt    string `json:"createdAt"`
}

// Recent returns the most recent round results, newest first.
// Default limit is 20 if not specified.
func (s *Store) Recent(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT room_code, winner_name, tie, best_mistakes, created_at
        FROM results
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Row, 0, limit)
	for rows.Next() {
		var (
			r   Row
			tie int
		)
		if err := rows.Scan(&r.RoomCode, &r.WinnerName, &tie, &r.BestMistakes, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Tie = tie == 1
		out = append(out, r)
	}
	return out, rows.Err()
}
