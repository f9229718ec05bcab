// internal/room/room.go
//
// Core type definitions for a room session.
// Defines:
//   - Mode, Difficulty, Status: string enums matching the wire values.
//   - Room: the persisted record; Status is the only field mutated after
//     creation.
//   - PublicView: everything a generic room read may expose. The solution
//     grid never appears here.

package room

import (
	"time"

	"github.com/sudokuduo/go-server/internal/grid"
)

// Mode controls whether submissions are scored individually (together)
// or paired and compared (competitive).
type Mode string

const (
	ModeTogether    Mode = "together"
	ModeCompetitive Mode = "competitive"
)

// ParseMode validates a client-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTogether, ModeCompetitive:
		return Mode(s), nil
	}
	return "", ErrInvalidMode
}

// Difficulty selects the puzzle difficulty requested from the source.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a client-supplied difficulty string.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), nil
	}
	return "", ErrInvalidDifficulty
}

// Status is the room lifecycle state. The only transition is
// waiting -> started; "start" on a started room re-applies the same status.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusStarted Status = "started"
)

// CodeLength is the fixed room code length.
const CodeLength = 6

// Room is the persisted room record.
type Room struct {
	ID         string
	Code       string
	Mode       Mode
	Difficulty Difficulty
	Puzzle     grid.Grid
	Solution   grid.Grid
	Status     Status
	CreatedAt  time.Time
}

// PublicView is the room as returned to clients: the solution is stripped.
type PublicView struct {
	RoomCode   string     `json:"roomCode"`
	Mode       Mode       `json:"mode"`
	Difficulty Difficulty `json:"difficulty"`
	Puzzle     grid.Grid  `json:"puzzle"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Public derives the client-safe view of the room.
func (r *Room) Public() PublicView {
	return PublicView{
		RoomCode:   r.Code,
		Mode:       r.Mode,
		Difficulty: r.Difficulty,
		Puzzle:     r.Puzzle,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
	}
}
