// internal/puzzle/source.go
//
// Puzzle source contract: given a difficulty, produce a puzzle grid and its
// fully-filled solution. Implementations: the API Ninjas HTTP client
// (apininjas.go) and a local backtracking generator (local.go).

package puzzle

import (
	"context"

	"github.com/sudokuduo/go-server/internal/grid"
	"github.com/sudokuduo/go-server/internal/room"
)

// Source produces puzzle/solution pairs for new rooms.
type Source interface {
	// Generate returns a puzzle and its solution for the difficulty.
	// Failures surface as room.ErrUpstreamUnavailable (wrapped), so the
	// caller never persists a half-created room.
	Generate(ctx context.Context, d room.Difficulty) (puzzle, solution grid.Grid, err error)
}
