// internal/puzzle/local.go
//
// Local puzzle source: fills an empty board into a full valid solution by
// randomized backtracking, then carves cells down to a difficulty-dependent
// number of givens. Used when no API key is configured. Carving does not
// verify solution uniqueness; the givens targets approximate difficulty.

package puzzle

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sudokuduo/go-server/internal/grid"
	"github.com/sudokuduo/go-server/internal/room"
)

// Local generates puzzles in-process.
type Local struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocal seeds a generator from the clock.
func NewLocal() *Local {
	return &Local{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// targetGivens maps difficulty to the number of clues left in the puzzle.
func targetGivens(d room.Difficulty) int {
	switch d {
	case room.DifficultyEasy:
		return 40
	case room.DifficultyMedium:
		return 32
	default:
		return 26 // hard
	}
}

func (l *Local) Generate(ctx context.Context, d room.Difficulty) (grid.Grid, grid.Grid, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var solution grid.Grid
	if !fillRandom(ctx, l.rng, &solution) {
		return grid.Grid{}, grid.Grid{}, room.ErrUpstreamUnavailable
	}

	puzzle := solution
	positions := l.rng.Perm(grid.Size * grid.Size)
	remaining := grid.Size * grid.Size
	target := targetGivens(d)
	for _, pos := range positions {
		if remaining <= target {
			break
		}
		r, c := pos/grid.Size, pos%grid.Size
		puzzle[r][c] = 0
		remaining--
	}
	return puzzle, solution, nil
}

// fillRandom solves an empty grid into a full valid solution, trying digits
// in random order at each cell.
func fillRandom(ctx context.Context, rng *rand.Rand, g *grid.Grid) bool {
	var nums [9]int
	for i := range nums {
		nums[i] = i + 1
	}
	var dfs func(r, c int) bool
	dfs = func(r, c int) bool {
		if ctx.Err() != nil {
			return false
		}
		if r == grid.Size {
			return true
		}
		nr, nc := r, c+1
		if nc == grid.Size {
			nr, nc = r+1, 0
		}
		rng.Shuffle(len(nums), func(i, j int) { nums[i], nums[j] = nums[j], nums[i] })
		for _, v := range nums {
			if allowed(g, r, c, v) {
				g[r][c] = v
				if dfs(nr, nc) {
					return true
				}
				g[r][c] = 0
			}
		}
		return false
	}
	return dfs(0, 0)
}

// allowed checks the row, column, and 3x3 box constraints for placing v.
func allowed(g *grid.Grid, r, c, v int) bool {
	for i := 0; i < grid.Size; i++ {
		if g[r][i] == v || g[i][c] == v {
			return false
		}
	}
	br, bc := (r/3)*3, (c/3)*3
	for dr := 0; dr < 3; dr++ {
		for dc := 0; dc < 3; dc++ {
			if g[br+dr][bc+dc] == v {
				return false
			}
		}
	}
	return true
}
