// internal/grid/grid.go
//
// 9x9 sudoku grid value type and the comparison primitives used by the
// submission engine:
//   - Grid: [9][9]int, 0 means empty; JSON encodes empties as null to match
//     the puzzle API and the web client.
//   - IsComplete: every cell filled with a digit 1-9.
//   - MistakeCount / Diff: cell-for-cell comparison against a solution.
//     Both are safe on partial grids (empty cells count as mismatches),
//     so Diff can also drive per-cell highlighting in the UI.

package grid

import (
	"encoding/json"
	"fmt"
)

// Size is the board edge length.
const Size = 9

// Grid is a sudoku board. A zero cell is empty; filled cells hold 1-9.
type Grid [Size][Size]int

// IsComplete reports whether all 81 cells hold a digit 1-9.
func (g Grid) IsComplete() bool {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if g[r][c] < 1 || g[r][c] > 9 {
				return false
			}
		}
	}
	return true
}

// Diff returns a mask marking every cell where g differs from solution.
// Empty cells in g always differ, since solutions are fully filled.
func Diff(g, solution Grid) [Size][Size]bool {
	var mask [Size][Size]bool
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			mask[r][c] = g[r][c] != solution[r][c]
		}
	}
	return mask
}

// MistakeCount counts the cells where g disagrees with solution.
func MistakeCount(g, solution Grid) int {
	mask := Diff(g, solution)
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if mask[r][c] {
				n++
			}
		}
	}
	return n
}

// MarshalJSON encodes the grid as a 9x9 array with null for empty cells,
// the shape the puzzle API returns and the frontend renders.
func (g Grid) MarshalJSON() ([]byte, error) {
	rows := make([][]*int, Size)
	for r := 0; r < Size; r++ {
		rows[r] = make([]*int, Size)
		for c := 0; c < Size; c++ {
			if g[r][c] != 0 {
				v := g[r][c]
				rows[r][c] = &v
			}
		}
	}
	return json.Marshal(rows)
}

// UnmarshalJSON decodes a 9x9 array where cells are digits 1-9, null, or 0.
// Anything else (wrong shape, out-of-range values) is rejected.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows [][]*int
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != Size {
		return fmt.Errorf("grid: expected %d rows, got %d", Size, len(rows))
	}
	var out Grid
	for r, row := range rows {
		if len(row) != Size {
			return fmt.Errorf("grid: row %d has %d cells, expected %d", r, len(row), Size)
		}
		for c, cell := range row {
			if cell == nil {
				continue
			}
			if *cell < 0 || *cell > 9 {
				return fmt.Errorf("grid: cell (%d,%d) out of range: %d", r, c, *cell)
			}
			out[r][c] = *cell
		}
	}
	*g = out
	return nil
}
