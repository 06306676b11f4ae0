package grid

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrOutOfRange = errors.New("cell out of range")
	ErrEmpty      = errors.New("grid has no cells")
	ErrJagged     = errors.New("grid rows have different lengths")
	ErrRotation   = errors.New("rotation must be a multiple of 90")
)

// Cell is one placed tile. Rotation is in degrees, one of 0, 90, 180, 270.
type Cell struct {
	TileID   string `json:"tileId"`
	Rotation int    `json:"rotation"`
}

// Grid is a rectangular, row-major arrangement of cells.
// Values are never mutated in place: every operation returns a new Grid.
type Grid struct {
	rows  int
	cols  int
	cells []Cell
}

// Create builds a rows x cols grid with every cell set to {tileID, 0}.
func Create(rows, cols int, tileID string) Grid {
	mustDims(rows, cols)
	g := Grid{rows: rows, cols: cols, cells: make([]Cell, rows*cols)}
	for i := range g.cells {
		g.cells[i] = Cell{TileID: tileID}
	}
	return g
}

// FromRows copies a two dimensional slice into a Grid.
// Empty and jagged input is rejected, as is any rotation that is not a multiple of 90.
func FromRows(rows [][]Cell) (Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Grid{}, ErrEmpty
	}
	cols := len(rows[0])
	g := Grid{rows: len(rows), cols: cols, cells: make([]Cell, 0, len(rows)*cols)}
	for r, row := range rows {
		if len(row) != cols {
			return Grid{}, fmt.Errorf("%w: row %d has %d cells, want %d", ErrJagged, r, len(row), cols)
		}
		for c, cell := range row {
			rot, ok := NormalizeRotation(cell.Rotation)
			if !ok {
				return Grid{}, fmt.Errorf("%w: cell (%d,%d) has %d", ErrRotation, r, c, cell.Rotation)
			}
			g.cells = append(g.cells, Cell{TileID: cell.TileID, Rotation: rot})
		}
	}
	return g, nil
}

// NormalizeRotation folds deg into [0, 360). ok is false when deg is not a quarter turn.
func NormalizeRotation(deg int) (int, bool) {
	if deg%90 != 0 {
		return 0, false
	}
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg, true
}

func (g Grid) Rows() int { return g.rows }
func (g Grid) Cols() int { return g.cols }

// Empty reports whether g is the zero Grid.
func (g Grid) Empty() bool { return g.rows == 0 || g.cols == 0 }

func (g Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// At returns the cell at (row, col). It panics when the coordinates are out of range.
func (g Grid) At(row, col int) Cell {
	g.mustInBounds(row, col)
	return g.cells[row*g.cols+col]
}

// Cells returns a copy of the grid as rows of cells.
func (g Grid) Cells() [][]Cell {
	out := make([][]Cell, g.rows)
	for r := 0; r < g.rows; r++ {
		row := make([]Cell, g.cols)
		copy(row, g.cells[r*g.cols:(r+1)*g.cols])
		out[r] = row
	}
	return out
}

// Each calls fn for every cell in row-major order.
func (g Grid) Each(fn func(row, col int, c Cell)) {
	for i, c := range g.cells {
		fn(i/g.cols, i%g.cols, c)
	}
}

// Tally counts cells per tile id.
func (g Grid) Tally() map[string]int {
	counts := make(map[string]int)
	for _, c := range g.cells {
		counts[c.TileID]++
	}
	return counts
}

func (g Grid) Len() int { return len(g.cells) }

func (g Grid) Equal(o Grid) bool {
	if g.rows != o.rows || g.cols != o.cols {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

func (g Grid) clone() Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return Grid{rows: g.rows, cols: g.cols, cells: cells}
}

// Paint is the click rule: the same tile rotates a quarter turn, a different tile replaces the
// cell and resets its rotation.
func Paint(g Grid, row, col int, tileID string) Grid {
	g.mustInBounds(row, col)
	next := g.clone()
	i := row*g.cols + col
	cell := next.cells[i]
	if cell.TileID == tileID {
		cell.Rotation = (cell.Rotation + 90) % 360
	} else {
		cell = Cell{TileID: tileID}
	}
	next.cells[i] = cell
	return next
}

// PaintDrag is the stroke rule: the cell always becomes {tileID, 0}.
// When it already is, g is returned unchanged.
func PaintDrag(g Grid, row, col int, tileID string) Grid {
	g.mustInBounds(row, col)
	want := Cell{TileID: tileID}
	if g.cells[row*g.cols+col] == want {
		return g
	}
	next := g.clone()
	next.cells[row*g.cols+col] = want
	return next
}

// Resize keeps the top-left overlap of g and fills new cells with {tileID, 0}.
// Bounds are the caller's concern; only non-positive sizes panic.
func Resize(g Grid, rows, cols int, tileID string) Grid {
	next := Create(rows, cols, tileID)
	for r := 0; r < rows && r < g.rows; r++ {
		for c := 0; c < cols && c < g.cols; c++ {
			next.cells[r*cols+c] = g.cells[r*g.cols+c]
		}
	}
	return next
}

// Fill sets every cell to {tileID, 0} and keeps the dimensions.
func Fill(g Grid, tileID string) Grid {
	return Create(g.rows, g.cols, tileID)
}

func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Cells())
}

func (g *Grid) UnmarshalJSON(b []byte) error {
	var rows [][]Cell
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	parsed, err := FromRows(rows)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

func (g Grid) String() string {
	return fmt.Sprintf("grid %dx%d", g.rows, g.cols)
}

func (g Grid) mustInBounds(row, col int) {
	if !g.InBounds(row, col) {
		panic(fmt.Sprintf("grid: %v: (%d,%d) not in %dx%d", ErrOutOfRange, row, col, g.rows, g.cols))
	}
}

func mustDims(rows, cols int) {
	if rows < 1 || cols < 1 {
		panic(fmt.Sprintf("grid: invalid dimensions %dx%d", rows, cols))
	}
}
