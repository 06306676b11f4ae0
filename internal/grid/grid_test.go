package grid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertRectangular(t *testing.T, g Grid) {
	t.Helper()
	for r, row := range g.Cells() {
		assert.Lenf(t, row, g.Cols(), "row %d", r)
	}
	assert.Equal(t, g.Rows()*g.Cols(), g.Len())
}

func TestCreate(t *testing.T) {
	g := Create(3, 4, "ground")
	assert.Equal(t, 3, g.Rows())
	assert.Equal(t, 4, g.Cols())
	assertRectangular(t, g)
	g.Each(func(row, col int, c Cell) {
		assert.Equal(t, Cell{TileID: "ground"}, c)
	})
}

func TestCreate_PanicsOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { Create(0, 3, "ground") })
	assert.Panics(t, func() { Create(3, -1, "ground") })
}

func TestPaint_ReplaceResetsRotation(t *testing.T) {
	g := Create(2, 2, "ground")
	g = Paint(g, 0, 0, "ground") // rotate to 90
	require.Equal(t, 90, g.At(0, 0).Rotation)

	next := Paint(g, 0, 0, "sea")
	assert.Equal(t, Cell{TileID: "sea", Rotation: 0}, next.At(0, 0))
	assertRectangular(t, next)
}

func TestPaint_SameTileRotates(t *testing.T) {
	g := Create(2, 2, "ground")
	for _, want := range []int{90, 180, 270, 0} {
		g = Paint(g, 1, 1, "ground")
		assert.Equal(t, "ground", g.At(1, 1).TileID)
		assert.Equal(t, want, g.At(1, 1).Rotation)
	}
}

func TestPaint_DoesNotAliasInput(t *testing.T) {
	g := Create(2, 2, "ground")
	next := Paint(g, 0, 1, "sea")

	assert.Equal(t, "ground", g.At(0, 1).TileID)
	assert.Equal(t, "sea", next.At(0, 1).TileID)
}

func TestPaint_OutOfRangePanics(t *testing.T) {
	g := Create(2, 2, "ground")
	assert.Panics(t, func() { Paint(g, 2, 0, "sea") })
	assert.Panics(t, func() { PaintDrag(g, 0, -1, "sea") })
}

func TestPaintDrag(t *testing.T) {
	g := Create(2, 2, "ground")
	g = Paint(g, 0, 0, "ground")

	t.Run("stamps fresh tile even when ids match", func(t *testing.T) {
		next := PaintDrag(g, 0, 0, "ground")
		assert.Equal(t, Cell{TileID: "ground"}, next.At(0, 0))
	})

	t.Run("replaces different tile", func(t *testing.T) {
		next := PaintDrag(g, 1, 0, "road_i")
		assert.Equal(t, Cell{TileID: "road_i"}, next.At(1, 0))
	})

	t.Run("no-op on identical cell", func(t *testing.T) {
		next := PaintDrag(g, 1, 1, "ground")
		assert.True(t, next.Equal(g))
	})
}

func TestResize_PreservesTopLeft(t *testing.T) {
	g := Create(3, 3, "ground")
	g = Paint(g, 0, 2, "sea")
	g = Paint(g, 2, 0, "metal")
	g = Paint(g, 1, 1, "road_x")
	g = Paint(g, 1, 1, "road_x")

	cases := []struct{ rows, cols int }{{2, 2}, {5, 4}, {1, 6}, {3, 3}, {4, 1}}
	for _, tc := range cases {
		next := Resize(g, tc.rows, tc.cols, "none")
		assert.Equal(t, tc.rows, next.Rows())
		assert.Equal(t, tc.cols, next.Cols())
		assertRectangular(t, next)
		next.Each(func(r, c int, cell Cell) {
			if r < g.Rows() && c < g.Cols() {
				assert.Equal(t, g.At(r, c), cell, "(%d,%d) in %dx%d", r, c, tc.rows, tc.cols)
			} else {
				assert.Equal(t, Cell{TileID: "none"}, cell, "(%d,%d) in %dx%d", r, c, tc.rows, tc.cols)
			}
		})
	}
}

func TestFill(t *testing.T) {
	g := Create(2, 3, "ground")
	g = Paint(g, 1, 2, "sea")
	g = Paint(g, 1, 2, "sea")

	next := Fill(g, "ground")
	assert.True(t, next.Equal(Create(2, 3, "ground")))
	assert.Equal(t, 90, g.At(1, 2).Rotation)
}

func TestTally(t *testing.T) {
	g := Create(2, 2, "ground")
	g = Paint(g, 0, 0, "sea")
	assert.Equal(t, map[string]int{"ground": 3, "sea": 1}, g.Tally())
}

func TestFromRows_Validation(t *testing.T) {
	_, err := FromRows(nil)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = FromRows([][]Cell{{}})
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = FromRows([][]Cell{{{TileID: "a"}, {TileID: "b"}}, {{TileID: "c"}}})
	assert.ErrorIs(t, err, ErrJagged)

	_, err = FromRows([][]Cell{{{TileID: "a", Rotation: 45}}})
	assert.ErrorIs(t, err, ErrRotation)

	g, err := FromRows([][]Cell{{{TileID: "a", Rotation: 450}, {TileID: "b", Rotation: -90}}})
	require.NoError(t, err)
	assert.Equal(t, 90, g.At(0, 0).Rotation)
	assert.Equal(t, 270, g.At(0, 1).Rotation)
}

func TestFromRows_ToleratesUnknownTiles(t *testing.T) {
	g, err := FromRows([][]Cell{{{TileID: "lava"}}})
	require.NoError(t, err)
	assert.Equal(t, "lava", g.At(0, 0).TileID)
}

func TestJSON(t *testing.T) {
	g := Create(2, 2, "ground")
	g = Paint(g, 1, 0, "sea")

	b, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `[[{"tileId":"ground","rotation":0},{"tileId":"ground","rotation":0}],[{"tileId":"sea","rotation":0},{"tileId":"ground","rotation":0}]]`, string(b))

	var back Grid
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(g))

	assert.Error(t, json.Unmarshal([]byte(`[[{"tileId":"a"}],[]]`), &back))
}

func TestScenario_PaintRotateResize(t *testing.T) {
	g := Create(3, 3, "ground")
	g = Paint(g, 1, 1, "sea")
	assert.Equal(t, Cell{TileID: "sea", Rotation: 0}, g.At(1, 1))

	g = Paint(g, 1, 1, "sea")
	assert.Equal(t, Cell{TileID: "sea", Rotation: 90}, g.At(1, 1))

	g = Resize(g, 2, 2, "ground")
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 2, g.Cols())
	assert.Equal(t, Cell{TileID: "ground"}, g.At(0, 0))
	assert.Equal(t, Cell{TileID: "ground"}, g.At(0, 1))
	assert.Equal(t, Cell{TileID: "ground"}, g.At(1, 0))
	assert.Equal(t, Cell{TileID: "sea", Rotation: 90}, g.At(1, 1))
}
