package preview

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/grid"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/tile"
)

func rgb(c color.Color) [3]uint8 {
	r, g, b, _ := c.RGBA()
	return [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func TestRender_Dimensions(t *testing.T) {
	img, err := Render(grid.Create(2, 3, "ground"), tile.Builtin(), Options{CellSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestRender_CellColours(t *testing.T) {
	rows := [][]grid.Cell{{{TileID: "sea"}, {TileID: "mystery"}}}
	g, err := grid.FromRows(rows)
	require.NoError(t, err)

	img, err := Render(g, tile.Builtin(), Options{CellSize: 8})
	require.NoError(t, err)

	assert.Equal(t, [3]uint8{0x3b, 0x82, 0xf6}, rgb(img.At(1, 1)))
	assert.Equal(t, [3]uint8{0xff, 0x00, 0xff}, rgb(img.At(9, 1)))
}

func TestRender_EmptyGrid(t *testing.T) {
	_, err := Render(grid.Grid{}, tile.Builtin(), Options{})
	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, grid.Create(1, 1, "road_i"), tile.Builtin(), Options{GridLines: true}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultCellSize, img.Bounds().Dx())
}

func TestArmsFor(t *testing.T) {
	assert.Equal(t, []int{north, south}, ArmsFor("road_i", 0))
	assert.Equal(t, []int{east, west}, ArmsFor("road_i", 90))
	assert.Equal(t, []int{west, north}, ArmsFor("channel_l", 270))
	assert.Equal(t, []int{north}, ArmsFor("road_end", 180))
	assert.Len(t, ArmsFor("ind_road_x", 90), 4)
	assert.Nil(t, ArmsFor("solid", 0))
	assert.Nil(t, ArmsFor("waves", 90))
}

func TestOptionsClamp(t *testing.T) {
	o := Options{CellSize: 1}
	o.applyDefaults()
	assert.Equal(t, MinCellSize, o.CellSize)

	o = Options{CellSize: 500}
	o.applyDefaults()
	assert.Equal(t, MaxCellSize, o.CellSize)
}
