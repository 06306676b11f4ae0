package bom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/grid"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/inventory"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/tile"
)

func paintAll(g grid.Grid, tileID string, cells ...[2]int) grid.Grid {
	for _, rc := range cells {
		g = grid.PaintDrag(g, rc[0], rc[1], tileID)
	}
	return g
}

func TestCompute_ShortageCorrectness(t *testing.T) {
	g := grid.Create(1, 7, "ground")
	g = paintAll(g, "sea", [2]int{0, 5}, [2]int{0, 6})
	inv := inventory.New().Set("ground", 3).Set("metal", 9)

	rep := Compute(g, inv, tile.Builtin())

	ground, ok := rep.Entry("ground")
	require.True(t, ok)
	assert.Equal(t, 5, ground.Required)
	assert.Equal(t, 3, ground.Owned)
	assert.Equal(t, 2, ground.Missing)
	assert.True(t, ground.IsShort)

	sea, ok := rep.Entry("sea")
	require.True(t, ok)
	assert.Equal(t, 2, sea.Required)
	assert.Equal(t, 0, sea.Owned)
	assert.True(t, sea.IsShort)

	_, ok = rep.Entry("metal")
	assert.False(t, ok, "tiles absent from the grid never appear")

	assert.Equal(t, 7, rep.TotalCells)
	assert.Equal(t, 2, rep.DistinctTiles)
	assert.Equal(t, 2, rep.ShortCount)
}

func TestCompute_NotShortWhenOwnedEnough(t *testing.T) {
	g := grid.Create(2, 2, "ground")
	rep := Compute(g, inventory.New().Set("ground", 4), tile.Builtin())

	e, ok := rep.Entry("ground")
	require.True(t, ok)
	assert.False(t, e.IsShort)
	assert.Equal(t, 0, e.Missing)
	assert.Equal(t, 0, rep.ShortCount)
}

func TestCompute_GroupOrderAndLabelSort(t *testing.T) {
	g := grid.Create(2, 4, "industry")
	g = paintAll(g, "road_x", [2]int{0, 0})
	g = paintAll(g, "road_i", [2]int{0, 1})
	g = paintAll(g, "sea", [2]int{0, 2})
	g = paintAll(g, "ground", [2]int{0, 3})
	g = paintAll(g, "dock_u", [2]int{1, 0})

	rep := Compute(g, inventory.New(), tile.Builtin())

	cats := make([]tile.Category, 0, len(rep.Groups))
	for _, grp := range rep.Groups {
		cats = append(cats, grp.Category)
	}
	assert.Equal(t, []tile.Category{tile.Terrain, tile.Road, tile.Dock, tile.Industry}, cats)

	labels := make([]string, 0)
	for _, e := range rep.Entries() {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{"Ground", "Sea", "Road I", "Road X", "Dock U", "Industry"}, labels)
}

func TestCompute_UnknownTilesExcludedButListed(t *testing.T) {
	rows := [][]grid.Cell{{{TileID: "ground"}, {TileID: "rod_i"}, {TileID: "zzzzzzzzzzzz"}}}
	g, err := grid.FromRows(rows)
	require.NoError(t, err)

	rep := Compute(g, inventory.New(), tile.Builtin())

	assert.Len(t, rep.Entries(), 1)
	require.Len(t, rep.Unknown, 2)
	assert.Equal(t, UnknownTile{TileID: "rod_i", Count: 1, Suggestion: "road_i"}, rep.Unknown[0])
	assert.Equal(t, "zzzzzzzzzzzz", rep.Unknown[1].TileID)
	assert.Empty(t, rep.Unknown[1].Suggestion)
}

func TestCompute_Idempotent(t *testing.T) {
	g := grid.Create(3, 3, "ground")
	g = paintAll(g, "road_l", [2]int{0, 0}, [2]int{1, 1})
	g = paintAll(g, "channel_i", [2]int{2, 2})
	inv := inventory.New().Set("road_l", 1)
	catalog := tile.Builtin()

	first := Compute(g, inv, catalog)
	second := Compute(g, inv, catalog)
	assert.Equal(t, first, second)
}

func TestCompute_ReducedCatalog(t *testing.T) {
	catalog := tile.MustCatalog([]tile.Definition{
		{ID: "b", Label: "Bravo", Category: tile.Road},
		{ID: "a", Label: "Alpha", Category: tile.Road},
	})
	g := paintAll(grid.Create(1, 3, "b"), "a", [2]int{0, 2})

	rep := Compute(g, inventory.New(), catalog)
	require.Len(t, rep.Groups, 1)
	assert.Equal(t, "a", rep.Groups[0].Entries[0].TileID)
	assert.Equal(t, "b", rep.Groups[0].Entries[1].TileID)
}

func TestCollection(t *testing.T) {
	catalog := tile.Builtin()
	groups := Collection(catalog, inventory.New().Set("sea", 2))

	require.Len(t, groups, len(tile.Categories))
	assert.Equal(t, tile.Terrain, groups[0].Category)
	assert.Len(t, groups[0].Items, 4)
	assert.Equal(t, "sea", groups[0].Items[2].ID)
	assert.Equal(t, 2, groups[0].Items[2].Owned)
	assert.Equal(t, 0, groups[0].Items[1].Owned)

	total := 0
	for _, grp := range groups {
		total += len(grp.Items)
	}
	assert.Equal(t, catalog.Len(), total)
}
