package tile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_LookupAndOrder(t *testing.T) {
	c := Builtin()
	assert.Equal(t, 29, c.Len())

	d, ok := c.Lookup("sea")
	require.True(t, ok)
	assert.Equal(t, "Sea", d.Label)
	assert.Equal(t, Terrain, d.Category)

	_, ok = c.Lookup("lava")
	assert.False(t, ok)

	all := c.All()
	assert.Equal(t, "none", all[0].ID)
	assert.Equal(t, "industry_road_end", all[len(all)-1].ID)
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	c := Builtin()
	all := c.All()
	all[0].Label = "changed"

	d, _ := c.Lookup("none")
	assert.Equal(t, "None", d.Label)
}

func TestCatalog_ByCategoryKeepsOrder(t *testing.T) {
	c := Builtin()
	docks := c.ByCategory(Dock)
	ids := make([]string, 0, len(docks))
	for _, d := range docks {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"dock_l_ext", "dock_l_int", "dock_i", "dock_u", "dock_2_channel"}, ids)
	assert.Empty(t, c.ByCategory(Category("Lava")))
}

func TestNewCatalog_Validation(t *testing.T) {
	_, err := NewCatalog(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = NewCatalog([]Definition{
		{ID: "a", Category: Terrain},
		{ID: "a", Category: Road},
	})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = NewCatalog([]Definition{{ID: "a", Category: "Lava"}})
	assert.ErrorIs(t, err, ErrBadCategory)

	_, err = NewCatalog([]Definition{{ID: "  ", Category: Terrain}})
	assert.Error(t, err)
}

func TestNewCatalog_NormalisesCategoryAndLabel(t *testing.T) {
	c, err := NewCatalog([]Definition{{ID: "mud", Category: "terrain"}})
	require.NoError(t, err)

	d, ok := c.Lookup("mud")
	require.True(t, ok)
	assert.Equal(t, Terrain, d.Category)
	assert.Equal(t, "mud", d.Label)
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory(" industry ")
	assert.True(t, ok)
	assert.Equal(t, Industry, c)

	_, ok = ParseCategory("x")
	assert.False(t, ok)
}

func TestCatalog_Suggest(t *testing.T) {
	c := Builtin()

	got, ok := c.Suggest("rod_i")
	require.True(t, ok)
	assert.Equal(t, "road_i", got)

	got, ok = c.Suggest("SEA")
	require.True(t, ok)
	assert.Equal(t, "sea", got)

	_, ok = c.Suggest("completely_unrelated_name")
	assert.False(t, ok)

	_, ok = c.Suggest("")
	assert.False(t, ok)
}
