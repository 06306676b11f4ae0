package bom

import (
	"github.com/luxar/Grid-Map-Tile-Generator/internal/inventory"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/tile"
)

type CollectionItem struct {
	tile.Definition
	Owned int `json:"owned"`
}

type CollectionGroup struct {
	Category tile.Category    `json:"category"`
	Items    []CollectionItem `json:"items"`
}

// Collection lists every catalogued tile with its owned count, one group per category
// in canonical order. Categories with no tiles still get an empty group.
func Collection(catalog *tile.Catalog, inv inventory.Inventory) []CollectionGroup {
	out := make([]CollectionGroup, 0, len(tile.Categories))
	for _, cat := range tile.Categories {
		defs := catalog.ByCategory(cat)
		items := make([]CollectionItem, 0, len(defs))
		for _, d := range defs {
			items = append(items, CollectionItem{Definition: d, Owned: inv.Get(d.ID)})
		}
		out = append(out, CollectionGroup{Category: cat, Items: items})
	}
	return out
}
