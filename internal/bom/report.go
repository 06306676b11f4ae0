package bom

import (
	"sort"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/grid"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/inventory"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/tile"
)

// Entry compares what the map needs of one tile with what the inventory owns.
type Entry struct {
	TileID   string        `json:"tileId"`
	Label    string        `json:"label"`
	Category tile.Category `json:"category"`
	Required int           `json:"required"`
	Owned    int           `json:"owned"`
	Missing  int           `json:"missing"`
	IsShort  bool          `json:"isShort"`
}

type Group struct {
	Category tile.Category `json:"category"`
	Entries  []Entry       `json:"entries"`
}

// UnknownTile is a tile id found on the grid that the catalog does not define.
type UnknownTile struct {
	TileID     string `json:"tileId"`
	Count      int    `json:"count"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Report is the shortage report. It is always derived, never stored.
type Report struct {
	Groups        []Group       `json:"groups"`
	TotalCells    int           `json:"totalCells"`
	DistinctTiles int           `json:"distinctTiles"`
	ShortCount    int           `json:"shortCount"`
	Unknown       []UnknownTile `json:"unknown"`
}

// Compute tallies g, looks each catalogued tile up in inv, and groups the result by category
// in canonical category order with entries sorted by label. It reads its inputs only.
func Compute(g grid.Grid, inv inventory.Inventory, catalog *tile.Catalog) Report {
	counts := g.Tally()

	byCategory := make(map[tile.Category][]Entry)
	unknown := make([]UnknownTile, 0)
	rep := Report{TotalCells: g.Len()}

	for id, required := range counts {
		if required <= 0 {
			continue
		}
		def, ok := catalog.Lookup(id)
		if !ok {
			u := UnknownTile{TileID: id, Count: required}
			if s, ok := catalog.Suggest(id); ok {
				u.Suggestion = s
			}
			unknown = append(unknown, u)
			continue
		}
		owned := inv.Get(id)
		e := Entry{
			TileID:   id,
			Label:    def.Label,
			Category: def.Category,
			Required: required,
			Owned:    owned,
			IsShort:  required > owned,
		}
		if e.IsShort {
			e.Missing = required - owned
			rep.ShortCount++
		}
		byCategory[def.Category] = append(byCategory[def.Category], e)
		rep.DistinctTiles++
	}

	rep.Groups = make([]Group, 0, len(byCategory))
	for _, cat := range tile.Categories {
		entries, ok := byCategory[cat]
		if !ok {
			continue
		}
		sortEntries(entries)
		rep.Groups = append(rep.Groups, Group{Category: cat, Entries: entries})
	}

	sort.Slice(unknown, func(i, j int) bool { return unknown[i].TileID < unknown[j].TileID })
	rep.Unknown = unknown
	return rep
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Label == entries[j].Label {
			return entries[i].TileID < entries[j].TileID
		}
		return entries[i].Label < entries[j].Label
	})
}

// Entries flattens the report in display order.
func (r Report) Entries() []Entry {
	out := make([]Entry, 0, r.DistinctTiles)
	for _, g := range r.Groups {
		out = append(out, g.Entries...)
	}
	return out
}

// Entry finds the report line for tileID; tiles absent from the grid have none.
func (r Report) Entry(tileID string) (Entry, bool) {
	for _, g := range r.Groups {
		for _, e := range g.Entries {
			if e.TileID == tileID {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// Empty reports whether the grid contributed no catalogued tiles.
func (r Report) Empty() bool {
	return len(r.Groups) == 0
}
