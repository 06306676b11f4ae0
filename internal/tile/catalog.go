package tile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Category groups tiles for the palette and for the bill of materials.
type Category string

const (
	Terrain  Category = "Terrain"
	Road     Category = "Road"
	Channel  Category = "Channel"
	Dock     Category = "Dock"
	Industry Category = "Industry"
)

// Categories lists every category in canonical order.
var Categories = []Category{Terrain, Road, Channel, Dock, Industry}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Definition is one catalog entry. Colours and icon type are passed through to renderers untouched.
type Definition struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	Category Category `json:"category" yaml:"category"`
	BgColor  string   `json:"bgColor" yaml:"bg_color"`
	FgColor  string   `json:"fgColor" yaml:"fg_color"`
	IconType string   `json:"iconType" yaml:"icon_type"`
}

var (
	ErrEmptyCatalog = errors.New("catalog has no tiles")
	ErrDuplicateID  = errors.New("duplicate tile id")
	ErrBadCategory  = errors.New("unknown tile category")
)

// Catalog is an immutable registry of tile definitions in definition order.
type Catalog struct {
	defs []Definition
	byID map[string]int
}

// NewCatalog validates defs and builds a catalog. The slice is copied.
func NewCatalog(defs []Definition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		defs: make([]Definition, 0, len(defs)),
		byID: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			return nil, fmt.Errorf("tile at position %d has an empty id", len(c.defs))
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
		}
		cat, ok := ParseCategory(string(d.Category))
		if !ok {
			return nil, fmt.Errorf("%w: %q (tile %s)", ErrBadCategory, d.Category, d.ID)
		}
		d.Category = cat
		if d.Label == "" {
			d.Label = d.ID
		}
		c.byID[d.ID] = len(c.defs)
		c.defs = append(c.defs, d)
	}
	return c, nil
}

// MustCatalog is NewCatalog for static tables.
func MustCatalog(defs []Definition) *Catalog {
	c, err := NewCatalog(defs)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup never fails; ok is false for ids the catalog does not know.
func (c *Catalog) Lookup(id string) (Definition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

func (c *Catalog) Len() int {
	return len(c.defs)
}

// All returns a copy of every definition in catalog order.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// ByCategory returns the definitions in cat, keeping catalog order.
func (c *Catalog) ByCategory(cat Category) []Definition {
	out := make([]Definition, 0)
	for _, d := range c.defs {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}

// Suggest returns the closest known id to an unknown one, if any is within edit distance.
func (c *Catalog) Suggest(id string) (string, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return "", false
	}
	if c.Has(id) {
		return id, true
	}

	type candidate struct {
		id   string
		dist int
	}
	cands := make([]candidate, 0, 4)
	for _, d := range c.defs {
		dist := levenshtein.ComputeDistance(id, d.ID)
		if dist > suggestLimit(len(d.ID)) {
			continue
		}
		cands = append(cands, candidate{id: d.ID, dist: dist})
	}
	if len(cands) == 0 {
		return "", false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].dist == cands[j].dist {
			return cands[i].id < cands[j].id
		}
		return cands[i].dist < cands[j].dist
	})
	return cands[0].id, true
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
