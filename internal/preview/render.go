package preview

import (
	"errors"
	"image"
	"io"
	"strings"

	"github.com/fogleman/gg"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/grid"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/tile"
)

const (
	DefaultCellSize = 24
	MinCellSize     = 4
	MaxCellSize     = 64

	unknownColor = "#ff00ff"
	gridLine     = "#0f172a"
)

var ErrEmptyGrid = errors.New("nothing to render")

// arm directions, clockwise from north
const (
	north = iota
	east
	south
	west
)

// connector arms per icon family at rotation 0
var iconArms = map[string][]int{
	"i":    {north, south},
	"l":    {north, east},
	"t":    {east, south, west},
	"x":    {north, east, south, west},
	"end":  {south},
	"c":    {north, east},
	"foot": {south},
}

type Options struct {
	CellSize  int
	GridLines bool
}

func (o *Options) applyDefaults() {
	switch {
	case o.CellSize == 0:
		o.CellSize = DefaultCellSize
	case o.CellSize < MinCellSize:
		o.CellSize = MinCellSize
	case o.CellSize > MaxCellSize:
		o.CellSize = MaxCellSize
	}
}

// Render draws one square per cell in the tile's background colour, with connector arms in the
// foreground colour turned by the cell rotation. Tiles missing from the catalog are magenta.
func Render(g grid.Grid, catalog *tile.Catalog, opts Options) (image.Image, error) {
	if g.Empty() {
		return nil, ErrEmptyGrid
	}
	opts.applyDefaults()
	size := float64(opts.CellSize)

	dc := gg.NewContext(g.Cols()*opts.CellSize, g.Rows()*opts.CellSize)
	g.Each(func(r, c int, cell grid.Cell) {
		x, y := float64(c)*size, float64(r)*size
		def, ok := catalog.Lookup(cell.TileID)
		if !ok {
			dc.SetHexColor(unknownColor)
			dc.DrawRectangle(x, y, size, size)
			dc.Fill()
			return
		}

		dc.SetHexColor(def.BgColor)
		dc.DrawRectangle(x, y, size, size)
		dc.Fill()

		arms := ArmsFor(def.IconType, cell.Rotation)
		if len(arms) == 0 {
			return
		}
		dc.SetHexColor(def.FgColor)
		drawArms(dc, x, y, size, arms)
	})

	if opts.GridLines {
		dc.SetHexColor(gridLine)
		dc.SetLineWidth(1)
		for r := 0; r <= g.Rows(); r++ {
			dc.DrawLine(0, float64(r)*size, float64(g.Cols())*size, float64(r)*size)
		}
		for c := 0; c <= g.Cols(); c++ {
			dc.DrawLine(float64(c)*size, 0, float64(c)*size, float64(g.Rows())*size)
		}
		dc.Stroke()
	}
	return dc.Image(), nil
}

// RenderPNG renders and encodes in one step.
func RenderPNG(w io.Writer, g grid.Grid, catalog *tile.Catalog, opts Options) error {
	if g.Empty() {
		return ErrEmptyGrid
	}
	img, err := Render(g, catalog, opts)
	if err != nil {
		return err
	}
	return gg.NewContextForImage(img).EncodePNG(w)
}

// ArmsFor returns the connector directions of an icon after turning it clockwise by rotation degrees.
// Icons without a connector shape return nil.
func ArmsFor(iconType string, rotation int) []int {
	shape := iconType
	if i := strings.LastIndex(iconType, "_"); i >= 0 {
		shape = iconType[i+1:]
	}
	base, ok := iconArms[shape]
	if !ok {
		return nil
	}
	steps := ((rotation/90)%4 + 4) % 4
	out := make([]int, len(base))
	for i, d := range base {
		out[i] = (d + steps) % 4
	}
	return out
}

func drawArms(dc *gg.Context, x, y, size float64, arms []int) {
	w := size / 3
	cx, cy := x+size/2, y+size/2
	dc.DrawRectangle(cx-w/2, cy-w/2, w, w)
	for _, d := range arms {
		switch d {
		case north:
			dc.DrawRectangle(cx-w/2, y, w, size/2)
		case east:
			dc.DrawRectangle(cx, cy-w/2, size/2, w)
		case south:
			dc.DrawRectangle(cx-w/2, cy, w, size/2)
		case west:
			dc.DrawRectangle(x, cy-w/2, size/2, w)
		}
	}
	dc.Fill()
}
