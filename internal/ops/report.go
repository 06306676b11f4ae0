package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/bom"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/grid"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/inventory"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/mapio"
)

var (
	heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	short   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	covered = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	label   = lipgloss.NewStyle().Width(22)
	number  = lipgloss.NewStyle().Width(8).Align(lipgloss.Right)
)

// LoadMap reads a map document from disk. maxSize <= 0 disables the size check.
func LoadMap(path string, maxSize int) (grid.Grid, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return grid.Grid{}, err
	}
	g, err := mapio.DecodeMap(b, maxSize)
	if err != nil {
		return grid.Grid{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// LoadInventory reads an inventory document; an empty path yields an empty inventory.
func LoadInventory(path string) (inventory.Inventory, error) {
	if strings.TrimSpace(path) == "" {
		return inventory.New(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return inventory.Inventory{}, err
	}
	inv, err := mapio.DecodeInventory(b)
	if err != nil {
		return inventory.Inventory{}, fmt.Errorf("%s: %w", path, err)
	}
	return inv, nil
}

// WriteFile writes b to path, creating parent directories.
func WriteFile(path string, b []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// FormatReport renders a shortage report as a terminal table.
func FormatReport(rep bom.Report) string {
	var sb strings.Builder

	sb.WriteString(heading.Render(fmt.Sprintf("%d cells, %d distinct tiles, %d short", rep.TotalCells, rep.DistinctTiles, rep.ShortCount)))
	sb.WriteString("\n")

	if rep.Empty() {
		sb.WriteString(dim.Render("no catalogued tiles on this map"))
		sb.WriteString("\n")
	}

	for _, g := range rep.Groups {
		sb.WriteString("\n")
		sb.WriteString(heading.Render(strings.ToUpper(string(g.Category))))
		sb.WriteString("\n")
		sb.WriteString(dim.Render(label.Render("tile") + number.Render("need") + number.Render("own") + number.Render("missing")))
		sb.WriteString("\n")
		for _, e := range g.Entries {
			row := label.Render(e.Label) +
				number.Render(fmt.Sprint(e.Required)) +
				number.Render(fmt.Sprint(e.Owned)) +
				number.Render(fmt.Sprint(e.Missing))
			if e.IsShort {
				sb.WriteString(short.Render(row))
			} else {
				sb.WriteString(covered.Render(row))
			}
			sb.WriteString("\n")
		}
	}

	if len(rep.Unknown) > 0 {
		sb.WriteString("\n")
		sb.WriteString(heading.Render("UNKNOWN"))
		sb.WriteString("\n")
		for _, u := range rep.Unknown {
			line := fmt.Sprintf("%s x%d", u.TileID, u.Count)
			if u.Suggestion != "" {
				line += fmt.Sprintf(" (did you mean %s?)", u.Suggestion)
			}
			sb.WriteString(short.Render(line))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
