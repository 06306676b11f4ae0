package mapio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/grid"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/inventory"
)

// ErrDecode wraps every import failure. Callers keep their prior state when they see it.
var ErrDecode = errors.New("decode failed")

const (
	GridFilename      = "tilemap_grid.json"
	InventoryFilename = "tilemap_inventory.json"
)

// Document is the map export format. Rows and Cols are informational on import.
type Document struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Grid grid.Grid `json:"grid"`
}

// EncodeMap writes the wrapped document with two space indentation.
func EncodeMap(g grid.Grid) ([]byte, error) {
	return json.MarshalIndent(Document{Rows: g.Rows(), Cols: g.Cols(), Grid: g}, "", "  ")
}

// DecodeMap accepts the wrapped document or a bare grid array. Dimensions come from the array
// itself. Jagged or empty grids, rotations off the quarter turn and grids larger than maxSize on
// either side (when maxSize > 0) are rejected. Tile ids are not checked against any catalog; a
// missing or empty id is kept as is and surfaces as an unknown tile in reports.
func DecodeMap(data []byte, maxSize int) (grid.Grid, error) {
	rows, err := decodeGridShape(data)
	if err != nil {
		return grid.Grid{}, err
	}

	g, err := grid.FromRows(rows)
	if err != nil {
		return grid.Grid{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if maxSize > 0 && (g.Rows() > maxSize || g.Cols() > maxSize) {
		return grid.Grid{}, fmt.Errorf("%w: grid %dx%d exceeds %d", ErrDecode, g.Rows(), g.Cols(), maxSize)
	}
	return g, nil
}

func decodeGridShape(data []byte) ([][]grid.Cell, error) {
	var wrapped struct {
		Grid *json.RawMessage `json:"grid"`
	}
	wrappedErr := json.Unmarshal(data, &wrapped)
	if wrappedErr == nil && wrapped.Grid != nil {
		var rows [][]grid.Cell
		if err := json.Unmarshal(*wrapped.Grid, &rows); err != nil {
			return nil, fmt.Errorf("%w: grid field: %v", ErrDecode, err)
		}
		return rows, nil
	}

	var rows [][]grid.Cell
	if err := json.Unmarshal(data, &rows); err == nil {
		if rows == nil {
			return nil, fmt.Errorf("%w: document is null", ErrDecode)
		}
		return rows, nil
	}

	if wrappedErr == nil {
		return nil, fmt.Errorf("%w: object has no grid array", ErrDecode)
	}
	return nil, fmt.Errorf("%w: expected {rows, cols, grid} or a grid array: %v", ErrDecode, wrappedErr)
}

// EncodeInventory writes the flat id to count mapping.
func EncodeInventory(inv inventory.Inventory) ([]byte, error) {
	return json.MarshalIndent(inv.Map(), "", "  ")
}

// DecodeInventory accepts only a JSON object whose values are whole numbers, in any JSON
// notation (2, 2.0, 2e0). Negative counts are clamped to zero.
func DecodeInventory(data []byte) (inventory.Inventory, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return inventory.Inventory{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if dec.More() {
		return inventory.Inventory{}, fmt.Errorf("%w: trailing data after document", ErrDecode)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return inventory.Inventory{}, fmt.Errorf("%w: expected an object, got %s", ErrDecode, kindOf(v))
	}

	counts := make(map[string]int, len(obj))
	for id, raw := range obj {
		num, ok := raw.(json.Number)
		if !ok {
			return inventory.Inventory{}, fmt.Errorf("%w: count for %q is %s", ErrDecode, id, kindOf(raw))
		}
		n, err := wholeNumber(num)
		if err != nil {
			return inventory.Inventory{}, fmt.Errorf("%w: count for %q %v", ErrDecode, id, err)
		}
		counts[id] = n
	}
	return inventory.FromMap(counts), nil
}

func wholeNumber(num json.Number) (int, error) {
	if n, err := num.Int64(); err == nil && n >= math.MinInt32 && n <= math.MaxInt32 {
		return int(n), nil
	}
	f, err := num.Float64()
	if err != nil || math.IsInf(f, 0) {
		return 0, fmt.Errorf("is out of range: %s", num)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("is not an integer: %s", num)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("is out of range: %s", num)
	}
	return int(f), nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
