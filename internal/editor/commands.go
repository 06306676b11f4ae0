package editor

import (
	"context"
	"fmt"
	"math"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/inventory"
)

// Execute dispatches a named editor command and returns the patch describing what changed.
// A non-empty clientVersion must match the session version at the moment the command runs,
// otherwise ErrVersionConflict is returned and nothing changes.
func (s *Session) Execute(ctx context.Context, clientVersion, cmd string, args map[string]any) (any, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.checkVersion(clientVersion); err != nil {
		return nil, err
	}

	switch cmd {
	case "tool.select":
		return s.cmdToolSelect(args)
	case "cell.paint":
		return s.cmdCellPaint(args)
	case "cell.drag":
		return s.cmdCellDrag(args)
	case "grid.resize":
		return s.cmdGridResize(args)
	case "grid.clear":
		s.clear()
		return map[string]any{"grid": s.Grid()}, nil
	case "inventory.set":
		return s.cmdInventorySet(ctx, args)
	case "inventory.increment":
		return s.cmdInventoryStep(ctx, args, inventory.Inventory.Increment)
	case "inventory.decrement":
		return s.cmdInventoryStep(ctx, args, inventory.Inventory.Decrement)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func (s *Session) cmdToolSelect(args map[string]any) (any, error) {
	tileID, err := getString(args, "tileId")
	if err != nil {
		return nil, err
	}
	if err := s.selectTool(tileID); err != nil {
		return nil, err
	}
	return map[string]any{"selectedTileId": tileID}, nil
}

func (s *Session) cmdCellPaint(args map[string]any) (any, error) {
	row, col, err := getRowCol(args)
	if err != nil {
		return nil, err
	}
	cell, err := s.paint(row, col)
	if err != nil {
		return nil, err
	}
	return map[string]any{"row": row, "col": col, "cell": cell}, nil
}

func (s *Session) cmdCellDrag(args map[string]any) (any, error) {
	row, col, err := getRowCol(args)
	if err != nil {
		return nil, err
	}
	cell, changed, err := s.paintDrag(row, col)
	if err != nil {
		return nil, err
	}
	return map[string]any{"row": row, "col": col, "cell": cell, "changed": changed}, nil
}

func (s *Session) cmdGridResize(args map[string]any) (any, error) {
	rows, err := getInt(args, "rows")
	if err != nil {
		return nil, err
	}
	cols, err := getInt(args, "cols")
	if err != nil {
		return nil, err
	}
	rows, cols = s.resize(rows, cols)
	return map[string]any{"rows": rows, "cols": cols, "grid": s.Grid()}, nil
}

func (s *Session) cmdInventorySet(ctx context.Context, args map[string]any) (any, error) {
	tileID, err := getString(args, "tileId")
	if err != nil {
		return nil, err
	}
	count, err := getInt(args, "count")
	if err != nil {
		return nil, err
	}
	owned, err := s.updateInventoryLocked(ctx, tileID, func(inv inventory.Inventory) inventory.Inventory {
		return inv.Set(tileID, count)
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"tileId": tileID, "owned": owned}, nil
}

func (s *Session) cmdInventoryStep(ctx context.Context, args map[string]any, step func(inventory.Inventory, string) inventory.Inventory) (any, error) {
	tileID, err := getString(args, "tileId")
	if err != nil {
		return nil, err
	}
	owned, err := s.updateInventoryLocked(ctx, tileID, func(inv inventory.Inventory) inventory.Inventory {
		return step(inv, tileID)
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"tileId": tileID, "owned": owned}, nil
}

func getRowCol(args map[string]any) (int, int, error) {
	row, err := getInt(args, "row")
	if err != nil {
		return 0, 0, err
	}
	col, err := getInt(args, "col")
	if err != nil {
		return 0, 0, err
	}
	return row, col, nil
}

func getString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required field: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s must be a string", key)
	}
	if s == "" {
		return "", fmt.Errorf("field %s must not be empty", key)
	}
	return s, nil
}

// getInt accepts JSON numbers with no fractional part. Magnitudes beyond the 32-bit range
// saturate so that the clamping rules downstream (grid bounds, non-negative counts) still apply.
func getInt(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required field: %s", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %s must be a number", key)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("field %s must be an integer", key)
	}
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32, nil
	case f < math.MinInt32:
		return math.MinInt32, nil
	}
	return int(f), nil
}
