package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/bom"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/config"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/grid"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/inventory"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/mapio"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/telemetry"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/tile"
)

var (
	ErrUnknownTile     = errors.New("unknown tile")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrVersionConflict = errors.New("editor version conflict")
)

type Options struct {
	Catalog   *tile.Catalog
	Grid      config.GridConfig
	Inventory inventory.Repository
	Events    telemetry.Repository
	Logger    *log.Logger
}

// Snapshot is the read model handed to presentation layers.
type Snapshot struct {
	SessionID      string    `json:"sessionId"`
	Version        int       `json:"version"`
	Rows           int       `json:"rows"`
	Cols           int       `json:"cols"`
	Grid           grid.Grid `json:"grid"`
	SelectedTileID string    `json:"selectedTileId"`
}

// Session owns the grid, the inventory and the selected tool for one editor.
// Every mutation swaps in a new value under mu, so readers never see a partial update.
// writeMu orders whole mutations, including the inventory save, so the stored inventory
// always ends on the latest in-memory value.
type Session struct {
	writeMu   sync.Mutex
	mu        sync.RWMutex
	id        string
	catalog   *tile.Catalog
	gridCfg   config.GridConfig
	repo      inventory.Repository
	events    telemetry.Repository
	logger    *log.Logger
	grid      grid.Grid
	inv       inventory.Inventory
	selected  string
	version   int
	listeners map[int]chan Snapshot
	nextLis   int
}

// NewSession starts an editor with a default grid and the persisted inventory.
// A stored inventory that cannot be read is logged and replaced by an empty one.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.Catalog == nil {
		opts.Catalog = tile.Builtin()
	}
	opts.Grid.ApplyDefaults()
	if !opts.Catalog.Has(opts.Grid.DefaultTile) {
		return nil, fmt.Errorf("%w: default tile %q", ErrUnknownTile, opts.Grid.DefaultTile)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	s := &Session{
		id:        uuid.NewString(),
		catalog:   opts.Catalog,
		gridCfg:   opts.Grid,
		repo:      opts.Inventory,
		events:    opts.Events,
		logger:    opts.Logger,
		grid:      grid.Create(opts.Grid.DefaultRows, opts.Grid.DefaultCols, opts.Grid.DefaultTile),
		inv:       inventory.New(),
		selected:  opts.Grid.DefaultTile,
		listeners: make(map[int]chan Snapshot),
	}

	if s.repo != nil {
		inv, err := s.repo.Load(ctx)
		if err != nil {
			s.logger.Printf("[inventory] failed to load saved inventory, starting empty: %v", err)
			inv = inventory.New()
		}
		s.inv = inv
	}
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Catalog() *tile.Catalog { return s.catalog }

func (s *Session) GridConfig() config.GridConfig { return s.gridCfg }

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:      s.id,
		Version:        s.version,
		Rows:           s.grid.Rows(),
		Cols:           s.grid.Cols(),
		Grid:           s.grid,
		SelectedTileID: s.selected,
	}
}

func (s *Session) Grid() grid.Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

func (s *Session) Inventory() inventory.Inventory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inv
}

func (s *Session) SelectedTileID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

func (s *Session) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Report recomputes the shortage report from the current grid and inventory.
func (s *Session) Report() bom.Report {
	s.mu.RLock()
	g, inv := s.grid, s.inv
	s.mu.RUnlock()
	return bom.Compute(g, inv, s.catalog)
}

func (s *Session) Collection() []bom.CollectionGroup {
	return bom.Collection(s.catalog, s.Inventory())
}

// checkVersion fails with ErrVersionConflict when clientVersion is set and stale.
// Callers hold writeMu so no mutation can land between the check and the command.
func (s *Session) checkVersion(clientVersion string) error {
	if clientVersion == "" {
		return nil
	}
	if v := fmt.Sprintf("%d", s.Version()); v != clientVersion {
		return fmt.Errorf("%w: client %s, server %s", ErrVersionConflict, clientVersion, v)
	}
	return nil
}

func (s *Session) unknownTile(tileID string) error {
	if hint, ok := s.catalog.Suggest(tileID); ok {
		return fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownTile, tileID, hint)
	}
	return fmt.Errorf("%w: %q", ErrUnknownTile, tileID)
}

// SelectTool sets the tile used by Paint and PaintDrag.
func (s *Session) SelectTool(tileID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.selectTool(tileID)
}

func (s *Session) selectTool(tileID string) error {
	if !s.catalog.Has(tileID) {
		return s.unknownTile(tileID)
	}
	s.mu.Lock()
	if s.selected == tileID {
		s.mu.Unlock()
		return nil
	}
	s.selected = tileID
	s.commitLocked()
	s.mu.Unlock()

	s.record(telemetry.EventToolSelected, telemetry.EventMetadata{"tile_id": tileID})
	return nil
}

// Paint applies the click rule with the selected tool and returns the resulting cell.
func (s *Session) Paint(row, col int) (grid.Cell, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.paint(row, col)
}

func (s *Session) paint(row, col int) (grid.Cell, error) {
	s.mu.Lock()
	if !s.grid.InBounds(row, col) {
		s.mu.Unlock()
		return grid.Cell{}, fmt.Errorf("%w: (%d,%d)", grid.ErrOutOfRange, row, col)
	}
	rotated := s.grid.At(row, col).TileID == s.selected
	s.grid = grid.Paint(s.grid, row, col, s.selected)
	cell := s.grid.At(row, col)
	s.commitLocked()
	s.mu.Unlock()

	ev := telemetry.EventTilePainted
	if rotated {
		ev = telemetry.EventTileRotated
	}
	s.record(ev, telemetry.EventMetadata{"tile_id": cell.TileID, "row": row, "col": col, "rotation": cell.Rotation})
	return cell, nil
}

// PaintDrag applies the stroke rule. changed is false when the cell already held a fresh copy
// of the selected tile; the version does not move in that case.
func (s *Session) PaintDrag(row, col int) (grid.Cell, bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.paintDrag(row, col)
}

func (s *Session) paintDrag(row, col int) (cell grid.Cell, changed bool, err error) {
	s.mu.Lock()
	if !s.grid.InBounds(row, col) {
		s.mu.Unlock()
		return grid.Cell{}, false, fmt.Errorf("%w: (%d,%d)", grid.ErrOutOfRange, row, col)
	}
	before := s.grid.At(row, col)
	s.grid = grid.PaintDrag(s.grid, row, col, s.selected)
	cell = s.grid.At(row, col)
	changed = cell != before
	if changed {
		s.commitLocked()
	}
	s.mu.Unlock()

	if changed {
		s.record(telemetry.EventTileStamped, telemetry.EventMetadata{"tile_id": cell.TileID, "row": row, "col": col})
	}
	return cell, changed, nil
}

// Resize clamps the requested size into the configured bounds and returns the applied size.
func (s *Session) Resize(rows, cols int) (int, int) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.resize(rows, cols)
}

func (s *Session) resize(rows, cols int) (int, int) {
	rows, cols = s.gridCfg.Clamp(rows), s.gridCfg.Clamp(cols)

	s.mu.Lock()
	s.grid = grid.Resize(s.grid, rows, cols, s.gridCfg.DefaultTile)
	s.commitLocked()
	s.mu.Unlock()

	s.record(telemetry.EventGridResized, telemetry.EventMetadata{"rows": rows, "cols": cols})
	return rows, cols
}

// Clear resets every cell to the default tile.
func (s *Session) Clear() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.clear()
}

func (s *Session) clear() {
	s.mu.Lock()
	s.grid = grid.Fill(s.grid, s.gridCfg.DefaultTile)
	s.commitLocked()
	s.mu.Unlock()

	s.record(telemetry.EventGridCleared, telemetry.EventMetadata{"tile_id": s.gridCfg.DefaultTile})
}

// SetOwned replaces the owned count of a catalogued tile and persists the inventory.
func (s *Session) SetOwned(ctx context.Context, tileID string, count int) (int, error) {
	return s.updateInventory(ctx, tileID, func(inv inventory.Inventory) inventory.Inventory {
		return inv.Set(tileID, count)
	})
}

func (s *Session) IncrementOwned(ctx context.Context, tileID string) (int, error) {
	return s.updateInventory(ctx, tileID, func(inv inventory.Inventory) inventory.Inventory {
		return inv.Increment(tileID)
	})
}

func (s *Session) DecrementOwned(ctx context.Context, tileID string) (int, error) {
	return s.updateInventory(ctx, tileID, func(inv inventory.Inventory) inventory.Inventory {
		return inv.Decrement(tileID)
	})
}

func (s *Session) updateInventory(ctx context.Context, tileID string, fn func(inventory.Inventory) inventory.Inventory) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.updateInventoryLocked(ctx, tileID, fn)
}

func (s *Session) updateInventoryLocked(ctx context.Context, tileID string, fn func(inventory.Inventory) inventory.Inventory) (int, error) {
	if !s.catalog.Has(tileID) {
		return 0, s.unknownTile(tileID)
	}
	s.mu.Lock()
	s.inv = fn(s.inv)
	inv := s.inv
	s.commitLocked()
	s.mu.Unlock()

	s.persist(ctx, inv)
	s.record(telemetry.EventInventoryChanged, telemetry.EventMetadata{"tile_id": tileID, "owned": inv.Get(tileID)})
	return inv.Get(tileID), nil
}

// persist writes the inventory through; failures are logged and the in-memory state stands.
func (s *Session) persist(ctx context.Context, inv inventory.Inventory) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, inv); err != nil {
		s.logger.Printf("[inventory] failed to persist inventory: %v", err)
	}
}

// ImportMap replaces the grid with a decoded document. On error the grid is untouched.
func (s *Session) ImportMap(data []byte) (grid.Grid, error) {
	g, err := mapio.DecodeMap(data, s.gridCfg.MaxSize)
	if err != nil {
		s.importFailed("grid import", err)
		return grid.Grid{}, fmt.Errorf("grid import failed: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.grid = g
	s.commitLocked()
	s.mu.Unlock()

	s.record(telemetry.EventGridImported, telemetry.EventMetadata{"rows": g.Rows(), "cols": g.Cols()})
	return g, nil
}

func (s *Session) ExportMap() ([]byte, error) {
	b, err := mapio.EncodeMap(s.Grid())
	if err != nil {
		return nil, err
	}
	s.record(telemetry.EventGridExported, nil)
	return b, nil
}

// ImportInventory replaces and persists the inventory. On error it is untouched.
func (s *Session) ImportInventory(ctx context.Context, data []byte) (inventory.Inventory, error) {
	inv, err := mapio.DecodeInventory(data)
	if err != nil {
		s.importFailed("collection import", err)
		return inventory.Inventory{}, fmt.Errorf("collection import failed: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.inv = inv
	s.commitLocked()
	s.mu.Unlock()

	s.persist(ctx, inv)
	s.record(telemetry.EventInventoryImported, telemetry.EventMetadata{"tiles": inv.Len()})
	return inv, nil
}

func (s *Session) ExportInventory() ([]byte, error) {
	b, err := mapio.EncodeInventory(s.Inventory())
	if err != nil {
		return nil, err
	}
	s.record(telemetry.EventInventoryExported, nil)
	return b, nil
}

func (s *Session) importFailed(op string, err error) {
	s.logger.Printf("[editor] %s rejected: %v", op, err)
	s.record(telemetry.EventImportFailed, telemetry.EventMetadata{"operation": op, "error": err.Error()})
}

func (s *Session) record(ev telemetry.EventType, md telemetry.EventMetadata) {
	if s.events == nil {
		return
	}
	if err := s.events.RecordEvent(ev, md); err != nil {
		s.logger.Printf("[telemetry] failed to record %s: %v", ev, err)
	}
}

// commitLocked bumps the version and fans the new snapshot out. Caller holds s.mu.
func (s *Session) commitLocked() {
	s.version++
	snap := s.snapshotLocked()
	for _, ch := range s.listeners {
		select {
		case ch <- snap:
		default:
			// Slow listener: drop the stale snapshot and keep only the newest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// Subscribe returns a channel that receives a snapshot after every change.
// The latest snapshot is delivered first. Call cancel to stop and close the channel.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	id := s.nextLis
	s.nextLis++
	s.listeners[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}
