package telemetry

import "time"

type EventType string

const (
	EventToolSelected      EventType = "tool_selected"
	EventTilePainted       EventType = "tile_painted"
	EventTileRotated       EventType = "tile_rotated"
	EventTileStamped       EventType = "tile_stamped"
	EventGridResized       EventType = "grid_resized"
	EventGridCleared       EventType = "grid_cleared"
	EventGridImported      EventType = "grid_imported"
	EventGridExported      EventType = "grid_exported"
	EventInventoryChanged  EventType = "inventory_changed"
	EventInventoryImported EventType = "inventory_imported"
	EventInventoryExported EventType = "inventory_exported"
	EventImportFailed      EventType = "import_failed"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
