package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period        string            `json:"period"`
	EventCounts   map[EventType]int `json:"event_counts"`
	Paints        int               `json:"paints"`
	Rotations     int               `json:"rotations"`
	Stamps        int               `json:"stamps"`
	Resizes       int               `json:"resizes"`
	Imports       int               `json:"imports"`
	FailedImports int               `json:"failed_imports"`
	TileUsage     map[string]int    `json:"tile_usage"`
	RotationShare float64           `json:"rotation_share"`
}

// CalculateStats summarises editor activity from events.
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:      since.Format("2006-01-02"),
		EventCounts: make(map[EventType]int),
		TileUsage:   make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventTilePainted:
			stats.Paints++
		case EventTileRotated:
			stats.Rotations++
		case EventTileStamped:
			stats.Stamps++
		case EventGridResized:
			stats.Resizes++
		case EventGridImported, EventInventoryImported:
			stats.Imports++
		case EventImportFailed:
			stats.FailedImports++
		}

		switch event.Type {
		case EventTilePainted, EventTileStamped:
			if tileID, ok := metadata["tile_id"].(string); ok {
				stats.TileUsage[tileID]++
			}
		}
	}

	if clicks := stats.Paints + stats.Rotations; clicks > 0 {
		stats.RotationShare = float64(stats.Rotations) / float64(clicks)
	}

	return stats, nil
}
