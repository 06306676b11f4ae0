package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_RecordAndFilter(t *testing.T) {
	repo := NewMemoryRepository(0)

	require.NoError(t, repo.RecordEvent(EventTilePainted, EventMetadata{"tile_id": "sea"}))
	require.NoError(t, repo.RecordEvent(EventTileRotated, EventMetadata{"tile_id": "sea"}))
	require.NoError(t, repo.RecordEvent(EventGridResized, EventMetadata{"rows": 4, "cols": 4}))

	all, err := repo.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 1, all[0].ID)

	resized, err := repo.GetEvents(time.Time{}, []EventType{EventGridResized})
	require.NoError(t, err)
	require.Len(t, resized, 1)
	assert.JSONEq(t, `{"rows":4,"cols":4}`, resized[0].Metadata)

	future, err := repo.GetEvents(time.Now().Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, future)

	require.NoError(t, repo.Clear())
	all, _ = repo.GetEvents(time.Time{}, nil)
	assert.Empty(t, all)
}

func TestMemoryRepository_Limit(t *testing.T) {
	repo := NewMemoryRepository(2)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.RecordEvent(EventTileStamped, EventMetadata{"i": i}))
	}
	events, err := repo.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 4, events[0].ID)
	assert.Equal(t, 5, events[1].ID)
}

func TestCalculateStats(t *testing.T) {
	repo := NewMemoryRepository(0)
	_ = repo.RecordEvent(EventTilePainted, EventMetadata{"tile_id": "sea"})
	_ = repo.RecordEvent(EventTileRotated, EventMetadata{"tile_id": "sea"})
	_ = repo.RecordEvent(EventTileStamped, EventMetadata{"tile_id": "road_i"})
	_ = repo.RecordEvent(EventTileStamped, EventMetadata{"tile_id": "road_i"})
	_ = repo.RecordEvent(EventGridImported, EventMetadata{"rows": 2})
	_ = repo.RecordEvent(EventImportFailed, EventMetadata{"operation": "grid import"})

	events, _ := repo.GetEvents(time.Time{}, nil)
	stats, err := CalculateStats(events, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Paints)
	assert.Equal(t, 1, stats.Rotations)
	assert.Equal(t, 2, stats.Stamps)
	assert.Equal(t, 1, stats.Imports)
	assert.Equal(t, 1, stats.FailedImports)
	assert.Equal(t, map[string]int{"sea": 1, "road_i": 2}, stats.TileUsage)
	assert.InDelta(t, 0.5, stats.RotationShare, 1e-9)
}
