package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/config"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "tilemap_inventory")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "tilemap_inventory", `{"ground":3}`))
	got, err := kv.Get(ctx, "tilemap_inventory")
	require.NoError(t, err)
	assert.Equal(t, `{"ground":3}`, got)

	require.NoError(t, kv.Set(ctx, "tilemap_inventory", `{}`))
	got, err = kv.Get(ctx, "tilemap_inventory")
	require.NoError(t, err)
	assert.Equal(t, `{}`, got)

	assert.ErrorIs(t, kv.Set(ctx, "../escape", "x"), ErrInvalidKey)
	_, err = kv.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidKey)

	assert.NoError(t, kv.Ping(ctx))
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestFileKV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "kv")
	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	exerciseKV(t, kv)

	b, err := os.ReadFile(filepath.Join(dir, "tilemap_inventory.json"))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))
}

func TestFileKV_ReloadFromDisk(t *testing.T) {
	dir := t.TempDir()
	first, err := NewFileKV(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(context.Background(), "k", "v1"))

	second, err := NewFileKV(dir)
	require.NoError(t, err)
	got, err := second.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)
}

func TestOpen_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	kv, err := Open(ctx, config.StorageConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryKV{}, kv)

	kv, err = Open(ctx, config.StorageConfig{Driver: config.DriverFile, DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileKV{}, kv)

	_, err = Open(ctx, config.StorageConfig{Driver: "etcd"})
	assert.Error(t, err)
}

func TestPostgresKV(t *testing.T) {
	dsn := os.Getenv("TILEMAP_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TILEMAP_TEST_POSTGRES_DSN not set")
	}
	kv, err := NewPostgresKV(context.Background(), dsn, "tilemap_kv_test")
	require.NoError(t, err)
	defer kv.Close()
	_, _ = kv.db.Exec(`DELETE FROM tilemap_kv_test`)
	exerciseKV(t, kv)
}

func TestPostgresKV_RejectsBadTable(t *testing.T) {
	_, err := NewPostgresKV(context.Background(), "postgres://unused", "kv; DROP TABLE x")
	assert.Error(t, err)
}

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("TILEMAP_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TILEMAP_TEST_REDIS_ADDR not set")
	}
	kv, err := NewRedisKV(context.Background(), config.RedisConfig{Address: addr, Prefix: "tilemap_test:"})
	require.NoError(t, err)
	defer kv.Close()
	_ = kv.client.Del(context.Background(), "tilemap_test:tilemap_inventory").Err()
	exerciseKV(t, kv)
}
