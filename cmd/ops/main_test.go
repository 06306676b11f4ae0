package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/grid"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/mapio"
)

func writeConfig(t *testing.T, dataDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tilemap_config.yml")
	body := "storage:\n  driver: file\n  data_dir: " + dataDir + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestImportExportInventory(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, filepath.Join(dir, "data"))

	in := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"sea":4,"ground":-2}`), 0o644))
	require.NoError(t, cmdImportInventory([]string{"--config", cfgPath, "--in", in}))

	out := filepath.Join(dir, "out", mapio.InventoryFilename)
	require.NoError(t, cmdExportInventory([]string{"--config", cfgPath, "--out", out}))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sea":4,"ground":0}`, string(b))
}

func TestImportInventory_RejectsBadDocument(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, filepath.Join(dir, "data"))

	in := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"sea":"four"}`), 0o644))
	assert.ErrorIs(t, cmdImportInventory([]string{"--config", cfgPath, "--in", in}), mapio.ErrDecode)
}

func TestPreviewAndReport(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, filepath.Join(dir, "data"))

	doc, err := mapio.EncodeMap(grid.Create(2, 3, "road_x"))
	require.NoError(t, err)
	mapPath := filepath.Join(dir, mapio.GridFilename)
	require.NoError(t, os.WriteFile(mapPath, doc, 0o644))

	out := filepath.Join(dir, "preview.png")
	require.NoError(t, cmdPreview([]string{"--config", cfgPath, "--map", mapPath, "--out", out, "--cell", "8"}))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 24, img.Bounds().Dx())

	assert.Error(t, cmdPreview([]string{"--config", cfgPath, "--map", mapPath, "--out", filepath.Join(dir, "x.jpg")}))
	assert.NoError(t, cmdReport([]string{"--config", cfgPath, "--map", mapPath}))
}

func TestDrill(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "tilemap_inventory.json"), []byte(`{"sea":1}`), 0o644))

	assert.NoError(t, cmdDrill([]string{"--data-dir", dataDir, "--work-dir", t.TempDir()}))
}
