package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/bom"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/config"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/inventory"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/mapio"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/ops"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/preview"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/store"
)

type command struct {
	name string
	run  func(args []string) error
}

var commands = []command{
	{"backup", cmdBackup},
	{"restore", cmdRestore},
	{"drill", cmdDrill},
	{"report", cmdReport},
	{"export-inventory", cmdExportInventory},
	{"import-inventory", cmdImportInventory},
	{"preview", cmdPreview},
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	for _, c := range commands {
		if c.name != os.Args[1] {
			continue
		}
		if err := c.run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "%s failed: %v\n", c.name, err)
			os.Exit(1)
		}
		return
	}
	printUsage()
	os.Exit(2)
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openInventory(ctx context.Context, cfg *config.Config) (*inventory.KVRepo, store.KV, error) {
	kv, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	return inventory.NewKVRepo(kv, cfg.Storage.InventoryKey), kv, nil
}

func cmdBackup(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	cfgPath := fs.String("config", "tilemap_config.yml", "config file")
	dataDir := fs.String("data-dir", "", "path to data directory (defaults to storage.data_dir)")
	out := fs.String("out", "", "output archive path (.tar.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *dataDir == "" {
		*dataDir = cfg.Storage.DataDir
	}
	if *out == "" {
		ts := time.Now().UTC().Format("20060102T150405Z")
		*out = filepath.Join("backups", "tilemap-"+ts+".tar.gz")
	}

	// Database stores are first copied into the data dir so one archive covers every driver.
	if cfg.Storage.Driver == config.DriverPostgres || cfg.Storage.Driver == config.DriverRedis {
		ctx := context.Background()
		kv, err := store.Open(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		defer kv.Close()
		n, err := ops.SnapshotKV(ctx, kv, []string{cfg.Storage.InventoryKey}, *dataDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "snapshot %d key(s) from %s\n", n, cfg.Storage.Driver)
	}

	sum, err := ops.BackupDataDir(*dataDir, *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "archived %d file(s), %d bytes\n", sum.Files, sum.Bytes)
	fmt.Println(*out)
	return nil
}

func cmdRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	cfgPath := fs.String("config", "tilemap_config.yml", "config file")
	archive := fs.String("archive", "", "input backup archive (.tar.gz)")
	target := fs.String("target-dir", "data-restored", "restore target directory")
	load := fs.Bool("load-store", false, "also write restored keys into the configured store")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("archive is required")
	}
	sum, err := ops.RestoreDataDir(*archive, *target)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "restored %d file(s), %d bytes\n", sum.Files, sum.Bytes)
	if !*load {
		return nil
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	ctx := context.Background()
	kv, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer kv.Close()
	n, err := ops.LoadKV(ctx, *target, kv, []string{cfg.Storage.InventoryKey})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "loaded %d key(s) into %s\n", n, cfg.Storage.Driver)
	return nil
}

func cmdDrill(args []string) error {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	workDir := fs.String("work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.MkdirAll(*workDir, 0o755); err != nil {
		return err
	}
	ts := time.Now().UTC().Format("20060102T150405Z")
	archive := filepath.Join(*workDir, "tilemap-drill-"+ts+".tar.gz")
	restoreDir := filepath.Join(*workDir, "tilemap-drill-restore-"+ts)

	if _, err := ops.BackupDataDir(*dataDir, archive); err != nil {
		return err
	}
	if _, err := ops.RestoreDataDir(archive, restoreDir); err != nil {
		return err
	}

	srcDigest, err := dirDigest(*dataDir)
	if err != nil {
		return err
	}
	restoreDigest, err := dirDigest(restoreDir)
	if err != nil {
		return err
	}
	if srcDigest != restoreDigest {
		return fmt.Errorf("digest mismatch after restore: src=%s restored=%s", srcDigest, restoreDigest)
	}

	fmt.Println("backup:", archive)
	fmt.Println("restored:", restoreDir)
	fmt.Println("digest:", srcDigest)
	return nil
}

// cmdReport prints the shortage report for a map file against an inventory file or the configured store.
func cmdReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	cfgPath := fs.String("config", "tilemap_config.yml", "config file")
	mapPath := fs.String("map", mapio.GridFilename, "map document")
	invPath := fs.String("inventory", "", "inventory document (defaults to the configured store)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	catalog, err := cfg.BuildCatalog()
	if err != nil {
		return err
	}
	g, err := ops.LoadMap(*mapPath, cfg.Grid.MaxSize)
	if err != nil {
		return err
	}

	var inv inventory.Inventory
	if *invPath != "" {
		inv, err = ops.LoadInventory(*invPath)
	} else {
		inv, err = loadStoredInventory(cfg)
	}
	if err != nil {
		return err
	}

	fmt.Print(ops.FormatReport(bom.Compute(g, inv, catalog)))
	return nil
}

func loadStoredInventory(cfg *config.Config) (inventory.Inventory, error) {
	ctx := context.Background()
	repo, kv, err := openInventory(ctx, cfg)
	if err != nil {
		return inventory.Inventory{}, err
	}
	defer kv.Close()
	return repo.Load(ctx)
}

func cmdExportInventory(args []string) error {
	fs := flag.NewFlagSet("export-inventory", flag.ContinueOnError)
	cfgPath := fs.String("config", "tilemap_config.yml", "config file")
	out := fs.String("out", mapio.InventoryFilename, "output document")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	inv, err := loadStoredInventory(cfg)
	if err != nil {
		return err
	}
	b, err := mapio.EncodeInventory(inv)
	if err != nil {
		return err
	}
	if err := ops.WriteFile(*out, b); err != nil {
		return err
	}
	fmt.Printf("exported %d tile counts (%d owned) to %s\n", inv.Len(), inv.Total(), *out)
	return nil
}

func cmdImportInventory(args []string) error {
	fs := flag.NewFlagSet("import-inventory", flag.ContinueOnError)
	cfgPath := fs.String("config", "tilemap_config.yml", "config file")
	in := fs.String("in", mapio.InventoryFilename, "inventory document")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	inv, err := ops.LoadInventory(*in)
	if err != nil {
		return err
	}

	ctx := context.Background()
	repo, kv, err := openInventory(ctx, cfg)
	if err != nil {
		return err
	}
	defer kv.Close()
	if err := repo.Save(ctx, inv); err != nil {
		return err
	}
	fmt.Printf("imported %d tile counts (%d owned) into %s storage\n", inv.Len(), inv.Total(), cfg.Storage.Driver)
	return nil
}

func cmdPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	cfgPath := fs.String("config", "tilemap_config.yml", "config file")
	mapPath := fs.String("map", mapio.GridFilename, "map document")
	out := fs.String("out", "tilemap_preview.png", "output PNG")
	cell := fs.Int("cell", preview.DefaultCellSize, "cell size in pixels")
	lines := fs.Bool("lines", false, "draw grid lines")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !strings.HasSuffix(strings.ToLower(*out), ".png") {
		return fmt.Errorf("output must be a .png file")
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	catalog, err := cfg.BuildCatalog()
	if err != nil {
		return err
	}
	g, err := ops.LoadMap(*mapPath, cfg.Grid.MaxSize)
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := preview.RenderPNG(f, g, catalog, preview.Options{CellSize: *cell, GridLines: *lines}); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Println(*out)
	return nil
}

func dirDigest(root string) (string, error) {
	root = filepath.Clean(root)
	entries := []string{}
	if err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	}); err != nil {
		return "", err
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, rel := range entries {
		_, _ = io.WriteString(h, rel)
		_, _ = io.WriteString(h, "\n")
		b, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return "", err
		}
		if _, err := h.Write(b); err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func printUsage() {
	fmt.Println("usage:")
	fmt.Println("  tilemap-ops backup           --config tilemap_config.yml --out backups/backup.tar.gz")
	fmt.Println("  tilemap-ops restore          --archive backups/backup.tar.gz --target-dir data-restored [--load-store]")
	fmt.Println("  tilemap-ops drill            --data-dir data --work-dir /tmp")
	fmt.Println("  tilemap-ops report           --map tilemap_grid.json [--inventory tilemap_inventory.json]")
	fmt.Println("  tilemap-ops export-inventory --out tilemap_inventory.json")
	fmt.Println("  tilemap-ops import-inventory --in tilemap_inventory.json")
	fmt.Println("  tilemap-ops preview          --map tilemap_grid.json --out tilemap_preview.png")
}
