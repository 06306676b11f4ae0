package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/tile"
)

type Config struct {
	Version string        `yaml:"version" json:"version"`
	Grid    GridConfig    `yaml:"grid" json:"grid"`
	Catalog CatalogConfig `yaml:"catalog" json:"catalog"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Server  ServerConfig  `yaml:"server" json:"server"`
}

type GridConfig struct {
	DefaultRows int    `yaml:"default_rows" json:"default_rows"`
	DefaultCols int    `yaml:"default_cols" json:"default_cols"`
	MinSize     int    `yaml:"min_size" json:"min_size"`
	MaxSize     int    `yaml:"max_size" json:"max_size"`
	DefaultTile string `yaml:"default_tile" json:"default_tile"`
}

// CatalogConfig replaces the built-in tile table when Tiles is non-empty.
type CatalogConfig struct {
	Tiles []tile.Definition `yaml:"tiles" json:"tiles,omitempty"`
}

type StorageConfig struct {
	Driver       string         `yaml:"driver" json:"driver"`
	DataDir      string         `yaml:"data_dir" json:"data_dir"`
	InventoryKey string         `yaml:"inventory_key" json:"inventory_key"`
	Postgres     PostgresConfig `yaml:"postgres" json:"postgres"`
	Redis        RedisConfig    `yaml:"redis" json:"redis"`
}

type PostgresConfig struct {
	DSN   string `yaml:"dsn" json:"-"`
	Table string `yaml:"table" json:"table"`
}

type RedisConfig struct {
	Address  string `yaml:"address" json:"address"`
	Password string `yaml:"password" json:"-"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr" json:"addr"`
	DevStatic bool   `yaml:"dev_static" json:"dev_static"`
}

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

func (g *GridConfig) ApplyDefaults() {
	if g.DefaultRows == 0 {
		g.DefaultRows = tile.DefaultRows
	}
	if g.DefaultCols == 0 {
		g.DefaultCols = tile.DefaultCols
	}
	if g.MinSize == 0 {
		g.MinSize = 1
	}
	if g.MaxSize == 0 {
		g.MaxSize = 50
	}
	if strings.TrimSpace(g.DefaultTile) == "" {
		g.DefaultTile = tile.DefaultTileID
	}
}

// Clamp bounds a requested row or column count to [MinSize, MaxSize].
func (g GridConfig) Clamp(n int) int {
	if n < g.MinSize {
		return g.MinSize
	}
	if n > g.MaxSize {
		return g.MaxSize
	}
	return n
}

func (s *StorageConfig) ApplyDefaults() {
	if strings.TrimSpace(s.Driver) == "" {
		s.Driver = DriverFile
	}
	if strings.TrimSpace(s.DataDir) == "" {
		s.DataDir = "data"
	}
	if strings.TrimSpace(s.InventoryKey) == "" {
		s.InventoryKey = "tilemap_inventory"
	}
	if strings.TrimSpace(s.Postgres.Table) == "" {
		s.Postgres.Table = "tilemap_kv"
	}
	if strings.TrimSpace(s.Redis.Address) == "" {
		s.Redis.Address = "localhost:6379"
	}
	if strings.TrimSpace(s.Redis.Prefix) == "" {
		s.Redis.Prefix = "tilemap:"
	}
}

func (s *ServerConfig) ApplyDefaults() {
	if strings.TrimSpace(s.Addr) == "" {
		s.Addr = ":42069"
	}
}

func (c *Config) ApplyDefaults() {
	c.Grid.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Server.ApplyDefaults()
}

// BuildCatalog returns the configured tile set, or the built-in one when none is configured.
func (c *Config) BuildCatalog() (*tile.Catalog, error) {
	if len(c.Catalog.Tiles) == 0 {
		return tile.Builtin(), nil
	}
	return tile.NewCatalog(c.Catalog.Tiles)
}

// Validate checks cross-field constraints after defaults are applied.
func (c *Config) Validate() error {
	g := c.Grid
	if g.MinSize < 1 || g.MaxSize < g.MinSize {
		return fmt.Errorf("grid size bounds invalid: min=%d max=%d", g.MinSize, g.MaxSize)
	}
	if g.DefaultRows < g.MinSize || g.DefaultRows > g.MaxSize || g.DefaultCols < g.MinSize || g.DefaultCols > g.MaxSize {
		return fmt.Errorf("default grid %dx%d outside [%d,%d]", g.DefaultRows, g.DefaultCols, g.MinSize, g.MaxSize)
	}
	catalog, err := c.BuildCatalog()
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if !catalog.Has(g.DefaultTile) {
		return fmt.Errorf("default tile %q is not in the catalog", g.DefaultTile)
	}
	switch c.Storage.Driver {
	case DriverFile, DriverMemory, DriverRedis:
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.Postgres.DSN) == "" {
			return errors.New("storage.postgres.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// Default returns a config with every default applied.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// Load reads a YAML config file. A missing file yields defaults; env overrides apply either way.
func Load(path string) (*Config, error) {
	var r Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}
	ApplyEnv(&r)
	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}
