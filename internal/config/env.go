package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overlays TILEMAP_* environment variables onto cfg.
// Unset or unparsable variables leave the field alone.
func ApplyEnv(cfg *Config) {
	if val := getEnv("TILEMAP_ADDR"); val != "" {
		cfg.Server.Addr = val
	}
	if val, ok := getEnvBool("TILEMAP_DEV_STATIC"); ok {
		cfg.Server.DevStatic = val
	}
	if val := getEnv("TILEMAP_DATA_DIR"); val != "" {
		cfg.Storage.DataDir = val
	}
	if val := getEnv("TILEMAP_STORAGE"); val != "" {
		cfg.Storage.Driver = strings.ToLower(val)
	}
	if val := getEnv("TILEMAP_POSTGRES_DSN"); val != "" {
		cfg.Storage.Postgres.DSN = val
	}
	if val := getEnv("TILEMAP_REDIS_ADDR"); val != "" {
		cfg.Storage.Redis.Address = val
	}
	if val := getEnvInt("TILEMAP_MAX_SIZE"); val > 0 {
		cfg.Grid.MaxSize = val
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvInt(key string) int {
	val := getEnv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvBool(key string) (bool, bool) {
	switch strings.ToLower(getEnv(key)) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	default:
		return false, false
	}
}
