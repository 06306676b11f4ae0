package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileKV persists each key as a file under dataDir.
type FileKV struct {
	mu      sync.RWMutex
	dataDir string
	cache   map[string]string
}

// NewFileKV creates dataDir if needed.
func NewFileKV(dataDir string) (*FileKV, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &FileKV{
		dataDir: dataDir,
		cache:   make(map[string]string),
	}, nil
}

func (r *FileKV) filePath(key string) string {
	return filepath.Join(r.dataDir, key+".json")
}

func (r *FileKV) Get(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	r.mu.RLock()
	if v, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return v, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if v, ok := r.cache[key]; ok {
		return v, nil
	}

	data, err := os.ReadFile(r.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	r.cache[key] = string(data)
	return string(data), nil
}

// Set writes through a temp file and rename so readers never see a torn value.
func (r *FileKV) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.filePath(key)
	tmp, err := os.CreateTemp(r.dataDir, "."+key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}

	r.cache[key] = value
	return nil
}

func (r *FileKV) Ping(ctx context.Context) error {
	info, err := os.Stat(r.dataDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir is not a directory: %s", r.dataDir)
	}
	return nil
}

func (r *FileKV) Close() error { return nil }
