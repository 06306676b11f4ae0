package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/store"
)

// ErrCorrupt marks a stored inventory that could not be parsed.
var ErrCorrupt = errors.New("stored inventory is corrupt")

// Repository for inventory persistence
type Repository interface {
	Load(ctx context.Context) (Inventory, error)
	Save(ctx context.Context, inv Inventory) error
}

// KVRepo keeps the whole inventory as one JSON value under a single key.
type KVRepo struct {
	kv  store.KV
	key string
}

func NewKVRepo(kv store.KV, key string) *KVRepo {
	return &KVRepo{kv: kv, key: key}
}

// Load returns an empty inventory when nothing is stored yet.
func (r *KVRepo) Load(ctx context.Context) (Inventory, error) {
	raw, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, store.ErrNotFound) {
		return New(), nil
	}
	if err != nil {
		return New(), err
	}

	var m map[string]int
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return New(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if m == nil {
		return New(), fmt.Errorf("%w: not an object", ErrCorrupt)
	}
	return FromMap(m), nil
}

func (r *KVRepo) Save(ctx context.Context, inv Inventory) error {
	b, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, r.key, string(b))
}
