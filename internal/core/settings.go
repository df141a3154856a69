package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Storage keys for the persisted ViewState. Values are JSON.
const (
	KeyVisibility = "columns.visibility"
	KeyOrder      = "columns.order"
)

// LoadViewState reads the persisted view state for catalog from store.
//
// When neither key exists the catalog defaults are returned with a nil
// error. Any other problem (read error, one key missing, malformed JSON,
// keys not matching the catalog, too few visible columns) returns the
// defaults together with an error wrapping ErrSettingsCorrupt or the
// store's error, so callers always get a usable state.
func LoadViewState(ctx context.Context, catalog Catalog, store Store, minVisible int) (ViewState, error) {
	defaults := catalog.Defaults()
	if store == nil {
		return defaults, nil
	}

	rawVis, hasVis, err := store.Get(ctx, KeyVisibility)
	if err != nil {
		return defaults, fmt.Errorf("read %s: %w", KeyVisibility, err)
	}
	rawOrder, hasOrder, err := store.Get(ctx, KeyOrder)
	if err != nil {
		return defaults, fmt.Errorf("read %s: %w", KeyOrder, err)
	}

	if !hasVis && !hasOrder {
		return defaults, nil
	}
	if !hasVis || !hasOrder {
		return defaults, fmt.Errorf("%w: partial settings (visibility=%v, order=%v)", ErrSettingsCorrupt, hasVis, hasOrder)
	}

	var vs ViewState
	if err := json.Unmarshal([]byte(rawVis), &vs.Visibility); err != nil {
		return defaults, fmt.Errorf("%w: parse %s: %v", ErrSettingsCorrupt, KeyVisibility, err)
	}
	if err := json.Unmarshal([]byte(rawOrder), &vs.Order); err != nil {
		return defaults, fmt.Errorf("%w: parse %s: %v", ErrSettingsCorrupt, KeyOrder, err)
	}

	if err := checkViewState(catalog, vs, minVisible); err != nil {
		return defaults, err
	}
	return vs, nil
}

// checkViewState validates a decoded state against the catalog.
func checkViewState(catalog Catalog, vs ViewState, minVisible int) error {
	if len(vs.Visibility) != len(catalog.Columns) {
		return fmt.Errorf("%w: visibility has %d keys, catalog has %d", ErrSettingsCorrupt, len(vs.Visibility), len(catalog.Columns))
	}
	for key := range vs.Visibility {
		if !catalog.Has(key) {
			return fmt.Errorf("%w: visibility references unknown column %q", ErrSettingsCorrupt, key)
		}
	}
	if !catalog.isPermutation(vs.Order) {
		return fmt.Errorf("%w: order is not a permutation of the catalog keys", ErrSettingsCorrupt)
	}
	if vs.VisibleCount() < minVisible {
		return fmt.Errorf("%w: %d visible columns, minimum is %d", ErrSettingsCorrupt, vs.VisibleCount(), minVisible)
	}
	return nil
}

// SaveViewState writes both halves of vs to store. Both writes are
// attempted; the returned error joins any failures.
func SaveViewState(ctx context.Context, store Store, vs ViewState) error {
	if store == nil {
		return nil
	}

	vis, err := json.Marshal(vs.Visibility)
	if err != nil {
		return fmt.Errorf("encode visibility: %w", err)
	}
	order, err := json.Marshal(vs.Order)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	var errs []error
	if err := store.Set(ctx, KeyVisibility, string(vis)); err != nil {
		errs = append(errs, fmt.Errorf("save settings: write %s: %w", KeyVisibility, err))
	}
	if err := store.Set(ctx, KeyOrder, string(order)); err != nil {
		errs = append(errs, fmt.Errorf("save settings: write %s: %w", KeyOrder, err))
	}
	return errors.Join(errs...)
}

// NamespacedStore prefixes every key so several views can share one
// backing store. Keys become "<Prefix>/<key>".
type NamespacedStore struct {
	Prefix string
	Store  Store
}

// Namespace returns a Store whose keys live under prefix.
func Namespace(store Store, prefix string) Store {
	return NamespacedStore{Prefix: prefix, Store: store}
}

func (n NamespacedStore) key(k string) string {
	if n.Prefix == "" {
		return k
	}
	return n.Prefix + "/" + k
}

// Get implements Store.
func (n NamespacedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return n.Store.Get(ctx, n.key(key))
}

// Set implements Store.
func (n NamespacedStore) Set(ctx context.Context, key, value string) error {
	return n.Store.Set(ctx, n.key(key), value)
}
