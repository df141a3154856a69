package core

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

var (
	registry   = make(map[string]TableDefinition)
	registryMu sync.RWMutex
)

// Register adds a table definition to the registry.
// Panics if the key is already registered or the catalog is invalid.
func Register(def TableDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if def.Info.Key == "" {
		panic("table registered without key")
	}
	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("table already registered: %s", def.Info.Key))
	}
	if def.MinVisible <= 0 {
		def.MinVisible = DefaultMinVisible
	}
	if err := def.Catalog.Validate(def.MinVisible); err != nil {
		panic(fmt.Sprintf("table %s: %v", def.Info.Key, err))
	}
	if def.Rows == nil {
		panic(fmt.Sprintf("table %s: no row source", def.Info.Key))
	}

	registry[def.Info.Key] = def
}

// Get returns a table definition by key.
// Returns false if not found.
func Get(key string) (TableDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// Lookup is Get with an ErrUnknownTable error for callers that propagate errors.
func Lookup(key string) (TableDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return TableDefinition{}, fmt.Errorf("%w: %s", ErrUnknownTable, key)
	}
	return def, nil
}

// All returns all registered table definitions, ordered by group then key.
func All() []TableDefinition {
	registryMu.RLock()
	defs := make([]TableDefinition, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	registryMu.RUnlock()

	slices.SortFunc(defs, func(a, b TableDefinition) int {
		return cmp.Or(
			cmp.Compare(a.Info.Group, b.Info.Group),
			cmp.Compare(a.Info.Key, b.Info.Key),
		)
	})
	return defs
}

// ByGroup returns the definitions of one menu group, ordered by key.
func ByGroup(group string) []TableDefinition {
	var out []TableDefinition
	for _, def := range All() {
		if def.Info.Group == group {
			out = append(out, def)
		}
	}
	return out
}

// Groups returns the distinct group names in order.
func Groups() []string {
	var groups []string
	for _, def := range All() {
		if n := len(groups); n == 0 || groups[n-1] != def.Info.Group {
			groups = append(groups, def.Info.Group)
		}
	}
	return groups
}

// TableCount returns the number of registered tables.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// unregister removes a table. Test helper only.
func unregister(key string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, key)
}
