package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/core"
)

var bg = context.Background()

// exerciseBackend runs the shared core.Store contract against b.
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()

	if _, found, err := b.Get(bg, "missing"); err != nil || found {
		t.Fatalf("Get(missing) = found %v, err %v; want not found", found, err)
	}

	if err := b.Set(bg, "columns.order", `["a","b"]`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := b.Set(bg, "columns.order", `["b","a"]`); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	v, found, err := b.Get(bg, "columns.order")
	if err != nil || !found || v != `["b","a"]` {
		t.Errorf("Get() = %q, %v, %v; want overwritten value", v, found, err)
	}

	// Keys hold arbitrary text, including Cyrillic session prefixes.
	if err := b.Set(bg, "сессия/users/columns.visibility", `{"name":true}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, _, _ := b.Get(bg, "сессия/users/columns.visibility"); v != `{"name":true}` {
		t.Errorf("Get() unicode key = %q", v)
	}

	if err := b.Ping(bg); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	exerciseBackend(t, m)
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	m := NewMemoryStore()
	ctx, cancel := context.WithCancel(bg)
	cancel()

	if err := m.Set(ctx, "k", "v"); !errors.Is(err, context.Canceled) {
		t.Errorf("Set() error = %v, want context.Canceled", err)
	}
	if _, _, err := m.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	m := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := core.CellText(i)
			m.Set(bg, key, "v")
			m.Get(bg, key)
		}(i)
	}
	wg.Wait()
	if m.Len() != 20 {
		t.Errorf("Len() = %d, want 20", m.Len())
	}
}

func openTestSQLite(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(bg, path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "settings.db"))
	exerciseBackend(t, s)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	first, err := OpenSQLite(bg, path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := first.Set(bg, "columns.order", `["x"]`); err != nil {
		t.Fatal(err)
	}
	first.Close()

	// Reopening runs the migrations again; they must be a no-op.
	second := openTestSQLite(t, path)
	v, found, err := second.Get(bg, "columns.order")
	if err != nil || !found || v != `["x"]` {
		t.Errorf("after reopen Get() = %q, %v, %v", v, found, err)
	}
}

func TestSQLiteStore_BacksViewState(t *testing.T) {
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "settings.db"))
	catalog := peopleCatalog()
	ns := core.Namespace(s, "session-1/people")

	v := core.NewTableViewState(bg, catalog, ns, core.ViewOptions{MinVisible: 1})
	v.SetColumnVisible(bg, "age", false)
	v.MoveColumn(bg, "name", "age")

	reloaded := core.NewTableViewState(bg, catalog, ns, core.ViewOptions{MinVisible: 1})
	if !reloaded.State().Equal(v.State()) {
		t.Errorf("reloaded state = %+v, want %+v", reloaded.State(), v.State())
	}
}

func TestOpen(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		b, err := Open(bg, config.StorageConfig{Backend: "memory"})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := b.(*MemoryStore); !ok {
			t.Errorf("Open(memory) = %T", b)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		b, err := Open(bg, config.StorageConfig{
			Backend: "SQLite",
			Path:    filepath.Join(t.TempDir(), "open.db"),
		})
		if err != nil {
			t.Fatal(err)
		}
		defer b.Close()
		if _, ok := b.(*SQLiteStore); !ok {
			t.Errorf("Open(sqlite) = %T", b)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := Open(bg, config.StorageConfig{Backend: "redis"}); !errors.Is(err, ErrUnknownBackend) {
			t.Errorf("error = %v, want ErrUnknownBackend", err)
		}
	})
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	p, err := OpenPostgres(bg, config.StorageConfig{URL: url, MaxConns: 2, MinConns: 0})
	if err != nil {
		t.Fatalf("OpenPostgres() error = %v", err)
	}
	defer p.Close()
	exerciseBackend(t, p)
}

type person struct {
	ID   string
	Name string
	Age  int
}

func (p person) RowKey() string { return p.ID }

func peopleCatalog() core.Catalog {
	return core.Catalog{
		Columns: []core.Column{
			{Key: "name", Title: "Имя", Field: "name"},
			{Key: "age", Title: "Возраст", Field: "age", Type: core.FieldInt},
			{Key: "address", Title: "Адрес", Field: "address"},
		},
		Accessors: map[string]core.Accessor{
			"name":    core.Field(func(p person) string { return p.Name }),
			"age":     core.Field(func(p person) int { return p.Age }),
			"address": core.Field(func(p person) string { return "" }),
		},
	}
}
