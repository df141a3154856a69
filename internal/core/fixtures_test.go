package core

import (
	"context"
	"errors"
	"sync"
	"time"
)

// person is the row type used across core tests.
type person struct {
	Key     string
	Name    string
	Age     int
	Address string
}

func (p person) RowKey() string { return p.Key }

func personCatalog() Catalog {
	return Catalog{
		Columns: []Column{
			{Key: "name", Title: "Имя", Field: "name", Sortable: true, Type: FieldText},
			{Key: "age", Title: "Возраст", Field: "age", Sortable: true, Type: FieldInt},
			{Key: "address", Title: "Адрес", Field: "address", Sortable: true, Type: FieldText},
		},
		Accessors: map[string]Accessor{
			"name":    Field(func(p person) string { return p.Name }),
			"age":     Field(func(p person) int { return p.Age }),
			"address": Field(func(p person) string { return p.Address }),
		},
	}
}

func personRows() []Row {
	return []Row{
		person{Key: "1", Name: "Иван Петров", Age: 32, Address: "Москва, ул. Ленина 1"},
		person{Key: "2", Name: "Алексей Сидоров", Age: 42, Address: "Санкт-Петербург, Невский пр. 10"},
		person{Key: "3", Name: "Мария Иванова", Age: 28, Address: "Казань, ул. Баумана 5"},
	}
}

// item has a default-hidden column and a date, like the products table.
type item struct {
	ID      int
	Title   string
	Price   float64
	Notes   string
	Created time.Time
}

func (i item) RowKey() string { return CellText(i.ID) }

func itemCatalog() Catalog {
	return Catalog{
		Columns: []Column{
			{Key: "id", Title: "ID", Field: "id", Sortable: true, Type: FieldInt},
			{Key: "title", Title: "Название", Field: "title", Sortable: true, Type: FieldText},
			{Key: "price", Title: "Цена", Field: "price", Sortable: true, Type: FieldFloat},
			{Key: "notes", Title: "Описание", Field: "notes", Type: FieldText, DefaultHidden: true},
			{Key: "created", Title: "Дата создания", Field: "created", Sortable: true, Type: FieldDate},
		},
		Accessors: map[string]Accessor{
			"id":      Field(func(i item) int { return i.ID }),
			"title":   Field(func(i item) string { return i.Title }),
			"price":   Field(func(i item) float64 { return i.Price }),
			"notes":   Field(func(i item) string { return i.Notes }),
			"created": Field(func(i item) time.Time { return i.Created }),
		},
	}
}

// fakeStore is an in-memory Store with error injection.
type fakeStore struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	sets   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

var errStoreDown = errors.New("store down")

// newTestView builds a view over personCatalog with a notification queue.
func newTestView(t interface{ Helper() }, store Store, minVisible int) (*TableViewState, *NotificationQueue) {
	t.Helper()
	queue := NewNotificationQueue(10)
	v := NewTableViewState(context.Background(), personCatalog(), store, ViewOptions{
		MinVisible: minVisible,
		Notifier:   queue,
	})
	return v, queue
}

func columnKeys(cols []Column) []string {
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	return keys
}

func rowKeys(rows []Row) []string {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.RowKey()
	}
	return keys
}
