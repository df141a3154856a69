package tables

import (
	"strconv"
	"time"

	"github.com/JonMunkholm/tableview/internal/core"
)

// ProductStatus is the lifecycle state of a product.
type ProductStatus string

const (
	StatusActive       ProductStatus = "active"
	StatusInactive     ProductStatus = "inactive"
	StatusDiscontinued ProductStatus = "discontinued"
)

// Product is a row of the products table.
type Product struct {
	ID          int
	Name        string
	Category    string
	Price       int // Rubles
	Stock       int
	Supplier    string
	Rating      float64
	Description string
	CreatedAt   time.Time
	Status      ProductStatus
}

// RowKey implements core.Row.
func (p Product) RowKey() string { return strconv.Itoa(p.ID) }

var productRows = []Product{
	{
		ID: 1, Name: "Ноутбук Dell XPS 13", Category: "Электроника",
		Price: 89999, Stock: 15, Supplier: "Dell Inc.", Rating: 4.8,
		Description: `Ультратонкий ноутбук с дисплеем 13.3" и процессором Intel Core i7`,
		CreatedAt:   mustDate("2024-01-15"), Status: StatusActive,
	},
	{
		ID: 2, Name: "Смартфон iPhone 15 Pro", Category: "Электроника",
		Price: 129999, Stock: 8, Supplier: "Apple Inc.", Rating: 4.9,
		Description: "Флагманский смартфон с камерой 48MP и чипом A17 Pro",
		CreatedAt:   mustDate("2024-02-01"), Status: StatusActive,
	},
	{
		ID: 3, Name: "Наушники Sony WH-1000XM5", Category: "Аудио",
		Price: 29999, Stock: 25, Supplier: "Sony Corporation", Rating: 4.7,
		Description: "Беспроводные наушники с активным шумоподавлением",
		CreatedAt:   mustDate("2024-01-20"), Status: StatusActive,
	},
	{
		ID: 4, Name: "Планшет Samsung Galaxy Tab S9", Category: "Электроника",
		Price: 59999, Stock: 12, Supplier: "Samsung Electronics", Rating: 4.6,
		Description: `10.9" планшет с процессором Snapdragon 8 Gen 2`,
		CreatedAt:   mustDate("2024-02-10"), Status: StatusActive,
	},
	{
		ID: 5, Name: "Умные часы Apple Watch Series 9", Category: "Носимые устройства",
		Price: 39999, Stock: 20, Supplier: "Apple Inc.", Rating: 4.8,
		Description: "Умные часы с датчиком температуры и новым чипом S9",
		CreatedAt:   mustDate("2024-01-25"), Status: StatusActive,
	},
	{
		ID: 6, Name: "Игровая консоль PlayStation 5", Category: "Игры",
		Price: 49999, Stock: 5, Supplier: "Sony Interactive Entertainment", Rating: 4.9,
		Description: "Игровая консоль нового поколения с поддержкой 4K",
		CreatedAt:   mustDate("2024-01-30"), Status: StatusActive,
	},
	{
		ID: 7, Name: "Монитор LG 27GP850-B", Category: "Периферия",
		Price: 34999, Stock: 18, Supplier: "LG Electronics", Rating: 4.5,
		Description: `27" игровой монитор с частотой 165Hz и разрешением 2560x1440`,
		CreatedAt:   mustDate("2024-02-05"), Status: StatusActive,
	},
	{
		ID: 8, Name: "Клавиатура Logitech MX Keys", Category: "Периферия",
		Price: 8999, Stock: 30, Supplier: "Logitech", Rating: 4.4,
		Description: "Беспроводная клавиатура с подсветкой и эргономичным дизайном",
		CreatedAt:   mustDate("2024-01-18"), Status: StatusActive,
	},
}

func init() {
	registerProducts()
}

func registerProducts() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   "products",
			Group: GroupDemo,
			Label: "Таблица продуктов",
		},
		Catalog: core.Catalog{
			Columns: []core.Column{
				{Key: "id", Title: "ID", Field: "id", Sortable: true, Type: core.FieldInt},
				{Key: "name", Title: "Название", Field: "name", Sortable: true, Type: core.FieldText},
				{Key: "category", Title: "Категория", Field: "category", Sortable: true, Type: core.FieldText},
				{Key: "price", Title: "Цена", Field: "price", Sortable: true, Type: core.FieldInt},
				{Key: "stock", Title: "Остаток", Field: "stock", Sortable: true, Type: core.FieldInt},
				{Key: "supplier", Title: "Поставщик", Field: "supplier", Sortable: true, Type: core.FieldText},
				{Key: "rating", Title: "Рейтинг", Field: "rating", Sortable: true, Type: core.FieldFloat},
				{Key: "description", Title: "Описание", Field: "description", Type: core.FieldText, DefaultHidden: true},
				{Key: "createdAt", Title: "Дата создания", Field: "createdAt", Sortable: true, Type: core.FieldDate},
				{Key: "status", Title: "Статус", Field: "status", Sortable: true, Type: core.FieldEnum},
			},
			Accessors: map[string]core.Accessor{
				"id":          core.Field(func(p Product) int { return p.ID }),
				"name":        core.Field(func(p Product) string { return p.Name }),
				"category":    core.Field(func(p Product) string { return p.Category }),
				"price":       core.Field(func(p Product) int { return p.Price }),
				"stock":       core.Field(func(p Product) int { return p.Stock }),
				"supplier":    core.Field(func(p Product) string { return p.Supplier }),
				"rating":      core.Field(func(p Product) float64 { return p.Rating }),
				"description": core.Field(func(p Product) string { return p.Description }),
				"createdAt":   core.Field(func(p Product) time.Time { return p.CreatedAt }),
				"status":      core.Field(func(p Product) string { return string(p.Status) }),
			},
		},
		MinVisible: 3,
		Rows:       staticRows(productRows),
	})
}
