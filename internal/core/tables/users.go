package tables

import (
	"strconv"

	"github.com/JonMunkholm/tableview/internal/core"
)

// User is a row of the users table.
type User struct {
	Key     string
	Name    string
	Age     int
	Address string
}

// RowKey implements core.Row.
func (u User) RowKey() string { return u.Key }

// Employee is a row of the employees table.
type Employee struct {
	ID         int
	Name       string
	Email      string
	Age        int
	Department string
}

// RowKey implements core.Row.
func (e Employee) RowKey() string { return strconv.Itoa(e.ID) }

var userRows = []User{
	{Key: "1", Name: "Иван Петров", Age: 32, Address: "Москва, ул. Ленина 1"},
	{Key: "2", Name: "Алексей Сидоров", Age: 42, Address: "Санкт-Петербург, Невский пр. 10"},
	{Key: "3", Name: "Мария Иванова", Age: 28, Address: "Казань, ул. Баумана 5"},
}

var employeeRows = []Employee{
	{ID: 1, Name: "Иван Иванов", Email: "ivan@example.com", Age: 30, Department: "IT"},
	{ID: 2, Name: "Мария Петрова", Email: "maria@example.com", Age: 25, Department: "HR"},
}

func init() {
	registerUsers()
	registerEmployees()
}

func registerUsers() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   "users",
			Group: GroupDemo,
			Label: "Таблица пользователей",
		},
		Catalog: core.Catalog{
			Columns: []core.Column{
				{Key: "name", Title: "Имя", Field: "name", Sortable: true, Type: core.FieldText},
				{Key: "age", Title: "Возраст", Field: "age", Sortable: true, Type: core.FieldInt},
				{Key: "address", Title: "Адрес", Field: "address", Sortable: true, Type: core.FieldText},
			},
			Accessors: map[string]core.Accessor{
				"name":    core.Field(func(u User) string { return u.Name }),
				"age":     core.Field(func(u User) int { return u.Age }),
				"address": core.Field(func(u User) string { return u.Address }),
			},
		},
		MinVisible: 1,
		Rows:       staticRows(userRows),
	})
}

func registerEmployees() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   "employees",
			Group: GroupDemo,
			Label: "Сотрудники",
		},
		Catalog: core.Catalog{
			Columns: []core.Column{
				{Key: "id", Title: "ID", Field: "id", Type: core.FieldInt},
				{Key: "name", Title: "Имя", Field: "name", Type: core.FieldText},
				{Key: "email", Title: "Email", Field: "email", Type: core.FieldText},
				{Key: "age", Title: "Возраст", Field: "age", Type: core.FieldInt},
				{Key: "department", Title: "Отдел", Field: "department", Type: core.FieldEnum},
			},
			Accessors: map[string]core.Accessor{
				"id":         core.Field(func(e Employee) int { return e.ID }),
				"name":       core.Field(func(e Employee) string { return e.Name }),
				"email":      core.Field(func(e Employee) string { return e.Email }),
				"age":        core.Field(func(e Employee) int { return e.Age }),
				"department": core.Field(func(e Employee) string { return e.Department }),
			},
		},
		MinVisible: 2,
		Rows:       staticRows(employeeRows),
	})
}
