package core

import (
	"slices"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestNormalizeSorts(t *testing.T) {
	catalog := itemCatalog()

	tests := []struct {
		name  string
		sorts []SortSpec
		want  []SortSpec
	}{
		{"empty", nil, nil},
		{"direction normalized", []SortSpec{{Column: "price", Dir: "DESC"}}, []SortSpec{{Column: "price", Dir: "desc"}}},
		{"bad direction defaults to asc", []SortSpec{{Column: "price", Dir: "up"}}, []SortSpec{{Column: "price", Dir: "asc"}}},
		{"unknown column dropped", []SortSpec{{Column: "nope", Dir: "asc"}, {Column: "id", Dir: "asc"}}, []SortSpec{{Column: "id", Dir: "asc"}}},
		{"non-sortable dropped", []SortSpec{{Column: "notes", Dir: "asc"}}, nil},
		{"duplicate dropped", []SortSpec{{Column: "id", Dir: "asc"}, {Column: "id", Dir: "desc"}}, []SortSpec{{Column: "id", Dir: "asc"}}},
		{"capped at two levels", []SortSpec{
			{Column: "title", Dir: "asc"}, {Column: "price", Dir: "asc"}, {Column: "id", Dir: "asc"},
		}, []SortSpec{{Column: "title", Dir: "asc"}, {Column: "price", Dir: "asc"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSorts(catalog, tt.sorts)
			if !slices.Equal(got, tt.want) {
				t.Errorf("NormalizeSorts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortRows_Numeric(t *testing.T) {
	rows := personRows()

	asc := SortRows(personCatalog(), rows, []SortSpec{{Column: "age", Dir: "asc"}}, language.Und)
	if got := rowKeys(asc); !slices.Equal(got, []string{"3", "1", "2"}) {
		t.Errorf("age asc = %v, want [3 1 2]", got)
	}

	desc := SortRows(personCatalog(), rows, []SortSpec{{Column: "age", Dir: "desc"}}, language.Und)
	if got := rowKeys(desc); !slices.Equal(got, []string{"2", "1", "3"}) {
		t.Errorf("age desc = %v, want [2 1 3]", got)
	}

	// Input untouched.
	if got := rowKeys(rows); !slices.Equal(got, []string{"1", "2", "3"}) {
		t.Errorf("input reordered: %v", got)
	}
}

func TestSortRows_CyrillicCollation(t *testing.T) {
	rows := personRows()

	got := SortRows(personCatalog(), rows, []SortSpec{{Column: "name", Dir: "asc"}}, language.Russian)
	// Алексей < Иван < Мария
	if keys := rowKeys(got); !slices.Equal(keys, []string{"2", "1", "3"}) {
		t.Errorf("name asc = %v, want [2 1 3]", keys)
	}
}

func TestSortRows_CollationIgnoresCase(t *testing.T) {
	rows := []Row{
		person{Key: "1", Name: "бета"},
		person{Key: "2", Name: "Альфа"},
		person{Key: "3", Name: "Вера"},
	}

	got := SortRows(personCatalog(), rows, []SortSpec{{Column: "name", Dir: "asc"}}, language.Russian)
	if keys := rowKeys(got); !slices.Equal(keys, []string{"2", "1", "3"}) {
		t.Errorf("name asc = %v, want [2 1 3]", keys)
	}
}

func TestSortRows_StableOnTies(t *testing.T) {
	rows := []Row{
		person{Key: "a", Name: "X", Age: 30},
		person{Key: "b", Name: "Y", Age: 20},
		person{Key: "c", Name: "Z", Age: 30},
		person{Key: "d", Name: "W", Age: 20},
	}

	got := SortRows(personCatalog(), rows, []SortSpec{{Column: "age", Dir: "asc"}}, language.Und)
	if keys := rowKeys(got); !slices.Equal(keys, []string{"b", "d", "a", "c"}) {
		t.Errorf("age asc = %v, want [b d a c]", keys)
	}
}

func TestSortRows_SecondLevel(t *testing.T) {
	rows := []Row{
		person{Key: "1", Name: "Б", Age: 30},
		person{Key: "2", Name: "А", Age: 30},
		person{Key: "3", Name: "В", Age: 20},
	}

	got := SortRows(personCatalog(), rows, []SortSpec{
		{Column: "age", Dir: "desc"},
		{Column: "name", Dir: "asc"},
	}, language.Russian)
	if keys := rowKeys(got); !slices.Equal(keys, []string{"2", "1", "3"}) {
		t.Errorf("age desc, name asc = %v, want [2 1 3]", keys)
	}
}

func TestSortRows_Dates(t *testing.T) {
	day := func(s string) time.Time { d, _ := time.Parse(DateLayout, s); return d }
	rows := []Row{
		item{ID: 1, Created: day("2024-02-01")},
		item{ID: 2, Created: day("2024-01-15")},
		item{ID: 3, Created: day("2024-01-20")},
	}

	got := SortRows(itemCatalog(), rows, []SortSpec{{Column: "created", Dir: "asc"}}, language.Und)
	if keys := rowKeys(got); !slices.Equal(keys, []string{"2", "3", "1"}) {
		t.Errorf("created asc = %v, want [2 3 1]", keys)
	}
}

func TestSortRows_NilLast(t *testing.T) {
	catalog := Catalog{
		Columns: []Column{{Key: "v", Field: "v", Sortable: true, Type: FieldInt}},
		Accessors: map[string]Accessor{
			"v": func(r Row) any {
				if r.RowKey() == "nil" {
					return nil
				}
				return len(r.RowKey())
			},
		},
	}
	rows := []Row{
		person{Key: "nil"},
		person{Key: "aa"},
		person{Key: "a"},
	}

	for _, dir := range []string{"asc", "desc"} {
		got := SortRows(catalog, rows, []SortSpec{{Column: "v", Dir: dir}}, language.Und)
		if last := got[len(got)-1].RowKey(); last != "nil" {
			t.Errorf("%s: last row = %q, want nil row", dir, last)
		}
	}
}

func TestSortRows_NoSortsReturnsCopy(t *testing.T) {
	rows := personRows()
	got := SortRows(personCatalog(), rows, nil, language.Und)

	if !slices.Equal(rowKeys(got), rowKeys(rows)) {
		t.Errorf("order changed without sorts: %v", rowKeys(got))
	}
	got[0] = nil
	if rows[0] == nil {
		t.Error("SortRows returned the input slice")
	}
}
