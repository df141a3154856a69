package core

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// MaxSortLevels is the number of sort columns honoured per request.
const MaxSortLevels = 2

// DefaultCollation is the language used for text ordering.
var DefaultCollation = language.Russian

// NormalizeSorts drops unknown and non-sortable columns, fixes directions
// to "asc"/"desc" and keeps at most MaxSortLevels entries.
func NormalizeSorts(catalog Catalog, sorts []SortSpec) []SortSpec {
	var valid []SortSpec
	seen := make(map[string]bool)
	for _, s := range sorts {
		col, ok := catalog.Lookup(s.Column)
		if !ok || !col.Sortable || seen[s.Column] {
			continue
		}
		dir := strings.ToLower(s.Dir)
		if dir != "asc" && dir != "desc" {
			dir = "asc"
		}
		valid = append(valid, SortSpec{Column: s.Column, Dir: dir})
		seen[s.Column] = true
		if len(valid) >= MaxSortLevels {
			break
		}
	}
	return valid
}

// SortRows returns a stably sorted copy of rows. Text compares with a
// collator for lang (DefaultCollation when Und), numbers numerically and
// dates chronologically. Nil values sort last in either direction.
func SortRows(catalog Catalog, rows []Row, sorts []SortSpec, lang language.Tag) []Row {
	out := slices.Clone(rows)
	sorts = NormalizeSorts(catalog, sorts)
	if len(sorts) == 0 {
		return out
	}
	if lang == language.Und {
		lang = DefaultCollation
	}
	coll := collate.New(lang)

	type level struct {
		col  Column
		desc bool
	}
	levels := make([]level, len(sorts))
	for i, s := range sorts {
		col, _ := catalog.Lookup(s.Column)
		levels[i] = level{col: col, desc: s.Dir == "desc"}
	}

	slices.SortStableFunc(out, func(a, b Row) int {
		for _, lv := range levels {
			av, _ := catalog.Value(a, lv.col.Key)
			bv, _ := catalog.Value(b, lv.col.Key)

			// Nil always last, independent of direction.
			switch {
			case av == nil && bv == nil:
				continue
			case av == nil:
				return 1
			case bv == nil:
				return -1
			}

			c := compareValues(coll, lv.col.Type, av, bv)
			if c == 0 {
				continue
			}
			if lv.desc {
				return -c
			}
			return c
		}
		return 0
	})
	return out
}

// compareValues orders two non-nil cell values.
func compareValues(coll *collate.Collator, ft FieldType, a, b any) int {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return cmp.Compare(af, bf)
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if ft == FieldInt || ft == FieldFloat {
		// Mixed types in a numeric column: fall back to text.
		return strings.Compare(CellText(a), CellText(b))
	}
	return coll.CompareString(CellText(a), CellText(b))
}
