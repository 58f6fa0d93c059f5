// Package table holds sort, filter and pagination state over a row sequence
// and produces the slice that is currently visible.
package table

import (
	"sort"
	"strings"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
)

// PageSize is the number of rows on a page of the prediction table.
const PageSize = 10

// Row is any record a view can display.
type Row interface {
	Value(key string) (string, bool)
}

// Direction is a sort order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ColumnSpec describes one column of a view.
type ColumnSpec struct {
	Key      string
	Title    string
	Sortable bool
	// Numeric columns compare by leading number and sort descending first.
	Numeric bool
	// Optional columns are shown only when at least one row has a value.
	Optional bool
}

// Schema declares the columns, searchable fields and page size of a view.
// PageSize 0 shows every row on one page.
type Schema struct {
	Columns    []ColumnSpec
	FilterKeys []string
	PageSize   int
}

// State is a snapshot of the view's controls.
type State struct {
	Query     string
	SortKey   string
	Direction Direction
	PageIndex int
	PageSize  int
}

// View owns the row sequence and the sort/filter/page state over it.
type View[R Row] struct {
	schema  Schema
	rows    []R
	columns []ColumnSpec

	query     string
	sortKey   string
	direction Direction
	pageIndex int

	filtered []R
}

// New returns an empty view for schema.
func New[R Row](schema Schema) *View[R] {
	v := &View[R]{schema: schema}
	v.SetRows(nil)
	return v
}

// SetRows replaces the row sequence wholesale.
func (v *View[R]) SetRows(rows []R) {
	v.rows = append([]R(nil), rows...)
	v.columns = v.columns[:0]
	for _, c := range v.schema.Columns {
		if c.Optional && !anyValue(v.rows, c.Key) {
			continue
		}
		v.columns = append(v.columns, c)
	}
	v.refresh()
}

// Rows returns the unfiltered sequence.
func (v *View[R]) Rows() []R { return append([]R(nil), v.rows...) }

// SetFilter sets the search query. The page index is kept unless it falls
// past the new last page.
func (v *View[R]) SetFilter(query string) {
	v.query = query
	v.refresh()
}

// SetSort toggles sorting on key. Repeating a key flips the direction; a new
// key starts ascending, or descending for numeric columns.
func (v *View[R]) SetSort(key string) bool {
	spec, ok := v.column(key)
	if !ok || !spec.Sortable {
		return false
	}
	if v.sortKey == key {
		if v.direction == Ascending {
			v.direction = Descending
		} else {
			v.direction = Ascending
		}
	} else {
		v.sortKey = key
		v.direction = Ascending
		if spec.Numeric {
			v.direction = Descending
		}
	}
	v.refresh()
	return true
}

// ClearSort restores the original row order.
func (v *View[R]) ClearSort() {
	v.sortKey = ""
	v.direction = Ascending
	v.refresh()
}

// SetPage moves to page n, clamped to the valid range.
func (v *View[R]) SetPage(n int) {
	v.pageIndex = n
	v.clampPage()
}

// NextPage advances one page if possible.
func (v *View[R]) NextPage() { v.SetPage(v.pageIndex + 1) }

// PrevPage goes back one page if possible.
func (v *View[R]) PrevPage() { v.SetPage(v.pageIndex - 1) }

// CanNextPage reports whether a later page exists.
func (v *View[R]) CanNextPage() bool { return v.pageIndex < v.PageCount()-1 }

// CanPrevPage reports whether an earlier page exists.
func (v *View[R]) CanPrevPage() bool { return v.pageIndex > 0 }

// VisibleRows returns the rows on the current page.
func (v *View[R]) VisibleRows() []R {
	size := v.schema.PageSize
	if size <= 0 {
		return append([]R(nil), v.filtered...)
	}
	start := v.pageIndex * size
	if start >= len(v.filtered) {
		return []R{}
	}
	end := start + size
	if end > len(v.filtered) {
		end = len(v.filtered)
	}
	return append([]R(nil), v.filtered[start:end]...)
}

// Filtered returns every row that matches the query, in display order.
func (v *View[R]) Filtered() []R { return append([]R(nil), v.filtered...) }

// Columns returns the columns currently shown.
func (v *View[R]) Columns() []ColumnSpec { return append([]ColumnSpec(nil), v.columns...) }

// HasColumn reports whether key is among the shown columns.
func (v *View[R]) HasColumn(key string) bool {
	_, ok := v.column(key)
	return ok
}

// PageCount is the number of pages; an empty view has one.
func (v *View[R]) PageCount() int {
	size := v.schema.PageSize
	if size <= 0 || len(v.filtered) == 0 {
		return 1
	}
	return (len(v.filtered) + size - 1) / size
}

// PageIndex is the zero-based current page.
func (v *View[R]) PageIndex() int { return v.pageIndex }

// ShowPagination reports whether the filtered rows span more than one page.
func (v *View[R]) ShowPagination() bool {
	return v.schema.PageSize > 0 && len(v.filtered) > v.schema.PageSize
}

// State returns a snapshot of the view's controls.
func (v *View[R]) State() State {
	return State{
		Query:     v.query,
		SortKey:   v.sortKey,
		Direction: v.direction,
		PageIndex: v.pageIndex,
		PageSize:  v.schema.PageSize,
	}
}

func (v *View[R]) column(key string) (ColumnSpec, bool) {
	for _, c := range v.columns {
		if c.Key == key {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// refresh recomputes the filtered and sorted sequence from the full rows.
func (v *View[R]) refresh() {
	v.filtered = Filter(v.rows, v.query, v.schema.FilterKeys)
	if spec, ok := v.column(v.sortKey); ok && spec.Sortable {
		sortRows(v.filtered, spec, v.direction)
	} else if v.sortKey != "" {
		v.sortKey = ""
		v.direction = Ascending
	}
	v.clampPage()
}

func (v *View[R]) clampPage() {
	last := v.PageCount() - 1
	if v.pageIndex > last {
		v.pageIndex = last
	}
	if v.pageIndex < 0 {
		v.pageIndex = 0
	}
}

// Filter keeps rows where the lower-cased query is a substring of any of keys.
// An empty query returns every row.
func Filter[R Row](rows []R, query string, keys []string) []R {
	out := make([]R, 0, len(rows))
	if query == "" {
		return append(out, rows...)
	}
	q := strings.ToLower(query)
	for _, r := range rows {
		for _, k := range keys {
			val, _ := r.Value(k)
			if strings.Contains(strings.ToLower(val), q) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func sortRows[R Row](rows []R, spec ColumnSpec, dir Direction) {
	less := func(a, b R) int {
		av, _ := a.Value(spec.Key)
		bv, _ := b.Value(spec.Key)
		if spec.Numeric {
			an, bn := predictions.ParseConfidence(av), predictions.ParseConfidence(bv)
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
		return strings.Compare(av, bv)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := less(rows[i], rows[j])
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
}

func anyValue[R Row](rows []R, key string) bool {
	for _, r := range rows {
		if v, ok := r.Value(key); ok && v != "" {
			return true
		}
	}
	return false
}
