// Package picker implements a searchable single-select list over the rows of
// one prediction class, materializing its candidates incrementally.
package picker

import (
	"strings"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
)

const (
	// PageSize is both the initial visible window and the growth step.
	PageSize = 50
	// Threshold is how close to the end of the window the viewport must get
	// before the window grows.
	Threshold = 5
)

// State is a snapshot of a list's controls.
type State struct {
	Query        string
	VisibleCount int
	Selected     string
}

// List holds the candidates of one class plus its search, reveal window and
// selection.
type List struct {
	class    predictions.Class
	source   []string
	query    string
	matches  []string
	visible  int
	selected string
	open     bool
}

// New returns an empty list for class.
func New(class predictions.Class) *List {
	return &List{class: class}
}

// Class returns the class this list draws candidates from.
func (l *List) Class() predictions.Class { return l.class }

// SetRows derives the candidate set from a new row sequence. A selection that
// is no longer a candidate is dropped.
func (l *List) SetRows(rows []predictions.Row) {
	l.source = l.source[:0]
	for _, r := range rows {
		if l.class.Matches(r.Prediction) {
			l.source = append(l.source, r.SMILES)
		}
	}
	l.rematch()
	if l.selected != "" && !contains(l.source, l.selected) {
		l.selected = ""
	}
}

// SetQuery filters candidates by case-insensitive SMILES substring. A new query
// resets the reveal window; repeating the current query does nothing.
func (l *List) SetQuery(query string) {
	if query == l.query {
		return
	}
	l.query = query
	l.rematch()
}

// Query returns the current search text.
func (l *List) Query() string { return l.query }

// Candidates returns every match for the current query.
func (l *List) Candidates() []string { return append([]string(nil), l.matches...) }

// Len is the number of matches for the current query.
func (l *List) Len() int { return len(l.matches) }

// Empty reports whether there is nothing to pick.
func (l *List) Empty() bool { return len(l.matches) == 0 }

// Visible returns the materialized prefix of the matches.
func (l *List) Visible() []string { return append([]string(nil), l.matches[:l.visible]...) }

// VisibleCount is the size of the materialized prefix.
func (l *List) VisibleCount() int { return l.visible }

// Reveal reports that the viewport reached index. When index is within
// Threshold items of the end of the window, the window grows by PageSize,
// capped at the number of matches. It returns true if the window grew.
func (l *List) Reveal(index int) bool {
	if l.visible >= len(l.matches) {
		return false
	}
	if index < l.visible-Threshold {
		return false
	}
	l.visible = min(l.visible+PageSize, len(l.matches))
	return true
}

// Select picks smiles and closes the list. It returns false if smiles is not
// among the current matches.
func (l *List) Select(smiles string) bool {
	if !contains(l.matches, smiles) {
		return false
	}
	l.selected = smiles
	l.open = false
	return true
}

// SelectIndex picks the match at index.
func (l *List) SelectIndex(index int) bool {
	if index < 0 || index >= len(l.matches) {
		return false
	}
	return l.Select(l.matches[index])
}

// Selected returns the picked SMILES, if any.
func (l *List) Selected() (string, bool) { return l.selected, l.selected != "" }

// ClearSelection drops the current pick.
func (l *List) ClearSelection() { l.selected = "" }

// Open shows the list.
func (l *List) Open() { l.open = true }

// Close hides the list without changing the selection.
func (l *List) Close() { l.open = false }

// IsOpen reports whether the list is shown.
func (l *List) IsOpen() bool { return l.open }

// State returns a snapshot of the list.
func (l *List) State() State {
	return State{Query: l.query, VisibleCount: l.visible, Selected: l.selected}
}

func (l *List) rematch() {
	l.matches = l.matches[:0]
	q := strings.ToLower(l.query)
	for _, s := range l.source {
		if q == "" || strings.Contains(strings.ToLower(s), q) {
			l.matches = append(l.matches, s)
		}
	}
	l.visible = min(PageSize, len(l.matches))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
