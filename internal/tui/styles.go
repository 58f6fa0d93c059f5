package tui

import (
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var palette = struct {
	accent, muted, success, failure lipgloss.Color
}{
	accent:  lipgloss.Color("63"),
	muted:   lipgloss.Color("244"),
	success: lipgloss.Color("42"),
	failure: lipgloss.Color("203"),
}

type styles struct {
	title, footer, hint        lipgloss.Style
	panel, panelFocused        lipgloss.Style
	paneTitle                  lipgloss.Style
	listItem, listCursor       lipgloss.Style
	selected                   lipgloss.Style
	toastSuccess, toastFailure lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	return styles{
		title:        base.Copy().Bold(true).Padding(0, 1),
		footer:       base.Copy().Foreground(palette.muted).Padding(0, 1),
		hint:         base.Copy().Faint(true).Padding(0, 1),
		panel:        base.Copy().BorderStyle(lipgloss.NormalBorder()).BorderForeground(palette.muted),
		panelFocused: base.Copy().BorderStyle(lipgloss.DoubleBorder()).BorderForeground(palette.accent),
		paneTitle:    base.Copy().Bold(true).Padding(0, 1),
		listItem:     base.Copy().Padding(0, 1),
		listCursor:   base.Copy().Padding(0, 1).Bold(true).Foreground(palette.accent),
		selected:     base.Copy().Padding(0, 1).Foreground(palette.success),
		toastSuccess: base.Copy().Bold(true).Padding(0, 1).Foreground(palette.success),
		toastFailure: base.Copy().Bold(true).Padding(0, 1).Foreground(palette.failure),
	}
}

func gridStyles() btable.Styles {
	s := btable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(palette.muted).
		BorderBottom(true).
		Bold(true)
	s.Cell = s.Cell.Padding(0, 1)
	s.Selected = s.Selected.Foreground(lipgloss.Color("230")).Background(palette.accent).Bold(false)
	return s
}
