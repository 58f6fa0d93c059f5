package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/KaramelBytes/molscope-cli/internal/service"
	"github.com/KaramelBytes/molscope-cli/internal/utils"
)

const paneWidth = 48

var paneTitles = map[service.Action]string{
	service.ActionCounterfactuals: "Counterfactuals",
	service.ActionChemicalSpace:   "Chemical space",
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render(m.title))
	b.WriteString("\n")
	if m.searching || m.currentQuery() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	grid := m.styles.panel
	if m.focus == 0 {
		grid = m.styles.panelFocused
	}
	b.WriteString(grid.Render(m.grid.View()))
	b.WriteString("\n")
	b.WriteString(m.styles.footer.Render(m.tableFooter()))
	b.WriteString("\n")

	panes := make([]string, 0, len(m.actions))
	for i, a := range m.actions {
		style := m.styles.panel
		if m.focus == i+1 {
			style = m.styles.panelFocused
		}
		panes = append(panes, style.Width(paneWidth).Render(m.pickerPane(a)+"\n"+m.resultsPane(a)))
	}
	if m.width > 0 && m.width < len(panes)*(paneWidth+2) {
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, panes...))
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panes...))
	}
	b.WriteString("\n")

	if m.toast != "" {
		style := m.styles.toastSuccess
		if m.toastErr {
			style = m.styles.toastFailure
		}
		b.WriteString(style.Render(m.toast))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.hint.Render(m.help()))
	return b.String()
}

func (m *Model) tableFooter() string {
	view := m.ctl.Table()
	n := len(view.Filtered())
	parts := []string{fmt.Sprintf("%d rows", n)}
	if view.ShowPagination() {
		parts = append(parts, fmt.Sprintf("page %d/%d", view.PageIndex()+1, view.PageCount()))
	}
	if st := view.State(); st.SortKey != "" {
		parts = append(parts, fmt.Sprintf("sort %s %s", st.SortKey, st.Direction))
	}
	if n == 0 {
		parts[0] = "No results"
	}
	return strings.Join(parts, " · ")
}

func (m *Model) pickerPane(a service.Action) string {
	list := m.ctl.Picker(a)
	var b strings.Builder
	b.WriteString(m.styles.paneTitle.Render(fmt.Sprintf("%s · %s (%d)", paneTitles[a], list.Class().Title, list.Len())))
	b.WriteString("\n")
	if smiles, ok := list.Selected(); ok {
		b.WriteString(m.styles.selected.Render("● " + utils.TruncateCell(smiles, paneWidth-6)))
	} else {
		b.WriteString(m.styles.listItem.Foreground(palette.muted).Render("nothing selected"))
	}
	b.WriteString("\n")
	if !list.IsOpen() {
		return b.String()
	}
	if list.Empty() {
		b.WriteString(m.styles.listItem.Render("No matches"))
		return b.String()
	}

	visible := list.Visible()
	cur := m.cursors[a]
	start := max(0, cur-pickerWindow/2)
	end := min(len(visible), start+pickerWindow)
	start = max(0, end-pickerWindow)
	for i := start; i < end; i++ {
		text := utils.TruncateCell(visible[i], paneWidth-6)
		if i == cur {
			b.WriteString(m.styles.listCursor.Render("> " + text))
		} else {
			b.WriteString(m.styles.listItem.Render("  " + text))
		}
		b.WriteString("\n")
	}
	if list.VisibleCount() < list.Len() {
		b.WriteString(m.styles.listItem.Foreground(palette.muted).Render(fmt.Sprintf("%d of %d loaded", list.VisibleCount(), list.Len())))
	}
	return b.String()
}

func (m *Model) resultsPane(a service.Action) string {
	ex := m.ctl.Explorer(a)
	var b strings.Builder
	if ex.Loading() {
		b.WriteString(m.styles.listItem.Render(m.spinner.View() + " generating…"))
		return b.String()
	}
	results := ex.View().VisibleRows()
	if len(results) == 0 {
		b.WriteString(m.styles.listItem.Foreground(palette.muted).Render("no results"))
		return b.String()
	}
	for i, r := range results {
		if i == resultLines {
			b.WriteString(m.styles.listItem.Foreground(palette.muted).Render(fmt.Sprintf("+%d more", len(results)-resultLines)))
			break
		}
		b.WriteString(m.styles.listItem.Render(resultLine(r)))
		b.WriteString("\n")
	}
	return b.String()
}

func resultLine(r predictions.Counterfactual) string {
	return fmt.Sprintf("%-22s %-14s %s",
		utils.TruncateCell(r.SMILES, 22),
		utils.TruncateCell(r.Prediction, 14),
		utils.TruncateCell(r.Confidence, 6))
}

func (m *Model) help() string {
	if m.searching {
		return "type to filter · enter/esc done"
	}
	if _, ok := m.focusedAction(); ok {
		return "↑/↓ move · enter select · g generate · y copy · x clear · / search · tab next · q quit"
	}
	return "↑/↓ move · n/p page · s sort · r reverse · S unsort · e export · / search · tab pickers · q quit"
}
