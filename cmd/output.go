package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/olekukonko/tablewriter"

	"github.com/KaramelBytes/molscope-cli/internal/table"
	"github.com/KaramelBytes/molscope-cli/internal/utils"
)

const maxCellWidth = 60

// renderRows prints rows under the given columns.
func renderRows[R table.Row](w io.Writer, columns []table.ColumnSpec, rows []R) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)

	header := make([]string, 0, len(columns))
	for _, c := range columns {
		header = append(header, c.Title)
	}
	tw.SetHeader(header)
	for _, r := range rows {
		line := make([]string, 0, len(columns))
		for _, c := range columns {
			line = append(line, utils.TruncateCell(table.Cell(r, c.Key), maxCellWidth))
		}
		tw.Append(line)
	}
	tw.Render()
}

// renderMarkdown renders md for the terminal using the configured theme. Raw
// Markdown is returned if rendering fails.
func renderMarkdown(md string, width int) string {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	theme := "auto"
	if cfg != nil && cfg.Theme != "" {
		theme = strings.ToLower(cfg.Theme)
	}
	switch theme {
	case "dark", "light", "notty":
		opts = append(opts, glamour.WithStandardStyle(theme))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		logger.Debug("markdown renderer unavailable", "err", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func printPageFooter[R table.Row](w io.Writer, v *table.View[R]) {
	if v.ShowPagination() {
		fmt.Fprintf(w, "Page %d of %d (%d rows)\n", v.PageIndex()+1, v.PageCount(), len(v.Filtered()))
		return
	}
	fmt.Fprintf(w, "%d rows\n", len(v.Filtered()))
}
