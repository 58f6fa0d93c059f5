package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/molscope-cli/internal/table"
)

// viewFlags are the search/sort/page controls shared by show and export.
type viewFlags struct {
	search string
	sort   string
	order  string
	page   int
}

func (f *viewFlags) register(cmd *cobra.Command, withPage bool) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "case-insensitive filter over SMILES, prediction and applicability")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort column (smiles, prediction, confidence, applicability, ground-truth)")
	cmd.Flags().StringVar(&f.order, "order", "", "sort order: asc or desc (default desc for confidence, asc otherwise)")
	if withPage {
		cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page to show, 1-based")
	}
}

// applyView configures v from the flags. The page is clamped by the view.
func applyView[R table.Row](v *table.View[R], schema table.Schema, f viewFlags) error {
	v.SetFilter(f.search)
	if f.sort != "" {
		key := strings.ReplaceAll(strings.ToLower(f.sort), "-", "")
		spec, ok := schema.ColumnByKey(key)
		if !ok || !spec.Sortable {
			return fmt.Errorf("cannot sort by %q", f.sort)
		}
		if !v.SetSort(spec.Key) {
			return fmt.Errorf("column %q is not shown for this run", spec.Title)
		}
		switch strings.ToLower(f.order) {
		case "":
		case "asc", "desc":
			if v.State().Direction.String() != strings.ToLower(f.order) {
				v.SetSort(spec.Key)
			}
		default:
			return fmt.Errorf("invalid --order %q (use asc or desc)", f.order)
		}
	}
	if f.page > 0 {
		v.SetPage(f.page - 1)
	}
	return nil
}
