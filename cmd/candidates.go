package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/molscope-cli/internal/picker"
	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/KaramelBytes/molscope-cli/internal/service"
)

var (
	candClass  string
	candSearch string
	candLimit  int
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates [run]",
	Short: "List the molecules of one class that can be explored",
	Long: `List the SMILES of a run predicted as sensitizer (inputs for counterfactuals) or
non-sensitizer (inputs for chemical-space exploration).`,
	Example: `  molscope candidates --class sensitizer
  molscope candidates --class non-sensitizer --search c1cc --limit 100`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, err := actionForClass(candClass)
		if err != nil {
			return err
		}
		run, err := loadRun(runRef(args))
		if err != nil {
			return err
		}
		list := sessionFor(run, nil, nil).Picker(action)
		list.SetQuery(candSearch)
		if list.Empty() {
			fmt.Println("No results.")
			return nil
		}
		limit := candLimit
		if limit <= 0 {
			limit = list.Len()
		}
		shown := revealUpTo(list, limit)
		for _, s := range shown {
			fmt.Println(s)
		}
		if len(shown) < list.Len() {
			fmt.Printf("… %d of %d shown (use --limit to see more)\n", len(shown), list.Len())
		}
		return nil
	},
}

// revealUpTo grows the list window until n candidates are materialized or
// the list is exhausted, and returns the first n.
func revealUpTo(list *picker.List, n int) []string {
	for list.VisibleCount() < n {
		if !list.Reveal(list.VisibleCount() - 1) {
			break
		}
	}
	visible := list.Visible()
	if len(visible) > n {
		visible = visible[:n]
	}
	return visible
}

func actionForClass(name string) (service.Action, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case predictions.Sensitizer.Name, "s", "1":
		return service.ActionCounterfactuals, nil
	case predictions.NonSensitizer.Name, "non", "n", "0":
		return service.ActionChemicalSpace, nil
	}
	return "", fmt.Errorf("invalid --class %q (use sensitizer or non-sensitizer)", name)
}

func init() {
	rootCmd.AddCommand(candidatesCmd)
	candidatesCmd.Flags().StringVarP(&candClass, "class", "c", predictions.Sensitizer.Name, "sensitizer or non-sensitizer")
	candidatesCmd.Flags().StringVarP(&candSearch, "search", "s", "", "case-insensitive SMILES substring")
	candidatesCmd.Flags().IntVar(&candLimit, "limit", picker.PageSize, "maximum number of candidates to print, 0 for all")
}
