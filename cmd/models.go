package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/molscope-cli/internal/service"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the datasets/models the prediction service offers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := defaultModel("")
		if err != nil {
			current = service.DefaultModel
		}
		for _, m := range service.Models() {
			mark := " "
			if m.Choice == current {
				mark = "*"
			}
			fmt.Printf("%s %-24s %-13s %s\n", mark, m.Choice, m.Alias, m.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
