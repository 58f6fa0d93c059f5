package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/molscope-cli/internal/export"
	"github.com/KaramelBytes/molscope-cli/internal/service"
	"github.com/KaramelBytes/molscope-cli/internal/table"
)

var (
	exportFlags   viewFlags
	exportOutput  string
	exportResults string
)

var exportCmd = &cobra.Command{
	Use:   "export [run]",
	Short: "Export a run to CSV",
	Long: `Export the rows of a run that match --search, in --sort order, to CSV.
Every page is written. With --results, the secondary results of that action are
exported instead.`,
	Example: `  molscope export -o predictions.csv
  molscope export 3f2a --search "in domain" --sort confidence
  molscope export --results counterfactuals -o counterfactuals.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := loadRun(runRef(args))
		if err != nil {
			return err
		}
		ctl := sessionFor(run, nil, nil)

		if exportResults != "" {
			action, err := service.ParseAction(exportResults)
			if err != nil {
				return err
			}
			v := ctl.Explorer(action).View()
			if err := applyView(v, table.CounterfactualSchema(), exportFlags); err != nil {
				return err
			}
			out := exportOutput
			if out == "" {
				out = string(action) + ".csv"
			}
			if err := export.WriteFile(out, export.ToCSV(v.Filtered(), export.CounterfactualColumns)); err != nil {
				return err
			}
			fmt.Printf("✓ Exported %d rows to %s\n", len(v.Filtered()), out)
			return nil
		}

		if err := applyView(ctl.Table(), table.PredictionSchema(), exportFlags); err != nil {
			return err
		}
		path, err := ctl.Export(exportOutput)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Exported %d rows to %s\n", len(ctl.Table().Filtered()), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportFlags.register(exportCmd, false)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default predictions.csv)")
	exportCmd.Flags().StringVar(&exportResults, "results", "", "export secondary results instead: counterfactuals or chemical-space")
}
