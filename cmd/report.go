package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/molscope-cli/internal/report"
	"github.com/KaramelBytes/molscope-cli/internal/utils"
)

var (
	reportRaw    bool
	reportOutput string
	reportWidth  int
)

var reportCmd = &cobra.Command{
	Use:   "report [run]",
	Short: "Summarize a run: classes, confidence, applicability and ground-truth agreement",
	Example: `  molscope report
  molscope report 3f2a --raw -o report.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := loadRun(runRef(args))
		if err != nil {
			return err
		}
		md := report.Build(run.Source, string(run.Model), run.Rows).Markdown()
		if reportOutput != "" {
			if err := utils.SafeWriteFile(reportOutput, []byte(md)); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote report to %s\n", reportOutput)
			return nil
		}
		if reportRaw {
			fmt.Print(md)
			return nil
		}
		fmt.Print(renderMarkdown(md, reportWidth))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVar(&reportRaw, "raw", false, "print Markdown without terminal styling")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the Markdown report to a file")
	reportCmd.Flags().IntVar(&reportWidth, "width", 80, "word-wrap width for rendered output")
}
