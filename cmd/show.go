package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/molscope-cli/internal/explore"
	"github.com/KaramelBytes/molscope-cli/internal/runs"
	"github.com/KaramelBytes/molscope-cli/internal/session"
	"github.com/KaramelBytes/molscope-cli/internal/table"
)

var showFlags viewFlags

var showCmd = &cobra.Command{
	Use:   "show [run]",
	Short: "Show a page of a recorded run",
	Long:  "Show a page of a recorded run. The run is an ID or unique ID prefix; the latest run is used when omitted.",
	Example: `  molscope show
  molscope show 3f2a --search sensitizer --sort confidence
  molscope show --page 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := loadRun(runRef(args))
		if err != nil {
			return err
		}
		ctl := sessionFor(run, nil, nil)
		if err := applyView(ctl.Table(), table.PredictionSchema(), showFlags); err != nil {
			return err
		}
		fmt.Printf("Run %s · %s · %s\n", run.ShortID(), run.Model, run.Source)
		visible := ctl.Table().VisibleRows()
		if len(visible) == 0 {
			fmt.Println("No results.")
			return nil
		}
		renderRows(os.Stdout, ctl.Table().Columns(), visible)
		printPageFooter(os.Stdout, ctl.Table())
		return nil
	},
}

// loadRun opens the store and reads the run matching ref.
func loadRun(ref string) (*runs.Run, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load(ref)
}

// sessionFor builds a controller holding the rows and secondary results of run.
func sessionFor(run *runs.Run, gen explore.Generator, notify explore.Notifier) *session.Controller {
	ctl := session.New(gen, notify)
	ctl.SetModel(run.Model)
	ctl.Load(run.Rows)
	for action, results := range run.Secondary {
		if ex := ctl.Explorer(action); ex != nil {
			ex.Restore(results)
		}
	}
	return ctl
}

func init() {
	rootCmd.AddCommand(showCmd)
	showFlags.register(showCmd, true)
}
