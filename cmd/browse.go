package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/KaramelBytes/molscope-cli/internal/service"
	"github.com/KaramelBytes/molscope-cli/internal/tui"
)

var (
	browseModel  string
	browseOutput string
	browseNoSave bool
)

var browseCmd = &cobra.Command{
	Use:   "browse [run]",
	Short: "Browse a run interactively",
	Long: `Open a run in an interactive terminal browser. Search, sort and page the
predictions, pick candidates, and generate counterfactuals or explore the
chemical space without leaving the screen.`,
	Example: `  molscope browse
  molscope browse 3f2a --model dpra -o picked.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		run, err := store.Load(runRef(args))
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}

		toasts := &tui.Toasts{}
		ctl := sessionFor(run, client, toasts)
		if browseModel != "" {
			m, err := service.ParseModelChoice(browseModel)
			if err != nil {
				return err
			}
			ctl.SetModel(m)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		opts := []tui.Option{
			tui.WithContext(ctx),
			tui.WithTitle(fmt.Sprintf("molscope · run %s · %s · %s", run.ShortID(), ctl.Model(), run.Source)),
			tui.WithExportPath(browseOutput),
		}
		if !browseNoSave {
			opts = append(opts, tui.WithSaveFunc(func(a service.Action, results []predictions.Counterfactual) error {
				run.SetSecondary(a, results)
				return store.Save(run)
			}))
		}
		return tui.Run(tui.New(ctl, client, toasts, opts...))
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().StringVarP(&browseModel, "model", "m", "", "model for secondary requests (default: the run's model)")
	browseCmd.Flags().StringVarP(&browseOutput, "output", "o", "", "CSV export path (default: predictions.csv)")
	browseCmd.Flags().BoolVar(&browseNoSave, "no-save", false, "do not store secondary results in the run")
}
