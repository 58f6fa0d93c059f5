package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/molscope-cli/internal/explore"
	"github.com/KaramelBytes/molscope-cli/internal/service"
)

type secondaryFlags struct {
	smiles string
	index  int
	model  string
	noSave bool
}

var (
	cfFlags    secondaryFlags
	spaceFlags secondaryFlags
)

var counterfactualsCmd = &cobra.Command{
	Use:   "counterfactuals [run]",
	Short: "Generate counterfactuals for a sensitizer of a run",
	Example: `  molscope counterfactuals --smiles "CC(=O)Oc1ccccc1C(=O)O"
  molscope counterfactuals 3f2a --index 0`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSecondary(service.ActionCounterfactuals, runRef(args), cfFlags)
	},
}

var exploreSpaceCmd = &cobra.Command{
	Use:   "explore-space [run]",
	Short: "Explore the chemical space around a non-sensitizer of a run",
	Example: `  molscope explore-space --smiles CCO
  molscope explore-space --index 2 --model dpra`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSecondary(service.ActionChemicalSpace, runRef(args), spaceFlags)
	},
}

func runSecondary(action service.Action, ref string, f secondaryFlags) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	run, err := store.Load(ref)
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}

	ctl := sessionFor(run, client, explore.WriterNotifier(os.Stderr))
	if f.model != "" {
		m, err := service.ParseModelChoice(f.model)
		if err != nil {
			return err
		}
		ctl.SetModel(m)
	}
	list := ctl.Picker(action)
	switch {
	case f.smiles != "":
		if !list.Select(f.smiles) {
			return fmt.Errorf("%s is not a %s in run %s", f.smiles, list.Class().Title, run.ShortID())
		}
	case f.index >= 0:
		if !list.SelectIndex(f.index) {
			return fmt.Errorf("no %s at index %d (run has %d)", list.Class().Title, f.index, list.Len())
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	selected, _ := list.Selected()
	if selected != "" {
		fmt.Printf("Requesting %s for %s (%s)...\n", action, selected, ctl.Model())
	}
	results, err := ctl.Run(ctx, action)
	if err != nil {
		// the notifier already reported it
		return fmt.Errorf("%w: %w", errReported, err)
	}
	if len(results) == 0 {
		fmt.Println("No results.")
	} else {
		v := ctl.Explorer(action).View()
		renderRows(os.Stdout, v.Columns(), v.VisibleRows())
		printPageFooter(os.Stdout, v)
	}
	if f.noSave {
		return nil
	}
	run.SetSecondary(action, results)
	if err := store.Save(run); err != nil {
		return err
	}
	fmt.Printf("✓ Saved %d results to run %s\n", len(results), run.ShortID())
	return nil
}

func registerSecondaryFlags(cmd *cobra.Command, f *secondaryFlags) {
	cmd.Flags().StringVar(&f.smiles, "smiles", "", "SMILES to use; must be a candidate of the run")
	cmd.Flags().IntVar(&f.index, "index", -1, "pick the candidate at this position (see molscope candidates)")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "model to use (default: the run's model)")
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "do not store the results in the run")
}

func init() {
	rootCmd.AddCommand(counterfactualsCmd)
	rootCmd.AddCommand(exploreSpaceCmd)
	registerSecondaryFlags(counterfactualsCmd, &cfFlags)
	registerSecondaryFlags(exploreSpaceCmd, &spaceFlags)
}
