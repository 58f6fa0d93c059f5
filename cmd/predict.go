package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/molscope-cli/internal/parser"
	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/KaramelBytes/molscope-cli/internal/runs"
	"github.com/KaramelBytes/molscope-cli/internal/service"
	"github.com/KaramelBytes/molscope-cli/internal/session"
)

var (
	predictSMILES      string
	predictFile        string
	predictModel       string
	predictGroundTruth string
	predictNoSave      bool
	predictOutput      string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Submit a SMILES string or a CSV file for prediction",
	Example: `  molscope predict --smiles "CC(=O)Oc1ccccc1C(=O)O"
  molscope predict --file batch.csv --model llna
  molscope predict --file batch.csv --ground-truth reference.csv -o predictions.csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := defaultModel(predictModel)
		if err != nil {
			return err
		}
		req := service.PredictRequest{Model: model, SMILES: predictSMILES}
		source := predictSMILES
		var groundTruth map[string]string
		if predictFile != "" {
			in, err := parser.ReadInput(predictFile)
			if err != nil {
				return err
			}
			req.FileName, req.File = in.Name, in.Upload
			source = in.Name
			groundTruth = in.GroundTruth
			fmt.Printf("Uploading %s (%d molecules, %s)\n", in.Name, in.Molecules, humanize.Bytes(uint64(len(in.Upload))))
		}
		if predictGroundTruth != "" {
			ref, err := parser.ReadGroundTruthFile(predictGroundTruth)
			if err != nil {
				return err
			}
			if len(ref) == 0 {
				fmt.Fprintf(os.Stderr, "⚠ Warning: %s has no SMILES and Ground Truth columns; ignoring it\n", predictGroundTruth)
			}
			if groundTruth == nil {
				groundTruth = map[string]string{}
			}
			for k, v := range ref {
				groundTruth[k] = v
			}
		}
		if err := req.Validate(); err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		env, err := client.Predict(ctx, req)
		if err != nil {
			return fmt.Errorf("prediction failed: %w", err)
		}

		ctl := session.New(client, nil)
		ctl.SetModel(model)
		rows := ctl.LoadEnvelope(env, groundTruth)
		if len(rows) == 0 {
			fmt.Println("(no predictions returned)")
		} else {
			renderRows(os.Stdout, ctl.Table().Columns(), ctl.Table().VisibleRows())
			printPageFooter(os.Stdout, ctl.Table())
		}
		printClassSummary(rows)

		if predictOutput != "" {
			path, err := ctl.Export(predictOutput)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Exported %d rows to %s\n", len(rows), path)
		}
		if predictNoSave {
			return nil
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		run := runs.NewRun(model, source, rows)
		if err := store.Save(run); err != nil {
			return err
		}
		fmt.Printf("✓ Saved run %s (%d rows)\n", run.ShortID(), len(rows))
		return nil
	},
}

func printClassSummary(rows []predictions.Row) {
	counts := map[string]int{}
	for _, r := range rows {
		if c, ok := predictions.ClassOf(r.Prediction); ok {
			counts[c.Title]++
		}
	}
	if len(counts) == 0 {
		return
	}
	fmt.Printf("%s: %d, %s: %d\n",
		predictions.Sensitizer.Title, counts[predictions.Sensitizer.Title],
		predictions.NonSensitizer.Title, counts[predictions.NonSensitizer.Title])
}

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().StringVar(&predictSMILES, "smiles", "", "single SMILES string to predict")
	predictCmd.Flags().StringVarP(&predictFile, "file", "f", "", "CSV file with a SMILES column (max 10 MB)")
	predictCmd.Flags().StringVarP(&predictModel, "model", "m", "", "dataset/model: hclat, keratinosens, llna, dpra, human")
	predictCmd.Flags().StringVar(&predictGroundTruth, "ground-truth", "", "reference CSV with SMILES and Ground Truth columns")
	predictCmd.Flags().BoolVar(&predictNoSave, "no-save", false, "do not record the run")
	predictCmd.Flags().StringVarP(&predictOutput, "output", "o", "", "also export the results to this CSV file")
}
