package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List or remove recorded prediction runs",
}

var runsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recorded runs, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		list, err := store.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("(no runs)")
			return nil
		}
		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetAutoFormatHeaders(false)
		tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		tw.SetAlignment(tablewriter.ALIGN_LEFT)
		tw.SetHeader([]string{"ID", "Created", "Model", "Rows", "Source"})
		for _, r := range list {
			id := r.ID
			if len(id) > 8 {
				id = id[:8]
			}
			tw.Append([]string{id, humanize.Time(r.CreatedAt), string(r.Model), strconv.Itoa(r.Rows), r.Source})
		}
		tw.Render()
		return nil
	},
}

var runsRmCmd = &cobra.Command{
	Use:   "rm <run>",
	Short: "Remove a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.Remove(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Removed run %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsRmCmd)
}
