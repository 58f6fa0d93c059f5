package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/molscope-cli/internal/structure"
	"github.com/KaramelBytes/molscope-cli/internal/utils"
)

var structuresDir string

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

var structuresCmd = &cobra.Command{
	Use:   "structures [run]",
	Short: "Write the chemical-structure images of a run to a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := loadRun(runRef(args))
		if err != nil {
			return err
		}
		dir := structuresDir
		if dir == "" {
			dir = "structures-" + run.ShortID()
		}
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
		written, remote, skipped := 0, 0, 0
		for i, r := range run.Rows {
			src, err := structure.ImageSource(r.Structure)
			if err != nil {
				skipped++
				continue
			}
			img, err := structure.DecodeDataURI(src)
			if err != nil {
				// http(s) images are listed, not fetched
				logger.Debug("structure not inline", "smiles", r.SMILES, "src", src)
				fmt.Printf("%d\t%s\t%s\n", i, r.SMILES, src)
				remote++
				continue
			}
			name := fmt.Sprintf("%03d_%s%s", i, sanitizeName(r.SMILES), img.Ext())
			if err := utils.SafeWriteFile(filepath.Join(dir, name), img.Data); err != nil {
				return err
			}
			written++
		}
		if written == 0 && remote == 0 {
			_ = os.Remove(dir)
			return errors.New("run has no structure images")
		}
		fmt.Printf("✓ Wrote %d images to %s", written, dir)
		if remote > 0 {
			fmt.Printf(" (%d linked)", remote)
		}
		if skipped > 0 {
			fmt.Printf(" (%d rows without an image)", skipped)
		}
		fmt.Println()
		return nil
	},
}

func sanitizeName(smiles string) string {
	s := unsafeName.ReplaceAllString(smiles, "_")
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

func init() {
	rootCmd.AddCommand(structuresCmd)
	structuresCmd.Flags().StringVarP(&structuresDir, "dir", "d", "", "output directory (default structures-<run>)")
}
